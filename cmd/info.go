package cmd

import (
	"context"
	"fmt"

	"yt-mp3-service/application/metadata"

	"github.com/spf13/cobra"
)

var infoURL string

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show metadata for a video without downloading it",
	Long: `Fetch and print the title, duration, author and thumbnail of a
video. Nothing is downloaded.

Example:
  yt-mp3-service info --url "https://youtu.be/dQw4w9WgXcQ"`,
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
	infoCmd.Flags().StringVar(&infoURL, "url", "", "Video URL (required)")
	infoCmd.MarkFlagRequired("url")
}

func runInfo(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if cfg == nil {
		return fmt.Errorf("configuration not loaded; ensure config/config.yaml exists")
	}

	ctx := cmd.Context()

	// The metadata path needs no ffmpeg or storage, so wire only the
	// resolver instead of the full service graph.
	md, err := buildMetadataService(ctx, cfg)
	if err != nil {
		return err
	}

	return RunInfoWithService(ctx, md, infoURL, DefaultOutput)
}

// InfoGetter fetches the metadata preview (allows mocking in tests)
type InfoGetter interface {
	Get(ctx context.Context, rawURL string) (*metadata.Info, error)
}

// RunInfoWithService runs the info command with an injected service (for testing)
func RunInfoWithService(ctx context.Context, md InfoGetter, rawURL string, output OutputWriter) error {
	info, err := md.Get(ctx, rawURL)
	if err != nil {
		return err
	}

	fmt.Fprintf(output, "Title:     %s\n", info.Title)
	fmt.Fprintf(output, "Author:    %s\n", info.Author)
	fmt.Fprintf(output, "Duration:  %s\n", info.Duration)
	fmt.Fprintf(output, "Thumbnail: %s\n", info.Thumbnail)
	return nil
}
