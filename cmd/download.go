package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"yt-mp3-service/application/download"

	"github.com/spf13/cobra"
)

var (
	downloadURL   string
	downloadStart string
	downloadEnd   string
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Convert a single video to MP3 and print the signed URL",
	Long: `Run the full conversion pipeline once from the command line:
fetch metadata, extract and transcode the audio, upload the MP3 to cloud
storage and print the short-lived download URL.

Example:
  yt-mp3-service download --url "https://youtu.be/dQw4w9WgXcQ"
  yt-mp3-service download --url "https://youtu.be/dQw4w9WgXcQ" --start 00:00:10 --end 00:00:40`,
	RunE: runDownload,
}

func init() {
	rootCmd.AddCommand(downloadCmd)
	downloadCmd.Flags().StringVar(&downloadURL, "url", "", "Video URL (required)")
	downloadCmd.Flags().StringVar(&downloadStart, "start", "", "Clip start in HH:MM:SS or MM:SS format (optional)")
	downloadCmd.Flags().StringVar(&downloadEnd, "end", "", "Clip end in HH:MM:SS or MM:SS format (optional)")
	downloadCmd.MarkFlagRequired("url")
}

func runDownload(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if cfg == nil {
		return fmt.Errorf("configuration not loaded; ensure config/config.yaml exists")
	}

	ctx := cmd.Context()
	logger := log.New(io.Discard, "", 0)

	downloads, _, err := buildServices(ctx, cfg, logger)
	if err != nil {
		return err
	}

	return RunDownloadWithService(ctx, downloads, download.Input{
		URL:       downloadURL,
		StartTime: downloadStart,
		EndTime:   downloadEnd,
	}, DefaultOutput)
}

// DownloadRunner runs the conversion pipeline (allows mocking in tests)
type DownloadRunner interface {
	Run(ctx context.Context, input download.Input) (*download.Result, error)
}

// RunDownloadWithService runs the download command with an injected
// pipeline (for testing)
func RunDownloadWithService(ctx context.Context, downloads DownloadRunner, input download.Input, output OutputWriter) error {
	fmt.Fprintf(output, "Converting %s...\n", input.URL)

	result, err := downloads.Run(ctx, input)
	if err != nil {
		return err
	}

	fmt.Fprintf(output, "Title: %s\n", result.Title)
	fmt.Fprintf(output, "Download URL (expires %s):\n%s\n",
		result.ExpiresAt.Format(time.RFC3339), result.DownloadURL)
	return nil
}
