package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"yt-mp3-service/application/download"
	"yt-mp3-service/application/metadata"
	"yt-mp3-service/domain/video"
	"yt-mp3-service/infrastructure/config"
	"yt-mp3-service/infrastructure/ffmpeg"
	"yt-mp3-service/infrastructure/filesystem"
	"yt-mp3-service/infrastructure/gcs"
	"yt-mp3-service/infrastructure/youtube"
	"yt-mp3-service/infrastructure/youtubeapi"

	"yt-mp3-service/server"

	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Run the HTTP API server exposing the conversion pipeline:

  POST /api/download  convert a video to MP3 and return a signed URL
  POST /api/info      fetch title, duration and thumbnail for a video
  GET  /healthz       liveness probe

The server shuts down gracefully on SIGINT/SIGTERM.

Example:
  yt-mp3-service serve --addr :8080`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if cfg == nil {
		return fmt.Errorf("configuration not loaded; ensure config/config.yaml exists")
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := log.New(os.Stdout, "", log.LstdFlags)

	downloads, md, err := buildServices(ctx, cfg, logger)
	if err != nil {
		return err
	}

	srv := server.New(cfg.Server, downloads, md, logger)
	return srv.Run(ctx)
}

// buildServices wires the production dependency graph from configuration.
// Metadata comes from the Data API when a key is configured, otherwise
// from the player client that also serves the audio streams.
func buildServices(ctx context.Context, cfg *config.Config, logger *log.Logger) (*download.Service, *metadata.Service, error) {
	transcoder := ffmpeg.NewTranscoder()

	verifyCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := transcoder.VerifyInstalled(verifyCtx); err != nil {
		return nil, nil, fmt.Errorf("ffmpeg verification failed: %w", err)
	}

	streams := youtube.NewClient()

	var resolver video.MetadataResolver = streams
	if cfg.YouTube.APIKey != "" {
		apiClient, err := youtubeapi.NewClient(ctx, cfg.YouTube.APIKey)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create Data API client: %w", err)
		}
		resolver = apiClient
	}

	publisher, err := gcs.NewPublisher(ctx, cfg.Storage.Bucket, cfg.Storage.CredentialsFile,
		gcs.WithSignedURLTTL(time.Duration(cfg.Storage.SignedURLTTLMinutes)*time.Minute))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create storage publisher: %w", err)
	}

	files := filesystem.NewManager(cfg.Paths.WorkDir)

	downloads := download.NewService(resolver, streams, transcoder, publisher, files, cfg.Audio.Bitrate, logger)
	md := metadata.NewService(resolver)
	return downloads, md, nil
}

// buildMetadataService wires only the metadata resolver, for commands
// that never touch ffmpeg or storage.
func buildMetadataService(ctx context.Context, cfg *config.Config) (*metadata.Service, error) {
	var resolver video.MetadataResolver = youtube.NewClient()
	if cfg.YouTube.APIKey != "" {
		apiClient, err := youtubeapi.NewClient(ctx, cfg.YouTube.APIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create Data API client: %w", err)
		}
		resolver = apiClient
	}
	return metadata.NewService(resolver), nil
}
