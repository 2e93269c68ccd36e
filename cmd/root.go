package cmd

import (
	"fmt"
	"io"
	"os"

	"yt-mp3-service/infrastructure/config"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
)

// OutputWriter allows capturing output in tests
type OutputWriter interface {
	io.Writer
}

// DefaultOutput is the writer used in production
var DefaultOutput OutputWriter = os.Stdout

var rootCmd = &cobra.Command{
	Use:   "yt-mp3-service",
	Short: "Convert YouTube videos to MP3 and serve them over HTTP",
	Long: `yt-mp3-service converts YouTube videos to MP3 audio files:

  - Validate and parse YouTube URLs
  - Fetch video metadata (title, duration, thumbnail)
  - Extract and transcode audio, optionally clipped to a time range
  - Upload the MP3 to cloud storage and hand out a short-lived signed URL

Example:
  yt-mp3-service serve
  yt-mp3-service download --url "https://youtu.be/dQw4w9WgXcQ" --start 00:00:10 --end 00:00:40`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml)")
}

func initConfig() {
	// A .env file is optional; environment variables set there feed the
	// config overrides below.
	godotenv.Load()

	if cfgFile == "" {
		cfgFile = "config/config.yaml"
	}

	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		// No config file is fine for env-only deployments; environment
		// variables and defaults still apply.
		cfg = config.Default()
	}
}

// GetConfig returns the loaded configuration
func GetConfig() *config.Config {
	return cfg
}
