package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"yt-mp3-service/infrastructure/config"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
)

// Prompter interface for interactive prompts (allows mocking in tests)
type Prompter interface {
	Input(message string, defaultValue string) (string, error)
	Confirm(message string, defaultValue bool) (bool, error)
}

// SurveyPrompter implements Prompter using the survey library
type SurveyPrompter struct{}

func (p *SurveyPrompter) Input(message string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

func (p *SurveyPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	result := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return false, err
	}
	return result, nil
}

// DefaultPrompter is the prompter used in production
var DefaultPrompter Prompter = &SurveyPrompter{}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create configuration file interactively",
	Long: `Prompts for configuration values and creates config.yaml.

This command guides you through setting up your configuration file
with the server address, storage bucket and credential paths.`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	return RunSetupWithPrompter(DefaultPrompter, "config/config.yaml")
}

// RunSetupWithPrompter runs the setup with a given prompter (for testing)
func RunSetupWithPrompter(prompter Prompter, configPath string) error {
	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		overwrite, err := prompter.Confirm("config.yaml already exists. Overwrite?", false)
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		if !overwrite {
			fmt.Println("Setup cancelled.")
			return nil
		}
	}

	fmt.Println("Welcome to yt-mp3-service setup!")
	fmt.Println()

	cfg := &config.Config{}

	if err := promptServer(prompter, cfg); err != nil {
		return err
	}

	if err := promptStorage(prompter, cfg); err != nil {
		return err
	}

	if err := promptAudio(prompter, cfg); err != nil {
		return err
	}

	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Save configuration
	if err := config.Save(cfg, configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Println()
	fmt.Printf("Configuration saved to %s\n", configPath)
	return nil
}

func promptServer(prompter Prompter, cfg *config.Config) error {
	addr, err := prompter.Input("Listen address for the HTTP server?", ":8080")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if addr == "" {
		addr = ":8080"
	}
	cfg.Server.Addr = addr

	enforce, err := prompter.Confirm("Restrict requests to an origin allow-list?", false)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Server.EnforceOriginAllowlist = enforce

	if enforce {
		for {
			origin, err := prompter.Input("  Allowed origin (empty to finish):", "")
			if err != nil {
				return fmt.Errorf("prompt cancelled")
			}
			if origin == "" {
				break
			}
			cfg.Server.AllowedOrigins = append(cfg.Server.AllowedOrigins, origin)
		}
		if len(cfg.Server.AllowedOrigins) == 0 {
			return fmt.Errorf("at least one origin is required when the allow-list is enforced")
		}
	}

	return nil
}

func promptStorage(prompter Prompter, cfg *config.Config) error {
	bucket, err := prompter.Input("Cloud Storage bucket for converted files?", "")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if bucket == "" {
		return fmt.Errorf("bucket is required")
	}
	cfg.Storage.Bucket = bucket

	credentials, err := prompter.Input("Path to Google credentials file?", "credentials.json")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if credentials == "" {
		credentials = "credentials.json"
	}
	cfg.Storage.CredentialsFile = credentials

	ttl, err := prompter.Input("Signed URL lifetime in minutes?", "15")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	minutes, err := strconv.Atoi(ttl)
	if err != nil || minutes <= 0 {
		return fmt.Errorf("lifetime must be a positive number of minutes")
	}
	cfg.Storage.SignedURLTTLMinutes = minutes

	apiKey, err := prompter.Input("YouTube Data API key (empty to scrape metadata instead)?", "")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.YouTube.APIKey = apiKey

	return nil
}

func promptAudio(prompter Prompter, cfg *config.Config) error {
	bitrate, err := prompter.Input("Audio bitrate for mp3 transcoding?", "192k")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if bitrate == "" {
		bitrate = "192k"
	}
	cfg.Audio.Bitrate = bitrate
	return nil
}
