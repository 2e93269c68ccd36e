package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration. It is loaded
// once at startup and passed into each component explicitly; nothing
// reads the environment mid-request.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	YouTube YouTubeConfig `yaml:"youtube"`
	Storage StorageConfig `yaml:"storage"`
	Audio   AudioConfig   `yaml:"audio"`
	Paths   PathsConfig   `yaml:"paths"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Addr                   string   `yaml:"addr"`
	AllowedOrigins         []string `yaml:"allowed_origins"`
	EnforceOriginAllowlist bool     `yaml:"enforce_origin_allowlist"`
}

// YouTubeConfig contains Data API settings
type YouTubeConfig struct {
	APIKey string `yaml:"api_key"`
}

// StorageConfig contains object store settings
type StorageConfig struct {
	Bucket              string `yaml:"bucket"`
	CredentialsFile     string `yaml:"credentials_file"`
	SignedURLTTLMinutes int    `yaml:"signed_url_ttl_minutes"`
}

// AudioConfig contains transcoding settings
type AudioConfig struct {
	Bitrate string `yaml:"bitrate"`
}

// PathsConfig contains directory paths for transient files
type PathsConfig struct {
	WorkDir string `yaml:"work_dir"`
}

// Load reads the configuration from the specified YAML file, then applies
// environment overrides and defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnvOverrides()
	cfg.applyDefaults()

	return &cfg, nil
}

// Default returns a configuration built purely from environment variables
// and defaults, for deployments without a config file.
func Default() *Config {
	cfg := &Config{}
	cfg.applyEnvOverrides()
	cfg.applyDefaults()
	return cfg
}

// Save writes the configuration to the specified YAML file
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("YOUTUBE_API_KEY"); v != "" {
		c.YouTube.APIKey = v
	}
	if v := os.Getenv("GCS_BUCKET"); v != "" {
		c.Storage.Bucket = v
	}
	if v := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); v != "" && c.Storage.CredentialsFile == "" {
		c.Storage.CredentialsFile = v
	}
	if v := os.Getenv("SIGNED_URL_TTL_MINUTES"); v != "" {
		if minutes, err := strconv.Atoi(v); err == nil && minutes > 0 {
			c.Storage.SignedURLTTLMinutes = minutes
		}
	}
	if v := os.Getenv("ADDR"); v != "" {
		c.Server.Addr = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Storage.SignedURLTTLMinutes == 0 {
		c.Storage.SignedURLTTLMinutes = 15
	}
	if c.Audio.Bitrate == "" {
		c.Audio.Bitrate = "192k"
	}
	if c.Paths.WorkDir == "" {
		c.Paths.WorkDir = os.TempDir()
	}
}
