package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Muhammadurasheed/scholarstream/internal/models"
)

// Config is the service configuration, loaded from YAML with ${VAR}
// expansion so secrets stay in the environment.
type Config struct {
	Port        string `yaml:"port"`
	StreamURL   string `yaml:"stream_url"`
	SnapshotURL string `yaml:"snapshot_url"`
	AuthToken   string `yaml:"auth_token"`
	ProfilePath string `yaml:"profile_path"`

	SnapshotRefreshSeconds int `yaml:"snapshot_refresh_seconds"`
	StreamPingSeconds      int `yaml:"stream_ping_seconds"`
	StreamMaxAttempts      int `yaml:"stream_max_attempts"`

	Debug   bool `yaml:"debug"`
	LogJSON bool `yaml:"log_json"`
}

func (c Config) SnapshotRefresh() time.Duration {
	return time.Duration(c.SnapshotRefreshSeconds) * time.Second
}

func (c Config) StreamPingInterval() time.Duration {
	return time.Duration(c.StreamPingSeconds) * time.Second
}

// Load reads the config file, expands environment references, and applies
// defaults.
func Load(path string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)
	if cfg.StreamURL == "" {
		return cfg, fmt.Errorf("config %s: stream_url is required", path)
	}
	if cfg.SnapshotURL == "" {
		return cfg, fmt.Errorf("config %s: snapshot_url is required", path)
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Port == "" {
		cfg.Port = os.Getenv("PORT")
	}
	if cfg.Port == "" {
		cfg.Port = "8081"
	}
	if cfg.AuthToken == "" {
		cfg.AuthToken = os.Getenv("SCHOLARSTREAM_TOKEN")
	}
	if cfg.SnapshotRefreshSeconds <= 0 {
		cfg.SnapshotRefreshSeconds = 300
	}
	if cfg.StreamPingSeconds <= 0 {
		cfg.StreamPingSeconds = 25
	}
	if cfg.StreamMaxAttempts <= 0 {
		cfg.StreamMaxAttempts = 5
	}
}

// LoadProfile reads the user profile document the scoring engine runs
// against.
func LoadProfile(path string) (models.UserProfile, error) {
	var profile models.UserProfile

	data, err := os.ReadFile(path)
	if err != nil {
		return profile, fmt.Errorf("failed to read profile file: %w", err)
	}
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return profile, fmt.Errorf("failed to parse profile file: %w", err)
	}
	return profile, nil
}
