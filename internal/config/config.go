package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	UserID        string      `yaml:"user_id,omitempty"`
	MQTT          MQTTConfig  `yaml:"mqtt,omitempty"`
	HomeAssistant HAConfig    `yaml:"home_assistant,omitempty"`
	Watch         WatchConfig `yaml:"watch,omitempty"`
}

// MQTTConfig holds MQTT broker settings for publishing usage updates
type MQTTConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Broker      string `yaml:"broker"`       // host:port
	Username    string `yaml:"username,omitempty"`
	Password    string `yaml:"password,omitempty"`
	TopicPrefix string `yaml:"topic_prefix,omitempty"` // default "wattwise"
}

// HAConfig holds Home Assistant HTTP API configuration
type HAConfig struct {
	Enabled  bool   `yaml:"enabled"`
	URL      string `yaml:"url"`       // e.g., "http://homeassistant.local:8123"
	Token    string `yaml:"token"`     // Long-lived access token
	EntityID string `yaml:"entity_id"` // e.g., "sensor.wattwise_daily_usage"
}

// WatchConfig holds settings for the scheduled watch daemon
type WatchConfig struct {
	Schedule      string `yaml:"schedule,omitempty"`       // cron expression (default daily at 8am)
	MetricsListen string `yaml:"metrics_listen,omitempty"` // default ":9480"
}

// Load reads the config file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// Return empty config if file doesn't exist
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return &cfg, nil
}

// Save writes the config to file
func Save(configPath string, cfg *Config) error {
	// Ensure directory exists
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// DefaultConfigPath returns the default config file path (local directory)
func DefaultConfigPath() string {
	return "config.yaml"
}

// EnsureUserID returns the configured user id, generating and persisting
// one on first use.
func (c *Config) EnsureUserID(configPath string) (string, error) {
	if c.UserID != "" {
		return c.UserID, nil
	}

	c.UserID = uuid.NewString()
	if err := Save(configPath, c); err != nil {
		return "", fmt.Errorf("saving generated user id: %w", err)
	}

	return c.UserID, nil
}

// GetTopicPrefix returns the MQTT topic prefix with a default of "wattwise"
func (c *Config) GetTopicPrefix() string {
	if c.MQTT.TopicPrefix == "" {
		return "wattwise"
	}
	return c.MQTT.TopicPrefix
}

// GetWatchSchedule returns the watch cron schedule, defaulting to daily at 8am
func (c *Config) GetWatchSchedule() string {
	if c.Watch.Schedule == "" {
		return "0 8 * * *"
	}
	return c.Watch.Schedule
}

// GetMetricsListen returns the metrics listen address with a default
func (c *Config) GetMetricsListen() string {
	if c.Watch.MetricsListen == "" {
		return ":9480"
	}
	return c.Watch.MetricsListen
}
