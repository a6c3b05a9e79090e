package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Daily goal bounds enforced at every boundary; the store never holds an
// out-of-range value.
const (
	MinDailyGoal = 1
	MaxDailyGoal = 50
)

// Config models dayline.yml.
type Config struct {
	Profile struct {
		ID        string `yaml:"id"`
		DailyGoal int    `yaml:"daily_goal"`
	} `yaml:"profile"`
	Celebrations bool            `yaml:"celebrations"`
	Webhooks     []WebhookConfig `yaml:"webhooks"`
}

// WebhookConfig describes one state-change notification target.
type WebhookConfig struct {
	URL            string   `yaml:"url"`
	Secret         string   `yaml:"secret"`
	Events         []string `yaml:"events"`
	TimeoutSeconds int      `yaml:"timeout_seconds"`
	Enabled        *bool    `yaml:"enabled"`
}

// Load reads and validates config from workspace.
func Load(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config %s not found", path)
		}
		return nil, err
	}
	return FromYAML(data)
}

// LoadOptional returns nil,nil if the config file does not exist.
func LoadOptional(workspace string) (*Config, error) {
	data, err := os.ReadFile(Path(workspace))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	if c.Profile.ID == "" {
		return fmt.Errorf("config.profile.id is required")
	}
	if c.Profile.DailyGoal < MinDailyGoal || c.Profile.DailyGoal > MaxDailyGoal {
		return fmt.Errorf("config.profile.daily_goal must be between %d and %d", MinDailyGoal, MaxDailyGoal)
	}
	for i, hook := range c.Webhooks {
		if hook.URL == "" {
			return fmt.Errorf("config.webhooks[%d].url is required", i)
		}
		if hook.TimeoutSeconds < 0 {
			return fmt.Errorf("config.webhooks[%d].timeout_seconds must not be negative", i)
		}
	}
	return nil
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "dayline.yml")
}

// Default returns the default Config struct for a profile.
func Default(profileID string) *Config {
	var cfg Config
	cfg.Profile.ID = profileID
	cfg.Profile.DailyGoal = 5
	cfg.Celebrations = true
	return &cfg
}

// FromYAML parses and validates config from raw YAML bytes.
func FromYAML(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if cfg.Profile.DailyGoal == 0 {
		cfg.Profile.DailyGoal = 5
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// GenerateDefault returns default config YAML.
func GenerateDefault(profileID string) string {
	return fmt.Sprintf(defaultTemplate, profileID)
}

const defaultTemplate = `profile:
  id: %s
  daily_goal: 5

celebrations: true

# webhooks:
#   - url: http://localhost:9000/dayline
#     secret: change-me
#     events: [task.completed, streak.extended]
#     timeout_seconds: 5
`
