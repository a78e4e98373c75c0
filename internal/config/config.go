package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Config represents the server configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
	GitHub  GitHubConfig  `yaml:"github"`
	Fetch   FetchConfig   `yaml:"fetch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "text"
}

// GitHubConfig holds GitHub credentials and the monitored repository.
type GitHubConfig struct {
	Token         string `yaml:"token"`
	WebhookSecret string `yaml:"webhook_secret"`
	Owner         string `yaml:"owner"`
	Repo          string `yaml:"repo"`
}

// FetchConfig holds file download settings.
type FetchConfig struct {
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// envVarPattern matches ${VAR_NAME} patterns.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8001,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Fetch: FetchConfig{
			TimeoutSeconds: 10,
		},
	}
}

// Load reads and parses the config file at the given path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Substitute environment variables
	data = envVarPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		varName := envVarPattern.FindSubmatch(match)[1]
		return []byte(os.Getenv(string(varName)))
	})

	// Start with defaults
	cfg := DefaultConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnv(cfg)
	return cfg, nil
}

// FromEnv builds a Config from defaults and environment variables alone,
// for deployments that run without a config file.
func FromEnv() *Config {
	cfg := DefaultConfig()
	applyEnv(cfg)
	return cfg
}

// applyEnv fills GitHub credentials from the environment when the config
// file left them empty.
func applyEnv(cfg *Config) {
	if cfg.GitHub.Token == "" {
		cfg.GitHub.Token = os.Getenv("GITHUB_TOKEN")
	}
	if cfg.GitHub.WebhookSecret == "" {
		cfg.GitHub.WebhookSecret = os.Getenv("GITHUB_SECRET")
	}
	if cfg.GitHub.Owner == "" {
		cfg.GitHub.Owner = os.Getenv("OWNER")
	}
	if cfg.GitHub.Repo == "" {
		cfg.GitHub.Repo = os.Getenv("REPO")
	}
}

// Validate checks that the configuration is usable for serving webhooks.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.GitHub.Token == "" {
		return fmt.Errorf("github token is required")
	}
	if c.GitHub.WebhookSecret == "" {
		return fmt.Errorf("github webhook secret is required")
	}
	if c.GitHub.Owner == "" || c.GitHub.Repo == "" {
		return fmt.Errorf("github owner and repo are required")
	}
	if c.Fetch.TimeoutSeconds < 1 {
		return fmt.Errorf("invalid fetch timeout: %d", c.Fetch.TimeoutSeconds)
	}
	return nil
}

// RepoFullName returns the monitored repository as owner/repo, or empty if
// not configured.
func (c *Config) RepoFullName() string {
	if c.GitHub.Owner == "" || c.GitHub.Repo == "" {
		return ""
	}
	return c.GitHub.Owner + "/" + c.GitHub.Repo
}
