package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all pacman configuration.
type Config struct {
	// Client settings used by the TUI and the submissions command
	Client ClientConfig `yaml:"client"`

	// Dev API server settings
	Server ServerConfig `yaml:"server"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// ClientConfig configures the game API client.
type ClientConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"` // empty = no client-side timeout
}

// ServerConfig configures `pacman serve`.
type ServerConfig struct {
	Listen          string `yaml:"listen"`
	UsersFile       string `yaml:"users_file"`
	AdminToken      string `yaml:"admin_token"`
	DatabasePath    string `yaml:"database_path"`
	RateLimitCount  uint32 `yaml:"rate_limit_count"`
	RateLimitWindow string `yaml:"rate_limit_window"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Client: ClientConfig{
			BaseURL: "http://localhost:8000",
		},

		Server: ServerConfig{
			Listen:          ":8000",
			UsersFile:       "users.txt",
			AdminToken:      "admin",
			DatabasePath:    "data/pacman.db",
			RateLimitCount:  2,
			RateLimitWindow: "10s",
			ShutdownTimeout: "5s",
		},

		Logging: LoggingConfig{
			Dir:   "logs",
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return defaults if config file doesn't exist
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Override with environment variables
	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if u := os.Getenv("PACMAN_SERVER_URL"); u != "" {
		c.Client.BaseURL = u
	}
	if token := os.Getenv("PACMAN_ADMIN_TOKEN"); token != "" {
		c.Server.AdminToken = token
	}
	if path := os.Getenv("PACMAN_USERS_FILE"); path != "" {
		c.Server.UsersFile = path
	}
	if path := os.Getenv("PACMAN_DB"); path != "" {
		c.Server.DatabasePath = path
	}
}

// GetClientTimeout returns the client request timeout. Zero means none.
func (c *Config) GetClientTimeout() time.Duration {
	if c.Client.Timeout == "" {
		return 0
	}
	d, err := time.ParseDuration(c.Client.Timeout)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// GetRateLimitWindow returns the default rate limit window as a duration.
func (c *Config) GetRateLimitWindow() time.Duration {
	d, err := time.ParseDuration(c.Server.RateLimitWindow)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

// GetShutdownTimeout returns how long serve waits for in-flight requests.
func (c *Config) GetShutdownTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.ShutdownTimeout)
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Client.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid client base_url: %q (expected http(s)://host[:port])", c.Client.BaseURL)
	}
	if c.Client.Timeout != "" {
		if _, err := time.ParseDuration(c.Client.Timeout); err != nil {
			return fmt.Errorf("invalid client timeout %q: %w", c.Client.Timeout, err)
		}
	}
	if c.Server.RateLimitCount == 0 {
		return fmt.Errorf("server rate_limit_count must be greater than zero")
	}
	if _, err := time.ParseDuration(c.Server.RateLimitWindow); err != nil {
		return fmt.Errorf("invalid server rate_limit_window %q: %w", c.Server.RateLimitWindow, err)
	}
	if c.Server.AdminToken == "" {
		return fmt.Errorf("server admin_token must not be empty")
	}
	return nil
}
