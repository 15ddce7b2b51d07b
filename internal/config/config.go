package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/kfreiman/office2md/internal/staging"
)

// Config holds the configuration for the web server and the convert command
type Config struct {
	Port            int           `env:"PORT" env-default:"8080" env-description:"HTTP server port"`
	StagingPath     string        `env:"STAGING_PATH" env-description:"Directory for staged uploads (default: OS temp dir + /office2md)"`
	StagingTTL      time.Duration `env:"STAGING_TTL" env-default:"1h" env-description:"Age after which orphaned staged files are swept (e.g., 1h, 30m)"`
	SessionTTL      time.Duration `env:"SESSION_TTL" env-default:"24h" env-description:"Idle time after which a session's result is forgotten"`
	MaxUploadSize   int64         `env:"MAX_UPLOAD_SIZE" env-default:"209715200" env-description:"Maximum upload size in bytes"`
	MarkitdownBin   string        `env:"MARKITDOWN_BIN" env-description:"Path to the markitdown executable (default: discover on PATH)"`
	ConvertTimeout  time.Duration `env:"CONVERT_TIMEOUT" env-default:"0" env-description:"Timeout for a single conversion, 0 disables it"`
	BrowserFallback bool          `env:"BROWSER_FALLBACK" env-default:"false" env-description:"Render HTML uploads in headless Chromium when readability finds nothing"`
	SecureCookies   bool          `env:"SECURE_COOKIES" env-default:"false" env-description:"Mark the session cookie as HTTPS-only"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return cfg, err
	}
	if cfg.StagingPath == "" {
		cfg.StagingPath = staging.DefaultBasePath()
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks value ranges cleanenv cannot express
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	if c.MaxUploadSize <= 0 {
		return fmt.Errorf("invalid MAX_UPLOAD_SIZE %d: must be positive", c.MaxUploadSize)
	}
	if c.StagingTTL < 0 || c.SessionTTL < 0 || c.ConvertTimeout < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	return nil
}

// Usage returns the environment variable help text
func Usage() string {
	var cfg Config
	text, err := cleanenv.GetDescription(&cfg, nil)
	if err != nil {
		return ""
	}
	return text
}

// WithPort sets the server port
func (c Config) WithPort(port int) Config {
	c.Port = port
	return c
}

// WithStagingPath sets the staging directory
func (c Config) WithStagingPath(path string) Config {
	c.StagingPath = path
	return c
}

// WithMarkitdownBin sets the markitdown executable path
func (c Config) WithMarkitdownBin(path string) Config {
	c.MarkitdownBin = path
	return c
}

// WithConvertTimeout sets the per-conversion timeout
func (c Config) WithConvertTimeout(timeout time.Duration) Config {
	c.ConvertTimeout = timeout
	return c
}

// WithBrowserFallback enables or disables the headless browser fallback
func (c Config) WithBrowserFallback(enabled bool) Config {
	c.BrowserFallback = enabled
	return c
}
