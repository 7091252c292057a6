// Package config defines the application configuration and its viper-backed
// loading. The merge/scoring core never reads configuration; the config
// struct is built once at startup and threaded through constructors.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Logger   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	Browser  BrowserConfig  `mapstructure:"browser" yaml:"browser"`
	Scanners ScannersConfig `mapstructure:"scanners" yaml:"scanners"`
	AI       AIConfig       `mapstructure:"ai" yaml:"ai"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Audit    AuditConfig    `mapstructure:"audit" yaml:"audit"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// BrowserConfig holds settings for the headless browser the in-process
// scanners drive.
type BrowserConfig struct {
	Headless          bool          `mapstructure:"headless" yaml:"headless"`
	ExecPath          string        `mapstructure:"exec_path" yaml:"exec_path"`
	NoSandbox         bool          `mapstructure:"no_sandbox" yaml:"no_sandbox"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	PostLoadWait      time.Duration `mapstructure:"post_load_wait" yaml:"post_load_wait"`
}

// LighthouseConfig configures the external Lighthouse runner.
type LighthouseConfig struct {
	Enabled    bool          `mapstructure:"enabled" yaml:"enabled"`
	BinaryPath string        `mapstructure:"binary_path" yaml:"binary_path"`
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// AxeConfig configures the in-browser Axe-Core runner.
type AxeConfig struct {
	Enabled    bool   `mapstructure:"enabled" yaml:"enabled"`
	ScriptPath string `mapstructure:"script_path" yaml:"script_path"`
}

// Pa11yConfig configures the external Pa11y runner.
type Pa11yConfig struct {
	Enabled    bool          `mapstructure:"enabled" yaml:"enabled"`
	BinaryPath string        `mapstructure:"binary_path" yaml:"binary_path"`
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// KeyboardConfig configures the Tab-walk keyboard probe.
type KeyboardConfig struct {
	Enabled     bool `mapstructure:"enabled" yaml:"enabled"`
	MaxTabStops int  `mapstructure:"max_tab_stops" yaml:"max_tab_stops"`
}

// ScannersConfig is a container for all scanner related configurations.
type ScannersConfig struct {
	Lighthouse LighthouseConfig `mapstructure:"lighthouse" yaml:"lighthouse"`
	Axe        AxeConfig        `mapstructure:"axe" yaml:"axe"`
	Pa11y      Pa11yConfig      `mapstructure:"pa11y" yaml:"pa11y"`
	Keyboard   KeyboardConfig   `mapstructure:"keyboard" yaml:"keyboard"`
}

// AIConfig configures the optional language-model collaborator used for
// insight and fix generation.
type AIConfig struct {
	Enabled         bool          `mapstructure:"enabled" yaml:"enabled"`
	Model           string        `mapstructure:"model" yaml:"model"`
	APIKey          string        `mapstructure:"api_key" yaml:"-"`
	Timeout         time.Duration `mapstructure:"timeout" yaml:"timeout"`
	MaxOutputTokens int32         `mapstructure:"max_output_tokens" yaml:"max_output_tokens"`
}

// DatabaseConfig holds the optional audit-history database connection.
type DatabaseConfig struct {
	URL string `mapstructure:"url" yaml:"-"`
}

// AuditConfig holds audit runtime settings, mostly populated from CLI flags.
type AuditConfig struct {
	Output string `mapstructure:"output" yaml:"output"`
	Format string `mapstructure:"format" yaml:"format"`

	// RateLimit caps page audits per second when auditing multiple URLs.
	RateLimit float64 `mapstructure:"rate_limit" yaml:"rate_limit"`
}

// NewDefaultConfig creates a configuration populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "webaudit")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.no_sandbox", false)
	v.SetDefault("browser.navigation_timeout", "90s")
	v.SetDefault("browser.post_load_wait", "2s")

	// -- Scanners --
	v.SetDefault("scanners.lighthouse.enabled", true)
	v.SetDefault("scanners.lighthouse.binary_path", "lighthouse")
	v.SetDefault("scanners.lighthouse.timeout", "3m")
	v.SetDefault("scanners.axe.enabled", true)
	v.SetDefault("scanners.axe.script_path", "assets/axe.min.js")
	v.SetDefault("scanners.pa11y.enabled", false)
	v.SetDefault("scanners.pa11y.binary_path", "pa11y")
	v.SetDefault("scanners.pa11y.timeout", "2m")
	v.SetDefault("scanners.keyboard.enabled", true)
	v.SetDefault("scanners.keyboard.max_tab_stops", 50)

	// -- AI --
	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.model", "gemini-2.5-flash")
	v.SetDefault("ai.timeout", "60s")
	v.SetDefault("ai.max_output_tokens", 4096)

	// -- Audit --
	v.SetDefault("audit.format", "text")
	v.SetDefault("audit.rate_limit", 1.0)
}

// NewConfigFromViper creates a configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	// Bind environment variables for sensitive data.
	v.BindEnv("ai.api_key", "WEBAUDIT_AI_API_KEY")
	v.BindEnv("database.url", "WEBAUDIT_DATABASE_URL")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Unmarshal can miss env-only keys that were never set elsewhere.
	if cfg.AI.Enabled && cfg.AI.APIKey == "" {
		cfg.AI.APIKey = os.Getenv("WEBAUDIT_AI_API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if !c.Scanners.Lighthouse.Enabled && !c.Scanners.Axe.Enabled {
		return fmt.Errorf("at least one of scanners.lighthouse or scanners.axe must be enabled")
	}
	if c.Scanners.Keyboard.Enabled && c.Scanners.Keyboard.MaxTabStops <= 0 {
		return fmt.Errorf("scanners.keyboard.max_tab_stops must be a positive integer")
	}
	if c.Audit.RateLimit <= 0 {
		return fmt.Errorf("audit.rate_limit must be greater than 0")
	}
	if c.AI.Enabled {
		if c.AI.Model == "" {
			return fmt.Errorf("ai.model is required when ai is enabled")
		}
		if c.AI.APIKey == "" {
			return fmt.Errorf("AI API key is required but not found. Ensure WEBAUDIT_AI_API_KEY is set")
		}
	}
	return nil
}
