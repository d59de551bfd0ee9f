package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Application identity constants.
const (
	AppName    = "AutoML Wizard"
	AppVersion = "1.0.0"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Platform  PlatformConfig  `yaml:"platform" envconfig:"PLATFORM"`
	Wizard    WizardConfig    `yaml:"wizard" envconfig:"WIZARD"`
	WebSocket WebSocketConfig `yaml:"websocket" envconfig:"WEBSOCKET"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" default:"1048576"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" default:"60s"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8080"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"100"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"50"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format      string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output      string `yaml:"output" envconfig:"OUTPUT" default:"both"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT" default:"true"`
}

// PlatformConfig describes how to reach the training platform backend.
type PlatformConfig struct {
	BaseURL string        `yaml:"base_url" envconfig:"BASE_URL" default:"http://localhost:9000/api"`
	Timeout time.Duration `yaml:"timeout" envconfig:"TIMEOUT" default:"30s"`
}

// WizardConfig contains dataset wizard tuning knobs.
type WizardConfig struct {
	PreviewTTL      time.Duration `yaml:"preview_ttl" envconfig:"PREVIEW_TTL" default:"15m"`
	PreviewRows     int           `yaml:"preview_rows" envconfig:"PREVIEW_ROWS" default:"50"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES" default:"67108864"`
	UploadFieldName string        `yaml:"upload_field_name" envconfig:"UPLOAD_FIELD_NAME" default:"file"`
}

// WebSocketConfig contains WebSocket configuration
type WebSocketConfig struct {
	ReadBufferSize  int `yaml:"read_buffer_size" envconfig:"READ_BUFFER_SIZE" default:"1024"`
	WriteBufferSize int `yaml:"write_buffer_size" envconfig:"WRITE_BUFFER_SIZE" default:"1024"`
}

// Load loads configuration from environment variables and config file
func Load() (*Config, error) {
	var cfg Config

	// Load from environment variables first
	if err := envconfig.Process("AUTOML", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	// Load from config file if exists
	configFile := getConfigFilePath()
	if configFile != "" {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs layers the YAML file over the built-in defaults and the
// environment over both. envconfig fills struct-tag defaults even for
// unset variables, so a field equal to its default is treated as "not
// set in the environment" and the file value wins. The one ambiguity:
// an env var explicitly set to the default value cannot beat a file
// value for the same field.
func mergeConfigs(fileConfig, envConfig Config) Config {
	defaults := Default()
	merged := envConfig

	merged.Server.Port = pick(envConfig.Server.Port, fileConfig.Server.Port, defaults.Server.Port)
	merged.Server.ReadTimeout = pick(envConfig.Server.ReadTimeout, fileConfig.Server.ReadTimeout, defaults.Server.ReadTimeout)
	merged.Server.WriteTimeout = pick(envConfig.Server.WriteTimeout, fileConfig.Server.WriteTimeout, defaults.Server.WriteTimeout)
	merged.Server.IdleTimeout = pick(envConfig.Server.IdleTimeout, fileConfig.Server.IdleTimeout, defaults.Server.IdleTimeout)
	merged.Server.ShutdownTimeout = pick(envConfig.Server.ShutdownTimeout, fileConfig.Server.ShutdownTimeout, defaults.Server.ShutdownTimeout)
	merged.Platform.BaseURL = pick(envConfig.Platform.BaseURL, fileConfig.Platform.BaseURL, defaults.Platform.BaseURL)
	merged.Platform.Timeout = pick(envConfig.Platform.Timeout, fileConfig.Platform.Timeout, defaults.Platform.Timeout)
	merged.Wizard.PreviewTTL = pick(envConfig.Wizard.PreviewTTL, fileConfig.Wizard.PreviewTTL, defaults.Wizard.PreviewTTL)
	merged.Wizard.PreviewRows = pick(envConfig.Wizard.PreviewRows, fileConfig.Wizard.PreviewRows, defaults.Wizard.PreviewRows)
	merged.Wizard.MaxUploadBytes = pick(envConfig.Wizard.MaxUploadBytes, fileConfig.Wizard.MaxUploadBytes, defaults.Wizard.MaxUploadBytes)

	return merged
}

// pick resolves one field with env > file > default precedence.
func pick[T comparable](env, file, def T) T {
	var zero T
	if env != zero && env != def {
		return env
	}
	if file != zero {
		return file
	}
	if env != zero {
		return env
	}
	return def
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}

	if c.Platform.BaseURL == "" {
		return fmt.Errorf("platform base URL must be set")
	}
	if !strings.HasPrefix(c.Platform.BaseURL, "http://") && !strings.HasPrefix(c.Platform.BaseURL, "https://") {
		return fmt.Errorf("platform base URL must be an http(s) URL: %s", c.Platform.BaseURL)
	}

	if c.Wizard.PreviewTTL <= 0 {
		return fmt.Errorf("wizard preview TTL must be positive")
	}
	if c.Wizard.MaxUploadBytes <= 0 {
		return fmt.Errorf("wizard max upload bytes must be positive")
	}

	// Structured log shipping expects JSON
	if c.Logging.Format != "json" {
		c.Logging.Format = "json"
	}

	if c.Logging.Output != "both" && c.Logging.Output != "file" && c.Logging.Output != "console" {
		c.Logging.Output = "both"
	}

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/app.log"
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	// Check for config file in common locations
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  60 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:       "info",
			Format:      "json",
			Output:      "both",
			FilePath:    "logs/app.log",
			Development: true,
		},
		Platform: PlatformConfig{
			BaseURL: "http://localhost:9000/api",
			Timeout: 30 * time.Second,
		},
		Wizard: WizardConfig{
			PreviewTTL:      15 * time.Minute,
			PreviewRows:     50,
			MaxUploadBytes:  64 << 20,
			UploadFieldName: "file",
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}
