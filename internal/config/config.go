package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
// It is read-only after Load() returns and thread-safe for concurrent reads.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	AI       AIConfig       `yaml:"ai"`
	Image    ImageConfig    `yaml:"image"`
	Auth     AuthConfig     `yaml:"auth"`
	Profile  ProfileConfig  `yaml:"profile"`
	Worker   WorkerConfig   `yaml:"worker"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int      `yaml:"port"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig contains database settings.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// AIConfig contains analysis service settings.
type AIConfig struct {
	Provider        string `yaml:"provider"` // "gemini" or "openai"
	GeminiAPIKey    string `yaml:"-"`        // env-only, never in YAML
	OpenAIAPIKey    string `yaml:"-"`        // env-only, never in YAML
	GeminiModel     string `yaml:"gemini_model"`
	OpenAIModel     string `yaml:"openai_model"`
	GeminiBaseURL   string `yaml:"gemini_base_url"`
	DefaultLanguage string `yaml:"default_language"` // "en" or "tr"
}

// ImageConfig contains illustration service settings.
type ImageConfig struct {
	BaseURL string `yaml:"base_url"`
}

// AuthConfig contains API authentication settings.
type AuthConfig struct {
	APIKey string `yaml:"-"` // env-only, never in YAML
}

// ProfileConfig identifies the default journal owner for requests that do
// not name a user.
type ProfileConfig struct {
	UserID string `yaml:"user_id"`
}

// WorkerConfig contains background worker settings.
type WorkerConfig struct {
	BackupInterval Duration `yaml:"backup_interval"`
	BackupDir      string   `yaml:"backup_dir"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Duration is a wrapper around time.Duration that supports YAML string parsing.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Load loads configuration with precedence: defaults → YAML file → env vars.
// A .env file in the working directory is applied to the environment first.
// Returns an immutable Config suitable for concurrent read access.
func Load() (*Config, error) {
	// Missing .env is fine; explicit env vars win either way.
	_ = godotenv.Load()

	cfg := newDefaults()

	configPath := getEnv("ONEIRO_CONFIG_PATH", "config/oneiro.yaml")

	// Load YAML file if it exists (missing file is not an error)
	if err := loadYAMLFile(cfg, configPath); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromFile loads configuration from a specific path.
// Used for testing and explicit path specification.
func LoadFromFile(path string) (*Config, error) {
	cfg := newDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// newDefaults returns a Config with all default values.
func newDefaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     Duration(30 * time.Second),
			WriteTimeout:    Duration(2 * time.Minute),
			ShutdownTimeout: Duration(15 * time.Second),
		},
		Database: DatabaseConfig{
			Path: "data/oneiro.db",
		},
		AI: AIConfig{
			Provider:        "gemini",
			GeminiModel:     "gemini-2.5-flash",
			OpenAIModel:     "gpt-4o-mini",
			GeminiBaseURL:   "https://generativelanguage.googleapis.com/v1beta",
			DefaultLanguage: "en",
		},
		Image: ImageConfig{
			BaseURL: "https://image.pollinations.ai",
		},
		Profile: ProfileConfig{
			UserID: "local",
		},
		Worker: WorkerConfig{
			BackupInterval: Duration(24 * time.Hour),
			BackupDir:      "data/backups",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// loadYAMLFile loads configuration from a YAML file if it exists.
// Missing file is not an error; we just use defaults.
func loadYAMLFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Only non-empty env vars override config values.
func applyEnvOverrides(cfg *Config) {
	// Server
	if v := os.Getenv("ONEIRO_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("ONEIRO_READ_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.ReadTimeout = Duration(d)
		}
	}
	if v := os.Getenv("ONEIRO_WRITE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.WriteTimeout = Duration(d)
		}
	}
	if v := os.Getenv("ONEIRO_SHUTDOWN_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.ShutdownTimeout = Duration(d)
		}
	}

	// Database
	if v := os.Getenv("ONEIRO_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// AI (GEMINI_API_KEY and OPENAI_API_KEY follow provider conventions)
	if v := os.Getenv("ONEIRO_AI_PROVIDER"); v != "" {
		cfg.AI.Provider = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.AI.GeminiAPIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.AI.OpenAIAPIKey = v
	}
	if v := os.Getenv("ONEIRO_GEMINI_MODEL"); v != "" {
		cfg.AI.GeminiModel = v
	}
	if v := os.Getenv("ONEIRO_OPENAI_MODEL"); v != "" {
		cfg.AI.OpenAIModel = v
	}
	if v := os.Getenv("ONEIRO_GEMINI_BASE_URL"); v != "" {
		cfg.AI.GeminiBaseURL = v
	}
	if v := os.Getenv("ONEIRO_DEFAULT_LANGUAGE"); v != "" {
		cfg.AI.DefaultLanguage = v
	}

	// Image
	if v := os.Getenv("ONEIRO_IMAGE_BASE_URL"); v != "" {
		cfg.Image.BaseURL = v
	}

	// Auth
	if v := os.Getenv("ONEIRO_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}

	// Profile
	if v := os.Getenv("ONEIRO_PROFILE"); v != "" {
		cfg.Profile.UserID = v
	}

	// Worker
	if v := os.Getenv("ONEIRO_BACKUP_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Worker.BackupInterval = Duration(d)
		}
	}
	if v := os.Getenv("ONEIRO_BACKUP_DIR"); v != "" {
		cfg.Worker.BackupDir = v
	}

	// Log
	if v := os.Getenv("ONEIRO_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("ONEIRO_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// validate checks that required configuration values are set.
// In dev mode (ONEIRO_DEV_MODE=true), API key validation is skipped.
func (c *Config) validate() error {
	switch c.AI.Provider {
	case "gemini", "openai":
	default:
		return fmt.Errorf("unknown ai provider %q", c.AI.Provider)
	}

	switch c.AI.DefaultLanguage {
	case "en", "tr":
	default:
		return fmt.Errorf("unknown default language %q", c.AI.DefaultLanguage)
	}

	// Dev mode bypasses API key validation
	if os.Getenv("ONEIRO_DEV_MODE") == "true" {
		return nil
	}

	if c.AI.Provider == "gemini" && c.AI.GeminiAPIKey == "" {
		return errors.New("GEMINI_API_KEY is required")
	}
	if c.AI.Provider == "openai" && c.AI.OpenAIAPIKey == "" {
		return errors.New("OPENAI_API_KEY is required")
	}
	if c.Auth.APIKey == "" {
		return errors.New("ONEIRO_API_KEY is required")
	}
	return nil
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
