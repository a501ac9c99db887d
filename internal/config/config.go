package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g.
// TASKSTACK_STORE_BACKEND for store.backend.
const EnvPrefix = "TASKSTACK"

// Config represents the complete taskstack configuration
type Config struct {
	Store   StoreConfig   `mapstructure:"store"`
	Engine  EngineConfig  `mapstructure:"engine"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
	GitHub  GitHubConfig  `mapstructure:"github"`
}

// StoreConfig selects and locates the storage backend
type StoreConfig struct {
	// Backend is one of "memory", "file", "sqlite" (default: "file")
	Backend string `mapstructure:"backend"`
	// DataDir holds the file backend's state, the default SQLite database
	// and the log file. "~" is expanded.
	DataDir string `mapstructure:"data_dir"`
	// SQLitePath overrides the database location (default: <data_dir>/taskstack.db)
	SQLitePath string `mapstructure:"sqlite_path"`
}

// EngineConfig tunes decomposition and the action handler
type EngineConfig struct {
	// DefaultUser owns tasks captured without an explicit user (default: "demo")
	DefaultUser string `mapstructure:"default_user"`
	// SnoozeMinutes is used when a snooze request carries no duration (default: 15)
	SnoozeMinutes int `mapstructure:"snooze_minutes"`
	// StrictCategories rejects explicit categories outside the catalog
	StrictCategories bool `mapstructure:"strict_categories"`
}

// ServerConfig controls the HTTP API
type ServerConfig struct {
	// Addr is the listen address (default: "127.0.0.1:8080")
	Addr string `mapstructure:"addr"`
	// Mode is the gin mode: "debug", "release" or "test" (default: "release")
	Mode string `mapstructure:"mode"`
	// ShutdownTimeoutSeconds bounds graceful shutdown (default: 10)
	ShutdownTimeoutSeconds int `mapstructure:"shutdown_timeout_seconds"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether logging is active (default: true)
	Enabled bool `mapstructure:"enabled"`
	// Level is the minimum log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
	// MaxSizeMB rotates the log file once it reaches this size; 0 disables rotation (default: 10)
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups is how many rotated files are kept (default: 3)
	MaxBackups int `mapstructure:"max_backups"`
}

// GitHubConfig configures the GitHub issue importer
type GitHubConfig struct {
	// Token is a personal access token. Usually supplied via TASKSTACK_GITHUB_TOKEN.
	Token string `mapstructure:"token"`
	// Query is an optional issue search query. Empty imports open issues
	// assigned to the token owner.
	Query string `mapstructure:"query"`
}

// ShutdownTimeout returns the graceful shutdown bound as a time.Duration
func (c *ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// ResolveDataDir returns DataDir with "~" expanded. Empty falls back to
// DefaultDataDir.
func (s *StoreConfig) ResolveDataDir() string {
	if s.DataDir == "" {
		return DefaultDataDir()
	}
	return expandHome(s.DataDir)
}

// ResolveSQLitePath returns the SQLite database location.
func (s *StoreConfig) ResolveSQLitePath() string {
	if s.SQLitePath != "" {
		return expandHome(s.SQLitePath)
	}
	return filepath.Join(s.ResolveDataDir(), "taskstack.db")
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Backend: "file",
			DataDir: "", // Empty means DefaultDataDir()
		},
		Engine: EngineConfig{
			DefaultUser:   "demo",
			SnoozeMinutes: 15,
		},
		Server: ServerConfig{
			Addr:                   "127.0.0.1:8080",
			Mode:                   "release",
			ShutdownTimeoutSeconds: 10,
		},
		Logging: LoggingConfig{
			Enabled:    true,
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("store.backend", defaults.Store.Backend)
	viper.SetDefault("store.data_dir", defaults.Store.DataDir)
	viper.SetDefault("store.sqlite_path", defaults.Store.SQLitePath)

	viper.SetDefault("engine.default_user", defaults.Engine.DefaultUser)
	viper.SetDefault("engine.snooze_minutes", defaults.Engine.SnoozeMinutes)
	viper.SetDefault("engine.strict_categories", defaults.Engine.StrictCategories)

	viper.SetDefault("server.addr", defaults.Server.Addr)
	viper.SetDefault("server.mode", defaults.Server.Mode)
	viper.SetDefault("server.shutdown_timeout_seconds", defaults.Server.ShutdownTimeoutSeconds)

	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)

	viper.SetDefault("github.token", defaults.GitHub.Token)
	viper.SetDefault("github.query", defaults.GitHub.Query)
}

// Init wires viper to its sources: defaults, then the config file
// (cfgFile, or config.yaml in ConfigDir or the working directory), then
// a .env file in the working directory, then TASKSTACK_* environment
// variables. A missing config or .env file is not an error.
func Init(cfgFile string) error {
	SetDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(ConfigDir())
		viper.AddConfigPath(".")
	}

	// .env only fills variables that are not already set in the environment
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return err
	}

	viper.SetEnvPrefix(EnvPrefix)
	// Replace dots with underscores for nested keys in env vars
	// e.g., TASKSTACK_ENGINE_SNOOZE_MINUTES for engine.snooze_minutes
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return nil
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "taskstack")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".taskstack"
	}
	return filepath.Join(home, ".config", "taskstack")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// DefaultDataDir returns where state lives when store.data_dir is unset
func DefaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "taskstack")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".taskstack"
	}
	return filepath.Join(home, ".local", "share", "taskstack")
}
