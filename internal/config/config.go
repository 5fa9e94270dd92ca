package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Session SessionConfig `mapstructure:"session"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Player  PlayerConfig  `mapstructure:"player"`
	History HistoryConfig `mapstructure:"history"`
	UI      UIConfig      `mapstructure:"ui"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds catalog backend configuration
type ServerConfig struct {
	URL         string        `mapstructure:"url"`          // API base URL, e.g. http://localhost:5000/api
	CatalogPath string        `mapstructure:"catalog_path"` // Collection path under URL
	Timeout     time.Duration `mapstructure:"timeout"`      // Per-request timeout
}

// SessionConfig holds the signed-in account
type SessionConfig struct {
	Token string `mapstructure:"token"` // Bearer token for mutating calls
	Name  string `mapstructure:"name"`  // Display name
	Email string `mapstructure:"email"`
	Role  string `mapstructure:"role"` // "admin" unlocks the admin screen
}

// CatalogConfig holds catalog refresh behavior
type CatalogConfig struct {
	BrowseInterval   time.Duration `mapstructure:"browse_interval"`     // Poll cadence for the browse screen
	AdminInterval    time.Duration `mapstructure:"admin_interval"`      // Poll cadence for the admin screen
	KeepStaleOnError bool          `mapstructure:"keep_stale_on_error"` // Keep last snapshot when a refresh fails
	Optimistic       bool          `mapstructure:"optimistic"`          // Apply admin mutations before confirmation
	TrendingSize     int           `mapstructure:"trending_size"`
}

// PlayerConfig holds media player configuration
type PlayerConfig struct {
	Command string   `mapstructure:"command"`
	Args    []string `mapstructure:"args"`
}

// HistoryConfig holds watch history configuration
type HistoryConfig struct {
	Limit int  `mapstructure:"limit"` // Max records kept locally
	Sync  bool `mapstructure:"sync"`  // Mirror records to the server when signed in
}

// UIConfig holds UI configuration
type UIConfig struct {
	DefaultSort string `mapstructure:"default_sort"` // rating, year or title
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			URL:         "http://localhost:5000/api",
			CatalogPath: "/catalog",
			Timeout:     15 * time.Second,
		},
		Catalog: CatalogConfig{
			BrowseInterval: 3 * time.Second,
			AdminInterval:  5 * time.Second,
			TrendingSize:   12,
		},
		Player: PlayerConfig{
			Command: "",
			Args:    []string{},
		},
		History: HistoryConfig{
			Limit: 50,
			Sync:  true,
		},
		UI: UIConfig{
			DefaultSort: "rating",
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "marquee", "marquee.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "marquee", "marquee.log")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "marquee")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "marquee")
	}
}

// defaultDataPath returns the default data directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "marquee")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "marquee")
	}
}

// LoadConfig loads configuration from file and environment
func LoadConfig() (*Config, error) {
	return load(viper.GetViper(), defaultConfigPath())
}

func load(v *viper.Viper, dir string) (*Config, error) {
	cfg := DefaultConfig()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.AddConfigPath(".")

	// Environment variable overrides, e.g. MARQUEE_SERVER_URL
	v.SetEnvPrefix("MARQUEE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the current configuration to file
func SaveConfig(cfg *Config) error {
	return save(viper.GetViper(), defaultConfigPath(), cfg)
}

func save(v *viper.Viper, dir string, cfg *Config) error {
	// Set fields individually to ensure correct key names (snake_case)
	v.Set("server.url", cfg.Server.URL)
	v.Set("server.catalog_path", cfg.Server.CatalogPath)
	v.Set("server.timeout", cfg.Server.Timeout.String())

	setSession(v, cfg.Session)

	v.Set("catalog.browse_interval", cfg.Catalog.BrowseInterval.String())
	v.Set("catalog.admin_interval", cfg.Catalog.AdminInterval.String())
	v.Set("catalog.keep_stale_on_error", cfg.Catalog.KeepStaleOnError)
	v.Set("catalog.optimistic", cfg.Catalog.Optimistic)
	v.Set("catalog.trending_size", cfg.Catalog.TrendingSize)

	v.Set("player.command", cfg.Player.Command)
	v.Set("player.args", cfg.Player.Args)

	v.Set("history.limit", cfg.History.Limit)
	v.Set("history.sync", cfg.History.Sync)

	v.Set("ui.default_sort", cfg.UI.DefaultSort)

	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)

	return write(v, dir)
}

// SaveSession updates just the session in the configuration
func SaveSession(session SessionConfig) error {
	v := viper.GetViper()
	setSession(v, session)
	return write(v, defaultConfigPath())
}

// ClearSession removes the stored credential while preserving other settings
func ClearSession() error {
	return SaveSession(SessionConfig{})
}

func setSession(v *viper.Viper, s SessionConfig) {
	v.Set("session.token", s.Token)
	v.Set("session.name", s.Name)
	v.Set("session.email", s.Email)
	v.Set("session.role", s.Role)
}

func write(v *viper.Viper, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configFile := filepath.Join(dir, "config.yaml")
	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// IsSignedIn returns true if a session token is stored
func (c *Config) IsSignedIn() bool {
	return c.Session.Token != ""
}

// IsAdmin returns true if the stored session carries the admin role
func (c *Config) IsAdmin() bool {
	return c.IsSignedIn() && c.Session.Role == "admin"
}

// GetDataPath returns the directory holding the local store
func GetDataPath() string {
	return defaultDataPath()
}
