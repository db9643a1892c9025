package contract

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/huangsam/contacts/schema"
)

// Default values for configuration.
const (
	DefaultBaseURL  = "http://localhost:3001/contacts"
	DefaultPageSize = 9
	MaxPageSize     = 1000
	DefaultTimeout  = time.Duration(0) // no client timeout, the store governs
)

// Config holds the runtime configuration for the client.
// This struct is the "final, validated" config.
type Config struct {
	BaseURL string
	Timeout time.Duration

	Page           int
	Limit          int
	Search         string
	FavouritesOnly bool

	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool
	Verbose    bool

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	BaseURL        string `mapstructure:"base-url"`
	Timeout        string `mapstructure:"timeout"`
	Output         string `mapstructure:"output"`
	OutputFile     string `mapstructure:"output-file"`
	Width          int    `mapstructure:"width"`
	Color          string `mapstructure:"color"`
	Verbose        bool   `mapstructure:"verbose"`
	CacheBackend   string `mapstructure:"cache-backend"`
	CacheDBConnect string `mapstructure:"cache-db-connect"`

	// --- Fields from listCmd.Flags() and exportCmd.Flags() ---
	Page       int    `mapstructure:"page"`
	Limit      int    `mapstructure:"limit"`
	Search     string `mapstructure:"search"`
	Favourites bool   `mapstructure:"favourites"`
}

// Clone returns a copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// ListParams returns the list parameters selected by the config.
func (c *Config) ListParams() schema.ListParams {
	return schema.ListParams{
		Page:           c.Page,
		Limit:          c.Limit,
		Search:         c.Search,
		FavouritesOnly: c.FavouritesOnly,
	}
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and populates cfg.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	return nil
}

// validateSimpleInputs validates transport, paging and output inputs.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- Base URL ---
	baseURL := strings.TrimRight(strings.TrimSpace(input.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid base URL '%s'. must be an absolute http(s) URL", input.BaseURL)
	}
	cfg.BaseURL = baseURL

	// --- Timeout ---
	cfg.Timeout = DefaultTimeout
	if input.Timeout != "" {
		timeout, err := time.ParseDuration(input.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout '%s': %w", input.Timeout, err)
		}
		if timeout < 0 {
			return fmt.Errorf("timeout must not be negative, got %s", timeout)
		}
		cfg.Timeout = timeout
	}

	// --- Paging ---
	cfg.Page = input.Page
	if cfg.Page == 0 {
		cfg.Page = 1
	}
	if cfg.Page < 1 {
		return fmt.Errorf("page must be at least 1, got %d", input.Page)
	}
	cfg.Limit = input.Limit
	if cfg.Limit == 0 {
		cfg.Limit = DefaultPageSize
	}
	if cfg.Limit < 1 || cfg.Limit > MaxPageSize {
		return fmt.Errorf("limit must be between 1 and %d, got %d", MaxPageSize, input.Limit)
	}
	cfg.Search = input.Search
	cfg.FavouritesOnly = input.Favourites

	// --- Output ---
	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if cfg.Output == "" {
		cfg.Output = schema.TextOut
	}
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output mode '%s'. must be text, json or csv", input.Output)
	}
	cfg.OutputFile = input.OutputFile

	if input.Width < 0 {
		return fmt.Errorf("width must not be negative, got %d", input.Width)
	}
	cfg.Width = input.Width

	cfg.UseColors = true
	if input.Color != "" {
		useColors, err := ParseBoolString(input.Color)
		if err != nil {
			return fmt.Errorf("invalid color value: %w", err)
		}
		cfg.UseColors = useColors
	}
	cfg.Verbose = input.Verbose

	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for the given backend.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("cache-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("cache-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates the durable cache backend configuration.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	return ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect)
}
