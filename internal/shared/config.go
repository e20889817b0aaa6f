package shared

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables that take precedence over values read from config.toml.
const (
	EnvDiscogsUserID = "MIXTAPE_DISCOGS_USER_ID"
	EnvDiscogsToken  = "MIXTAPE_DISCOGS_TOKEN"
	EnvDatabasePath  = "MIXTAPE_DATABASE_PATH"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Discogs     DiscogsConfig     `toml:"discogs"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
	Logging     LoggingConfig     `toml:"logging"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Discogs DiscogsCredentials `toml:"discogs"`
}

// DiscogsCredentials identifies the collection owner and carries their personal access token.
type DiscogsCredentials struct {
	UserID string `toml:"user_id"`
	Token  string `toml:"token"`
}

// DiscogsConfig contains settings for the Discogs HTTP API client.
type DiscogsConfig struct {
	BaseURL           string `toml:"base_url"`
	UserAgent         string `toml:"user_agent"`
	PerPage           int    `toml:"per_page"`
	RequestsPerMinute int    `toml:"requests_per_minute"`
	TimeoutSeconds    int    `toml:"timeout_seconds"`
}

// Timeout returns the configured request timeout, defaulting to 30 seconds.
func (d DiscogsConfig) Timeout() time.Duration {
	if d.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(d.TimeoutSeconds) * time.Second
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns host:port for [net/http.Server].
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig contains logger settings.
type LoggingConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Fields missing from the file keep the values of the embedded example config.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig writes config to path as TOML, replacing any existing file.
func SaveConfig(path string, config *Config) error {
	if config == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// ApplyEnv copies MIXTAPE_* overrides onto the config. A non-empty process variable wins over the same key in
// envFile (when present). Empty variables count as unset.
func (c *Config) ApplyEnv(envFile string) error {
	fileEnv := map[string]string{}
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if fileEnv, err = godotenv.Read(envFile); err != nil {
				return fmt.Errorf("failed to load %s: %w", envFile, err)
			}
		}
	}

	lookup := func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return fileEnv[key]
	}

	if v := lookup(EnvDiscogsUserID); v != "" {
		c.Credentials.Discogs.UserID = v
	}
	if v := lookup(EnvDiscogsToken); v != "" {
		c.Credentials.Discogs.Token = v
	}
	if v := lookup(EnvDatabasePath); v != "" {
		c.Database.Path = v
	}
	return nil
}

// legacyCredentials mirrors the JSON credential file used by earlier desktop releases.
type legacyCredentials struct {
	UserID string `json:"discogs_user_id"`
	Token  string `json:"discogs_user_token"`
}

// LoadLegacyCredentials reads a simple_discogs.conf JSON file.
func LoadLegacyCredentials(path string) (DiscogsCredentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DiscogsCredentials{}, fmt.Errorf("failed to read credentials file: %w", err)
	}

	var creds legacyCredentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return DiscogsCredentials{}, fmt.Errorf("%w: failed to parse credentials: %v", ErrInvalidConfig, err)
	}

	return DiscogsCredentials{UserID: creds.UserID, Token: creds.Token}, nil
}

// Validate reports [ErrMissingCredentials] when either value is empty or still the template placeholder.
func (d DiscogsCredentials) Validate() error {
	switch {
	case d.UserID == "" || d.UserID == "your_discogs_username":
		return fmt.Errorf("%w: discogs user_id", ErrMissingCredentials)
	case d.Token == "" || d.Token == "your_discogs_token":
		return fmt.Errorf("%w: discogs token", ErrMissingCredentials)
	}
	return nil
}
