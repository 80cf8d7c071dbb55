package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

const (
	EnvClientID     = "SPOTIFY_CLIENT_ID"
	EnvClientSecret = "SPOTIFY_CLIENT_SECRET"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Server      ServerConfig      `toml:"server"`
	Client      ClientConfig      `toml:"client"`
	Storage     StorageConfig     `toml:"storage"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify API credentials.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
}

// Valid reports whether both the client id and secret are set to something other than the example placeholders.
func (c SpotifyConfig) Valid() bool {
	if c.ClientID == "" || c.ClientSecret == "" {
		return false
	}
	return c.ClientID != "your_spotify_client_id" && c.ClientSecret != "your_spotify_client_secret"
}

// ServerConfig contains token broker HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns the host:port pair the broker listens on.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ClientConfig points the player at the broker and the provider API.
type ClientConfig struct {
	BrokerURL string `toml:"broker_url"`
	APIURL    string `toml:"api_url"`
}

// StorageConfig contains the player's local key-value storage settings.
type StorageConfig struct {
	Path string `toml:"path"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values not present in the file keep the embedded defaults.
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

// ResolveConfig loads path when it exists (falling back to defaults otherwise), reads a .env file from the working
// directory if one is present and applies credential overrides from the environment.
func ResolveConfig(path string) (*Config, error) {
	config := DefaultConfig()
	if _, err := os.Stat(path); err == nil {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		config = loaded
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	config.ApplyEnv()
	return config, nil
}

// ApplyEnv overrides credentials with SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET when they are set.
func (c *Config) ApplyEnv() {
	if id := os.Getenv(EnvClientID); id != "" {
		c.Credentials.Spotify.ClientID = id
	}
	if secret := os.Getenv(EnvClientSecret); secret != "" {
		c.Credentials.Spotify.ClientSecret = secret
	}
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
