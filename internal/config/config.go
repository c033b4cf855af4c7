// Package config loads the portal's settings.
//
// LAYERS (lowest to highest priority):
//  1. defaults(): compiled-in values
//  2. a YAML file: CONFIG_PATH, or config.yaml / config.yml in the working directory
//  3. environment variables: the flat names operators already use (PORT, DB_PATH, ...)
//
// koanf merges the layers into one key space ("server.port", "google.client_id")
// and then unmarshals that into Config.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultGoogleDiscoveryURL is Google's OpenID Connect discovery document.
const DefaultGoogleDiscoveryURL = "https://accounts.google.com/.well-known/openid-configuration"

// PathEnvVar overrides the config file location.
const PathEnvVar = "CONFIG_PATH"

var defaultPaths = []string{"config.yaml", "config.yml"}

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Google   GoogleConfig   `koanf:"google"`
	Session  SessionConfig  `koanf:"session"`
	Logging  LoggingConfig  `koanf:"logging"`

	// SecretGenerated is set when no session secret was configured and a
	// random one was made for this process. Sessions will not survive a restart.
	SecretGenerated bool `koanf:"-"`
}

type ServerConfig struct {
	Port int `koanf:"port"`
	// BaseURL, when set, fixes the OAuth redirect URI to BaseURL + "/login/callback".
	// Empty means "derive it from the incoming request".
	BaseURL       string        `koanf:"base_url"`
	SecureCookies bool          `koanf:"secure_cookies"`
	ReadTimeout   time.Duration `koanf:"read_timeout"`
	WriteTimeout  time.Duration `koanf:"write_timeout"`
	IdleTimeout   time.Duration `koanf:"idle_timeout"`
	// LoginRateLimit is the number of /login* requests allowed per IP per LoginRateWindow.
	LoginRateLimit  int           `koanf:"login_rate_limit"`
	LoginRateWindow time.Duration `koanf:"login_rate_window"`
}

type DatabaseConfig struct {
	Path string `koanf:"path"`
}

type GoogleConfig struct {
	ClientID     string        `koanf:"client_id"`
	ClientSecret string        `koanf:"client_secret"`
	DiscoveryURL string        `koanf:"discovery_url"`
	Timeout      time.Duration `koanf:"timeout"`
	DiscoveryTTL time.Duration `koanf:"discovery_ttl"`
}

type SessionConfig struct {
	Secret string        `koanf:"secret"`
	TTL    time.Duration `koanf:"ttl"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`  // debug, info, warn, error
	Format string `koanf:"format"` // text or json
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			LoginRateLimit:  20,
			LoginRateWindow: time.Minute,
		},
		Database: DatabaseConfig{
			Path: "data/portal.db",
		},
		Google: GoogleConfig{
			DiscoveryURL: DefaultGoogleDiscoveryURL,
			Timeout:      10 * time.Second,
			DiscoveryTTL: time.Hour,
		},
		Session: SessionConfig{
			TTL: 24 * time.Hour,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// envKeys maps environment variable names (lower-cased) to koanf paths.
// Anything not listed here is ignored, so unrelated variables never leak in.
var envKeys = map[string]string{
	"port":                 "server.port",
	"base_url":             "server.base_url",
	"secure_cookies":       "server.secure_cookies",
	"login_rate_limit":     "server.login_rate_limit",
	"login_rate_window":    "server.login_rate_window",
	"db_path":              "database.path",
	"google_client_id":     "google.client_id",
	"google_client_secret": "google.client_secret",
	"google_discovery_url": "google.discovery_url",
	"provider_timeout":     "google.timeout",
	"discovery_ttl":        "google.discovery_ttl",
	"secret_key":           "session.secret",
	"session_ttl":          "session.ttl",
	"log_level":            "logging.level",
	"log_format":           "logging.format",
}

func envTransform(key string) string {
	return envKeys[strings.ToLower(key)]
}

// Load reads defaults, the optional config file and the environment, then
// validates the result.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaults(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("config: loading defaults: %w", err)
	}

	if path := findFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: loading %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("config: loading environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshalling: %w", err)
	}

	if cfg.Session.Secret == "" {
		secret, err := randomSecret()
		if err != nil {
			return nil, err
		}
		cfg.Session.Secret = secret
		cfg.SecretGenerated = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate reports every problem at once rather than the first one.
func (c *Config) Validate() error {
	var errs []error

	if c.Google.ClientID == "" {
		errs = append(errs, errors.New("google.client_id (GOOGLE_CLIENT_ID) is required"))
	}
	if c.Google.ClientSecret == "" {
		errs = append(errs, errors.New("google.client_secret (GOOGLE_CLIENT_SECRET) is required"))
	}
	if c.Google.DiscoveryURL == "" {
		errs = append(errs, errors.New("google.discovery_url must not be empty"))
	}
	if len(c.Session.Secret) < 16 {
		errs = append(errs, errors.New("session.secret (SECRET_KEY) must be at least 16 characters"))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("session.ttl must be positive"))
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d is out of range", c.Server.Port))
	}
	if c.Database.Path == "" {
		errs = append(errs, errors.New("database.path (DB_PATH) must not be empty"))
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q must be text or json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

func findFile() string {
	if p := os.Getenv(PathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range defaultPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("config: generating session secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
