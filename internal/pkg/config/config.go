package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultFile is read from the working directory when present.
const DefaultFile = "ghibli.yaml"

const envPrefix = "GHIBLI_"

type Config struct {
	Service ServiceConfig `koanf:"service"`
	Surface SurfaceConfig `koanf:"surface"`
	Journal JournalConfig `koanf:"journal"`
	Log     LogConfig     `koanf:"log"`
	Stub    StubConfig    `koanf:"stub"`
}

// ServiceConfig points the client at the generation service.
type ServiceConfig struct {
	BaseURL                 string        `koanf:"base_url"`
	Timeout                 time.Duration `koanf:"timeout"`
	UserAgent               string        `koanf:"user_agent"`
	RestrictPrivateNetworks bool          `koanf:"restrict_private_networks"` // refuse loopback and private targets
}

// SurfaceConfig tunes render context recovery.
type SurfaceConfig struct {
	RestoreDelay   time.Duration `koanf:"restore_delay"`
	FailureTimeout time.Duration `koanf:"failure_timeout"` // measured from the loss
}

type JournalConfig struct {
	Driver string `koanf:"driver"` // memory, sqlite
	DSN    string `koanf:"dsn"`
}

type LogConfig struct {
	Level string `koanf:"level"` // debug, info, warn, error
}

// StubConfig configures the development stub service.
type StubConfig struct {
	Port       int    `koanf:"port"`
	FailStatus int    `koanf:"fail_status"` // non-zero forces every request to fail
	FailBody   string `koanf:"fail_body"`
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Load reads DefaultFile if it exists, then GHIBLI_ environment variables.
func Load() (*Config, error) {
	return LoadFile(DefaultFile)
}

// LoadFile reads path if it exists, then GHIBLI_ environment variables.
// Nested keys use a double underscore, e.g. GHIBLI_SERVICE__BASE_URL.
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("load %s: %w", path, err)
			}
		}
	}

	// Environment overrides the file.
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	defaults := map[string]any{
		"service.base_url":                  "http://localhost:9090",
		"service.timeout":                   "120s",
		"service.user_agent":                "ghibli-studio",
		"service.restrict_private_networks": false,
		"surface.restore_delay":             "500ms",
		"surface.failure_timeout":           "5s",
		"journal.driver":                    "memory",
		"journal.dsn":                       ":memory:",
		"log.level":                         "info",
		"stub.port":                         9090,
	}
	for key, value := range defaults {
		if !k.Exists(key) {
			k.Set(key, value)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	cfg.Service.UserAgent = substituteEnvVars(cfg.Service.UserAgent)
	cfg.Journal.DSN = substituteEnvVars(cfg.Journal.DSN)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the components cannot run with.
func (c *Config) Validate() error {
	if c.Service.Timeout <= 0 {
		return fmt.Errorf("service.timeout must be positive, got %s", c.Service.Timeout)
	}
	if c.Surface.FailureTimeout <= c.Surface.RestoreDelay {
		return fmt.Errorf("surface.failure_timeout %s must exceed surface.restore_delay %s",
			c.Surface.FailureTimeout, c.Surface.RestoreDelay)
	}
	switch c.Journal.Driver {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("unsupported journal.driver %q", c.Journal.Driver)
	}
	return nil
}

// SlogLevel maps the configured level to a slog.Level, defaulting to info.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func substituteEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}
