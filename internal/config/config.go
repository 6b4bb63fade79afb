// Package config reads taskdeck settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/language"
)

// Gateway backends
const (
	BackendMemory = "memory"
	BackendLocal  = "local"
	BackendHTTP   = "http"
)

// Config holds client and server settings
type Config struct {
	Backend        string
	APIURL         string
	DataDir        string
	MockLatency    time.Duration
	RequestTimeout time.Duration
	RedisURL       string
	CacheTTL       time.Duration
	LogLevel       log.Level
	MissingDueLast bool
	Locale         language.Tag

	// server only
	ListenAddr string
	JWTSecret  string
	TokenTTL   time.Duration
}

// Load reads the .env file in the working directory, if any, and then the
// process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config using getenv for lookups
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		Backend:        BackendMemory,
		MockLatency:    800 * time.Millisecond,
		RequestTimeout: 10 * time.Second,
		CacheTTL:       5 * time.Minute,
		LogLevel:       log.InfoLevel,
		ListenAddr:     ":8080",
		TokenTTL:       24 * time.Hour,
	}

	if v := strings.ToLower(strings.TrimSpace(getenv("TASKDECK_BACKEND"))); v != "" {
		switch v {
		case BackendMemory, BackendLocal, BackendHTTP:
			cfg.Backend = v
		default:
			return nil, fmt.Errorf("invalid TASKDECK_BACKEND %q", v)
		}
	}
	cfg.APIURL = strings.TrimRight(getenv("TASKDECK_API_URL"), "/")
	if cfg.Backend == BackendHTTP && cfg.APIURL == "" {
		return nil, errors.New("TASKDECK_API_URL is required for the http backend")
	}

	dataDir, err := dataDir(getenv)
	if err != nil {
		return nil, err
	}
	cfg.DataDir = dataDir

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"MOCK_LATENCY", &cfg.MockLatency},
		{"REQUEST_TIMEOUT", &cfg.RequestTimeout},
		{"CACHE_TTL", &cfg.CacheTTL},
		{"TOKEN_TTL", &cfg.TokenTTL},
	}
	for _, d := range durations {
		v := getenv(d.key)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil || parsed < 0 {
			return nil, fmt.Errorf("invalid %s: %q", d.key, v)
		}
		*d.dst = parsed
	}
	if cfg.RequestTimeout == 0 {
		return nil, errors.New("invalid REQUEST_TIMEOUT: must be greater than zero")
	}

	cfg.RedisURL = getenv("REDIS_URL")

	if v := getenv("LOG_LEVEL"); v != "" {
		lvl, err := log.ParseLevel(v)
		if err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
		cfg.LogLevel = lvl
	}
	if dbg, err := strconv.ParseBool(getenv("DEBUG")); err == nil && dbg {
		cfg.LogLevel = log.DebugLevel
	}

	if v := getenv("MISSING_DUE_LAST"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid MISSING_DUE_LAST: %q", v)
		}
		cfg.MissingDueLast = b
	}

	cfg.Locale = locale(getenv)

	if v := getenv("LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	cfg.JWTSecret = getenv("JWT_SECRET")

	return cfg, nil
}

// ValidateServer checks the settings only the API server needs
func (c *Config) ValidateServer() error {
	if c.JWTSecret == "" {
		return errors.New("missing JWT_SECRET")
	}
	if c.TokenTTL == 0 {
		return errors.New("invalid TOKEN_TTL: must be greater than zero")
	}
	return nil
}

// DBPath is the SQLite database inside the data directory
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "taskdeck.db")
}

// LogPath is the client log file inside the data directory
func (c *Config) LogPath() string {
	return filepath.Join(c.DataDir, "taskdeck.log")
}

// EnsureDataDir creates the data directory if needed
func (c *Config) EnsureDataDir() error {
	return os.MkdirAll(c.DataDir, 0755)
}

// dataDir uses TASKDECK_DATA_DIR, the XDG data directory or ~/.local/share
func dataDir(getenv func(string) string) (string, error) {
	if dir := getenv("TASKDECK_DATA_DIR"); dir != "" {
		return dir, nil
	}
	base := getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "taskdeck"), nil
}

// locale reads TASKDECK_LOCALE or LANG ("en_US.UTF-8" style). Unparseable
// values give language.Und.
func locale(getenv func(string) string) language.Tag {
	v := getenv("TASKDECK_LOCALE")
	if v == "" {
		v = getenv("LANG")
	}
	v, _, _ = strings.Cut(v, ".")
	tag, err := language.Parse(strings.ReplaceAll(v, "_", "-"))
	if err != nil {
		return language.Und
	}
	return tag
}
