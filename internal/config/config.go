// Package config defines masters-pool configuration and how it is loaded.
//
// Values are layered, lowest precedence first: built-in defaults, an
// optional YAML file, then MASTERS_POOL_* environment variables. A .env file
// in the working directory is loaded into the environment first; variables
// already set in the process win over it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix prefixes every environment override, e.g. MASTERS_POOL_CACHE_DURATION.
	EnvPrefix = "MASTERS_POOL_"
	// EnvConfigFile names the environment variable holding a YAML config path.
	EnvConfigFile = EnvPrefix + "CONFIG"
	// DotEnvFile is read from the working directory when present.
	DotEnvFile = ".env"

	FetcherHTTP    = "http"
	FetcherBrowser = "browser"

	DefaultSourceURL     = "https://www.espn.com/golf/leaderboard"
	DefaultCacheDuration = 600 * time.Second
	DefaultFetchTimeout  = 30 * time.Second
	DefaultUserAgent     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat is json or console.
	LogFormat string `koanf:"log_format"`

	// SourceURL is the public tournament leaderboard page.
	SourceURL string `koanf:"source_url"`
	// Fetcher selects the leaderboard implementation: http or browser.
	Fetcher   string `koanf:"fetcher"`
	UserAgent string `koanf:"user_agent"`
	// TrackRoundDetail also extracts the "today" and "thru" columns.
	TrackRoundDetail bool          `koanf:"track_round_detail"`
	FetchTimeout     time.Duration `koanf:"fetch_timeout"`
	PageLoadTimeout  time.Duration `koanf:"page_load_timeout"`
	// ChromeBin overrides the Chrome executable for the browser fetcher.
	ChromeBin string `koanf:"chrome_bin"`

	// BreakerFailures consecutive failed fetches open the circuit; 0 disables it.
	BreakerFailures int           `koanf:"breaker_failures"`
	BreakerCooldown time.Duration `koanf:"breaker_cooldown"`

	CacheDuration time.Duration `koanf:"cache_duration"`
	// RequestTimeout caps a whole scoreboard or refresh request.
	RequestTimeout time.Duration `koanf:"request_timeout"`

	DataDir        string   `koanf:"data_dir"`
	Addr           string   `koanf:"addr"`
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "json",
		SourceURL:        DefaultSourceURL,
		Fetcher:          FetcherHTTP,
		UserAgent:        DefaultUserAgent,
		TrackRoundDetail: false,
		FetchTimeout:     DefaultFetchTimeout,
		PageLoadTimeout:  120 * time.Second,
		BreakerFailures:  5,
		BreakerCooldown:  2 * time.Minute,
		CacheDuration:    DefaultCacheDuration,
		RequestTimeout:   45 * time.Second,
		DataDir:          "~/.local/share/masters-pool",
		Addr:             ":8080",
		AllowedOrigins:   []string{"*"},
	}
}

// Load builds a Config by layering defaults, an optional YAML file and env vars.
// An empty path falls back to $MASTERS_POOL_CONFIG; no file at all is fine.
func Load(path string) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", DotEnvFile, err)
	}

	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	// MASTERS_POOL_CACHE_DURATION -> cache_duration (flat keys)
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		return strings.ToLower(s)
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values the core depends on.
func (c *Config) Validate() error {
	switch c.Fetcher {
	case FetcherHTTP, FetcherBrowser:
	default:
		return fmt.Errorf("%w: fetcher must be %q or %q, got %q", ErrInvalid, FetcherHTTP, FetcherBrowser, c.Fetcher)
	}
	if strings.TrimSpace(c.SourceURL) == "" {
		return fmt.Errorf("%w: source_url must not be empty", ErrInvalid)
	}
	if c.CacheDuration <= 0 {
		return fmt.Errorf("%w: cache_duration must be positive", ErrInvalid)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("%w: fetch_timeout must be positive", ErrInvalid)
	}
	if c.BreakerFailures < 0 {
		return fmt.Errorf("%w: breaker_failures must not be negative", ErrInvalid)
	}
	if c.DataDir == "" {
		return fmt.Errorf("%w: data_dir must not be empty", ErrInvalid)
	}
	return nil
}
