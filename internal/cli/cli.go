package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pfrederiksen/masters-pool/internal/config"
	"github.com/pfrederiksen/masters-pool/internal/leaderboard"
	"github.com/pfrederiksen/masters-pool/internal/logger"
	"github.com/pfrederiksen/masters-pool/internal/metrics"
	"github.com/pfrederiksen/masters-pool/internal/pool"
	"github.com/pfrederiksen/masters-pool/internal/storage"
	"github.com/spf13/cobra"
)

const (
	ExitSuccess = 0
	ExitError   = 1
	ExitChanges = 2
)

// Version is stamped at build time with -ldflags "-X github.com/pfrederiksen/masters-pool/internal/cli.Version=..."
var Version = "dev"

// errChanges asks Execute to exit with ExitChanges
var errChanges = errors.New("score changes detected")

var (
	flagConfig  string
	flagDataDir string
	flagFormat  string
	flagVerbose bool
)

// app holds everything a command needs, built once per invocation
type app struct {
	cfg     *config.Config
	format  OutputFormat
	store   *storage.Storage
	cache   *leaderboard.Cache
	metrics *metrics.Recorder
	svc     *pool.Service
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "masters-pool",
		Short: "Run a fantasy golf pool against the live tournament leaderboard",
		Long: `A CLI tool to run a small fantasy golf pool.
Each competitor picks three players; their live scores are summed and the
competitors are ranked lowest total first.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	// Define flags
	cmd.PersistentFlags().StringVar(&flagConfig, "config", "", "YAML config file (or env: "+config.EnvConfigFile+")")
	cmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "Data directory for pool.json (overrides config)")
	cmd.PersistentFlags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging")

	cmd.AddCommand(
		newScoreboardCmd(a),
		newFieldCmd(a),
		newRefreshCmd(a),
		newPlayersCmd(a),
		newCompetitorCmd(a),
		newServeCmd(a),
	)

	return cmd
}

// setup loads config and wires the service graph
func (a *app) setup(cmd *cobra.Command) error {
	// Validate format
	format := OutputFormat(strings.ToLower(flagFormat))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}
	a.format = format

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	if flagDataDir != "" {
		cfg.DataDir = flagDataDir
	}
	a.cfg = cfg

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("%w: %v", config.ErrInvalid, err)
	}
	if flagVerbose {
		level = logger.LevelDebug
	}
	// stdout is reserved for command output
	logger.SetDefault(logger.NewWithFormat(level, cmd.ErrOrStderr(), logger.Format(cfg.LogFormat)))

	logger.Debug("Configuration loaded", logger.Fields{
		"fetcher":        cfg.Fetcher,
		"source_url":     cfg.SourceURL,
		"cache_duration": cfg.CacheDuration.String(),
		"data_dir":       cfg.DataDir,
	})

	a.store, err = storage.New(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	a.metrics = metrics.New()
	a.cache = leaderboard.NewCache(newFetcher(cfg),
		leaderboard.WithTTL(cfg.CacheDuration),
		leaderboard.WithFetchTimeout(fetchCap(cfg)),
		leaderboard.WithMetrics(a.metrics),
	)
	a.svc = pool.NewService(a.cache, a.store, a.store,
		pool.WithMetrics(a.metrics),
		pool.WithRequestTimeout(cfg.RequestTimeout),
	)
	return nil
}

// newFetcher builds the configured leaderboard source, behind a circuit
// breaker unless breaker_failures is 0
func newFetcher(cfg *config.Config) leaderboard.Fetcher {
	var f leaderboard.Fetcher
	switch cfg.Fetcher {
	case config.FetcherBrowser:
		f = leaderboard.NewBrowserFetcher(
			leaderboard.WithBrowserURL(cfg.SourceURL),
			leaderboard.WithExecPath(cfg.ChromeBin),
			leaderboard.WithBrowserUserAgent(cfg.UserAgent),
			leaderboard.WithPageLoadTimeout(cfg.PageLoadTimeout),
			leaderboard.WithBrowserRoundDetail(cfg.TrackRoundDetail),
		)
	default:
		f = leaderboard.NewScraper(
			leaderboard.WithURL(cfg.SourceURL),
			leaderboard.WithUserAgent(cfg.UserAgent),
			leaderboard.WithTimeout(cfg.FetchTimeout),
			leaderboard.WithRoundDetail(cfg.TrackRoundDetail),
		)
	}

	if cfg.BreakerFailures > 0 {
		f = leaderboard.NewBreaker(f, uint32(cfg.BreakerFailures), cfg.BreakerCooldown)
	}
	return f
}

// fetchCap bounds a single fetch by the slowest configured fetcher timeout
func fetchCap(cfg *config.Config) time.Duration {
	if cfg.Fetcher == config.FetcherBrowser && cfg.PageLoadTimeout > cfg.FetchTimeout {
		return cfg.PageLoadTimeout
	}
	return cfg.FetchTimeout
}

// Execute runs the CLI
func Execute() {
	err := NewRootCmd().Execute()
	switch {
	case err == nil:
		os.Exit(ExitSuccess)
	case errors.Is(err, errChanges):
		os.Exit(ExitChanges)
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
