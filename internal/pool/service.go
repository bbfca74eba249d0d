// Package pool is the core of the competition: it combines the cached
// leaderboard with the competitor roster to produce ranked scoreboards, and
// feeds forced refreshes into the score ledger.
package pool

import (
	"context"
	"fmt"
	"time"

	"github.com/pfrederiksen/masters-pool/internal/clock"
	"github.com/pfrederiksen/masters-pool/internal/competitor"
	"github.com/pfrederiksen/masters-pool/internal/leaderboard"
	"github.com/pfrederiksen/masters-pool/internal/logger"
	"github.com/pfrederiksen/masters-pool/internal/metrics"
	"github.com/pfrederiksen/masters-pool/internal/ranking"
	"github.com/pfrederiksen/masters-pool/internal/scoring"
)

// Leaderboard is the cached standings source; *leaderboard.Cache implements it.
type Leaderboard interface {
	Mapping(ctx context.Context) (leaderboard.Mapping, error)
	Refresh(ctx context.Context) ([]leaderboard.PlayerScore, error)
	Stale() bool
}

// Roster supplies the competitors to score.
type Roster interface {
	ListCompetitors() ([]competitor.Competitor, error)
}

// Ledger stores per-player score history.
type Ledger interface {
	MasterScores() ([]competitor.MasterScore, error)
	RecordScores(scraped []leaderboard.PlayerScore, now time.Time) ([]competitor.Change, error)
}

// RefreshResult summarizes a forced refresh
type RefreshResult struct {
	Players int                 `json:"players"`
	Changes []competitor.Change `json:"changes"`
}

// Service wires the leaderboard, roster and ledger together
type Service struct {
	board          Leaderboard
	roster         Roster
	ledger         Ledger
	clock          clock.Clock
	metrics        *metrics.Recorder
	requestTimeout time.Duration
}

// Option configures a Service
type Option func(*Service)

// WithClock injects the time source for ledger timestamps
func WithClock(clk clock.Clock) Option {
	return func(s *Service) {
		s.clock = clk
	}
}

// WithMetrics records refresh metrics
func WithMetrics(r *metrics.Recorder) Option {
	return func(s *Service) {
		s.metrics = r
	}
}

// WithRequestTimeout caps each call; 0 leaves the caller's deadline alone
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.requestTimeout = d
	}
}

// NewService creates a Service
func NewService(board Leaderboard, roster Roster, ledger Ledger, opts ...Option) *Service {
	s := &Service{
		board:  board,
		roster: roster,
		ledger: ledger,
		clock:  &clock.DefaultClock{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.requestTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.requestTimeout)
}

// LeaderboardMapping returns the cached standings
func (s *Service) LeaderboardMapping(ctx context.Context) (leaderboard.Mapping, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.board.Mapping(ctx)
}

// ForceRefreshLeaderboard bypasses the cache and returns the raw rows
func (s *Service) ForceRefreshLeaderboard(ctx context.Context) ([]leaderboard.PlayerScore, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.board.Refresh(ctx)
}

// AvailablePlayers lists every player currently on the leaderboard, sorted
func (s *Service) AvailablePlayers(ctx context.Context) ([]string, error) {
	m, err := s.LeaderboardMapping(ctx)
	if err != nil {
		return nil, err
	}
	return m.Players(), nil
}

// AggregateScoreboard scores the given competitors against the cached standings
func (s *Service) AggregateScoreboard(ctx context.Context, competitors []competitor.Competitor) ([]competitor.ScoreboardEntry, error) {
	m, err := s.LeaderboardMapping(ctx)
	if err != nil {
		return nil, err
	}
	return BuildScoreboard(competitors, m), nil
}

// Scoreboard scores the whole roster
func (s *Service) Scoreboard(ctx context.Context) ([]competitor.ScoreboardEntry, error) {
	competitors, err := s.roster.ListCompetitors()
	if err != nil {
		return nil, fmt.Errorf("listing competitors: %w", err)
	}
	return s.AggregateScoreboard(ctx, competitors)
}

// Refresh forces a fetch and records the raw rows in the ledger. A failed
// fetch yields zero rows and leaves the ledger untouched.
func (s *Service) Refresh(ctx context.Context) (*RefreshResult, error) {
	raw, err := s.ForceRefreshLeaderboard(ctx)
	if err != nil {
		return nil, err
	}

	result := &RefreshResult{Players: len(raw)}
	if len(raw) == 0 {
		logger.Warn("Refresh returned no players; ledger unchanged", nil)
		return result, nil
	}

	changes, err := s.ledger.RecordScores(raw, s.clock.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("recording scores: %w", err)
	}
	result.Changes = changes
	s.metrics.AddRefreshChanges(len(changes))

	logger.Info("Leaderboard refreshed", logger.Fields{
		"players": len(raw),
		"changes": len(changes),
	})
	return result, nil
}

// FullField returns every player in the ledger ranked by score. With
// refreshIfStale set, an expired cache is refreshed into the ledger first.
func (s *Service) FullField(ctx context.Context, refreshIfStale bool) ([]competitor.MasterScore, error) {
	if refreshIfStale && s.board.Stale() {
		if _, err := s.Refresh(ctx); err != nil {
			return nil, err
		}
	}

	records, err := s.ledger.MasterScores()
	if err != nil {
		return nil, fmt.Errorf("loading master scores: %w", err)
	}
	return RankFullField(records), nil
}

// BuildScoreboard aggregates each competitor's picks and ranks the result,
// lowest total first; ties keep roster order.
func BuildScoreboard(competitors []competitor.Competitor, m leaderboard.Mapping) []competitor.ScoreboardEntry {
	entries := make([]competitor.ScoreboardEntry, 0, len(competitors))
	for _, c := range competitors {
		agg := scoring.Aggregate(c.Players, m)
		entries = append(entries, competitor.ScoreboardEntry{
			CompetitorID: c.ID,
			Competitor:   c.Name,
			Players:      c.Players,
			Scores:       agg.PerPlayer,
			Total:        agg.TotalDisplay,
			TotalNumeric: agg.TotalNumeric,
		})
	}

	return ranking.Rank(entries, func(e competitor.ScoreboardEntry) int {
		return e.TotalNumeric
	})
}

// RankFullField orders master score records by their current score token
func RankFullField(records []competitor.MasterScore) []competitor.MasterScore {
	return ranking.RankField(records, func(r competitor.MasterScore) string {
		return r.CurrentScore
	})
}
