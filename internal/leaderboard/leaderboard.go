package leaderboard

import (
	"context"
	"sort"
)

// NotAvailable is shown for any score the source did not provide.
const NotAvailable = "N/A"

// PlayerScore is one row of the tournament leaderboard
type PlayerScore struct {
	Player string `json:"player"`
	Score  string `json:"score"`
	Today  string `json:"today,omitempty"`
	Thru   string `json:"thru,omitempty"`
}

// Mapping indexes the latest standings by player name. An absent key means
// the player is unknown, not that they are at even par. A Mapping is replaced
// wholesale on refresh and must not be modified by readers.
type Mapping map[string]PlayerScore

// NewMapping builds a Mapping from fetched rows; later rows win on duplicate names.
func NewMapping(scores []PlayerScore) Mapping {
	m := make(Mapping, len(scores))
	for _, s := range scores {
		m[s.Player] = s
	}
	return m
}

// Players returns the player names in alphabetical order
func (m Mapping) Players() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Result is the outcome of a single fetch attempt.
type Result struct {
	Scores []PlayerScore
	Err    error
}

// OK reports whether the fetch succeeded, possibly with zero rows.
func (r Result) OK() bool {
	return r.Err == nil
}

// Players collapses the result to a plain list: the fetched rows on success,
// an empty list on failure.
func (r Result) Players() []PlayerScore {
	if r.Err != nil || r.Scores == nil {
		return []PlayerScore{}
	}
	return r.Scores
}

// Fetcher retrieves the full tournament leaderboard. Implementations never
// panic and report every failure through Result.Err.
//
//go:generate mockgen -package=mocks -destination=mocks/mock_fetcher.go github.com/pfrederiksen/masters-pool/internal/leaderboard Fetcher
type Fetcher interface {
	Fetch(ctx context.Context) Result
}

// FetcherFunc adapts a function to the Fetcher interface
type FetcherFunc func(ctx context.Context) Result

// Fetch calls f(ctx)
func (f FetcherFunc) Fetch(ctx context.Context) Result {
	return f(ctx)
}

// fetcherName labels a fetcher in logs and metrics.
func fetcherName(f Fetcher) string {
	if n, ok := f.(interface{ Name() string }); ok {
		return n.Name()
	}
	return "custom"
}
