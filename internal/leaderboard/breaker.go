package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pfrederiksen/masters-pool/internal/logger"
	"github.com/sony/gobreaker"
)

// ErrSourceUnavailable is returned while the circuit is open.
var ErrSourceUnavailable = errors.New("leaderboard source unavailable")

// Breaker short-circuits a persistently failing Fetcher so stale reads fail
// fast instead of waiting out a full fetch timeout each time. It never retries.
type Breaker struct {
	next Fetcher
	cb   *gobreaker.CircuitBreaker
}

// NewBreaker opens after `failures` consecutive failed fetches and probes the
// source again once `cooldown` has passed.
func NewBreaker(next Fetcher, failures uint32, cooldown time.Duration) *Breaker {
	if failures == 0 {
		failures = 1
	}
	settings := gobreaker.Settings{
		Name:        "leaderboard-" + fetcherName(next),
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed", logger.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
		},
	}

	return &Breaker{
		next: next,
		cb:   gobreaker.NewCircuitBreaker(settings),
	}
}

// Name reports the wrapped fetcher's name
func (b *Breaker) Name() string {
	return fetcherName(b.next)
}

// State returns the breaker state: "closed", "half-open" or "open"
func (b *Breaker) State() string {
	return b.cb.State().String()
}

// Fetch delegates to the wrapped fetcher unless the circuit is open
func (b *Breaker) Fetch(ctx context.Context) Result {
	out, err := b.cb.Execute(func() (interface{}, error) {
		res := b.next.Fetch(ctx)
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Scores, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return Result{Err: fmt.Errorf("%w: %v", ErrSourceUnavailable, err)}
		}
		return Result{Err: err}
	}

	scores, _ := out.([]PlayerScore)
	return Result{Scores: scores}
}
