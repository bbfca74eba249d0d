// Package cli implements the command-line interface for masters-pool.
//
// The cli package provides the Cobra-based CLI for scoring the pool from the
// terminal (scoreboard, full field, forced refresh, player list), managing
// competitors, and running the JSON API. It loads configuration, builds the
// leaderboard fetcher, cache, storage and pool service, and formats output as
// text or JSON.
package cli
