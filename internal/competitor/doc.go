// Package competitor defines pool entrants, their derived scoreboard rows and
// the per-player score ledger.
//
// The Ledger mirrors the tournament leaderboard over time: each refresh is
// applied to it, and any player whose score moved has the previous score and
// timestamp pushed onto its history.
package competitor
