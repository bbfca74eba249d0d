package competitor

import (
	"sort"
	"time"

	"github.com/pfrederiksen/masters-pool/internal/leaderboard"
)

// Change types reported by Ledger.Apply
const (
	ChangeNew   = "new"
	ChangeScore = "score"
)

// MasterScore is the latest known score of one tournament player
type MasterScore struct {
	Player       string        `json:"golfer"`
	CurrentScore string        `json:"current_score"`
	LastUpdated  time.Time     `json:"last_updated"`
	History      []ScoreChange `json:"history,omitempty"`
}

// ScoreChange is a superseded score and when it was recorded
type ScoreChange struct {
	Score     string    `json:"score"`
	Timestamp time.Time `json:"timestamp"`
}

// Change describes one difference found while applying a refresh
type Change struct {
	Player     string    `json:"player"`
	ChangeType string    `json:"change_type"` // "new", "score"
	OldValue   string    `json:"old_value"`
	NewValue   string    `json:"new_value"`
	DetectedAt time.Time `json:"detected_at"`
}

// Ledger holds every player ever seen, keyed by name
type Ledger struct {
	Scores map[string]*MasterScore `json:"scores"`
}

// NewLedger creates an empty ledger
func NewLedger() *Ledger {
	return &Ledger{
		Scores: make(map[string]*MasterScore),
	}
}

// Apply records freshly fetched scores. New players are inserted; a player
// whose score changed gets the old score and its timestamp appended to
// history; every fetched player's LastUpdated becomes now. Players absent from
// the fetch are left alone.
func (l *Ledger) Apply(scraped []leaderboard.PlayerScore, now time.Time) []Change {
	if l.Scores == nil {
		l.Scores = make(map[string]*MasterScore)
	}

	var changes []Change

	for _, row := range scraped {
		rec, exists := l.Scores[row.Player]
		if !exists {
			l.Scores[row.Player] = &MasterScore{
				Player:       row.Player,
				CurrentScore: row.Score,
				LastUpdated:  now,
			}
			changes = append(changes, Change{
				Player:     row.Player,
				ChangeType: ChangeNew,
				NewValue:   row.Score,
				DetectedAt: now,
			})
			continue
		}

		if rec.CurrentScore != row.Score {
			rec.History = append(rec.History, ScoreChange{
				Score:     rec.CurrentScore,
				Timestamp: rec.LastUpdated,
			})
			changes = append(changes, Change{
				Player:     row.Player,
				ChangeType: ChangeScore,
				OldValue:   rec.CurrentScore,
				NewValue:   row.Score,
				DetectedAt: now,
			})
		}
		rec.CurrentScore = row.Score
		rec.LastUpdated = now
	}

	return changes
}

// List returns copies of all records ordered by player name
func (l *Ledger) List() []MasterScore {
	out := make([]MasterScore, 0, len(l.Scores))
	for _, rec := range l.Scores {
		cp := *rec
		cp.History = append([]ScoreChange(nil), rec.History...)
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Player < out[j].Player
	})
	return out
}
