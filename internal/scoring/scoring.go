// Package scoring turns leaderboard score tokens into pool totals.
//
// Golf scores are relative to par: "-3" is three under, "+2" two over and
// "E" even. Tokens that are not numbers ("CUT", "WD")
// never fail a computation; they are neutral for competitor totals and sort
// last in the full field.
package scoring

import (
	"strconv"
	"strings"

	"github.com/pfrederiksen/masters-pool/internal/leaderboard"
)

// Even is the display form of a zero total.
const Even = "E"

// Unranked is the full-field sort value for unparsable tokens.
const Unranked = 9999

// Totals is one competitor's combined score.
type Totals struct {
	// PerPlayer maps each chosen player to the token shown for them.
	PerPlayer    map[string]string
	TotalDisplay string
	TotalNumeric int
}

// ParseToken reads an integer score with at most one leading sign.
// Surrounding whitespace is ignored.
func ParseToken(tok string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(tok))
	if err != nil {
		return 0, false
	}
	return n, true
}

// FormatTotal renders a numeric total the way golf leaderboards do:
// 0 is "E", over par gets a "+", under par keeps its own "-".
func FormatTotal(n int) string {
	switch {
	case n == 0:
		return Even
	case n > 0:
		return "+" + strconv.Itoa(n)
	default:
		return strconv.Itoa(n)
	}
}

// Aggregate totals the chosen players' scores. Players missing from the
// mapping show as "N/A" and status tokens are shown as-is; both count as 0.
func Aggregate(players [3]string, m leaderboard.Mapping) Totals {
	agg := Totals{PerPlayer: make(map[string]string, len(players))}

	for _, p := range players {
		tok := leaderboard.NotAvailable
		if ps, ok := m[p]; ok {
			tok = ps.Score
		}
		agg.PerPlayer[p] = tok

		if n, ok := ParseToken(tok); ok {
			agg.TotalNumeric += n
		}
	}

	agg.TotalDisplay = FormatTotal(agg.TotalNumeric)
	return agg
}

// FieldValue normalizes a token for ranking the whole tournament field:
// "E" in any case is 0, integers parse, anything else sorts last.
func FieldValue(tok string) int {
	s := strings.TrimSpace(tok)
	if strings.EqualFold(s, Even) {
		return 0
	}
	if n, ok := ParseToken(s); ok {
		return n
	}
	return Unranked
}
