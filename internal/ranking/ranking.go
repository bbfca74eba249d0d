// Package ranking orders scored entries, lowest score first.
package ranking

import (
	"sort"

	"github.com/pfrederiksen/masters-pool/internal/scoring"
)

// Rank returns a copy of entries sorted ascending by key. Equal keys keep
// their input order; there is no secondary key.
func Rank[T any](entries []T, key func(T) int) []T {
	out := make([]T, len(entries))
	copy(out, entries)

	sort.SliceStable(out, func(i, j int) bool {
		return key(out[i]) < key(out[j])
	})
	return out
}

// RankField orders a whole tournament field by score token. "E" counts as 0
// and unparsable tokens such as "CUT" go to the bottom, so a corrupt row can
// never break the ranking.
func RankField[T any](records []T, token func(T) string) []T {
	return Rank(records, func(r T) int {
		return scoring.FieldValue(token(r))
	})
}
