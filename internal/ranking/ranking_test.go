package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type entry struct {
	name  string
	total int
}

type fieldRow struct {
	player string
	score  string
}

func names[T any](rows []T, name func(T) string) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = name(r)
	}
	return out
}

func TestRank_Stable(t *testing.T) {
	in := []entry{
		{"first", 2},
		{"second", -1},
		{"third", 2},
		{"fourth", -1},
		{"fifth", 0},
	}

	got := Rank(in, func(e entry) int { return e.total })

	assert.Equal(t,
		[]string{"second", "fourth", "fifth", "first", "third"},
		names(got, func(e entry) string { return e.name }),
	)
	// input untouched
	assert.Equal(t, "first", in[0].name)
}

func TestRank_Empty(t *testing.T) {
	got := Rank([]entry{}, func(e entry) int { return e.total })
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestRankField(t *testing.T) {
	in := []fieldRow{
		{"Cut Player", "CUT"},
		{"Leader", "-9"},
		{"Even Upper", "E"},
		{"Over", "+4"},
		{"Even Lower", "e"},
		{"Withdrawn", "WD"},
		{"Zero", "0"},
	}

	got := RankField(in, func(r fieldRow) string { return r.score })

	assert.Equal(t,
		[]string{"Leader", "Even Upper", "Even Lower", "Zero", "Over", "Cut Player", "Withdrawn"},
		names(got, func(r fieldRow) string { return r.player }),
	)
}
