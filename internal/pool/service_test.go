package pool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pfrederiksen/masters-pool/internal/clock"
	"github.com/pfrederiksen/masters-pool/internal/competitor"
	"github.com/pfrederiksen/masters-pool/internal/leaderboard"
	"github.com/pfrederiksen/masters-pool/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2026, 4, 12, 16, 0, 0, 0, time.UTC)

type stubRoster struct {
	competitors []competitor.Competitor
	err         error
}

func (r *stubRoster) ListCompetitors() ([]competitor.Competitor, error) {
	return r.competitors, r.err
}

type countingFetcher struct {
	calls int32
	rows  []leaderboard.PlayerScore
	err   error
}

func (f *countingFetcher) Fetch(ctx context.Context) leaderboard.Result {
	atomic.AddInt32(&f.calls, 1)
	return leaderboard.Result{Scores: f.rows, Err: f.err}
}

func newService(t *testing.T, f leaderboard.Fetcher, roster Roster) (*Service, *clock.Manual, *storage.Storage) {
	t.Helper()
	clk := clock.NewManual(start)
	store, err := storage.New(t.TempDir())
	require.NoError(t, err)

	cache := leaderboard.NewCache(f, leaderboard.WithClock(clk))
	if roster == nil {
		roster = store
	}
	svc := NewService(cache, roster, store, WithClock(clk), WithRequestTimeout(time.Second))
	return svc, clk, store
}

func TestScoreboard_EndToEnd(t *testing.T) {
	f := &countingFetcher{rows: []leaderboard.PlayerScore{
		{Player: "A", Score: "+2"},
		{Player: "B", Score: "E"},
		{Player: "C", Score: "-1"},
	}}
	roster := &stubRoster{competitors: []competitor.Competitor{
		{ID: "1", Name: "X", Players: [3]string{"A", "B", "C"}},
	}}

	svc, _, _ := newService(t, f, roster)

	board, err := svc.Scoreboard(context.Background())
	require.NoError(t, err)
	require.Len(t, board, 1)

	assert.Equal(t, "X", board[0].Competitor)
	assert.Equal(t, "+1", board[0].Total)
	assert.Equal(t, 1, board[0].TotalNumeric)
	assert.Equal(t, map[string]string{"A": "+2", "B": "E", "C": "-1"}, board[0].Scores)
}

func TestBuildScoreboard_SortedAndStable(t *testing.T) {
	m := leaderboard.NewMapping([]leaderboard.PlayerScore{
		{Player: "A", Score: "-3"},
		{Player: "B", Score: "+1"},
		{Player: "C", Score: "CUT"},
		{Player: "D", Score: "E"},
	})
	competitors := []competitor.Competitor{
		{ID: "1", Name: "Even One", Players: [3]string{"D", "C", "Nobody"}},
		{ID: "2", Name: "Leader", Players: [3]string{"A", "A", "D"}},
		{ID: "3", Name: "Runner Up", Players: [3]string{"B", "A", "B"}},
		{ID: "4", Name: "Even Three", Players: [3]string{"C", "C", "C"}},
	}

	board := BuildScoreboard(competitors, m)

	names := make([]string, len(board))
	for i, e := range board {
		names[i] = e.Competitor
	}
	assert.Equal(t, []string{"Leader", "Runner Up", "Even One", "Even Three"}, names)
	assert.Equal(t, "-6", board[0].Total)
	assert.Equal(t, "N/A", board[2].Scores["Nobody"])
	assert.Equal(t, "E", board[3].Total)
}

func TestScoreboard_UsesCache(t *testing.T) {
	f := &countingFetcher{rows: []leaderboard.PlayerScore{{Player: "A", Score: "-1"}}}
	svc, clk, _ := newService(t, f, &stubRoster{})

	for i := 0; i < 3; i++ {
		_, err := svc.Scoreboard(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&f.calls))

	clk.Advance(leaderboard.DefaultTTL)
	_, err := svc.Scoreboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&f.calls))
}

func TestScoreboard_RosterError(t *testing.T) {
	svc, _, _ := newService(t, &countingFetcher{}, &stubRoster{err: errors.New("disk gone")})

	_, err := svc.Scoreboard(context.Background())
	assert.ErrorContains(t, err, "disk gone")
}

func TestRefresh_RecordsLedger(t *testing.T) {
	f := &countingFetcher{rows: []leaderboard.PlayerScore{
		{Player: "A", Score: "-1"},
		{Player: "B", Score: "+2"},
	}}
	svc, clk, store := newService(t, f, nil)

	res, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Players)
	assert.Len(t, res.Changes, 2)

	clk.Advance(time.Minute)
	f.rows = []leaderboard.PlayerScore{
		{Player: "A", Score: "-2"},
		{Player: "B", Score: "+2"},
	}
	res, err = svc.Refresh(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Changes, 1)
	assert.Equal(t, "A", res.Changes[0].Player)

	scores, err := store.MasterScores()
	require.NoError(t, err)
	require.Len(t, scores, 2)
	assert.Equal(t, "-2", scores[0].CurrentScore)
	assert.True(t, scores[0].LastUpdated.Equal(start.Add(time.Minute)))
	assert.Equal(t, int32(2), atomic.LoadInt32(&f.calls))
}

func TestRefresh_FailedFetchLeavesLedger(t *testing.T) {
	f := &countingFetcher{err: errors.New("403")}
	svc, _, store := newService(t, f, nil)

	res, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Players)
	assert.Empty(t, res.Changes)

	scores, err := store.MasterScores()
	require.NoError(t, err)
	assert.Empty(t, scores)
}

func TestForceRefreshLeaderboard_ReturnsRaw(t *testing.T) {
	rows := []leaderboard.PlayerScore{{Player: "A", Score: "+1"}}
	f := &countingFetcher{rows: rows}
	svc, _, _ := newService(t, f, &stubRoster{})

	for i := 1; i <= 2; i++ {
		raw, err := svc.ForceRefreshLeaderboard(context.Background())
		require.NoError(t, err)
		assert.Equal(t, rows, raw)
		assert.Equal(t, int32(i), atomic.LoadInt32(&f.calls))
	}

	m, err := svc.LeaderboardMapping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "+1", m["A"].Score)
	assert.Equal(t, int32(2), atomic.LoadInt32(&f.calls))
}

func TestFullField(t *testing.T) {
	f := &countingFetcher{rows: []leaderboard.PlayerScore{
		{Player: "Cut", Score: "CUT"},
		{Player: "Over", Score: "+3"},
		{Player: "Even", Score: "e"},
		{Player: "Leader", Score: "-7"},
	}}
	svc, clk, _ := newService(t, f, &stubRoster{})

	// stale (never fetched) cache triggers a refresh into the ledger
	field, err := svc.FullField(context.Background(), true)
	require.NoError(t, err)

	players := make([]string, len(field))
	for i, r := range field {
		players[i] = r.Player
	}
	assert.Equal(t, []string{"Leader", "Even", "Over", "Cut"}, players)
	assert.Equal(t, int32(1), atomic.LoadInt32(&f.calls))

	// fresh cache: no refetch
	_, err = svc.FullField(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&f.calls))

	// refresh disabled even when stale
	clk.Advance(time.Hour)
	_, err = svc.FullField(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&f.calls))
}

func TestRankFullField(t *testing.T) {
	records := []competitor.MasterScore{
		{Player: "WD", CurrentScore: "WD"},
		{Player: "Two", CurrentScore: "+2"},
		{Player: "EvenUpper", CurrentScore: "E"},
		{Player: "EvenLower", CurrentScore: "e"},
		{Player: "Minus", CurrentScore: "-1"},
	}

	got := RankFullField(records)

	players := make([]string, len(got))
	for i, r := range got {
		players[i] = r.Player
	}
	assert.Equal(t, []string{"Minus", "EvenUpper", "EvenLower", "Two", "WD"}, players)
}

func TestAvailablePlayers(t *testing.T) {
	f := &countingFetcher{rows: []leaderboard.PlayerScore{
		{Player: "Zach Johnson", Score: "+5"},
		{Player: "Adam Scott", Score: "E"},
	}}
	svc, _, _ := newService(t, f, &stubRoster{})

	players, err := svc.AvailablePlayers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Adam Scott", "Zach Johnson"}, players)
}

func TestRequestTimeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	slow := leaderboard.FetcherFunc(func(ctx context.Context) leaderboard.Result {
		<-release
		return leaderboard.Result{}
	})

	store, err := storage.New(t.TempDir())
	require.NoError(t, err)
	svc := NewService(leaderboard.NewCache(slow), store, store, WithRequestTimeout(20*time.Millisecond))

	_, err = svc.Scoreboard(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
