package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pfrederiksen/masters-pool/internal/competitor"
	"github.com/pfrederiksen/masters-pool/internal/config"
)

func leaderboardHTML(scores map[string]string, order ...string) string {
	var b strings.Builder
	b.WriteString(`<html><body><table><tbody class="Table__TBODY">`)
	for _, name := range order {
		fmt.Fprintf(&b, `<tr class="PlayerRow__Overview"><td>T1</td><td><a class="AnchorLink leaderboard_player_name" href="#">%s</a></td><td>%s</td></tr>`, name, scores[name])
	}
	b.WriteString(`</tbody></table></body></html>`)
	return b.String()
}

// page is the fake leaderboard served to the CLI
type page struct {
	mu   sync.Mutex
	html string
}

func (p *page) set(html string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.html = html
}

func (p *page) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()
	w.Write([]byte(p.html))
}

// newEnv points the CLI at a fake leaderboard and a temp data dir
func newEnv(t *testing.T, html string) (*page, string) {
	t.Helper()
	p := &page{html: html}
	srv := httptest.NewServer(p)
	t.Cleanup(srv.Close)

	t.Setenv(config.EnvConfigFile, "")
	t.Setenv("MASTERS_POOL_SOURCE_URL", srv.URL)
	t.Setenv("MASTERS_POOL_BREAKER_FAILURES", "0")
	t.Setenv("MASTERS_POOL_LOG_LEVEL", "error")
	return p, t.TempDir()
}

func run(t *testing.T, dataDir string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--data-dir", dataDir}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestCompetitorLifecycle(t *testing.T) {
	_, dir := newEnv(t, leaderboardHTML(nil))

	out, err := run(t, dir, "--format", "json", "competitor", "add", "Alice", "A", "B", "C")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	var added competitor.Competitor
	if err := json.Unmarshal([]byte(out), &added); err != nil {
		t.Fatalf("decoding add output: %v\n%s", err, out)
	}
	if added.ID == "" || added.Name != "Alice" {
		t.Fatalf("added = %+v", added)
	}

	if _, err := run(t, dir, "competitor", "edit", added.ID, "--name", "Alice B", "--pick", "D", "--pick", "E", "--pick", "F"); err != nil {
		t.Fatalf("edit: %v", err)
	}

	out, err = run(t, dir, "--format", "json", "competitor", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var listed []competitor.Competitor
	if err := json.Unmarshal([]byte(out), &listed); err != nil {
		t.Fatalf("decoding list output: %v", err)
	}
	if len(listed) != 1 || listed[0].Name != "Alice B" || listed[0].Players != [3]string{"D", "E", "F"} {
		t.Fatalf("listed = %+v", listed)
	}

	if _, err := run(t, dir, "competitor", "remove", added.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	out, err = run(t, dir, "competitor", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "No competitors yet.") {
		t.Errorf("list after remove = %q", out)
	}
}

func TestCompetitorAdd_Invalid(t *testing.T) {
	_, dir := newEnv(t, leaderboardHTML(nil))

	_, err := run(t, dir, "competitor", "add", "Bob", "A", " ", "C")
	if !errors.Is(err, competitor.ErrInvalid) {
		t.Errorf("add error = %v, want ErrInvalid", err)
	}

	if _, err := run(t, dir, "competitor", "add", "Bob", "A"); err == nil {
		t.Error("expected error for too few picks")
	}
}

func TestCompetitorAdd_Check(t *testing.T) {
	_, dir := newEnv(t, leaderboardHTML(map[string]string{"A": "-1", "B": "E"}, "A", "B"))

	_, err := run(t, dir, "competitor", "add", "--check", "Bob", "A", "B", "Nobody")
	if !errors.Is(err, competitor.ErrInvalid) || !strings.Contains(err.Error(), "Nobody") {
		t.Errorf("add --check error = %v", err)
	}

	if _, err := run(t, dir, "competitor", "add", "--check", "Bob", "A", "B", "A"); err != nil {
		t.Errorf("add --check with known picks: %v", err)
	}
}

func TestScoreboard(t *testing.T) {
	_, dir := newEnv(t, leaderboardHTML(map[string]string{"A": "+2", "B": "E", "C": "-1", "D": "-5"}, "D", "C", "B", "A"))

	for _, args := range [][]string{
		{"competitor", "add", "X", "A", "B", "C"},
		{"competitor", "add", "Y", "D", "B", "C"},
	} {
		if _, err := run(t, dir, args...); err != nil {
			t.Fatalf("%v: %v", args, err)
		}
	}

	out, err := run(t, dir, "--format", "json", "scoreboard")
	if err != nil {
		t.Fatalf("scoreboard: %v", err)
	}
	var board []competitor.ScoreboardEntry
	if err := json.Unmarshal([]byte(out), &board); err != nil {
		t.Fatalf("decoding scoreboard: %v", err)
	}
	if len(board) != 2 {
		t.Fatalf("board = %+v", board)
	}
	if board[0].Competitor != "Y" || board[0].Total != "-6" {
		t.Errorf("leader = %+v, want Y at -6", board[0])
	}
	if board[1].Competitor != "X" || board[1].Total != "+1" || board[1].TotalNumeric != 1 {
		t.Errorf("second = %+v, want X at +1", board[1])
	}

	out, err = run(t, dir, "scoreboard")
	if err != nil {
		t.Fatalf("scoreboard text: %v", err)
	}
	if !strings.Contains(out, "A (+2), B (E), C (-1)") {
		t.Errorf("text scoreboard missing picks:\n%s", out)
	}
}

func TestRefreshAndField(t *testing.T) {
	lb, dir := newEnv(t, leaderboardHTML(map[string]string{"A": "-1", "B": "CUT", "C": "e"}, "A", "C", "B"))

	out, err := run(t, dir, "--format", "json", "refresh")
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if !strings.Contains(out, `"players": 3`) {
		t.Errorf("refresh output = %s", out)
	}

	// nothing changed since the last refresh
	if _, err := run(t, dir, "refresh", "--exit-code"); err != nil {
		t.Errorf("refresh --exit-code with no changes: %v", err)
	}

	lb.set(leaderboardHTML(map[string]string{"A": "-2", "B": "CUT", "C": "e"}, "A", "C", "B"))
	out, err = run(t, dir, "refresh", "--exit-code")
	if !errors.Is(err, errChanges) {
		t.Errorf("refresh --exit-code error = %v, want errChanges", err)
	}
	if !strings.Contains(out, "A: -1 -> -2") {
		t.Errorf("refresh text = %q", out)
	}

	out, err = run(t, dir, "--format", "json", "field", "--refresh=false")
	if err != nil {
		t.Fatalf("field: %v", err)
	}
	var field []struct {
		Player string `json:"golfer"`
		Score  string `json:"current_score"`
	}
	if err := json.Unmarshal([]byte(out), &field); err != nil {
		t.Fatalf("decoding field: %v", err)
	}
	got := make([]string, len(field))
	for i, f := range field {
		got[i] = f.Player
	}
	if strings.Join(got, ",") != "A,C,B" {
		t.Errorf("field order = %v, want A,C,B", got)
	}
}

func TestPlayers(t *testing.T) {
	_, dir := newEnv(t, leaderboardHTML(map[string]string{"Zach": "+1", "Adam": "E"}, "Zach", "Adam"))

	out, err := run(t, dir, "players")
	if err != nil {
		t.Fatalf("players: %v", err)
	}
	if !strings.HasPrefix(out, "Adam\nZach\n") || !strings.Contains(out, "Total: 2 players") {
		t.Errorf("players output = %q", out)
	}
}

func TestInvalidFormat(t *testing.T) {
	_, dir := newEnv(t, leaderboardHTML(nil))

	_, err := run(t, dir, "--format", "xml", "players")
	if err == nil || !strings.Contains(err.Error(), "invalid format") {
		t.Errorf("error = %v, want invalid format", err)
	}
}

func TestInvalidConfig(t *testing.T) {
	_, dir := newEnv(t, leaderboardHTML(nil))
	t.Setenv("MASTERS_POOL_FETCHER", "carrier-pigeon")

	_, err := run(t, dir, "players")
	if !errors.Is(err, config.ErrInvalid) {
		t.Errorf("error = %v, want config.ErrInvalid", err)
	}
}

func TestSortCompetitors(t *testing.T) {
	t0 := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	base := []competitor.Competitor{
		{Name: "carol", CreatedAt: t0.Add(2 * time.Hour)},
		{Name: "Bob", CreatedAt: t0},
		{Name: "alice", CreatedAt: t0.Add(time.Hour)},
	}

	tests := []struct {
		order SortOrder
		want  []string
	}{
		{SortByAdded, []string{"Bob", "alice", "carol"}},
		{SortByName, []string{"alice", "Bob", "carol"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.order), func(t *testing.T) {
			cs := append([]competitor.Competitor(nil), base...)
			sortCompetitors(cs, tt.order)
			for i, c := range cs {
				if c.Name != tt.want[i] {
					t.Errorf("position %d = %s, want %s", i, c.Name, tt.want[i])
				}
			}
		})
	}

	if _, err := parseSortOrder("date"); err == nil {
		t.Error("expected error for unknown sort order")
	}
}

func TestNewFetcher(t *testing.T) {
	cfg := config.New()
	if got := newFetcher(cfg); fmt.Sprintf("%T", got) != "*leaderboard.Breaker" {
		t.Errorf("default fetcher = %T, want breaker-wrapped", got)
	}

	cfg.BreakerFailures = 0
	if got := newFetcher(cfg); fmt.Sprintf("%T", got) != "*leaderboard.Scraper" {
		t.Errorf("fetcher = %T, want *leaderboard.Scraper", got)
	}

	cfg.Fetcher = config.FetcherBrowser
	if got := newFetcher(cfg); fmt.Sprintf("%T", got) != "*leaderboard.BrowserFetcher" {
		t.Errorf("fetcher = %T, want *leaderboard.BrowserFetcher", got)
	}
	if fetchCap(cfg) != cfg.PageLoadTimeout {
		t.Errorf("fetchCap = %v, want page load timeout", fetchCap(cfg))
	}
}
