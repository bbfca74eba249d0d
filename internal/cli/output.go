package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/pfrederiksen/masters-pool/internal/api"
	"github.com/pfrederiksen/masters-pool/internal/competitor"
	"github.com/pfrederiksen/masters-pool/internal/pool"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// WriteScoreboard writes the ranked competitor standings
func WriteScoreboard(w io.Writer, entries []competitor.ScoreboardEntry, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, entries)
	case FormatText:
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	if len(entries) == 0 {
		fmt.Fprintln(w, "No competitors yet.")
		return nil
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "POS\tCOMPETITOR\tTOTAL\tPICKS")
	for i, e := range entries {
		picks := make([]string, 0, len(e.Players))
		for _, p := range e.Players {
			picks = append(picks, fmt.Sprintf("%s (%s)", p, e.Scores[p]))
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, e.Competitor, e.Total, strings.Join(picks, ", "))
		if verbose {
			fmt.Fprintf(tw, "\tID: %s\t\t\n", e.CompetitorID)
		}
	}
	return tw.Flush()
}

// WriteField writes every tracked player ranked by score
func WriteField(w io.Writer, records []competitor.MasterScore, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		out := make([]api.FullFieldEntry, 0, len(records))
		for _, rec := range records {
			out = append(out, api.FullFieldEntry{
				Player:       rec.Player,
				CurrentScore: rec.CurrentScore,
				LastUpdated:  api.FormatLastUpdated(rec.LastUpdated),
			})
		}
		return writeJSON(w, out)
	case FormatText:
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	if len(records) == 0 {
		fmt.Fprintln(w, "No scores recorded. Run 'masters-pool refresh' first.")
		return nil
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "POS\tPLAYER\tSCORE\tUPDATED (UTC+1)")
	for i, rec := range records {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, rec.Player, rec.CurrentScore, api.FormatLastUpdated(rec.LastUpdated))
		if verbose {
			for _, h := range rec.History {
				fmt.Fprintf(tw, "\t  was %s\t\tuntil %s\n", h.Score, api.FormatLastUpdated(h.Timestamp))
			}
		}
	}
	return tw.Flush()
}

// WriteRefresh writes the outcome of a forced refresh
func WriteRefresh(w io.Writer, res *pool.RefreshResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		if res.Changes == nil {
			res.Changes = []competitor.Change{}
		}
		return writeJSON(w, res)
	case FormatText:
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	if res.Players == 0 {
		fmt.Fprintln(w, "Leaderboard unavailable; nothing recorded.")
		return nil
	}

	fmt.Fprintf(w, "Fetched %d players, %d changed.\n", res.Players, len(res.Changes))
	for _, c := range res.Changes {
		switch c.ChangeType {
		case competitor.ChangeNew:
			if verbose {
				fmt.Fprintf(w, "  NEW: %s %s\n", c.Player, c.NewValue)
			}
		default:
			fmt.Fprintf(w, "  %s: %s -> %s\n", c.Player, c.OldValue, c.NewValue)
		}
	}
	return nil
}

// WritePlayers writes the players currently on the leaderboard
func WritePlayers(w io.Writer, players []string, format OutputFormat) error {
	switch format {
	case FormatJSON:
		if players == nil {
			players = []string{}
		}
		return writeJSON(w, players)
	case FormatText:
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	if len(players) == 0 {
		fmt.Fprintln(w, "No players found.")
		return nil
	}
	for _, p := range players {
		fmt.Fprintln(w, p)
	}
	fmt.Fprintf(w, "\nTotal: %d players\n", len(players))
	return nil
}

// WriteCompetitors writes the roster
func WriteCompetitors(w io.Writer, competitors []competitor.Competitor, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		if competitors == nil {
			competitors = []competitor.Competitor{}
		}
		return writeJSON(w, competitors)
	case FormatText:
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	if len(competitors) == 0 {
		fmt.Fprintln(w, "No competitors yet.")
		return nil
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tPICKS")
	for _, c := range competitors {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.ID, c.Name, strings.Join(c.Players[:], ", "))
		if verbose && !c.CreatedAt.IsZero() {
			fmt.Fprintf(tw, "\tadded %s\t\n", c.CreatedAt.Format(time.RFC3339))
		}
	}
	return tw.Flush()
}

// WriteCompetitor writes a single competitor after a change
func WriteCompetitor(w io.Writer, c *competitor.Competitor, action string, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, c)
	case FormatText:
		fmt.Fprintf(w, "%s %s (%s): %s\n", action, c.Name, c.ID, strings.Join(c.Players[:], ", "))
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}
