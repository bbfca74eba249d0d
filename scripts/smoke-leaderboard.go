package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/pfrederiksen/masters-pool/internal/leaderboard"
	"github.com/pfrederiksen/masters-pool/internal/scoring"
)

func main() {
	url := flag.String("url", leaderboard.DefaultURL, "Leaderboard page to fetch")
	browser := flag.Bool("browser", false, "Render the page with headless Chrome instead of a plain GET")
	detail := flag.Bool("detail", true, "Also extract the today and thru columns")
	flag.Parse()

	var f leaderboard.Fetcher = leaderboard.NewScraper(
		leaderboard.WithURL(*url),
		leaderboard.WithRoundDetail(*detail),
	)
	if *browser {
		f = leaderboard.NewBrowserFetcher(
			leaderboard.WithBrowserURL(*url),
			leaderboard.WithBrowserRoundDetail(*detail),
		)
	}

	start := time.Now()
	res := f.Fetch(context.Background())
	if !res.OK() {
		fmt.Fprintf(os.Stderr, "Error fetching leaderboard: %v\n", res.Err)
		os.Exit(1)
	}

	fmt.Printf("✅ Fetched %d players in %s\n\n", len(res.Scores), time.Since(start).Round(time.Millisecond))
	if len(res.Scores) == 0 {
		fmt.Println("No player rows matched; the page markup may have changed.")
		os.Exit(1)
	}

	unranked := 0
	for _, ps := range res.Scores {
		if scoring.FieldValue(ps.Score) == scoring.Unranked {
			unranked++
		}
		fmt.Printf("%-28s %6s %6s %4s\n", ps.Player, ps.Score, ps.Today, ps.Thru)
	}
	fmt.Printf("\n%d players without a numeric score (CUT, WD, ...)\n", unranked)
}
