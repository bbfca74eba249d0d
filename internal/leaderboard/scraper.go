package leaderboard

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/masters-pool/internal/logger"
)

const (
	DefaultURL = "https://www.espn.com/golf/leaderboard"
	// Some leaderboard hosts reject the default Go client, so present as a desktop browser.
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	Timeout   = 30 * time.Second
)

// Selectors for the ESPN leaderboard markup.
const (
	tableSelector = "tbody.Table__TBODY"
	rowSelector   = "tbody.Table__TBODY tr.PlayerRow__Overview"
	nameSelector  = "a.AnchorLink.leaderboard_player_name"
)

// Scraper fetches the leaderboard with a single plain HTTP request
type Scraper struct {
	client      *http.Client
	url         string
	userAgent   string
	roundDetail bool
}

// ScraperOption configures a Scraper
type ScraperOption func(*Scraper)

// WithURL points the scraper at a different leaderboard page
func WithURL(url string) ScraperOption {
	return func(s *Scraper) {
		s.url = url
	}
}

// WithUserAgent overrides the User-Agent header
func WithUserAgent(ua string) ScraperOption {
	return func(s *Scraper) {
		s.userAgent = ua
	}
}

// WithTimeout bounds each request
func WithTimeout(d time.Duration) ScraperOption {
	return func(s *Scraper) {
		s.client.Timeout = d
	}
}

// WithRoundDetail also extracts the "today" and "thru" columns
func WithRoundDetail(enabled bool) ScraperOption {
	return func(s *Scraper) {
		s.roundDetail = enabled
	}
}

// NewScraper creates a new Scraper instance
func NewScraper(opts ...ScraperOption) *Scraper {
	s := &Scraper{
		client: &http.Client{
			Timeout: Timeout,
		},
		url:       DefaultURL,
		userAgent: UserAgent,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name identifies the fetcher in logs and metrics
func (s *Scraper) Name() string {
	return "http"
}

// Fetch downloads and parses the leaderboard. No retries are attempted.
func (s *Scraper) Fetch(ctx context.Context) Result {
	scores, err := s.fetch(ctx)
	if err != nil {
		logger.Warn("Leaderboard fetch failed", logger.Fields{
			"fetcher": s.Name(),
			"url":     s.url,
			"error":   err.Error(),
		})
		return Result{Err: err}
	}
	return Result{Scores: scores}
}

func (s *Scraper) fetch(ctx context.Context) ([]PlayerScore, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return parseLeaderboard(resp.Body, s.roundDetail)
}

// parseLeaderboard extracts player rows from leaderboard HTML. Rows without a
// player name link are skipped; missing score cells become NotAvailable.
func parseLeaderboard(r io.Reader, roundDetail bool) ([]PlayerScore, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	scores := make([]PlayerScore, 0)

	doc.Find(rowSelector).Each(func(_ int, row *goquery.Selection) {
		anchor := row.Find(nameSelector).First()
		if anchor.Length() == 0 {
			return
		}
		name := strings.TrimSpace(anchor.Text())
		if name == "" {
			return
		}

		// Score columns follow the name cell: SCORE, TODAY, THRU
		cells := anchor.Closest("td").NextAllFiltered("td")

		ps := PlayerScore{
			Player: name,
			Score:  cellText(cells, 0),
		}
		if roundDetail {
			ps.Today = cellText(cells, 1)
			ps.Thru = cellText(cells, 2)
		}
		scores = append(scores, ps)
	})

	return scores, nil
}

func cellText(cells *goquery.Selection, i int) string {
	if i >= cells.Length() {
		return NotAvailable
	}
	return strings.TrimSpace(cells.Eq(i).Text())
}
