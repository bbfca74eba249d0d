// Package leaderboard acquires and caches tournament standings.
//
// A Fetcher retrieves every player's score from the public leaderboard page.
// Two interchangeable fetchers exist: Scraper issues a plain HTTP request and
// parses the markup with goquery, while BrowserFetcher renders the page in
// headless Chrome first. Both report failures inside a Result instead of
// returning an error, because an empty leaderboard is a normal, pollable
// state for the rest of the pool.
//
// Cache memoizes the latest standings for a fixed window and collapses
// concurrent cold reads into a single outbound fetch.
package leaderboard
