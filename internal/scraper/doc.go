// Package scraper harvests the per-age passenger listings of
// encyclopedia-titanica.org into a single reference table.
//
// # Components
//
//   - Scraper: fetches one listing page per age, optionally several at once
//   - ParseFirstTable: turns the first <table> of a page into a model.Table
//
// A page without a table is not an error; it simply contributes no rows.
// Any transport failure or unexpected HTTP status aborts the scrape, and
// there is no retry.
//
// # Usage
//
//	s := scraper.New(http.DefaultClient, config.DefaultBaseURL,
//	    scraper.WithUserAgent(cfg.UserAgent),
//	    scraper.WithHeaders(cfg.Headers),
//	)
//	result, err := s.Scrape(ctx, cfg.Ages())
//	table := result.Table()
package scraper
