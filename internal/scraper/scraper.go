package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/titanicprep/internal/model"
)

// ErrUnexpectedStatus is returned when a listing page answers with a
// non-2xx status other than 404.
var ErrUnexpectedStatus = errors.New("unexpected HTTP status")

// Scraper fetches the per-age listing pages and collects their tables.
type Scraper struct {
	// client performs the requests.
	client *http.Client

	// baseURL is the listing prefix; the page of age n is baseURL + "n.html".
	baseURL string

	// userAgent is the User-Agent header to use.
	userAgent string

	// headers are extra request headers.
	headers map[string]string

	// delay is the pause after each request, per worker.
	delay time.Duration

	// concurrency is the number of pages fetched at once.
	concurrency int

	// maxBodySize limits the size of response bodies to read.
	maxBodySize int64

	logger *slog.Logger
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(s *Scraper) {
		s.userAgent = ua
	}
}

// WithHeaders sets extra request headers.
func WithHeaders(headers map[string]string) Option {
	return func(s *Scraper) {
		s.headers = headers
	}
}

// WithDelay sets the pause after each request.
func WithDelay(d time.Duration) Option {
	return func(s *Scraper) {
		s.delay = d
	}
}

// WithConcurrency sets how many pages are fetched at once.
// Values below 1 are ignored.
func WithConcurrency(n int) Option {
	return func(s *Scraper) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithMaxBodySize sets the maximum response body size.
func WithMaxBodySize(size int64) Option {
	return func(s *Scraper) {
		s.maxBodySize = size
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scraper) {
		s.logger = logger
	}
}

// New creates a Scraper for the listing pages under baseURL.
func New(client *http.Client, baseURL string, opts ...Option) *Scraper {
	s := &Scraper{
		client:      client,
		baseURL:     baseURL,
		headers:     map[string]string{},
		concurrency: 1,
		maxBodySize: 5 * 1024 * 1024,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.client == nil {
		s.client = http.DefaultClient
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Page is the result of one listing page.
type Page struct {
	// Age is the listing age.
	Age int

	// URL is the fetched address.
	URL string

	// StatusCode is the HTTP status of the response.
	StatusCode int

	// Table is the first table of the page, nil when the page had none.
	Table *model.Table
}

// Empty reports whether the page contributed no table.
func (p *Page) Empty() bool {
	return p.Table == nil
}

// Result is the outcome of a full scrape.
type Result struct {
	// Pages holds one entry per requested age, in request order.
	Pages []*Page
}

// Table concatenates the tables of all non-empty pages in age order.
func (r *Result) Table() *model.Table {
	tables := make([]*model.Table, 0, len(r.Pages))
	for _, p := range r.Pages {
		if !p.Empty() {
			tables = append(tables, p.Table)
		}
	}
	return model.Concat(tables...)
}

// Records converts every scraped row into a reference record tagged with
// the age of its listing page.
func (r *Result) Records(nameCol, ageCol string) ([]model.ReferenceRecord, error) {
	records := make([]model.ReferenceRecord, 0)
	for _, p := range r.Pages {
		if p.Empty() {
			continue
		}
		recs, err := model.ReferenceRecords(p.Table, nameCol, ageCol)
		if err != nil {
			return nil, fmt.Errorf("listing for age %d: %w", p.Age, err)
		}
		for i := range recs {
			recs[i].SourceAge = p.Age
		}
		records = append(records, recs...)
	}
	return records, nil
}

// EmptyPages returns the number of pages without a table.
func (r *Result) EmptyPages() int {
	n := 0
	for _, p := range r.Pages {
		if p.Empty() {
			n++
		}
	}
	return n
}

// PageURL returns the listing address for age.
func (s *Scraper) PageURL(age int) string {
	return s.baseURL + strconv.Itoa(age) + ".html"
}

// Scrape fetches the listing of every age. Pages without a table are kept
// as empty entries; the first transport or status error aborts the run.
func (s *Scraper) Scrape(ctx context.Context, ages []int) (*Result, error) {
	s.logger.Info("starting scrape",
		"pages", len(ages),
		"concurrency", s.concurrency,
		"delay", s.delay,
	)

	pages := make([]*Page, len(ages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, age := range ages {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			page, err := s.FetchPage(gctx, age)
			if err != nil {
				return err
			}
			pages[i] = page

			if s.delay > 0 && i < len(ages)-1 {
				select {
				case <-gctx.Done():
					return gctx.Err()
				case <-time.After(s.delay):
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{Pages: pages}
	s.logger.Info("scrape completed",
		"pages", len(pages),
		"empty", result.EmptyPages(),
	)
	return result, nil
}

// FetchPage fetches and parses the listing of a single age.
// A page without a table, or a 404, yields an empty Page and no error.
func (s *Scraper) FetchPage(ctx context.Context, age int) (*Page, error) {
	pageURL := s.PageURL(age)
	s.logger.Debug("fetching listing", "age", age, "url", pageURL, "headers", s.headers)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}
	for k, v := range s.headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	page := &Page{Age: age, URL: pageURL, StatusCode: resp.StatusCode}

	if resp.StatusCode == http.StatusNotFound {
		s.logger.Info("no passengers found", "age", age, "status", resp.StatusCode)
		return page, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned %d", ErrUnexpectedStatus, pageURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", pageURL, err)
	}

	table, err := ParseFirstTable(bytes.NewReader(body))
	if errors.Is(err, ErrNoTable) {
		s.logger.Info("no passengers found", "age", age)
		return page, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", pageURL, err)
	}

	page.Table = table
	s.logger.Info("parse complete", "age", age, "rows", table.Len())
	return page, nil
}
