package config

import (
	"path/filepath"
	"slices"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "titanicprep"

	// DefaultBaseURL is the per-age listing prefix; pages are
	// DefaultBaseURL + "<age>.html".
	DefaultBaseURL = "https://www.encyclopedia-titanica.org/titanic-ages/"

	// DefaultAgeFrom and DefaultAgeTo bound the scraped listing pages
	// (both inclusive). Nobody aboard was older than 74.
	DefaultAgeFrom = 0
	DefaultAgeTo   = 74

	// DefaultUserAgent is sent with every listing request. The site serves
	// the listing tables to browser-like clients only.
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/50.0.2661.75 Safari/537.36"

	// DefaultTimeout is the per-request timeout for listing fetches.
	DefaultTimeout = 30 * time.Second

	// DefaultConcurrency of 1 fetches pages strictly one after another.
	DefaultConcurrency = 1

	// DefaultMaxBodySize limits the listing page body that is read.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultScrapeOutput is the reference table written by the scraper.
	DefaultScrapeOutput = "output.csv"

	// DefaultNameColumn and DefaultAgeColumn name the reference-table
	// columns used for lookup.
	DefaultNameColumn = "Name"
	DefaultAgeColumn  = "Age"

	// DefaultMinScoreWarning is the similarity score under which an
	// imputed match is logged as doubtful.
	DefaultMinScoreWarning = 60

	// DefaultMinorThreshold is the age under which a passenger is a minor.
	DefaultMinorThreshold = 14.0
)

// MonthsPolicy decides how a reference age with a trailing "m" (age in
// months) becomes a numeric age.
type MonthsPolicy string

const (
	// MonthsStrip drops the suffix and keeps the number: "9m" -> "9".
	MonthsStrip MonthsPolicy = "strip"

	// MonthsOne replaces the whole value with one year: "9m" -> "1".
	MonthsOne MonthsPolicy = "one"
)

// Title normalisation targets.
const (
	TitleMr   = "Mr"
	TitleMiss = "Miss"
	TitleMrs  = "Mrs"
)

// DefaultHeaders returns the extra request headers sent by the scraper.
func DefaultHeaders() map[string]string {
	return map[string]string{
		"X-Requested-With": "XMLHttpRequest",
	}
}

// DefaultTitleAliases returns the rare honorifics folded into each target title.
func DefaultTitleAliases() map[string][]string {
	return map[string][]string{
		TitleMr:   {"Don", "Rev", "Dr", "Major", "Sir", "Col", "Capt", "Jonkheer"},
		TitleMiss: {"Mlle", "Ms"},
		TitleMrs:  {"Mme", "Lady", "the Countess"},
	}
}

// Config holds all configuration options for titanicprep.
// It is populated from defaults, the configuration file and CLI flags, in
// that order, and passed down explicitly.
type Config struct {
	// BaseURL is the listing URL prefix.
	BaseURL string

	// AgeFrom and AgeTo bound the listing pages to fetch (inclusive).
	AgeFrom int
	AgeTo   int

	// UserAgent is the User-Agent header of listing requests.
	UserAgent string

	// Headers are additional request headers.
	Headers map[string]string

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// Delay is the pause between two listing requests. Zero means none.
	Delay time.Duration

	// Concurrency is the number of listing pages fetched at once.
	Concurrency int

	// MaxBodySize is the maximum listing body size in bytes.
	MaxBodySize int64

	// ScrapeOutput is the CSV path of the scraped reference table.
	ScrapeOutput string

	// NameColumn and AgeColumn are the reference-table lookup columns.
	NameColumn string
	AgeColumn  string

	// MonthsPolicy selects how month ages are converted.
	MonthsPolicy MonthsPolicy

	// FoldAccents removes diacritics before names are compared.
	FoldAccents bool

	// MinScoreWarning is the score under which matches are logged as doubtful.
	MinScoreWarning int

	// MinorThreshold is the age under which a passenger is flagged as minor.
	MinorThreshold float64

	// TitleAliases maps a target title to the honorifics folded into it.
	TitleAliases map[string][]string

	// OneHotOrdered also expands ordered categories (Pclass, FamilySize)
	// into indicator columns in the scale-variant encoding.
	OneHotOrdered bool

	// ConfigFilePath is the explicit configuration file path, if any.
	ConfigFilePath string

	// DBDir is the directory of the sqlite store.
	DBDir string

	// SaveToDB enables the sqlite store.
	SaveToDB bool

	// JSONReport and MarkdownReport select the run report format.
	// They are mutually exclusive; neither means plain text.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile is the run report path; empty means stdout.
	ReportFile string

	// Verbose enables debug logging.
	Verbose bool
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		BaseURL:         DefaultBaseURL,
		AgeFrom:         DefaultAgeFrom,
		AgeTo:           DefaultAgeTo,
		UserAgent:       DefaultUserAgent,
		Headers:         DefaultHeaders(),
		Timeout:         DefaultTimeout,
		Concurrency:     DefaultConcurrency,
		MaxBodySize:     DefaultMaxBodySize,
		ScrapeOutput:    DefaultScrapeOutput,
		NameColumn:      DefaultNameColumn,
		AgeColumn:       DefaultAgeColumn,
		MonthsPolicy:    MonthsStrip,
		MinScoreWarning: DefaultMinScoreWarning,
		MinorThreshold:  DefaultMinorThreshold,
		TitleAliases:    DefaultTitleAliases(),
		DBDir:           XDGDataDir(),
		SaveToDB:        true,
	}
}

// XDGDataDir returns the XDG data directory for titanicprep.
// On Linux: ~/.local/share/titanicprep
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// Ages returns the listing ages to fetch, in ascending order.
func (c *Config) Ages() []int {
	if c.AgeTo < c.AgeFrom {
		return nil
	}
	ages := make([]int, 0, c.AgeTo-c.AgeFrom+1)
	for age := c.AgeFrom; age <= c.AgeTo; age++ {
		ages = append(ages, age)
	}
	return ages
}

// Validate checks if the configuration is valid.
// The first problem found is returned.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrNoBaseURL
	}
	if c.AgeFrom < 0 || c.AgeTo < c.AgeFrom {
		return ErrInvalidAgeRange
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Delay < 0 {
		return ErrInvalidDelay
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.MaxBodySize <= 0 {
		return ErrInvalidMaxBodySize
	}
	if c.NameColumn == "" || c.AgeColumn == "" {
		return ErrNoLookupColumn
	}
	if c.MonthsPolicy != MonthsStrip && c.MonthsPolicy != MonthsOne {
		return ErrInvalidMonthsPolicy
	}
	if c.MinScoreWarning < 0 || c.MinScoreWarning > 100 {
		return ErrInvalidMinScore
	}
	if c.MinorThreshold <= 0 {
		return ErrInvalidMinorThreshold
	}
	if err := validateAliases(c.TitleAliases); err != nil {
		return err
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	return nil
}

// validateAliases rejects alias sets that would make title normalisation
// non-idempotent: an alias that is itself a target, or an alias listed
// under two targets.
func validateAliases(aliases map[string][]string) error {
	owner := make(map[string]string)
	for target, list := range aliases {
		for _, alias := range list {
			if _, isTarget := aliases[alias]; isTarget {
				return ErrAliasIsTarget
			}
			if prev, ok := owner[alias]; ok && prev != target {
				return ErrDuplicateAlias
			}
			owner[alias] = target
		}
	}
	return nil
}

// AliasTargets returns the target titles in a stable order.
func (c *Config) AliasTargets() []string {
	targets := make([]string, 0, len(c.TitleAliases))
	for target := range c.TitleAliases {
		targets = append(targets, target)
	}
	slices.Sort(targets)
	return targets
}
