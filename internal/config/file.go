package config

import "time"

// ScrapeSection holds the scraper settings of the configuration file.
type ScrapeSection struct {
	// BaseURL overrides the listing URL prefix.
	BaseURL string `yaml:"base_url,omitempty"`

	// AgeFrom and AgeTo override the listing range. Pointers so that an
	// explicit 0 can be told apart from "not set".
	AgeFrom *int `yaml:"age_from,omitempty"`
	AgeTo   *int `yaml:"age_to,omitempty"`

	// UserAgent overrides the User-Agent header.
	UserAgent string `yaml:"user_agent,omitempty"`

	// Headers are merged into the default request headers.
	Headers map[string]string `yaml:"headers,omitempty"`

	Timeout     time.Duration `yaml:"timeout,omitempty"`
	Delay       time.Duration `yaml:"delay,omitempty"`
	Concurrency int           `yaml:"concurrency,omitempty"`
	MaxBodySize int64         `yaml:"max_body_size,omitempty"`

	// Output is the reference CSV path.
	Output string `yaml:"output,omitempty"`
}

// ImputeSection holds the age imputer settings of the configuration file.
type ImputeSection struct {
	NameColumn      string `yaml:"name_column,omitempty"`
	AgeColumn       string `yaml:"age_column,omitempty"`
	MonthsPolicy    string `yaml:"months_policy,omitempty"`
	FoldAccents     *bool  `yaml:"fold_accents,omitempty"`
	MinScoreWarning *int   `yaml:"min_score_warning,omitempty"`
}

// FeatureSection holds the feature engineering settings of the configuration file.
type FeatureSection struct {
	MinorThreshold float64 `yaml:"minor_threshold,omitempty"`

	// TitleAliases replaces the default alias lists when set.
	TitleAliases map[string][]string `yaml:"title_aliases,omitempty"`

	OneHotOrdered *bool `yaml:"one_hot_ordered,omitempty"`
}

// DatabaseSection holds the sqlite store settings of the configuration file.
type DatabaseSection struct {
	// Dir overrides the XDG data directory.
	Dir string `yaml:"dir,omitempty"`

	// Disabled turns the store off.
	Disabled bool `yaml:"disabled,omitempty"`
}

// File represents the structure of the .titanicprep configuration file.
// Every field is optional; unset fields keep the defaults.
type File struct {
	Scrape   ScrapeSection   `yaml:"scrape,omitempty"`
	Impute   ImputeSection   `yaml:"impute,omitempty"`
	Features FeatureSection  `yaml:"features,omitempty"`
	Database DatabaseSection `yaml:"database,omitempty"`
}

// Apply overlays the values set in the file onto cfg.
func (f *File) Apply(cfg *Config) {
	s := f.Scrape
	if s.BaseURL != "" {
		cfg.BaseURL = s.BaseURL
	}
	if s.AgeFrom != nil {
		cfg.AgeFrom = *s.AgeFrom
	}
	if s.AgeTo != nil {
		cfg.AgeTo = *s.AgeTo
	}
	if s.UserAgent != "" {
		cfg.UserAgent = s.UserAgent
	}
	if len(s.Headers) > 0 {
		if cfg.Headers == nil {
			cfg.Headers = make(map[string]string)
		}
		for k, v := range s.Headers {
			cfg.Headers[k] = v
		}
	}
	if s.Timeout > 0 {
		cfg.Timeout = s.Timeout
	}
	if s.Delay > 0 {
		cfg.Delay = s.Delay
	}
	if s.Concurrency > 0 {
		cfg.Concurrency = s.Concurrency
	}
	if s.MaxBodySize > 0 {
		cfg.MaxBodySize = s.MaxBodySize
	}
	if s.Output != "" {
		cfg.ScrapeOutput = s.Output
	}

	im := f.Impute
	if im.NameColumn != "" {
		cfg.NameColumn = im.NameColumn
	}
	if im.AgeColumn != "" {
		cfg.AgeColumn = im.AgeColumn
	}
	if im.MonthsPolicy != "" {
		cfg.MonthsPolicy = MonthsPolicy(im.MonthsPolicy)
	}
	if im.FoldAccents != nil {
		cfg.FoldAccents = *im.FoldAccents
	}
	if im.MinScoreWarning != nil {
		cfg.MinScoreWarning = *im.MinScoreWarning
	}

	fe := f.Features
	if fe.MinorThreshold != 0 {
		cfg.MinorThreshold = fe.MinorThreshold
	}
	if len(fe.TitleAliases) > 0 {
		cfg.TitleAliases = fe.TitleAliases
	}
	if fe.OneHotOrdered != nil {
		cfg.OneHotOrdered = *fe.OneHotOrdered
	}

	if f.Database.Dir != "" {
		cfg.DBDir = f.Database.Dir
	}
	if f.Database.Disabled {
		cfg.SaveToDB = false
	}
}
