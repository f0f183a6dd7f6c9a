package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected
// default values, so that changes to defaults are intentional.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default listing range is 0..74", func(t *testing.T) {
		t.Parallel()
		if cfg.AgeFrom != 0 || cfg.AgeTo != 74 {
			t.Errorf("expected range 0..74, got %d..%d", cfg.AgeFrom, cfg.AgeTo)
		}
		if n := len(cfg.Ages()); n != 75 {
			t.Errorf("expected 75 ages, got %d", n)
		}
	})

	t.Run("default base URL points at the age listings", func(t *testing.T) {
		t.Parallel()
		if cfg.BaseURL != "https://www.encyclopedia-titanica.org/titanic-ages/" {
			t.Errorf("unexpected base URL %q", cfg.BaseURL)
		}
	})

	t.Run("default headers are browser-like", func(t *testing.T) {
		t.Parallel()
		if cfg.Headers["X-Requested-With"] != "XMLHttpRequest" {
			t.Errorf("unexpected headers %v", cfg.Headers)
		}
		if cfg.UserAgent == "" {
			t.Error("expected a default User-Agent")
		}
	})

	t.Run("default fetch is sequential without delay", func(t *testing.T) {
		t.Parallel()
		if cfg.Concurrency != 1 {
			t.Errorf("expected concurrency 1, got %d", cfg.Concurrency)
		}
		if cfg.Delay != 0 {
			t.Errorf("expected no delay, got %v", cfg.Delay)
		}
	})

	t.Run("default months policy is strip", func(t *testing.T) {
		t.Parallel()
		if cfg.MonthsPolicy != MonthsStrip {
			t.Errorf("expected %q, got %q", MonthsStrip, cfg.MonthsPolicy)
		}
	})

	t.Run("default minor threshold is 14", func(t *testing.T) {
		t.Parallel()
		if cfg.MinorThreshold != 14 {
			t.Errorf("expected 14, got %v", cfg.MinorThreshold)
		}
	})

	t.Run("default aliases", func(t *testing.T) {
		t.Parallel()
		want := map[string][]string{
			"Mr":   {"Don", "Rev", "Dr", "Major", "Sir", "Col", "Capt", "Jonkheer"},
			"Miss": {"Mlle", "Ms"},
			"Mrs":  {"Mme", "Lady", "the Countess"},
		}
		if diff := cmp.Diff(want, cfg.TitleAliases); diff != "" {
			t.Errorf("aliases mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]string{"Miss", "Mr", "Mrs"}, cfg.AliasTargets()); diff != "" {
			t.Errorf("targets mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("defaults are valid", func(t *testing.T) {
		t.Parallel()
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})
}

// TestConfigValidate tests the Validate method.
// Each case breaks exactly one rule.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{"empty base URL", func(c *Config) { c.BaseURL = "" }, ErrNoBaseURL},
		{"negative age from", func(c *Config) { c.AgeFrom = -1 }, ErrInvalidAgeRange},
		{"reversed age range", func(c *Config) { c.AgeFrom, c.AgeTo = 10, 5 }, ErrInvalidAgeRange},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, ErrInvalidTimeout},
		{"negative delay", func(c *Config) { c.Delay = -time.Second }, ErrInvalidDelay},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }, ErrInvalidConcurrency},
		{"zero body size", func(c *Config) { c.MaxBodySize = 0 }, ErrInvalidMaxBodySize},
		{"empty name column", func(c *Config) { c.NameColumn = "" }, ErrNoLookupColumn},
		{"unknown months policy", func(c *Config) { c.MonthsPolicy = "round" }, ErrInvalidMonthsPolicy},
		{"score over 100", func(c *Config) { c.MinScoreWarning = 101 }, ErrInvalidMinScore},
		{"zero minor threshold", func(c *Config) { c.MinorThreshold = 0 }, ErrInvalidMinorThreshold},
		{"alias is a target", func(c *Config) {
			c.TitleAliases = map[string][]string{"Mr": {"Mrs"}, "Mrs": {"Lady"}}
		}, ErrAliasIsTarget},
		{"alias under two targets", func(c *Config) {
			c.TitleAliases = map[string][]string{"Mr": {"Dr"}, "Mrs": {"Dr"}}
		}, ErrDuplicateAlias},
		{"json and markdown", func(c *Config) { c.JSONReport, c.MarkdownReport = true, true }, ErrConflictingReportFormats},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := NewConfig()
			tt.modify(cfg)

			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	t.Run("months policy one is valid", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.MonthsPolicy = MonthsOne
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})
}

// TestLoadConfigFile tests YAML loading and overlay onto defaults.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("overlays set values and keeps defaults", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		content := `scrape:
  age_from: 0
  age_to: 10
  delay: 500ms
  concurrency: 4
  headers:
    Accept-Language: en
impute:
  months_policy: one
  fold_accents: true
features:
  minor_threshold: 9
  one_hot_ordered: true
database:
  disabled: true
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		file, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		cfg := NewConfig()
		file.Apply(cfg)

		if cfg.AgeTo != 10 || cfg.AgeFrom != 0 {
			t.Errorf("unexpected range %d..%d", cfg.AgeFrom, cfg.AgeTo)
		}
		if cfg.Delay != 500*time.Millisecond {
			t.Errorf("expected 500ms delay, got %v", cfg.Delay)
		}
		if cfg.Concurrency != 4 {
			t.Errorf("expected concurrency 4, got %d", cfg.Concurrency)
		}
		if cfg.Headers["Accept-Language"] != "en" || cfg.Headers["X-Requested-With"] != "XMLHttpRequest" {
			t.Errorf("expected merged headers, got %v", cfg.Headers)
		}
		if cfg.MonthsPolicy != MonthsOne || !cfg.FoldAccents {
			t.Errorf("impute section not applied: %q %v", cfg.MonthsPolicy, cfg.FoldAccents)
		}
		if cfg.MinorThreshold != 9 || !cfg.OneHotOrdered {
			t.Errorf("features section not applied: %v %v", cfg.MinorThreshold, cfg.OneHotOrdered)
		}
		if cfg.SaveToDB {
			t.Error("expected database to be disabled")
		}
		if cfg.BaseURL != DefaultBaseURL {
			t.Errorf("expected default base URL, got %q", cfg.BaseURL)
		}
	})

	t.Run("missing file returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("malformed yaml returns error", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "bad.yaml")
		if err := os.WriteFile(path, []byte("scrape: [unclosed"), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("unknown key returns error", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "typo.yaml")
		if err := os.WriteFile(path, []byte("scrape:\n  age_too: 10\n"), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected error for unknown key")
		}
	})

	t.Run("empty file keeps defaults", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, nil, 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		file, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		cfg := NewConfig()
		file.Apply(cfg)
		if cfg.AgeTo != DefaultAgeTo {
			t.Errorf("expected default age_to, got %d", cfg.AgeTo)
		}
	})
}

// TestFindConfigFile tests explicit path lookup.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("explicit existing path", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(path, []byte("{}"), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		if got := FindConfigFile(path); got != path {
			t.Errorf("expected %q, got %q", path, got)
		}
	})

	t.Run("explicit missing path", func(t *testing.T) {
		t.Parallel()

		if got := FindConfigFile(filepath.Join(t.TempDir(), "missing.yaml")); got != "" {
			t.Errorf("expected empty path, got %q", got)
		}
	})
}
