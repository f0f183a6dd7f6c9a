package impute

import (
	"errors"
	"log/slog"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/nao1215/titanicprep/internal/config"
	"github.com/nao1215/titanicprep/internal/model"
)

// ErrEmptyReference is returned when no reference record with a usable age
// is available for matching.
var ErrEmptyReference = errors.New("reference table has no usable records")

// candidate is a reference record prepared for comparison.
type candidate struct {
	record model.ReferenceRecord

	// key is the sanitized reference name.
	key string

	// age is the sanitized numeric age.
	age string

	// seq holds the reference name as the second sequence; the first is
	// swapped per lookup so the reference side is indexed only once.
	seq *difflib.SequenceMatcher
}

// Result is the outcome of one lookup.
type Result struct {
	// Record is the best matching reference record.
	Record model.ReferenceRecord

	// Score is the similarity of the sanitized names in [0, 100].
	Score int

	// Age is the sanitized age of Record.
	Age string

	// Tie reports whether another reference record had the same score.
	Tie bool
}

// Matcher finds the closest reference record for a passenger name.
// A Matcher is not safe for concurrent use.
type Matcher struct {
	candidates      []candidate
	dropped         int
	foldAccents     bool
	monthsPolicy    config.MonthsPolicy
	minScoreWarning int
	logger          *slog.Logger
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithFoldAccents enables diacritic removal before comparison.
func WithFoldAccents(fold bool) Option {
	return func(m *Matcher) {
		m.foldAccents = fold
	}
}

// WithMonthsPolicy sets how ages given in months are converted.
func WithMonthsPolicy(policy config.MonthsPolicy) Option {
	return func(m *Matcher) {
		m.monthsPolicy = policy
	}
}

// WithMinScoreWarning sets the score under which a match is logged as doubtful.
func WithMinScoreWarning(score int) Option {
	return func(m *Matcher) {
		m.minScoreWarning = score
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Matcher) {
		m.logger = logger
	}
}

// NewMatcher prepares the reference records for lookup.
// Records whose age cannot be sanitized are dropped and counted; when none
// remain, ErrEmptyReference is returned.
func NewMatcher(records []model.ReferenceRecord, opts ...Option) (*Matcher, error) {
	m := &Matcher{
		monthsPolicy:    config.MonthsStrip,
		minScoreWarning: config.DefaultMinScoreWarning,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}

	m.candidates = make([]candidate, 0, len(records))
	for _, rec := range records {
		age, err := SanitizeAge(rec.Age, m.monthsPolicy)
		if err != nil {
			if errors.Is(err, config.ErrInvalidMonthsPolicy) {
				return nil, err
			}
			m.dropped++
			m.logger.Debug("dropping reference record", "name", rec.Name, "age", rec.Age, "error", err)
			continue
		}
		key := SanitizeName(rec.Name, m.foldAccents)
		m.candidates = append(m.candidates, candidate{
			record: rec,
			key:    key,
			age:    age,
			seq:    difflib.NewMatcher(nil, splitChars(key)),
		})
	}

	if m.dropped > 0 {
		m.logger.Info("reference records without usable age dropped", "dropped", m.dropped, "kept", len(m.candidates))
	}
	if len(m.candidates) == 0 {
		return nil, ErrEmptyReference
	}
	return m, nil
}

// Len returns the number of usable reference records.
func (m *Matcher) Len() int {
	return len(m.candidates)
}

// Dropped returns the number of reference records rejected at load.
func (m *Matcher) Dropped() int {
	return m.dropped
}

// BestMatch returns the reference record whose name is most similar to name.
// Ties go to the lexicographically smallest sanitized reference name, then
// to the earliest record.
func (m *Matcher) BestMatch(name string) Result {
	query := SanitizeName(name, m.foldAccents)
	chars := splitChars(query)

	best := -1
	bestScore := -1
	tied := 0
	for i := range m.candidates {
		c := &m.candidates[i]
		score := 0
		if query != "" && c.key != "" {
			c.seq.SetSeq1(chars)
			score = scaledRatio(c.seq)
		}

		switch {
		case score > bestScore:
			best, bestScore, tied = i, score, 1
		case score == bestScore:
			tied++
			if c.key < m.candidates[best].key {
				best = i
			}
		}
	}

	c := m.candidates[best]
	return Result{
		Record: c.record,
		Score:  bestScore,
		Age:    c.age,
		Tie:    tied > 1,
	}
}
