package features

import (
	"strconv"
	"strings"

	"github.com/nao1215/titanicprep/internal/config"
	"github.com/nao1215/titanicprep/internal/model"
)

// Derived column names.
const (
	ColCabinKnown = "CabinKnown"
	ColTitle      = "Title"
	ColFamilySize = "FamilySize"
	ColIsMinor    = "IsMinor"
)

// Family size buckets, in order.
const (
	FamilyAlone  = "alone"
	FamilyNormal = "normal"
	FamilyLarge  = "large"
)

// largeFamily is the smallest relative count of a large family.
const largeFamily = 4

var (
	// CabinKnownLevels are the levels of the CabinKnown column.
	CabinKnownLevels = []string{"false", "true"}

	// FamilySizeLevels are the ordered levels of the FamilySize column.
	FamilySizeLevels = []string{FamilyAlone, FamilyNormal, FamilyLarge}

	// IsMinorLevels are the levels of the IsMinor column.
	IsMinorLevels = []string{"0", "1"}
)

// Set holds the derived columns, aligned with the input passengers.
type Set struct {
	CabinKnown *model.Categorical
	Title      *model.Categorical
	FamilySize *model.Categorical
	IsMinor    *model.Categorical
}

// Columns returns the derived columns in output order.
func (s *Set) Columns() []*model.Categorical {
	return []*model.Categorical{s.CabinKnown, s.Title, s.FamilySize, s.IsMinor}
}

type options struct {
	minorThreshold float64
	titleAliases   map[string][]string
}

// Option configures Engineer.
type Option func(*options)

// WithMinorThreshold sets the age under which a passenger is a minor.
func WithMinorThreshold(threshold float64) Option {
	return func(o *options) {
		o.minorThreshold = threshold
	}
}

// WithTitleAliases sets the honorifics folded into each target title.
func WithTitleAliases(aliases map[string][]string) Option {
	return func(o *options) {
		o.titleAliases = aliases
	}
}

// Engineer derives all four feature columns.
func Engineer(passengers []model.Passenger, opts ...Option) (*Set, model.FeatureSummary) {
	o := &options{
		minorThreshold: config.DefaultMinorThreshold,
		titleAliases:   config.DefaultTitleAliases(),
	}
	for _, opt := range opts {
		opt(o)
	}

	set := &Set{
		CabinKnown: CabinKnown(passengers),
		Title:      Title(passengers, o.titleAliases),
		FamilySize: FamilySize(passengers),
		IsMinor:    IsMinor(passengers, o.minorThreshold),
	}
	summary := model.FeatureSummary{
		CabinKnown:     true,
		Title:          true,
		FamilySize:     true,
		IsMinor:        true,
		MinorThreshold: o.minorThreshold,
	}
	return set, summary
}

// CabinKnown flags passengers with a recorded cabin.
func CabinKnown(passengers []model.Passenger) *model.Categorical {
	values := make([]string, len(passengers))
	for i, p := range passengers {
		values[i] = strconv.FormatBool(p.Cabin != nil)
	}
	return mustCategorical(ColCabinKnown, values, CabinKnownLevels, false)
}

// Title extracts and normalises the honorific of every passenger.
// Levels are the sorted distinct titles; a name without title is missing.
func Title(passengers []model.Passenger, aliases map[string][]string) *model.Categorical {
	targets := aliasTargets(aliases)
	values := make([]string, len(passengers))
	for i, p := range passengers {
		values[i] = normalizeTitle(ExtractTitle(p.Name), targets)
	}
	return model.InferCategorical(ColTitle, values)
}

// ExtractTitle returns the honorific of a "Surname, Title. Given" name:
// the text after the first ", " up to the next "." (or ", "). It returns
// "" when the name has no ", ".
func ExtractTitle(name string) string {
	_, rest, ok := strings.Cut(name, ", ")
	if !ok {
		return ""
	}
	rest, _, _ = strings.Cut(rest, ", ")
	title, _, _ := strings.Cut(rest, ".")
	return title
}

// NormalizeTitle maps an alias to its target title; other titles pass
// through unchanged.
func NormalizeTitle(title string, aliases map[string][]string) string {
	return normalizeTitle(title, aliasTargets(aliases))
}

func normalizeTitle(title string, targets map[string]string) string {
	if target, ok := targets[title]; ok {
		return target
	}
	return title
}

// aliasTargets inverts the alias lists into alias -> target.
func aliasTargets(aliases map[string][]string) map[string]string {
	targets := make(map[string]string)
	for target, list := range aliases {
		for _, alias := range list {
			targets[alias] = target
		}
	}
	return targets
}

// FamilySize buckets the number of relatives aboard.
func FamilySize(passengers []model.Passenger) *model.Categorical {
	values := make([]string, len(passengers))
	for i, p := range passengers {
		values[i] = FamilyBucket(p.FamilyCount())
	}
	return mustCategorical(ColFamilySize, values, FamilySizeLevels, true)
}

// FamilyBucket returns the family size bucket of n relatives:
// 0 is alone, 1 to 3 normal, 4 and more large.
func FamilyBucket(n int) string {
	switch {
	case n >= largeFamily:
		return FamilyLarge
	case n > 0:
		return FamilyNormal
	default:
		return FamilyAlone
	}
}

// IsMinor flags passengers with 0 <= age < threshold. A missing age is
// not a minor.
func IsMinor(passengers []model.Passenger, threshold float64) *model.Categorical {
	values := make([]string, len(passengers))
	for i, p := range passengers {
		minor := p.Age != nil && *p.Age >= 0 && *p.Age < threshold
		if minor {
			values[i] = "1"
		} else {
			values[i] = "0"
		}
	}
	return mustCategorical(ColIsMinor, values, IsMinorLevels, false)
}

// mustCategorical builds a column whose values are known to be in levels.
func mustCategorical(name string, values, levels []string, ordered bool) *model.Categorical {
	c, err := model.NewCategorical(name, values, levels, ordered)
	if err != nil {
		panic(err)
	}
	return c
}
