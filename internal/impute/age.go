package impute

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/nao1215/titanicprep/internal/config"
)

// ErrInvalidAge is returned when a reference age is not a number.
var ErrInvalidAge = errors.New("invalid age")

// monthsSuffix marks an age given in months, e.g. "9m".
const monthsSuffix = "m"

// SanitizeAge turns a published age into a numeric age text.
// A trailing "m" is handled by policy: MonthsStrip keeps the number,
// MonthsOne replaces the value with "1". The result must parse as a number.
func SanitizeAge(age string, policy config.MonthsPolicy) (string, error) {
	age = strings.TrimSpace(age)
	if strings.HasSuffix(age, monthsSuffix) {
		switch policy {
		case config.MonthsOne:
			return "1", nil
		case config.MonthsStrip:
			age = strings.TrimSpace(strings.TrimSuffix(age, monthsSuffix))
		default:
			return "", fmt.Errorf("%w: %q", config.ErrInvalidMonthsPolicy, policy)
		}
	}
	v, err := strconv.ParseFloat(age, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return "", fmt.Errorf("%w: %q", ErrInvalidAge, age)
	}
	return age, nil
}
