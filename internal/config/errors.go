package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate(); callers can match them
// with errors.Is().
var (
	// ErrNoBaseURL is returned when the listing URL prefix is empty.
	ErrNoBaseURL = errors.New("no base URL configured")

	// ErrInvalidAgeRange is returned when the listing age range is empty or negative.
	ErrInvalidAgeRange = errors.New("invalid age range: need 0 <= from <= to")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidDelay is returned when the delay between requests is negative.
	ErrInvalidDelay = errors.New("invalid delay: must be non-negative")

	// ErrInvalidConcurrency is returned when the fetch concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidMaxBodySize is returned when the body size limit is not positive.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be positive")

	// ErrNoLookupColumn is returned when the reference name or age column is empty.
	ErrNoLookupColumn = errors.New("reference name and age columns must be set")

	// ErrInvalidMonthsPolicy is returned for an unknown months policy.
	ErrInvalidMonthsPolicy = errors.New("invalid months policy: must be \"strip\" or \"one\"")

	// ErrInvalidMinScore is returned when the warning score is outside [0, 100].
	ErrInvalidMinScore = errors.New("invalid minimum score warning: must be between 0 and 100")

	// ErrInvalidMinorThreshold is returned when the minor threshold is not positive.
	ErrInvalidMinorThreshold = errors.New("invalid minor threshold: must be positive")

	// ErrAliasIsTarget is returned when a title alias is also a target title.
	ErrAliasIsTarget = errors.New("invalid title aliases: an alias is also a target title")

	// ErrDuplicateAlias is returned when an alias is listed under two targets.
	ErrDuplicateAlias = errors.New("invalid title aliases: alias listed under more than one title")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
