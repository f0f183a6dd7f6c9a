// Package impute fills missing passenger ages from the scraped reference
// table by fuzzy name matching.
//
// Names are compared after SanitizeName with Ratio, a 0..100 similarity
// score compatible with fuzzywuzzy's fuzz.ratio. For every passenger whose
// Age cell is empty, the reference record with the highest score supplies
// the age. Equal scores are broken by the smallest sanitized reference
// name, then by reference order, so the result never depends on chance.
//
// Usage:
//
//	m, err := impute.NewMatcher(records,
//	    impute.WithMonthsPolicy(cfg.MonthsPolicy),
//	    impute.WithLogger(logger),
//	)
//	filled, summary, err := m.Impute(train, "train")
package impute
