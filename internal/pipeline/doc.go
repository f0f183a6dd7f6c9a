// Package pipeline turns age-complete passenger records into model-ready
// feature columns.
//
// A Pipeline runs Steps in order over a Dataset: type coercion, feature
// engineering, missing-value filling and the fare transform. Each step is
// logged and recorded in the run summary. The default sequence is built by
// DefaultSteps.
//
// Train and test are processed together so both share the same category
// levels; Combine joins them and Dataset.Split cuts the result back apart.
package pipeline
