// Package model defines the data structures shared by the scraper, the age
// imputer and the preparation pipeline.
//
// This package contains the following main types:
//   - Table: a CSV row-set that keeps every column and the column order
//   - Passenger: a typed passenger record with nil for missing values
//   - ReferenceRecord: a scraped name/age entry used for age lookup
//   - Categorical: a category column with explicit levels and codes
//   - RunSummary: what a preparation run did, for report output
//
// Models live in their own package so that the pipeline, report and
// database packages can share them without import cycles.
package model
