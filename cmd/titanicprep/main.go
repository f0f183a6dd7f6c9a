// Package main provides the entry point for the titanicprep CLI.
//
// titanicprep prepares the passenger survival dataset: it scrapes the
// published passenger ages, fills missing ages by fuzzy name matching and
// derives, fills and encodes the model features.
//
// Usage:
//
//	titanicprep scrape -o output.csv
//	titanicprep impute --reference output.csv --train train.csv --test test.csv
//	titanicprep prepare --train train_pp.csv --test test_pp.csv
//
// See --help for all available options.
package main

// main is the entry point for titanicprep.
func main() {
	Execute()
}
