// Package report renders model.RunSummary values for people and tools.
//
// SimpleWriter prints plain text to a terminal, MarkdownWriter produces a
// shareable document with tables and a mermaid chart of missing values, and
// JSONWriter emits a versioned JSON document. MultiWriter fans one summary
// out to several of them, which is how the CLI writes a file report while
// still printing to stdout.
package report
