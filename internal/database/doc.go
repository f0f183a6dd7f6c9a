// Package database provides SQLite-based storage for titanicprep.
//
// The Store keeps:
//   - Scraped reference ages, so imputation can run without the CSV
//   - The audit of every imputed age
//   - Run summaries for later inspection
//
// The store uses modernc.org/sqlite, a CGO-free driver; the database is a
// single file under the XDG data directory by default.
package database
