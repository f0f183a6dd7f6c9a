// Package log provides the structured logger used by titanicprep, built on
// top of the standard slog package.
//
// The SecureHandler wraps any slog.Handler and:
//   - masks credential-bearing request headers (Authorization, Cookie, ...)
//     that may come from the configuration file
//   - truncates long string values such as scraped table cells
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
//
//	logger.Debug("fetching listing", "url", u, "headers", headers)
package log
