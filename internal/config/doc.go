// Package config provides configuration structures and utilities for
// titanicprep. It names every tunable of the scraper, the age imputer and
// the preparation pipeline with a documented default, and loads overrides
// from an optional YAML file.
package config
