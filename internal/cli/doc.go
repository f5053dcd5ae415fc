// Package cli implements the command-line interface for flatiron-scraper.
//
// The cli package provides the Cobra root command, loads configuration from
// defaults, an optional YAML file, SCRAPER_* environment variables and flags,
// runs the scraper and renders the report as text, JSON or PDF.
package cli
