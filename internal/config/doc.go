// Package config defines the immutable settings used by the scraper.
//
// A Config starts from Default, may be overlaid with a YAML file (LoadFile) and
// SCRAPER_* environment variables (ApplyEnv), and must pass Validate before it is
// handed to the scraper. Validate compiles every CSS selector with cascadia.
package config
