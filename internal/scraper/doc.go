// Package scraper fetches a school website and extracts its main heading,
// course titles and outbound links.
//
// Every extraction task performs its own fetch; parsed documents are never
// shared between tasks. Fetch failures are logged and returned inside a
// Result instead of aborting the caller. Course titles come from an ordered
// list of selector strategies, the first non-empty one wins.
package scraper
