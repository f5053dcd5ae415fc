package scraper

import (
	"errors"

	"github.com/PuerkitoBio/goquery"
)

const (
	LoadFailedText      = "Failed to load homepage"
	HeadingNotFoundText = "Main heading not found"
)

var (
	// ErrLoadFailed wraps every fetch failure: network errors, timeouts and non-2xx responses.
	ErrLoadFailed = errors.New("failed to load page")

	ErrHeadingNotFound = errors.New("main heading not found")
)

// FetchResult is the outcome of one GET. Exactly one of Doc and Err is set.
type FetchResult struct {
	URL string
	Doc *goquery.Document
	Err error
}

// OK reports whether the page was fetched and parsed.
func (r FetchResult) OK() bool {
	return r.Err == nil && r.Doc != nil
}

// Result carries either the value an extraction task produced or the reason it failed.
type Result[T any] struct {
	Value T
	Err   error
}

// OK reports whether the task succeeded.
func (r Result[T]) OK() bool {
	return r.Err == nil
}

// CourseList is a set of course titles and the strategy that found them.
// The order of Titles carries no meaning.
type CourseList struct {
	Titles   []string `json:"titles"`
	Strategy string   `json:"strategy,omitempty"`
}

// HeadingText maps a heading result to the line shown to the user.
func HeadingText(r Result[string]) string {
	switch {
	case r.OK():
		return r.Value
	case errors.Is(r.Err, ErrHeadingNotFound):
		return HeadingNotFoundText
	default:
		return LoadFailedText
	}
}
