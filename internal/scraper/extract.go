package scraper

import (
	"net/url"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// Strategy names
const (
	StrategyProgramCards   = "program-cards"
	StrategyNavLinks       = "nav-links"
	StrategyCourseHeadings = "course-headings"
	StrategyCoursesPage    = "courses-page"
)

// Strategy is one way of locating course titles in a document.
// Select must not modify the document.
type Strategy struct {
	Name   string
	Select func(doc *goquery.Document) []string
}

// ProgramCardStrategy takes the first title element inside every program card.
func ProgramCardStrategy(cards, title goquery.Matcher) Strategy {
	return Strategy{
		Name: StrategyProgramCards,
		Select: func(doc *goquery.Document) []string {
			var titles []string
			doc.FindMatcher(cards).Each(func(_ int, card *goquery.Selection) {
				h := card.FindMatcher(title).First()
				if h.Length() == 0 {
					return
				}
				if text := strings.TrimSpace(h.Text()); text != "" {
					titles = append(titles, text)
				}
			})
			return titles
		},
	}
}

// NavLinkStrategy keeps the text of course links in navigation menus that is longer than minLen runes.
func NavLinkStrategy(links goquery.Matcher, minLen int) Strategy {
	return Strategy{
		Name: StrategyNavLinks,
		Select: func(doc *goquery.Document) []string {
			var titles []string
			doc.FindMatcher(links).Each(func(_ int, a *goquery.Selection) {
				text := strings.TrimSpace(a.Text())
				if utf8.RuneCountInString(text) > minLen {
					titles = append(titles, text)
				}
			})
			return titles
		},
	}
}

// CourseHeadingStrategy keeps multi-word headings that mention keyword, case-insensitively.
func CourseHeadingStrategy(headings goquery.Matcher, keyword string) Strategy {
	keyword = strings.ToLower(keyword)
	return Strategy{
		Name: StrategyCourseHeadings,
		Select: func(doc *goquery.Document) []string {
			var titles []string
			doc.FindMatcher(headings).Each(func(_ int, h *goquery.Selection) {
				text := strings.TrimSpace(h.Text())
				if len(strings.Fields(text)) > 1 && strings.Contains(strings.ToLower(text), keyword) {
					titles = append(titles, text)
				}
			})
			return titles
		},
	}
}

// ExtractHeading returns the trimmed text of the first element matching m.
func ExtractHeading(doc *goquery.Document, m goquery.Matcher) (string, bool) {
	h := doc.FindMatcher(m).First()
	if h.Length() == 0 {
		return "", false
	}
	return strings.TrimSpace(h.Text()), true
}

// ExtractCourses applies strategies in order and stops at the first one that
// finds anything. The titles are deduplicated and capped at limit.
func ExtractCourses(doc *goquery.Document, strategies []Strategy, limit int) CourseList {
	for _, st := range strategies {
		titles := st.Select(doc)
		if len(titles) == 0 {
			continue
		}

		titles = dedupe(titles)
		if limit > 0 && len(titles) > limit {
			titles = titles[:limit]
		}
		return CourseList{Titles: titles, Strategy: st.Name}
	}

	return CourseList{Titles: []string{}}
}

// ExtractProgramTitles returns the trimmed text of every element matching m, in document order.
func ExtractProgramTitles(doc *goquery.Document, m goquery.Matcher) []string {
	titles := make([]string, 0)
	doc.FindMatcher(m).Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			titles = append(titles, text)
		}
	})
	return titles
}

// ExtractLinks returns the sorted, deduplicated set of link targets in doc.
// javascript: pseudo-links are dropped, hrefs starting with "http" are kept
// verbatim and everything else is resolved against base.
func ExtractLinks(doc *goquery.Document, m goquery.Matcher, base *url.URL) []string {
	seen := make(map[string]bool)

	doc.FindMatcher(m).Each(func(_ int, a *goquery.Selection) {
		href, exists := a.Attr("href")
		if !exists {
			return
		}
		if strings.HasPrefix(href, "javascript:") {
			return
		}
		if strings.HasPrefix(href, "http") {
			seen[href] = true
			return
		}

		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		seen[base.ResolveReference(ref).String()] = true
	})

	links := make([]string, 0, len(seen))
	for link := range seen {
		links = append(links, link)
	}
	sort.Strings(links)

	return links
}

// dedupe drops repeated titles, keeping the first occurrence.
func dedupe(titles []string) []string {
	seen := make(map[string]bool, len(titles))
	unique := make([]string, 0, len(titles))
	for _, t := range titles {
		if !seen[t] {
			seen[t] = true
			unique = append(unique, t)
		}
	}
	return unique
}
