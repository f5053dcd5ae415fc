package runner

import (
	"context"
	"time"

	"github.com/pfrederiksen/flatiron-scraper/internal/config"
	"github.com/pfrederiksen/flatiron-scraper/internal/logger"
	"github.com/pfrederiksen/flatiron-scraper/internal/metrics"
	"github.com/pfrederiksen/flatiron-scraper/internal/scraper"
)

// Report sections, also used as metric labels
const (
	SectionCourses = "courses"
	SectionLinks   = "links"
)

// Extractor is the part of *scraper.Scraper the runner depends on.
type Extractor interface {
	Heading(ctx context.Context) scraper.Result[string]
	Courses(ctx context.Context) scraper.Result[scraper.CourseList]
	CoursesPage(ctx context.Context) scraper.Result[scraper.CourseList]
	Links(ctx context.Context) scraper.Result[[]string]
}

// Report holds everything a single run found.
type Report struct {
	SiteName  string    `json:"site_name"`
	BaseURL   string    `json:"base_url"`
	RunID     string    `json:"run_id,omitempty"`
	CheckedAt time.Time `json:"checked_at"`

	Heading      string `json:"heading"`
	HeadingFound bool   `json:"heading_found"`

	Courses []string `json:"courses"`
	// CourseSource names the strategy that produced Courses; empty when none did.
	CourseSource string `json:"course_source,omitempty"`
	// FallbackTried is set when the homepage had no courses and the courses page was fetched.
	FallbackTried bool `json:"fallback_tried"`

	// Links holds the first LinkLimit links in sorted order.
	Links      []string `json:"links"`
	LinkLimit  int      `json:"link_limit"`
	TotalLinks int      `json:"total_links"`

	// Failures lists the reason of every task that could not complete.
	Failures []string `json:"failures,omitempty"`
}

// Runner drives one extraction run.
type Runner struct {
	extractor Extractor
	cfg       config.Config
	runID     string
	log       *logger.Logger
	stats     *metrics.Recorder
	now       func() time.Time
}

// Option customizes a Runner.
type Option func(*Runner)

// WithRunID tags the report with id.
func WithRunID(id string) Option {
	return func(r *Runner) { r.runID = id }
}

// WithLogger sets the runner's logger.
func WithLogger(l *logger.Logger) Option {
	return func(r *Runner) { r.log = l }
}

// WithMetrics records per-section item counts into rec.
func WithMetrics(rec *metrics.Recorder) Option {
	return func(r *Runner) { r.stats = rec }
}

// New creates a Runner. cfg supplies the site name, base URL and link sample size.
func New(e Extractor, cfg config.Config, opts ...Option) *Runner {
	r := &Runner{
		extractor: e,
		cfg:       cfg,
		log:       logger.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run performs heading, courses, optional courses page and links extraction
// strictly in that order. It never fails; task failures end up in the Report.
func (r *Runner) Run(ctx context.Context) *Report {
	report := &Report{
		SiteName:  r.cfg.SiteName,
		BaseURL:   r.cfg.BaseURL,
		RunID:     r.runID,
		CheckedAt: r.now().UTC(),
		Courses:   []string{},
		Links:     []string{},
		LinkLimit: r.cfg.LinkLimit,
	}

	r.log.Info("Starting scrape", logger.Fields{"base_url": r.cfg.BaseURL})

	heading := r.extractor.Heading(ctx)
	report.Heading = scraper.HeadingText(heading)
	report.HeadingFound = heading.OK()
	r.noteFailure(report, "heading", heading.Err)

	courses := r.extractor.Courses(ctx)
	r.noteFailure(report, "courses", courses.Err)
	if len(courses.Value.Titles) > 0 {
		report.Courses = courses.Value.Titles
		report.CourseSource = courses.Value.Strategy
	} else {
		report.FallbackTried = true
		r.log.Info("No courses on homepage, trying courses page", nil)

		page := r.extractor.CoursesPage(ctx)
		r.noteFailure(report, "courses page", page.Err)
		if len(page.Value.Titles) > 0 {
			report.Courses = page.Value.Titles
			report.CourseSource = page.Value.Strategy
		}
	}
	r.stats.SetExtracted(SectionCourses, len(report.Courses))

	links := r.extractor.Links(ctx)
	r.noteFailure(report, "links", links.Err)
	report.TotalLinks = len(links.Value)
	report.Links = sample(links.Value, r.cfg.LinkLimit)
	r.stats.SetExtracted(SectionLinks, report.TotalLinks)

	r.log.Info("Scrape finished", logger.Fields{
		"courses":  len(report.Courses),
		"links":    report.TotalLinks,
		"failures": len(report.Failures),
	})

	return report
}

func (r *Runner) noteFailure(report *Report, task string, err error) {
	if err == nil {
		return
	}
	report.Failures = append(report.Failures, task+": "+err.Error())
}

// sample returns at most n leading entries of links.
func sample(links []string, n int) []string {
	if len(links) <= n {
		return append([]string{}, links...)
	}
	return append([]string{}, links[:n]...)
}
