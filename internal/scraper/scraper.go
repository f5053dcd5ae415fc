package scraper

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/pfrederiksen/flatiron-scraper/internal/config"
	"github.com/pfrederiksen/flatiron-scraper/internal/logger"
	"github.com/pfrederiksen/flatiron-scraper/internal/metrics"
	"golang.org/x/net/html/charset"
)

// Scraper fetches pages of one site and runs the extraction heuristics on them.
type Scraper struct {
	cfg    config.Config
	base   *url.URL
	client *http.Client
	pacer  *pacer
	log    *logger.Logger
	stats  *metrics.Recorder

	heading      goquery.Matcher
	link         goquery.Matcher
	programTitle goquery.Matcher
	strategies   []Strategy

	rnd *rand.Rand
}

// Option customizes a Scraper.
type Option func(*Scraper)

// WithHTTPClient replaces the default client. The configured request timeout still applies per request.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Scraper) { s.client = c }
}

// WithLogger sets the logger used for fetch failures and diagnostics.
func WithLogger(l *logger.Logger) Option {
	return func(s *Scraper) { s.log = l }
}

// WithMetrics records fetch and extraction metrics into r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(s *Scraper) { s.stats = r }
}

// WithRand makes the politeness delay reproducible.
func WithRand(r *rand.Rand) Option {
	return func(s *Scraper) { s.rnd = r }
}

// New creates a Scraper for cfg. cfg is copied; later changes to the caller's value have no effect.
func New(cfg config.Config, opts ...Option) (*Scraper, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	base, err := cfg.Base()
	if err != nil {
		return nil, err
	}

	sel, err := compileSelectors(cfg.Selectors)
	if err != nil {
		return nil, err
	}

	s := &Scraper{
		cfg:  cfg,
		base: base,
		client: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		log:          logger.Default(),
		heading:      sel["heading"],
		link:         sel["link"],
		programTitle: sel["programTitle"],
		strategies: []Strategy{
			ProgramCardStrategy(sel["programCard"], sel["cardTitle"]),
			NavLinkStrategy(sel["navCourse"], cfg.MinNavTextLen),
			CourseHeadingStrategy(sel["courseHeading"], cfg.CourseKeyword),
		},
	}

	for _, opt := range opts {
		opt(s)
	}
	s.pacer = newPacer(cfg.DelayMin, cfg.DelayMax, cfg.RequestsPerSecond, s.rnd)

	return s, nil
}

func compileSelectors(s config.Selectors) (map[string]goquery.Matcher, error) {
	raw := map[string]string{
		"heading":       s.Heading,
		"programCard":   s.ProgramCard,
		"cardTitle":     s.CardTitle,
		"navCourse":     s.NavCourse,
		"courseHeading": s.CourseHeading,
		"programTitle":  s.ProgramTitle,
		"link":          s.Link,
	}

	compiled := make(map[string]goquery.Matcher, len(raw))
	for name, expr := range raw {
		m, err := cascadia.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("compiling selector %s: %w", name, err)
		}
		compiled[name] = m
	}
	return compiled, nil
}

// Config returns a copy of the scraper's configuration.
func (s *Scraper) Config() config.Config {
	return s.cfg
}

// Strategies returns the course strategies in the order they are tried.
func (s *Scraper) Strategies() []Strategy {
	return append([]Strategy(nil), s.strategies...)
}

// Fetch waits for the pacer, downloads pageURL and parses it.
// Failures are logged and returned in the result, never panicked or dropped.
func (s *Scraper) Fetch(ctx context.Context, pageURL string) FetchResult {
	if err := s.pacer.Wait(ctx); err != nil {
		return s.fail(pageURL, fmt.Errorf("waiting before request: %w", err))
	}

	start := time.Now()
	doc, err := s.get(ctx, pageURL)
	elapsed := time.Since(start)

	if err != nil {
		s.stats.ObserveFetch(metrics.OutcomeFailure, elapsed)
		return s.fail(pageURL, err)
	}

	s.stats.ObserveFetch(metrics.OutcomeSuccess, elapsed)
	s.log.Debug("Fetched page", logger.Fields{
		"url":         pageURL,
		"duration_ms": elapsed.Milliseconds(),
	})

	return FetchResult{URL: pageURL, Doc: doc}
}

func (s *Scraper) fail(pageURL string, err error) FetchResult {
	s.log.Error("Error fetching", logger.Fields{"url": pageURL}, err)
	return FetchResult{URL: pageURL, Err: fmt.Errorf("%w: %s: %w", ErrLoadFailed, pageURL, err)}
}

func (s *Scraper) get(ctx context.Context, pageURL string) (*goquery.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)
	req.Header.Set("Accept", s.cfg.Accept)
	req.Header.Set("Accept-Language", s.cfg.AcceptLanguage)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("decoding body: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	return doc, nil
}

// Heading fetches the homepage and returns its first main heading.
func (s *Scraper) Heading(ctx context.Context) Result[string] {
	page := s.Fetch(ctx, s.base.String())
	if !page.OK() {
		return Result[string]{Err: page.Err}
	}

	text, ok := ExtractHeading(page.Doc, s.heading)
	if !ok {
		return Result[string]{Err: ErrHeadingNotFound}
	}
	return Result[string]{Value: text}
}

// Courses fetches the homepage and runs the course strategies on it.
func (s *Scraper) Courses(ctx context.Context) Result[CourseList] {
	page := s.Fetch(ctx, s.base.String())
	if !page.OK() {
		return Result[CourseList]{Value: CourseList{Titles: []string{}}, Err: page.Err}
	}

	courses := ExtractCourses(page.Doc, s.strategies, s.cfg.CourseLimit)
	if courses.Strategy != "" {
		s.stats.StrategyHit(courses.Strategy)
		s.log.Debug("Found courses", logger.Fields{
			"strategy": courses.Strategy,
			"count":    len(courses.Titles),
		})
	}
	return Result[CourseList]{Value: courses}
}

// CoursesPage fetches the dedicated courses page and collects its program titles.
func (s *Scraper) CoursesPage(ctx context.Context) Result[CourseList] {
	empty := CourseList{Titles: []string{}}

	pageURL, err := s.cfg.CoursesURL()
	if err != nil {
		return Result[CourseList]{Value: empty, Err: fmt.Errorf("%w: %w", ErrLoadFailed, err)}
	}

	page := s.Fetch(ctx, pageURL)
	if !page.OK() {
		return Result[CourseList]{Value: empty, Err: page.Err}
	}

	titles := ExtractProgramTitles(page.Doc, s.programTitle)
	if len(titles) == 0 {
		return Result[CourseList]{Value: empty}
	}

	s.stats.StrategyHit(StrategyCoursesPage)
	return Result[CourseList]{Value: CourseList{Titles: titles, Strategy: StrategyCoursesPage}}
}

// Links fetches the homepage and returns every outbound link as an absolute URL.
func (s *Scraper) Links(ctx context.Context) Result[[]string] {
	page := s.Fetch(ctx, s.base.String())
	if !page.OK() {
		return Result[[]string]{Value: []string{}, Err: page.Err}
	}

	return Result[[]string]{Value: ExtractLinks(page.Doc, s.link, s.base)}
}
