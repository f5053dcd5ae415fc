package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/andybalholm/cascadia"
	yaml "gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL        = "https://flatironschool.com/"
	DefaultSiteName       = "Flatiron School"
	DefaultCoursesPath    = "our-courses/"
	DefaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	DefaultAccept         = "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8"
	DefaultAcceptLanguage = "en-US,en;q=0.5"
	DefaultRequestTimeout = 10 * time.Second
	DefaultDelayMin       = 1 * time.Second
	DefaultDelayMax       = 2 * time.Second
	DefaultCourseLimit    = 8
	DefaultLinkLimit      = 5
)

// Selectors holds the CSS selectors used by the extraction heuristics.
type Selectors struct {
	Heading       string `yaml:"heading"`
	ProgramCard   string `yaml:"programCard"`
	CardTitle     string `yaml:"cardTitle"`
	NavCourse     string `yaml:"navCourse"`
	CourseHeading string `yaml:"courseHeading"`
	ProgramTitle  string `yaml:"programTitle"`
	Link          string `yaml:"link"`
}

// Config is passed by value; the scraper keeps its own copy and never mutates it.
type Config struct {
	SiteName       string `yaml:"siteName"`
	BaseURL        string `yaml:"baseURL"`
	CoursesPath    string `yaml:"coursesPath"`
	UserAgent      string `yaml:"userAgent"`
	Accept         string `yaml:"accept"`
	AcceptLanguage string `yaml:"acceptLanguage"`

	RequestTimeout time.Duration `yaml:"requestTimeout"`
	DelayMin       time.Duration `yaml:"delayMin"`
	DelayMax       time.Duration `yaml:"delayMax"`
	// RequestsPerSecond caps request rate on top of the random delay. Zero disables the cap.
	RequestsPerSecond float64 `yaml:"requestsPerSecond"`

	CourseLimit   int    `yaml:"courseLimit"`
	LinkLimit     int    `yaml:"linkLimit"`
	MinNavTextLen int    `yaml:"minNavTextLen"`
	CourseKeyword string `yaml:"courseKeyword"`

	Selectors Selectors `yaml:"selectors"`
}

// Default returns the settings of the stock Flatiron School scraper.
func Default() Config {
	return Config{
		SiteName:          DefaultSiteName,
		BaseURL:           DefaultBaseURL,
		CoursesPath:       DefaultCoursesPath,
		UserAgent:         DefaultUserAgent,
		Accept:            DefaultAccept,
		AcceptLanguage:    DefaultAcceptLanguage,
		RequestTimeout:    DefaultRequestTimeout,
		DelayMin:          DefaultDelayMin,
		DelayMax:          DefaultDelayMax,
		RequestsPerSecond: 1,
		CourseLimit:       DefaultCourseLimit,
		LinkLimit:         DefaultLinkLimit,
		MinNavTextLen:     3,
		CourseKeyword:     "course",
		Selectors: Selectors{
			Heading:       "h1",
			ProgramCard:   ".program-card",
			CardTitle:     "h3",
			NavCourse:     `nav a[href*="courses"]`,
			CourseHeading: "h3",
			ProgramTitle:  ".program-title",
			Link:          "a[href]",
		},
	}
}

// LoadFile overlays the YAML file at path onto base. Keys missing from the file keep base's values.
func LoadFile(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	cfg := base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	return cfg, nil
}

// ApplyEnv overlays SCRAPER_* environment variables onto cfg.
func ApplyEnv(cfg Config) (Config, error) {
	if v := os.Getenv("SCRAPER_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}

	if v := os.Getenv("SCRAPER_USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}

	if v := os.Getenv("SCRAPER_ACCEPT_LANGUAGE"); v != "" {
		cfg.AcceptLanguage = v
	}

	durations := []struct {
		name string
		dst  *time.Duration
	}{
		{"SCRAPER_REQUEST_TIMEOUT", &cfg.RequestTimeout},
		{"SCRAPER_DELAY_MIN", &cfg.DelayMin},
		{"SCRAPER_DELAY_MAX", &cfg.DelayMax},
	}
	for _, d := range durations {
		v := os.Getenv(d.name)
		if v == "" {
			continue
		}
		dur, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", d.name, err)
		}
		*d.dst = dur
	}

	if v := os.Getenv("SCRAPER_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Config{}, fmt.Errorf("parse SCRAPER_RPS: %w", err)
		}
		cfg.RequestsPerSecond = rps
	}

	return cfg, nil
}

// WithoutDelay returns a copy of cfg with pacing disabled.
func (c Config) WithoutDelay() Config {
	c.DelayMin = 0
	c.DelayMax = 0
	c.RequestsPerSecond = 0
	return c
}

// Base parses BaseURL. Each call returns a fresh *url.URL.
func (c Config) Base() (*url.URL, error) {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	scheme := strings.ToLower(u.Scheme)
	if (scheme != "http" && scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("base URL must be an absolute http(s) URL: %q", c.BaseURL)
	}
	return u, nil
}

// CoursesURL resolves CoursesPath against BaseURL.
func (c Config) CoursesURL() (string, error) {
	base, err := c.Base()
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(c.CoursesPath)
	if err != nil {
		return "", fmt.Errorf("parsing courses path: %w", err)
	}
	return base.ResolveReference(ref).String(), nil
}

// Validate reports every problem found in c, joined into one error.
func (c Config) Validate() error {
	var errs []error

	if _, err := c.Base(); err != nil {
		errs = append(errs, err)
	}
	if _, err := url.Parse(c.CoursesPath); err != nil {
		errs = append(errs, fmt.Errorf("parsing courses path: %w", err))
	}
	if c.UserAgent == "" {
		errs = append(errs, errors.New("user agent must not be empty"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout))
	}
	if c.DelayMin < 0 || c.DelayMax < c.DelayMin {
		errs = append(errs, fmt.Errorf("invalid delay range [%s, %s]", c.DelayMin, c.DelayMax))
	}
	if c.RequestsPerSecond < 0 {
		errs = append(errs, fmt.Errorf("requests per second must not be negative, got %v", c.RequestsPerSecond))
	}
	if c.CourseLimit <= 0 {
		errs = append(errs, fmt.Errorf("course limit must be positive, got %d", c.CourseLimit))
	}
	if c.LinkLimit < 0 {
		errs = append(errs, fmt.Errorf("link limit must not be negative, got %d", c.LinkLimit))
	}

	for name, sel := range c.Selectors.byName() {
		if _, err := cascadia.Compile(sel); err != nil {
			errs = append(errs, fmt.Errorf("selector %s %q: %w", name, sel, err))
		}
	}

	return errors.Join(errs...)
}

func (s Selectors) byName() map[string]string {
	return map[string]string{
		"heading":       s.Heading,
		"programCard":   s.ProgramCard,
		"cardTitle":     s.CardTitle,
		"navCourse":     s.NavCourse,
		"courseHeading": s.CourseHeading,
		"programTitle":  s.ProgramTitle,
		"link":          s.Link,
	}
}
