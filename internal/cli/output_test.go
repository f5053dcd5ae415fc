package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/flatiron-scraper/internal/runner"
	"github.com/pfrederiksen/flatiron-scraper/internal/scraper"
)

func sampleReport() *runner.Report {
	return &runner.Report{
		SiteName:     "Flatiron School",
		BaseURL:      "https://flatironschool.com/",
		RunID:        "run-1",
		CheckedAt:    time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC),
		Heading:      "Change your life. Learn to code.",
		HeadingFound: true,
		Courses:      []string{"Software Engineering", "Data Science"},
		CourseSource: scraper.StrategyProgramCards,
		Links:        []string{"https://flatironschool.com/", "https://flatironschool.com/about"},
		LinkLimit:    5,
		TotalLinks:   2,
	}
}

func TestWriteOutput_Text(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteOutput(&buf, sampleReport(), FormatText, false); err != nil {
		t.Fatalf("WriteOutput() error = %v", err)
	}

	want := `=== Flatiron School Scraper ===

[1] Main Heading:
Change your life. Learn to code.

[2] Courses Offered:
1. Software Engineering
2. Data Science

[3] Sample Links (First 5):
https://flatironschool.com/
https://flatironschool.com/about

Scraping complete!
`
	if got := buf.String(); got != want {
		t.Errorf("text output mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestWriteOutput_TextFallback(t *testing.T) {
	tests := []struct {
		name        string
		courses     []string
		wantMissing bool
	}{
		{"fallback found courses", []string{"Cybersecurity Engineering"}, false},
		{"fallback found nothing", []string{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := sampleReport()
			report.FallbackTried = true
			report.Courses = tt.courses
			report.CourseSource = ""

			var buf bytes.Buffer
			if err := WriteOutput(&buf, report, FormatText, false); err != nil {
				t.Fatalf("WriteOutput() error = %v", err)
			}
			out := buf.String()

			if !strings.Contains(out, noCoursesText) {
				t.Errorf("output missing %q", noCoursesText)
			}
			if got := strings.Contains(out, stillMissingText); got != tt.wantMissing {
				t.Errorf("contains %q = %v, want %v", stillMissingText, got, tt.wantMissing)
			}
			if len(tt.courses) > 0 && !strings.Contains(out, "1. "+tt.courses[0]) {
				t.Errorf("output missing numbered course:\n%s", out)
			}
		})
	}
}

func TestWriteOutput_TextFailures(t *testing.T) {
	report := &runner.Report{
		SiteName:      "Flatiron School",
		Heading:       scraper.LoadFailedText,
		Courses:       []string{},
		FallbackTried: true,
		Links:         []string{},
		LinkLimit:     5,
		Failures:      []string{"heading: failed to load page: connection refused"},
	}

	var buf bytes.Buffer
	if err := WriteOutput(&buf, report, FormatText, true); err != nil {
		t.Fatalf("WriteOutput() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"[1] Main Heading:\n" + scraper.LoadFailedText + "\n",
		stillMissingText,
		"[3] Sample Links (First 5):\n",
		"(0 links found)",
		"failed: heading: failed to load page: connection refused",
		"Scraping complete!",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteOutput_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteOutput(&buf, sampleReport(), FormatJSON, false); err != nil {
		t.Fatalf("WriteOutput() error = %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if decoded["heading"] != "Change your life. Learn to code." {
		t.Errorf("heading = %v", decoded["heading"])
	}
	if decoded["course_source"] != scraper.StrategyProgramCards {
		t.Errorf("course_source = %v", decoded["course_source"])
	}
	if _, ok := decoded["failures"]; ok {
		t.Error("failures should be omitted when empty")
	}
	if !strings.Contains(buf.String(), "\n  \"site_name\"") {
		t.Error("expected two-space indentation")
	}
}

func TestWriteOutput_PDF(t *testing.T) {
	report := sampleReport()
	report.Courses = append(report.Courses, "Diseño de Producto")

	var buf bytes.Buffer
	if err := WriteOutput(&buf, report, FormatPDF, false); err != nil {
		t.Fatalf("WriteOutput() error = %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Errorf("output does not start with %%PDF: %q", buf.Bytes()[:min(16, buf.Len())])
	}
}

func TestWriteOutput_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := WriteOutput(&buf, sampleReport(), OutputFormat("xml"), false)
	if err == nil {
		t.Fatal("expected error for unknown format")
	}
	if !strings.Contains(err.Error(), "unknown format") {
		t.Errorf("error = %v", err)
	}
}
