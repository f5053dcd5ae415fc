package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pfrederiksen/flatiron-scraper/internal/runner"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatPDF  OutputFormat = "pdf"
)

const (
	noCoursesText    = "No courses found - trying alternative approach..."
	stillMissingText = "Still couldn't find courses. Website structure may have changed significantly."
)

// WriteOutput writes the report in the specified format
func WriteOutput(w io.Writer, report *runner.Report, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, report)
	case FormatText:
		return writeText(w, report, verbose)
	case FormatPDF:
		return writePDF(w, report)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs the report as indented JSON
func writeJSON(w io.Writer, report *runner.Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

// writeText outputs the report as human-readable text
func writeText(w io.Writer, report *runner.Report, verbose bool) error {
	fmt.Fprintf(w, "=== %s Scraper ===\n", report.SiteName)

	fmt.Fprintln(w, "\n[1] Main Heading:")
	fmt.Fprintln(w, report.Heading)

	fmt.Fprintln(w, "\n[2] Courses Offered:")
	if report.FallbackTried {
		fmt.Fprintln(w, noCoursesText)
	}
	if len(report.Courses) == 0 {
		fmt.Fprintln(w, stillMissingText)
	}
	for i, course := range report.Courses {
		fmt.Fprintf(w, "%d. %s\n", i+1, course)
	}
	if verbose && report.CourseSource != "" {
		fmt.Fprintf(w, "   (source: %s)\n", report.CourseSource)
	}

	fmt.Fprintf(w, "\n[3] Sample Links (First %d):\n", report.LinkLimit)
	for _, link := range report.Links {
		fmt.Fprintln(w, link)
	}
	if verbose {
		fmt.Fprintf(w, "   (%d links found)\n", report.TotalLinks)
		for _, f := range report.Failures {
			fmt.Fprintf(w, "   failed: %s\n", f)
		}
	}

	_, err := fmt.Fprintln(w, "\nScraping complete!")
	return err
}
