package cli

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
	"github.com/pfrederiksen/flatiron-scraper/internal/runner"
)

// writePDF renders the same three sections as the text report on an A4 page.
func writePDF(w io.Writer, report *runner.Report) error {
	p := gofpdf.New("P", "mm", "A4", "")
	tr := p.UnicodeTranslatorFromDescriptor("")
	p.SetTitle(report.SiteName+" Scraper", true)
	p.AddPage()

	section := func(title string) {
		p.Ln(4)
		p.SetFont("Arial", "B", 13)
		p.Cell(0, 8, tr(title))
		p.Ln(9)
		p.SetFont("Arial", "", 11)
	}
	line := func(text string) {
		p.MultiCell(0, 6, tr(text), "", "L", false)
	}

	p.SetFont("Arial", "B", 16)
	p.Cell(0, 10, tr(report.SiteName+" Scraper"))
	p.Ln(10)
	p.SetFont("Arial", "", 9)
	p.Cell(0, 6, tr(fmt.Sprintf("%s - %s", report.BaseURL, report.CheckedAt.Format("2006-01-02 15:04 MST"))))
	p.Ln(6)

	section("[1] Main Heading")
	line(report.Heading)

	section("[2] Courses Offered")
	if report.FallbackTried {
		line(noCoursesText)
	}
	if len(report.Courses) == 0 {
		line(stillMissingText)
	}
	for i, course := range report.Courses {
		line(fmt.Sprintf("%d. %s", i+1, course))
	}

	section(fmt.Sprintf("[3] Sample Links (First %d)", report.LinkLimit))
	for _, link := range report.Links {
		line(link)
	}
	line(fmt.Sprintf("%d links found in total.", report.TotalLinks))

	if err := p.Output(w); err != nil {
		return fmt.Errorf("rendering PDF: %w", err)
	}
	return nil
}
