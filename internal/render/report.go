package render

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/PuerkitoBio/goquery"
)

// ReportSummary extracts the headings and tables from a generated HTML
// report and writes them as plain text. The report endpoint returns HTML
// even for the "pdf" format, so this is what a terminal user sees.
func ReportSummary(w io.Writer, html io.Reader) error {
	doc, err := goquery.NewDocumentFromReader(html)
	if err != nil {
		return fmt.Errorf("failed to parse report: %w", err)
	}

	if title := strings.TrimSpace(doc.Find("h1").First().Text()); title != "" {
		fmt.Fprintln(w, title)
		fmt.Fprintln(w, strings.Repeat("=", len(title)))
	}

	doc.Find("h2, table").Each(func(_ int, s *goquery.Selection) {
		if goquery.NodeName(s) == "h2" {
			fmt.Fprintf(w, "\n%s\n", strings.TrimSpace(s.Text()))
			return
		}
		writeHTMLTable(w, s)
	})
	return nil
}

// writeHTMLTable flattens one <table> into tab-aligned rows.
func writeHTMLTable(w io.Writer, table *goquery.Selection) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := []string{}
		row.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(cell.Text()))
		})
		if len(cells) > 0 {
			fmt.Fprintln(tw, strings.Join(cells, "\t"))
		}
	})
	tw.Flush()
}
