// Package render turns models into terminal output. Everything here is
// a pure function of its inputs except Gauge, which animates a number
// toward a target over a fixed duration.
package render

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/takeoffhq/takeoff-go/internal/models"
	"github.com/takeoffhq/takeoff-go/internal/util"
)

// ProjectTable writes a listing of projects sorted by display name.
func ProjectTable(w io.Writer, projects []models.Project) {
	sorted := make([]models.Project, len(projects))
	copy(sorted, projects)
	sort.SliceStable(sorted, func(i, j int) bool {
		return util.NaturalLess(sorted[i].DisplayName(), sorted[j].DisplayName())
	})

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tTRADES\tCREATED")
	for _, p := range sorted {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			p.ProjectID,
			p.DisplayName(),
			StatusBadge(p.Status),
			strings.Join(p.SelectedTrades, ","),
			p.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	tw.Flush()
}

// TradeTable writes the supported trades with their units.
func TradeTable(w io.Writer, trades []models.TradeInfo) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tUNIT\tENABLED")
	for _, t := range trades {
		enabled := "yes"
		if !t.Enabled {
			enabled = "no"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.ID, t.Name, t.Unit, enabled)
	}
	tw.Flush()
}

// QuantityTable writes the extracted quantities for each trade along
// with the per-trade confidence.
func QuantityTable(w io.Writer, result *models.TakeoffResult) {
	trades := make([]string, 0, len(result.Quantities))
	for trade := range result.Quantities {
		trades = append(trades, trade)
	}
	sort.Strings(trades)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TRADE\tTOTAL\tUNIT\tCONFIDENCE")
	for _, trade := range trades {
		q := result.Quantities[trade]
		confidence := q.Confidence
		if confidence == 0 && result.ConfidenceScores != nil {
			confidence = result.ConfidenceScores[trade]
		}
		fmt.Fprintf(tw, "%s\t%.2f\t%s\t%s\n", trade, q.Total, q.Unit, ConfidenceBadge(confidence))
	}
	tw.Flush()
}

// VerificationTable writes the per-check verification outcome and flags.
func VerificationTable(w io.Writer, v *models.VerificationResults) {
	if v == nil {
		fmt.Fprintln(w, "No verification results.")
		return
	}

	checks := make([]string, 0, len(v.Checks))
	for name := range v.Checks {
		checks = append(checks, name)
	}
	sort.Strings(checks)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CHECK\tRESULT\tCONFIDENCE\tDETAILS")
	for _, name := range checks {
		check := v.Checks[name]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", name, PassBadge(check.Passed), ConfidenceBadge(check.Confidence), check.Details)
	}
	tw.Flush()

	if len(v.Flags) > 0 {
		fmt.Fprintf(w, "Flags: %s\n", strings.Join(v.Flags, "; "))
	}
	fmt.Fprintf(w, "Overall confidence: %s\n", ConfidenceBadge(v.OverallConfidence))
}

// ReviewTable writes the expert review queue.
func ReviewTable(w io.Writer, reviews []models.Review) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "REVIEW\tPROJECT\tSTATUS\tEXPERT\tCREATED")
	for _, r := range reviews {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.ReviewID, r.ProjectID, string(r.Status), r.ExpertName,
			r.CreatedAt.Format("2006-01-02 15:04"))
	}
	tw.Flush()
}
