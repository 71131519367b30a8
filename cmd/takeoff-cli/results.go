// Result commands: quantity tables, verification detail, file exports
// and the rendered report summary.

package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/takeoffhq/takeoff-go/internal/client"
	"github.com/takeoffhq/takeoff-go/internal/core"
	"github.com/takeoffhq/takeoff-go/internal/models"
	"github.com/takeoffhq/takeoff-go/internal/render"
	"github.com/takeoffhq/takeoff-go/internal/store"
	"github.com/takeoffhq/takeoff-go/internal/util"
)

func newResultsCmd() *cobra.Command {
	var verify bool
	cmd := &cobra.Command{
		Use:   "results <project-id>",
		Short: "Show the extracted quantities for a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(app *core.App) error {
				return showResultsDetail(cmd.Context(), app, args[0], verify)
			})
		},
	}
	cmd.Flags().BoolVar(&verify, "verify", false, "Include the verification checks")
	return cmd
}

// fetchResult returns the takeoff snapshot for a project, preferring the
// server and falling back to the local cache when it is unreachable.
func fetchResult(ctx context.Context, app *core.App, projectID string) (*models.TakeoffResult, error) {
	ts, err := app.API.GetTakeoff(ctx, projectID)
	if err == nil {
		result := ts.TakeoffResult
		result.ProjectID = ts.ProjectID
		result.Status = ts.Status
		return &result, nil
	}

	cached, cerr := store.New(app.DB).GetResult(projectID)
	if cerr == nil && cached != nil {
		fmt.Fprintln(os.Stderr, "Server unreachable, showing cached results.")
		return cached, nil
	}
	return nil, err
}

// showResults renders the quantity summary after a finished run. With
// animate set, the overall confidence settles like a dial instead of
// appearing at once.
func showResults(ctx context.Context, app *core.App, projectID string, animate bool) error {
	result, err := fetchResult(ctx, app, projectID)
	if err != nil {
		return err
	}
	if len(result.Quantities) == 0 {
		fmt.Println("No quantities extracted yet.")
		return nil
	}

	render.QuantityTable(os.Stdout, result)
	fmt.Println()
	if animate {
		animateConfidence(result.OverallConfidence())
	} else {
		fmt.Printf("Overall confidence: %s\n", render.ConfidenceBadge(result.OverallConfidence()))
	}
	return nil
}

func showResultsDetail(ctx context.Context, app *core.App, projectID string, verify bool) error {
	result, err := fetchResult(ctx, app, projectID)
	if err != nil {
		return err
	}
	if len(result.Quantities) == 0 {
		fmt.Println("No quantities extracted yet.")
		return nil
	}

	render.QuantityTable(os.Stdout, result)
	fmt.Println()
	if verify {
		render.VerificationTable(os.Stdout, result.VerificationResults)
		return nil
	}
	fmt.Printf("Overall confidence: %s\n", render.ConfidenceBadge(result.OverallConfidence()))
	return nil
}

// animateConfidence tweens the displayed score from zero to its final
// value, then leaves the settled line on screen.
func animateConfidence(score float64) {
	g := render.NewGauge(800*time.Millisecond, 20)
	defer g.Stop()
	g.Set(score * 100)

	deadline := time.After(2 * time.Second)
	for {
		v := g.Value()
		fmt.Printf("\rOverall confidence: %3.0f%%", v)
		if v >= score*100 {
			break
		}
		select {
		case <-deadline:
			fmt.Printf("\rOverall confidence: %3.0f%%", score*100)
			fmt.Println()
			return
		case <-time.After(50 * time.Millisecond):
		}
	}
	fmt.Printf("\rOverall confidence: %s\n", render.ConfidenceBadge(score))
}

func newExportCmd() *cobra.Command {
	var (
		format string
		outDir string
	)
	cmd := &cobra.Command{
		Use:   "export <project-id>",
		Short: "Download a takeoff export file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(app *core.App) error {
				if !client.ValidExportFormat(format) {
					return fmt.Errorf("unsupported export format %q (excel, csv or pdf)", format)
				}
				if outDir == "" {
					outDir = app.Config.Exports.Path
				}
				if err := os.MkdirAll(outDir, 0755); err != nil {
					return err
				}

				name := util.SanitizeFilename(args[0]) + "_takeoff." + exportExtension(format)
				path := filepath.Join(outDir, name)
				f, err := os.Create(path)
				if err != nil {
					return err
				}
				defer f.Close()

				n, err := app.API.Export(cmd.Context(), args[0], client.ExportFormat(format), f)
				if err != nil {
					os.Remove(path)
					return err
				}
				fmt.Printf("Wrote %d bytes to %s\n", n, path)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "excel", "Export format: excel, csv or pdf")
	cmd.Flags().StringVar(&outDir, "out", "", "Output directory (defaults to the configured exports path)")
	return cmd
}

func exportExtension(format string) string {
	switch client.ExportFormat(format) {
	case client.ExportExcel:
		return "xlsx"
	case client.ExportCSV:
		return "csv"
	default:
		return "pdf"
	}
}

func newReportCmd() *cobra.Command {
	var save string
	cmd := &cobra.Command{
		Use:   "report <project-id>",
		Short: "Generate a report and print its summary",
		Long: `Sends the project's results to the report generator and prints the
headings and tables of the returned HTML as plain text. Use --save to
also keep the raw HTML.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(app *core.App) error {
				result, err := fetchResult(cmd.Context(), app, args[0])
				if err != nil {
					return err
				}

				var html bytes.Buffer
				if err := app.API.GenerateReport(cmd.Context(), result, "html", &html); err != nil {
					return err
				}

				if save != "" {
					if err := os.WriteFile(save, html.Bytes(), 0644); err != nil {
						return err
					}
					fmt.Fprintf(os.Stderr, "Saved report to %s\n", save)
				}
				return render.ReportSummary(os.Stdout, bytes.NewReader(html.Bytes()))
			})
		},
	}
	cmd.Flags().StringVar(&save, "save", "", "Also write the raw HTML report to this file")
	return cmd
}
