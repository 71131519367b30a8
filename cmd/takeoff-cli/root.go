package main

import (
	"github.com/spf13/cobra"

	"github.com/takeoffhq/takeoff-go/internal/core"
)

const version = "1.0.0"

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "takeoff-cli",
		Short: "Construction takeoff from plan documents",
		Long: `takeoff-cli talks to the takeoff service: upload plan PDFs, select
trades, follow AI processing live and export the extracted quantities.

Configuration is read from config.yml in the current directory; every
key can be overridden with a TAKEOFF_ environment variable.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(
		newProjectsCmd(),
		newTradesCmd(),
		newProcessCmd(),
		newCancelCmd(),
		newResultsCmd(),
		newExportCmd(),
		newReportCmd(),
		newReviewCmd(),
		newWatchCmd(),
		newSyncCmd(),
		newHealthCmd(),
		newVersionCmd(),
		newProcessDocumentCmd(),
	)
	return cmd
}

// withApp builds the shared application components, runs fn, and closes
// resources afterwards.
func withApp(fn func(app *core.App) error) error {
	app, err := core.New()
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(app)
}
