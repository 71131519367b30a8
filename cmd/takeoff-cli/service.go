// Long-running and service-level commands: the drop-folder watcher, the
// cache sync, and server health/version checks.

package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/takeoffhq/takeoff-go/internal/client"
	"github.com/takeoffhq/takeoff-go/internal/core"
	"github.com/takeoffhq/takeoff-go/internal/intake"
	"github.com/takeoffhq/takeoff-go/internal/syncer"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch the intake folder and upload dropped plans",
		Long: `Watches the configured intake directory. Every PDF dropped into it is
validated, uploaded as a new project with the configured trades and
sent for processing. The cache sync scheduler runs alongside. Stops on
Ctrl-C.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(app *core.App) error {
				watcher := intake.NewWatcher(app.Config, app.API)
				if err := watcher.Start(); err != nil {
					return err
				}
				defer watcher.Stop()

				if scheduler := syncer.StartScheduler(app); scheduler != nil {
					defer scheduler.Stop()
				}

				quit := make(chan os.Signal, 1)
				signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
				<-quit
				log.Println("Shutting down watcher...")
				return nil
			})
		},
	}
}

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Refresh the local project cache once",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(app *core.App) error {
				if err := syncer.NewService(app).SyncAll(cmd.Context()); err != nil {
					return err
				}
				fmt.Println("Cache sync complete.")
				return nil
			})
		},
	}
}

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the takeoff service is reachable and healthy",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(app *core.App) error {
				if err := app.API.Health(cmd.Context()); err != nil {
					return err
				}
				info, err := app.API.Info(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Printf("%s: %s (version %s)\n", app.API.BaseURL(), info.Status, info.Version)
				return nil
			})
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print client and server versions",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("takeoff-cli version %s\n", version)
			return withApp(func(app *core.App) error {
				serverVersion, err := app.API.CheckCompatibility(cmd.Context())
				if err != nil {
					if serverVersion != "" {
						fmt.Printf("server version %s\n", serverVersion)
					}
					return err
				}
				fmt.Printf("server version %s (minimum supported: %s)\n", serverVersion, client.MinServerVersion)
				return nil
			})
		},
	}
}
