// Processing commands: start a takeoff and follow it live, cancel a run,
// and the legacy single-shot document endpoint.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/takeoffhq/takeoff-go/internal/core"
	"github.com/takeoffhq/takeoff-go/internal/progress"
	"github.com/takeoffhq/takeoff-go/internal/render"
	"github.com/takeoffhq/takeoff-go/internal/socket"
)

func newProcessCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "process <project-id>",
		Short: "Start takeoff processing and follow progress live",
		Long: `Starts processing and follows it until it finishes. Progress comes
from the server's websocket when available and from status polling
otherwise. Press Ctrl-C once to cancel the run on the server.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(app *core.App) error {
				return runProcess(cmd.Context(), app, args[0])
			})
		},
	}
}

func newCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <project-id>",
		Short: "Cancel in-flight processing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(app *core.App) error {
				ack, err := app.API.CancelTakeoff(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Println(ack.Message)
				return nil
			})
		},
	}
}

// runProcess drives one processing session: tracker for state, listener
// for push updates, a redraw loop for the terminal, and Ctrl-C mapped to
// server-side cancellation.
func runProcess(ctx context.Context, app *core.App, projectID string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	tracker := progress.New(app.API, projectID, progress.Options{
		PollInterval:  app.Config.PollInterval(),
		NavigateDelay: app.Config.NavigateDelay(),
		PollTimeout:   app.Config.PollTimeout(),
	})

	listener, err := socket.Dial(ctx, app.Config.APIBaseURL, socket.ClientID(projectID))
	if err != nil {
		log.Printf("Live progress unavailable, falling back to polling: %v", err)
	} else {
		defer listener.Close()
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case update := <-listener.Updates():
					tracker.Apply(update)
				}
			}
		}()
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)
	go func() {
		select {
		case <-ctx.Done():
		case <-sigs:
			fmt.Fprintln(os.Stderr, "\nCancelling processing...")
			if err := tracker.Cancel(context.Background()); err != nil {
				log.Printf("Cancel request failed: %v", err)
			}
		}
	}()

	redrawDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(200 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-redrawDone:
				return
			case <-ticker.C:
				drawProgress(tracker.Snapshot())
			}
		}
	}()

	runErr := tracker.Run(ctx)
	close(redrawDone)
	drawProgress(tracker.Snapshot())
	fmt.Println()

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}

	select {
	case ev := <-tracker.Events():
		switch ev.Kind {
		case progress.EventNavigate:
			fmt.Println(ev.Message)
			fmt.Println()
			return showResults(ctx, app, projectID, true)
		case progress.EventFailed:
			return errors.New(ev.Message)
		}
	default:
	}

	snap := tracker.Snapshot()
	switch snap.State {
	case progress.StateCancelled:
		fmt.Println("Processing cancelled.")
		if snap.Err != "" {
			return errors.New(snap.Err)
		}
		return nil
	default:
		if snap.Message != "" {
			fmt.Println(snap.Message)
		}
		return nil
	}
}

// drawProgress repaints the single status line in place.
func drawProgress(snap progress.Snapshot) {
	detail := snap.Stage
	if snap.Message != "" {
		detail = snap.Stage + ": " + snap.Message
	}
	fmt.Printf("\r%s %-60.60s", render.ProgressBar(snap.Percent, 30), detail)
}

func newProcessDocumentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "process-document <plan.pdf>",
		Short: "Run the legacy single-shot processing endpoint",
		Long: `Uploads a document to the legacy /process-document endpoint and
blocks until the full results payload comes back. Prefer "projects
create --process" against newer servers.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(app *core.App) error {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()

				// The legacy endpoint has no project, so there is no
				// "client_<project id>" to use. Mint a throwaway ID.
				clientID := "client_" + uuid.NewString()
				results, err := app.API.ProcessDocument(cmd.Context(), args[0], f, clientID)
				if err != nil {
					return err
				}

				out, err := json.MarshalIndent(results, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(out))
				return nil
			})
		},
	}
}
