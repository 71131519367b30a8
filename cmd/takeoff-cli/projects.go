// Project commands: listing, creation (plan upload) and detail views.

package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/takeoffhq/takeoff-go/internal/client"
	"github.com/takeoffhq/takeoff-go/internal/core"
	"github.com/takeoffhq/takeoff-go/internal/intake"
	"github.com/takeoffhq/takeoff-go/internal/models"
	"github.com/takeoffhq/takeoff-go/internal/render"
	"github.com/takeoffhq/takeoff-go/internal/store"
)

func newProjectsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Manage takeoff projects",
	}
	cmd.AddCommand(newProjectsListCmd(), newProjectsCreateCmd(), newProjectsShowCmd())
	return cmd
}

func newProjectsListCmd() *cobra.Command {
	var (
		status    string
		createdBy string
		limit     int
		cached    bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(app *core.App) error {
				st := store.New(app.DB)
				if cached {
					projects, err := st.ListProjects(models.ProjectStatus(status))
					if err != nil {
						return err
					}
					render.ProjectTable(os.Stdout, projects)
					return nil
				}

				projects, err := app.API.ListProjects(cmd.Context(), client.ListProjectsOptions{
					CreatedBy: createdBy,
					Status:    models.ProjectStatus(status),
					Limit:     limit,
				})
				if err != nil {
					// Offline fallback: show whatever the last sync cached.
					log.Printf("Server unreachable (%v), showing cached projects", err)
					projects, cerr := st.ListProjects(models.ProjectStatus(status))
					if cerr != nil {
						return err
					}
					render.ProjectTable(os.Stdout, projects)
					return nil
				}
				render.ProjectTable(os.Stdout, projects)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (uploaded, processing, completed, ...)")
	cmd.Flags().StringVar(&createdBy, "created-by", "", "Filter by creator")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of projects to return")
	cmd.Flags().BoolVar(&cached, "cached", false, "Read from the local cache instead of the server")
	return cmd
}

func newProjectsCreateCmd() *cobra.Command {
	var (
		trades    []string
		name      string
		createdBy string
		process   bool
	)
	cmd := &cobra.Command{
		Use:   "create <plan.pdf>",
		Short: "Upload a plan document and create a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(app *core.App) error {
				path := args[0]
				if len(trades) == 0 {
					trades = app.Config.Intake.Trades
				}

				pf, err := intake.Preflight(path, app.Config.MaxFileSizeMB)
				if err != nil {
					return err
				}

				f, err := os.Open(path)
				if err != nil {
					return err
				}
				defer f.Close()

				if name == "" {
					name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
				}
				resp, err := app.API.CreateProject(cmd.Context(), client.CreateProjectInput{
					FileName:  filepath.Base(path),
					File:      f,
					Trades:    trades,
					Name:      name,
					CreatedBy: createdBy,
				})
				if err != nil {
					return err
				}
				fmt.Printf("Created project %s (%d pages, %.2fMB, trades: %s)\n",
					resp.ProjectID, pf.Pages, pf.FileSizeMB, strings.Join(trades, ","))

				if process {
					return runProcess(cmd.Context(), app, resp.ProjectID)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&trades, "trades", nil, "Trades to extract (defaults to the configured intake trades)")
	cmd.Flags().StringVar(&name, "name", "", "Project name (defaults to the file name)")
	cmd.Flags().StringVar(&createdBy, "created-by", "", "Creator identifier")
	cmd.Flags().BoolVar(&process, "process", false, "Start processing immediately and follow progress")
	return cmd
}

func newProjectsShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <project-id>",
		Short: "Show one project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(app *core.App) error {
				p, err := app.API.GetProject(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				fmt.Printf("Project:  %s\n", p.ProjectID)
				fmt.Printf("Name:     %s\n", p.DisplayName())
				fmt.Printf("File:     %s (%.2fMB)\n", p.FileName, p.FileSizeMB)
				fmt.Printf("Status:   %s\n", render.StatusBadge(p.Status))
				fmt.Printf("Trades:   %s\n", strings.Join(p.SelectedTrades, ","))
				if p.CreatedBy != "" {
					fmt.Printf("Creator:  %s\n", p.CreatedBy)
				}
				fmt.Printf("Created:  %s\n", p.CreatedAt.Format("2006-01-02 15:04"))

				if p.Status.IsTerminalSuccess() {
					fmt.Println()
					return showResults(cmd.Context(), app, p.ProjectID, false)
				}
				return nil
			})
		},
	}
	return cmd
}

func newTradesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trades",
		Short: "List the trades the server can extract",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(app *core.App) error {
				trades, err := app.API.SupportedTrades(cmd.Context())
				if err != nil {
					return err
				}
				render.TradeTable(os.Stdout, trades)
				return nil
			})
		},
	}
}
