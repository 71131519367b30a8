// Expert review commands.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/takeoffhq/takeoff-go/internal/core"
	"github.com/takeoffhq/takeoff-go/internal/models"
	"github.com/takeoffhq/takeoff-go/internal/render"
)

func newReviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Work the expert review queue",
	}
	cmd.AddCommand(newReviewQueueCmd(), newReviewShowCmd(), newReviewApproveCmd(), newReviewUpdateCmd())
	return cmd
}

func newReviewQueueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "queue",
		Short: "List reviews waiting for an expert",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(app *core.App) error {
				queue, err := app.API.ReviewQueue(cmd.Context())
				if err != nil {
					return err
				}
				if len(queue) == 0 {
					fmt.Println("Review queue is empty.")
					return nil
				}
				render.ReviewTable(os.Stdout, queue)
				return nil
			})
		},
	}
}

func newReviewShowCmd() *cobra.Command {
	var byProject bool
	cmd := &cobra.Command{
		Use:   "show <review-id>",
		Short: "Show one review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(app *core.App) error {
				var (
					review *models.Review
					err    error
				)
				if byProject {
					review, err = app.API.GetReviewByProject(cmd.Context(), args[0])
				} else {
					review, err = app.API.GetReview(cmd.Context(), args[0])
				}
				if err != nil {
					return err
				}

				fmt.Printf("Review:   %s\n", review.ReviewID)
				fmt.Printf("Project:  %s\n", review.ProjectID)
				fmt.Printf("Status:   %s\n", review.Status)
				if review.ExpertName != "" {
					fmt.Printf("Expert:   %s\n", review.ExpertName)
				}
				if review.Notes != "" {
					fmt.Printf("Notes:    %s\n", review.Notes)
				}
				fmt.Printf("Created:  %s\n", review.CreatedAt.Format("2006-01-02 15:04"))
				if review.ReviewedAt != nil {
					fmt.Printf("Reviewed: %s\n", review.ReviewedAt.Format("2006-01-02 15:04"))
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&byProject, "project", false, "Treat the argument as a project ID")
	return cmd
}

func expertFlags(cmd *cobra.Command, expertID, expertName, notes *string) {
	cmd.Flags().StringVar(expertID, "expert-id", "", "Expert identifier")
	cmd.Flags().StringVar(expertName, "expert-name", "", "Expert display name")
	cmd.Flags().StringVar(notes, "notes", "", "Review notes")
}

func newReviewApproveCmd() *cobra.Command {
	var expertID, expertName, notes string
	cmd := &cobra.Command{
		Use:   "approve <review-id>",
		Short: "Approve a review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(app *core.App) error {
				err := app.API.ApproveReview(cmd.Context(), args[0], models.ReviewUpdateRequest{
					ExpertID:   expertID,
					ExpertName: expertName,
					Notes:      notes,
				})
				if err != nil {
					return err
				}
				fmt.Println("Review approved.")
				return nil
			})
		},
	}
	expertFlags(cmd, &expertID, &expertName, &notes)
	return cmd
}

func newReviewUpdateCmd() *cobra.Command {
	var expertID, expertName, notes, status string
	cmd := &cobra.Command{
		Use:   "update <review-id>",
		Short: "Submit corrections or a status change for a review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(app *core.App) error {
				err := app.API.UpdateReview(cmd.Context(), args[0], models.ReviewUpdateRequest{
					ExpertID:   expertID,
					ExpertName: expertName,
					Notes:      notes,
					Status:     status,
				})
				if err != nil {
					return err
				}
				fmt.Println("Review updated.")
				return nil
			})
		},
	}
	expertFlags(cmd, &expertID, &expertName, &notes)
	cmd.Flags().StringVar(&status, "status", "", "New review status (pending, approved, rejected)")
	return cmd
}
