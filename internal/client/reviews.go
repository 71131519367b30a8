package client

import (
	"context"
	"net/url"

	"github.com/takeoffhq/takeoff-go/internal/models"
)

// ReviewQueue fetches the projects waiting for expert review.
func (c *Client) ReviewQueue(ctx context.Context) ([]models.Review, error) {
	var resp struct {
		Queue []models.Review `json:"queue"`
		Count int             `json:"count"`
	}
	if err := c.getJSON(ctx, "/api/v1/reviews/queue", &resp); err != nil {
		return nil, err
	}
	return resp.Queue, nil
}

// GetReview fetches one review by ID.
func (c *Client) GetReview(ctx context.Context, reviewID string) (*models.Review, error) {
	var r models.Review
	if err := c.getJSON(ctx, "/api/v1/reviews/"+url.PathEscape(reviewID), &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// GetReviewByProject fetches the review attached to a project.
func (c *Client) GetReviewByProject(ctx context.Context, projectID string) (*models.Review, error) {
	var r models.Review
	if err := c.getJSON(ctx, "/api/v1/reviews/project/"+url.PathEscape(projectID), &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// ApproveReview approves a review on behalf of an expert.
func (c *Client) ApproveReview(ctx context.Context, reviewID string, req models.ReviewUpdateRequest) error {
	path := "/api/v1/reviews/" + url.PathEscape(reviewID) + "/approve"
	return c.postJSON(ctx, path, req, nil)
}

// UpdateReview submits expert corrections and an updated status.
func (c *Client) UpdateReview(ctx context.Context, reviewID string, req models.ReviewUpdateRequest) error {
	path := "/api/v1/reviews/" + url.PathEscape(reviewID) + "/update"
	return c.postJSON(ctx, path, req, nil)
}
