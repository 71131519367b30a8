package models

import "time"

// ReviewStatus is the expert-review state of a takeoff.
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
)

// Review is a read-only mirror of a server-side expert review record.
type Review struct {
	ReviewID    string                 `json:"review_id"`
	ProjectID   string                 `json:"project_id"`
	Status      ReviewStatus           `json:"status"`
	ExpertID    string                 `json:"expert_id,omitempty"`
	ExpertName  string                 `json:"expert_name,omitempty"`
	Corrections map[string]interface{} `json:"corrections,omitempty"`
	Notes       string                 `json:"notes,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
	ReviewedAt  *time.Time             `json:"reviewed_at,omitempty"`
}

// ReviewUpdateRequest is the payload for approving or correcting a review.
type ReviewUpdateRequest struct {
	ExpertID    string                 `json:"expert_id"`
	ExpertName  string                 `json:"expert_name"`
	Corrections map[string]interface{} `json:"corrections,omitempty"`
	Notes       string                 `json:"notes,omitempty"`
	Status      string                 `json:"status,omitempty"`
}
