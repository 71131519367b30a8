package models

import "time"

// ProjectStatus is the lifecycle status reported by the takeoff service.
type ProjectStatus string

const (
	StatusUploaded     ProjectStatus = "uploaded"
	StatusProcessing   ProjectStatus = "processing"
	StatusAIComplete   ProjectStatus = "ai_complete"
	StatusExpertReview ProjectStatus = "expert_review"
	StatusCompleted    ProjectStatus = "completed"
	StatusFailed       ProjectStatus = "failed"
	StatusCancelled    ProjectStatus = "cancelled"
)

// IsTerminal reports whether no further automatic progress is expected.
func (s ProjectStatus) IsTerminal() bool {
	return s.IsTerminalSuccess() || s.IsTerminalFailure()
}

// IsTerminalSuccess reports whether the run finished with results available
// (possibly pending human review).
func (s ProjectStatus) IsTerminalSuccess() bool {
	switch s {
	case StatusCompleted, StatusAIComplete, StatusExpertReview:
		return true
	}
	return false
}

// IsTerminalFailure reports whether the run ended without results.
func (s ProjectStatus) IsTerminalFailure() bool {
	return s == StatusFailed || s == StatusCancelled
}

// Project is a read-only mirror of the server-side project record.
type Project struct {
	ProjectID      string         `json:"project_id"`
	Name           string         `json:"name,omitempty"`
	Description    string         `json:"description,omitempty"`
	FileName       string         `json:"file_name"`
	FileSizeMB     float64        `json:"file_size_mb"`
	SelectedTrades []string       `json:"selected_trades"`
	Status         ProjectStatus  `json:"status"`
	TakeoffResult  *TakeoffResult `json:"takeoff_result,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	CreatedBy      string         `json:"created_by,omitempty"`
}

// DisplayName prefers the user-assigned name and falls back to the
// uploaded file name.
func (p *Project) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.FileName
}
