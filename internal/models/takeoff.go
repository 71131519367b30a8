package models

import "time"

// TakeoffResult is the immutable snapshot of extracted quantities for a
// project, fetched once processing has finished.
type TakeoffResult struct {
	ProjectID             string                   `json:"project_id"`
	Status                ProjectStatus            `json:"status"`
	Trades                []string                 `json:"trades"`
	Quantities            map[string]TradeQuantity `json:"quantities"`
	ConfidenceScores      map[string]float64       `json:"confidence_scores"`
	VerificationResults   *VerificationResults     `json:"verification_results,omitempty"`
	ExpertReviewed        bool                     `json:"expert_reviewed"`
	ExpertNotes           string                   `json:"expert_notes,omitempty"`
	CreatedAt             time.Time                `json:"created_at"`
	CompletedAt           *time.Time               `json:"completed_at,omitempty"`
	ProcessingTimeSeconds float64                  `json:"processing_time_seconds,omitempty"`
	Metadata              map[string]interface{}   `json:"metadata,omitempty"`
}

// OverallConfidence returns the pipeline-wide confidence score, or 0 when
// the server did not report one.
func (r *TakeoffResult) OverallConfidence() float64 {
	if r.ConfidenceScores == nil {
		return 0
	}
	return r.ConfidenceScores["overall"]
}

// TradeQuantity holds the extracted line items for one trade category.
// Item values are left loosely typed because each trade reports its own
// shape (areas, counts, volumes).
type TradeQuantity struct {
	Items      map[string]interface{} `json:"items,omitempty"`
	Total      float64                `json:"total,omitempty"`
	Unit       string                 `json:"unit,omitempty"`
	Confidence float64                `json:"confidence,omitempty"`
}

// VerificationResults carries the verification agent's outcome.
type VerificationResults struct {
	OverallConfidence float64                      `json:"overall_confidence"`
	Checks            map[string]VerificationCheck `json:"checks,omitempty"`
	Flags             []string                     `json:"flags,omitempty"`
}

// VerificationCheck is a single named pass/fail check.
type VerificationCheck struct {
	Passed     bool    `json:"passed"`
	Confidence float64 `json:"confidence,omitempty"`
	Details    string  `json:"details,omitempty"`
}

// TradeInfo describes one supported trade as reported by the server.
type TradeInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
	Unit    string `json:"unit"`
}
