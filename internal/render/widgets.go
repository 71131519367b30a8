package render

import (
	"fmt"
	"strings"

	"github.com/takeoffhq/takeoff-go/internal/models"
)

// ProgressBar renders a fixed-width bar for a 0-100 percentage.
func ProgressBar(percent float64, width int) string {
	if width <= 0 {
		width = 30
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := int(percent / 100 * float64(width))
	return fmt.Sprintf("[%s%s] %3.0f%%",
		strings.Repeat("=", filled),
		strings.Repeat(" ", width-filled),
		percent)
}

// StatusBadge maps a project status to its display label.
func StatusBadge(status models.ProjectStatus) string {
	switch status {
	case models.StatusUploaded:
		return "uploaded"
	case models.StatusProcessing:
		return "processing..."
	case models.StatusAIComplete:
		return "ai complete"
	case models.StatusExpertReview:
		return "awaiting review"
	case models.StatusCompleted:
		return "completed"
	case models.StatusFailed:
		return "FAILED"
	case models.StatusCancelled:
		return "cancelled"
	}
	return string(status)
}

// PassBadge renders a pass/fail marker.
func PassBadge(passed bool) string {
	if passed {
		return "PASS"
	}
	return "FAIL"
}

// ConfidenceBadge renders a confidence score with a coarse rating.
func ConfidenceBadge(score float64) string {
	label := "low"
	switch {
	case score >= 0.9:
		label = "high"
	case score >= 0.7:
		label = "medium"
	}
	return fmt.Sprintf("%.0f%% (%s)", score*100, label)
}
