package tasks

import (
	"fmt"
	"time"

	"github.com/tgienger/taskdeck/internal/models"
)

// Card text limits
const (
	MaxTitleLength       = 30
	MaxDescriptionLength = 85
)

// Truncate cuts s to max runes and appends "..." when it is longer than max
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}

// TimeLeft describes how long until due, relative to now
func TimeLeft(due *time.Time, now time.Time) string {
	if due == nil {
		return "No Due Date"
	}
	diff := due.Sub(now)
	if diff <= 0 {
		return "Past Due"
	}
	hours := int(diff / time.Hour)
	if days := hours / 24; days > 0 {
		return fmt.Sprintf("%dd left", days)
	}
	return fmt.Sprintf("%dh left", hours)
}

// PriorityColor is the card accent for a priority
func PriorityColor(p models.Priority) string {
	switch p {
	case models.PriorityCritical:
		return "#f7768e"
	case models.PriorityHigh:
		return "#ff9e64"
	case models.PriorityMedium:
		return "#e0af68"
	case models.PriorityLow:
		return "#9ece6a"
	}
	return "#c0caf5"
}
