// Package tasks holds the task ordering, the card formatting helpers and the
// TaskList view-model shared by the dashboard and project pages.
package tasks

import (
	"slices"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/tgienger/taskdeck/internal/models"
)

// SortOptions tunes Sort
type SortOptions struct {
	// MissingDueLast puts tasks without a due date after every dated task.
	// By default they sort as if due at the Unix epoch.
	MissingDueLast bool
	// Locale drives the title collation; the zero value is language.Und
	Locale language.Tag
}

var epoch = time.Unix(0, 0)

// Sort returns a sorted copy of tasks. The input is never modified and
// tasks with equal keys keep their relative order.
func Sort(tasks []models.Task, key models.SortKey, opts SortOptions) []models.Task {
	out := slices.Clone(tasks)

	switch key {
	case models.SortByTitle:
		c := collate.New(opts.Locale)
		slices.SortStableFunc(out, func(a, b models.Task) int {
			return c.CompareString(a.Title, b.Title)
		})
	case models.SortByPriority:
		slices.SortStableFunc(out, func(a, b models.Task) int {
			return b.Priority.Rank() - a.Priority.Rank()
		})
	default:
		slices.SortStableFunc(out, func(a, b models.Task) int {
			return compareDue(a.DueDate, b.DueDate, opts.MissingDueLast)
		})
	}
	return out
}

func compareDue(a, b *time.Time, missingLast bool) int {
	if missingLast {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return 1
		case b == nil:
			return -1
		}
	}
	return dueOrEpoch(a).Compare(dueOrEpoch(b))
}

func dueOrEpoch(t *time.Time) time.Time {
	if t == nil {
		return epoch
	}
	return *t
}
