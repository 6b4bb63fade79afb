package models

import (
	"fmt"
	"strings"
	"time"
)

// Priority is an ordered severity tag
type Priority string

const (
	PriorityNone     Priority = "None"
	PriorityLow      Priority = "Low"
	PriorityMedium   Priority = "Medium"
	PriorityHigh     Priority = "High"
	PriorityCritical Priority = "Critical"
)

// Priorities lists every priority from lowest to highest
var Priorities = []Priority{PriorityNone, PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

// Rank returns the position of p in the None..Critical order, or -1 if p is unknown
func (p Priority) Rank() int {
	for i, v := range Priorities {
		if v == p {
			return i
		}
	}
	return -1
}

// ParsePriority matches a priority name case-insensitively. An empty string is None.
func ParsePriority(s string) (Priority, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return PriorityNone, nil
	}
	for _, p := range Priorities {
		if strings.EqualFold(string(p), s) {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown priority %q", s)
}

// Status is the task lifecycle tag
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
)

// Statuses lists the lifecycle in order
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted}

// ParseStatus matches a status name case-insensitively
func ParseStatus(s string) (Status, error) {
	s = strings.TrimSpace(s)
	for _, st := range Statuses {
		if strings.EqualFold(string(st), s) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Next returns the following status, wrapping from COMPLETED back to PENDING
func (s Status) Next() Status {
	for i, st := range Statuses {
		if st == s {
			return Statuses[(i+1)%len(Statuses)]
		}
	}
	return StatusPending
}

// Label is the human readable status
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInProgress:
		return "In progress"
	case StatusCompleted:
		return "Completed"
	}
	return string(s)
}

// SortKey selects the task ordering
type SortKey string

const (
	SortByDueDate  SortKey = "dueDate"
	SortByPriority SortKey = "priority"
	SortByTitle    SortKey = "title"
)

// SortKeys lists the keys in the order the UI cycles through them
var SortKeys = []SortKey{SortByDueDate, SortByPriority, SortByTitle}

// ParseSortKey parses a stored sort key
func ParseSortKey(s string) (SortKey, error) {
	for _, k := range SortKeys {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

// Next returns the following sort key
func (k SortKey) Next() SortKey {
	for i, v := range SortKeys {
		if v == k {
			return SortKeys[(i+1)%len(SortKeys)]
		}
	}
	return SortByDueDate
}

// Label is shown in the sort selector
func (k SortKey) Label() string {
	switch k {
	case SortByPriority:
		return "Priority"
	case SortByTitle:
		return "Title"
	}
	return "Due Date"
}

const instantLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatInstant renders t as an ISO-8601 UTC instant with millisecond precision
func FormatInstant(t time.Time) string {
	return t.UTC().Format(instantLayout)
}

// ParseInstant accepts RFC 3339 instants and date-only strings (UTC midnight)
func ParseInstant(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid instant %q", s)
	}
	return t, nil
}

func (p Priority) String() string { return string(p) }

// UnmarshalText rejects unknown priorities
func (p *Priority) UnmarshalText(text []byte) error {
	v, err := ParsePriority(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

func (s Status) String() string { return string(s) }

// UnmarshalText rejects unknown statuses. An empty status decodes as PENDING.
func (s *Status) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*s = StatusPending
		return nil
	}
	v, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func (k SortKey) String() string { return string(k) }
