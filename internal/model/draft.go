package model

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// TaskDraft is an unvalidated task, either typed by a person or extracted from
// a meeting transcript. Subtasks nest to any depth.
type TaskDraft struct {
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Priority    TaskPriority  `json:"priority,omitempty"`
	Deadline    DraftDeadline `json:"deadline,omitempty"`
	PortfolioID *uint         `json:"portfolio_id,omitempty"`
	Subtasks    []TaskDraft   `json:"subtasks,omitempty"`
}

// DraftDeadline is either a local calendar date (YYYY-MM-DD) or an instant
// that was already parsed upstream.
type DraftDeadline struct {
	Date string
	At   *time.Time
}

func (d DraftDeadline) IsZero() bool { return d.Date == "" && d.At == nil }

func (d DraftDeadline) MarshalJSON() ([]byte, error) {
	switch {
	case d.At != nil:
		return json.Marshal(d.At)
	case d.Date != "":
		return json.Marshal(d.Date)
	}
	return []byte("null"), nil
}

// UnmarshalJSON accepts a date string, an RFC 3339 timestamp or null. Other
// shapes leave the deadline empty so the fallback applies.
func (d *DraftDeadline) UnmarshalJSON(data []byte) error {
	*d = DraftDeadline{}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	s = strings.TrimSpace(s)
	if len(s) > len("2006-01-02") {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			d.At = &t
			return nil
		}
	}
	d.Date = s
	return nil
}

func (t *TaskDraft) UnmarshalJSON(data []byte) error {
	var raw struct {
		Title       *string         `json:"title"`
		Description *string         `json:"description"`
		Priority    *string         `json:"priority"`
		Deadline    DraftDeadline   `json:"deadline"`
		PortfolioID *uint           `json:"portfolio_id"`
		Subtasks    json.RawMessage `json:"subtasks"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*t = TaskDraft{Deadline: raw.Deadline, PortfolioID: raw.PortfolioID}
	if raw.Title != nil {
		t.Title = strings.TrimSpace(*raw.Title)
	}
	if raw.Description != nil {
		t.Description = *raw.Description
	}
	if raw.Priority != nil {
		t.Priority = TaskPriority(*raw.Priority)
	}
	t.Subtasks = decodeSubtasks(raw.Subtasks)
	return nil
}

// decodeSubtasks keeps only the list elements that are objects. Anything that
// is not a list means "no subtasks".
func decodeSubtasks(data json.RawMessage) []TaskDraft {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil
	}
	var out []TaskDraft
	for _, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) == 0 || item[0] != '{' {
			continue
		}
		var child TaskDraft
		if err := json.Unmarshal(item, &child); err != nil {
			continue
		}
		out = append(out, child)
	}
	return out
}

// PriorityOrDefault returns the draft priority, or Medium if it is missing or
// not one of the known values.
func (t TaskDraft) PriorityOrDefault() TaskPriority {
	if t.Priority.Valid() {
		return t.Priority
	}
	return PriorityMedium
}

// CountTitled counts the drafts in the forest that would be created.
func CountTitled(drafts []TaskDraft) int {
	n := 0
	for _, d := range drafts {
		if d.Title == "" {
			continue
		}
		n += 1 + CountTitled(d.Subtasks)
	}
	return n
}
