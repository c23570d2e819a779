package models

import "time"

// DateLayout is the wire and form representation of Task.DueDate.
const DateLayout = time.DateOnly

type Task struct {
	ID          string
	Title       string
	Description string
	IsDone      bool
	// DueDate holds a calendar date at midnight UTC, nil if the task has none.
	DueDate   *time.Time
	Position  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TruncateDate drops the time component of t, keeping its calendar date.
func TruncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string. An empty string yields nil.
func ParseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}

	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// FormatDate returns the YYYY-MM-DD form of d or an empty string for nil.
func FormatDate(d *time.Time) string {
	if d == nil {
		return ""
	}
	return d.Format(DateLayout)
}
