package memo

import (
	"fmt"
	"strings"
	"time"

	"github.com/gapfill/gapfill/internal/period"
)

// Draft is the loosely typed form of a new memo as entered by a user.
type Draft struct {
	Title      string
	Type       string
	Deadline   string // RFC 3339, "2006-01-02 15:04" or "2006-01-02" (end of day)
	Importance string
	Location   string
	Session    int
	Total      int
	Count      int
	Period     string
}

var deadlineLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02T15:04",
}

// ParseDeadline reads a deadline in loc. A bare date means the end of that day.
func ParseDeadline(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range deadlineLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	if d, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
		return d.Add(24*time.Hour - time.Minute), nil
	}
	return time.Time{}, fmt.Errorf("deadline %q: want YYYY-MM-DD, YYYY-MM-DD HH:mm or RFC 3339", s)
}

// Build turns d into a validated memo created at now. The ID is left empty
// for the store to assign.
func (d Draft) Build(now time.Time) (Memo, error) {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return Memo{}, fmt.Errorf("memo: %w: empty title", ErrInvalidMemo)
	}
	m := Memo{
		Type:                  Type(strings.ToLower(strings.TrimSpace(d.Type))),
		Title:                 title,
		CreatedAt:             now,
		Importance:            Importance(strings.ToLower(d.Importance)),
		LocationPreference:    Location(strings.ToLower(d.Location)),
		SessionDuration:       d.Session,
		TotalDurationExpected: d.Total,
		Status:                Status{CompletionState: NotStarted},
	}
	if m.Type == "" {
		m.Type = TypeBacklog
		if d.Deadline != "" {
			m.Type = TypeDeadline
		} else if d.Count > 0 || d.Period != "" {
			m.Type = TypeRoutine
		}
	}
	if d.Deadline != "" {
		due, err := ParseDeadline(d.Deadline, now.Location())
		if err != nil {
			return Memo{}, fmt.Errorf("memo: %w: %v", ErrInvalidMemo, err)
		}
		m.Deadline = &due
	}
	if m.Type == TypeRoutine {
		unit := period.Week
		if d.Period != "" {
			u, err := period.Parse(d.Period)
			if err != nil {
				return Memo{}, fmt.Errorf("memo: %w: %v", ErrInvalidMemo, err)
			}
			unit = u
		}
		count := d.Count
		if count == 0 {
			count = 1
		}
		m.RecurrenceGoal = &RecurrenceGoal{Count: count, Period: unit}
	}
	m.EnsureState()

	// Validate wants an id; the store assigns the real one.
	probe := m
	probe.ID = "draft"
	if err := Validate(probe); err != nil {
		return Memo{}, err
	}
	return m, nil
}
