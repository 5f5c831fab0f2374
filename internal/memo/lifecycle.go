package memo

import (
	"errors"
	"fmt"
	"time"

	"github.com/gapfill/gapfill/internal/period"
)

// ErrInvalidMemo is wrapped by every Validate failure.
var ErrInvalidMemo = errors.New("invalid memo")

// Validate checks the structural requirements of a memo.
func Validate(m Memo) error {
	if m.ID == "" {
		return fmt.Errorf("memo: %w: missing id", ErrInvalidMemo)
	}
	if !ValidType(m.Type) {
		return fmt.Errorf("memo %s: %w: unknown type %q", m.ID, ErrInvalidMemo, m.Type)
	}
	if m.Importance != "" && !ValidImportance(m.Importance) {
		return fmt.Errorf("memo %s: %w: unknown importance %q", m.ID, ErrInvalidMemo, m.Importance)
	}
	if !ValidLocation(m.LocationPreference) {
		return fmt.Errorf("memo %s: %w: unknown location %q", m.ID, ErrInvalidMemo, m.LocationPreference)
	}
	if m.SessionDuration < 0 || m.TotalDurationExpected < 0 || m.Status.TimeSpentMinutes < 0 {
		return fmt.Errorf("memo %s: %w: negative duration", m.ID, ErrInvalidMemo)
	}
	switch m.Type {
	case TypeRoutine:
		if m.RecurrenceGoal == nil || m.RecurrenceGoal.Count < 1 {
			return fmt.Errorf("memo %s: %w: routine requires a recurrence goal with count >= 1", m.ID, ErrInvalidMemo)
		}
		if !period.Valid(m.RecurrenceGoal.Period) {
			return fmt.Errorf("memo %s: %w: unknown recurrence period %q", m.ID, ErrInvalidMemo, m.RecurrenceGoal.Period)
		}
	case TypeDeadline:
		if m.Deadline == nil {
			return fmt.Errorf("memo %s: %w: deadline memo without a deadline", m.ID, ErrInvalidMemo)
		}
	}
	return nil
}

// Reset returns a copy of m with day flags and routine period counters rolled
// over to now. The boolean reports whether anything changed.
func Reset(m Memo, now time.Time) (Memo, bool) {
	c := m.Clone()
	c.EnsureState()
	changed := false

	if flags := c.Flags(); flags != nil && !period.SameDay(c.LastActivity, now) {
		if *flags != (DayFlags{}) {
			*flags = DayFlags{}
			changed = true
		}
	}

	if c.Type == TypeRoutine && c.RecurrenceGoal != nil {
		start := c.Status.PeriodStartDate
		if start.IsZero() {
			start = c.CreatedAt
		}
		next := period.Advance(start, now, c.RecurrenceGoal.Period)
		if !next.Equal(c.Status.PeriodStartDate) {
			// First-time initialisation keeps the counter.
			if !c.Status.PeriodStartDate.IsZero() {
				c.Status.CompletionsThisPeriod = 0
			}
			c.Status.PeriodStartDate = next
			changed = true
		}
	}
	return c, changed
}

func touch(m *Memo, now time.Time) {
	m.EnsureState()
	m.LastActivity = now
	if m.Status.CompletionState == "" || m.Status.CompletionState == NotStarted {
		m.Status.CompletionState = InProgress
	}
}

// Accept records that the user took up today's suggestion for m.
func Accept(m *Memo, now time.Time) {
	touch(m, now)
	if f := m.Flags(); f != nil {
		f.AcceptedToday = true
	}
}

// Reject records that the user declined today's suggestion for m.
func Reject(m *Memo, now time.Time) {
	m.EnsureState()
	m.LastActivity = now
	if f := m.Flags(); f != nil {
		f.RejectedToday = true
	}
}

// LogSession adds minutes of work to m. Deadline and backlog memos become
// completed once their expected total has been reached.
func LogSession(m *Memo, minutes int, now time.Time) error {
	if minutes < 0 {
		return fmt.Errorf("memo %s: negative session length %d", m.ID, minutes)
	}
	touch(m, now)
	m.Status.TimeSpentMinutes += minutes
	if m.Type == TypeDeadline && minutes > 0 {
		m.DeadlineState.SessionHistory = append(m.DeadlineState.SessionHistory, minutes)
	}
	if m.Type != TypeRoutine && m.TotalDurationExpected > 0 &&
		m.Status.TimeSpentMinutes >= m.TotalDurationExpected {
		m.Status.CompletionState = Completed
	}
	return nil
}

// Complete logs a finished session and updates the type's completion
// bookkeeping.
func Complete(m *Memo, minutes int, now time.Time) error {
	if err := LogSession(m, minutes, now); err != nil {
		return err
	}
	if f := m.Flags(); f != nil {
		f.CompletedToday = true
	}
	switch m.Type {
	case TypeRoutine:
		m.Status.CompletionsThisPeriod++
		m.Routine.LastCompletedAt = now
		m.Routine.CompletionHistory = append(m.Routine.CompletionHistory, now)
	case TypeBacklog:
		m.Backlog.LastCompletedAt = now
		m.Backlog.CompletionHistory = append(m.Backlog.CompletionHistory, now)
	}
	return nil
}
