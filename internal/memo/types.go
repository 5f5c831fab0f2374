// Package memo defines the task ("memo") model and the suggestions derived from it.
package memo

import (
	"time"

	"github.com/gapfill/gapfill/internal/period"
)

// Type selects which need model scores a memo.
type Type string

const (
	TypeDeadline Type = "deadline"
	TypeRoutine  Type = "routine"
	TypeBacklog  Type = "backlog"
)

// ValidType returns true if t is a recognised memo type.
func ValidType(t Type) bool {
	switch t {
	case TypeDeadline, TypeRoutine, TypeBacklog:
		return true
	}
	return false
}

// Importance is the user's coarse rating of a memo.
type Importance string

const (
	ImportanceLow    Importance = "low"
	ImportanceMedium Importance = "medium"
	ImportanceHigh   Importance = "high"
)

// ValidImportance returns true if i is a recognised importance level.
func ValidImportance(i Importance) bool {
	switch i {
	case ImportanceLow, ImportanceMedium, ImportanceHigh:
		return true
	}
	return false
}

// Weight maps importance onto the 0.0/0.2/0.4 scale added to need when
// ranking. Unknown values weigh as low.
func (i Importance) Weight() float64 {
	switch i {
	case ImportanceHigh:
		return 0.4
	case ImportanceMedium:
		return 0.2
	default:
		return 0.0
	}
}

// CompletionState tracks progress through a memo's lifetime.
type CompletionState string

const (
	NotStarted CompletionState = "not_started"
	InProgress CompletionState = "in_progress"
	Completed  CompletionState = "completed"
)

// Location is a coarse place label shared by memos and gaps.
type Location string

const (
	LocationAny       Location = ""
	LocationHome      Location = "home"
	LocationWorkplace Location = "workplace"
	LocationOther     Location = "other"
)

// ValidLocation returns true for the named labels and for LocationAny.
func ValidLocation(l Location) bool {
	switch l {
	case LocationAny, LocationHome, LocationWorkplace, LocationOther:
		return true
	}
	return false
}

// Compatible reports whether a suggestion preferring want may be placed in a
// gap labelled have. An empty value on either side matches everything.
func Compatible(want, have Location) bool {
	return want == LocationAny || have == LocationAny || want == have
}

// Status is the progress record shared by all memo types.
type Status struct {
	TimeSpentMinutes      int             `json:"time_spent_minutes"`
	CompletionState       CompletionState `json:"completion_state"`
	CompletionsThisPeriod int             `json:"completions_this_period"`
	PeriodStartDate       time.Time       `json:"period_start_date"`
}

// RecurrenceGoal is a routine's target: Count completions per Period.
type RecurrenceGoal struct {
	Count  int         `json:"count"`
	Period period.Unit `json:"period"`
}

// DayFlags are the per-day interaction flags cleared on day rollover.
type DayFlags struct {
	AcceptedToday  bool `json:"accepted_today"`
	CompletedToday bool `json:"completed_today"`
	RejectedToday  bool `json:"rejected_today"`
}

// RoutineState is the cyclical bookkeeping of a routine memo.
type RoutineState struct {
	DayFlags
	LastCompletedAt   time.Time   `json:"last_completed_at"`
	CompletionHistory []time.Time `json:"completion_history,omitempty"`
}

// DeadlineState is the bookkeeping of a deadline memo. SessionHistory holds the
// observed length of past sessions in minutes, oldest first.
type DeadlineState struct {
	DayFlags
	SessionHistory []int `json:"session_history,omitempty"`
}

// BacklogState is the bookkeeping of a backlog memo.
type BacklogState struct {
	DayFlags
	LastCompletedAt   time.Time   `json:"last_completed_at"`
	CompletionHistory []time.Time `json:"completion_history,omitempty"`
}

// Memo is a user-defined unit of work.
type Memo struct {
	ID                    string          `json:"id"`
	Type                  Type            `json:"type"`
	Title                 string          `json:"title"`
	Genre                 string          `json:"genre,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
	Deadline              *time.Time      `json:"deadline,omitempty"`
	Importance            Importance      `json:"importance,omitempty"`
	SessionDuration       int             `json:"session_duration,omitempty"`
	TotalDurationExpected int             `json:"total_duration_expected,omitempty"`
	Status                Status          `json:"status"`
	LastActivity          time.Time       `json:"last_activity"`
	LocationPreference    Location        `json:"location_preference,omitempty"`
	RecurrenceGoal        *RecurrenceGoal `json:"recurrence_goal,omitempty"`

	Routine       *RoutineState  `json:"routine_state,omitempty"`
	DeadlineState *DeadlineState `json:"deadline_state,omitempty"`
	Backlog       *BacklogState  `json:"backlog_state,omitempty"`
}

// Active reports whether the memo still takes part in scheduling.
func (m Memo) Active() bool {
	return m.Status.CompletionState != Completed
}

// Flags returns the day flags of the memo's type-specific state, or nil if the
// state record has not been created yet.
func (m *Memo) Flags() *DayFlags {
	switch m.Type {
	case TypeRoutine:
		if m.Routine != nil {
			return &m.Routine.DayFlags
		}
	case TypeDeadline:
		if m.DeadlineState != nil {
			return &m.DeadlineState.DayFlags
		}
	case TypeBacklog:
		if m.Backlog != nil {
			return &m.Backlog.DayFlags
		}
	}
	return nil
}

// EnsureState creates the type-specific state record if it is missing.
func (m *Memo) EnsureState() {
	switch m.Type {
	case TypeRoutine:
		if m.Routine == nil {
			m.Routine = &RoutineState{}
		}
	case TypeDeadline:
		if m.DeadlineState == nil {
			m.DeadlineState = &DeadlineState{}
		}
	case TypeBacklog:
		if m.Backlog == nil {
			m.Backlog = &BacklogState{}
		}
	}
}

// Clone returns a deep copy so callers may mutate state without aliasing.
func (m Memo) Clone() Memo {
	c := m
	if m.Deadline != nil {
		d := *m.Deadline
		c.Deadline = &d
	}
	if m.RecurrenceGoal != nil {
		g := *m.RecurrenceGoal
		c.RecurrenceGoal = &g
	}
	if m.Routine != nil {
		r := *m.Routine
		r.CompletionHistory = append([]time.Time(nil), m.Routine.CompletionHistory...)
		c.Routine = &r
	}
	if m.DeadlineState != nil {
		d := *m.DeadlineState
		d.SessionHistory = append([]int(nil), m.DeadlineState.SessionHistory...)
		c.DeadlineState = &d
	}
	if m.Backlog != nil {
		b := *m.Backlog
		b.CompletionHistory = append([]time.Time(nil), m.Backlog.CompletionHistory...)
		c.Backlog = &b
	}
	return c
}

// Suggestion is an ephemeral scheduling candidate derived from one memo.
// Duration is the ideal session length; MinDuration (== BaseDuration) is the
// floor a shrinkable suggestion may be reduced to.
type Suggestion struct {
	ID                 string     `json:"id"`
	MemoID             string     `json:"memo_id"`
	Title              string     `json:"title,omitempty"`
	Type               Type       `json:"type"`
	Need               float64    `json:"need"`
	Importance         Importance `json:"importance"`
	Duration           int        `json:"duration"`
	MinDuration        int        `json:"min_duration"`
	BaseDuration       int        `json:"base_duration"`
	LocationPreference Location   `json:"location_preference,omitempty"`
	IsHidden           bool       `json:"is_hidden"`
}

// Need thresholds.
const (
	MandatoryThreshold = 1.0
	HighThreshold      = 0.75
	DisplayThreshold   = 0.5
	needEpsilon        = 1e-6
)

// Mandatory reports whether the suggestion must be admitted if at all possible.
func (s Suggestion) Mandatory() bool {
	return s.Need >= MandatoryThreshold-needEpsilon
}

// High reports whether the suggestion is in the high-need tier.
func (s Suggestion) High() bool {
	return s.Need >= HighThreshold-needEpsilon
}

// Visible reports whether the suggestion clears the display threshold.
func (s Suggestion) Visible() bool {
	return s.Need >= DisplayThreshold-needEpsilon
}

// Priority ranks suggestions for sorting and utility: need capped at 1.0 plus
// the importance weight.
func (s Suggestion) Priority() float64 {
	need := s.Need
	if need > 1.0 {
		need = 1.0
	}
	return need + s.Importance.Weight()
}

// CanShrink reports whether the suggestion may be placed below its ideal
// duration. Only deadline work shrinks.
func (s Suggestion) CanShrink() bool {
	return s.Type == TypeDeadline
}

// Floor is the smallest duration the suggestion may be placed at: its base
// duration when it can shrink, otherwise its full ideal duration.
func (s Suggestion) Floor() int {
	if s.CanShrink() {
		base := s.BaseDuration
		if base <= 0 {
			base = s.MinDuration
		}
		if base > 0 && base < s.Duration {
			return base
		}
	}
	return s.Duration
}
