package scoring

import (
	"math"
	"time"

	"github.com/gapfill/gapfill/internal/memo"
	"github.com/gapfill/gapfill/internal/period"
)

const (
	deadlineFloorNeed = 0.1
	routineMaxNeed    = 0.9
	backlogBaseNeed   = 0.5
	backlogDailyGrow  = 0.02
	backlogMaxNeed    = 0.7

	// routineIntervalWeek is the span in days a routine's goal count is
	// spread over to get its ideal interval.
	routineIntervalWeek = 7.0

	// hiddenCap keeps a score visible to callers but under the display threshold.
	hiddenCap = 0.49
	// suppressedBacklogNeed hides a backlog memo for the rest of the day.
	suppressedBacklogNeed = 0.3
)

func (s *Scorer) deadline(m memo.Memo, now time.Time) Score {
	p := deadlineProgress(m, now)

	need := deadlineFloorNeed + (1-deadlineFloorNeed)*p
	if m.Deadline != nil {
		due := *m.Deadline
		created := createdOr(m, now)
		switch {
		case !now.Before(due):
			need = 1.0
		case period.SameDay(due, now):
			need = 1.0
		case due.Sub(created) <= 24*time.Hour:
			need = 1.0
		}
		if f := m.Flags(); f != nil && f.CompletedToday && !period.SameDay(due, now) && now.Before(due) {
			need = math.Min(need, hiddenCap)
		}
	}
	need = clamp(need, deadlineFloorNeed, 1.0)

	floor := s.floorMinutes(m)
	ideal := s.deadlineDuration(m, floor, p)
	ideal, floor = capRemaining(m, ideal, floor)
	return Score{Need: need, Duration: ideal, MinDuration: floor}
}

// deadlineProgress is the fraction of the creation-to-deadline span that has
// elapsed at now, in [0, 1].
func deadlineProgress(m memo.Memo, now time.Time) float64 {
	if m.Deadline == nil {
		return 0
	}
	created := createdOr(m, now)
	span := m.Deadline.Sub(created)
	if span <= 0 {
		return 1
	}
	return clamp(float64(now.Sub(created))/float64(span), 0, 1)
}

// deadlineDuration grows the session length linearly from floor to
// floor*MaxGrowthFactor across the deadline span, blended with the
// exponentially smoothed history of observed sessions.
func (s *Scorer) deadlineDuration(m memo.Memo, floor int, progress float64) int {
	lo := float64(floor)
	hi := lo * s.opts.MaxGrowthFactor
	ideal := lo * (1 + (s.opts.MaxGrowthFactor-1)*progress)

	if m.DeadlineState != nil && len(m.DeadlineState.SessionHistory) > 0 {
		a := s.opts.SmoothingAlpha
		ema := float64(m.DeadlineState.SessionHistory[0])
		for _, v := range m.DeadlineState.SessionHistory[1:] {
			ema = a*float64(v) + (1-a)*ema
		}
		ideal = (1-a)*ideal + a*ema
	}

	n := s.snap(clamp(ideal, lo, hi))
	if n < floor {
		n = floor
	}
	if max := int(hi); n > max {
		n = max
	}
	return n
}

func (s *Scorer) routine(m memo.Memo, now time.Time) Score {
	floor := s.floorMinutes(m)
	sc := Score{Duration: floor, MinDuration: floor}

	f := m.Flags()
	if f != nil && (f.AcceptedToday || f.CompletedToday) {
		return sc
	}

	count := 1
	if m.RecurrenceGoal != nil && m.RecurrenceGoal.Count > 0 {
		count = m.RecurrenceGoal.Count
	}
	// Growth is paced on a week whatever the goal's period; the period only
	// decides when completions roll over.
	interval := routineIntervalWeek / float64(count)

	last := createdOr(m, now)
	if m.Routine != nil && !m.Routine.LastCompletedAt.IsZero() {
		last = m.Routine.LastCompletedAt
	}
	days := math.Max(0, period.DaysBetween(last, now))
	need := math.Min(routineMaxNeed, routineMaxNeed*days/interval)

	if m.Status.CompletionsThisPeriod >= count {
		need = math.Min(need, hiddenCap)
	}
	if f != nil && f.RejectedToday {
		need = math.Min(need, hiddenCap)
	}
	sc.Need = need
	return sc
}

func (s *Scorer) backlog(m memo.Memo, now time.Time) Score {
	floor := s.floorMinutes(m)
	ideal, floor := capRemaining(m, floor, floor)
	sc := Score{Duration: ideal, MinDuration: floor}

	if f := m.Flags(); f != nil && (f.AcceptedToday || f.CompletedToday || f.RejectedToday) {
		sc.Need = suppressedBacklogNeed
		return sc
	}

	last := createdOr(m, now)
	if m.Backlog != nil && !m.Backlog.LastCompletedAt.IsZero() {
		last = m.Backlog.LastCompletedAt
	}
	days := math.Max(0, period.DaysBetween(last, now))
	sc.Need = math.Min(backlogMaxNeed, backlogBaseNeed+backlogDailyGrow*days)
	return sc
}

func createdOr(m memo.Memo, now time.Time) time.Time {
	if m.CreatedAt.IsZero() || m.CreatedAt.After(now) {
		return now
	}
	return m.CreatedAt
}
