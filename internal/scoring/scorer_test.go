package scoring

import (
	"math"
	"testing"
	"time"

	"github.com/gapfill/gapfill/internal/memo"
	"github.com/gapfill/gapfill/internal/period"
)

func at(d, h int) time.Time {
	return time.Date(2026, 3, d, h, 0, 0, 0, time.UTC)
}

func deadlineMemo(created, due time.Time) memo.Memo {
	return memo.Memo{
		ID:              "d1",
		Type:            memo.TypeDeadline,
		Title:           "Report",
		CreatedAt:       created,
		Deadline:        &due,
		Importance:      memo.ImportanceHigh,
		SessionDuration: 30,
	}
}

func TestDeadlineNeed_Monotonic(t *testing.T) {
	s := NewScorer(DefaultOptions())
	m := deadlineMemo(at(1, 0), at(21, 0))

	prev := -1.0
	for now := at(1, 0); !now.After(at(23, 0)); now = now.Add(6 * time.Hour) {
		need := s.Score(m, now).Need
		if need < prev {
			t.Fatalf("need decreased at %v: %f < %f", now, need, prev)
		}
		prev = need
	}
	if got := s.Score(m, at(21, 0)).Need; got != 1.0 {
		t.Errorf("need at deadline: got %f, want 1.0", got)
	}
	if got := s.Score(m, at(25, 0)).Need; got != 1.0 {
		t.Errorf("need after deadline: got %f, want 1.0", got)
	}
}

func TestDeadlineNeed_Ranges(t *testing.T) {
	s := NewScorer(DefaultOptions())
	m := deadlineMemo(at(1, 0), at(21, 0))

	if got := s.Score(m, at(1, 0)).Need; math.Abs(got-0.1) > 1e-9 {
		t.Errorf("need at creation: got %f, want 0.1", got)
	}
	if got := s.Score(m, at(11, 0)).Need; math.Abs(got-0.55) > 1e-9 {
		t.Errorf("need halfway: got %f, want 0.55", got)
	}
}

func TestDeadlineNeed_DueTodayIsMandatory(t *testing.T) {
	s := NewScorer(DefaultOptions())
	m := deadlineMemo(at(1, 0), at(10, 23))
	sc := s.Score(m, at(10, 8))
	if sc.Need != 1.0 {
		t.Errorf("due today: got %f, want 1.0", sc.Need)
	}
	if !s.ToSuggestion(m, sc).Mandatory() {
		t.Error("due-today suggestion should be mandatory")
	}
}

func TestDeadlineNeed_ShortSpanIsMandatory(t *testing.T) {
	s := NewScorer(DefaultOptions())
	m := deadlineMemo(at(10, 20), at(11, 18))
	if got := s.Score(m, at(10, 21)).Need; got != 1.0 {
		t.Errorf("short span: got %f, want 1.0", got)
	}
}

func TestDeadlineDuration_GrowsAndClamps(t *testing.T) {
	s := NewScorer(DefaultOptions())
	m := deadlineMemo(at(1, 0), at(21, 0))

	start := s.Score(m, at(1, 0))
	if start.Duration != 30 || start.MinDuration != 30 {
		t.Errorf("at creation: got %d/%d, want 30/30", start.Duration, start.MinDuration)
	}
	end := s.Score(m, at(21, 0))
	if end.Duration != 150 {
		t.Errorf("at deadline: got %d, want 150", end.Duration)
	}
	mid := s.Score(m, at(11, 0))
	if mid.Duration <= start.Duration || mid.Duration >= end.Duration {
		t.Errorf("midway duration %d should lie between %d and %d", mid.Duration, start.Duration, end.Duration)
	}
	if mid.Duration%5 != 0 {
		t.Errorf("duration %d is not on the 5 minute grid", mid.Duration)
	}
}

func TestDeadlineDuration_SmoothedByHistory(t *testing.T) {
	s := NewScorer(DefaultOptions())
	m := deadlineMemo(at(1, 0), at(21, 0))
	base := s.Score(m, at(1, 0)).Duration

	m.DeadlineState = &memo.DeadlineState{SessionHistory: []int{120, 120, 120}}
	got := s.Score(m, at(1, 0)).Duration
	if got <= base {
		t.Errorf("long observed sessions should lengthen the ideal: got %d, base %d", got, base)
	}
	if got > 150 {
		t.Errorf("duration %d exceeds the growth cap", got)
	}
}

func TestDeadlineDuration_CappedByRemainingWork(t *testing.T) {
	s := NewScorer(DefaultOptions())
	m := deadlineMemo(at(1, 0), at(21, 0))
	m.TotalDurationExpected = 120
	m.Status.TimeSpentMinutes = 100

	sc := s.Score(m, at(20, 0))
	if sc.Duration != 20 || sc.MinDuration != 20 {
		t.Errorf("remaining cap: got %d/%d, want 20/20", sc.Duration, sc.MinDuration)
	}
	if sc.Duration < sc.MinDuration {
		t.Error("duration must never be below min duration")
	}
}

// A routine that met its goal this period stays under the display threshold
// however long ago it was last done.
func TestRoutineNeed_GoalMetCapped(t *testing.T) {
	s := NewScorer(DefaultOptions())
	m := memo.Memo{
		ID:             "r1",
		Type:           memo.TypeRoutine,
		CreatedAt:      at(4, 9),
		RecurrenceGoal: &memo.RecurrenceGoal{Count: 3, Period: period.Week},
		Status:         memo.Status{CompletionsThisPeriod: 3, PeriodStartDate: at(4, 9)},
		Routine:        &memo.RoutineState{LastCompletedAt: at(5, 9)},
	}
	sc := s.Score(m, at(10, 20))
	if sc.Need != 0.49 {
		t.Errorf("need: got %f, want 0.49", sc.Need)
	}
	if !sc.IsHidden {
		t.Error("capped routine should be hidden")
	}
}

func TestRoutineNeed_GrowsWithInterval(t *testing.T) {
	s := NewScorer(DefaultOptions())
	m := memo.Memo{
		ID:             "r1",
		Type:           memo.TypeRoutine,
		CreatedAt:      at(1, 0),
		RecurrenceGoal: &memo.RecurrenceGoal{Count: 7, Period: period.Week},
		Routine:        &memo.RoutineState{LastCompletedAt: at(2, 0)},
	}
	if got := s.Score(m, at(2, 12)).Need; math.Abs(got-0.45) > 1e-9 {
		t.Errorf("half interval: got %f, want 0.45", got)
	}
	if got := s.Score(m, at(9, 0)).Need; got != 0.9 {
		t.Errorf("long overdue routine: got %f, want 0.9", got)
	}
}

func TestRoutineNeed_IntervalIgnoresPeriodUnit(t *testing.T) {
	s := NewScorer(DefaultOptions())
	want := 0.9 / 7

	for _, unit := range []period.Unit{period.Day, period.Week, period.Month} {
		t.Run(string(unit), func(t *testing.T) {
			m := memo.Memo{
				ID:             "r1",
				Type:           memo.TypeRoutine,
				CreatedAt:      at(1, 0),
				RecurrenceGoal: &memo.RecurrenceGoal{Count: 1, Period: unit},
				Routine:        &memo.RoutineState{LastCompletedAt: at(2, 0)},
			}
			if got := s.Score(m, at(3, 0)).Need; math.Abs(got-want) > 1e-9 {
				t.Errorf("one day after completion: got %f, want %f", got, want)
			}
		})
	}
}

func TestRoutineNeed_SuppressedAfterAcceptToday(t *testing.T) {
	s := NewScorer(DefaultOptions())
	m := memo.Memo{
		ID:             "r1",
		Type:           memo.TypeRoutine,
		CreatedAt:      at(1, 0),
		RecurrenceGoal: &memo.RecurrenceGoal{Count: 1, Period: period.Day},
	}
	memo.Accept(&m, at(9, 8))
	if got := s.Score(m, at(9, 12)).Need; got != 0 {
		t.Errorf("accepted today: got %f, want 0", got)
	}
	if got := s.Score(m, at(10, 12)).Need; got == 0 {
		t.Error("accept flag should expire on the next day")
	}
}

func TestBacklogNeed_Saturates(t *testing.T) {
	s := NewScorer(DefaultOptions())
	m := memo.Memo{
		ID:        "b1",
		Type:      memo.TypeBacklog,
		CreatedAt: at(1, 0),
		Backlog:   &memo.BacklogState{LastCompletedAt: at(1, 12)},
	}
	if got := s.Score(m, at(16, 12)).Need; got != 0.7 {
		t.Errorf("need after 15 days: got %f, want 0.7", got)
	}
	if got := s.Score(m, at(6, 12)).Need; math.Abs(got-0.6) > 1e-9 {
		t.Errorf("need after 5 days: got %f, want 0.6", got)
	}
}

func TestBacklogNeed_HiddenAfterAccept(t *testing.T) {
	s := NewScorer(DefaultOptions())
	m := memo.Memo{ID: "b1", Type: memo.TypeBacklog, CreatedAt: at(1, 0)}
	memo.Accept(&m, at(9, 8))
	sc := s.Score(m, at(9, 9))
	if sc.Need >= memo.DisplayThreshold || !sc.IsHidden {
		t.Errorf("accepted backlog should be hidden, got need %f", sc.Need)
	}
}

func TestNeedRangesAreDisjointForMandatory(t *testing.T) {
	s := NewScorer(DefaultOptions())
	r := memo.Memo{ID: "r", Type: memo.TypeRoutine, CreatedAt: at(1, 0),
		RecurrenceGoal: &memo.RecurrenceGoal{Count: 1, Period: period.Day}}
	b := memo.Memo{ID: "b", Type: memo.TypeBacklog, CreatedAt: at(1, 0)}
	for _, m := range []memo.Memo{r, b} {
		sug := s.ToSuggestion(m, s.Score(m, at(28, 0)))
		if sug.Mandatory() {
			t.Errorf("%s memo became mandatory with need %f", m.Type, sug.Need)
		}
	}
}

func TestSuggest_OrderAndDeterministicIDs(t *testing.T) {
	s := NewScorer(DefaultOptions())
	memos := []memo.Memo{
		{ID: "b", Type: memo.TypeBacklog, CreatedAt: at(1, 0), Importance: memo.ImportanceLow},
		deadlineMemo(at(1, 0), at(10, 23)),
	}
	first := s.Suggest(memos, at(10, 8))
	second := s.Suggest(memos, at(10, 8))

	if first[0].MemoID != "d1" {
		t.Errorf("highest priority: got %q, want d1", first[0].MemoID)
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("suggestion ids differ across runs: %q vs %q", first[i].ID, second[i].ID)
		}
		if first[i].ID == "" {
			t.Error("empty suggestion id")
		}
	}
}

func TestScore_DefaultImportanceIsMedium(t *testing.T) {
	s := NewScorer(DefaultOptions())
	m := memo.Memo{ID: "b", Type: memo.TypeBacklog, CreatedAt: at(1, 0)}
	if got := s.Score(m, at(2, 0)).Importance; got != memo.ImportanceMedium {
		t.Errorf("importance: got %q, want medium", got)
	}
}
