// Package scoring turns memos into prioritised, duration-bounded suggestions.
package scoring

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/gapfill/gapfill/internal/memo"
)

// suggestionNamespace seeds deterministic suggestion IDs so that identical
// inputs always produce identical schedules.
var suggestionNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("gapfill:suggestion"))

// Options tunes the need and duration models.
type Options struct {
	DefaultSessionMinutes int     // floor duration when a memo has no session length
	MaxGrowthFactor       float64 // deadline ideal duration grows up to floor * factor
	SmoothingAlpha        float64 // weight of observed sessions in deadline durations (<= 0.3)
	SnapMinutes           int
}

// DefaultOptions returns the scoring defaults.
func DefaultOptions() Options {
	return Options{
		DefaultSessionMinutes: 30,
		MaxGrowthFactor:       5,
		SmoothingAlpha:        0.3,
		SnapMinutes:           5,
	}
}

// Score is the outcome of scoring one memo at one instant.
type Score struct {
	Need        float64
	Importance  memo.Importance
	Duration    int
	MinDuration int
	IsHidden    bool
}

// Scorer computes need, importance and durations per memo type.
type Scorer struct {
	opts Options
}

// NewScorer creates a Scorer. Zero-valued options fall back to defaults.
func NewScorer(opts Options) *Scorer {
	def := DefaultOptions()
	if opts.DefaultSessionMinutes <= 0 {
		opts.DefaultSessionMinutes = def.DefaultSessionMinutes
	}
	if opts.MaxGrowthFactor < 1 {
		opts.MaxGrowthFactor = def.MaxGrowthFactor
	}
	if opts.SmoothingAlpha <= 0 || opts.SmoothingAlpha > 0.3 {
		opts.SmoothingAlpha = def.SmoothingAlpha
	}
	if opts.SnapMinutes <= 0 {
		opts.SnapMinutes = def.SnapMinutes
	}
	return &Scorer{opts: opts}
}

// Score evaluates m at now. Day flags and routine periods are rolled over to
// now first, so stale state from earlier days never suppresses a score.
func (s *Scorer) Score(m memo.Memo, now time.Time) Score {
	m, _ = memo.Reset(m, now)
	importance := m.Importance
	if importance == "" {
		importance = memo.ImportanceMedium
	}

	var sc Score
	switch m.Type {
	case memo.TypeDeadline:
		sc = s.deadline(m, now)
	case memo.TypeRoutine:
		sc = s.routine(m, now)
	default:
		sc = s.backlog(m, now)
	}
	sc.Importance = importance
	sc.IsHidden = sc.Need < memo.DisplayThreshold
	return sc
}

// ToSuggestion builds the scheduling candidate for m from its score.
func (s *Scorer) ToSuggestion(m memo.Memo, sc Score) memo.Suggestion {
	return memo.Suggestion{
		ID:                 uuid.NewSHA1(suggestionNamespace, []byte(m.ID)).String(),
		MemoID:             m.ID,
		Title:              m.Title,
		Type:               m.Type,
		Need:               sc.Need,
		Importance:         sc.Importance,
		Duration:           sc.Duration,
		MinDuration:        sc.MinDuration,
		BaseDuration:       sc.MinDuration,
		LocationPreference: m.LocationPreference,
		IsHidden:           sc.IsHidden,
	}
}

// Suggest scores every memo and returns suggestions ordered by priority,
// highest first. Ties are broken by memo ID.
func (s *Scorer) Suggest(memos []memo.Memo, now time.Time) []memo.Suggestion {
	out := make([]memo.Suggestion, 0, len(memos))
	for _, m := range memos {
		out = append(out, s.ToSuggestion(m, s.Score(m, now)))
	}
	SortByPriority(out)
	return out
}

// SortByPriority orders suggestions by descending priority, then memo ID.
func SortByPriority(list []memo.Suggestion) {
	sort.SliceStable(list, func(i, j int) bool {
		pi, pj := list[i].Priority(), list[j].Priority()
		if pi != pj {
			return pi > pj
		}
		return list[i].MemoID < list[j].MemoID
	})
}

// floorMinutes is the session floor of m before remaining-time capping.
func (s *Scorer) floorMinutes(m memo.Memo) int {
	if m.SessionDuration > 0 {
		return m.SessionDuration
	}
	return s.opts.DefaultSessionMinutes
}

// capRemaining limits ideal and floor to the work left on m, keeping
// floor <= ideal.
func capRemaining(m memo.Memo, ideal, floor int) (int, int) {
	if m.TotalDurationExpected <= 0 || m.Type == memo.TypeRoutine {
		return ideal, floor
	}
	remaining := m.TotalDurationExpected - m.Status.TimeSpentMinutes
	if remaining <= 0 {
		return ideal, floor
	}
	if ideal > remaining {
		ideal = remaining
	}
	if floor > ideal {
		floor = ideal
	}
	return ideal, floor
}

func (s *Scorer) snap(minutes float64) int {
	step := float64(s.opts.SnapMinutes)
	return int(math.Round(minutes/step) * step)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
