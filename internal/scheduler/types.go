// Package scheduler places suggestions into a day's free-time gaps.
//
// Placement is a bounded beam search over partial schedules: mandatory
// suggestions are anchored first at their minimum viable duration, then each
// gap in turn has its anchored durations expanded and its remaining capacity
// filled with optional suggestions. Only the best states survive each gap.
package scheduler

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gapfill/gapfill/internal/memo"
)

var (
	// ErrInvalidGap is wrapped by every gap validation failure.
	ErrInvalidGap = errors.New("invalid gap")
	// ErrInvalidSuggestion is wrapped by every suggestion validation failure.
	ErrInvalidSuggestion = errors.New("invalid suggestion")
)

// MinutesPerDay is the exclusive upper bound of a clock value, written 24:00.
const MinutesPerDay = 24 * 60

// Gap is one contiguous free-time window of the scheduling day.
type Gap struct {
	ID       string        `json:"id" toml:"id"`
	Start    string        `json:"start" toml:"start"`
	End      string        `json:"end" toml:"end"`
	Duration int           `json:"duration" toml:"duration,omitempty"`
	Location memo.Location `json:"location,omitempty" toml:"location,omitempty"`
}

// Bounds returns the gap's start and end as minutes after midnight.
func (g Gap) Bounds() (int, int, error) {
	start, err := ParseClock(g.Start)
	if err != nil {
		return 0, 0, err
	}
	end, err := ParseClock(g.End)
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// ScheduledBlock is one suggestion placed at a concrete time in a gap.
type ScheduledBlock struct {
	SuggestionID string `json:"suggestion_id"`
	MemoID       string `json:"memo_id"`
	GapID        string `json:"gap_id"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	Duration     int    `json:"duration"`
}

// Stats describes how much work the search did and whether any cap was hit.
type Stats struct {
	Candidates        int  `json:"candidates"`
	CappedOut         int  `json:"capped_out"`
	Mandatory         int  `json:"mandatory"`
	Combinations      int  `json:"combinations"`
	StatesExplored    int  `json:"states_explored"`
	CombinationCapHit bool `json:"combination_cap_hit"`
	BranchCapHit      bool `json:"branch_cap_hit"`
}

// Result is the complete output of one scheduling pass.
type Result struct {
	Scheduled        []ScheduledBlock  `json:"scheduled"`
	Dropped          []memo.Suggestion `json:"dropped"`
	MandatoryDropped []memo.Suggestion `json:"mandatory_dropped"`
	TotalGapMinutes  int               `json:"total_gap_minutes"`
	ScheduledMinutes int               `json:"scheduled_minutes"`
	UnusedMinutes    int               `json:"unused_minutes"`
	Stats            Stats             `json:"stats"`
	// Degraded is set when a search cap cut the exploration short.
	Degraded bool `json:"degraded"`
}

// ParseClock converts an HH:mm string into minutes after midnight. 24:00 is
// accepted as the end of the day.
func ParseClock(s string) (int, error) {
	hs, ms, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(ms) != 2 || len(hs) == 0 || len(hs) > 2 {
		return 0, fmt.Errorf("clock %q: want HH:mm", s)
	}
	h, err := strconv.Atoi(hs)
	if err != nil {
		return 0, fmt.Errorf("clock %q: bad hour: %w", s, err)
	}
	m, err := strconv.Atoi(ms)
	if err != nil {
		return 0, fmt.Errorf("clock %q: bad minute: %w", s, err)
	}
	if h < 0 || h > 24 || m < 0 || m > 59 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("clock %q: out of range", s)
	}
	return h*60 + m, nil
}

// FormatClock renders minutes after midnight as HH:mm.
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// NormalizeGaps validates gaps and returns copies with Duration filled in.
// A zero Duration is derived from the interval; any other value must match it.
func NormalizeGaps(gaps []Gap) ([]Gap, error) {
	out := make([]Gap, len(gaps))
	seen := make(map[string]bool, len(gaps))
	for i, g := range gaps {
		if g.ID == "" {
			return nil, fmt.Errorf("scheduler: gap %d: %w: missing id", i, ErrInvalidGap)
		}
		if seen[g.ID] {
			return nil, fmt.Errorf("scheduler: gap %s: %w: duplicate id", g.ID, ErrInvalidGap)
		}
		seen[g.ID] = true

		start, end, err := g.Bounds()
		if err != nil {
			return nil, fmt.Errorf("scheduler: gap %s: %w: %v", g.ID, ErrInvalidGap, err)
		}
		if end < start {
			return nil, fmt.Errorf("scheduler: gap %s: %w: end %s before start %s", g.ID, ErrInvalidGap, g.End, g.Start)
		}
		switch {
		case g.Duration < 0:
			return nil, fmt.Errorf("scheduler: gap %s: %w: negative duration %d", g.ID, ErrInvalidGap, g.Duration)
		case g.Duration == 0:
			g.Duration = end - start
		case g.Duration != end-start:
			return nil, fmt.Errorf("scheduler: gap %s: %w: duration %d does not match %s-%s", g.ID, ErrInvalidGap, g.Duration, g.Start, g.End)
		}
		if !memo.ValidLocation(g.Location) {
			return nil, fmt.Errorf("scheduler: gap %s: %w: unknown location %q", g.ID, ErrInvalidGap, g.Location)
		}
		out[i] = g
	}
	return out, nil
}

// ValidateGaps reports the first malformed gap, if any.
func ValidateGaps(gaps []Gap) error {
	_, err := NormalizeGaps(gaps)
	return err
}

// ValidateSuggestions checks the invariants the search relies on.
func ValidateSuggestions(list []memo.Suggestion) error {
	seen := make(map[string]bool, len(list))
	for i, s := range list {
		if s.ID == "" {
			return fmt.Errorf("scheduler: suggestion %d: %w: missing id", i, ErrInvalidSuggestion)
		}
		if seen[s.ID] {
			return fmt.Errorf("scheduler: suggestion %s: %w: duplicate id", s.ID, ErrInvalidSuggestion)
		}
		seen[s.ID] = true
		if s.Duration < 0 || s.MinDuration < 0 || s.BaseDuration < 0 {
			return fmt.Errorf("scheduler: suggestion %s: %w: negative duration", s.ID, ErrInvalidSuggestion)
		}
		if s.Duration < s.MinDuration {
			return fmt.Errorf("scheduler: suggestion %s: %w: duration %d below min duration %d",
				s.ID, ErrInvalidSuggestion, s.Duration, s.MinDuration)
		}
		if math.IsNaN(s.Need) || math.IsInf(s.Need, 0) {
			return fmt.Errorf("scheduler: suggestion %s: %w: need is not finite", s.ID, ErrInvalidSuggestion)
		}
		if !memo.ValidLocation(s.LocationPreference) {
			return fmt.Errorf("scheduler: suggestion %s: %w: unknown location %q", s.ID, ErrInvalidSuggestion, s.LocationPreference)
		}
	}
	return nil
}
