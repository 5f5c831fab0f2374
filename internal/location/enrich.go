// Package location labels gaps with where the user is likely to be, based on
// the day's timetable and calendar events.
package location

import (
	"fmt"
	"math"

	"github.com/gapfill/gapfill/internal/memo"
	"github.com/gapfill/gapfill/internal/scheduler"
)

// Source says where an event came from.
type Source string

const (
	SourceTimetable Source = "timetable"
	SourceCalendar  Source = "calendar"
)

// Event is a fixed commitment that hints at the user's location.
type Event struct {
	Start  string `json:"start" toml:"start"`
	End    string `json:"end" toml:"end"`
	Source Source `json:"source" toml:"source"`
	Title  string `json:"title,omitempty" toml:"title,omitempty"`
}

// span is a labelled interval; duration is +Inf for the all-day home span.
type span struct {
	start, end int
	duration   float64
	label      memo.Location
}

// buildSpans merges events into at most three location spans, in tie-break order:
// workplace (timetable), other (calendar), then the all-day home span.
func buildSpans(events []Event) ([]span, error) {
	type bounds struct {
		start, end int
		seen       bool
	}
	var work, other bounds
	for i, ev := range events {
		start, err := scheduler.ParseClock(ev.Start)
		if err != nil {
			return nil, fmt.Errorf("location: event %d: %w", i, err)
		}
		end, err := scheduler.ParseClock(ev.End)
		if err != nil {
			return nil, fmt.Errorf("location: event %d: %w", i, err)
		}
		if end < start {
			return nil, fmt.Errorf("location: event %d: end %s before start %s", i, ev.End, ev.Start)
		}

		var b *bounds
		switch ev.Source {
		case SourceTimetable:
			b = &work
		case SourceCalendar:
			b = &other
		default:
			return nil, fmt.Errorf("location: event %d: unknown source %q", i, ev.Source)
		}
		if !b.seen {
			*b = bounds{start: start, end: end, seen: true}
			continue
		}
		b.start = min(b.start, start)
		b.end = max(b.end, end)
	}

	var spans []span
	if work.seen {
		spans = append(spans, span{work.start, work.end, float64(work.end - work.start), memo.LocationWorkplace})
	}
	if other.seen {
		spans = append(spans, span{other.start, other.end, float64(other.end - other.start), memo.LocationOther})
	}
	spans = append(spans, span{0, scheduler.MinutesPerDay, math.Inf(1), memo.LocationHome})
	return spans, nil
}

// Enrich returns a copy of gaps with Location set from the shortest span that
// strictly overlaps each gap. Equal-length spans resolve in the order
// workplace, other, home, so a gap no named span touches is labelled home.
// Any existing label is overwritten.
func Enrich(gaps []scheduler.Gap, events []Event) ([]scheduler.Gap, error) {
	spans, err := buildSpans(events)
	if err != nil {
		return nil, err
	}
	out := make([]scheduler.Gap, len(gaps))
	for i, g := range gaps {
		start, end, err := g.Bounds()
		if err != nil {
			return nil, fmt.Errorf("location: gap %s: %w", g.ID, err)
		}
		g.Location = memo.LocationHome
		best := math.Inf(1)
		found := false
		for _, s := range spans {
			if start < s.end && s.start < end && (!found || s.duration < best) {
				best = s.duration
				g.Location = s.label
				found = true
			}
		}
		out[i] = g
	}
	return out, nil
}
