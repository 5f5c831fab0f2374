package scheduler

import (
	"sort"

	"github.com/gapfill/gapfill/internal/memo"
)

// Scheduler assigns suggestions to gaps. It holds no state between calls
// and is safe for concurrent use.
type Scheduler struct {
	opts Options
}

// New creates a Scheduler. Unset options take their defaults.
func New(opts Options) *Scheduler {
	return &Scheduler{opts: opts.withDefaults()}
}

// Options returns the effective options.
func (s *Scheduler) Options() Options {
	return s.opts
}

// Schedule places suggestions into gaps. Malformed gaps or suggestions are
// rejected with an error wrapping ErrInvalidGap or ErrInvalidSuggestion.
// Any valid input, including empty input, produces a result; suggestions
// that could not be placed are reported in Dropped.
func (s *Scheduler) Schedule(suggestions []memo.Suggestion, gaps []Gap) (Result, error) {
	gaps, err := NormalizeGaps(gaps)
	if err != nil {
		return Result{}, err
	}
	if err := ValidateSuggestions(suggestions); err != nil {
		return Result{}, err
	}

	res := Result{}
	for _, g := range gaps {
		res.TotalGapMinutes += g.Duration
	}

	ranked := rank(suggestions)
	limit := res.TotalGapMinutes / s.opts.MinutesPerCandidate
	// Mandatory suggestions are never capped out; MaxCombinations bounds the
	// anchor phase instead.
	mandatory := 0
	for _, sug := range ranked {
		if sug.Mandatory() {
			mandatory++
		}
	}
	if limit < mandatory {
		limit = mandatory
	}
	if limit > len(ranked) {
		limit = len(ranked)
	}
	cands, cappedOut := ranked[:limit], ranked[limit:]
	res.Stats.Candidates = len(cands)
	res.Stats.CappedOut = len(cappedOut)

	var best *state
	if len(cands) > 0 && len(gaps) > 0 {
		best = newSearch(s.opts, cands, gaps, &res.Stats).run()
	}
	s.finalize(&res, best, cands, gaps)

	for _, sug := range cappedOut {
		res.Dropped = append(res.Dropped, sug)
		if sug.Mandatory() {
			res.MandatoryDropped = append(res.MandatoryDropped, sug)
		}
	}
	res.UnusedMinutes = res.TotalGapMinutes - res.ScheduledMinutes
	res.Degraded = res.Stats.CombinationCapHit || res.Stats.BranchCapHit
	return res, nil
}

// finalize lays the best state's allocations out back to back from each
// gap's start, in candidate order, and records every unplaced candidate.
func (s *Scheduler) finalize(res *Result, best *state, cands []memo.Suggestion, gaps []Gap) {
	scheduled := make(map[int]bool)
	if best != nil {
		for g, list := range best.gaps {
			start, end, _ := gaps[g].Bounds()
			sorted := append([]placement(nil), list...)
			sort.Slice(sorted, func(i, j int) bool { return sorted[i].cand < sorted[j].cand })

			cursor := start
			for _, p := range sorted {
				stop := cursor + p.minutes
				if stop > end {
					stop = end
				}
				if stop <= cursor || stop-cursor < cands[p.cand].Floor() {
					continue
				}
				sug := cands[p.cand]
				res.Scheduled = append(res.Scheduled, ScheduledBlock{
					SuggestionID: sug.ID,
					MemoID:       sug.MemoID,
					GapID:        gaps[g].ID,
					StartTime:    FormatClock(cursor),
					EndTime:      FormatClock(stop),
					Duration:     stop - cursor,
				})
				res.ScheduledMinutes += stop - cursor
				scheduled[p.cand] = true
				cursor = stop
			}
		}
	}
	for i, sug := range cands {
		if scheduled[i] {
			continue
		}
		res.Dropped = append(res.Dropped, sug)
		if sug.Mandatory() {
			res.MandatoryDropped = append(res.MandatoryDropped, sug)
		}
	}
}

// rank orders suggestions for capping and placement: mandatory first, then
// by priority, then by memo and suggestion ID.
func rank(list []memo.Suggestion) []memo.Suggestion {
	out := append([]memo.Suggestion(nil), list...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Mandatory() != b.Mandatory() {
			return a.Mandatory()
		}
		if pa, pb := a.Priority(), b.Priority(); pa != pb {
			return pa > pb
		}
		if a.MemoID != b.MemoID {
			return a.MemoID < b.MemoID
		}
		return a.ID < b.ID
	})
	return out
}
