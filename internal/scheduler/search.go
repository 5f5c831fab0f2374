package scheduler

import (
	"sort"
	"strconv"
	"strings"

	"github.com/gapfill/gapfill/internal/memo"
)

// placement assigns minutes of a gap to the candidate at index cand.
type placement struct {
	cand    int
	minutes int
}

// state is an immutable partial schedule. Branches share the per-gap slices
// they do not change.
type state struct {
	gaps   [][]placement
	placed []bool
	score  float64
	key    string
}

// with returns a copy of st in which gap g holds list.
func (st *state) with(g int, list []placement) *state {
	gaps := make([][]placement, len(st.gaps))
	copy(gaps, st.gaps)
	gaps[g] = list

	placed := make([]bool, len(st.placed))
	copy(placed, st.placed)
	for _, p := range list {
		placed[p.cand] = true
	}
	return &state{gaps: gaps, placed: placed}
}

// add returns a copy of st with p appended to gap g.
func (st *state) add(g int, p placement) *state {
	list := make([]placement, len(st.gaps[g]), len(st.gaps[g])+1)
	copy(list, st.gaps[g])
	return st.with(g, append(list, p))
}

func (st *state) used(g int) int {
	n := 0
	for _, p := range st.gaps[g] {
		n += p.minutes
	}
	return n
}

// canonical identifies equivalent states regardless of placement order.
func (st *state) canonical() string {
	var b strings.Builder
	for g, list := range st.gaps {
		if g > 0 {
			b.WriteByte('|')
		}
		sorted := append([]placement(nil), list...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].cand < sorted[j].cand })
		for _, p := range sorted {
			b.WriteString(strconv.Itoa(p.cand))
			b.WriteByte(':')
			b.WriteString(strconv.Itoa(p.minutes))
			b.WriteByte(';')
		}
	}
	return b.String()
}

type search struct {
	opts   Options
	cands  []memo.Suggestion
	floors []int
	gaps   []Gap
	stats  *Stats
}

func newSearch(opts Options, cands []memo.Suggestion, gaps []Gap, stats *Stats) *search {
	floors := make([]int, len(cands))
	for i, c := range cands {
		floors[i] = c.Floor()
	}
	return &search{opts: opts, cands: cands, floors: floors, gaps: gaps, stats: stats}
}

// fits reports whether candidate c may go into gap g with avail minutes left.
func (sr *search) fits(c, g, avail int) bool {
	s := sr.cands[c]
	return s.Duration > 0 &&
		sr.floors[c] <= avail &&
		memo.Compatible(s.LocationPreference, sr.gaps[g].Location)
}

// durations lists the lengths worth trying for candidate c with avail
// minutes free, ascending. It always contains the floor, the ideal when it
// fits, and the negotiated length.
func (sr *search) durations(c, avail int) []int {
	ideal, floor := sr.cands[c].Duration, sr.floors[c]
	if ideal <= 0 || avail < floor {
		return nil
	}
	opts := []int{floor}
	if ideal <= avail {
		opts = append(opts, ideal)
	}
	if n := sr.opts.negotiate(ideal, floor, avail); n > 0 {
		opts = append(opts, n)
	}
	for _, level := range sr.opts.Levels {
		d := sr.opts.snapDown(int(level * float64(avail)))
		if d > ideal {
			d = ideal
		}
		if d >= floor {
			opts = append(opts, d)
		}
	}
	sort.Ints(opts)
	out := opts[:1]
	for _, d := range opts[1:] {
		if d != out[len(out)-1] {
			out = append(out, d)
		}
	}
	return out
}

// anchor enumerates assignments of the mandatory candidates to gaps at their
// floor durations. A candidate that fits nowhere is left out of that
// combination.
func (sr *search) anchor(mandatory []int) []*state {
	empty := &state{
		gaps:   make([][]placement, len(sr.gaps)),
		placed: make([]bool, len(sr.cands)),
	}
	if len(mandatory) == 0 {
		return []*state{empty}
	}

	remaining := make([]int, len(sr.gaps))
	for g, gap := range sr.gaps {
		remaining[g] = gap.Duration
	}
	assigned := make([]int, len(mandatory))

	var out []*state
	var rec func(i int)
	rec = func(i int) {
		if len(out) >= sr.opts.MaxCombinations {
			sr.stats.CombinationCapHit = true
			return
		}
		if i == len(mandatory) {
			out = append(out, sr.anchored(empty, mandatory, assigned))
			return
		}
		c := mandatory[i]
		fitted := false
		for g := range sr.gaps {
			if !sr.fits(c, g, remaining[g]) {
				continue
			}
			fitted = true
			assigned[i] = g
			remaining[g] -= sr.floors[c]
			rec(i + 1)
			remaining[g] += sr.floors[c]
		}
		if !fitted {
			assigned[i] = -1
			rec(i + 1)
		}
	}
	rec(0)
	sr.stats.Combinations = len(out)
	return out
}

func (sr *search) anchored(base *state, mandatory, assigned []int) *state {
	st := base
	for i, g := range assigned {
		if g < 0 {
			continue
		}
		c := mandatory[i]
		st = st.add(g, placement{cand: c, minutes: sr.floors[c]})
	}
	return st
}

// expand branches over durations for the anchors already sitting in gap g.
// Later anchors always keep room for their floors.
func (sr *search) expand(st *state, g int) []*state {
	anchors := st.gaps[g]
	if len(anchors) == 0 {
		return []*state{st}
	}
	floorsLeft := 0
	for _, p := range anchors {
		floorsLeft += sr.floors[p.cand]
	}

	budget := sr.opts.MaxBranchesPerState
	chosen := make([]placement, len(anchors))
	var out []*state
	var rec func(i, used, floorsLeft int)
	rec = func(i, used, floorsLeft int) {
		if budget <= 0 {
			sr.stats.BranchCapHit = true
			return
		}
		if i == len(anchors) {
			out = append(out, st.with(g, append([]placement(nil), chosen...)))
			budget--
			return
		}
		c := anchors[i].cand
		rest := floorsLeft - sr.floors[c]
		avail := sr.gaps[g].Duration - used - rest
		for _, d := range sr.durations(c, avail) {
			chosen[i] = placement{cand: c, minutes: d}
			rec(i+1, used+d, rest)
		}
	}
	rec(0, 0, floorsLeft)
	if len(out) == 0 {
		out = append(out, st)
	}
	return out
}

// fill adds unplaced candidates to gap g, each one with a higher index than
// the last, so every combination is generated once. Leaving the gap as it is
// is always one of the branches.
func (sr *search) fill(st *state, g, last, depth int, budget *int, out *[]*state) {
	*out = append(*out, st)
	if depth >= sr.opts.MaxFillDepth {
		return
	}
	avail := sr.gaps[g].Duration - st.used(g)
	tried := 0
	for c := last + 1; c < len(sr.cands) && tried < sr.opts.FillCandidates; c++ {
		if st.placed[c] || !sr.fits(c, g, avail) {
			continue
		}
		tried++
		for _, d := range sr.durations(c, avail) {
			if *budget <= 0 {
				sr.stats.BranchCapHit = true
				return
			}
			*budget--
			sr.fill(st.add(g, placement{cand: c, minutes: d}), g, c, depth+1, budget, out)
		}
	}
}

// prune scores states and keeps the best BeamWidth distinct ones.
func (sr *search) prune(states []*state) []*state {
	for _, st := range states {
		st.score = sr.evaluate(st)
		st.key = st.canonical()
	}
	sort.SliceStable(states, func(i, j int) bool {
		if states[i].score != states[j].score {
			return states[i].score > states[j].score
		}
		return states[i].key < states[j].key
	})
	kept := make([]*state, 0, sr.opts.BeamWidth)
	seen := make(map[string]bool, len(states))
	for _, st := range states {
		if seen[st.key] {
			continue
		}
		seen[st.key] = true
		kept = append(kept, st)
		if len(kept) == sr.opts.BeamWidth {
			break
		}
	}
	return kept
}

// run executes the whole search and returns the best final state.
func (sr *search) run() *state {
	var mandatory []int
	for i, c := range sr.cands {
		if c.Mandatory() {
			mandatory = append(mandatory, i)
		}
	}
	sr.stats.Mandatory = len(mandatory)

	beam := sr.prune(sr.anchor(mandatory))
	for g := range sr.gaps {
		var next []*state
		for _, st := range beam {
			budget := sr.opts.MaxBranchesPerState
			for _, ex := range sr.expand(st, g) {
				sr.fill(ex, g, -1, 0, &budget, &next)
			}
		}
		sr.stats.StatesExplored += len(next)
		beam = sr.prune(next)
	}
	return beam[0]
}
