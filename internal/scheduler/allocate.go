package scheduler

import (
	"github.com/gapfill/gapfill/internal/memo"
)

// Allocation is one suggestion's share of a gap.
type Allocation struct {
	Suggestion memo.Suggestion `json:"suggestion"`
	Minutes    int             `json:"minutes"`
}

// AllocateGap splits a single gap of capacity minutes among competing
// suggestions. Suggestions are admitted by priority while their floors fit;
// leftover minutes then go to the mandatory, high and normal need tiers in
// turn, each tier sharing its slack in proportion to unmet want.
func AllocateGap(list []memo.Suggestion, capacity int, opts Options) ([]Allocation, []memo.Suggestion) {
	opts = opts.withDefaults()
	ranked := rank(list)

	var (
		allocs  []Allocation
		dropped []memo.Suggestion
		used    int
	)
	for _, s := range ranked {
		floor := s.Floor()
		if s.Duration <= 0 || used+floor > capacity {
			dropped = append(dropped, s)
			continue
		}
		allocs = append(allocs, Allocation{Suggestion: s, Minutes: floor})
		used += floor
	}

	tiers := []func(memo.Suggestion) bool{
		memo.Suggestion.Mandatory,
		memo.Suggestion.High,
		memo.Suggestion.Visible,
	}
	given := make([]bool, len(allocs))
	for _, inTier := range tiers {
		slack := capacity - used
		if slack <= 0 {
			break
		}
		var members []int
		totalWant := 0
		for i, a := range allocs {
			if given[i] || !inTier(a.Suggestion) {
				continue
			}
			given[i] = true
			if want := a.Suggestion.Duration - a.Minutes; want > 0 {
				members = append(members, i)
				totalWant += want
			}
		}
		if totalWant == 0 {
			continue
		}
		for _, i := range members {
			a := &allocs[i]
			want := a.Suggestion.Duration - a.Minutes
			share := want
			if slack < totalWant {
				share = slack * want / totalWant
			}
			next := a.Minutes + share
			if next < a.Suggestion.Duration {
				next = opts.snapDown(next)
			}
			if floor := a.Suggestion.Floor(); next < floor {
				next = floor
			}
			if next > a.Suggestion.Duration {
				next = a.Suggestion.Duration
			}
			if next > a.Minutes {
				used += next - a.Minutes
				a.Minutes = next
			}
		}
	}
	return allocs, dropped
}
