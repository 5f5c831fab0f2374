package scheduler

import (
	"math"

	"github.com/gapfill/gapfill/internal/memo"
)

// taskUtility is the concave value of giving minutes to s. Early minutes are
// worth more than later ones; reaching the ideal duration earns a bonus.
func (o Options) taskUtility(s memo.Suggestion, minutes int) float64 {
	ideal := s.Duration
	if ideal <= 0 || minutes <= 0 {
		return 0
	}
	u := o.Utility
	p := math.Min(s.Priority(), u.MaxPriority)
	scale := 1 + u.DurationNeedBonus*float64(ideal)/60
	v := p * (1 - math.Exp(-u.Alpha*float64(minutes)/float64(ideal))) * scale
	if minutes >= ideal {
		v += u.FinishBonus * p
	}
	return v
}

// evaluate scores a complete or partial schedule.
func (sr *search) evaluate(st *state) float64 {
	u := sr.opts.Utility
	total := 0.0
	for g, list := range st.gaps {
		used := 0
		for _, p := range list {
			total += sr.opts.taskUtility(sr.cands[p.cand], p.minutes)
			used += p.minutes
		}
		if len(list) > 1 {
			total -= u.SwitchCost * float64(len(list)-1)
		}
		if unused := sr.gaps[g].Duration - used; unused > 0 {
			total -= u.UnusedCost * float64(unused)
		}
	}
	return total
}
