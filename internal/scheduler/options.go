package scheduler

// ExtensionOptions controls growing a task past its ideal duration when a gap
// has room to spare.
type ExtensionOptions struct {
	Enabled    bool    `toml:"enabled"`
	MaxFactor  float64 `toml:"max_factor"`
	MinMinutes int     `toml:"min_minutes"`
}

// UtilityOptions weights the concave objective used to rank partial schedules.
type UtilityOptions struct {
	Alpha             float64 `toml:"alpha"`
	MaxPriority       float64 `toml:"max_priority"`
	FinishBonus       float64 `toml:"finish_bonus"`
	DurationNeedBonus float64 `toml:"duration_need_bonus"`
	SwitchCost        float64 `toml:"switch_cost"`
	UnusedCost        float64 `toml:"unused_cost"`
}

// Options bounds the search and configures duration negotiation.
type Options struct {
	SnapMinutes         int       `toml:"snap_minutes"`
	MinutesPerCandidate int       `toml:"minutes_per_candidate"`
	BeamWidth           int       `toml:"beam_width"`
	MaxCombinations     int       `toml:"max_combinations"`
	MaxFillDepth        int       `toml:"max_fill_depth"`
	FillCandidates      int       `toml:"fill_candidates"`
	MaxBranchesPerState int       `toml:"max_branches_per_state"`
	Levels              []float64 `toml:"levels"`

	Extension ExtensionOptions `toml:"extension"`
	Utility   UtilityOptions   `toml:"utility"`
}

// DefaultOptions returns the search caps and utility weights used by default.
func DefaultOptions() Options {
	return Options{
		SnapMinutes:         5,
		MinutesPerCandidate: 30,
		BeamWidth:           16,
		MaxCombinations:     64,
		MaxFillDepth:        3,
		FillCandidates:      6,
		MaxBranchesPerState: 2048,
		Levels:              []float64{0.2, 0.4, 0.6, 0.8, 1.0},
		Extension: ExtensionOptions{
			Enabled:    true,
			MaxFactor:  1.5,
			MinMinutes: 15,
		},
		Utility: UtilityOptions{
			Alpha:             2.0,
			MaxPriority:       1.4,
			FinishBonus:       0.1,
			DurationNeedBonus: 0.1,
			SwitchCost:        0.02,
			UnusedCost:        0.002,
		},
	}
}

// withDefaults replaces unset or out-of-range values with their defaults.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.SnapMinutes <= 0 {
		o.SnapMinutes = d.SnapMinutes
	}
	if o.MinutesPerCandidate <= 0 {
		o.MinutesPerCandidate = d.MinutesPerCandidate
	}
	if o.BeamWidth <= 0 {
		o.BeamWidth = d.BeamWidth
	}
	if o.MaxCombinations <= 0 {
		o.MaxCombinations = d.MaxCombinations
	}
	if o.MaxFillDepth < 0 {
		o.MaxFillDepth = d.MaxFillDepth
	}
	if o.FillCandidates <= 0 {
		o.FillCandidates = d.FillCandidates
	}
	if o.MaxBranchesPerState <= 0 {
		o.MaxBranchesPerState = d.MaxBranchesPerState
	}
	if len(o.Levels) == 0 {
		o.Levels = d.Levels
	}
	if o.Extension.MaxFactor < 1 {
		o.Extension.MaxFactor = d.Extension.MaxFactor
	}
	if o.Extension.MinMinutes < 0 {
		o.Extension.MinMinutes = d.Extension.MinMinutes
	}
	if o.Utility == (UtilityOptions{}) {
		o.Utility = d.Utility
	}
	if o.Utility.Alpha <= 0 {
		o.Utility.Alpha = d.Utility.Alpha
	}
	if o.Utility.MaxPriority <= 0 {
		o.Utility.MaxPriority = d.Utility.MaxPriority
	}
	return o
}

func (o Options) snapDown(minutes int) int {
	if minutes <= 0 {
		return 0
	}
	return minutes - minutes%o.SnapMinutes
}

// Negotiate picks a session length for a task with the given ideal duration
// and shrink floor when avail minutes are free. It returns 0 when the task
// does not fit.
func (o Options) Negotiate(ideal, floor, avail int) int {
	return o.withDefaults().negotiate(ideal, floor, avail)
}

func (o Options) negotiate(ideal, floor, avail int) int {
	if floor > ideal {
		floor = ideal
	}
	if ideal <= 0 || avail < floor {
		return 0
	}
	if avail < ideal {
		if n := o.snapDown(avail); n >= floor {
			return n
		}
		return 0
	}
	if o.Extension.Enabled && avail-ideal > o.Extension.MinMinutes {
		limit := int(float64(ideal) * o.Extension.MaxFactor)
		if limit > avail {
			limit = avail
		}
		if limit > ideal {
			return ideal + o.snapDown(limit-ideal)
		}
	}
	return ideal
}
