// Package engine runs the daily planning pipeline: it filters and rolls over
// memos, optionally enriches missing fields, scores them into suggestions,
// labels gaps with locations and hands everything to the scheduler.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/gapfill/gapfill/internal/enrich"
	"github.com/gapfill/gapfill/internal/location"
	"github.com/gapfill/gapfill/internal/memo"
	"github.com/gapfill/gapfill/internal/scheduler"
	"github.com/gapfill/gapfill/internal/scoring"
)

// duplicateCeiling keeps depressed duplicates below the mandatory threshold.
const duplicateCeiling = 0.99

// Options tunes the pipeline steps that sit between scoring and scheduling.
type Options struct {
	// DuplicateFactor multiplies the need of memos accepted elsewhere.
	// Zero disables depression.
	DuplicateFactor float64
	// IncludeHidden passes suggestions below the display threshold to the
	// scheduler too.
	IncludeHidden bool
	// Enrich turns on field enrichment for memos with missing fields.
	Enrich bool
}

// Engine is safe for concurrent use as long as its enrichment service is.
type Engine struct {
	log      zerolog.Logger
	scorer   *scoring.Scorer
	sched    *scheduler.Scheduler
	enricher *enrich.Service
	opts     Options
	now      func() time.Time
}

// New creates an Engine. A nil enricher disables enrichment regardless of
// opts.Enrich.
func New(log zerolog.Logger, scorer *scoring.Scorer, sched *scheduler.Scheduler, enricher *enrich.Service, opts Options) *Engine {
	return &Engine{
		log:      log,
		scorer:   scorer,
		sched:    sched,
		enricher: enricher,
		opts:     opts,
		now:      time.Now,
	}
}

// WithClock replaces the engine's time source.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	c := *e
	c.now = now
	return &c
}

// Input is one planning request.
type Input struct {
	Memos             []memo.Memo
	Gaps              []scheduler.Gap
	Events            []location.Event
	AcceptedElsewhere []string
	// Now overrides the engine clock when set.
	Now time.Time
	// Progress, if set, is called after each memo is enriched.
	Progress func(done, total int)
}

// Summary counts what happened at each pipeline stage.
type Summary struct {
	Memos            int           `json:"memos"`
	Active           int           `json:"active"`
	RolledOver       int           `json:"rolled_over"`
	Enriched         int           `json:"enriched"`
	Fallbacks        int           `json:"fallbacks"`
	Suggestions      int           `json:"suggestions"`
	Hidden           int           `json:"hidden"`
	Depressed        int           `json:"depressed"`
	Scheduled        int           `json:"scheduled"`
	Dropped          int           `json:"dropped"`
	MandatoryDropped int           `json:"mandatory_dropped"`
	Degraded         bool          `json:"degraded"`
	Elapsed          time.Duration `json:"elapsed"`
}

// Output is the result of one pipeline run.
type Output struct {
	Now    time.Time        `json:"now"`
	Result scheduler.Result `json:"result"`
	// Suggestions are the candidates handed to the scheduler, highest
	// priority first.
	Suggestions []memo.Suggestion `json:"suggestions"`
	// Gaps are the normalized input gaps with their location labels.
	Gaps []scheduler.Gap `json:"gaps"`
	// Updated holds memos whose stored state changed during the run through
	// day rollover or enrichment. Callers persist them.
	Updated []memo.Memo `json:"-"`
	Summary Summary     `json:"summary"`
}

// Run executes the full pipeline. Only malformed gaps, events or memos
// produce an error; enrichment failures fall back to rule-based fields.
func (e *Engine) Run(ctx context.Context, in Input) (*Output, error) {
	started := time.Now()
	now := in.Now
	if now.IsZero() {
		now = e.now()
	}

	gaps, err := scheduler.NormalizeGaps(in.Gaps)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	gaps, err = labelGaps(gaps, in.Events)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	prep, err := e.prepare(ctx, in.Memos, now, in.Progress)
	if err != nil {
		return nil, err
	}
	sum := prep.summary

	suggestions := e.score(prep.memos, now, in.AcceptedElsewhere, &sum)

	res, err := e.sched.Schedule(suggestions, gaps)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	sum.Scheduled = len(res.Scheduled)
	sum.Dropped = len(res.Dropped)
	sum.MandatoryDropped = len(res.MandatoryDropped)
	sum.Degraded = res.Degraded
	sum.Elapsed = time.Since(started)

	e.report(res, sum)

	return &Output{
		Now:         now,
		Result:      res,
		Suggestions: suggestions,
		Gaps:        gaps,
		Updated:     prep.updated,
		Summary:     sum,
	}, nil
}

// Suggest runs the pipeline up to scoring and returns the visible
// suggestions (all of them with IncludeHidden), highest priority first.
func (e *Engine) Suggest(ctx context.Context, memos []memo.Memo, now time.Time) ([]memo.Suggestion, Summary, error) {
	if now.IsZero() {
		now = e.now()
	}
	prep, err := e.prepare(ctx, memos, now, nil)
	if err != nil {
		return nil, Summary{}, err
	}
	sum := prep.summary
	return e.score(prep.memos, now, nil, &sum), sum, nil
}

// EnrichCache returns the enrichment cache, or nil when enrichment is off.
func (e *Engine) EnrichCache() *enrich.Cache {
	if e.enricher == nil {
		return nil
	}
	return e.enricher.Cache()
}

// FitGap answers "what should I do with the next minutes?": it splits a
// single free window among the given suggestions.
func (e *Engine) FitGap(suggestions []memo.Suggestion, minutes int) ([]scheduler.Allocation, []memo.Suggestion, error) {
	if minutes < 0 {
		return nil, nil, fmt.Errorf("engine: %w: negative window %d", scheduler.ErrInvalidGap, minutes)
	}
	if err := scheduler.ValidateSuggestions(suggestions); err != nil {
		return nil, nil, fmt.Errorf("engine: %w", err)
	}
	allocs, dropped := scheduler.AllocateGap(suggestions, minutes, e.sched.Options())
	return allocs, dropped, nil
}

type prepared struct {
	memos   []memo.Memo
	updated []memo.Memo
	summary Summary
}

// prepare filters out completed memos, rolls the rest over to now and fills
// in missing fields.
func (e *Engine) prepare(ctx context.Context, memos []memo.Memo, now time.Time, progress func(int, int)) (prepared, error) {
	p := prepared{summary: Summary{Memos: len(memos)}}

	var pending []int
	for _, m := range memos {
		if !m.Active() {
			continue
		}
		if err := memo.Validate(m); err != nil {
			return prepared{}, fmt.Errorf("engine: %w", err)
		}
		rolled, changed := memo.Reset(m, now)
		if changed {
			p.summary.RolledOver++
		}
		if e.enriching() && enrich.Needs(rolled) {
			pending = append(pending, len(p.memos))
		} else if changed {
			p.updated = append(p.updated, rolled)
		}
		p.memos = append(p.memos, rolled)
	}
	p.summary.Active = len(p.memos)

	for i, idx := range pending {
		if err := ctx.Err(); err != nil {
			return prepared{}, fmt.Errorf("engine: enrich: %w", err)
		}
		m := p.memos[idx]
		r := e.enricher.Enrich(ctx, m, now)
		if r.Fallback {
			p.summary.Fallbacks++
			e.log.Warn().Err(r.Err).Str("memo", m.ID).Msg("enrichment fell back to rules")
		}
		m = enrich.Apply(m, r.Fields)
		p.memos[idx] = m
		p.updated = append(p.updated, m)
		p.summary.Enriched++
		if progress != nil {
			progress(i+1, len(pending))
		}
	}
	return p, nil
}

func (e *Engine) enriching() bool {
	return e.opts.Enrich && e.enricher != nil
}

// score turns prepared memos into scheduler candidates. Memos accepted
// elsewhere keep a reduced need that never reaches the mandatory threshold.
func (e *Engine) score(memos []memo.Memo, now time.Time, acceptedElsewhere []string, sum *Summary) []memo.Suggestion {
	dup := make(map[string]bool, len(acceptedElsewhere))
	for _, id := range acceptedElsewhere {
		dup[id] = true
	}

	out := make([]memo.Suggestion, 0, len(memos))
	for _, m := range memos {
		s := e.scorer.ToSuggestion(m, e.scorer.Score(m, now))
		if dup[m.ID] && e.opts.DuplicateFactor > 0 {
			s.Need = min(s.Need*e.opts.DuplicateFactor, duplicateCeiling)
			s.IsHidden = !s.Visible()
			sum.Depressed++
		}
		if s.IsHidden {
			sum.Hidden++
			if !e.opts.IncludeHidden {
				continue
			}
		}
		out = append(out, s)
	}
	scoring.SortByPriority(out)
	sum.Suggestions = len(out)
	return out
}

func (e *Engine) report(res scheduler.Result, sum Summary) {
	if res.Degraded {
		e.log.Warn().
			Bool("combination_cap", res.Stats.CombinationCapHit).
			Bool("branch_cap", res.Stats.BranchCapHit).
			Msg("schedule search hit a cap; result is best effort")
	}
	for _, s := range res.MandatoryDropped {
		e.log.Warn().
			Str("memo", s.MemoID).
			Str("title", s.Title).
			Int("min_minutes", s.Floor()).
			Msg("mandatory task could not be placed")
	}
	e.log.Info().
		Int("active", sum.Active).
		Int("suggestions", sum.Suggestions).
		Int("scheduled", sum.Scheduled).
		Int("dropped", sum.Dropped).
		Int("fallbacks", sum.Fallbacks).
		Dur("elapsed", sum.Elapsed).
		Msg("plan ready")
}

// labelGaps infers locations from events. Gaps that already carry a label
// keep it.
func labelGaps(gaps []scheduler.Gap, events []location.Event) ([]scheduler.Gap, error) {
	labelled, err := location.Enrich(gaps, events)
	if err != nil {
		return nil, err
	}
	for i, g := range gaps {
		if g.Location != memo.LocationAny {
			labelled[i].Location = g.Location
		}
	}
	return labelled, nil
}
