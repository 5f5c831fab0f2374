package export

import (
	"encoding/json"

	"github.com/gapfill/gapfill/internal/engine"
	"github.com/gapfill/gapfill/internal/scheduler"
)

// JSONExporter renders the plan as structured JSON.
type JSONExporter struct{}

type jsonOutput struct {
	Date             string          `json:"date,omitempty"`
	Blocks           []jsonBlock     `json:"blocks"`
	Dropped          []jsonDropped   `json:"dropped"`
	Gaps             []scheduler.Gap `json:"gaps"`
	TotalGapMinutes  int             `json:"total_gap_minutes"`
	ScheduledMinutes int             `json:"scheduled_minutes"`
	UnusedMinutes    int             `json:"unused_minutes"`
	Degraded         bool            `json:"degraded"`
	Stats            scheduler.Stats `json:"stats"`
	Summary          engine.Summary  `json:"summary"`
}

type jsonBlock struct {
	scheduler.ScheduledBlock
	Title string  `json:"title"`
	Need  float64 `json:"need"`
}

type jsonDropped struct {
	SuggestionID string  `json:"suggestion_id"`
	MemoID       string  `json:"memo_id"`
	Title        string  `json:"title"`
	Need         float64 `json:"need"`
	Mandatory    bool    `json:"mandatory"`
}

func (e *JSONExporter) Export(data ExportData) (string, error) {
	plan := data.Plan
	if plan == nil {
		return "", errNoPlan("json")
	}

	out := jsonOutput{
		Date:             data.Date,
		Blocks:           []jsonBlock{},
		Dropped:          []jsonDropped{},
		Gaps:             plan.Gaps,
		TotalGapMinutes:  plan.Result.TotalGapMinutes,
		ScheduledMinutes: plan.Result.ScheduledMinutes,
		UnusedMinutes:    plan.Result.UnusedMinutes,
		Degraded:         plan.Result.Degraded,
		Stats:            plan.Result.Stats,
		Summary:          plan.Summary,
	}
	for _, r := range rows(plan) {
		out.Blocks = append(out.Blocks, jsonBlock{ScheduledBlock: r.block, Title: title(r.sug), Need: r.sug.Need})
	}
	for _, s := range plan.Result.Dropped {
		out.Dropped = append(out.Dropped, jsonDropped{
			SuggestionID: s.ID,
			MemoID:       s.MemoID,
			Title:        title(s),
			Need:         s.Need,
			Mandatory:    s.Mandatory(),
		})
	}
	if out.Gaps == nil {
		out.Gaps = []scheduler.Gap{}
	}

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b) + "\n", nil
}
