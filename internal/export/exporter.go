// Package export renders a day plan into formats for people and tools.
package export

import (
	"fmt"
	"sort"

	"github.com/gapfill/gapfill/internal/engine"
	"github.com/gapfill/gapfill/internal/memo"
	"github.com/gapfill/gapfill/internal/scheduler"
)

// ExportData is passed to every Exporter.
type ExportData struct {
	Date string
	Plan *engine.Output
}

// Exporter renders ExportData to a string in a specific format.
type Exporter interface {
	Export(data ExportData) (string, error)
}

// registry maps format names to Exporter implementations.
var registry = map[string]Exporter{
	"markdown": &MarkdownExporter{},
	"json":     &JSONExporter{},
	"text":     &TextExporter{},
}

// Get returns the Exporter registered under name, and whether it was found.
func Get(name string) (Exporter, bool) {
	e, ok := registry[name]
	return e, ok
}

// ValidFormats returns the supported export format names, sorted.
func ValidFormats() []string {
	formats := make([]string, 0, len(registry))
	for k := range registry {
		formats = append(formats, k)
	}
	sort.Strings(formats)
	return formats
}

// row is one scheduled block joined with its suggestion.
type row struct {
	block scheduler.ScheduledBlock
	sug   memo.Suggestion
}

func rows(plan *engine.Output) []row {
	if plan == nil {
		return nil
	}
	byID := make(map[string]memo.Suggestion, len(plan.Suggestions))
	for _, s := range plan.Suggestions {
		byID[s.ID] = s
	}
	out := make([]row, 0, len(plan.Result.Scheduled))
	for _, b := range plan.Result.Scheduled {
		out = append(out, row{block: b, sug: byID[b.SuggestionID]})
	}
	return out
}

// title falls back to the memo id for untitled memos.
func title(s memo.Suggestion) string {
	if s.Title != "" {
		return s.Title
	}
	return s.MemoID
}

func heading(data ExportData) string {
	if data.Date != "" {
		return "Plan for " + data.Date
	}
	if data.Plan != nil && !data.Plan.Now.IsZero() {
		return "Plan for " + data.Plan.Now.Format("2006-01-02")
	}
	return "Plan"
}

func errNoPlan(format string) error {
	return fmt.Errorf("export %s: no plan to render", format)
}
