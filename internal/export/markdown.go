package export

import (
	"fmt"
	"strings"
)

// MarkdownExporter renders the plan as a markdown document.
type MarkdownExporter struct{}

func (e *MarkdownExporter) Export(data ExportData) (string, error) {
	plan := data.Plan
	if plan == nil {
		return "", errNoPlan("markdown")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", heading(data))

	if rs := rows(plan); len(rs) > 0 {
		b.WriteString("## Schedule\n\n")
		b.WriteString("| Time | Gap | Task | Minutes |\n")
		b.WriteString("|------|-----|------|---------|\n")
		for _, r := range rs {
			fmt.Fprintf(&b, "| %s-%s | %s | %s | %d |\n",
				r.block.StartTime, r.block.EndTime, r.block.GapID, title(r.sug), r.block.Duration)
		}
		b.WriteString("\n")
	} else {
		b.WriteString("Nothing scheduled.\n\n")
	}

	if len(plan.Result.MandatoryDropped) > 0 {
		b.WriteString("## Must do, no room\n\n")
		for _, s := range plan.Result.MandatoryDropped {
			fmt.Fprintf(&b, "- **%s** (needs %d min)\n", title(s), s.Floor())
		}
		b.WriteString("\n")
	}

	mandatory := make(map[string]bool, len(plan.Result.MandatoryDropped))
	for _, s := range plan.Result.MandatoryDropped {
		mandatory[s.ID] = true
	}
	var rest []string
	for _, s := range plan.Result.Dropped {
		if !mandatory[s.ID] {
			rest = append(rest, fmt.Sprintf("- %s (%d min)\n", title(s), s.Duration))
		}
	}
	if len(rest) > 0 {
		b.WriteString("## Not placed\n\n")
		b.WriteString(strings.Join(rest, ""))
		b.WriteString("\n")
	}

	res := plan.Result
	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "| Free | %d min |\n", res.TotalGapMinutes)
	fmt.Fprintf(&b, "| Scheduled | %d min |\n", res.ScheduledMinutes)
	fmt.Fprintf(&b, "| Unused | %d min |\n", res.UnusedMinutes)
	if plan.Summary.Fallbacks > 0 {
		fmt.Fprintf(&b, "| Enrichment fallbacks | %d |\n", plan.Summary.Fallbacks)
	}
	if res.Degraded {
		b.WriteString("\n_Search limits were reached; this plan is best effort._\n")
	}

	return b.String(), nil
}
