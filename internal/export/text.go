package export

import (
	"fmt"
	"strings"
)

// TextExporter renders a compact plain-text plan for terminals.
type TextExporter struct{}

func (e *TextExporter) Export(data ExportData) (string, error) {
	plan := data.Plan
	if plan == nil {
		return "", errNoPlan("text")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", heading(data))

	rs := rows(plan)
	if len(rs) == 0 {
		b.WriteString("  nothing scheduled\n")
	}
	for _, r := range rs {
		fmt.Fprintf(&b, "  %s-%s  %-32s %3d min  [%s]\n",
			r.block.StartTime, r.block.EndTime, title(r.sug), r.block.Duration, r.block.GapID)
	}

	for _, s := range plan.Result.MandatoryDropped {
		fmt.Fprintf(&b, "\n  ! %s is due but does not fit (needs %d min)", title(s), s.Floor())
	}
	if len(plan.Result.MandatoryDropped) > 0 {
		b.WriteString("\n")
	}

	res := plan.Result
	fmt.Fprintf(&b, "\n  %d of %d free minutes used, %d not placed\n",
		res.ScheduledMinutes, res.TotalGapMinutes, len(res.Dropped))
	if res.Degraded {
		b.WriteString("  (search limits reached; best effort)\n")
	}
	return b.String(), nil
}
