package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gapfill/gapfill/internal/app"
	"github.com/gapfill/gapfill/internal/store"
)

// ANSI color helpers.
var (
	cReset  = "\033[0m"
	cGreen  = "\033[32m"
	cYellow = "\033[33m"
	cRed    = "\033[31m"
	cCyan   = "\033[36m"
	cBold   = "\033[1m"
	cDim    = "\033[2m"
)

func disableColors() {
	cReset, cGreen, cYellow, cRed, cCyan, cBold, cDim = "", "", "", "", "", "", ""
}

func newHistoryCmd() *cobra.Command {
	var (
		since   string
		noColor bool
	)

	cmd := &cobra.Command{
		Use:   "history [id]",
		Short: "Show accepted, rejected and completed work",
		Long: `List the activity log, newest first. With an id, show the whole history of
that task; otherwise show every task's activity within --since.

Examples:
  gapfill history
  gapfill history --since 30d
  gapfill history 3f2a`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if noColor || os.Getenv("NO_COLOR") != "" {
				disableColors()
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if len(args) == 1 {
				return memoHistory(a, args[0])
			}
			dur, err := parseDuration(since)
			if err != nil {
				return fmt.Errorf("invalid --since value %q: %w", since, err)
			}
			return recentHistory(a, a.Now().Add(-dur))
		},
	}

	cmd.Flags().StringVar(&since, "since", "7d", "how far back to look (e.g. 24h, 7d, 2h30m)")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")

	return cmd
}

func memoHistory(a *app.App, idOrPrefix string) error {
	id, err := a.Store.ResolveID(idOrPrefix)
	if err != nil {
		return err
	}
	m, err := a.Store.GetMemo(id)
	if err != nil {
		return err
	}
	acts, err := a.Store.ListActivity(id, 0)
	if err != nil {
		return err
	}

	fmt.Printf("\n%s=== %s ===%s\n", cBold, m.Title, cReset)
	fmt.Printf("  %s%s, %s, %d min spent%s\n", cDim, m.Type, m.Status.CompletionState, m.Status.TimeSpentMinutes, cReset)
	printActivity(acts, nil)
	return nil
}

func recentHistory(a *app.App, since time.Time) error {
	acts, err := a.Store.RecentActivity(since)
	if err != nil {
		return fmt.Errorf("list recent activity: %w", err)
	}

	titles := make(map[string]string)
	for _, act := range acts {
		if _, ok := titles[act.MemoID]; ok {
			continue
		}
		if m, err := a.Store.GetMemo(act.MemoID); err == nil {
			titles[act.MemoID] = m.Title
		}
	}

	fmt.Printf("\n%s=== Activity (since %s) ===%s\n", cBold, since.Format("2006-01-02 15:04"), cReset)
	printActivity(acts, titles)
	return nil
}

// printActivity prints one line per entry; titles is nil when every entry
// belongs to the same memo.
func printActivity(acts []store.Activity, titles map[string]string) {
	if len(acts) == 0 {
		fmt.Printf("  %s(none)%s\n", cDim, cReset)
		return
	}

	minutes := 0
	for _, act := range acts {
		color, mark := kindStyle(act.Kind)
		line := fmt.Sprintf("  %s[%s]%s %s%s %-8s%s",
			cDim, act.CreatedAt.Local().Format("Jan 02 15:04"), cReset, color, mark, act.Kind, cReset)
		if act.Minutes > 0 {
			line += fmt.Sprintf(" %3d min", act.Minutes)
			minutes += act.Minutes
		}
		if titles != nil {
			line += "  " + titles[act.MemoID]
		}
		fmt.Println(strings.TrimRight(line, " "))
	}
	fmt.Printf("\n  %d entr%s, %d min worked\n", len(acts), pluralY(len(acts)), minutes)
}

func kindStyle(k store.ActivityKind) (string, string) {
	switch k {
	case store.ActivityAccept:
		return cGreen, "+"
	case store.ActivityReject:
		return cRed, "-"
	case store.ActivitySession:
		return cCyan, "~"
	case store.ActivityComplete:
		return cBold + cGreen, "*"
	}
	return cYellow, "?"
}

// parseDuration extends time.ParseDuration to support "d" (day) units.
func parseDuration(s string) (time.Duration, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	if strings.HasSuffix(s, "d") {
		numStr := strings.TrimSuffix(s, "d")
		var n int
		if _, err := fmt.Sscan(numStr, &n); err != nil {
			return 0, fmt.Errorf("invalid day count %q", numStr)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return 0, fmt.Errorf("unrecognised duration format %q", s)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func pluralS(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func pluralY(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}
