package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gapfill/gapfill/internal/app"
	"github.com/gapfill/gapfill/internal/memo"
)

func newAddCmd() *cobra.Command {
	var d memo.Draft

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a deadline task, routine or backlog item",
		Long: `Add a task. The type is inferred when --type is not set: a deadline makes a
deadline task, --count or --period makes a routine, anything else goes to
the backlog. Missing importance and durations are filled in at plan time.

Examples:
  gapfill add "Physics essay" --deadline 2026-03-14 --total 240
  gapfill add "Run" --count 3 --period week --session 40 --location home
  gapfill add "Sort the garage"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d.Title = strings.Join(args, " ")

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			return runAdd(a, d)
		},
	}

	cmd.Flags().StringVarP(&d.Type, "type", "t", "", "Task type: deadline, routine, backlog (inferred if not set)")
	cmd.Flags().StringVarP(&d.Deadline, "deadline", "d", "", `Due time: "2006-01-02", "2006-01-02 15:04" or RFC 3339`)
	cmd.Flags().StringVarP(&d.Importance, "importance", "i", "", "low, medium or high")
	cmd.Flags().StringVarP(&d.Location, "location", "l", "", "Preferred location: home, workplace or other")
	cmd.Flags().IntVar(&d.Session, "session", 0, "Preferred session length in minutes")
	cmd.Flags().IntVar(&d.Total, "total", 0, "Expected total minutes of work")
	cmd.Flags().IntVar(&d.Count, "count", 0, "Routine: completions per period")
	cmd.Flags().StringVar(&d.Period, "period", "", "Routine period: day, week or month")

	return cmd
}

func runAdd(a *app.App, d memo.Draft) error {
	m, err := a.Add(d)
	if err != nil {
		return fmt.Errorf("add task: %w", err)
	}
	fmt.Printf("Added %s task %q\n", m.Type, m.Title)
	if m.Deadline != nil {
		fmt.Printf("  due: %s\n", m.Deadline.Format("Mon 2 Jan 15:04"))
	}
	fmt.Printf("  id: %s\n", m.ID)
	return nil
}
