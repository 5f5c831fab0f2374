package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gapfill/gapfill/internal/app"
	"github.com/gapfill/gapfill/internal/store"
)

var recordKinds = map[string]store.ActivityKind{
	"accept": store.ActivityAccept,
	"reject": store.ActivityReject,
	"log":    store.ActivitySession,
	"done":   store.ActivityComplete,
}

// newRecordCmd builds one of the lifecycle commands. log and done take an
// optional minutes argument after the id.
func newRecordCmd(name, short, verb string) *cobra.Command {
	kind := recordKinds[name]
	use := name + " <id>"
	args := cobra.ExactArgs(1)
	if kind == store.ActivitySession || kind == store.ActivityComplete {
		use = name + " <id> [minutes]"
		args = cobra.RangeArgs(1, 2)
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Long: short + `. The id may be any unique part of the task id shown by
'gapfill list'.`,
		Args: args,
		RunE: func(cmd *cobra.Command, args []string) error {
			minutes := 0
			if len(args) == 2 {
				n, err := strconv.Atoi(args[1])
				if err != nil || n < 0 {
					return fmt.Errorf("minutes must be a non-negative integer, got %q", args[1])
				}
				minutes = n
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			return runRecord(a, args[0], kind, minutes, verb)
		},
	}
}

func runRecord(a *app.App, id string, kind store.ActivityKind, minutes int, verb string) error {
	m, err := a.Record(id, kind, minutes)
	if err != nil {
		return err
	}
	fmt.Printf("%s %q", capitalize(verb), m.Title)
	if minutes > 0 {
		fmt.Printf(" (+%d min, %d min total)", minutes, m.Status.TimeSpentMinutes)
	}
	fmt.Println()
	if kind != store.ActivityComplete && !m.Active() {
		fmt.Println("  Expected work reached; task completed.")
	}
	return nil
}
