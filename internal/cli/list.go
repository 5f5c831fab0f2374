package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gapfill/gapfill/internal/app"
	"github.com/gapfill/gapfill/internal/memo"
)

func newListCmd() *cobra.Command {
	var all bool
	var hidden bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show today's suggestions, or every stored task with --all",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(app.WithHidden(hidden))
			if err != nil {
				return err
			}
			defer a.Close()

			if all {
				return listMemos(a)
			}
			return listSuggestions(cmd.Context(), a)
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "List every stored task, including completed ones")
	cmd.Flags().BoolVar(&hidden, "hidden", false, "Include suggestions below the display threshold")

	return cmd
}

func listSuggestions(ctx context.Context, a *app.App) error {
	if ctx == nil {
		ctx = context.Background()
	}
	sugs, sum, err := a.Suggestions(ctx)
	if err != nil {
		return err
	}
	if len(sugs) == 0 {
		fmt.Println("No suggestions right now.")
		return nil
	}

	fmt.Printf("Suggestions (%d):\n\n", len(sugs))
	for i, s := range sugs {
		marker := ""
		if s.Mandatory() {
			marker = "  [due]"
		}
		fmt.Printf("  [%2d] %-10s %-32s need %.2f  %3d min%s\n",
			i+1, "["+string(s.Type)+"]", truncate(s.Title, 32), s.Need, s.Duration, marker)
		fmt.Printf("       id: %s\n", shortID(s.MemoID))
	}
	if sum.Hidden > 0 {
		fmt.Printf("\n%d low-need task%s hidden (use --hidden).\n", sum.Hidden, pluralS(sum.Hidden))
	}
	return nil
}

func listMemos(a *app.App) error {
	memos, err := a.Store.ListMemos(true)
	if err != nil {
		return err
	}
	if len(memos) == 0 {
		fmt.Println("No tasks stored.")
		return nil
	}

	counts, err := a.Store.CountMemosByType()
	if err != nil {
		return err
	}
	fmt.Printf("Tasks (%d): %d deadline, %d routine, %d backlog active\n\n", len(memos),
		counts[memo.TypeDeadline], counts[memo.TypeRoutine], counts[memo.TypeBacklog])

	for _, m := range memos {
		state := string(m.Status.CompletionState)
		fmt.Printf("  %-8s %-10s %-32s %-12s %4d min spent\n",
			shortID(m.ID), "["+string(m.Type)+"]", truncate(m.Title, 32), state, m.Status.TimeSpentMinutes)
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
