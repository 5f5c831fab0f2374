package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gapfill/gapfill/internal/app"
)

func newFitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fit <minutes>",
		Short: "Split a free block of time among the most needed tasks",
		Long: `Answer "I have N minutes right now, what should I do?" without a day file.
Tasks are admitted by priority and the leftover time goes to the neediest.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			minutes, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("minutes must be an integer, got %q", args[0])
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			return runFit(cmd.Context(), a, minutes)
		},
	}
}

func runFit(ctx context.Context, a *app.App, minutes int) error {
	if ctx == nil {
		ctx = context.Background()
	}
	allocs, dropped, err := a.FitGap(ctx, minutes)
	if err != nil {
		return err
	}
	if len(allocs) == 0 {
		fmt.Printf("Nothing fits in %d minutes.\n", minutes)
		return nil
	}

	fmt.Printf("In the next %d minutes:\n", minutes)
	used := 0
	for _, al := range allocs {
		fmt.Printf("  %3d min  %s\n", al.Minutes, al.Suggestion.Title)
		used += al.Minutes
	}
	if free := minutes - used; free > 0 {
		fmt.Printf("  %3d min  free\n", free)
	}
	if len(dropped) > 0 {
		fmt.Printf("%d more task%s did not fit.\n", len(dropped), pluralS(len(dropped)))
	}
	return nil
}
