package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gapfill/gapfill/internal/app"
	"github.com/gapfill/gapfill/internal/memo"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the task database, day file and enrichment settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			return runStatus(a)
		},
	}
}

func runStatus(a *app.App) error {
	counts, err := a.Store.CountMemosByType()
	if err != nil {
		return err
	}
	all, err := a.Store.ListMemos(true)
	if err != nil {
		return err
	}

	dbPath, _ := a.Config.DBPath()
	var dbSize int64
	if fi, err := os.Stat(dbPath); err == nil {
		dbSize = fi.Size()
	}

	active := 0
	for _, n := range counts {
		active += n
	}

	fmt.Printf("\nTasks:    %d active", active)
	if active > 0 {
		fmt.Printf(" (%d deadline, %d routine, %d backlog)",
			counts[memo.TypeDeadline], counts[memo.TypeRoutine], counts[memo.TypeBacklog])
	}
	fmt.Println()
	fmt.Printf("Done:     %d\n", len(all)-active)

	day, err := dayPath(a.Config, "")
	if err == nil {
		if _, statErr := os.Stat(day); statErr != nil {
			day += " (missing)"
		}
		fmt.Printf("Day file: %s\n", day)
	}

	provider := a.Config.LLM.Provider
	if !a.Config.Enrichment.Enabled {
		provider += " (enrichment off)"
	}
	fmt.Printf("LLM:      %s\n", provider)
	fmt.Printf("Database: %s\n", dbPath)
	fmt.Printf("DB size:  %s\n", formatBytes(dbSize))
	fmt.Println()

	return nil
}

func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
