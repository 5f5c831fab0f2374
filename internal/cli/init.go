package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/gapfill/gapfill/internal/config"
	"github.com/gapfill/gapfill/internal/dayfile"
)

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the config, the task database and a sample day file",
		Long: `Write a default config (unless one exists), create the SQLite task
database in the data directory, and write a sample day file describing
today's gaps and fixed events.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath
			if path == "" {
				p, err := config.Path()
				if err != nil {
					return err
				}
				path = p
			}

			if _, err := os.Stat(path); os.IsNotExist(err) || force {
				if err := config.Save(path, config.Default()); err != nil {
					return fmt.Errorf("write config: %w", err)
				}
				fmt.Printf("Config written to %s\n", path)
			} else {
				fmt.Printf("Using existing config %s\n", path)
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			dbPath, _ := a.Config.DBPath()
			fmt.Printf("Task database at %s\n", dbPath)

			day, err := dayPath(a.Config, "")
			if err != nil {
				return err
			}
			if _, err := os.Stat(day); os.IsNotExist(err) || force {
				if err := dayfile.Save(day, dayfile.Sample(time.Now())); err != nil {
					return fmt.Errorf("write day file: %w", err)
				}
				fmt.Printf("Sample day file written to %s\n", day)
			}

			fmt.Println()
			fmt.Println("gapfill initialized.")
			fmt.Println(`Tip: Run "gapfill setup" to enable LLM enrichment, then "gapfill add" to add tasks.`)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config and day file")

	return cmd
}
