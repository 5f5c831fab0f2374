package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gapfill/gapfill/internal/app"
)

func newRmCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a task and its activity history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if !yes && !confirmPrompt(fmt.Sprintf("Delete task %s?", args[0])) {
				fmt.Println("Aborted.")
				return nil
			}
			return runRm(a, args[0])
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func runRm(a *app.App, id string) error {
	full, err := a.Remove(id)
	if err != nil {
		return err
	}
	fmt.Printf("Deleted task %s.\n", full)
	return nil
}

func confirmPrompt(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	line = strings.TrimSpace(strings.ToLower(line))
	return line == "y" || line == "yes"
}
