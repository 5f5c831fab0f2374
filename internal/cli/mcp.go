package cli

import (
	"github.com/spf13/cobra"

	"github.com/gapfill/gapfill/internal/mcp"
)

func newMCPCmd() *cobra.Command {
	var day string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the planner to AI assistants over MCP (stdio)",
		Long: `Run a Model Context Protocol server on stdin/stdout exposing the plan_day,
list_suggestions, add_memo, complete_memo and fit_gap tools.

Logs go to stderr so they do not corrupt the protocol stream.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			path, err := dayPath(a.Config, day)
			if err != nil {
				path = ""
			}
			return mcp.NewServer(a, path).ServeStdio(version)
		},
	}

	cmd.Flags().StringVar(&day, "day", "", "default day file for plan_day (default: data.day_file)")

	return cmd
}
