package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/gapfill/gapfill/internal/app"
	"github.com/gapfill/gapfill/internal/dayfile"
	"github.com/gapfill/gapfill/internal/export"
)

type planFlags struct {
	day    string
	format string
	out    string
	hidden bool
}

func newPlanCmd() *cobra.Command {
	var f planFlags

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Schedule today's tasks into the gaps of the day file",
		Long: `Score every active task, then pick the combination that best fills the gaps
listed in the day file. Output is written to stdout unless --out is set.

Examples:
  gapfill plan
  gapfill plan --day tomorrow.toml --format markdown
  gapfill plan --format json --out plan.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(app.WithHidden(f.hidden))
			if err != nil {
				return err
			}
			defer a.Close()

			w := io.Writer(os.Stdout)
			if f.out != "" {
				file, err := os.Create(f.out)
				if err != nil {
					return fmt.Errorf("create %s: %w", f.out, err)
				}
				defer file.Close()
				w = file
			}
			return runPlan(cmd.Context(), a, f, w)
		},
	}

	cmd.Flags().StringVar(&f.day, "day", "", "day file (default: data.day_file)")
	cmd.Flags().StringVarP(&f.format, "format", "f", "",
		"output format: "+strings.Join(export.ValidFormats(), ", ")+" (default: text on a terminal, json otherwise)")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "write the plan to this file")
	cmd.Flags().BoolVar(&f.hidden, "hidden", false, "also schedule low-need tasks")

	return cmd
}

func runPlan(ctx context.Context, a *app.App, f planFlags, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	format := f.format
	if format == "" {
		format = defaultFormat(w)
	}
	exporter, ok := export.Get(strings.ToLower(format))
	if !ok {
		return fmt.Errorf("unknown format %q; valid formats: %s",
			format, strings.Join(export.ValidFormats(), ", "))
	}

	path, err := dayPath(a.Config, f.day)
	if err != nil {
		return err
	}
	day, err := dayfile.Load(path)
	if err != nil {
		return err
	}

	var bar *progressbar.ProgressBar
	progress := func(done, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetDescription("  Enriching tasks"),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionClearOnFinish(),
			)
		}
		_ = bar.Set(done)
	}

	plan, err := a.Plan(ctx, day, progress)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return fmt.Errorf("plan: %w", err)
	}

	output, err := exporter.Export(export.ExportData{Date: day.Date, Plan: plan})
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	_, err = io.WriteString(w, output)
	return err
}

// defaultFormat picks text for terminals and json for pipes and files.
func defaultFormat(w io.Writer) string {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return "text"
	}
	return "json"
}
