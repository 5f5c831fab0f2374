package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/gapfill/gapfill/internal/app"
)

func newWatchCmd() *cobra.Command {
	var (
		debounceMs int
		f          planFlags
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-plan whenever the day file changes",
		Long: `Start a long-running watcher on the day file. Each time it is saved the plan
is rebuilt and printed.

Changes are debounced so that editors which write a file in several steps
trigger a single re-plan.

Press Ctrl-C to stop.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(app.WithHidden(f.hidden))
			if err != nil {
				return err
			}
			defer a.Close()

			path, err := dayPath(a.Config, f.day)
			if err != nil {
				return err
			}
			path, _ = filepath.Abs(path)
			f.day = path
			if f.format == "" {
				f.format = "text"
			}

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return fmt.Errorf("create watcher: %w", err)
			}
			defer watcher.Close()

			// Watch the directory: editors often replace the file by renaming.
			if err := watcher.Add(filepath.Dir(path)); err != nil {
				return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
			}

			debounce := time.Duration(debounceMs) * time.Millisecond
			fmt.Printf("Watching %s (debounce %s). Press Ctrl-C to stop.\n", path, debounce)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			replan(ctx, a, f)

			timer := time.NewTimer(debounce)
			timer.Stop()
			pending := false

			for {
				select {
				case <-sigCh:
					fmt.Println("\nStopping watcher.")
					return nil

				case event, ok := <-watcher.Events:
					if !ok {
						return nil
					}
					if !isDayFileEvent(event, path) {
						continue
					}
					pending = true
					timer.Reset(debounce)

				case err, ok := <-watcher.Errors:
					if !ok {
						return nil
					}
					fmt.Fprintf(os.Stderr, "  watch error: %v\n", err)

				case <-timer.C:
					if !pending {
						continue
					}
					pending = false
					replan(ctx, a, f)

				case <-ctx.Done():
					return nil
				}
			}
		},
	}

	cmd.Flags().IntVar(&debounceMs, "debounce", 300, "debounce interval in milliseconds")
	cmd.Flags().StringVar(&f.day, "day", "", "day file (default: data.day_file)")
	cmd.Flags().StringVarP(&f.format, "format", "f", "text", "output format")
	cmd.Flags().BoolVar(&f.hidden, "hidden", false, "also schedule low-need tasks")

	return cmd
}

// isDayFileEvent reports whether event writes or recreates the file at path.
func isDayFileEvent(event fsnotify.Event, path string) bool {
	if filepath.Clean(event.Name) != filepath.Clean(path) {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}

// replan prints a fresh plan; errors are reported and the watch continues so
// a half-edited day file does not stop it.
func replan(ctx context.Context, a *app.App, f planFlags) {
	fmt.Printf("\n[%s]\n", time.Now().Format("15:04:05"))
	if err := runPlan(ctx, a, f, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "  %v\n", err)
	}
}
