package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/halsteadcap/fundscribe/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Answer prompt files dropped into a directory",
	Long: `Watch monitors a directory for *.txt prompt files. Each file is dispatched
once and its answer written next to it as <name>.answer.md. Files that
already have an answer are skipped, so restarting is safe.

The directory defaults to watch.dir from configuration, then ./inbox.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dispatcher, cfg, err := buildDispatcher()
		if err != nil {
			return err
		}

		dir := "inbox"
		if cfg.Watch.Dir != "" {
			dir = cfg.Watch.Dir
		}
		if len(args) == 1 {
			dir = args[0]
		}

		w, err := watch.New(dir, dispatcher)
		if err != nil {
			return fmt.Errorf("start watcher: %w", err)
		}
		defer w.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Printf("Watching %s for *.txt prompts. Ctrl+C to stop.\n", dir)
		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}
