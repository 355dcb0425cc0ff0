package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"pictag/internal/errors"
	"pictag/internal/log"
	"pictag/internal/tui"
	"pictag/internal/watch"
)

// NewTUICmd creates the tui command
func NewTUICmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Start the terminal user interface",
		Long:  `Browse the directory's images, open them in the viewer and tag them with hotkeys. The image list follows changes on disk while the UI runs.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts)
		},
	}
	return cmd
}

func runTUI(cmd *cobra.Command, opts *rootOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := opts.openApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	watcher, err := watch.New(a.dir, watch.WithFilter(a.scanner.IsImage))
	if err != nil {
		return err
	}
	syncer := watch.NewSyncer(watcher, a.scanner, a.session)
	syncer.SetCallback(func(event watch.FileEvent, err error) {
		if err != nil {
			log.LogWithError(err).With(log.F("path", event.Path)).Warn("Failed to apply file change")
		}
	})
	if err := syncer.Start(ctx); err != nil {
		log.LogWithError(err).Warn("Watching the directory failed, changes on disk will not show up")
	} else {
		defer syncer.Stop()
	}

	if err := tui.Run(ctx, a.session, opts.cfg.Theme); err != nil {
		return errors.Wrap(err, "error running TUI")
	}
	return nil
}
