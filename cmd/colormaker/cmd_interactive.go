package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"colormaker/cmd/colormaker/ui"
	"colormaker/internal/channel"
	"colormaker/internal/config"
	"colormaker/internal/logging"
)

// runInteractive starts the mixer UI alongside the config watcher. Quitting
// the UI stops the watcher; the last state is flushed before returning.
func runInteractive(cmd *cobra.Command, args []string) (err error) {
	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeStore(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	unsubscribe := store.Subscribe(func(s channel.ColorState) {
		logging.UIDebug("state %s", s)
	})
	defer unsubscribe()

	model := ui.NewMixerModel(store, ui.Options{
		Step:           cfg.UX.Step,
		CoarseStep:     cfg.UX.CoarseStep,
		NoticeDuration: cfg.GetNoticeDuration(),
	})

	g, gctx := errgroup.WithContext(ctx)
	uiCtx, cancelUI := context.WithCancel(gctx)
	defer cancelUI()

	g.Go(func() error {
		defer cancelUI()
		p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(uiCtx))
		if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return err
		}
		return nil
	})

	if path := resolvedConfigPath(); fileExists(path) {
		w, err := config.NewWatcher(path, config.ApplyLogging)
		if err != nil {
			logging.Get(logging.CategoryConfig).Warn("config hot reload disabled: %v", err)
		} else {
			g.Go(func() error {
				// A broken watcher must not take the UI down with it.
				if err := w.Run(uiCtx); err != nil {
					logging.Get(logging.CategoryConfig).Warn("config hot reload disabled: %v", err)
					w.Stop()
				}
				return nil
			})
		}
	}

	return g.Wait()
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
