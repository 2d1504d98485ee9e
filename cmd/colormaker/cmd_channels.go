package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"colormaker/cmd/colormaker/ui"
	"colormaker/internal/channel"
	"colormaker/internal/mixer"
)

// withStore opens the store, applies fn, persists, and prints the new mix.
func withStore(cmd *cobra.Command, fn func(*mixer.Store) error) (err error) {
	store, closeStore, err := openStore(commandContext(cmd))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeStore(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := fn(store); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), store.Snapshot())
	return nil
}

func runSet(cmd *cobra.Command, args []string) error {
	id, err := channel.ParseID(args[0])
	if err != nil {
		return err
	}
	return withStore(cmd, func(s *mixer.Store) error {
		if !s.Snapshot().Get(id).Enabled {
			return fmt.Errorf("%s is off", id.Title())
		}
		if err := s.SetValueText(id, args[1]); err != nil {
			if errors.Is(err, mixer.ErrInvalidInput) {
				return fmt.Errorf("%s: %w", ui.InvalidValueNotice, err)
			}
			return err
		}
		return nil
	})
}

func runEnable(cmd *cobra.Command, args []string) error {
	return setEnabled(cmd, args[0], true)
}

func runDisable(cmd *cobra.Command, args []string) error {
	return setEnabled(cmd, args[0], false)
}

func setEnabled(cmd *cobra.Command, name string, enabled bool) error {
	id, err := channel.ParseID(name)
	if err != nil {
		return err
	}
	return withStore(cmd, func(s *mixer.Store) error {
		return s.SetEnabled(id, enabled)
	})
}

func runReset(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(s *mixer.Store) error {
		s.Reset()
		return nil
	})
}

// commandContext returns the command's context, or Background when it was
// invoked directly.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
