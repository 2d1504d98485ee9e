package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"colormaker/internal/channel"
)

var showPlain bool

func runShow(cmd *cobra.Command, args []string) error {
	store, closeStore, err := openStore(commandContext(cmd))
	if err != nil {
		return err
	}
	state := store.Snapshot()
	if err := closeStore(); err != nil {
		return err
	}

	md := renderMarkdown(state)
	if showPlain {
		fmt.Fprint(cmd.OutOrStdout(), md)
		return nil
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	out, err := renderer.Render(md)
	if err != nil {
		return fmt.Errorf("failed to render: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

// renderMarkdown describes state as a markdown table.
func renderMarkdown(state channel.ColorState) string {
	var sb strings.Builder
	sb.WriteString("# Color `" + state.Hex() + "`\n\n")
	sb.WriteString("| Channel | Level | State |\n")
	sb.WriteString("|---|---|---|\n")
	for _, id := range channel.IDs {
		c := state.Get(id)
		level := channel.FormatValue(c.Value)
		status := "on"
		if !c.Enabled {
			level = channel.FormatValue(c.Backup)
			status = "off"
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n", id.Title(), level, status))
	}
	return sb.String()
}
