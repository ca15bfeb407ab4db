// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jeranaias/comply-tui/internal/ui/chat"
	"github.com/jeranaias/comply-tui/internal/ui/styles"
)

func newTUICmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the full-screen interface (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts)
		},
	}
}

// runTUI runs the Bubble Tea program. Logs go to the log file so they
// never draw over the alternate screen.
func runTUI(cmd *cobra.Command, opts *rootOptions) error {
	if !isTerminalInput(cmd.InOrStdin()) || !isTerminal(cmd.OutOrStdout()) {
		return &UsageError{Field: "terminal", Value: "stdin/stdout",
			Reason: "the TUI needs an interactive terminal", Example: "comply chat < prompts.txt"}
	}

	rt, err := opts.open(cmd, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	if _, err := rt.client.CheckRunning(cmd.Context()); err != nil {
		// The TUI still starts; every request reports the failure as a turn.
		rt.log.WithError(err).Warn("backend not reachable at startup")
	}

	m := chat.New(chat.Options{
		Orchestrator: rt.newOrchestrator(),
		Identity:     rt.identity(),
		Export:       rt.exportOptions(),
		ShowRules:    rt.cfg.UI.ShowRules,
		Subtitle:     rt.client.BaseURL(),
		Context:      cmd.Context(),
		Logger:       rt.log,
	}, styles.NewTheme(rt.cfg.UI.Theme))

	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(cmd.Context()),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	rt.log.Info("tui exited")
	return nil
}
