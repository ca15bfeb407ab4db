// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - Backend health and effective settings.
//
// Command: status
// Short:   Check that the backend is reachable
package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

// statusReport is the --json form of the status command.
type statusReport struct {
	API       string `json:"api"`
	UserID    string `json:"user_id"`
	Reachable bool   `json:"reachable"`
	Status    string `json:"status,omitempty"`
	Database  string `json:"database,omitempty"`
	LLM       string `json:"llm_provider,omitempty"`
	VectorDB  string `json:"vector_db,omitempty"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Aliases: []string{"health"},
		Short:   "Check that the backend is reachable",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := opts.open(cmd, false)
			if err != nil {
				return err
			}
			defer rt.Close()

			report := statusReport{API: rt.client.BaseURL(), UserID: rt.cfg.User.ID}
			start := time.Now()
			health, healthErr := rt.client.CheckRunning(cmd.Context())
			report.LatencyMS = time.Since(start).Milliseconds()
			if healthErr != nil {
				report.Error = healthErr.Error()
			} else {
				report.Reachable = true
				report.Status = health.Status
				report.Database = health.Database
				report.LLM = health.LLMProvider
				report.VectorDB = health.VectorDB
			}

			out := cmd.OutOrStdout()
			if opts.jsonOutput {
				if err := printJSON(out, "status", report); err != nil {
					return err
				}
				return healthErr
			}

			if healthErr != nil {
				return healthErr
			}
			printSuccess(out, "Backend %s is %s (%d ms)", report.API, report.Status, report.LatencyMS)
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			for _, row := range [][2]string{
				{"database", report.Database},
				{"llm provider", report.LLM},
				{"vector db", report.VectorDB},
				{"user", report.UserID},
			} {
				if row[1] != "" {
					fmt.Fprintf(w, "  %s\t%s\n", row[0], row[1])
				}
			}
			return w.Flush()
		},
	}
}
