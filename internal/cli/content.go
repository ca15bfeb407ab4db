// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// content.go - Review of generated and checked submissions.
//
// Command: content
// Short:   Review submissions
//
// Subcommands:
//
//	list [--limit N] [--offset N]   List submissions, newest first
//	show ID                         Show one submission with its rules
//	approve ID [--notes TEXT]
//	reject ID [--notes TEXT]
package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeranaias/comply-tui/internal/api"
	"github.com/jeranaias/comply-tui/internal/compliance"
	"github.com/jeranaias/comply-tui/internal/model"
)

const defaultContentLimit = 20

func newContentCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "content",
		Aliases: []string{"submissions"},
		Short:   "Review generated and checked content",
	}
	cmd.AddCommand(
		newContentListCmd(opts),
		newContentShowCmd(opts),
		newContentReviewCmd(opts, api.ApprovalApproved),
		newContentReviewCmd(opts, api.ApprovalRejected),
	)
	return cmd
}

func newContentListCmd(opts *rootOptions) *cobra.Command {
	var limit, offset int
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List submissions, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 1 {
				return &UsageError{Field: "limit", Value: fmt.Sprint(limit), Reason: "must be positive"}
			}
			if offset < 0 {
				return &UsageError{Field: "offset", Value: fmt.Sprint(offset), Reason: "must not be negative"}
			}

			rt, err := opts.open(cmd, false)
			if err != nil {
				return err
			}
			defer rt.Close()

			subs, err := rt.client.ListContent(cmd.Context(), limit, offset)
			if err != nil {
				return &CommandError{Command: "content", Action: "list", Err: err}
			}
			out := cmd.OutOrStdout()
			if opts.jsonOutput {
				return printJSON(out, "content list", subs)
			}
			if len(subs) == 0 {
				printInfo(out, "No submissions found")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTYPE\tSTATUS\tREVIEW\tCREATED")
			for _, s := range subs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					s.SubmissionID,
					s.InputType,
					compliance.DisplayLabel(string(s.ComplianceStatus)),
					reviewLabel(s.ApprovalStatus),
					formatTime(s.CreatedAt),
				)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", defaultContentLimit, "maximum number of submissions")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of submissions to skip")
	return cmd
}

func newContentShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <submission-id>",
		Short: "Show a submission with the rules it triggered",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := opts.open(cmd, false)
			if err != nil {
				return err
			}
			defer rt.Close()

			sub, err := rt.client.GetContent(cmd.Context(), args[0])
			if err != nil {
				return &CommandError{Command: "content", Action: "show", Err: err}
			}
			out := cmd.OutOrStdout()
			if opts.jsonOutput {
				return printJSON(out, "content show", sub)
			}

			fmt.Fprintf(out, "Submission %s\n", sub.SubmissionID)
			fmt.Fprintln(out, dimColor.Sprintf("%s by %s on %s, review: %s",
				sub.InputType, sub.UserID, formatTime(sub.CreatedAt), reviewLabel(sub.ApprovalStatus)))
			if sub.InputReference != "" {
				fmt.Fprintln(out, dimColor.Sprintf("Input: %s", sub.InputReference))
			}
			fmt.Fprintln(out)

			msg := model.NewResultMessage(model.KindResult, sub.FinalContent, &compliance.AnalysisResult{
				ComplianceStatus: sub.ComplianceStatus,
				RulesTriggered:   sub.RulesTriggered,
				SubmissionID:     sub.SubmissionID,
			})
			newTurnPrinter(out, rt.cfg.UI.Theme, true, opts.noColor).Print(msg, 0)
			return nil
		},
	}
}

// newContentReviewCmd builds approve or reject.
func newContentReviewCmd(opts *rootOptions, status string) *cobra.Command {
	var notes string
	use := "approve"
	if status == api.ApprovalRejected {
		use = "reject"
	}

	cmd := &cobra.Command{
		Use:   use + " <submission-id>",
		Short: strings.ToUpper(use[:1]) + use[1:] + " a submission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := opts.open(cmd, false)
			if err != nil {
				return err
			}
			defer rt.Close()

			var notesPtr *string
			if cmd.Flags().Changed("notes") {
				notesPtr = &notes
			}
			review := rt.client.ApproveContent
			if status == api.ApprovalRejected {
				review = rt.client.RejectContent
			}
			resp, err := review(cmd.Context(), args[0], rt.cfg.AdminID(), notesPtr)
			if err != nil {
				return &CommandError{Command: "content", Action: use, Err: err}
			}
			if opts.jsonOutput {
				return printJSON(cmd.OutOrStdout(), "content "+use, resp)
			}
			printSuccess(cmd.OutOrStdout(), "%s", resp.Message)
			return nil
		},
	}
	cmd.Flags().StringVarP(&notes, "notes", "n", "", "review notes")
	return cmd
}

func reviewLabel(status *string) string {
	if status == nil || *status == "" {
		return "pending"
	}
	return *status
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
