// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - One-shot generation, document check and rewrite commands.
//
// Examples:
//
//	comply ask "Draft a post announcing the new savings plan"
//	echo "Draft a post" | comply ask -
//	comply check brochure.pdf --rewrite 1
//	comply rewrite sub-0001 "Returns are guaranteed." --diff
package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/comply-tui/internal/api"
	"github.com/jeranaias/comply-tui/internal/diff"
	"github.com/jeranaias/comply-tui/internal/model"
	"github.com/jeranaias/comply-tui/internal/orchestrator"
)

// maxStdinPrompt bounds a prompt read from stdin.
const maxStdinPrompt = 1 << 20

// =============================================================================
// ASK
// =============================================================================

func newAskCmd(opts *rootOptions) *cobra.Command {
	var noEnhancer, strict bool

	cmd := &cobra.Command{
		Use:     "ask <prompt>",
		Aliases: []string{"generate"},
		Short:   "Generate content and check it against the active rules",
		Long: `Generate content from a prompt. The result is checked against the
active compliance rules and printed with the rules it triggered.

Use "-" as the prompt to read it from stdin.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt, err := readPrompt(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			rt, err := opts.open(cmd, false)
			if err != nil {
				return err
			}
			defer rt.Close()

			orch := rt.newOrchestrator()
			if noEnhancer {
				orch.SetPromptEnhancer(false)
			}
			op, err := orch.SubmitPrompt(rt.identity(), prompt)
			if err != nil {
				if errors.Is(err, orchestrator.ErrPromptTooShort) {
					return &UsageError{Field: "prompt", Value: prompt,
						Reason: fmt.Sprintf("must be at least %d characters long", rt.cfg.Generate.MinPromptLength)}
				}
				return err
			}
			return finishOperation(cmd, opts, rt, op, strict)
		},
	}

	cmd.Flags().BoolVar(&noEnhancer, "no-enhancer", false, "send the prompt without the prompt enhancer")
	cmd.Flags().BoolVar(&strict, "strict", false, "exit with status 6 when the result has violations")
	return cmd
}

// readPrompt joins args, or reads stdin when the only argument is "-".
func readPrompt(in io.Reader, args []string) (string, error) {
	if len(args) == 1 && args[0] == "-" {
		data, err := io.ReadAll(io.LimitReader(in, maxStdinPrompt))
		if err != nil {
			return "", fmt.Errorf("failed to read prompt: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	return joinArgs(args), nil
}

// =============================================================================
// CHECK
// =============================================================================

func newCheckCmd(opts *rootOptions) *cobra.Command {
	var rewrite []int
	var strict bool

	cmd := &cobra.Command{
		Use:     "check <file>",
		Aliases: []string{"upload"},
		Short:   "Check a PDF, DOCX or TXT document for violations",
		Long: `Upload a document for a compliance check and print the report.

With --rewrite N a compliant version of violation N is requested as well.
The flag can be repeated.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := api.OpenUpload(args[0])
			if err != nil {
				return &UsageError{Field: "file", Value: args[0], Reason: err.Error()}
			}

			rt, err := opts.open(cmd, false)
			if err != nil {
				return err
			}
			defer rt.Close()

			orch := rt.newOrchestrator()
			op, err := orch.SubmitDocument(rt.identity(), doc)
			if err != nil {
				return err
			}
			if err := finishOperation(cmd, opts, rt, op, false); err != nil {
				return err
			}

			report := orch.Conversation().Len() - 1
			for _, n := range rewrite {
				op, err := orch.SubmitRewrite(rt.identity(), report, n-1)
				if err != nil {
					return &UsageError{Field: "violation", Value: strconv.Itoa(n), Reason: err.Error()}
				}
				if err := finishOperation(cmd, opts, rt, op, false); err != nil {
					return err
				}
			}

			if msg, ok := orch.Conversation().At(report); ok && strict && msg.Overlay.HasViolations {
				return ErrNonCompliant
			}
			return nil
		},
	}

	cmd.Flags().IntSliceVar(&rewrite, "rewrite", nil, "rewrite violation N of the report (repeatable)")
	cmd.Flags().BoolVar(&strict, "strict", false, "exit with status 6 when the document has violations")
	return cmd
}

// =============================================================================
// REWRITE
// =============================================================================

func newRewriteCmd(opts *rootOptions) *cobra.Command {
	var showDiff bool

	cmd := &cobra.Command{
		Use:   "rewrite <submission-id> <text>",
		Short: "Propose a compliant version of a flagged passage",
		Long: `Ask the backend for a compliant rewrite of a passage from an earlier
submission. Use "-" as the text to read it from stdin.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readPrompt(cmd.InOrStdin(), args[1:])
			if err != nil {
				return err
			}
			if text == "" {
				return &UsageError{Field: "text", Value: text, Reason: "is empty"}
			}

			rt, err := opts.open(cmd, false)
			if err != nil {
				return err
			}
			defer rt.Close()

			resp, err := rt.client.RewriteContent(cmd.Context(), args[0], text)
			if err != nil {
				return &CommandError{Command: "rewrite", Err: err}
			}
			out := cmd.OutOrStdout()
			if !showDiff {
				if opts.jsonOutput {
					return printJSON(out, "rewrite", resp)
				}
				fmt.Fprintln(out, resp.CompliantText)
				return nil
			}

			changes := diff.Words(text, resp.CompliantText)
			if opts.jsonOutput {
				return printJSON(out, "rewrite", map[string]interface{}{
					"compliant_text": resp.CompliantText,
					"changes":        changes,
				})
			}
			fmt.Fprintln(out, resp.CompliantText)
			fmt.Fprintln(out)
			fmt.Fprintln(out, dimColor.Sprintf("Changes (%s):", changes.Summary()))
			fmt.Fprintln(out, changes.Render(
				func(s string) string { return removedColor.Sprint(diff.MarkDeleted(s)) },
				func(s string) string { return addedColor.Sprint(diff.MarkInserted(s)) },
			))
			return nil
		},
	}
	cmd.Flags().BoolVar(&showDiff, "diff", false, "show the word-level changes to the original text")
	return cmd
}

// =============================================================================
// SHARED
// =============================================================================

// finishOperation runs op and prints the turn it produced.
func finishOperation(cmd *cobra.Command, opts *rootOptions, rt *runtime, op *orchestrator.Operation, strict bool) error {
	out := cmd.OutOrStdout()
	if !opts.jsonOutput && isTerminal(cmd.ErrOrStderr()) {
		fmt.Fprintln(cmd.ErrOrStderr(), dimColor.Sprint(op.State().BusyLabel()))
	}

	msg := op.Run(cmd.Context())
	if msg == nil {
		return errors.New("operation did not run")
	}
	if msg.IsError {
		return &TurnError{Message: strings.TrimPrefix(msg.Content, model.ErrorPrefix), Err: op.Err()}
	}

	if opts.jsonOutput {
		if err := printJSON(out, cmd.Name(), msg); err != nil {
			return err
		}
	} else {
		// One-shot output has no follow-up commands, so no turn index.
		newTurnPrinter(out, rt.cfg.UI.Theme, rt.cfg.UI.ShowRules, opts.noColor).Print(msg, 0)
	}

	if strict && msg.Overlay.HasViolations {
		return ErrNonCompliant
	}
	return nil
}
