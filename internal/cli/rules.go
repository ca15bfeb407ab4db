// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// rules.go - Compliance rule administration for comply CLI.
//
// Command: rules
// Short:   Manage compliance rules
//
// Subcommands:
//
//	list [--all]                       List active (or all) rules
//	add --category C --severity S TEXT Create a rule after a duplicate check
//	update ID [--text] [--category] [--severity]
//	activate ID / deactivate ID
//	extract FILE                       Create rules from a guidelines PDF
//
// Administrative actions are recorded under user.admin_id (or user.id).
package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jeranaias/comply-tui/internal/api"
	"github.com/jeranaias/comply-tui/internal/compliance"
	"github.com/jeranaias/comply-tui/internal/util"
)

// ruleTextWidth bounds the rule text column in tables.
const ruleTextWidth = 60

var validSeverities = []string{"LOW", "MEDIUM", "HIGH", "CRITICAL"}

func newRulesCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage compliance rules",
		Long:  `List, create, update, activate, deactivate and extract compliance rules.`,
	}
	cmd.AddCommand(
		newRulesListCmd(opts),
		newRulesAddCmd(opts),
		newRulesUpdateCmd(opts),
		newRulesToggleCmd(opts, true),
		newRulesToggleCmd(opts, false),
		newRulesExtractCmd(opts),
	)
	return cmd
}

func newRulesListCmd(opts *rootOptions) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List rules",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := opts.open(cmd, false)
			if err != nil {
				return err
			}
			defer rt.Close()

			rules, err := rt.client.ListRules(cmd.Context(), all)
			if err != nil {
				return &CommandError{Command: "rules", Action: "list", Err: err}
			}
			if opts.jsonOutput {
				return printJSON(cmd.OutOrStdout(), "rules list", rules)
			}
			if len(rules) == 0 {
				printInfo(cmd.OutOrStdout(), "No rules found")
				return nil
			}
			printRuleTable(cmd.OutOrStdout(), rules)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include inactive rules")
	return cmd
}

func newRulesAddCmd(opts *rootOptions) *cobra.Command {
	var category, severity string
	var force bool

	cmd := &cobra.Command{
		Use:   "add <rule text>",
		Short: "Create a rule",
		Long: `Create a rule. The text is checked against existing rules first and
the rule is not created when a duplicate is found, unless --force is set.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := joinArgs(args)
			sev, err := normalizeSeverity(severity)
			if err != nil {
				return err
			}
			if strings.TrimSpace(category) == "" {
				return &UsageError{Field: "category", Value: category, Reason: "is required", Example: "--category claims"}
			}

			rt, err := opts.open(cmd, false)
			if err != nil {
				return err
			}
			defer rt.Close()

			out := cmd.OutOrStdout()
			dup, err := rt.client.CheckDuplicate(cmd.Context(), text)
			if err != nil {
				return &CommandError{Command: "rules", Action: "check duplicate", Err: err}
			}
			if dup.IsDuplicate && !force {
				if opts.jsonOutput {
					_ = printJSON(out, "rules add", dup)
				} else {
					printWarning(out, "Similar rules already exist:")
					for _, m := range dup.Matches {
						fmt.Fprintf(out, "  %s  %.0f%% %s  %s\n", m.RuleID, m.SimilarityScore*100, m.MatchType, util.TruncateWidth(m.RuleText, ruleTextWidth))
					}
				}
				return &CommandError{Command: "rules", Action: "add", Err: fmt.Errorf("duplicate rule (use --force to add anyway)")}
			}

			rule, err := rt.client.CreateRule(cmd.Context(), api.RuleCreate{
				RuleText: text,
				Category: strings.TrimSpace(category),
				Severity: sev,
			}, rt.cfg.AdminID())
			if err != nil {
				return &CommandError{Command: "rules", Action: "add", Err: err}
			}
			if opts.jsonOutput {
				return printJSON(out, "rules add", rule)
			}
			printSuccess(out, "Created rule %s", rule.RuleID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "rule category (required)")
	cmd.Flags().StringVarP(&severity, "severity", "s", "MEDIUM", "LOW, MEDIUM, HIGH or CRITICAL")
	cmd.Flags().BoolVar(&force, "force", false, "create the rule even if duplicates exist")
	return cmd
}

func newRulesUpdateCmd(opts *rootOptions) *cobra.Command {
	var text, category, severity string

	cmd := &cobra.Command{
		Use:   "update <rule-id>",
		Short: "Update a rule (stored as a new version)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var update api.RuleUpdate
			flags := cmd.Flags()
			if flags.Changed("text") {
				update.RuleText = &text
			}
			if flags.Changed("category") {
				update.Category = &category
			}
			if flags.Changed("severity") {
				sev, err := normalizeSeverity(severity)
				if err != nil {
					return err
				}
				update.Severity = &sev
			}
			if update.RuleText == nil && update.Category == nil && update.Severity == nil {
				return &UsageError{Field: "update", Value: args[0], Reason: "nothing to change", Example: "--severity HIGH"}
			}

			rt, err := opts.open(cmd, false)
			if err != nil {
				return err
			}
			defer rt.Close()

			rule, err := rt.client.UpdateRule(cmd.Context(), args[0], update, rt.cfg.AdminID())
			if err != nil {
				return &CommandError{Command: "rules", Action: "update", Err: err}
			}
			if opts.jsonOutput {
				return printJSON(cmd.OutOrStdout(), "rules update", rule)
			}
			printSuccess(cmd.OutOrStdout(), "Updated rule %s (version %d)", rule.RuleID, rule.Version)
			return nil
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "new rule text")
	cmd.Flags().StringVarP(&category, "category", "c", "", "new category")
	cmd.Flags().StringVarP(&severity, "severity", "s", "", "new severity")
	return cmd
}

// newRulesToggleCmd builds activate (active) or deactivate.
func newRulesToggleCmd(opts *rootOptions, active bool) *cobra.Command {
	use, short := "deactivate", "Deactivate a rule"
	if active {
		use, short = "activate", "Activate a rule"
	}

	return &cobra.Command{
		Use:   use + " <rule-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := opts.open(cmd, false)
			if err != nil {
				return err
			}
			defer rt.Close()

			toggle := rt.client.DeactivateRule
			if active {
				toggle = rt.client.ActivateRule
			}
			resp, err := toggle(cmd.Context(), args[0], rt.cfg.AdminID())
			if err != nil {
				return &CommandError{Command: "rules", Action: use, Err: err}
			}
			if opts.jsonOutput {
				return printJSON(cmd.OutOrStdout(), "rules "+use, resp)
			}
			printSuccess(cmd.OutOrStdout(), "%s", resp.Message)
			return nil
		},
	}
}

func newRulesExtractCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "extract <file>",
		Short: "Create rules from a guidelines document",
		Args:  cobra.ExactArgs(1),
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

			resp, err := rt.client.ExtractRules(cmd.Context(), doc, rt.cfg.AdminID())
			if err != nil {
				return &CommandError{Command: "rules", Action: "extract", Err: err}
			}
			if opts.jsonOutput {
				return printJSON(cmd.OutOrStdout(), "rules extract", resp)
			}
			printSuccess(cmd.OutOrStdout(), "Extracted %d rules from %s", len(resp.Rules), doc.Filename)
			if len(resp.Rules) > 0 {
				printRuleTable(cmd.OutOrStdout(), resp.Rules)
			}
			return nil
		},
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func printRuleTable(out io.Writer, rules []api.Rule) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCATEGORY\tSEVERITY\tACTIVE\tVERSION\tRULE")
	for _, r := range rules {
		active := "yes"
		if !r.IsActive {
			active = "no"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			r.RuleID,
			compliance.DisplayLabel(r.Category),
			compliance.DisplayLabel(r.Severity),
			active,
			r.Version,
			util.TruncateWidth(util.CollapseSpace(r.RuleText), ruleTextWidth),
		)
	}
	_ = w.Flush()
}

func normalizeSeverity(s string) (string, error) {
	sev := compliance.DisplayLabel(s)
	for _, v := range validSeverities {
		if sev == v {
			return sev, nil
		}
	}
	return "", &UsageError{Field: "severity", Value: s, Reason: "must be one of " + strings.Join(validSeverities, ", ")}
}
