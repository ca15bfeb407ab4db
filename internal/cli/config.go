// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - Config command implementation for comply.
//
// Command: config [subcommand]
// Short:   View and modify configuration
//
// Subcommands:
//
//	show (default)      Display the effective configuration
//	get <key>           Print one value
//	set <key> <value>   Set a value in the config file
//	keys                List the configuration keys
//	path                Show the configuration file path
//	reset               Write the default configuration
//
// "show" and "get" report the effective values, after COMPLY_* environment
// variables and flags. "set" and "reset" only touch the file.
package cli

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jeranaias/comply-tui/internal/config"
)

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View and modify configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd, opts)
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Display the effective configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runConfigShow(cmd, opts)
			},
		},
		&cobra.Command{
			Use:   "get <key>",
			Short: "Print one configuration value",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := opts.loadConfig()
				if err != nil {
					return err
				}
				v, err := cfg.Get(args[0])
				if err != nil {
					return &UsageError{Field: "key", Value: args[0], Reason: err.Error(), Example: "api.base_url"}
				}
				if opts.jsonOutput {
					return printJSON(cmd.OutOrStdout(), "config get", map[string]interface{}{args[0]: v})
				}
				fmt.Fprintln(cmd.OutOrStdout(), v)
				return nil
			},
		},
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Set a value in the configuration file",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runConfigSet(cmd, opts, args[0], args[1])
			},
		},
		&cobra.Command{
			Use:   "keys",
			Short: "List the configuration keys",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if opts.jsonOutput {
					return printJSON(cmd.OutOrStdout(), "config keys", config.GetAllKeys())
				}
				for _, k := range config.GetAllKeys() {
					fmt.Fprintln(cmd.OutOrStdout(), k)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Show the configuration file path",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				path, err := opts.configFile()
				if err != nil {
					return err
				}
				_, statErr := os.Stat(path)
				if opts.jsonOutput {
					return printJSON(cmd.OutOrStdout(), "config path", map[string]interface{}{
						"path":   path,
						"exists": statErr == nil,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				if statErr != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), dimColor.Sprint("(not created yet, defaults are in use)"))
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Write the default configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				path, err := opts.configFile()
				if err != nil {
					return err
				}
				if err := config.Save(config.Default(), path); err != nil {
					return err
				}
				printSuccess(cmd.OutOrStdout(), "Configuration reset: %s", path)
				return nil
			},
		},
	)
	return cmd
}

// configFile returns the file that set and reset write to.
func (o *rootOptions) configFile() (string, error) {
	if o.configPath != "" {
		return o.configPath, nil
	}
	return config.ConfigPath()
}

func runConfigShow(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if opts.jsonOutput {
		return printJSON(out, "config show", cfg)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, k := range config.GetAllKeys() {
		v, err := cfg.Get(k)
		if err != nil {
			continue
		}
		if s, ok := v.(string); ok && s == "" {
			v = "-"
		}
		fmt.Fprintf(w, "%s\t%v\n", k, v)
	}
	return w.Flush()
}

// runConfigSet updates the file without the environment overrides, so
// they are never persisted by accident.
func runConfigSet(cmd *cobra.Command, opts *rootOptions, key, value string) error {
	path, err := opts.configFile()
	if err != nil {
		return err
	}

	cfg := config.Default()
	if _, statErr := os.Stat(path); statErr == nil {
		if cfg, err = config.LoadFromPath(path); err != nil {
			return err
		}
	}

	if err := cfg.Set(key, value); err != nil {
		return &UsageError{Field: "key", Value: key, Reason: err.Error()}
	}
	if err := cfg.Validate(); err != nil {
		var verrs config.ValidateErrors
		if errors.As(err, &verrs) {
			return &UsageError{Field: key, Value: value, Reason: verrs.Error()}
		}
		return err
	}
	if err := config.Save(cfg, path); err != nil {
		return err
	}
	printSuccess(cmd.OutOrStdout(), "Set %s = %s", key, value)
	return nil
}
