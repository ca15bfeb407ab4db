// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	goruntime "runtime"

	"github.com/spf13/cobra"
)

func newVersionCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := map[string]string{
				"version":    Version,
				"git_commit": GitCommit,
				"build_date": BuildDate,
				"go_version": goruntime.Version(),
				"platform":   goruntime.GOOS + "/" + goruntime.GOARCH,
			}
			if opts.jsonOutput {
				return printJSON(cmd.OutOrStdout(), "version", info)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "comply %s (%s, built %s) %s %s\n",
				Version, GitCommit, BuildDate, info["go_version"], info["platform"])
			return nil
		},
	}
}
