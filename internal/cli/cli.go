// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jeranaias/comply-tui/internal/api"
	"github.com/jeranaias/comply-tui/internal/config"
	"github.com/jeranaias/comply-tui/internal/export"
	"github.com/jeranaias/comply-tui/internal/logging"
	"github.com/jeranaias/comply-tui/internal/orchestrator"
)

// Version information, set by main at startup.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// =============================================================================
// GLOBAL OPTIONS
// =============================================================================

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	userID     string
	apiURL     string
	logLevel   string
	jsonOutput bool
	noColor    bool
}

// loadConfig reads .env and the config file, then applies flag overrides.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(""); err != nil {
		return nil, err
	}
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}

	if o.userID != "" {
		cfg.User.ID = o.userID
	}
	if o.apiURL != "" {
		cfg.API.BaseURL = o.apiURL
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return cfg, nil
}

// =============================================================================
// RUNTIME
// =============================================================================

// runtime is everything a command needs to talk to the backend.
type runtime struct {
	cfg    *config.Config
	log    *logrus.Logger
	closer io.Closer
	client *api.Client
}

// open builds the runtime. With logToFile the log goes to the configured
// file so full-screen output stays intact; otherwise it goes to stderr.
func (o *rootOptions) open(cmd *cobra.Command, logToFile bool) (*runtime, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}

	lc := cfg.LoggingConfig(logToFile)
	if !logToFile {
		lc.Output = cmd.ErrOrStderr()
	}
	log, closer, err := logging.New(lc)
	if err != nil {
		return nil, err
	}

	cc := cfg.ClientConfig(log)
	cc.UserAgent = "comply/" + Version
	rt := &runtime{
		cfg:    cfg,
		log:    log,
		closer: closer,
		client: api.NewClientWithConfig(cc),
	}
	log.WithFields(logrus.Fields{
		"command": cmd.CommandPath(),
		"api":     rt.client.BaseURL(),
	}).Debug("runtime ready")
	return rt, nil
}

func (rt *runtime) Close() error {
	return rt.closer.Close()
}

func (rt *runtime) identity() orchestrator.Identity {
	return orchestrator.Identity{UserID: rt.cfg.User.ID}
}

// exportOptions writes transcripts to <config dir>/exports.
func (rt *runtime) exportOptions() *export.Options {
	opts := export.DefaultOptions()
	opts.OpenAfterExport = false
	if dir, err := config.ConfigDir(); err == nil {
		opts.OutputDir = filepath.Join(dir, "exports")
	}
	return opts
}

func (rt *runtime) newOrchestrator() *orchestrator.Orchestrator {
	return orchestrator.New(rt.client, nil, orchestrator.Config{
		MinPromptLength:   rt.cfg.Generate.MinPromptLength,
		UsePromptEnhancer: rt.cfg.Generate.UsePromptEnhancer,
		Logger:            rt.log,
	})
}

// =============================================================================
// ROOT COMMAND
// =============================================================================

// NewRootCmd creates the comply command tree. Without a subcommand it
// starts the TUI.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "comply",
		Short: "Compliance-checked content generation in the terminal",
		Long: `comply generates marketing content and checks documents against the
compliance rules managed on the backend. Every result comes back with the
rules it triggered and the ones it violated.

Run without a command to open the full-screen interface.

Examples:
  comply                                  Open the TUI
  comply ask "Draft a product launch post"
  comply check brochure.pdf
  comply chat                             Line-based session
  comply rules list --all`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			configureColor(cmd.OutOrStdout(), opts.noColor)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "config file (default ~/.comply/config.toml)")
	pf.StringVar(&opts.userID, "user", "", "user ID sent with requests")
	pf.StringVar(&opts.apiURL, "api", "", "backend base URL")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.BoolVar(&opts.jsonOutput, "json", false, "print machine-readable JSON")
	pf.BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newTUICmd(opts),
		newChatCmd(opts),
		newAskCmd(opts),
		newCheckCmd(opts),
		newRewriteCmd(opts),
		newRulesCmd(opts),
		newContentCmd(opts),
		newConfigCmd(opts),
		newStatusCmd(opts),
		newVersionCmd(opts),
	)
	return root
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		jsonMode, _ := root.PersistentFlags().GetBool("json")
		DisplayError(root.ErrOrStderr(), err, jsonMode)
		return ExitCode(err)
	}
	return 0
}

// joinArgs joins positional words into one prompt.
func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
