// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jeranaias/comply-tui/internal/api"
	"github.com/jeranaias/comply-tui/internal/export"
	"github.com/jeranaias/comply-tui/internal/model"
)

// Errors reported by handlers when the conversation has nothing to act on.
var (
	ErrNothingToRegenerate = errors.New("no response to regenerate")
	ErrNothingToRewrite    = errors.New("no analysis with violations to rewrite")
)

// =============================================================================
// COMPLIANCE HANDLERS
// =============================================================================

func handleUpload(ctx *Context, args []string) (*Result, error) {
	doc, err := api.OpenUpload(args[0])
	if err != nil {
		return nil, err
	}
	op, err := ctx.Orchestrator.SubmitDocument(ctx.Identity, doc)
	if err != nil {
		return nil, err
	}
	return &Result{Operation: op}, nil
}

func handleRegen(ctx *Context, args []string) (*Result, error) {
	index := ctx.Orchestrator.RegenerableIndex()
	if len(args) > 0 {
		index = atoi(args[0]) - 1
	}
	if index < 0 {
		return nil, ErrNothingToRegenerate
	}

	op, err := ctx.Orchestrator.Regenerate(ctx.Identity, index)
	if err != nil {
		return nil, fmt.Errorf("turn %d: %w", index+1, err)
	}
	return &Result{Operation: op}, nil
}

// handleRewrite takes "<turn> <violation>" or just "<violation>", which
// refers to the latest turn that can be rewritten.
func handleRewrite(ctx *Context, args []string) (*Result, error) {
	var turn, violation int
	if len(args) == 2 {
		turn = atoi(args[0]) - 1
		violation = atoi(args[1]) - 1
	} else {
		turn = LatestRewritable(ctx.Orchestrator.Conversation())
		violation = atoi(args[0]) - 1
		if turn < 0 {
			return nil, ErrNothingToRewrite
		}
	}

	op, err := ctx.Orchestrator.SubmitRewrite(ctx.Identity, turn, violation)
	if err != nil {
		return nil, fmt.Errorf("turn %d, violation %d: %w", turn+1, violation+1, err)
	}
	return &Result{Operation: op}, nil
}

// LatestRewritable returns the index of the latest turn with violations
// that the backend can rewrite, or -1.
func LatestRewritable(conv *model.Conversation) int {
	return conv.LastIndexOf(func(m *model.Message) bool {
		return m.Role == model.RoleSystem && m.Analysis.HasSubmission() && len(m.Violations()) > 0
	})
}

// =============================================================================
// SESSION HANDLERS
// =============================================================================

func handleEnhancer(ctx *Context, args []string) (*Result, error) {
	enabled := !ctx.Orchestrator.PromptEnhancer()
	if len(args) > 0 {
		enabled = strings.EqualFold(args[0], "on")
	}
	ctx.Orchestrator.SetPromptEnhancer(enabled)

	state := "off"
	if enabled {
		state = "on"
	}
	return &Result{Notice: "Prompt enhancer " + state}, nil
}

func handleExport(ctx *Context, args []string) (*Result, error) {
	opts := export.DefaultOptions()
	if ctx.Export != nil {
		copied := *ctx.Export
		opts = &copied
	}

	format := ""
	if len(args) > 0 {
		if _, err := export.NewExporter(args[0], opts); err == nil {
			format = args[0]
			args = args[1:]
		}
	}
	if len(args) > 0 {
		opts.OutputDir = args[0]
	}

	path, err := export.ExportConversation(ctx.Orchestrator.Conversation(), format, opts)
	if err != nil {
		return nil, err
	}
	ctx.logger().WithField("path", path).Info("conversation exported")
	return &Result{Notice: "Exported to " + path}, nil
}

func handleClear(ctx *Context, _ []string) (*Result, error) {
	if err := ctx.Orchestrator.Clear(); err != nil {
		return nil, err
	}
	return &Result{Notice: "Conversation cleared"}, nil
}

func handleHelp(_ *Context, _ []string) (*Result, error) {
	return &Result{ShowHelp: true}, nil
}

func handleQuit(_ *Context, _ []string) (*Result, error) {
	return &Result{Quit: true}, nil
}

// atoi parses an argument already checked by ValidateArgs.
func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
