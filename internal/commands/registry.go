// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/jeranaias/comply-tui/internal/export"
	"github.com/jeranaias/comply-tui/internal/logging"
	"github.com/jeranaias/comply-tui/internal/orchestrator"
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// Command represents a slash command that can be executed.
type Command struct {
	// Name is the primary command name (e.g., "/help")
	Name string

	// Aliases are alternative names (e.g., "/h", "/?")
	Aliases []string

	// Description is shown in help and completion
	Description string

	// Usage shows argument syntax (e.g., "/upload <path>")
	Usage string

	// Args defines the expected arguments
	Args []ArgDef

	// Handler executes the command. Arguments are validated first.
	Handler func(ctx *Context, args []string) (*Result, error)

	// Hidden commands don't appear in help
	Hidden bool

	// Category for grouping in help display
	Category string
}

// ArgDef defines an argument for a command.
type ArgDef struct {
	Name        string
	Required    bool
	Type        ArgType
	Description string

	// Values for enum types
	Values []string
}

// ArgType indicates what kind of value an argument takes.
type ArgType int

const (
	ArgTypeString ArgType = iota // Free-form string
	ArgTypeNumber                // Positive integer, e.g. a turn number
	ArgTypeFile                  // File path
	ArgTypeEnum                  // One of predefined values
)

// =============================================================================
// EXECUTION CONTEXT
// =============================================================================

// Context carries what handlers act on.
type Context struct {
	Orchestrator *orchestrator.Orchestrator
	Identity     orchestrator.Identity

	// Export configures /export. Nil uses export.DefaultOptions.
	Export *export.Options

	Log logrus.FieldLogger
}

func (c *Context) logger() logrus.FieldLogger {
	if c.Log == nil {
		return logging.Nop()
	}
	return c.Log
}

// Result is what a command asks the front end to do next.
type Result struct {
	// Operation is a started request. The caller must Run it.
	Operation *orchestrator.Operation

	// Notice is a short status line for the user.
	Notice string

	ShowHelp bool
	Quit     bool
}

// ErrUnknownCommand is returned for input that names no registered command.
var ErrUnknownCommand = errors.New("unknown command")

// =============================================================================
// COMMAND REGISTRY
// =============================================================================

// Registry holds all registered commands.
type Registry struct {
	commands map[string]*Command
	aliases  map[string]*Command
	order    []string
}

// NewRegistry creates a new command registry with all built-in commands.
func NewRegistry() *Registry {
	r := &Registry{
		commands: make(map[string]*Command),
		aliases:  make(map[string]*Command),
	}
	r.registerBuiltins()
	return r
}

// Register adds a command to the registry. Registering a name again
// replaces the earlier command in place: it keeps its position in All, but
// description, category, aliases and handler all come from cmd.
func (r *Registry) Register(cmd *Command) {
	if old, exists := r.commands[cmd.Name]; exists {
		for _, alias := range old.Aliases {
			if r.aliases[alias] == old {
				delete(r.aliases, alias)
			}
		}
	} else {
		r.order = append(r.order, cmd.Name)
	}
	r.commands[cmd.Name] = cmd
	for _, alias := range cmd.Aliases {
		r.aliases[alias] = cmd
	}
}

// Get retrieves a command by name or alias.
func (r *Registry) Get(name string) *Command {
	if cmd, ok := r.commands[name]; ok {
		return cmd
	}
	if cmd, ok := r.aliases[name]; ok {
		return cmd
	}
	return nil
}

// All returns all registered commands in registration order.
func (r *Registry) All() []*Command {
	cmds := make([]*Command, 0, len(r.order))
	for _, name := range r.order {
		cmds = append(cmds, r.commands[name])
	}
	return cmds
}

// Visible returns the commands shown in help, in registration order.
func (r *Registry) Visible() []*Command {
	var cmds []*Command
	for _, cmd := range r.All() {
		if !cmd.Hidden {
			cmds = append(cmds, cmd)
		}
	}
	return cmds
}

// ByCategory returns commands grouped by category.
func (r *Registry) ByCategory() map[string][]*Command {
	result := make(map[string][]*Command)
	for _, cmd := range r.Visible() {
		category := cmd.Category
		if category == "" {
			category = "General"
		}
		result[category] = append(result[category], cmd)
	}
	return result
}

// =============================================================================
// EXECUTION
// =============================================================================

// Execute runs one line of user input. Slash commands go to their handler;
// anything else is submitted as a prompt.
func (r *Registry) Execute(ctx *Context, input string) (*Result, error) {
	parsed := NewParser(r).Parse(input)
	if !parsed.IsCommand {
		op, err := ctx.Orchestrator.SubmitPrompt(ctx.Identity, parsed.RawInput)
		if err != nil {
			return nil, err
		}
		return &Result{Operation: op}, nil
	}

	if parsed.Command == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, parsed.CommandName)
	}
	if err := ValidateArgs(parsed.Command, parsed.Args); err != nil {
		return nil, err
	}

	ctx.logger().WithFields(logrus.Fields{
		"command": parsed.Command.Name,
		"args":    len(parsed.Args),
	}).Debug("executing command")
	return parsed.Command.Handler(ctx, parsed.Args)
}

// =============================================================================
// BUILT-IN COMMANDS
// =============================================================================

func (r *Registry) registerBuiltins() {
	r.Register(&Command{
		Name:        "/upload",
		Aliases:     []string{"/u", "/check"},
		Description: "Check a document (PDF, DOCX or TXT) for violations",
		Usage:       "/upload <path>",
		Args: []ArgDef{
			{Name: "path", Required: true, Type: ArgTypeFile, Description: "document to check"},
		},
		Handler:  handleUpload,
		Category: "Compliance",
	})

	r.Register(&Command{
		Name:        "/regen",
		Aliases:     []string{"/r", "/regenerate"},
		Description: "Regenerate a response from the prompt before it (default: latest)",
		Usage:       "/regen [turn]",
		Args: []ArgDef{
			{Name: "turn", Type: ArgTypeNumber, Description: "turn number of the response"},
		},
		Handler:  handleRegen,
		Category: "Compliance",
	})

	r.Register(&Command{
		Name:        "/rewrite",
		Aliases:     []string{"/fix"},
		Description: "Propose a compliant version of a violating passage",
		Usage:       "/rewrite [turn] <violation>",
		Args: []ArgDef{
			{Name: "turn", Required: true, Type: ArgTypeNumber, Description: "turn number, or the violation number alone"},
			{Name: "violation", Type: ArgTypeNumber, Description: "violation number within the turn"},
		},
		Handler:  handleRewrite,
		Category: "Compliance",
	})

	r.Register(&Command{
		Name:        "/enhancer",
		Description: "Toggle the backend prompt enhancer",
		Usage:       "/enhancer [on|off]",
		Args: []ArgDef{
			{Name: "state", Type: ArgTypeEnum, Values: []string{"on", "off"}},
		},
		Handler:  handleEnhancer,
		Category: "Session",
	})

	r.Register(&Command{
		Name:        "/export",
		Aliases:     []string{"/e"},
		Description: "Write the conversation to a Markdown or JSON file",
		Usage:       "/export [markdown|json] [dir]",
		Args: []ArgDef{
			{Name: "format", Type: ArgTypeEnum, Values: []string{"markdown", "md", "json"}},
			{Name: "dir", Type: ArgTypeFile, Description: "output directory"},
		},
		Handler:  handleExport,
		Category: "Session",
	})

	r.Register(&Command{
		Name:        "/clear",
		Aliases:     []string{"/c"},
		Description: "Clear the conversation",
		Usage:       "/clear",
		Handler:     handleClear,
		Category:    "Session",
	})

	r.Register(&Command{
		Name:        "/help",
		Aliases:     []string{"/h", "/?"},
		Description: "Show available commands",
		Usage:       "/help",
		Handler:     handleHelp,
		Category:    "General",
	})

	r.Register(&Command{
		Name:        "/quit",
		Aliases:     []string{"/q", "/exit"},
		Description: "Exit",
		Usage:       "/quit",
		Handler:     handleQuit,
		Category:    "General",
	})
}
