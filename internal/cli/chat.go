// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Line-based interactive session for comply CLI.
//
// Command: chat
// Short:   Start a line-based session
//
// The session uses the same conversation state machine and slash commands
// as the TUI. ":cmd" is accepted as "/cmd". Arrow keys browse the input
// history, Tab completes commands and paths, Ctrl+C cancels a running
// request and Ctrl+D exits.
//
// When stdin is not a terminal every input line is processed in order,
// which makes the session scriptable.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/jeranaias/comply-tui/internal/commands"
	"github.com/jeranaias/comply-tui/internal/config"
	"github.com/jeranaias/comply-tui/internal/model"
	"github.com/jeranaias/comply-tui/internal/orchestrator"
)

const (
	chatPrompt      = "comply> "
	historyFileName = "chat_history"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// lineEditor provides input history and line editing for the session.
type lineEditor struct {
	line        *liner.State
	historyFile string
}

// newLineEditor creates a line editor with history and tab completion.
func newLineEditor(completer *commands.Completer) *lineEditor {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	line.SetCompleter(completer.CompleteLine)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}
	e := &lineEditor{
		line:        line,
		historyFile: filepath.Join(configDir, historyFileName),
	}
	e.loadHistory()
	return e
}

func (e *lineEditor) loadHistory() {
	if f, err := os.Open(e.historyFile); err == nil {
		_, _ = e.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads one line. Non-empty input is added to the history.
func (e *lineEditor) ReadInput(prompt string) (string, error) {
	input, err := e.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		e.line.AppendHistory(input)
	}
	return input, nil
}

// saveHistory persists the history with owner-only permissions.
func (e *lineEditor) saveHistory() {
	if err := os.MkdirAll(filepath.Dir(e.historyFile), 0700); err != nil {
		return
	}
	f, err := os.OpenFile(e.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = e.line.WriteHistory(f)
}

// Close saves history and restores the terminal.
func (e *lineEditor) Close() {
	e.saveHistory()
	e.line.Close()
}

// =============================================================================
// SESSION
// =============================================================================

// chatSession routes input lines to the command registry and prints the
// turns each one produces.
type chatSession struct {
	ctx      context.Context
	out      io.Writer
	errOut   io.Writer
	orch     *orchestrator.Orchestrator
	registry *commands.Registry
	cmdCtx   *commands.Context
	printer  *turnPrinter
}

func newChatSession(ctx context.Context, rt *runtime, out, errOut io.Writer, noColor bool) *chatSession {
	orch := rt.newOrchestrator()
	return &chatSession{
		ctx:      ctx,
		out:      out,
		errOut:   errOut,
		orch:     orch,
		registry: commands.NewRegistry(),
		cmdCtx: &commands.Context{
			Orchestrator: orch,
			Identity:     rt.identity(),
			Export:       rt.exportOptions(),
			Log:          rt.log.WithField("component", "repl"),
		},
		printer: newTurnPrinter(out, rt.cfg.UI.Theme, rt.cfg.UI.ShowRules, noColor),
	}
}

// Handle processes one input line and reports whether the session ends.
func (s *chatSession) Handle(input string) bool {
	input = strings.TrimSpace(input)
	if input == "" {
		return false
	}
	if strings.HasPrefix(input, ":") {
		input = "/" + input[1:]
	}

	before := s.orch.Conversation().Len()
	res, err := s.registry.Execute(s.cmdCtx, input)
	if err != nil {
		if errors.Is(err, orchestrator.ErrPromptTooShort) {
			s.printTurns(before)
			return false
		}
		DisplayError(s.errOut, err, false)
		return false
	}

	if res.Quit {
		return true
	}
	if res.ShowHelp {
		s.printHelp()
	}
	if res.Notice != "" {
		printInfo(s.out, "%s", res.Notice)
	}
	if res.Operation != nil {
		s.run(res.Operation)
		s.printTurns(before)
	}
	return false
}

// run performs op. An interrupt cancels the request but not the session.
func (s *chatSession) run(op *orchestrator.Operation) {
	ctx, stop := signal.NotifyContext(s.ctx, os.Interrupt)
	defer stop()

	fmt.Fprintln(s.errOut, dimColor.Sprint(op.State().BusyLabel()))
	op.Run(ctx)
}

// printTurns prints the turns appended at or after index from. Prompts
// are skipped since the user just typed them.
func (s *chatSession) printTurns(from int) {
	msgs := s.orch.Conversation().Messages()
	for i := from; i < len(msgs); i++ {
		if msgs[i].Kind == model.KindPrompt {
			continue
		}
		s.printer.Print(msgs[i], i+1)
		fmt.Fprintln(s.out)
	}
}

func (s *chatSession) printHelp() {
	fmt.Fprintln(s.out, "Commands (\":\" works in place of \"/\"):")
	w := tabwriter.NewWriter(s.out, 0, 0, 3, ' ', 0)
	for _, cmd := range s.registry.Visible() {
		fmt.Fprintf(w, "  %s\t%s\n", cmd.Usage, cmd.Description)
	}
	_ = w.Flush()
	fmt.Fprintln(s.out, "Anything else is sent as a prompt. Ctrl+C cancels a request, Ctrl+D exits.")
}

func (s *chatSession) printWelcome(apiURL string) {
	fmt.Fprintln(s.out, successColor.Sprint("comply")+" "+dimColor.Sprint(Version))
	fmt.Fprintln(s.out, dimColor.Sprintf("Backend %s, user %s", apiURL, s.cmdCtx.Identity.UserID))
	fmt.Fprintln(s.out, "Type a prompt, /upload <path> to check a document, or /help for commands.")
	fmt.Fprintln(s.out)
}

func (s *chatSession) printSummary() {
	n := s.orch.Conversation().Len()
	if n == 0 {
		return
	}
	fmt.Fprintln(s.out, dimColor.Sprintf("Session ended with %d turns. Transcripts are only kept if exported.", n))
}

// =============================================================================
// COMMAND
// =============================================================================

func newChatCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "chat",
		Aliases: []string{"repl"},
		Short:   "Start a line-based interactive session",
		Long: `Start a line-based session with the same commands as the TUI.

Interactive Commands:
  /upload <path>            Check a document
  /regen [turn]             Regenerate a response
  /rewrite [turn] <n>       Rewrite a violation
  /enhancer [on|off]        Toggle the prompt enhancer
  /export [markdown|json]   Export the transcript
  /clear, /help, /quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, opts)
		},
	}
}

func runChat(cmd *cobra.Command, opts *rootOptions) error {
	rt, err := opts.open(cmd, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	session := newChatSession(cmd.Context(), rt, cmd.OutOrStdout(), cmd.ErrOrStderr(), opts.noColor)

	in := cmd.InOrStdin()
	if !isTerminalInput(in) {
		return session.runScript(in)
	}

	session.printWelcome(rt.client.BaseURL())
	editor := newLineEditor(commands.NewCompleter(session.registry))
	defer editor.Close()

	for {
		input, err := editor.ReadInput(chatPrompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		if session.Handle(input) {
			break
		}
	}
	session.printSummary()
	return nil
}

// runScript processes lines from a non-interactive reader.
func (s *chatSession) runScript(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxStdinPrompt)
	for scanner.Scan() {
		if s.Handle(scanner.Text()) {
			return nil
		}
	}
	return scanner.Err()
}
