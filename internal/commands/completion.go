// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// maxFileCompletions limits path suggestions per directory.
const maxFileCompletions = 20

// =============================================================================
// COMPLETER
// =============================================================================

// Completer handles tab completion for commands and arguments.
type Completer struct {
	registry *Registry

	// FilesFn returns paths matching a prefix. Nil reads the file system.
	FilesFn func(prefix string) []string
}

// NewCompleter creates a new completer with the given registry.
func NewCompleter(registry *Registry) *Completer {
	return &Completer{registry: registry}
}

// Complete returns completions for the given input at the cursor position.
// Plain prompts get no completions.
func (c *Completer) Complete(input string, cursorPos int) []Completion {
	if cursorPos >= 0 && cursorPos < len(input) {
		input = input[:cursorPos]
	}
	input = strings.TrimLeft(input, " \t")
	if !strings.HasPrefix(input, "/") {
		return nil
	}

	parts := splitCommandLine(input)
	if len(parts) == 0 {
		return c.completeCommands("")
	}

	// Still typing the command name?
	trailingSpace := strings.HasSuffix(input, " ")
	if len(parts) == 1 && !trailingSpace {
		return c.completeCommands(parts[0])
	}

	cmd := c.registry.Get(strings.ToLower(parts[0]))
	if cmd == nil {
		return nil
	}

	argIndex := len(parts) - 2
	partial := ""
	if trailingSpace {
		argIndex++
	} else {
		partial = parts[len(parts)-1]
	}
	return c.completeArg(cmd, argIndex, partial)
}

// CompleteLine returns whole input lines, one per completion. Line editors
// use it directly.
func (c *Completer) CompleteLine(line string) []string {
	completions := c.Complete(line, len(line))
	if len(completions) == 0 {
		return nil
	}
	lines := make([]string, 0, len(completions))
	for _, comp := range completions {
		lines = append(lines, Apply(line, comp))
	}
	return lines
}

// Apply replaces the token being completed at the end of line with comp.
func Apply(line string, comp Completion) string {
	head := ""
	if i := strings.LastIndexAny(line, " \t"); i >= 0 {
		head = line[:i+1]
	}

	value := comp.Value
	if strings.ContainsAny(value, " \t") {
		value = `"` + value + `"`
	}
	if comp.IsCommand {
		value += " "
	}
	return head + value
}

// =============================================================================
// COMMAND COMPLETION
// =============================================================================

func (c *Completer) completeCommands(partial string) []Completion {
	var completions []Completion
	partial = strings.ToLower(partial)

	for _, cmd := range c.registry.Visible() {
		if strings.HasPrefix(cmd.Name, partial) {
			completions = append(completions, Completion{
				Value:       cmd.Name,
				Display:     cmd.Name,
				Description: cmd.Description,
				Score:       calculateScore(cmd.Name, partial),
				IsCommand:   true,
			})
			continue
		}
		for _, alias := range cmd.Aliases {
			if strings.HasPrefix(alias, partial) {
				completions = append(completions, Completion{
					Value:       alias,
					Display:     alias + " -> " + cmd.Name,
					Description: cmd.Description,
					Score:       calculateScore(alias, partial) - 10,
					IsCommand:   true,
				})
			}
		}
	}

	sortCompletions(completions)
	return completions
}

// =============================================================================
// ARGUMENT COMPLETION
// =============================================================================

func (c *Completer) completeArg(cmd *Command, argIndex int, partial string) []Completion {
	if argIndex < 0 || argIndex >= len(cmd.Args) {
		return nil
	}

	arg := cmd.Args[argIndex]
	switch arg.Type {
	case ArgTypeFile:
		return c.completeFiles(partial)
	case ArgTypeEnum:
		completions := completeFromList(arg.Values, partial)
		// An optional enum can be skipped in favour of the next argument.
		if !arg.Required && argIndex+1 < len(cmd.Args) && cmd.Args[argIndex+1].Type == ArgTypeFile && partial != "" {
			completions = append(completions, c.completeFiles(partial)...)
		}
		return completions
	default:
		return nil
	}
}

func (c *Completer) completeFiles(partial string) []Completion {
	if c.FilesFn != nil {
		return completeFromList(c.FilesFn(partial), partial)
	}
	return defaultFileCompletion(partial)
}

// defaultFileCompletion lists directory entries matching partial.
func defaultFileCompletion(partial string) []Completion {
	dir := filepath.Dir(partial)
	prefix := filepath.Base(partial)
	if partial == "" || strings.HasSuffix(partial, string(os.PathSeparator)) {
		dir = partial
		if dir == "" {
			dir = "."
		}
		prefix = ""
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var completions []Completion
	lowerPrefix := strings.ToLower(prefix)
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(strings.ToLower(name), lowerPrefix) {
			continue
		}
		// Skip hidden files unless the prefix asks for them.
		if strings.HasPrefix(name, ".") && !strings.HasPrefix(prefix, ".") {
			continue
		}

		path := name
		if partial != "" && (dir != "." || strings.HasPrefix(partial, ".")) {
			path = filepath.Join(dir, name)
		}
		score := calculateScore(name, lowerPrefix)
		desc := ""
		if entry.IsDir() {
			path += string(os.PathSeparator)
			score += 5
			desc = "directory"
		} else if info, err := entry.Info(); err == nil {
			desc = formatFileSize(info.Size())
		}

		completions = append(completions, Completion{
			Value:       path,
			Display:     name,
			Description: desc,
			Score:       score,
		})
	}

	sortCompletions(completions)
	if len(completions) > maxFileCompletions {
		completions = completions[:maxFileCompletions]
	}
	return completions
}

func completeFromList(values []string, partial string) []Completion {
	var completions []Completion
	partial = strings.ToLower(partial)
	for _, value := range values {
		if strings.HasPrefix(strings.ToLower(value), partial) {
			completions = append(completions, Completion{
				Value:   value,
				Display: value,
				Score:   calculateScore(value, partial),
			})
		}
	}
	sortCompletions(completions)
	return completions
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// calculateScore ranks a completion. Higher is a better match.
func calculateScore(value, partial string) int {
	value = strings.ToLower(value)
	partial = strings.ToLower(partial)

	score := 100
	if value == partial {
		return score + 100
	}
	if strings.HasPrefix(value, partial) {
		score += 50
		score += 20 - len(value)
	}
	score -= len(value) / 2
	return score
}

// sortCompletions sorts completions by score (descending), then alphabetically.
func sortCompletions(completions []Completion) {
	sort.SliceStable(completions, func(i, j int) bool {
		if completions[i].Score != completions[j].Score {
			return completions[i].Score > completions[j].Score
		}
		return completions[i].Value < completions[j].Value
	})
}

func formatFileSize(size int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case size >= GB:
		return fmt.Sprintf("%.1f GB", float64(size)/GB)
	case size >= MB:
		return fmt.Sprintf("%.1f MB", float64(size)/MB)
	case size >= KB:
		return fmt.Sprintf("%.1f KB", float64(size)/KB)
	default:
		return fmt.Sprintf("%d B", size)
	}
}

// =============================================================================
// COMPLETION NAVIGATION
// =============================================================================

// CompletionState holds the state for cycling through completions.
type CompletionState struct {
	// Original input before completion
	OriginalInput string

	Completions []Completion

	// Selected index (-1 for none)
	Selected int
}

// NewCompletionState creates a new completion state.
func NewCompletionState() *CompletionState {
	return &CompletionState{Selected: -1}
}

// Update replaces the completions and selects the first one.
func (cs *CompletionState) Update(input string, completions []Completion) {
	cs.OriginalInput = input
	cs.Completions = completions
	cs.Selected = -1
	if len(completions) > 0 {
		cs.Selected = 0
	}
}

// Active reports whether there are completions to cycle through.
func (cs *CompletionState) Active() bool {
	return len(cs.Completions) > 0
}

// Next moves to the next completion.
func (cs *CompletionState) Next() {
	if len(cs.Completions) == 0 {
		return
	}
	cs.Selected = (cs.Selected + 1) % len(cs.Completions)
}

// Prev moves to the previous completion.
func (cs *CompletionState) Prev() {
	if len(cs.Completions) == 0 {
		return
	}
	cs.Selected--
	if cs.Selected < 0 {
		cs.Selected = len(cs.Completions) - 1
	}
}

// Clear clears the completion state.
func (cs *CompletionState) Clear() {
	cs.OriginalInput = ""
	cs.Completions = nil
	cs.Selected = -1
}

// GetSelected returns the currently selected completion, or nil.
func (cs *CompletionState) GetSelected() *Completion {
	if cs.Selected < 0 || cs.Selected >= len(cs.Completions) {
		return nil
	}
	return &cs.Completions[cs.Selected]
}

// =============================================================================
// COMPLETION TYPE
// =============================================================================

// Completion represents a completion suggestion.
type Completion struct {
	// Value to insert
	Value string

	// Display text shown in the list
	Display string

	Description string

	// Score for ranking (higher = better match)
	Score int

	// IsCommand marks command-name completions.
	IsCommand bool
}
