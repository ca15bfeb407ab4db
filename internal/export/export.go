// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/jeranaias/comply-tui/internal/model"
	"github.com/jeranaias/comply-tui/internal/util"
)

// ErrEmptyConversation is returned when there is nothing to export.
var ErrEmptyConversation = errors.New("conversation has no messages")

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter converts a snapshot to one output format.
type Exporter interface {
	Export(snap *Snapshot) ([]byte, error)

	// FileExtension returns the file extension, including the dot.
	FileExtension() string

	MimeType() string
}

// Snapshot is a copy of a conversation taken at export time.
type Snapshot struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
	Turns     []*model.Message `json:"turns"`
}

// FromConversation snapshots conv. Pending placeholders are left out.
func FromConversation(conv *model.Conversation) *Snapshot {
	if conv == nil {
		return nil
	}
	snap := &Snapshot{
		ID:        conv.ID,
		Title:     conv.Title(),
		CreatedAt: conv.CreatedAt,
		UpdatedAt: conv.UpdatedAt(),
	}
	for _, msg := range conv.Messages() {
		if msg.Pending {
			continue
		}
		snap.Turns = append(snap.Turns, msg)
	}
	return snap
}

// ViolationTurns counts turns that reported violated rules.
func (s *Snapshot) ViolationTurns() int {
	n := 0
	for _, t := range s.Turns {
		if t.HasViolations() {
			n++
		}
	}
	return n
}

func (s *Snapshot) validate() error {
	if s == nil {
		return errors.New("conversation is nil")
	}
	if len(s.Turns) == 0 {
		return ErrEmptyConversation
	}
	return nil
}

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures export behavior.
type Options struct {
	// OutputDir is where files are written. Default: current directory.
	OutputDir string

	// OpenAfterExport opens the file in the default application.
	OpenAfterExport bool

	// IncludeMetadata adds frontmatter and a session information section.
	IncludeMetadata bool

	IncludeTimestamps bool

	// Now stamps the file name and footer. Defaults to time.Now.
	Now func() time.Time
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		OutputDir:         ".",
		OpenAfterExport:   true,
		IncludeMetadata:   true,
		IncludeTimestamps: true,
	}
}

func (o *Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// ExportToFile exports a snapshot with exporter and returns the output path.
func ExportToFile(snap *Snapshot, exporter Exporter, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	content, err := exporter.Export(snap)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	filename := fmt.Sprintf("comply_%s_%s%s",
		sanitizeFilename(snap.Title),
		opts.now().Format("20060102_150405"),
		exporter.FileExtension(),
	)

	dir := opts.OutputDir
	if dir == "" {
		dir = "."
	}
	outputPath := filepath.Join(dir, filename)
	if err := util.AtomicWriteFile(outputPath, content, 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}

	if opts.OpenAfterExport {
		// The file exists either way; failing to open it is not an error.
		_ = openFile(outputPath)
	}

	return outputPath, nil
}

// NewExporter returns the exporter for a format name.
func NewExporter(format string, opts *Options) (Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "markdown", "md":
		return NewMarkdownExporter(opts), nil
	case "json":
		return NewJSONExporter(opts), nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
}

// ExportConversation snapshots conv and writes it in the named format.
func ExportConversation(conv *model.Conversation, format string, opts *Options) (string, error) {
	exporter, err := NewExporter(format, opts)
	if err != nil {
		return "", err
	}
	snap := FromConversation(conv)
	if err := snap.validate(); err != nil {
		return "", err
	}
	return ExportToFile(snap, exporter, opts)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// sanitizeFilename removes or replaces characters that are invalid in filenames.
func sanitizeFilename(s string) string {
	const maxLen = 50
	if runes := []rune(strings.TrimSpace(s)); len(runes) > maxLen {
		s = string(runes[:maxLen])
	} else {
		s = string(runes)
	}

	replacer := map[rune]rune{
		'/':  '-',
		'\\': '-',
		':':  '-',
		'*':  '-',
		'?':  '-',
		'"':  '-',
		'<':  '-',
		'>':  '-',
		'|':  '-',
		' ':  '_',
		'\t': '_',
		'\n': '_',
		'\r': '_',
	}

	result := []rune{}
	for _, r := range s {
		if replacement, found := replacer[r]; found {
			result = append(result, replacement)
		} else if r < 32 || r == 127 {
			result = append(result, '-')
		} else {
			result = append(result, r)
		}
	}

	if len(result) == 0 {
		return "session"
	}
	return string(result)
}

// openFile opens a file in the default application for the OS.
func openFile(path string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", `""`, path)
	case "darwin":
		cmd = exec.Command("open", path)
	case "linux":
		cmd = exec.Command("xdg-open", path)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}

func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

func formatShortTimestamp(t time.Time) string {
	return t.Format("15:04:05")
}
