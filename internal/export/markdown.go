// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jeranaias/comply-tui/internal/document"
	"github.com/jeranaias/comply-tui/internal/model"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports sessions to Markdown.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

type frontmatter struct {
	Title      string `yaml:"title"`
	Session    string `yaml:"session"`
	Date       string `yaml:"date"`
	Updated    string `yaml:"updated"`
	Turns      int    `yaml:"turns"`
	Violations int    `yaml:"violation_turns"`
	Exported   string `yaml:"exported"`
	Generator  string `yaml:"generator"`
}

// Export converts a snapshot to Markdown.
func (e *MarkdownExporter) Export(snap *Snapshot) ([]byte, error) {
	if err := snap.validate(); err != nil {
		return nil, err
	}
	now := e.options.now()

	var sb strings.Builder

	if e.options.IncludeMetadata {
		fm, err := yaml.Marshal(frontmatter{
			Title:      snap.Title,
			Session:    snap.ID,
			Date:       snap.CreatedAt.Format(time.RFC3339),
			Updated:    snap.UpdatedAt.Format(time.RFC3339),
			Turns:      len(snap.Turns),
			Violations: snap.ViolationTurns(),
			Exported:   now.Format(time.RFC3339),
			Generator:  "comply-tui",
		})
		if err != nil {
			return nil, fmt.Errorf("encode frontmatter: %w", err)
		}
		sb.WriteString("---\n")
		sb.Write(fm)
		sb.WriteString("---\n\n")
	}

	sb.WriteString(fmt.Sprintf("# %s\n\n", escapeMarkdown(snap.Title)))

	if e.options.IncludeMetadata {
		sb.WriteString("## Session Information\n\n")
		sb.WriteString(fmt.Sprintf("- **Session**: %s\n", snap.ID))
		sb.WriteString(fmt.Sprintf("- **Created**: %s\n", formatTimestamp(snap.CreatedAt)))
		sb.WriteString(fmt.Sprintf("- **Last Updated**: %s\n", formatTimestamp(snap.UpdatedAt)))
		sb.WriteString(fmt.Sprintf("- **Turns**: %d\n", len(snap.Turns)))
		sb.WriteString(fmt.Sprintf("- **Turns With Violations**: %d\n", snap.ViolationTurns()))
		sb.WriteString("\n---\n\n")
	}

	sb.WriteString("## Conversation\n\n")

	for i, msg := range snap.Turns {
		label := msg.Role.DisplayName()
		if msg.IsError {
			label += " [Error]"
		}
		if e.options.IncludeTimestamps {
			sb.WriteString(fmt.Sprintf("### %s <sub>%s</sub>\n\n", label, formatShortTimestamp(msg.Timestamp)))
		} else {
			sb.WriteString(fmt.Sprintf("### %s\n\n", label))
		}

		sb.WriteString(messageContent(msg))
		sb.WriteString("\n\n")

		if summary := msg.Overlay.Summary(); summary != "" {
			sb.WriteString(fmt.Sprintf("<sub>%s</sub>\n\n", summary))
		}

		if i < len(snap.Turns)-1 {
			sb.WriteString("---\n\n")
		}
	}

	sb.WriteString("\n---\n\n")
	sb.WriteString(fmt.Sprintf("*Exported from comply on %s*\n", now.Format("January 2, 2006 at 3:04 PM")))

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}

// messageContent renders parsed turns in canonical form. Error and user
// turns are written as entered.
func messageContent(msg *model.Message) string {
	if len(msg.Blocks) > 0 && !msg.IsError {
		return document.Markdown(msg.Blocks)
	}
	return strings.TrimSpace(msg.Content)
}

// escapeMarkdown escapes characters that would break a heading.
func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "#", "\\#")
	s = strings.ReplaceAll(s, "*", "\\*")
	s = strings.ReplaceAll(s, "_", "\\_")
	s = strings.ReplaceAll(s, "[", "\\[")
	s = strings.ReplaceAll(s, "]", "\\]")
	return s
}
