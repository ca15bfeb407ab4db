// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jeranaias/comply-tui/internal/compliance"
	"github.com/jeranaias/comply-tui/internal/model"
)

var fixedNow = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func testOptions(dir string) *Options {
	opts := DefaultOptions()
	opts.OutputDir = dir
	opts.OpenAfterExport = false
	opts.Now = func() time.Time { return fixedNow }
	return opts
}

func sampleConversation(t *testing.T) *model.Conversation {
	t.Helper()
	conv := model.NewConversation()
	conv.Append(model.NewUserMessage(model.KindPrompt, "Write a privacy notice: draft #1"))
	conv.Append(model.NewResultMessage(model.KindResult,
		"**Privacy Notice**\n\nWe **never** sell data.\n\n- Access\n- Deletion",
		&compliance.AnalysisResult{
			ComplianceStatus: compliance.StatusViolations,
			SubmissionID:     "sub-1",
			RulesTriggered: []compliance.RuleTrigger{
				{RuleID: "r1", RuleText: "No absolute claims", Status: compliance.RuleViolated},
				{RuleID: "r2", RuleText: "Mention rights", Status: compliance.RuleTriggered},
			},
		}))
	conv.Append(model.NewUserMessage(model.KindPrompt, "ok"))
	conv.Append(model.NewErrorMessage("Prompt must be at least 5 characters long."))
	return conv
}

func TestFromConversation_SkipsPending(t *testing.T) {
	conv := sampleConversation(t)
	_, err := conv.AppendPending("Generating content...")
	require.NoError(t, err)

	snap := FromConversation(conv)
	require.NotNil(t, snap)
	assert.Len(t, snap.Turns, 4)
	assert.Equal(t, conv.ID, snap.ID)
	assert.Equal(t, "Write a privacy notice: draft #1", snap.Title)
	assert.Equal(t, 1, snap.ViolationTurns())

	assert.Nil(t, FromConversation(nil))
}

func TestMarkdownExporter_Export(t *testing.T) {
	snap := FromConversation(sampleConversation(t))
	out, err := NewMarkdownExporter(testOptions(t.TempDir())).Export(snap)
	require.NoError(t, err)
	md := string(out)

	parts := strings.SplitN(md, "---\n", 3)
	require.Len(t, parts, 3)
	var fm frontmatter
	require.NoError(t, yaml.Unmarshal([]byte(parts[1]), &fm))
	assert.Equal(t, "Write a privacy notice: draft #1", fm.Title)
	assert.Equal(t, 4, fm.Turns)
	assert.Equal(t, 1, fm.Violations)
	assert.Equal(t, "comply-tui", fm.Generator)

	assert.Contains(t, md, "# Write a privacy notice: draft \\#1\n")
	assert.Contains(t, md, "## Privacy Notice\n\nWe **never** sell data.\n\n- Access\n- Deletion")
	assert.Contains(t, md, "<sub>Rules: 2 triggered (1 violation)</sub>")
	assert.Contains(t, md, "### Comply [Error]")
	assert.Contains(t, md, "Error: Prompt must be at least 5 characters long.")
	assert.Contains(t, md, "*Exported from comply on March 14, 2025 at 9:26 AM*")
}

func TestMarkdownExporter_NoMetadata(t *testing.T) {
	opts := testOptions(t.TempDir())
	opts.IncludeMetadata = false
	opts.IncludeTimestamps = false

	out, err := NewMarkdownExporter(opts).Export(FromConversation(sampleConversation(t)))
	require.NoError(t, err)
	md := string(out)

	assert.True(t, strings.HasPrefix(md, "# "))
	assert.NotContains(t, md, "Session Information")
	assert.NotContains(t, md, "### You <sub>")
	assert.Contains(t, md, "### You\n\n")
}

func TestExporters_RejectEmpty(t *testing.T) {
	opts := testOptions(t.TempDir())
	empty := FromConversation(model.NewConversation())

	_, err := NewMarkdownExporter(opts).Export(empty)
	assert.ErrorIs(t, err, ErrEmptyConversation)
	_, err = NewJSONExporter(opts).Export(empty)
	assert.ErrorIs(t, err, ErrEmptyConversation)
	_, err = NewJSONExporter(opts).Export(nil)
	assert.Error(t, err)
}

func TestJSONExporter_Export(t *testing.T) {
	out, err := NewJSONExporter(testOptions(t.TempDir())).Export(FromConversation(sampleConversation(t)))
	require.NoError(t, err)

	var decoded struct {
		ID         string    `json:"id"`
		Title      string    `json:"title"`
		ExportedAt time.Time `json:"exported_at"`
		Turns      []struct {
			Role     string `json:"role"`
			Kind     string `json:"kind"`
			IsError  bool   `json:"is_error"`
			Analysis *struct {
				SubmissionID   string `json:"submission_id"`
				RulesTriggered []any  `json:"rules_triggered"`
			} `json:"analysis"`
		} `json:"turns"`
	}
	require.NoError(t, json.Unmarshal(out, &decoded))

	require.Len(t, decoded.Turns, 4)
	assert.True(t, fixedNow.Equal(decoded.ExportedAt))
	require.NotNil(t, decoded.Turns[1].Analysis)
	assert.Equal(t, "sub-1", decoded.Turns[1].Analysis.SubmissionID)
	assert.Len(t, decoded.Turns[1].Analysis.RulesTriggered, 2)
	assert.True(t, decoded.Turns[3].IsError)
	assert.Nil(t, decoded.Turns[0].Analysis)
}

func TestExportConversation_WritesFile(t *testing.T) {
	dir := t.TempDir()

	path, err := ExportConversation(sampleConversation(t), "md", testOptions(dir))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "comply_Write_a_privacy_notice-_draft_#1_20250314_092653.md"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "## Conversation")

	path, err = ExportConversation(sampleConversation(t), "json", testOptions(dir))
	require.NoError(t, err)
	assert.Equal(t, ".json", filepath.Ext(path))
}

func TestExportConversation_Errors(t *testing.T) {
	opts := testOptions(t.TempDir())

	_, err := ExportConversation(sampleConversation(t), "pdf", opts)
	assert.Error(t, err)

	_, err = ExportConversation(model.NewConversation(), "markdown", opts)
	assert.ErrorIs(t, err, ErrEmptyConversation)
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "session"},
		{"  hello world  ", "hello_world"},
		{"a/b\\c:d", "a-b-c-d"},
		{"tab\there", "tab_here"},
		{strings.Repeat("x", 80), strings.Repeat("x", 50)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeFilename(tt.in), tt.in)
	}
}
