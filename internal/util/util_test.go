// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// ATOMIC WRITE TESTS
// =============================================================================

func TestAtomicWriteFile_CreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "transcript.md")

	require.NoError(t, AtomicWriteFile(path, []byte("hello"), 0600))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))
}

func TestAtomicWriteFile_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	require.NoError(t, AtomicWriteFile(path, []byte("first version"), 0600))
	require.NoError(t, AtomicWriteFile(path, []byte("second"), 0600))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))
}

func TestAtomicWriteFile_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, AtomicWriteFile(filepath.Join(dir, "out.json"), []byte("{}"), 0644))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "out.json", entries[0].Name())
}

// =============================================================================
// STRING TESTS
// =============================================================================

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello world", 8, "hello..."},
		{"hello", 3, "hel"},
		{"hello", 0, ""},
		{"héllo wörld", 7, "héll..."},
		{"日本語テキスト", 5, "日本..."},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, TruncateRunes(tt.in, tt.max), "TruncateRunes(%q, %d)", tt.in, tt.max)
	}
}

func TestTruncateWidth(t *testing.T) {
	assert.Equal(t, "hello", TruncateWidth("hello", 5))
	assert.Equal(t, "hel...", TruncateWidth("hello world", 6))
	assert.Equal(t, "", TruncateWidth("hello", 0))
	assert.LessOrEqual(t, StringWidth(TruncateWidth("日本語テキスト", 7)), 7)
}

func TestStringWidth(t *testing.T) {
	assert.Equal(t, 5, StringWidth("hello"))
	assert.Equal(t, 6, StringWidth("日本語"))
}

func TestCollapseSpace(t *testing.T) {
	assert.Equal(t, "a b c", CollapseSpace("  a\n\tb   c \r\n"))
	assert.Equal(t, "", CollapseSpace(" \n "))
}

func TestRuneLen(t *testing.T) {
	assert.Equal(t, 5, RuneLen("héllo"))
	assert.Equal(t, 0, RuneLen(""))
}
