// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package diff computes word-level changes between a flagged passage and
// its compliant rewrite.
package diff

import (
	"fmt"
	"strings"
)

// =============================================================================
// EDIT TYPES
// =============================================================================

// Op is the kind of an edit.
type Op int

const (
	// OpEqual is text present in both versions
	OpEqual Op = iota
	// OpInsert is text only in the rewrite
	OpInsert
	// OpDelete is text only in the original
	OpDelete
)

// String returns the string representation of an op.
func (o Op) String() string {
	switch o {
	case OpEqual:
		return "equal"
	case OpInsert:
		return "insert"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// MarshalText encodes the op by name.
func (o Op) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Edit is a run of consecutive words sharing one op.
type Edit struct {
	Op   Op     `json:"op"`
	Text string `json:"text"`
}

// Stats counts words per op.
type Stats struct {
	Inserted  int `json:"inserted"`
	Deleted   int `json:"deleted"`
	Unchanged int `json:"unchanged"`
}

// Diff is the word-level difference between two texts.
type Diff struct {
	Old   string `json:"-"`
	New   string `json:"-"`
	Edits []Edit `json:"edits"`
	Stats Stats  `json:"stats"`
}

// =============================================================================
// COMPUTATION
// =============================================================================

// Words diffs old and new on whitespace-separated words. Whitespace itself
// is not significant. Within a change, deletions come before insertions.
func Words(oldText, newText string) *Diff {
	d := &Diff{Old: oldText, New: newText}
	a, b := strings.Fields(oldText), strings.Fields(newText)

	// lcs[i][j] is the LCS length of a[i:] and b[j:].
	lcs := make([][]int, len(a)+1)
	for i := range lcs {
		lcs[i] = make([]int, len(b)+1)
	}
	for i := len(a) - 1; i >= 0; i-- {
		for j := len(b) - 1; j >= 0; j-- {
			if a[i] == b[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else {
				lcs[i][j] = max(lcs[i+1][j], lcs[i][j+1])
			}
		}
	}

	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			d.add(OpEqual, a[i])
			i++
			j++
		case lcs[i+1][j] >= lcs[i][j+1]:
			d.add(OpDelete, a[i])
			i++
		default:
			d.add(OpInsert, b[j])
			j++
		}
	}
	for ; i < len(a); i++ {
		d.add(OpDelete, a[i])
	}
	for ; j < len(b); j++ {
		d.add(OpInsert, b[j])
	}
	return d
}

func (d *Diff) add(op Op, word string) {
	switch op {
	case OpInsert:
		d.Stats.Inserted++
	case OpDelete:
		d.Stats.Deleted++
	default:
		d.Stats.Unchanged++
	}

	if n := len(d.Edits); n > 0 && d.Edits[n-1].Op == op {
		d.Edits[n-1].Text += " " + word
		return
	}
	d.Edits = append(d.Edits, Edit{Op: op, Text: word})
}

// Changed reports whether the texts differ in any word.
func (d *Diff) Changed() bool {
	return d.Stats.Inserted > 0 || d.Stats.Deleted > 0
}

// =============================================================================
// FORMATTING
// =============================================================================

// Render joins the edits with single spaces, passing deleted and inserted
// runs through del and ins.
func (d *Diff) Render(del, ins func(string) string) string {
	parts := make([]string, len(d.Edits))
	for i, e := range d.Edits {
		switch e.Op {
		case OpDelete:
			parts[i] = del(e.Text)
		case OpInsert:
			parts[i] = ins(e.Text)
		default:
			parts[i] = e.Text
		}
	}
	return strings.Join(parts, " ")
}

// FormatInline renders the diff with [-deleted-] and {+inserted+} markers,
// the notation of git's --word-diff=plain.
func FormatInline(d *Diff) string {
	return d.Render(MarkDeleted, MarkInserted)
}

// MarkDeleted wraps s in deletion markers.
func MarkDeleted(s string) string { return "[-" + s + "-]" }

// MarkInserted wraps s in insertion markers.
func MarkInserted(s string) string { return "{+" + s + "+}" }

// Summary returns a short description such as "+2 -1 words".
func (d *Diff) Summary() string {
	if !d.Changed() {
		return "No changes"
	}
	var parts []string
	if d.Stats.Inserted > 0 {
		parts = append(parts, fmt.Sprintf("+%d", d.Stats.Inserted))
	}
	if d.Stats.Deleted > 0 {
		parts = append(parts, fmt.Sprintf("-%d", d.Stats.Deleted))
	}
	return strings.Join(parts, " ") + " words"
}
