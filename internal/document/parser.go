// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package document

import (
	"strings"
	"unicode/utf8"
)

// =============================================================================
// PARSER
// =============================================================================

// Parse splits a text document into an ordered list of blocks.
//
// The document is split on blank lines into candidates, and every candidate
// is handed to the classifiers in priority order. The first classifier that
// accepts a candidate decides its block; a candidate is never split across
// blocks. Parse is a pure function of its input.
func Parse(text string) Document {
	var doc Document
	for _, c := range splitCandidates(text) {
		if b := classify(c); b != nil {
			doc = append(doc, b)
		}
	}
	return doc
}

// candidate is a blank-line separated chunk of the input.
type candidate struct {
	lines   []string // raw lines, line endings removed
	trimmed string   // whole chunk with surrounding whitespace removed
}

// splitCandidates groups consecutive non-blank lines. A line is blank when it
// is empty after trimming whitespace.
func splitCandidates(text string) []candidate {
	var out []candidate
	var lines []string

	flush := func() {
		if len(lines) == 0 {
			return
		}
		out = append(out, candidate{
			lines:   lines,
			trimmed: strings.TrimSpace(strings.Join(lines, "\n")),
		})
		lines = nil
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		lines = append(lines, line)
	}
	flush()

	return out
}

// =============================================================================
// CLASSIFIERS
// =============================================================================

// classifier inspects a candidate and reports whether it claims it.
// A claiming classifier may still return a nil Block, meaning the candidate
// produces no output.
type classifier struct {
	kind  BlockKind
	match func(c candidate) (Block, bool)
}

// classifiers is ordered by priority. The order is behaviorally significant.
var classifiers = []classifier{
	{kind: KindBulletList, match: matchBulletList},
	{kind: KindNumberedList, match: matchNumberedList},
	{kind: KindHeading, match: matchHeading},
	{kind: KindParagraph, match: matchParagraph},
}

// ClassifierOrder returns the block kinds in the order candidates are tested.
func ClassifierOrder() []BlockKind {
	kinds := make([]BlockKind, len(classifiers))
	for i, cl := range classifiers {
		kinds[i] = cl.kind
	}
	return kinds
}

func classify(c candidate) Block {
	for _, cl := range classifiers {
		if b, ok := cl.match(c); ok {
			return b
		}
	}
	return nil
}

// matchBulletList claims a candidate with at least one marker line. Once
// claimed, lines opening with "**" are kept as items too, so a bold lead-in
// such as "**Key points**" above the bullets is not lost.
func matchBulletList(c candidate) (Block, bool) {
	if !anyLine(c.lines, bulletContent) {
		return nil, false
	}
	return BulletList{Items: collectItems(c.lines, bulletItemContent)}, true
}

func matchNumberedList(c candidate) (Block, bool) {
	items := collectItems(c.lines, numberedContent)
	if len(items) == 0 {
		return nil, false
	}
	return NumberedList{Items: items}, true
}

func matchHeading(c candidate) (Block, bool) {
	text, ok := headingText(c.trimmed)
	if !ok {
		return nil, false
	}
	if text == "" {
		return nil, true
	}
	return Heading{Text: text}, true
}

func matchParagraph(c candidate) (Block, bool) {
	if c.trimmed == "" {
		return nil, true
	}
	spans := ParseInline(c.trimmed)
	if len(spans) == 0 {
		return nil, true
	}
	return Paragraph{Spans: spans}, true
}

// collectItems keeps only the lines accepted by content; other lines inside
// the candidate are ignored rather than merged into a neighbouring item.
func collectItems(lines []string, content func(string) (string, bool)) []Item {
	var items []Item
	for _, line := range lines {
		if text, ok := content(strings.TrimSpace(line)); ok {
			items = append(items, Item(ParseInline(text)))
		}
	}
	return items
}

func anyLine(lines []string, content func(string) (string, bool)) bool {
	for _, line := range lines {
		if _, ok := content(strings.TrimSpace(line)); ok {
			return true
		}
	}
	return false
}

// bulletItemContent accepts marker lines and "**" lines with text. The whole
// "**" line is the item text; its emphasis is resolved by ParseInline.
func bulletItemContent(line string) (string, bool) {
	if text, ok := bulletContent(line); ok {
		return text, true
	}
	if strings.HasPrefix(line, EmphasisDelimiter) &&
		strings.TrimSpace(strings.ReplaceAll(line, EmphasisDelimiter, "")) != "" {
		return line, true
	}
	return "", false
}

// bulletContent reports whether a trimmed line is a bullet item and returns
// its text with the marker removed. A "*" that opens a "**" emphasis pair is
// not a marker.
func bulletContent(line string) (string, bool) {
	r, size := utf8.DecodeRuneInString(line)
	switch r {
	case '-', '•':
	case '*':
		if strings.HasPrefix(line, EmphasisDelimiter) {
			return "", false
		}
	default:
		return "", false
	}
	return strings.TrimSpace(line[size:]), true
}

// numberedContent reports whether a trimmed line starts with "<digits>." and
// returns its text with the prefix removed.
func numberedContent(line string) (string, bool) {
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i == 0 || i >= len(line) || line[i] != '.' {
		return "", false
	}
	return strings.TrimSpace(line[i+1:]), true
}

// headingText recognises "**Title**" and "# Title" candidates.
// Line breaks inside a heading are folded into single spaces.
func headingText(trimmed string) (string, bool) {
	var text string
	switch {
	case len(trimmed) >= 2*len(EmphasisDelimiter) &&
		strings.HasPrefix(trimmed, EmphasisDelimiter) &&
		strings.HasSuffix(trimmed, EmphasisDelimiter):
		text = strings.ReplaceAll(trimmed, EmphasisDelimiter, "")
	case strings.HasPrefix(trimmed, "#"):
		text = strings.TrimLeft(trimmed, "#")
	default:
		return "", false
	}
	return foldLines(text), true
}

func foldLines(s string) string {
	parts := strings.Split(s, "\n")
	kept := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
