// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// BLOCK PARSER TESTS
// =============================================================================

func plain(s string) Span { return Span{Text: s} }

func emph(s string) Span { return Span{Text: s, Emphasized: true} }

func item(s string) Item { return Item{plain(s)} }

func items(ss ...string) []Item {
	out := make([]Item, len(ss))
	for i, s := range ss {
		out[i] = item(s)
	}
	return out
}

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Document
	}{
		{
			name:  "heading then paragraph",
			input: "**Title**\n\nBody text.",
			want: Document{
				Heading{Text: "Title"},
				Paragraph{Spans: []Span{plain("Body text.")}},
			},
		},
		{
			name:  "bullet list",
			input: "- one\n- two\n- three",
			want:  Document{BulletList{Items: items("one", "two", "three")}},
		},
		{
			name:  "bullet markers",
			input: "• dot\n* star\n-   dash",
			want:  Document{BulletList{Items: items("dot", "star", "dash")}},
		},
		{
			name:  "numbered list",
			input: "1. first\n2. second",
			want:  Document{NumberedList{Items: items("first", "second")}},
		},
		{
			name:  "multi digit numbers",
			input: "9. nine\n10.ten",
			want:  Document{NumberedList{Items: items("nine", "ten")}},
		},
		{
			name:  "inline emphasis",
			input: "Plain **bold** text.",
			want: Document{
				Paragraph{Spans: []Span{plain("Plain "), emph("bold"), plain(" text.")}},
			},
		},
		{
			name:  "hash heading",
			input: "## Key Points",
			want:  Document{Heading{Text: "Key Points"}},
		},
		{
			name:  "hash heading folds lines",
			input: "# Policy\nOverview",
			want:  Document{Heading{Text: "Policy Overview"}},
		},
		{
			name:  "wrapped heading strips inner delimiters",
			input: "**Plan** and **Cover**",
			want:  Document{Heading{Text: "Plan and Cover"}},
		},
		{
			name:  "non matching lines inside list are ignored",
			input: "Benefits:\n- low premium\n- wide cover\nTerms apply.",
			want:  Document{BulletList{Items: items("low premium", "wide cover")}},
		},
		{
			name:  "stray dash makes a list",
			input: "A normal sentence\n- with a dash line",
			want:  Document{BulletList{Items: items("with a dash line")}},
		},
		{
			name:  "bullet wins over numbered",
			input: "1. first\n- second",
			want:  Document{BulletList{Items: items("second")}},
		},
		{
			name:  "numbered wins over heading",
			input: "# Steps\n1. apply",
			want:  Document{NumberedList{Items: items("apply")}},
		},
		{
			name:  "list items keep emphasis",
			input: "- **Premium**: low",
			want: Document{BulletList{Items: []Item{
				{emph("Premium"), plain(": low")},
			}}},
		},
		{
			name:  "bold lead-in is kept as a list item",
			input: "**Key points**\n- fast\n- cheap",
			want: Document{BulletList{Items: []Item{
				{emph("Key points")},
				item("fast"),
				item("cheap"),
			}}},
		},
		{
			name:  "bold lead-in with trailing text",
			input: "- low premium\n**Note:** terms apply",
			want: Document{BulletList{Items: []Item{
				item("low premium"),
				{emph("Note:"), plain(" terms apply")},
			}}},
		},
		{
			name:  "bare delimiters inside a list are ignored",
			input: "****\n- fast",
			want:  Document{BulletList{Items: items("fast")}},
		},
		{
			name:  "bold lines alone are not a list",
			input: "**Title**\n**Subtitle**",
			want:  Document{Heading{Text: "Title Subtitle"}},
		},
		{
			name:  "bold line is not a bullet",
			input: "**Note** read this",
			want: Document{
				Paragraph{Spans: []Span{emph("Note"), plain(" read this")}},
			},
		},
		{
			name:  "lone delimiter is literal",
			input: "**",
			want:  Document{Paragraph{Spans: []Span{plain("**")}}},
		},
		{
			name:  "empty heading is dropped",
			input: "****\n\n#",
			want:  nil,
		},
		{
			name:  "windows line endings",
			input: "Intro\r\n\r\n- a\r\n- b\r\n",
			want: Document{
				Paragraph{Spans: []Span{plain("Intro")}},
				BulletList{Items: items("a", "b")},
			},
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
		{
			name:  "whitespace only",
			input: " \n\t\n   ",
			want:  nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Parse(tc.input)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParse_DropsEmptyParagraphs(t *testing.T) {
	doc := Parse("First paragraph.\n\n\n\nSecond paragraph.")

	require.Len(t, doc, 2)
	for _, b := range doc {
		p, ok := b.(Paragraph)
		require.True(t, ok, "expected paragraph, got %s", b.Kind())
		assert.NotEmpty(t, PlainText(p.Spans))
	}
}

func TestParse_PreservesCandidateOrder(t *testing.T) {
	input := "# Title\n\nIntro.\n\n- a\n- b\n\n1. x\n\nOutro."
	doc := Parse(input)

	assert.Equal(t, []BlockKind{
		KindHeading,
		KindParagraph,
		KindBulletList,
		KindNumberedList,
		KindParagraph,
	}, doc.Kinds())
}

func TestParse_Deterministic(t *testing.T) {
	input := "**Title**\n\nSome **bold** and\n- a list\n\n1. one\n2. two"
	assert.Equal(t, Parse(input), Parse(input))
}

func TestClassifierOrder(t *testing.T) {
	assert.Equal(t, []BlockKind{
		KindBulletList,
		KindNumberedList,
		KindHeading,
		KindParagraph,
	}, ClassifierOrder())
}

func TestBlockKind_String(t *testing.T) {
	assert.Equal(t, "heading", KindHeading.String())
	assert.Equal(t, "paragraph", KindParagraph.String())
	assert.Equal(t, "bullet_list", KindBulletList.String())
	assert.Equal(t, "numbered_list", KindNumberedList.String())
	assert.Equal(t, "unknown", BlockKind(99).String())
}

// =============================================================================
// MARKDOWN TESTS
// =============================================================================

func TestMarkdown(t *testing.T) {
	doc := Document{
		Heading{Text: "Summary"},
		Paragraph{Spans: []Span{plain("Plain "), emph("bold")}},
		BulletList{Items: items("a", "b")},
		NumberedList{Items: items("x", "y")},
	}

	want := "## Summary\n\nPlain **bold**\n\n- a\n- b\n\n1. x\n2. y"
	assert.Equal(t, want, Markdown(doc))
}

func TestMarkdown_ReparsesToSameDocument(t *testing.T) {
	input := "**Coverage**\n\nThis plan has **no** waiting period.\n\n- Cashless claims\n- Free checkups\n\n1. Apply\n2. Pay"
	doc := Parse(input)

	assert.Equal(t, doc, Parse(Markdown(doc)))
}
