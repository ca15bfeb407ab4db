// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package document

// =============================================================================
// BLOCK TYPES
// =============================================================================

// BlockKind identifies the variant of a Block.
type BlockKind int

const (
	KindHeading BlockKind = iota
	KindParagraph
	KindBulletList
	KindNumberedList
)

// String returns the string representation of the kind.
func (k BlockKind) String() string {
	switch k {
	case KindHeading:
		return "heading"
	case KindParagraph:
		return "paragraph"
	case KindBulletList:
		return "bullet_list"
	case KindNumberedList:
		return "numbered_list"
	default:
		return "unknown"
	}
}

// Block is one typed unit of document structure.
// The concrete type is one of Heading, Paragraph, BulletList or NumberedList.
type Block interface {
	Kind() BlockKind
}

// Item is a single list entry.
type Item []Span

// Heading is a section title.
type Heading struct {
	Text string
}

// Paragraph is a run of inline spans.
type Paragraph struct {
	Spans []Span
}

// BulletList is an unordered list.
type BulletList struct {
	Items []Item
}

// NumberedList is an ordered list.
type NumberedList struct {
	Items []Item
}

func (Heading) Kind() BlockKind      { return KindHeading }
func (Paragraph) Kind() BlockKind    { return KindParagraph }
func (BulletList) Kind() BlockKind   { return KindBulletList }
func (NumberedList) Kind() BlockKind { return KindNumberedList }

// Document is an ordered list of blocks.
type Document []Block

// Len returns the number of blocks.
func (d Document) Len() int {
	return len(d)
}

// Kinds returns the kind of every block, in order.
func (d Document) Kinds() []BlockKind {
	kinds := make([]BlockKind, len(d))
	for i, b := range d {
		kinds[i] = b.Kind()
	}
	return kinds
}
