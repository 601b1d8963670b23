// Package model defines the block and run vocabulary shared by the readers,
// the enrichers and the classifier.
package model

import "strings"

// InlineKind discriminates the concrete Inline types.
type InlineKind string

const (
	InlineText  InlineKind = "text"
	InlineTab   InlineKind = "tab"
	InlineBreak InlineKind = "break"
	InlineImage InlineKind = "image"
	InlineSpan  InlineKind = "span"
)

// Inline is one formatted fragment (or non-text marker) inside a line.
type Inline interface {
	Kind() InlineKind
	// Text returns the characters this inline contributes to its line.
	Text() string
}

// Formatting holds character-level properties of a run. It is comparable so
// that runs can be merged when their formatting is identical.
type Formatting struct {
	Bold      bool    `json:"bold,omitempty"`
	Italic    bool    `json:"italic,omitempty"`
	Underline bool    `json:"underline,omitempty"`
	SmallCaps bool    `json:"smallCaps,omitempty"`
	VertAlign string  `json:"vertAlign,omitempty"` // "superscript" or "subscript"
	Font      string  `json:"font,omitempty"`
	Size      float64 `json:"size,omitempty"` // points
}

// Text is a run of characters sharing one Formatting.
type Text struct {
	Value  string
	Format Formatting
}

func (t *Text) Kind() InlineKind { return InlineText }
func (t *Text) Text() string     { return t.Value }

// IsBlank reports whether the run holds only whitespace.
func (t *Text) IsBlank() bool { return strings.TrimSpace(t.Value) == "" }

// Tab is a tab character in the source.
type Tab struct{}

func (Tab) Kind() InlineKind { return InlineTab }
func (Tab) Text() string     { return "\t" }

// LineBreak is a manual line break within a paragraph.
type LineBreak struct{}

func (LineBreak) Kind() InlineKind { return InlineBreak }
func (LineBreak) Text() string     { return "\n" }

// ImageRef points at an embedded image. It contributes no text.
type ImageRef struct {
	Src string
	Alt string
}

func (i *ImageRef) Kind() InlineKind { return InlineImage }
func (i *ImageRef) Text() string     { return "" }

// Category names the entity a Span was tagged as.
type Category string

const (
	Citation   Category = "citation"
	CaseNumber Category = "caseNumber"
	Date       Category = "date"
	Party      Category = "party"
	CourtType  Category = "courtType"
	Judge      Category = "judge"
	Lawyer     Category = "lawyer"
)

// Span is a semantic tag wrapping the original runs of a match. Enrichers treat
// an existing Span as opaque.
type Span struct {
	Category Category
	Runs     []*Text
	// Value is the normalized form: ISO date, court code, canonical citation.
	Value string
	// Role qualifies the entity, e.g. "Claimant" or "hearing".
	Role string
	// ID is set when the span is registered as a cross-reference target.
	ID string
}

func (s *Span) Kind() InlineKind { return InlineSpan }

func (s *Span) Text() string {
	var sb strings.Builder
	for _, r := range s.Runs {
		sb.WriteString(r.Value)
	}
	return sb.String()
}

// Concat returns the concatenated text of a run sequence.
func Concat(runs []Inline) string {
	var sb strings.Builder
	for _, r := range runs {
		sb.WriteString(r.Text())
	}
	return sb.String()
}

// Spans returns the spans of the given category in order of appearance.
func Spans(runs []Inline, cat Category) []*Span {
	var out []*Span
	for _, r := range runs {
		if s, ok := r.(*Span); ok && s.Category == cat {
			out = append(out, s)
		}
	}
	return out
}
