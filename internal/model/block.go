package model

import "strings"

// BlockKind discriminates the concrete Block types.
type BlockKind string

const (
	BlockLine     BlockKind = "line"
	BlockNumbered BlockKind = "numbered"
	BlockTable    BlockKind = "table"
	BlockUnknown  BlockKind = "unknown"
	BlockQuoted   BlockKind = "quoted"
)

// Block is a paragraph-level content unit. Blocks are immutable once produced.
type Block interface {
	Kind() BlockKind
}

// Alignment is the paragraph justification.
type Alignment string

const (
	AlignNone    Alignment = ""
	AlignLeft    Alignment = "left"
	AlignCenter  Alignment = "center"
	AlignRight   Alignment = "right"
	AlignJustify Alignment = "justify"
)

// Indent holds paragraph indentation in points.
type Indent struct {
	Left      float64 `json:"left,omitempty"`
	Right     float64 `json:"right,omitempty"`
	FirstLine float64 `json:"firstLine,omitempty"`
}

// TextLine is an ordinary paragraph.
type TextLine struct {
	Style     string
	Alignment Alignment
	Indent    Indent
	Contents  []Inline
}

func (l *TextLine) Kind() BlockKind { return BlockLine }

// Text returns the concatenated text of the line's contents.
func (l *TextLine) Text() string { return Concat(l.Contents) }

// WithContents returns a copy of the line carrying different contents.
func (l *TextLine) WithContents(contents []Inline) *TextLine {
	cp := *l
	cp.Contents = contents
	return &cp
}

// Bold reports whether every visible text run in the line is bold.
func (l *TextLine) Bold() bool { return allRuns(l.Contents, func(f Formatting) bool { return f.Bold }) }

// Italic reports whether every visible text run in the line is italic.
func (l *TextLine) Italic() bool {
	return allRuns(l.Contents, func(f Formatting) bool { return f.Italic })
}

func allRuns(contents []Inline, pred func(Formatting) bool) bool {
	seen := false
	for _, in := range contents {
		switch r := in.(type) {
		case *Text:
			if r.IsBlank() {
				continue
			}
			if !pred(r.Format) {
				return false
			}
			seen = true
		case *Span:
			for _, t := range r.Runs {
				if t.IsBlank() {
					continue
				}
				if !pred(t.Format) {
					return false
				}
				seen = true
			}
		}
	}
	return seen
}

// NumberedLine is a paragraph with a leading number, either generated by the
// word processor's list numbering or peeled from the start of the text.
type NumberedLine struct {
	Number *Text
	TextLine
}

func (n *NumberedLine) Kind() BlockKind { return BlockNumbered }

// Table is a grid of cells, each holding its own blocks.
type Table struct {
	Rows []Row
}

type Row struct {
	Cells []Cell
}

type Cell struct {
	Blocks []Block
}

func (t *Table) Kind() BlockKind { return BlockTable }

// Unknown passes through content the reader could not represent.
type Unknown struct {
	Name string
}

func (u *Unknown) Kind() BlockKind { return BlockUnknown }

// Texter is implemented by blocks that can report their own text.
type Texter interface {
	AllText() string
}

// AllText returns every character a block contributes, number included.
func AllText(b Block) string {
	switch v := b.(type) {
	case *TextLine:
		return v.Text()
	case *NumberedLine:
		return v.Number.Value + v.Text()
	case *Table:
		var sb strings.Builder
		for _, row := range v.Rows {
			for _, cell := range row.Cells {
				for _, inner := range cell.Blocks {
					sb.WriteString(AllText(inner))
				}
			}
		}
		return sb.String()
	case Texter:
		return v.AllText()
	}
	return ""
}

// LineOf returns the TextLine body of a line or numbered line.
func LineOf(b Block) (*TextLine, bool) {
	switch v := b.(type) {
	case *TextLine:
		return v, true
	case *NumberedLine:
		return &v.TextLine, true
	}
	return nil, false
}

// Normalize collapses runs of whitespace (tabs and breaks included) and trims.
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
