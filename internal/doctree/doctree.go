// Package doctree holds the classified document: a tree of divisions, each
// tagged with the level kind it was classified as.
package doctree

import (
	"strings"

	"github.com/dgallion1/lawtree/internal/levels"
	"github.com/dgallion1/lawtree/internal/model"
)

// Division is a node of the structural tree. A division with children is a
// branch whose blocks are split into Intro (before the first child) and WrapUp
// (after the last); a division without children is a leaf whose blocks are
// its Contents. Blocks found between two children are held by a Dummy child.
type Division struct {
	Kind *levels.Kind
	// Number is the number as written ("1.", "(a)", "PART 1"); Value is its
	// bare value ("1", "a"). Both are empty for unnumbered kinds.
	Number string
	Value  string
	// Heading is the heading text, if any.
	Heading string
	// Lead holds the blocks that carried the number and heading.
	Lead     []model.Block
	Intro    []model.Block
	Children []*Division
	WrapUp   []model.Block
}

// IsLeaf reports whether d has no children.
func (d *Division) IsLeaf() bool { return len(d.Children) == 0 }

// IsDummy reports whether d wraps unclassifiable blocks.
func (d *Division) IsDummy() bool { return d.Kind == levels.Dummy }

// Contents returns a leaf's content blocks.
func (d *Division) Contents() []model.Block {
	if !d.IsLeaf() {
		return nil
	}
	return d.Intro
}

// NewDummy wraps blocks verbatim.
func NewDummy(blocks ...model.Block) *Division {
	return &Division{Kind: levels.Dummy, Intro: blocks}
}

// Blocks returns every block held by d and its descendants in source order.
func (d *Division) Blocks() []model.Block {
	var out []model.Block
	d.collect(&out)
	return out
}

func (d *Division) collect(out *[]model.Block) {
	*out = append(*out, d.Lead...)
	*out = append(*out, d.Intro...)
	for _, c := range d.Children {
		c.collect(out)
	}
	*out = append(*out, d.WrapUp...)
}

// Text returns the text of every block under d, one line per block.
func (d *Division) Text() string {
	var lines []string
	for _, b := range d.Blocks() {
		lines = append(lines, model.AllText(b))
	}
	return strings.Join(lines, "\n")
}

// Walk visits d and its descendants depth first. Returning false from fn
// skips the children of the division just visited.
func Walk(divs []*Division, fn func(d *Division, depth int) bool) {
	walk(divs, 0, fn)
}

func walk(divs []*Division, depth int, fn func(*Division, int) bool) {
	for _, d := range divs {
		if fn(d, depth) {
			walk(d.Children, depth+1, fn)
		}
	}
}

// QuotedStructure is a block holding a self-contained tree classified from
// quoted amendment text. Open and Close are the quotation marks removed from
// the first and last quoted blocks; Appended is the text that followed the
// closing mark ("" or ";" or ", and").
type QuotedStructure struct {
	Open     string
	Close    string
	Appended string
	Contents []*Division
}

func (q *QuotedStructure) Kind() model.BlockKind { return model.BlockQuoted }

// AllText returns the quoted text with its delimiters restored.
func (q *QuotedStructure) AllText() string {
	var sb strings.Builder
	sb.WriteString(q.Open)
	for _, d := range q.Contents {
		for _, b := range d.Blocks() {
			sb.WriteString(model.AllText(b))
		}
	}
	sb.WriteString(q.Close)
	sb.WriteString(q.Appended)
	return sb.String()
}

// Document is the result of one parse.
type Document struct {
	Family string
	// Header holds the classified header (judgments) or prelims (bills).
	Header []model.Block
	// Preamble holds a bill's enacting text.
	Preamble []model.Block
	Body     []*Division
	// Schedules holds a bill's schedules.
	Schedules   []*Division
	Conclusions []model.Block
	Meta        Metadata
}

// Metadata identifies the document. Values come from the document content
// unless an override supplied them.
type Metadata struct {
	URI      string `json:"uri,omitempty" yaml:"uri"`
	Citation string `json:"citation,omitempty" yaml:"citation"`
	Court    string `json:"court,omitempty" yaml:"court"`
	Date     string `json:"date,omitempty" yaml:"date"`
	Name     string `json:"name,omitempty" yaml:"name"`
	Title    string `json:"title,omitempty" yaml:"title"`
}

// Blocks returns every block of the document in source order.
func (doc *Document) Blocks() []model.Block {
	var out []model.Block
	out = append(out, doc.Header...)
	out = append(out, doc.Preamble...)
	for _, d := range doc.Body {
		out = append(out, d.Blocks()...)
	}
	for _, d := range doc.Schedules {
		out = append(out, d.Blocks()...)
	}
	return append(out, doc.Conclusions...)
}

// Stats counts the divisions of a document by kind.
func (doc *Document) Stats() map[string]int {
	counts := make(map[string]int)
	fn := func(d *Division, _ int) bool {
		counts[d.Kind.Name]++
		return true
	}
	Walk(doc.Body, fn)
	Walk(doc.Schedules, fn)
	return counts
}
