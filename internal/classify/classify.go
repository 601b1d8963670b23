// Package classify turns a flat block stream into a tree of divisions by
// recursive descent over a level registry. Classification is total: a block
// no kind accepts is wrapped in a Dummy division, so every block ends up in
// exactly one place in the tree.
package classify

import (
	"errors"
	"regexp"

	"github.com/dgallion1/lawtree/internal/doctree"
	"github.com/dgallion1/lawtree/internal/levels"
	"github.com/dgallion1/lawtree/internal/model"
)

// ErrMissingAnchor is returned by the family parsers when a block the family
// cannot do without (a header, a title) is absent.
var ErrMissingAnchor = errors.New("mandatory anchor missing")

// Options adjusts a Classifier to a document family.
type Options struct {
	// Stop ends classification at a family marker. The marker is not consumed.
	Stop func(b model.Block) bool
	// Peel splits a leading manual number off a line. Group 1, or the first
	// non-empty group, is the number.
	Peel *regexp.Regexp
	// Quotes enables re-entrant classification of quoted amendment text.
	Quotes bool
}

// Classifier is safe for concurrent use: all state of a run lives on the
// stack of Classify.
type Classifier struct {
	reg  *levels.Registry
	opts Options
}

func New(reg *levels.Registry, opts Options) *Classifier {
	return &Classifier{reg: reg, opts: opts}
}

// Registry returns the registry the classifier works from.
func (c *Classifier) Registry() *levels.Registry { return c.reg }

// frame is one open division on the ancestry path.
type frame struct {
	kind   *levels.Kind
	value  string
	indent float64
}

// Classify consumes blocks from the start until the end of input or a Stop
// marker, and returns the top-level divisions with the number of blocks
// consumed.
func (c *Classifier) Classify(blocks []model.Block) ([]*doctree.Division, int) {
	if c.opts.Peel != nil {
		blocks = PeelAll(blocks, c.opts.Peel)
	}
	var out []*doctree.Division
	pos := 0
	for pos < len(blocks) {
		if c.stopAt(blocks[pos]) {
			break
		}
		if q, next, ok := c.quoted(blocks, pos); ok {
			out = append(out, doctree.NewDummy(q))
			pos = next
			continue
		}
		if d, next, ok := c.division(blocks, pos, nil); ok {
			out = append(out, d)
			pos = next
			continue
		}
		out = append(out, doctree.NewDummy(blocks[pos]))
		pos++
	}
	return out, pos
}

func (c *Classifier) stopAt(b model.Block) bool {
	return c.opts.Stop != nil && c.opts.Stop(b)
}

// division tries the kinds valid under the innermost open division, most
// specific first. A candidate whose division turns out empty is dropped and
// the next one tried; the cursor is a value, so dropping it is the rollback.
func (c *Classifier) division(blocks []model.Block, pos int, stack []frame) (*doctree.Division, int, bool) {
	var parent *levels.Kind
	if len(stack) > 0 {
		parent = stack[len(stack)-1].kind
	}
	for _, kind := range c.reg.Candidates(parent) {
		m, ok := c.match(kind, blocks, pos)
		if !ok {
			continue
		}
		d := &doctree.Division{
			Kind:    kind,
			Number:  m.number,
			Value:   m.value,
			Heading: m.heading,
			Lead:    m.lead,
			Intro:   m.intro,
		}
		next := m.next
		if !kind.Fallback {
			inner := append(stack[:len(stack):len(stack)], frame{kind: kind, value: m.value, indent: m.indent})
			next = c.body(d, blocks, next, inner)
		}
		if !usable(d, m) {
			continue
		}
		return d, next, true
	}
	return nil, pos, false
}

func usable(d *doctree.Division, m match) bool {
	return d.Heading != "" || m.content || len(d.Intro) > 0 || len(d.Children) > 0 || len(d.WrapUp) > 0
}

// body accumulates the blocks after a division's lead: children where a
// child kind matches, content otherwise, until a terminating block.
func (c *Classifier) body(d *doctree.Division, blocks []model.Block, pos int, stack []frame) int {
	self := stack[len(stack)-1]
	for pos < len(blocks) {
		b := blocks[pos]
		if c.stopAt(b) {
			break
		}
		if q, next, ok := c.quoted(blocks, pos); ok {
			addContent(d, q)
			pos = next
			continue
		}
		if c.ends(blocks, pos, stack) {
			break
		}
		if child, next, ok := c.division(blocks, pos, stack); ok {
			// Prose between two children stays between them.
			if len(d.WrapUp) > 0 {
				d.Children = append(d.Children, doctree.NewDummy(d.WrapUp...))
				d.WrapUp = nil
			}
			d.Children = append(d.Children, child)
			pos = next
			continue
		}
		if dedented(b, self.indent) {
			break
		}
		addContent(d, b)
		pos++
	}
	return pos
}

func addContent(d *doctree.Division, b model.Block) {
	if len(d.Children) == 0 {
		d.Intro = append(d.Intro, b)
		return
	}
	d.WrapUp = append(d.WrapUp, b)
}

// ends reports whether the block at pos opens a sibling of an open division
// or of one of its ancestors. When the block could also open a child of the
// innermost division ("(i)" as letter or numeral), only a number continuing
// the sequence at that level counts as a sibling.
func (c *Classifier) ends(blocks []model.Block, pos int, stack []frame) bool {
	asChild := false
	for _, kind := range c.reg.Candidates(stack[len(stack)-1].kind) {
		if _, ok := c.match(kind, blocks, pos); ok {
			asChild = true
			break
		}
	}
	for k := len(stack) - 1; k >= 0; k-- {
		var parent *levels.Kind
		if k > 0 {
			parent = stack[k-1].kind
		}
		for _, kind := range c.reg.Candidates(parent) {
			if kind.Fallback {
				continue
			}
			m, ok := c.match(kind, blocks, pos)
			if !ok {
				continue
			}
			if !asChild {
				return true
			}
			if kind == stack[k].kind && levels.Follows(stack[k].value, m.value) {
				return true
			}
		}
	}
	return false
}

const indentTolerance = 1.0

// dedented reports whether an unnumbered line sits left of the number of the
// division it would otherwise join.
func dedented(b model.Block, indent float64) bool {
	l, ok := b.(*model.TextLine)
	if !ok || indent <= 0 {
		return false
	}
	return l.Indent.Left+indentTolerance < indent
}
