package classify

import (
	"strings"

	"github.com/dgallion1/lawtree/internal/levels"
	"github.com/dgallion1/lawtree/internal/model"
)

// match is what a kind recognized at a position: one or two lead blocks
// carrying the number and heading.
type match struct {
	number, value, heading string
	lead                   []model.Block
	intro                  []model.Block
	// content is set when a lead block also carries body text.
	content bool
	indent  float64
	next    int
}

func (c *Classifier) match(kind *levels.Kind, blocks []model.Block, pos int) (match, bool) {
	switch {
	case kind.Numbered() && kind.HeadingFirst:
		if pos+1 >= len(blocks) || !c.headingAt(blocks, pos) {
			return match{}, false
		}
		m, ok := c.numberAt(kind, blocks, pos+1, false)
		if !ok {
			return match{}, false
		}
		m.heading = lineText(blocks[pos])
		m.lead = append([]model.Block{blocks[pos]}, m.lead...)
		return m, true
	case kind.Numbered():
		return c.numberAt(kind, blocks, pos, true)
	case kind.Heading != nil:
		if !kind.Heading(blocks, pos) {
			return match{}, false
		}
		if kind.Fallback {
			return match{intro: []model.Block{blocks[pos]}, next: pos + 1}, true
		}
		return match{heading: lineText(blocks[pos]), lead: []model.Block{blocks[pos]}, next: pos + 1}, true
	}
	return match{}, false
}

// numberAt recognizes a numbered line or a title line. With trailing set, a
// title may be followed by a separate heading line.
func (c *Classifier) numberAt(kind *levels.Kind, blocks []model.Block, pos int, trailing bool) (match, bool) {
	b := blocks[pos]
	if kind.Number != nil {
		n, ok := b.(*model.NumberedLine)
		if !ok {
			return match{}, false
		}
		v, ok := kind.ParseNumber(n.Number.Value)
		if !ok {
			return match{}, false
		}
		m := match{
			number: strings.TrimSpace(n.Number.Value),
			value:  v,
			lead:   []model.Block{n},
			indent: n.Indent.Left,
			next:   pos + 1,
		}
		body := model.Normalize(n.Text())
		if kind.InlineHeading && levels.ShortText(body) {
			m.heading = body
		} else {
			m.content = body != ""
		}
		return m, true
	}
	l, ok := b.(*model.TextLine)
	if !ok {
		return match{}, false
	}
	v, ok := kind.ParseTitle(l.Text())
	if !ok {
		return match{}, false
	}
	m := match{number: lineText(l), value: v, lead: []model.Block{l}, next: pos + 1}
	if trailing && pos+1 < len(blocks) && c.headingAt(blocks, pos+1) {
		m.heading = lineText(blocks[pos+1])
		m.lead = append(m.lead, blocks[pos+1])
		m.next++
	}
	return m, true
}

// headingAt reports whether the block at pos can serve as the separate
// heading of a title: heading-like, and not itself a title of any kind.
func (c *Classifier) headingAt(blocks []model.Block, pos int) bool {
	b := blocks[pos]
	if !levels.HeadingLike(b) {
		return false
	}
	text := lineText(b)
	for _, k := range c.reg.Kinds {
		if _, ok := k.ParseTitle(text); ok {
			return false
		}
	}
	return true
}

func lineText(b model.Block) string {
	if l, ok := model.LineOf(b); ok {
		return model.Normalize(l.Text())
	}
	return ""
}
