// Package levels declares the structural levels of each document family as
// data: how a level is numbered or recognized, which levels may nest inside
// it, and in which order its heading and number are rendered.
package levels

import (
	"regexp"
	"strings"

	"github.com/dgallion1/lawtree/internal/model"
)

// Kind describes one structural level. Kinds are immutable after the registry
// that owns them is built and may be shared between concurrent parses.
type Kind struct {
	Name string
	// Class is the output class tag the markup builder maps to an element.
	Class string

	// Number is matched against the number of a NumberedLine. Group 1, when
	// present, is the number's value.
	Number *regexp.Regexp
	// Title is matched against the normalized text of a whole line, for kinds
	// whose number is written as a title ("PART 1"). Group 1 is the value.
	Title *regexp.Regexp
	// Heading recognizes unnumbered kinds by structural signal.
	Heading func(blocks []model.Block, pos int) bool

	// HeadingFirst is set when the heading is conventionally written, and
	// rendered, before the number.
	HeadingFirst bool
	// InlineHeading is set when the text following the number on the same
	// line is the heading rather than content.
	InlineHeading bool
	// Fallback kinds accept any text line. They are tried last and never end
	// an open division.
	Fallback bool

	children []string
}

func (k *Kind) String() string { return k.Name }

// Numbered reports whether the kind is recognized by a number or title.
func (k *Kind) Numbered() bool { return k.Number != nil || k.Title != nil }

// ParseNumber matches a NumberedLine number and returns its value.
func (k *Kind) ParseNumber(num string) (string, bool) {
	if k.Number == nil {
		return "", false
	}
	return value(k.Number, strings.TrimSpace(num))
}

// ParseTitle matches a title line and returns the number's value.
func (k *Kind) ParseTitle(text string) (string, bool) {
	if k.Title == nil {
		return "", false
	}
	return value(k.Title, model.Normalize(text))
}

func value(re *regexp.Regexp, s string) (string, bool) {
	g := re.FindStringSubmatch(s)
	if g == nil {
		return "", false
	}
	for _, v := range g[1:] {
		if v != "" {
			return v, true
		}
	}
	return "", true
}

// Children returns the names of the kinds that may nest directly inside k.
func (k *Kind) Children() []string { return k.children }

// Dummy wraps blocks no kind could classify.
var Dummy = &Kind{Name: "Dummy", Class: "blockContainer"}

// Unnumbered is a plain prose leaf.
var Unnumbered = &Kind{
	Name:     "UnnumberedParagraph",
	Class:    "level",
	Fallback: true,
	Heading: func(blocks []model.Block, pos int) bool {
		_, ok := blocks[pos].(*model.TextLine)
		return ok
	},
}
