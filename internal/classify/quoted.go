package classify

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dgallion1/lawtree/internal/doctree"
	"github.com/dgallion1/lawtree/internal/model"
	"github.com/dgallion1/lawtree/internal/runs"
)

// maxQuotedBlocks bounds the search for the closing quotation mark.
const maxQuotedBlocks = 200

var (
	// amendmentCue ends a line that introduces quoted amendment text:
	// "for subsection (2) substitute—", "after paragraph (b) insert". A dash
	// alone is not enough; "In this Act—" introduces definitions.
	amendmentCue = regexp.MustCompile(`(?i)\b(?:insert|inserted|substitute|substituted|add|added|read)\s*[—–:-]?\s*$`)
	// closing mark and the short text allowed to follow it
	closeQuote = regexp.MustCompile(`([”’"])((?:[.;,]|,?\s+(?:and|or))?[.;,]?)\s*$`)
)

const openQuotes = "“‘\""

// quoted recognizes a quoted structure starting at pos: the previous line is
// an amendment cue and this line opens with a quotation mark. The enclosed
// blocks are classified independently, so their numbering never joins the
// surrounding ancestry.
func (c *Classifier) quoted(blocks []model.Block, pos int) (*doctree.QuotedStructure, int, bool) {
	if !c.opts.Quotes || pos == 0 {
		return nil, pos, false
	}
	cueLine, ok := model.LineOf(blocks[pos-1])
	if !ok || !amendmentCue.MatchString(cueLine.Text()) {
		return nil, pos, false
	}
	open, ok := opening(blocks[pos])
	if !ok {
		return nil, pos, false
	}
	last := -1
	var close, appended string
	for j := pos; j < len(blocks) && j < pos+maxQuotedBlocks; j++ {
		l, ok := model.LineOf(blocks[j])
		if !ok {
			continue
		}
		text := strings.TrimRight(l.Text(), " \t")
		if j == pos {
			text = text[len(leadingSpace(text))+len(open):]
		} else if !continues(l, cueLine) {
			break
		}
		m := closeQuote.FindStringSubmatchIndex(text)
		body := text
		if m != nil {
			body = text[:m[0]]
		}
		if j == pos && closes(body, open) {
			// "“court” means the High Court;" quotes a term, not an amendment.
			return nil, pos, false
		}
		if m != nil {
			last, close, appended = j, text[m[2]:m[3]], text[m[4]:m[5]]
			break
		}
	}
	if last < 0 {
		return nil, pos, false
	}

	inner := make([]model.Block, last-pos+1)
	copy(inner, blocks[pos:last+1])
	inner[0] = trimStart(inner[0], len(open))
	inner[len(inner)-1] = trimEnd(inner[len(inner)-1], len(close)+len(appended))

	sub := New(c.reg.Quoted(), Options{Peel: c.opts.Peel, Quotes: true})
	divs, _ := sub.Classify(inner)
	return &doctree.QuotedStructure{Open: open, Close: close, Appended: appended, Contents: divs}, last + 1, true
}

// continues reports whether a line after the first can belong to quoted text
// introduced by cue: it opens with a quotation mark or is indented further
// than the cue.
func continues(l, cue *model.TextLine) bool {
	if l.Indent.Left > cue.Indent.Left {
		return true
	}
	_, ok := opening(l)
	return ok
}

var closeFor = map[string]rune{"“": '”', "‘": '’', "\"": '"'}

// closes reports whether the quotation opened by open is closed within text,
// which follows the opening mark. Nested quotations of the same kind are
// counted; an apostrophe inside a word does not close.
func closes(text, open string) bool {
	o, _ := utf8.DecodeRuneInString(open)
	cl := closeFor[open]
	depth := 1
	prev := ' '
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		i += size
		next, _ := utf8.DecodeRuneInString(text[i:])
		switch {
		case o == cl && r == o:
			if unicode.IsSpace(prev) || strings.ContainsRune("([", prev) {
				depth++
			} else {
				depth--
			}
		case r == o:
			depth++
		case r == cl && !unicode.IsLetter(next):
			depth--
		}
		if depth == 0 {
			return true
		}
		prev = r
	}
	return false
}

func opening(b model.Block) (string, bool) {
	l, ok := b.(*model.TextLine)
	if !ok {
		return "", false
	}
	text := l.Text()
	text = text[len(leadingSpace(text)):]
	r, size := utf8.DecodeRuneInString(text)
	if size == 0 || !strings.ContainsRune(openQuotes, r) {
		return "", false
	}
	return text[:size], true
}

func leadingSpace(s string) string {
	return s[:len(s)-len(strings.TrimLeft(s, " \t"))]
}

// trimStart removes n bytes of quotation mark following any leading
// whitespace of a line. The whitespace stays in place.
func trimStart(b model.Block, n int) model.Block {
	l, ok := b.(*model.TextLine)
	if !ok {
		return b
	}
	out := make([]model.Inline, 0, len(l.Contents))
	skip := n
	for _, r := range l.Contents {
		t, ok := r.(*model.Text)
		if skip == 0 || !ok {
			out = append(out, r)
			continue
		}
		lead := leadingSpace(t.Value)
		if len(lead) == len(t.Value) {
			out = append(out, r)
			continue
		}
		cut := min(skip, len(t.Value)-len(lead))
		skip -= cut
		if v := lead + t.Value[len(lead)+cut:]; v != "" {
			out = append(out, &model.Text{Value: v, Format: t.Format})
		}
	}
	return l.WithContents(runs.Merge(out))
}

// trimEnd removes the last n bytes of text, ignoring trailing whitespace and
// tabs, from a line or numbered line.
func trimEnd(b model.Block, n int) model.Block {
	l, ok := model.LineOf(b)
	if !ok {
		return b
	}
	contents := runs.TrimTrailing(l.Contents)
	out := make([]model.Inline, len(contents))
	copy(out, contents)
	skip := n
	for i := len(out) - 1; i >= 0 && skip > 0; i-- {
		t, ok := out[i].(*model.Text)
		if !ok {
			break
		}
		v := strings.TrimRight(t.Value, " \t")
		cut := min(skip, len(v))
		skip -= cut
		if v = v[:len(v)-cut]; v == "" {
			out = append(out[:i], out[i+1:]...)
			continue
		}
		out[i] = &model.Text{Value: v, Format: t.Format}
	}
	if nl, ok := b.(*model.NumberedLine); ok {
		cp := *nl
		cp.Contents = out
		return &cp
	}
	return l.WithContents(out)
}
