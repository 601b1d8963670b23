package levels

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dgallion1/lawtree/internal/model"
)

const maxHeadingWords = 20

// HeadingLike reports whether b looks like a heading: a short, unnumbered
// line without closing punctuation that is bold, italic, centered or set in
// capitals.
func HeadingLike(b model.Block) bool {
	l, ok := b.(*model.TextLine)
	if !ok {
		return false
	}
	text := model.Normalize(l.Text())
	if text == "" || len(strings.Fields(text)) > maxHeadingWords {
		return false
	}
	if closing(text, ".;:,") {
		return false
	}
	return l.Bold() || l.Italic() || l.Alignment == model.AlignCenter || upper(text)
}

// ShortText reports whether s could be a heading written after a number on
// the same line.
func ShortText(s string) bool {
	s = model.Normalize(s)
	if s == "" || len(strings.Fields(s)) > maxHeadingWords/2 {
		return false
	}
	return !closing(s, ".;:,—")
}

func closing(s, marks string) bool {
	r, _ := utf8.DecodeLastRuneInString(s)
	return strings.ContainsRune(marks, r)
}

func upper(s string) bool {
	letters := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			if !unicode.IsUpper(r) {
				return false
			}
			letters++
		}
	}
	return letters > 0
}
