package classify

import (
	"regexp"

	"github.com/dgallion1/lawtree/internal/model"
	"github.com/dgallion1/lawtree/internal/runs"
)

// Peel turns a line starting with a typed number ("12. The appeal") into a
// NumberedLine. The number must open the line's first run; re's first
// non-empty group is the number. Other blocks are returned unchanged.
func Peel(b model.Block, re *regexp.Regexp) model.Block {
	l, ok := b.(*model.TextLine)
	if !ok || len(l.Contents) == 0 {
		return b
	}
	first, ok := l.Contents[0].(*model.Text)
	if !ok {
		return b
	}
	loc := re.FindStringSubmatchIndex(first.Value)
	if loc == nil {
		return b
	}
	start, end := -1, -1
	for g := 1; g < len(loc)/2; g++ {
		if loc[2*g] >= 0 && loc[2*g+1] > loc[2*g] {
			start, end = loc[2*g], loc[2*g+1]
			break
		}
	}
	if start != 0 {
		return b
	}
	_, num, rest := runs.Cut(first, start, end)
	contents := make([]model.Inline, 0, len(l.Contents))
	if rest != nil {
		contents = append(contents, rest)
	}
	contents = append(contents, l.Contents[1:]...)
	return &model.NumberedLine{Number: num, TextLine: *l.WithContents(contents)}
}

// PeelAll applies Peel to every block.
func PeelAll(blocks []model.Block, re *regexp.Regexp) []model.Block {
	out := make([]model.Block, len(blocks))
	for i, b := range blocks {
		out[i] = Peel(b, re)
	}
	return out
}
