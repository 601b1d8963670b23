package runs

import (
	"strings"

	"github.com/dgallion1/lawtree/internal/model"
)

// TextRun returns the index of the last run in the unbroken sequence of Text
// runs starting at i, or -1 when run i is not Text.
func TextRun(in []model.Inline, i int) int {
	if _, ok := in[i].(*model.Text); !ok {
		return -1
	}
	j := i
	for j+1 < len(in) {
		if _, ok := in[j+1].(*model.Text); !ok {
			break
		}
		j++
	}
	return j
}

// Joined concatenates the text of runs i..j inclusive.
func Joined(in []model.Inline, i, j int) string {
	var sb strings.Builder
	for k := i; k <= j; k++ {
		sb.WriteString(in[k].Text())
	}
	return sb.String()
}

// AllText reports whether runs i..j inclusive are all Text.
func AllText(in []model.Inline, i, j int) bool {
	for k := i; k <= j; k++ {
		if _, ok := in[k].(*model.Text); !ok {
			return false
		}
	}
	return true
}

// WrapRange wraps the byte range [start, end) of the joined text of the Text
// runs i..j inclusive. Every run touched by the range is split at the range
// boundaries so that the pieces inside keep their own formatting.
func WrapRange(in []model.Inline, i, j, start, end int, tag func([]*model.Text) model.Inline) []model.Inline {
	var before, after []model.Inline
	var inside []*model.Text
	off := 0
	for k := i; k <= j; k++ {
		t := in[k].(*model.Text)
		lo := off
		off += len(t.Value)
		b, m, a := Cut(t, clamp(start-lo, 0, len(t.Value)), clamp(end-lo, 0, len(t.Value)))
		if b != nil {
			before = append(before, b)
		}
		if m != nil {
			inside = append(inside, m)
		}
		if a != nil {
			after = append(after, a)
		}
	}
	with := make([]model.Inline, 0, len(before)+1+len(after))
	with = append(with, before...)
	with = append(with, tag(inside))
	with = append(with, after...)
	return Replace(in, i, j-i+1, with...)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
