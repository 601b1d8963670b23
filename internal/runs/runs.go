// Package runs holds the formatting-preserving primitives every enricher is
// built from. None of them mutate their input.
package runs

import (
	"strings"

	"github.com/dgallion1/lawtree/internal/model"
)

// Merge coalesces consecutive Text runs with identical formatting.
// Merge(Merge(x)) equals Merge(x).
func Merge(in []model.Inline) []model.Inline {
	out := make([]model.Inline, 0, len(in))
	for _, r := range in {
		t, ok := r.(*model.Text)
		if !ok {
			out = append(out, r)
			continue
		}
		if t.Value == "" {
			continue
		}
		if n := len(out); n > 0 {
			if prev, ok := out[n-1].(*model.Text); ok && prev.Format == t.Format {
				out[n-1] = &model.Text{Value: prev.Value + t.Value, Format: t.Format}
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

// TrimTrailing drops trailing tabs and blank text runs from a line.
func TrimTrailing(in []model.Inline) []model.Inline {
	end := len(in)
	for end > 0 {
		switch r := in[end-1].(type) {
		case model.Tab:
			end--
			continue
		case *model.Text:
			if r.IsBlank() {
				end--
				continue
			}
		}
		break
	}
	return in[:end:end]
}

// Cut splits t around the byte range [start, end). Empty segments come back nil.
func Cut(t *model.Text, start, end int) (before, match, after *model.Text) {
	if start > 0 {
		before = &model.Text{Value: t.Value[:start], Format: t.Format}
	}
	if end > start {
		match = &model.Text{Value: t.Value[start:end], Format: t.Format}
	}
	if end < len(t.Value) {
		after = &model.Text{Value: t.Value[end:], Format: t.Format}
	}
	return before, match, after
}

// SplitAt returns up to three runs (before, matched, after) that all inherit
// t's formatting. Empty segments are omitted.
func SplitAt(t *model.Text, start, end int) []*model.Text {
	before, match, after := Cut(t, start, end)
	out := make([]*model.Text, 0, 3)
	for _, seg := range []*model.Text{before, match, after} {
		if seg != nil {
			out = append(out, seg)
		}
	}
	return out
}

// Replace returns a copy of in with the n runs starting at i replaced by with.
func Replace(in []model.Inline, i, n int, with ...model.Inline) []model.Inline {
	out := make([]model.Inline, 0, len(in)-n+len(with))
	out = append(out, in[:i]...)
	out = append(out, with...)
	out = append(out, in[i+n:]...)
	return out
}

// Wrap splits run i at [start, end) and replaces the matched segment with the
// inline built by tag.
func Wrap(in []model.Inline, i, start, end int, tag func(*model.Text) model.Inline) []model.Inline {
	t := in[i].(*model.Text)
	before, match, after := Cut(t, start, end)
	with := make([]model.Inline, 0, 3)
	if before != nil {
		with = append(with, before)
	}
	with = append(with, tag(match))
	if after != nil {
		with = append(with, after)
	}
	return Replace(in, i, 1, with...)
}

// Interstitial reports whether a run can sit between the parts of a
// multi-run match without breaking it: blank text, images and line breaks.
func Interstitial(r model.Inline) bool {
	switch v := r.(type) {
	case *model.Text:
		return v.IsBlank()
	case *model.ImageRef, model.LineBreak:
		return true
	}
	return false
}

// Significant returns the indexes of the runs that are not interstitial.
func Significant(in []model.Inline) []int {
	idx := make([]int, 0, len(in))
	for i, r := range in {
		if !Interstitial(r) {
			idx = append(idx, i)
		}
	}
	return idx
}

// TextAt returns run i as Text when it is one.
func TextAt(in []model.Inline, i int) (*model.Text, bool) {
	t, ok := in[i].(*model.Text)
	return t, ok
}

const cutset = " \t\u00a0"

// Trimmed returns the run's text with surrounding whitespace removed and the
// byte offsets of the trimmed region within the original value.
func Trimmed(t *model.Text) (s string, start, end int) {
	start = len(t.Value) - len(strings.TrimLeft(t.Value, cutset))
	end = len(strings.TrimRight(t.Value, cutset))
	if end < start {
		end = start
	}
	return t.Value[start:end], start, end
}
