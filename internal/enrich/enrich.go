// Package enrich tags semantically significant spans (citations, dates, case
// numbers, parties, courts, judges, lawyers) inside a line's runs. Every
// enricher returns a new run sequence whose concatenated text is identical to
// its input; spans produced by an earlier stage are never matched again.
package enrich

import (
	"regexp"
	"strings"

	"github.com/dgallion1/lawtree/internal/model"
	"github.com/dgallion1/lawtree/internal/runs"
)

// Enricher rewrites one line's runs.
type Enricher interface {
	Enrich(line []model.Inline) []model.Inline
}

// Func adapts a plain function to Enricher.
type Func func(line []model.Inline) []model.Inline

func (f Func) Enrich(line []model.Inline) []model.Inline { return f(line) }

// Pipeline is a named, ordered list of enrichers applied left to right.
type Pipeline struct {
	Name   string
	stages []Enricher
}

// NewPipeline builds a pipeline. Merging adjacent runs and trimming trailing
// whitespace always run first and are not listed in stages.
func NewPipeline(name string, stages ...Enricher) *Pipeline {
	return &Pipeline{Name: name, stages: stages}
}

// Enrich runs the line through every stage. Stages see the merged, trimmed
// view of the line; the trimmed tail is re-attached afterwards so the text of
// the line is unchanged.
func (p *Pipeline) Enrich(line []model.Inline) []model.Inline {
	merged := runs.Merge(line)
	body := runs.TrimTrailing(merged)
	tail := merged[len(body):]
	out := body
	for _, s := range p.stages {
		out = s.Enrich(out)
	}
	if len(tail) == 0 {
		return out
	}
	res := make([]model.Inline, 0, len(out)+len(tail))
	res = append(res, out...)
	return append(res, tail...)
}

// Block enriches a line, numbered line, or every line inside a table.
// Other blocks are returned as they are.
func (p *Pipeline) Block(b model.Block) model.Block {
	switch v := b.(type) {
	case *model.TextLine:
		return v.WithContents(p.Enrich(v.Contents))
	case *model.NumberedLine:
		cp := *v
		cp.Contents = p.Enrich(v.Contents)
		return &cp
	case *model.Table:
		out := &model.Table{Rows: make([]model.Row, len(v.Rows))}
		for i, row := range v.Rows {
			cells := make([]model.Cell, len(row.Cells))
			for j, cell := range row.Cells {
				cells[j] = model.Cell{Blocks: p.Blocks(cell.Blocks)}
			}
			out.Rows[i] = model.Row{Cells: cells}
		}
		return out
	}
	return b
}

// Blocks enriches each block in order.
func (p *Pipeline) Blocks(bs []model.Block) []model.Block {
	out := make([]model.Block, len(bs))
	for i, b := range bs {
		out[i] = p.Block(b)
	}
	return out
}

// Rule rewrites a line given the indexes of its significant runs. It reports
// false when the layout does not match, in which case the line is left alone.
type Rule func(line []model.Inline, at []int) ([]model.Inline, bool)

// Rules dispatches a line to the rule written for its width, counted in
// significant runs. Each width admits different layouts, so each gets its own
// code path. A nil rule means the width is not handled.
type Rules struct {
	One   Rule
	Two   Rule
	Three Rule
	Many  Rule
}

func (r Rules) Enrich(line []model.Inline) []model.Inline {
	at := runs.Significant(line)
	var rule Rule
	switch len(at) {
	case 0:
		return line
	case 1:
		rule = r.One
	case 2:
		rule = r.Two
	case 3:
		rule = r.Three
	default:
		rule = r.Many
	}
	if rule == nil {
		return line
	}
	if out, ok := rule(line, at); ok {
		return out
	}
	return line
}

// textOf returns the trimmed text of run i, or "" when it is not Text.
func textOf(line []model.Inline, i int) string {
	t, ok := line[i].(*model.Text)
	if !ok {
		return ""
	}
	s, _, _ := runs.Trimmed(t)
	return s
}

func isTab(line []model.Inline, i int) bool {
	_, ok := line[i].(model.Tab)
	return ok
}

// wrapRun wraps the trimmed text of run i.
func wrapRun(line []model.Inline, i int, tag func([]*model.Text) model.Inline) []model.Inline {
	_, start, end := runs.Trimmed(line[i].(*model.Text))
	return runsWrap(line, i, start, end, tag)
}

func runsWrap(line []model.Inline, i, start, end int, tag func([]*model.Text) model.Inline) []model.Inline {
	return runs.Wrap(line, i, start, end, func(m *model.Text) model.Inline { return tag([]*model.Text{m}) })
}

// wrapRuns wraps the trimmed text of the Text runs i..j. It fails when a
// non-Text run sits between them.
func wrapRuns(line []model.Inline, i, j int, tag func([]*model.Text) model.Inline) ([]model.Inline, bool) {
	return wrapRunsTrim(line, i, j, "", tag)
}

// wrapRunsTrim is wrapRuns that also leaves trailing characters from cut
// (typically a full stop) outside the span.
func wrapRunsTrim(line []model.Inline, i, j int, cut string, tag func([]*model.Text) model.Inline) ([]model.Inline, bool) {
	if !runs.AllText(line, i, j) {
		return nil, false
	}
	_, start, _ := runs.Trimmed(line[i].(*model.Text))
	last := line[j].(*model.Text)
	_, lastStart, lastEnd := runs.Trimmed(last)
	if cut != "" {
		lastEnd = lastStart + len(strings.TrimRight(last.Value[lastStart:lastEnd], cut))
	}
	end := len(runs.Joined(line, i, j-1)) + lastEnd
	if end <= start {
		return nil, false
	}
	return runs.WrapRange(line, i, j, start, end, tag), true
}

func span(cat model.Category, value, role string) func([]*model.Text) model.Inline {
	return func(parts []*model.Text) model.Inline {
		return &model.Span{Category: cat, Runs: parts, Value: value, Role: role}
	}
}

// stretch is a match located inside an unbroken sequence of Text runs.
type stretch struct {
	i, j       int
	start, end int
	groups     []string
}

// find looks for re in each unbroken sequence of Text runs, left to right.
// Spans and other non-Text runs split the sequences, so text already tagged
// is never matched again.
func find(line []model.Inline, re *regexp.Regexp) (stretch, bool) {
	for i := 0; i < len(line); i++ {
		j := runs.TextRun(line, i)
		if j < 0 {
			continue
		}
		text := runs.Joined(line, i, j)
		if loc := re.FindStringSubmatchIndex(text); loc != nil {
			groups := make([]string, len(loc)/2)
			for g := range groups {
				if loc[2*g] >= 0 {
					groups[g] = text[loc[2*g]:loc[2*g+1]]
				}
			}
			return stretch{i: i, j: j, start: loc[0], end: loc[1], groups: groups}, true
		}
		i = j
	}
	return stretch{}, false
}

// group narrows a stretch to submatch g.
func (s stretch) group(line []model.Inline, re *regexp.Regexp, g int) stretch {
	text := runs.Joined(line, s.i, s.j)
	loc := re.FindStringSubmatchIndex(text)
	if loc == nil || loc[2*g] < 0 {
		return s
	}
	s.start, s.end = loc[2*g], loc[2*g+1]
	return s
}

func (s stretch) wrap(line []model.Inline, tag func([]*model.Text) model.Inline) []model.Inline {
	return runs.WrapRange(line, s.i, s.j, s.start, s.end, tag)
}
