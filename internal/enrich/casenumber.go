package enrich

import (
	"regexp"
	"strings"

	"github.com/dgallion1/lawtree/internal/model"
)

var (
	caseLabel  = regexp.MustCompile(`(?i)^\s*(?:case|claim|appeal|application)\s+(?:nos?|numbers?|nunber)\.?\s*:?\s*`)
	caseNumber = regexp.MustCompile(`[A-Z0-9]+(?:[/\-.][A-Z0-9]+)+(?:\s?\([A-Z0-9]+\))?`)
)

// CaseNumber tags the case numbers following a "Case No:" style label. The
// label and the numbers may share a run or sit in separate runs with a tab
// between them.
var CaseNumber Enricher = Rules{
	One:   caseNumberOne,
	Two:   caseNumberTwo,
	Three: caseNumberThree,
	Many:  caseNumberMany,
}

// "Case No: C1/2020/1234"
func caseNumberOne(line []model.Inline, at []int) ([]model.Inline, bool) {
	i := at[0]
	t, ok := line[i].(*model.Text)
	if !ok {
		return nil, false
	}
	loc := caseLabel.FindStringIndex(t.Value)
	if loc == nil {
		return nil, false
	}
	return caseNumbersIn(line, i, loc[1])
}

// "Case No:" "C1/2020/1234"
func caseNumberTwo(line []model.Inline, at []int) ([]model.Inline, bool) {
	if !isCaseLabel(line, at[0]) {
		return nil, false
	}
	return caseNumbersIn(line, at[1], 0)
}

// "Case No:" <tab> "C1/2020/1234"
func caseNumberThree(line []model.Inline, at []int) ([]model.Inline, bool) {
	if !isCaseLabel(line, at[0]) || !isTab(line, at[1]) {
		return nil, false
	}
	return caseNumbersIn(line, at[2], 0)
}

// label, any number of tabs, then the numbers in the first text run
func caseNumberMany(line []model.Inline, at []int) ([]model.Inline, bool) {
	if !isCaseLabel(line, at[0]) {
		return nil, false
	}
	for _, i := range at[1:] {
		if isTab(line, i) {
			continue
		}
		return caseNumbersIn(line, i, 0)
	}
	return nil, false
}

func isCaseLabel(line []model.Inline, i int) bool {
	s := textOf(line, i)
	if s == "" {
		return false
	}
	loc := caseLabel.FindStringIndex(s)
	return loc != nil && loc[1] == len(s)
}

// caseNumbersIn wraps every case number in run i after byte offset from,
// right to left so that earlier offsets stay valid.
func caseNumbersIn(line []model.Inline, i, from int) ([]model.Inline, bool) {
	t, ok := line[i].(*model.Text)
	if !ok {
		return nil, false
	}
	locs := caseNumber.FindAllStringIndex(t.Value[from:], -1)
	var found [][]int
	for _, loc := range locs {
		if strings.ContainsAny(t.Value[from+loc[0]:from+loc[1]], "0123456789") {
			found = append(found, []int{from + loc[0], from + loc[1]})
		}
	}
	if len(found) == 0 {
		return nil, false
	}
	out := line
	for k := len(found) - 1; k >= 0; k-- {
		start, end := found[k][0], found[k][1]
		value := t.Value[start:end]
		out = runsWrap(out, i, start, end, span(model.CaseNumber, value, ""))
	}
	return out, true
}
