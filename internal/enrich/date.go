package enrich

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dgallion1/lawtree/internal/model"
)

const (
	weekday = `(?:(?:Mon|Tues|Wednes|Thurs|Fri|Satur|Sun)day,?\s+)?`
	month   = `(January|February|March|April|May|June|July|August|September|October|November|December)`
)

var (
	dateLabel = regexp.MustCompile(`(?i)^\s*(?:date(?:\s+of\s+(?:judgment|hearing|decision|hand[- ]?down))?|judgment\s+date|hearing\s+dates?|handed\s+down(?:\s+on)?|heard\s+on)\s*:?\s*`)
	// whole date in one run, optionally after the label
	dateFull = regexp.MustCompile(`(?i)^` + weekday + `(\d{1,2})(?:st|nd|rd|th)?\s+` + month + `,?\s+(\d{4})$`)
	dateNum  = regexp.MustCompile(`^(\d{1,2})[/.](\d{1,2})[/.](\d{4})$`)
	// day, ordinal suffix and month-year split across three runs
	dateDay       = regexp.MustCompile(`(?i)^` + weekday + `(\d{1,2})$`)
	dateSuffix    = regexp.MustCompile(`(?i)^(st|nd|rd|th)$`)
	dateMonthYear = regexp.MustCompile(`(?i)^` + month + `,?\s+(\d{4})$`)
)

var months = map[string]time.Month{}

func init() {
	for m := time.January; m <= time.December; m++ {
		months[strings.ToLower(m.String())] = m
	}
}

func isoDate(day, mon, year string) (string, bool) {
	d, err := strconv.Atoi(day)
	if err != nil {
		return "", false
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return "", false
	}
	m, ok := months[strings.ToLower(mon)]
	if !ok {
		n, err := strconv.Atoi(mon)
		if err != nil || n < 1 || n > 12 {
			return "", false
		}
		m = time.Month(n)
	}
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	if t.Day() != d || t.Month() != m {
		return "", false
	}
	return t.Format(time.DateOnly), true
}

// parseDateText returns the ISO form of a date written in one string.
func parseDateText(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if g := dateFull.FindStringSubmatch(s); g != nil {
		return isoDate(g[1], g[2], g[3])
	}
	if g := dateNum.FindStringSubmatch(s); g != nil {
		return isoDate(g[1], g[2], g[3])
	}
	return "", false
}

func dateRole(label string) string {
	if strings.Contains(strings.ToLower(label), "hear") {
		return "hearing"
	}
	return "judgment"
}

// DocumentDate tags the judgment or hearing date in a header line.
var DocumentDate Enricher = Rules{
	One:   dateOne,
	Two:   dateTwo,
	Three: dateThree,
	Many:  dateMany,
}

// "Date: 17 June 2025" or "17 June 2025"
func dateOne(line []model.Inline, at []int) ([]model.Inline, bool) {
	i := at[0]
	t, ok := line[i].(*model.Text)
	if !ok {
		return nil, false
	}
	label := ""
	from := 0
	if loc := dateLabel.FindStringIndex(t.Value); loc != nil {
		label, from = t.Value[:loc[1]], loc[1]
	}
	rest := t.Value[from:]
	trimmed := strings.TrimRight(rest, " \t\u00a0.")
	iso, ok := parseDateText(trimmed)
	if !ok {
		return nil, false
	}
	lead := len(trimmed) - len(strings.TrimLeft(trimmed, " \t\u00a0"))
	start, end := from+lead, from+len(trimmed)
	return runsWrap(line, i, start, end, span(model.Date, iso, dateRole(label))), true
}

// "Date:" "17 June 2025"
func dateTwo(line []model.Inline, at []int) ([]model.Inline, bool) {
	label, ok := wholeDateLabel(line, at[0])
	if !ok {
		return nil, false
	}
	return dateValue(line, at[1:], label)
}

// "17" "th" "June 2025", or "Date:" <tab> "17 June 2025"
func dateThree(line []model.Inline, at []int) ([]model.Inline, bool) {
	if out, ok := dateSplit(line, at, ""); ok {
		return out, true
	}
	label, ok := wholeDateLabel(line, at[0])
	if !ok || !isTab(line, at[1]) {
		return nil, false
	}
	return dateValue(line, at[2:], label)
}

// label, tabs, then the date as one run or as day/suffix/month-year
func dateMany(line []model.Inline, at []int) ([]model.Inline, bool) {
	label, ok := wholeDateLabel(line, at[0])
	if !ok {
		return nil, false
	}
	rest := at[1:]
	for len(rest) > 0 && isTab(line, rest[0]) {
		rest = rest[1:]
	}
	return dateValue(line, rest, label)
}

func wholeDateLabel(line []model.Inline, i int) (string, bool) {
	s := textOf(line, i)
	if s == "" {
		return "", false
	}
	loc := dateLabel.FindStringIndex(s)
	if loc == nil || loc[1] != len(s) {
		return "", false
	}
	return s, true
}

// dateValue tags a date occupying exactly the runs at.
func dateValue(line []model.Inline, at []int, label string) ([]model.Inline, bool) {
	switch len(at) {
	case 1:
		if _, ok := line[at[0]].(*model.Text); !ok {
			return nil, false
		}
		iso, ok := parseDateText(strings.TrimRight(textOf(line, at[0]), "."))
		if !ok {
			return nil, false
		}
		return wrapRunsTrim(line, at[0], at[0], ".", span(model.Date, iso, dateRole(label)))
	case 3:
		return dateSplit(line, at, label)
	}
	return nil, false
}

// dateSplit tags a date whose ordinal suffix is a separate (usually
// superscript) run between the day and the month-year.
func dateSplit(line []model.Inline, at []int, label string) ([]model.Inline, bool) {
	if len(at) != 3 {
		return nil, false
	}
	day := dateDay.FindStringSubmatch(textOf(line, at[0]))
	if day == nil || !dateSuffix.MatchString(textOf(line, at[1])) {
		return nil, false
	}
	my := dateMonthYear.FindStringSubmatch(strings.TrimRight(textOf(line, at[2]), "."))
	if my == nil {
		return nil, false
	}
	iso, ok := isoDate(day[1], my[1], my[2])
	if !ok {
		return nil, false
	}
	return wrapRunsTrim(line, at[0], at[2], ".", span(model.Date, iso, dateRole(label)))
}
