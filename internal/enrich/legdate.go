package enrich

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dgallion1/lawtree/internal/model"
)

// SentinelDate stands in for any legislative date that is not Valid.
const SentinelDate = "9999-12-31"

// DateKind classifies the outcome of ParseDate.
type DateKind int

const (
	DateValid DateKind = iota
	DatePlaceholder
	DateNoText
	DateUnparseable
)

func (k DateKind) String() string {
	switch k {
	case DateValid:
		return "valid"
	case DatePlaceholder:
		return "placeholder"
	case DateNoText:
		return "no-text"
	}
	return "unparseable"
}

// DateResult is the outcome of parsing a legislative date. Date, Format and
// Locale are set only for DateValid; Raw only for DateUnparseable.
type DateResult struct {
	Kind   DateKind
	Date   time.Time
	Format string
	Locale language.Tag
	Raw    string
}

// ISO returns the date as yyyy-mm-dd, or SentinelDate when it is not Valid.
// Year-only dates render as the first of January.
func (r DateResult) ISO() string {
	if r.Kind != DateValid {
		return SentinelDate
	}
	return r.Date.Format(time.DateOnly)
}

func (r DateResult) String() string {
	switch r.Kind {
	case DateValid:
		return fmt.Sprintf("Valid(%s, %q)", r.Date.Format(time.DateOnly), r.Format)
	case DateUnparseable:
		return fmt.Sprintf("Unparseable(%q)", r.Raw)
	}
	return r.Kind.String()
}

type dateLocale struct {
	tag    language.Tag
	months map[string]time.Month
}

// foldCase builds a fresh Caser per call; a Caser keeps state and is not safe
// for concurrent use.
func foldCase(s string) string { return cases.Fold().String(s) }

func monthTable(names map[string]time.Month) map[string]time.Month {
	out := make(map[string]time.Month, len(names))
	for name, m := range names {
		out[foldCase(name)] = m
	}
	return out
}

// dateLocales are tried in order. Welsh month names are listed with their
// soft-mutated forms ("o Fehefin").
var dateLocales = []dateLocale{
	{language.BritishEnglish, monthTable(map[string]time.Month{
		"January": time.January, "February": time.February, "March": time.March,
		"April": time.April, "May": time.May, "June": time.June, "July": time.July,
		"August": time.August, "September": time.September, "October": time.October,
		"November": time.November, "December": time.December,
	})},
	{language.MustParse("cy-GB"), monthTable(map[string]time.Month{
		"Ionawr": time.January, "Chwefror": time.February,
		"Mawrth": time.March, "Fawrth": time.March,
		"Ebrill": time.April,
		"Mai":    time.May, "Fai": time.May,
		"Mehefin": time.June, "Fehefin": time.June,
		"Gorffennaf": time.July, "Orffennaf": time.July,
		"Awst": time.August,
		"Medi": time.September, "Fedi": time.September,
		"Hydref":   time.October,
		"Tachwedd": time.November, "Dachwedd": time.November,
		"Rhagfyr": time.December, "Ragfyr": time.December,
	})},
}

var (
	ordinalSuffix = regexp.MustCompile(`^(\d{1,2})(st|nd|rd|th|af|il|ydd|ed|fed|eg|ain)\b`)
	placeholder   = regexp.MustCompile(`^\*{2,}$`)
	dayMonthYear  = regexp.MustCompile(`^(\d{1,2})\s+(?:o\s+)?(\p{L}+)\s+(\d{4})$`)
	yearOnly      = regexp.MustCompile(`^(\d{4})$`)
)

// ParseDate parses a date as written in legislation: "17th June 2025",
// "1 Mehefin 2025", "2025", or a "***" placeholder.
func ParseDate(s string) DateResult {
	s = model.Normalize(s)
	if s == "" {
		return DateResult{Kind: DateNoText}
	}
	text, suffix := s, ""
	if g := ordinalSuffix.FindStringSubmatch(s); g != nil {
		text = g[1] + s[len(g[0]):]
		suffix = g[2]
	}
	if placeholder.MatchString(text) {
		return DateResult{Kind: DatePlaceholder}
	}
	if g := dayMonthYear.FindStringSubmatch(text); g != nil {
		for _, loc := range dateLocales {
			m, ok := loc.months[foldCase(g[2])]
			if !ok {
				continue
			}
			d, _ := strconv.Atoi(g[1])
			y, _ := strconv.Atoi(g[3])
			t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
			if t.Day() != d {
				break
			}
			format := "d MMMM yyyy"
			if suffix != "" {
				format = "d'" + suffix + "' MMMM yyyy"
			}
			if strings.Contains(text, " o ") {
				format = strings.Replace(format, "MMMM", "'o' MMMM", 1)
			}
			return DateResult{Kind: DateValid, Date: t, Format: format, Locale: loc.tag}
		}
	}
	if suffix == "" {
		if g := yearOnly.FindStringSubmatch(text); g != nil {
			y, _ := strconv.Atoi(g[1])
			return DateResult{Kind: DateValid, Date: time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC), Format: "yyyy", Locale: language.BritishEnglish}
		}
	}
	return DateResult{Kind: DateUnparseable, Raw: s}
}

type dateRoleLabel struct {
	role string
	re   *regexp.Regexp
}

// legislativeLabels name the prelims dates and the role each one registers as.
var legislativeLabels = []dateRoleLabel{
	{"commence", regexp.MustCompile(`(?i)^\s*(?:coming\s+into\s+(?:force|operation)|commencement|yn\s+dod\s+i\s+rym)\b\s*[:\-–]?\s*`)},
	{"made", regexp.MustCompile(`(?i)^\s*(?:made|wedi\s+eu\s+gwneud)\b\s*[:\-–]?\s*`)},
	{"laid", regexp.MustCompile(`(?i)^\s*(?:laid\s+before\s+(?:parliament|the\s+house\s+of\s+commons|senedd\s+cymru|the\s+national\s+assembly\s+for\s+wales)|gosodwyd\s+gerbron\s+senedd\s+cymru)\b\s*[:\-–]?\s*`)},
	{"ordered", regexp.MustCompile(`(?i)^\s*ordered,?\s+by\s+the\s+house\s+of\s+(?:commons|lords),?\s+to\s+be\s+printed,?\s*`)},
}

func legislativeLabel(s string) (role string, end int, ok bool) {
	for _, l := range legislativeLabels {
		if loc := l.re.FindStringIndex(s); loc != nil {
			return l.role, loc[1], true
		}
	}
	return "", 0, false
}

// LegislativeDates tags the dates in prelims lines such as "Made" <tab>
// "17th June 2025". Valid dates are registered in ctx and carry its
// identifier; every other outcome is tagged with SentinelDate.
func LegislativeDates(ctx *Context) Enricher {
	tag := func(role string, r DateResult) func([]*model.Text) model.Inline {
		return func(parts []*model.Text) model.Inline {
			s := &model.Span{Category: model.Date, Runs: parts, Value: r.ISO(), Role: role}
			if r.Kind == DateValid {
				s.ID = ctx.NextID(role)
			}
			return s
		}
	}
	// label and date in one run
	one := func(line []model.Inline, at []int) ([]model.Inline, bool) {
		t, ok := line[at[0]].(*model.Text)
		if !ok {
			return nil, false
		}
		role, end, ok := legislativeLabel(t.Value)
		if !ok {
			return nil, false
		}
		rest := t.Value[end:]
		value := strings.TrimRight(rest, " \t\u00a0.")
		r := ParseDate(value)
		if r.Kind == DateNoText {
			return nil, false
		}
		lead := len(value) - len(strings.TrimLeft(value, " \t\u00a0"))
		return runsWrap(line, at[0], end+lead, end+len(value), tag(role, r)), true
	}
	// label run, optional tabs, then the date in the next run
	split := func(line []model.Inline, at []int) ([]model.Inline, bool) {
		s := textOf(line, at[0])
		role, end, ok := legislativeLabel(s)
		if !ok || end != len(s) {
			return nil, false
		}
		rest := at[1:]
		for len(rest) > 0 && isTab(line, rest[0]) {
			rest = rest[1:]
		}
		if len(rest) != 1 {
			return nil, false
		}
		if _, ok := line[rest[0]].(*model.Text); !ok {
			return nil, false
		}
		r := ParseDate(strings.TrimRight(textOf(line, rest[0]), "."))
		if r.Kind == DateNoText {
			return nil, false
		}
		return wrapRunsTrim(line, rest[0], rest[0], ".", tag(role, r))
	}
	return Rules{One: one, Two: split, Three: split, Many: split}
}
