package enrich

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dgallion1/lawtree/internal/model"
)

type citationPattern struct {
	re    *regexp.Regexp
	canon func(g []string) string
}

// citationPatterns are tried in order; the first match wins. The later entries
// recognize misspellings and layout variants that occur in real documents and
// must keep matching them as written.
var citationPatterns = []citationPattern{
	{
		regexp.MustCompile(`\[(\d{4})\]\s*(EWHC)\s+(\d+)\s*\((Admin|Ch|Comm|Fam|KB|QB|TCC|Pat|IPEC|Admlty|Costs|SCCO|Mercantile)\)`),
		func(g []string) string { return fmt.Sprintf("[%s] EWHC %s (%s)", g[1], g[3], g[4]) },
	},
	{
		regexp.MustCompile(`\[(\d{4})\]\s*(UKUT)\s+(\d+)\s*\((AAC|IAC|LC|TCC)\)`),
		func(g []string) string { return fmt.Sprintf("[%s] UKUT %s (%s)", g[1], g[3], g[4]) },
	},
	{
		regexp.MustCompile(`\[(\d{4})\]\s*(UKFTT)\s+(\d+)\s*\((TC|GRC|PC)\)`),
		func(g []string) string { return fmt.Sprintf("[%s] UKFTT %s (%s)", g[1], g[3], g[4]) },
	},
	{
		regexp.MustCompile(`\[(\d{4})\]\s*EWCA\s+(Civ|Crim)\s+(\d+)`),
		func(g []string) string { return fmt.Sprintf("[%s] EWCA %s %s", g[1], g[2], g[3]) },
	},
	{
		regexp.MustCompile(`\[(\d{4})\]\s*(UKSC|UKPC|UKHL|EWFC|EWCOP|UKEAT|EAT|UKIPTrib)\s+(\d+)`),
		func(g []string) string { return fmt.Sprintf("[%s] %s %s", g[1], g[2], g[3]) },
	},

	// EHWC for EWHC
	{
		regexp.MustCompile(`\[(\d{4})\]\s*EHWC\s+(\d+)\s*\((Admin|Ch|Comm|Fam|KB|QB|TCC|Pat|IPEC)\)`),
		func(g []string) string { return fmt.Sprintf("[%s] EWHC %s (%s)", g[1], g[2], g[3]) },
	},
	// "EWCA Civ." with a trailing stop
	{
		regexp.MustCompile(`\[(\d{4})\]\s*EWCA\s+(Civ|Crim)\.\s*(\d+)`),
		func(g []string) string { return fmt.Sprintf("[%s] EWCA %s %s", g[1], g[2], g[3]) },
	},
	// "EWCA Civ733" with no space before the number
	{
		regexp.MustCompile(`\[(\d{4})\]\s*EWCA\s*(Civ|Crim)(\d+)`),
		func(g []string) string { return fmt.Sprintf("[%s] EWCA %s %s", g[1], g[2], g[3]) },
	},
	// division after the number: "[2019] EWCA 1234 (Civ)"
	{
		regexp.MustCompile(`\[(\d{4})\]\s*EWCA\s+(\d+)\s*\((Civ|Crim)\)`),
		func(g []string) string { return fmt.Sprintf("[%s] EWCA %s %s", g[1], g[3], g[2]) },
	},
	// round brackets around the year
	{
		regexp.MustCompile(`\((\d{4})\)\s*EWHC\s+(\d+)\s*\((Admin|Ch|Comm|Fam|KB|QB|TCC|Pat|IPEC)\)`),
		func(g []string) string { return fmt.Sprintf("[%s] EWHC %s (%s)", g[1], g[2], g[3]) },
	},
	// lower-case or abbreviated divisions: "(admin)", "(Chancery)", "(QBD)"
	{
		regexp.MustCompile(`\[(\d{4})\]\s*EWHC\s+(\d+)\s*\(\s*(?i:(admin|chancery|ch|comm|fam|family|qbd?|kbd?|tcc))\s*\)`),
		func(g []string) string { return fmt.Sprintf("[%s] EWHC %s (%s)", g[1], g[2], ewhcDivision(g[3])) },
	},
	// EWHC without a division
	{
		regexp.MustCompile(`\[(\d{4})\]\s*EWHC\s+(\d+)`),
		func(g []string) string { return fmt.Sprintf("[%s] EWHC %s", g[1], g[2]) },
	},
	// "[2021] EWFC B12", "[2020] EWHC B5 (Fam)"
	{
		regexp.MustCompile(`\[(\d{4})\]\s*(EWFC|EWHC|EWCOP)\s+(B\d+)(?:\s*\((Fam|Costs|Ch)\))?`),
		func(g []string) string {
			if g[4] != "" {
				return fmt.Sprintf("[%s] %s %s (%s)", g[1], g[2], g[3], g[4])
			}
			return fmt.Sprintf("[%s] %s %s", g[1], g[2], g[3])
		},
	},
}

func ewhcDivision(s string) string {
	switch strings.ToLower(s) {
	case "admin":
		return "Admin"
	case "ch", "chancery":
		return "Ch"
	case "comm":
		return "Comm"
	case "fam", "family":
		return "Fam"
	case "qb", "qbd":
		return "QB"
	case "kb", "kbd":
		return "KB"
	case "tcc":
		return "TCC"
	}
	return s
}

// citationLabel matches the label preceding a neutral citation, including
// the "Nunber" misspelling.
var citationLabel = regexp.MustCompile(`(?i)^\s*neutral\s*citation(?:\s+(?:number|nunber|no\.?))?\s*:?\s*$`)

// IsCitationLabel reports whether s is a neutral citation label on its own.
func IsCitationLabel(s string) bool { return citationLabel.MatchString(s) }

// Citation tags the first neutral citation in the line.
var Citation Enricher = Func(citation)

func citation(line []model.Inline) []model.Inline {
	for _, p := range citationPatterns {
		m, ok := find(line, p.re)
		if !ok {
			continue
		}
		return m.wrap(line, span(model.Citation, p.canon(m.groups), ""))
	}
	return line
}

// ParseCitation returns the canonical form of the first citation in s.
func ParseCitation(s string) (string, bool) {
	for _, p := range citationPatterns {
		if g := p.re.FindStringSubmatch(s); g != nil {
			return p.canon(g), true
		}
	}
	return "", false
}

var uriCourt = regexp.MustCompile(`^\[(\d{4})\] ([A-Za-z]+)(?: (Civ|Crim))? (B?\d+)(?: \(([A-Za-z]+)\))?$`)

// CitationURI derives the document path from a canonical citation:
// "[2022] EWCA Civ 733" becomes "ewca/civ/2022/733" and
// "[2023] EWHC 12 (Admin)" becomes "ewhc/admin/2023/12".
func CitationURI(canonical string) (string, bool) {
	g := uriCourt.FindStringSubmatch(canonical)
	if g == nil {
		return "", false
	}
	parts := []string{strings.ToLower(g[2])}
	if g[3] != "" {
		parts = append(parts, strings.ToLower(g[3]))
	}
	if g[5] != "" {
		parts = append(parts, strings.ToLower(g[5]))
	}
	parts = append(parts, g[1], strings.ToLower(g[4]))
	return strings.Join(parts, "/"), true
}
