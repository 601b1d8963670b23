package enrich

import (
	"regexp"
	"strings"

	"github.com/dgallion1/lawtree/internal/model"
)

var partyRole = regexp.MustCompile(`(?i)^(claimants?|defendants?|appellants?|respondents?|applicants?|petitioners?|interveners?|interested\s+part(?:y|ies)|(?:first|second|third)\s+(?:claimant|defendant|appellant|respondent))\s*:$`)

// Party tags the name in a "Claimant:" <tab> "Name" line. No other layout is
// recognized: names elsewhere in a header are too ambiguous to tag.
var Party Enricher = Rules{Three: partyThree}

func partyThree(line []model.Inline, at []int) ([]model.Inline, bool) {
	g := partyRole.FindStringSubmatch(textOf(line, at[0]))
	if g == nil || !isTab(line, at[1]) {
		return nil, false
	}
	if _, ok := line[at[2]].(*model.Text); !ok {
		return nil, false
	}
	name := model.Normalize(textOf(line, at[2]))
	if name == "" {
		return nil, false
	}
	return wrapRun(line, at[2], span(model.Party, name, roleName(g[1]))), true
}

// roleName canonicalizes a role label: "CLAIMANTS" becomes "Claimant".
func roleName(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		if w == "parties" {
			w = "party"
		} else if i == len(words)-1 {
			w = strings.TrimSuffix(w, "s")
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// CaseName builds "A v B" from the first claimant-side and the first
// defendant-side party spans in the blocks.
func CaseName(blocks []model.Block) string {
	var first, second string
	for _, b := range blocks {
		l, ok := model.LineOf(b)
		if !ok {
			continue
		}
		for _, s := range model.Spans(l.Contents, model.Party) {
			switch {
			case first == "" && claimantSide(s.Role):
				first = s.Value
			case second == "" && !claimantSide(s.Role) && s.Role != "Intervener" && s.Role != "Interested Party":
				second = s.Value
			}
		}
	}
	if first == "" || second == "" {
		return ""
	}
	return first + " v " + second
}

func claimantSide(role string) bool {
	role = strings.ToLower(role)
	return strings.HasSuffix(role, "claimant") || strings.HasSuffix(role, "appellant") ||
		strings.HasSuffix(role, "applicant") || strings.HasSuffix(role, "petitioner")
}
