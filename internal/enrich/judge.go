package enrich

import (
	"regexp"

	"github.com/dgallion1/lawtree/internal/model"
	"github.com/dgallion1/lawtree/internal/runs"
)

const (
	judgeTitle = `(?:THE\s+)?(?:RT\.?\s+)?(?:HON(?:OURABLE)?\.?\s+)?(?:(?:MR|MRS|MS|MISS)\.?\s+JUSTICE|LORD\s+JUSTICE|LADY\s+JUSTICE|LORD\s+CHIEF\s+JUSTICE|MASTER\s+OF\s+THE\s+ROLLS|CHANCELLOR\s+OF\s+THE\s+HIGH\s+COURT|PRESIDENT\s+OF\s+THE\s+FAMILY\s+DIVISION|(?:HIS|HER)\s+HONOUR\s+JUDGE|HHJ|DISTRICT\s+JUDGE|DEPUTY\s+DISTRICT\s+JUDGE|(?:DEPUTY\s+)?UPPER\s+TRIBUNAL\s+JUDGE|DEPUTY\s+HIGH\s+COURT\s+JUDGE|RECORDER|MASTER|LORD|LADY|SIR|DAME)`
	properName = `[A-Z][A-Za-z'’\-]+(?:\s+[A-Z][A-Za-z'’\-]*)*`
)

var (
	judgeLabel = regexp.MustCompile(`(?i)^\s*before\s*:?\s*$`)
	judgeName  = regexp.MustCompile(`^(?:(?i:before)\s*:?\s*)?(` + `(?i:` + judgeTitle + `)\s+` + properName + `(?:\s+(?:KC|QC|DBE|CBE|OBE))?` + `)(?:\s*(?:\(.*\)|,.*|:))?$`)
	// judge titles that stand alone without a name
	judgeOffice = regexp.MustCompile(`^(?:(?i:before)\s*:?\s*)?((?i:THE\s+)?(?i:LORD\s+CHIEF\s+JUSTICE(?:\s+OF\s+ENGLAND\s+AND\s+WALES)?|MASTER\s+OF\s+THE\s+ROLLS|CHANCELLOR\s+OF\s+THE\s+HIGH\s+COURT|PRESIDENT\s+OF\s+THE\s+FAMILY\s+DIVISION|SENIOR\s+PRESIDENT\s+OF\s+TRIBUNALS))\s*$`)
)

// Judge tags a judge's name on a "Before:" line or on its own line.
var Judge Enricher = Rules{
	One:   judgeOne,
	Two:   judgeAfterLabel,
	Three: judgeAfterLabel,
}

// "MR JUSTICE SMITH" or "Before: Lord Justice Jones"
func judgeOne(line []model.Inline, at []int) ([]model.Inline, bool) {
	i := at[0]
	t, ok := line[i].(*model.Text)
	if !ok {
		return nil, false
	}
	s, off, _ := runs.Trimmed(t)
	for _, re := range []*regexp.Regexp{judgeName, judgeOffice} {
		if loc := re.FindStringSubmatchIndex(s); loc != nil {
			name := model.Normalize(s[loc[2]:loc[3]])
			return runsWrap(line, i, off+loc[2], off+loc[3], span(model.Judge, name, "")), true
		}
	}
	return nil, false
}

// "Before:" ["<tab>"] "MR JUSTICE SMITH"
func judgeAfterLabel(line []model.Inline, at []int) ([]model.Inline, bool) {
	if !judgeLabel.MatchString(textOf(line, at[0])) {
		return nil, false
	}
	rest := at[1:]
	if len(rest) == 2 {
		if !isTab(line, rest[0]) {
			return nil, false
		}
		rest = rest[1:]
	}
	return judgeOne(line, rest)
}

var lawyerNames = regexp.MustCompile(`^((?:Mr|Mrs|Ms|Miss|Mx|Dr|Sir|Dame|Lord|Lady)\.?\s+` + properName + `(?:\s+(?:KC|QC))?)` +
	`(?:\s*(?:,|and|&)\s+((?:Mr|Mrs|Ms|Miss|Mx|Dr|Sir|Dame|Lord|Lady)\.?\s+` + properName + `(?:\s+(?:KC|QC))?))?` +
	`\s*\((?:instructed|for)\b`)

// Lawyer tags counsel named before "(instructed by ...)". Up to two names
// per line are recognized.
var Lawyer Enricher = Func(lawyer)

func lawyer(line []model.Inline) []model.Inline {
	for i := range line {
		t, ok := line[i].(*model.Text)
		if !ok {
			continue
		}
		s, off, _ := runs.Trimmed(t)
		loc := lawyerNames.FindStringSubmatchIndex(s)
		if loc == nil {
			continue
		}
		out := line
		// second name first so the first name's offsets remain valid
		if loc[4] >= 0 {
			out = runsWrap(out, i, off+loc[4], off+loc[5], span(model.Lawyer, model.Normalize(s[loc[4]:loc[5]]), ""))
		}
		return runsWrap(out, i, off+loc[2], off+loc[3], span(model.Lawyer, model.Normalize(s[loc[2]:loc[3]]), ""))
	}
	return line
}
