package enrich

import (
	"regexp"
	"strings"

	"github.com/dgallion1/lawtree/internal/model"
	"github.com/dgallion1/lawtree/internal/runs"
)

// Court is one recognized court, identified by the sequence of header lines
// that name it.
type Court struct {
	Code  string
	Lines []*regexp.Regexp
}

func courtLines(lines ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(lines))
	for i, l := range lines {
		out[i] = regexp.MustCompile(`(?i)^(?:IN\s+THE\s+)?` + l + `\s*[.,]?$`)
	}
	return out
}

const (
	highCourt = `HIGH\s+COURT\s+OF\s+JUSTICE`
	kings     = `KING['’]?S\s+BENCH\s+DIVISION`
	queens    = `QUEEN['’]?S\s+BENCH\s+DIVISION`
	bpc       = `BUSINESS\s+AND\s+PROPERTY\s+COURTS?(?:\s+OF\s+ENGLAND\s+AND\s+WALES)?`
)

// Courts lists the known courts, longest line combinations first so that a
// three-line header is never tagged as its one-line prefix.
var Courts = []Court{
	{"EWHC-KBD-Admin", courtLines(highCourt, kings, `(?:PLANNING\s+COURT\s+|)ADMINISTRATIVE\s+COURT|PLANNING\s+COURT`)},
	{"EWHC-QBD-Admin", courtLines(highCourt, queens, `(?:PLANNING\s+COURT\s+|)ADMINISTRATIVE\s+COURT|PLANNING\s+COURT`)},
	{"EWHC-KBD-Commercial", courtLines(highCourt, bpc, `(?:KING['’]?S\s+BENCH\s+DIVISION\s+)?COMMERCIAL\s+COURT(?:\s*\(KBD\))?`)},
	{"EWHC-QBD-Commercial", courtLines(highCourt, bpc, `(?:QUEEN['’]?S\s+BENCH\s+DIVISION\s+)?COMMERCIAL\s+COURT(?:\s*\(QBD\))?`)},
	{"EWHC-KBD-TCC", courtLines(highCourt, bpc, `TECHNOLOGY\s+AND\s+CONSTRUCTION\s+COURT(?:\s*\((?:KBD|QBD)\))?`)},
	{"EWHC-Chancery-Business", courtLines(highCourt, bpc, `(?:BUSINESS\s+LIST\s*|INSOLVENCY\s+AND\s+COMPANIES\s+LIST\s*|PROPERTY\s+TRUSTS\s+AND\s+PROBATE\s+LIST\s*)?\(?\s*CH(?:ANCERY\s+DIVISION|D)?\s*\)?`)},
	{"EWHC-Chancery-Patents", courtLines(highCourt, bpc, `(?:INTELLECTUAL\s+PROPERTY\s+LIST\s*)?\(?\s*CH(?:ANCERY\s+DIVISION|D)?\s*\)?\s*PATENTS\s+COURT`)},
	{"EWHC-KBD-Admin", courtLines(highCourt, `(?:KING['’]?S\s+BENCH\s+DIVISION\s+)?ADMINISTRATIVE\s+COURT`)},
	{"EWHC-KBD", courtLines(highCourt, kings)},
	{"EWHC-QBD", courtLines(highCourt, queens)},
	{"EWHC-Chancery", courtLines(highCourt, `CHANCERY\s+DIVISION`)},
	{"EWHC-Family", courtLines(highCourt, `FAMILY\s+DIVISION`)},
	{"EWHC-Chancery", courtLines(highCourt + `\s+CHANCERY\s+DIVISION`)},
	{"EWHC-Family", courtLines(highCourt + `\s+FAMILY\s+DIVISION`)},
	{"EWHC-KBD", courtLines(highCourt + `\s+` + kings)},
	{"EWHC-QBD", courtLines(highCourt + `\s+` + queens)},
	{"EWCA-Civil", courtLines(`COURT\s+OF\s+APPEAL`, `\(?CIVIL\s+DIVISION\)?`)},
	{"EWCA-Criminal", courtLines(`COURT\s+OF\s+APPEAL`, `\(?CRIMINAL\s+DIVISION\)?`)},
	{"EWCA-Civil", courtLines(`COURT\s+OF\s+APPEAL\s*\(?CIVIL\s+DIVISION\)?`)},
	{"EWCA-Criminal", courtLines(`COURT\s+OF\s+APPEAL\s*\(?CRIMINAL\s+DIVISION\)?`)},
	{"UKUT-IAC", courtLines(`UPPER\s+TRIBUNAL`, `\(?IMMIGRATION\s+AND\s+ASYLUM\s+CHAMBER\)?`)},
	{"UKUT-AAC", courtLines(`UPPER\s+TRIBUNAL`, `\(?ADMINISTRATIVE\s+APPEALS\s+CHAMBER\)?`)},
	{"UKUT-LC", courtLines(`UPPER\s+TRIBUNAL`, `\(?LANDS\s+CHAMBER\)?`)},
	{"UKUT-TCC", courtLines(`UPPER\s+TRIBUNAL`, `\(?TAX\s+AND\s+CHANCERY\s+CHAMBER\)?`)},
	{"UKUT-IAC", courtLines(`UPPER\s+TRIBUNAL\s*\(?IMMIGRATION\s+AND\s+ASYLUM\s+CHAMBER\)?`)},
	{"UKUT-AAC", courtLines(`UPPER\s+TRIBUNAL\s*\(?ADMINISTRATIVE\s+APPEALS\s+CHAMBER\)?`)},
	{"EWFC", courtLines(`FAMILY\s+COURT(?:\s+(?:SITTING\s+)?AT\s+[A-Z' ]+)?`)},
	{"EWCOP", courtLines(`COURT\s+OF\s+PROTECTION`)},
	{"EAT", courtLines(`EMPLOYMENT\s+APPEAL\s+TRIBUNAL`)},
	{"UKSC", courtLines(`SUPREME\s+COURT(?:\s+OF\s+THE\s+UNITED\s+KINGDOM)?`)},
	{"UKPC", courtLines(`PRIVY\s+COUNCIL`)},
	{"EWHC", courtLines(highCourt)},
}

// matchCourt returns the first court whose lines are matched exactly by texts.
func matchCourt(texts []string) (Court, bool) {
	for _, c := range Courts {
		if len(c.Lines) != len(texts) {
			continue
		}
		ok := true
		for k, re := range c.Lines {
			if !re.MatchString(model.Normalize(texts[k])) {
				ok = false
				break
			}
		}
		if ok {
			return c, true
		}
	}
	return Court{}, false
}

// CourtType tags court names inside one line. The lines of a multi-line court
// name may share a paragraph, separated by line breaks or split across
// differently formatted runs.
var CourtType Enricher = Rules{
	One:   courtOne,
	Two:   courtWindow,
	Three: courtWindow,
	Many:  courtMany,
}

func courtOne(line []model.Inline, at []int) ([]model.Inline, bool) {
	if _, ok := line[at[0]].(*model.Text); !ok {
		return nil, false
	}
	c, ok := matchCourt([]string{textOf(line, at[0])})
	if !ok {
		return nil, false
	}
	return wrapRun(line, at[0], span(model.CourtType, c.Code, "")), true
}

// courtWindow treats the significant runs either as one line split by
// formatting, or as one court line per run.
func courtWindow(line []model.Inline, at []int) ([]model.Inline, bool) {
	first, last := at[0], at[len(at)-1]
	if runs.AllText(line, first, last) {
		if c, ok := matchCourt([]string{runs.Joined(line, first, last)}); ok {
			return wrapRuns(line, first, last, span(model.CourtType, c.Code, ""))
		}
	}
	texts := make([]string, len(at))
	for k, i := range at {
		if _, ok := line[i].(*model.Text); !ok {
			return nil, false
		}
		texts[k] = textOf(line, i)
	}
	c, ok := matchCourt(texts)
	if !ok {
		return nil, false
	}
	out := line
	for k := len(at) - 1; k >= 0; k-- {
		out = wrapRun(out, at[k], span(model.CourtType, c.Code, ""))
	}
	return out, true
}

// courtMany slides a window of three, two and then one significant runs
// along the line and tags the first court found.
func courtMany(line []model.Inline, at []int) ([]model.Inline, bool) {
	for width := 3; width >= 1; width-- {
		for k := 0; k+width <= len(at); k++ {
			window := at[k : k+width]
			if width == 1 {
				if out, ok := courtOne(line, window); ok {
					return out, true
				}
				continue
			}
			if out, ok := courtWindow(line, window); ok {
				return out, true
			}
		}
	}
	return nil, false
}

// CourtBlocks tags court names that span consecutive paragraphs, each
// paragraph holding one line of the name. Lines already carrying a span are
// skipped.
func CourtBlocks(blocks []model.Block) []model.Block {
	out := make([]model.Block, len(blocks))
	copy(out, blocks)
	for i := 0; i < len(out); {
		n := courtBlocksAt(out, i)
		if n == 0 {
			i++
			continue
		}
		i += n
	}
	return out
}

func courtBlocksAt(blocks []model.Block, i int) int {
	for _, c := range Courts {
		n := len(c.Lines)
		if n < 2 || i+n > len(blocks) {
			continue
		}
		lines := make([]*model.TextLine, n)
		ok := true
		for k := 0; k < n && ok; k++ {
			l, isLine := blocks[i+k].(*model.TextLine)
			if !isLine || hasSpan(l.Contents) {
				ok = false
				break
			}
			lines[k] = l
			ok = c.Lines[k].MatchString(model.Normalize(l.Text()))
		}
		if !ok {
			continue
		}
		for k, l := range lines {
			contents := runs.TrimTrailing(runs.Merge(l.Contents))
			at := runs.Significant(contents)
			if len(at) == 0 {
				continue
			}
			wrapped, ok := wrapRuns(contents, at[0], at[len(at)-1], span(model.CourtType, c.Code, ""))
			if !ok {
				continue
			}
			tail := runs.Merge(l.Contents)[len(contents):]
			blocks[i+k] = l.WithContents(append(wrapped, tail...))
		}
		return n
	}
	return 0
}

func hasSpan(contents []model.Inline) bool {
	for _, r := range contents {
		if _, ok := r.(*model.Span); ok {
			return true
		}
	}
	return false
}

// CourtCode returns the code of the first court span in the blocks.
func CourtCode(blocks []model.Block) string {
	for _, b := range blocks {
		l, ok := model.LineOf(b)
		if !ok {
			continue
		}
		if s := model.Spans(l.Contents, model.CourtType); len(s) > 0 {
			return s[0].Value
		}
	}
	return ""
}

// IsCourtLine reports whether s names a court on its own.
func IsCourtLine(s string) bool {
	_, ok := matchCourt([]string{s})
	return ok || strings.HasPrefix(strings.ToUpper(model.Normalize(s)), "IN THE ")
}
