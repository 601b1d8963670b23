// Package bill parses parliamentary bills: prelims with the title and key
// dates, the enacting preamble, the body of sections and the schedules.
package bill

import (
	"fmt"
	"log/slog"
	"regexp"

	"github.com/dgallion1/lawtree/internal/classify"
	"github.com/dgallion1/lawtree/internal/doctree"
	"github.com/dgallion1/lawtree/internal/enrich"
	"github.com/dgallion1/lawtree/internal/levels"
	"github.com/dgallion1/lawtree/internal/metadata"
	"github.com/dgallion1/lawtree/internal/model"
)

// ErrNoTitle is returned when neither a bill title line nor an enacting
// preamble is present.
var ErrNoTitle = fmt.Errorf("bill title not found: %w", classify.ErrMissingAnchor)

var (
	preamble   = regexp.MustCompile(`(?i)^(?:be\s+it\s+enacted|whereas\b)`)
	enacting   = regexp.MustCompile(`(?i)^be\s+it\s+(?:therefore\s+)?enacted\b`)
	billTitle  = regexp.MustCompile(`(?i)^(?:a\s+)?bill(?:\s+(?:to|intituled)\b.*)?$`)
	shortTitle = regexp.MustCompile(`^\S.*\bBill(?:\s*\[HL\])?$`)
	schedules  = regexp.MustCompile(`^SCHEDULES?$`)
	// Section numbers stand alone; subsection and paragraph numbers lead the text.
	peelNumber = regexp.MustCompile(`^(?:(\d{1,3}[A-Z]{0,2}\.?)$|(\(\d{1,3}[A-Z]{0,2}\)|\([a-z]{1,2}\)|\([ivx]{1,5}\)|\([A-Z]{1,2}\))(?:\s|$))`)
)

// Parser parses bills. It is safe for concurrent use; the state of one parse
// lives in a fresh enrich.Context.
type Parser struct {
	log       *slog.Logger
	body      *classify.Classifier
	schedules *classify.Classifier
}

func NewParser(log *slog.Logger) *Parser {
	return &Parser{
		log: log.With("family", "bill"),
		body: classify.New(levels.Bill(), classify.Options{
			Stop:   schedulesStart,
			Peel:   peelNumber,
			Quotes: true,
		}),
		schedules: classify.New(levels.Schedules(), classify.Options{Peel: peelNumber, Quotes: true}),
	}
}

// schedulesStart marks the end of the body: the "SCHEDULES" container
// heading, or a lone "SCHEDULE" heading when there is one schedule.
func schedulesStart(b model.Block) bool {
	l, ok := b.(*model.TextLine)
	return ok && schedules.MatchString(model.Normalize(l.Text()))
}

// Parse builds the document tree of a bill.
func (p *Parser) Parse(blocks []model.Block, override *metadata.Override) (*doctree.Document, error) {
	prelims, pre, rest, err := split(blocks)
	if err != nil {
		return nil, err
	}
	ctx := enrich.NewContext()
	dates := enrich.NewPipeline("bill-prelims", enrich.LegislativeDates(ctx))

	doc := &doctree.Document{Family: "bill", Preamble: pre}
	doc.Header = dates.Blocks(prelims)

	var n int
	doc.Body, n = p.body.Classify(rest)
	if n < len(rest) {
		doc.Schedules, _ = p.schedules.Classify(rest[n:])
	}

	doc.Meta = Metadata(doc.Header)
	if err := metadata.Apply(&doc.Meta, override, p.log); err != nil {
		return nil, err
	}
	p.log.Debug("bill parsed",
		"prelims", len(doc.Header),
		"divisions", len(doc.Body),
		"schedules", len(doc.Schedules),
		"commence_dates", ctx.Count("commence"))
	return doc, nil
}

// split separates prelims, preamble and the rest. Without a preamble, the
// prelims end at the first block a body kind recognizes.
func split(blocks []model.Block) (prelims, pre, rest []model.Block, err error) {
	titled := false
	for i, b := range blocks {
		l, ok := b.(*model.TextLine)
		if !ok {
			if _, numbered := b.(*model.NumberedLine); numbered {
				return finish(blocks, i, titled)
			}
			continue
		}
		text := model.Normalize(l.Text())
		switch {
		case preamble.MatchString(text):
			end := preambleEnd(blocks, i)
			return blocks[:i], blocks[i:end], blocks[end:], nil
		case billTitle.MatchString(text):
			titled = true
		case bodyStart(l):
			return finish(blocks, i, titled)
		}
	}
	return finish(blocks, len(blocks), titled)
}

// preambleEnd returns the end of a preamble opening at i. Recitals run
// through the enacting formula; without one the preamble is its first line.
func preambleEnd(blocks []model.Block, i int) int {
	for j := i; j < len(blocks); j++ {
		l, ok := blocks[j].(*model.TextLine)
		if !ok || (j > i && bodyStart(l)) {
			break
		}
		if enacting.MatchString(model.Normalize(l.Text())) {
			return j + 1
		}
	}
	return i + 1
}

func finish(blocks []model.Block, end int, titled bool) (prelims, pre, rest []model.Block, err error) {
	if !titled {
		return nil, nil, nil, ErrNoTitle
	}
	return blocks[:end], nil, blocks[end:], nil
}

var bodyKinds = levels.Bill()

func bodyStart(l *model.TextLine) bool {
	if schedulesStart(l) || classify.Peel(l, peelNumber) != l {
		return true
	}
	for _, k := range bodyKinds.Kinds {
		if _, ok := k.ParseTitle(l.Text()); ok {
			return true
		}
	}
	return false
}

// Metadata derives the title and the earliest valid date from enriched
// prelims.
func Metadata(prelims []model.Block) doctree.Metadata {
	var meta doctree.Metadata
	for _, b := range prelims {
		l, ok := model.LineOf(b)
		if !ok {
			continue
		}
		text := model.Normalize(l.Text())
		if meta.Title == "" && shortTitle.MatchString(text) && !billTitle.MatchString(text) {
			meta.Title = text
		}
		for _, s := range model.Spans(l.Contents, model.Date) {
			if s.ID != "" && (meta.Date == "" || s.Value < meta.Date) {
				meta.Date = s.Value
			}
		}
	}
	return meta
}
