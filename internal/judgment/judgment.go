// Package judgment parses court judgments: a header of case particulars, a
// body of numbered paragraphs under optional cross-headings, and trailing
// conclusions.
package judgment

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/dgallion1/lawtree/internal/classify"
	"github.com/dgallion1/lawtree/internal/doctree"
	"github.com/dgallion1/lawtree/internal/enrich"
	"github.com/dgallion1/lawtree/internal/levels"
	"github.com/dgallion1/lawtree/internal/metadata"
	"github.com/dgallion1/lawtree/internal/model"
)

// ErrNoHeader is returned when no header can be separated from the body.
var ErrNoHeader = fmt.Errorf("judgment header not found: %w", classify.ErrMissingAnchor)

// Options tunes the judgment heuristics.
type Options struct {
	CrossHeadingMinPosition int
	// HeaderScanLimit bounds the search for the end of the header.
	HeaderScanLimit int
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{CrossHeadingMinPosition: 3, HeaderScanLimit: 120}
}

// Paragraph numbers typed into the text: "12.", "(3)", "(b)", "(iv)".
var peelNumber = regexp.MustCompile(`^(\d{1,3}\.|\(\d{1,3}\)|\([a-z]{1,2}\)|\([ivx]{1,5}\))(?:\s|$)`)

// Parser parses judgments. It holds no per-document state and is safe for
// concurrent use.
type Parser struct {
	opts        Options
	log         *slog.Logger
	bodies      []*classify.Classifier
	header      *enrich.Pipeline
	conclusions *enrich.Pipeline
}

func NewParser(opts Options, log *slog.Logger) *Parser {
	if opts.HeaderScanLimit <= 0 {
		opts.HeaderScanLimit = DefaultOptions().HeaderScanLimit
	}
	// One body classifier per header length below the cross-heading minimum;
	// the last serves every longer header.
	bodies := make([]*classify.Classifier, max(opts.CrossHeadingMinPosition, 0)+1)
	for off := range bodies {
		reg := levels.Judgment(levels.JudgmentOptions{CrossHeadingMinPosition: opts.CrossHeadingMinPosition, Offset: off})
		bodies[off] = classify.New(reg, classify.Options{Peel: peelNumber})
	}
	return &Parser{
		opts:   opts,
		log:    log.With("family", "judgment"),
		bodies: bodies,
		header: enrich.NewPipeline("judgment-header",
			enrich.Citation,
			enrich.CaseNumber,
			enrich.CourtType,
			enrich.DocumentDate,
			enrich.Party,
			enrich.Judge,
			enrich.Lawyer,
		),
		conclusions: enrich.NewPipeline("judgment-conclusions",
			enrich.DocumentDate,
			enrich.Judge,
		),
	}
}

// Parse builds the document tree of a judgment. The override, when not nil,
// takes precedence over metadata found in the document.
func (p *Parser) Parse(blocks []model.Block, override *metadata.Override) (*doctree.Document, error) {
	end, ok := SplitHeader(blocks, p.opts.HeaderScanLimit)
	if !ok {
		return nil, ErrNoHeader
	}
	doc := &doctree.Document{Family: "judgment"}
	doc.Header = p.header.Blocks(enrich.CourtBlocks(blocks[:end]))

	body, tail := splitConclusions(blocks[end:])
	doc.Body, _ = p.bodies[min(end, len(p.bodies)-1)].Classify(body)
	doc.Conclusions = p.conclusions.Blocks(tail)

	doc.Meta = Metadata(doc.Header)
	if err := metadata.Apply(&doc.Meta, override, p.log); err != nil {
		return nil, err
	}
	p.log.Debug("judgment parsed",
		"header", len(doc.Header),
		"divisions", len(doc.Body),
		"conclusions", len(doc.Conclusions),
		"citation", doc.Meta.Citation)
	return doc, nil
}

var (
	titleLine = regexp.MustCompile(`(?i)^(?:approved\s+)?judgment$`)
	separator = regexp.MustCompile(`^[-_=]{5,}$`)
)

// SplitHeader returns the length of the header. The header ends after a
// "JUDGMENT" title line, or otherwise after the last separator line before
// the first numbered paragraph, or otherwise before that paragraph. The scan
// covers at most limit blocks; ok is false when no end is found or the
// header would be empty.
func SplitHeader(blocks []model.Block, limit int) (end int, ok bool) {
	seen := false
	lastSep := -1
	numbered := func(i int) (int, bool) {
		if lastSep >= 0 {
			return lastSep + 1, true
		}
		return i, i > 0
	}
	for i, b := range blocks {
		if i >= limit {
			break
		}
		switch v := b.(type) {
		case *model.NumberedLine:
			return numbered(i)
		case *model.TextLine:
			text := model.Normalize(v.Text())
			switch {
			case text == "":
			case titleLine.MatchString(text) && seen:
				return i + 1, true
			case separator.MatchString(strings.ReplaceAll(text, " ", "")):
				if seen {
					lastSep = i
				}
			case classify.Peel(v, peelNumber) != b:
				return numbered(i)
			default:
				seen = true
			}
		case *model.Table:
			seen = true
		}
	}
	if lastSep >= 0 {
		return lastSep + 1, true
	}
	return 0, false
}

// Lines closing a judgment: the copyright notice, an approval statement,
// the order, or a judge's signature line.
var conclusionMarker = regexp.MustCompile(`(?i)^(?:©\s*)?(?:crown\s+copyright|approved\s+by|order\s+accordingly|(?:lord|lady)\s+justice\s+[a-z'’-]+\s*:?|(?:mr|mrs|ms)\s+justice\s+[a-z'’-]+\s*:?|i\s+agree\.?)`)

// splitConclusions separates the trailing blocks that start at the first
// marker line after the last numbered paragraph.
func splitConclusions(blocks []model.Block) (body, tail []model.Block) {
	last := -1
	for i, b := range blocks {
		switch v := b.(type) {
		case *model.NumberedLine:
			last = i
		case *model.TextLine:
			if classify.Peel(v, peelNumber) != b {
				last = i
			}
		}
	}
	if last < 0 {
		return blocks, nil
	}
	for i := last + 1; i < len(blocks); i++ {
		l, ok := blocks[i].(*model.TextLine)
		if ok && conclusionMarker.MatchString(model.Normalize(l.Text())) {
			return blocks[:i], blocks[i:]
		}
	}
	return blocks, nil
}

// Metadata derives the document identity from an enriched header.
func Metadata(header []model.Block) doctree.Metadata {
	lines := flatten(header)
	var meta doctree.Metadata
	if s := first(lines, model.Citation, ""); s != nil {
		meta.Citation = s.Value
		meta.URI, _ = enrich.CitationURI(s.Value)
	}
	meta.Court = enrich.CourtCode(lines)
	if s := first(lines, model.Date, "judgment"); s != nil {
		meta.Date = s.Value
	} else if s := first(lines, model.Date, ""); s != nil {
		meta.Date = s.Value
	}
	meta.Name = enrich.CaseName(lines)
	return meta
}

func first(blocks []model.Block, cat model.Category, role string) *model.Span {
	for _, b := range blocks {
		l, ok := model.LineOf(b)
		if !ok {
			continue
		}
		for _, s := range model.Spans(l.Contents, cat) {
			if role == "" || s.Role == role {
				return s
			}
		}
	}
	return nil
}

// flatten lists the lines of blocks, descending into table cells.
func flatten(blocks []model.Block) []model.Block {
	var out []model.Block
	for _, b := range blocks {
		t, ok := b.(*model.Table)
		if !ok {
			out = append(out, b)
			continue
		}
		for _, row := range t.Rows {
			for _, cell := range row.Cells {
				out = append(out, flatten(cell.Blocks)...)
			}
		}
	}
	return out
}
