package bill

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/dgallion1/lawtree/internal/classify"
	"github.com/dgallion1/lawtree/internal/doctree"
	"github.com/dgallion1/lawtree/internal/model"
)

func txt(s string) *model.Text { return &model.Text{Value: s} }

func plain(s string) *model.TextLine { return &model.TextLine{Contents: []model.Inline{txt(s)}} }

func bold(s string) *model.TextLine {
	return &model.TextLine{Contents: []model.Inline{&model.Text{Value: s, Format: model.Formatting{Bold: true}}}}
}

func numbered(num, s string) *model.NumberedLine {
	return &model.NumberedLine{Number: txt(num), TextLine: *plain(s)}
}

func sample() []model.Block {
	return []model.Block{
		bold("Online Safety Bill"),
		plain("A BILL"),
		plain("TO make provision for the regulation of online services."),
		plain("Ordered, by the House of Commons, to be printed, 17th March 2022."),
		&model.TextLine{Contents: []model.Inline{txt("Coming into force"), model.Tab{}, txt("1st July 2025")}},
		plain("BE IT ENACTED by the King’s most Excellent Majesty, as follows:—"),
		bold("PART 1"),
		bold("Introduction"),
		numbered("1", "Overview of Act"),
		plain("(1) This Act provides for a new regulatory framework."),
		plain("(2) In section 3 of the Communications Act 2003, after subsection (4) insert—"),
		plain("“(4A) OFCOM must publish guidance.”"),
		bold("SCHEDULES"),
		bold("SCHEDULE 1"),
		bold("Exempt services"),
		numbered("1", "User-to-user services are exempt."),
	}
}

func newParser() *Parser {
	return NewParser(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestParse_Structure(t *testing.T) {
	doc, err := newParser().Parse(sample(), nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(doc.Header) != 5 || len(doc.Preamble) != 1 {
		t.Fatalf("expected 5 prelims blocks and a preamble, got %d / %d", len(doc.Header), len(doc.Preamble))
	}
	if len(doc.Body) != 1 || doc.Body[0].Kind.Name != "Part" || doc.Body[0].Heading != "Introduction" {
		t.Fatalf("expected Part 1 Introduction as the only top-level division")
	}
	section := doc.Body[0].Children[0]
	if section.Kind.Name != "Section" || section.Heading != "Overview of Act" || len(section.Children) != 2 {
		t.Fatalf("expected section 1 with two subsections")
	}
	sub := section.Children[1]
	if len(sub.Intro) != 1 {
		t.Fatalf("expected the amendment as content of subsection (2), got %d blocks", len(sub.Intro))
	}
	q, ok := sub.Intro[0].(*doctree.QuotedStructure)
	if !ok || len(q.Contents) != 1 || q.Contents[0].Value != "4A" {
		t.Errorf("expected a quoted subsection (4A)")
	}

	if len(doc.Schedules) != 1 || doc.Schedules[0].Kind.Name != "Schedules" {
		t.Fatalf("expected the schedules container, got %d divisions", len(doc.Schedules))
	}
	sch := doc.Schedules[0].Children[0]
	if sch.Kind.Name != "Schedule" || sch.Value != "1" || sch.Heading != "Exempt services" || len(sch.Children) != 1 {
		t.Errorf("expected Schedule 1 Exempt services with one paragraph")
	}
}

func TestParse_PreservesText(t *testing.T) {
	in := sample()
	doc, err := newParser().Parse(in, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var want, got strings.Builder
	for _, b := range in {
		want.WriteString(model.AllText(b))
	}
	for _, b := range doc.Blocks() {
		got.WriteString(model.AllText(b))
	}
	if got.String() != want.String() {
		t.Errorf("text changed:\n got %q\nwant %q", got.String(), want.String())
	}
}

func TestParse_Metadata(t *testing.T) {
	doc, err := newParser().Parse(sample(), nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if doc.Meta.Title != "Online Safety Bill" {
		t.Errorf("unexpected title %q", doc.Meta.Title)
	}
	if doc.Meta.Date != "2022-03-17" {
		t.Errorf("expected the earliest valid date, got %q", doc.Meta.Date)
	}
}

func TestParse_DateIDsPerDocument(t *testing.T) {
	p := newParser()
	var wg sync.WaitGroup
	ids := make([]string, 8)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			doc, err := p.Parse(sample(), nil)
			if err != nil {
				t.Errorf("parse: %v", err)
				return
			}
			for _, b := range doc.Header {
				l, _ := model.LineOf(b)
				for _, s := range model.Spans(l.Contents, model.Date) {
					if s.Role == "commence" {
						ids[i] = s.ID
					}
				}
			}
		}(i)
	}
	wg.Wait()
	for i, id := range ids {
		if id != "date-commence-1" {
			t.Errorf("parse %d: expected date-commence-1, got %q", i, id)
		}
	}
}

func TestParse_NoTitle(t *testing.T) {
	_, err := newParser().Parse([]model.Block{plain("Explanatory notes"), numbered("1", "Overview")}, nil)
	if !errors.Is(err, ErrNoTitle) || !errors.Is(err, classify.ErrMissingAnchor) {
		t.Errorf("expected ErrNoTitle, got %v", err)
	}
}

func TestParse_PreambleIsAnchor(t *testing.T) {
	doc, err := newParser().Parse([]model.Block{plain("Be it enacted by the Senedd Cymru as follows:"), numbered("1", "Overview")}, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(doc.Header) != 0 || len(doc.Body) != 1 {
		t.Errorf("expected empty prelims and one section, got %d / %d", len(doc.Header), len(doc.Body))
	}
}

func TestParse_RecitalsRunThroughEnactingFormula(t *testing.T) {
	in := []model.Block{
		bold("Harbours Bill"),
		plain("A BILL"),
		plain("WHEREAS it is expedient to make provision about harbours:"),
		plain("And whereas the harbour authority has consented:"),
		plain("Be it therefore enacted by the King’s most Excellent Majesty, as follows:—"),
		numbered("1", "Short title"),
		plain("This Act may be cited as the Harbours Act 2025."),
	}
	doc, err := newParser().Parse(in, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(doc.Header) != 2 || len(doc.Preamble) != 3 {
		t.Fatalf("expected 2 prelims blocks and a 3-line preamble, got %d / %d", len(doc.Header), len(doc.Preamble))
	}
	if len(doc.Body) != 1 || doc.Body[0].Kind.Name != "Section" {
		t.Fatalf("expected section 1 as the only top-level division, got %d", len(doc.Body))
	}
}

func TestParse_RecitalWithoutEnactingFormula(t *testing.T) {
	in := []model.Block{
		bold("Harbours Bill"),
		plain("WHEREAS it is expedient to make provision about harbours:"),
		numbered("1", "Short title"),
	}
	doc, err := newParser().Parse(in, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(doc.Preamble) != 1 || len(doc.Body) != 1 {
		t.Errorf("expected a one-line preamble and one section, got %d / %d", len(doc.Preamble), len(doc.Body))
	}
}
