package judgment

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/dgallion1/lawtree/internal/classify"
	"github.com/dgallion1/lawtree/internal/levels"
	"github.com/dgallion1/lawtree/internal/metadata"
	"github.com/dgallion1/lawtree/internal/model"
)

func line(parts ...model.Inline) *model.TextLine {
	return &model.TextLine{Contents: parts}
}

func txt(s string) *model.Text { return &model.Text{Value: s} }

func plain(s string) *model.TextLine { return line(txt(s)) }

func sample() []model.Block {
	return []model.Block{
		line(&model.Text{Value: "Neutral Citation Number: ", Format: model.Formatting{Bold: true}}, txt("[2022] EWCA Civ 733")),
		plain("Case No: A1/2021/1234"),
		plain("IN THE COURT OF APPEAL (CIVIL DIVISION)"),
		plain("Date: 27/05/2022"),
		plain("Before:"),
		plain("LORD JUSTICE SMITH"),
		plain("- - - - - - - - - -"),
		line(txt("Claimant:"), model.Tab{}, txt("JOHN BROWN")),
		plain("- and -"),
		line(txt("Defendant:"), model.Tab{}, txt("ACME LIMITED")),
		plain("- - - - - - - - - -"),
		plain("Approved Judgment"),
		plain("Lord Justice Smith:"),
		plain("1. This appeal concerns a contract."),
		plain("2. The judge found for the claimant."),
		line(&model.Text{Value: "Discussion", Format: model.Formatting{Bold: true}}),
		plain("3. I would dismiss the appeal."),
		plain("Crown copyright"),
	}
}

func newParser() *Parser {
	return NewParser(DefaultOptions(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestParse_Sections(t *testing.T) {
	in := sample()
	doc, err := newParser().Parse(in, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(doc.Header) != 12 {
		t.Errorf("expected 12 header blocks, got %d", len(doc.Header))
	}
	if len(doc.Conclusions) != 1 {
		t.Errorf("expected 1 conclusion block, got %d", len(doc.Conclusions))
	}
	if len(doc.Body) != 4 {
		t.Fatalf("expected 4 top-level divisions, got %d", len(doc.Body))
	}
	if doc.Body[0].Kind != levels.Unnumbered {
		t.Errorf("expected the speaker line as unnumbered prose, got %s", doc.Body[0].Kind)
	}
	if doc.Body[1].Kind.Name != "Paragraph" || doc.Body[1].Value != "1" {
		t.Errorf("expected paragraph 1, got %s %q", doc.Body[1].Kind, doc.Body[1].Value)
	}
	cross := doc.Body[3]
	if cross.Heading != "Discussion" || len(cross.Children) != 1 || cross.Children[0].Value != "3" {
		t.Errorf("expected paragraph 3 under the Discussion cross-heading")
	}
}

func TestParse_CrossHeadingOpeningTheBody(t *testing.T) {
	bold := model.Formatting{Bold: true}
	in := []model.Block{
		line(&model.Text{Value: "Neutral Citation Number: ", Format: bold}, txt("[2022] EWCA Civ 733")),
		plain("Case No: A1/2021/1234"),
		plain("Approved Judgment"),
		line(&model.Text{Value: "Introduction", Format: bold}),
		plain("1. This appeal concerns a contract."),
		plain("2. The judge found for the claimant."),
		line(&model.Text{Value: "Discussion", Format: bold}),
		plain("3. I would dismiss the appeal."),
	}
	doc, err := newParser().Parse(in, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(doc.Header) != 3 {
		t.Fatalf("expected 3 header blocks, got %d", len(doc.Header))
	}
	if len(doc.Body) != 2 {
		t.Fatalf("expected two cross-headings, got %d divisions", len(doc.Body))
	}
	intro := doc.Body[0]
	if intro.Kind.Name != "CrossHeading" || intro.Heading != "Introduction" {
		t.Fatalf("expected the Introduction cross-heading, got %s %q", intro.Kind.Name, intro.Heading)
	}
	if len(intro.Children) != 2 || intro.Children[0].Value != "1" || intro.Children[1].Value != "2" {
		t.Errorf("expected paragraphs 1 and 2 under Introduction, got %d children", len(intro.Children))
	}
}

func TestParse_CrossHeadingInsideTitleBlock(t *testing.T) {
	bold := model.Formatting{Bold: true}
	in := []model.Block{
		line(&model.Text{Value: "Neutral Citation Number: ", Format: bold}, txt("[2022] EWCA Civ 733")),
		plain("Approved Judgment"),
		line(&model.Text{Value: "Introduction", Format: bold}),
		plain("1. This appeal concerns a contract."),
	}
	doc, err := newParser().Parse(in, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(doc.Body) != 2 || doc.Body[0].Kind != levels.Unnumbered {
		t.Errorf("expected a bold line at document position 2 to stay prose")
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
	m := doc.Meta
	if m.Citation != "[2022] EWCA Civ 733" || m.URI != "ewca/civ/2022/733" {
		t.Errorf("unexpected citation %q / %q", m.Citation, m.URI)
	}
	if m.Court != "EWCA-Civil" {
		t.Errorf("expected EWCA-Civil, got %q", m.Court)
	}
	if m.Date != "2022-05-27" {
		t.Errorf("expected 2022-05-27, got %q", m.Date)
	}
	if m.Name != "JOHN BROWN v ACME LIMITED" {
		t.Errorf("unexpected case name %q", m.Name)
	}
}

func TestParse_Override(t *testing.T) {
	doc, err := newParser().Parse(sample(), &metadata.Override{Court: "EWHC-KBD", Name: "Brown v Acme"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if doc.Meta.Court != "EWHC-KBD" || doc.Meta.Name != "Brown v Acme" {
		t.Errorf("expected override to win, got %+v", doc.Meta)
	}
	if doc.Meta.Citation != "[2022] EWCA Civ 733" {
		t.Errorf("expected fields absent from the override to be kept")
	}

	_, err = newParser().Parse(sample(), &metadata.Override{Date: "May 2022"})
	var verr *metadata.ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("expected a ValidationError, got %v", err)
	}
}

func TestParse_NoHeader(t *testing.T) {
	cases := map[string][]model.Block{
		"prose only":       {plain("Some text"), plain("More text")},
		"numbered at once": {plain("1. The appeal."), plain("More text")},
		"empty":            nil,
	}
	for name, in := range cases {
		_, err := newParser().Parse(in, nil)
		if !errors.Is(err, ErrNoHeader) || !errors.Is(err, classify.ErrMissingAnchor) {
			t.Errorf("%s: expected ErrNoHeader, got %v", name, err)
		}
	}
}

func TestSplitHeader(t *testing.T) {
	num := &model.NumberedLine{Number: txt("1."), TextLine: *plain(" Text")}
	cases := []struct {
		name string
		in   []model.Block
		want int
	}{
		{"before numbered", []model.Block{plain("Header"), num}, 1},
		{"after last separator", []model.Block{plain("Header"), plain("_____"), plain("More"), plain("-----"), plain("Lord Justice X:"), num}, 4},
		{"title line", []model.Block{plain("Header"), plain("JUDGMENT"), plain("Intro"), num}, 2},
		{"leading title is header text", []model.Block{plain("Approved Judgment"), plain("Header"), num}, 2},
		{"separator only", []model.Block{plain("Header"), plain("=====")}, 2},
	}
	for _, tc := range cases {
		got, ok := SplitHeader(tc.in, 100)
		if !ok || got != tc.want {
			t.Errorf("%s: expected %d, got %d (%v)", tc.name, tc.want, got, ok)
		}
	}
}
