package levels

import (
	"testing"

	"github.com/dgallion1/lawtree/internal/model"
)

func mustKind(t *testing.T, r *Registry, name string) *Kind {
	t.Helper()
	k, ok := r.Kind(name)
	if !ok {
		t.Fatalf("registry %s has no kind %s", r.Name, name)
	}
	return k
}

func TestBill_ParseTitle(t *testing.T) {
	part := mustKind(t, Bill(), "Part")
	cases := map[string]string{"PART 1": "1", "PART 2A": "2A", "PART A1": "A1"}
	for in, want := range cases {
		got, ok := part.ParseTitle(in)
		if !ok || got != want {
			t.Errorf("%q: expected %q, got %q (ok=%v)", in, want, got, ok)
		}
	}
	if _, ok := part.ParseTitle("PART ONE"); ok {
		t.Error("expected PART ONE to be rejected")
	}
}

func TestBill_ParseNumber(t *testing.T) {
	r := Bill()
	cases := []struct {
		kind, num, want string
	}{
		{"Section", "1.", "1"},
		{"Section", "12A", "12A"},
		{"Subsection", "(3)", "3"},
		{"Para1", "(aa)", "aa"},
		{"Para2", "(iv)", "iv"},
		{"Para3", "(B)", "B"},
	}
	for _, c := range cases {
		got, ok := mustKind(t, r, c.kind).ParseNumber(c.num)
		if !ok || got != c.want {
			t.Errorf("%s %q: expected %q, got %q", c.kind, c.num, c.want, got)
		}
	}
}

func TestRegistry_ValidChild(t *testing.T) {
	r := Bill()
	part := mustKind(t, r, "Part")
	chapter := mustKind(t, r, "Chapter")
	section := mustKind(t, r, "Section")
	para1 := mustKind(t, r, "Para1")
	if !r.ValidChild(part, chapter) || !r.ValidChild(chapter, section) || !r.ValidChild(section, para1) {
		t.Error("expected the standard nesting to be valid")
	}
	if r.ValidChild(chapter, part) || r.ValidChild(para1, section) {
		t.Error("expected inverted nesting to be invalid")
	}
	if !r.ValidChild(nil, part) || r.ValidChild(nil, para1) {
		t.Error("unexpected root validity")
	}
	if !r.ValidChild(para1, Dummy) {
		t.Error("expected Dummy to be valid everywhere")
	}
}

func TestRegistry_SpecificityOrder(t *testing.T) {
	for _, r := range []*Registry{Bill(), Schedules(), Judgment(JudgmentOptions{})} {
		seen := map[string]int{}
		for i, k := range r.Kinds {
			seen[k.Name] = i
		}
		for i, k := range r.Kinds {
			for _, c := range k.Children() {
				if seen[c] <= i {
					t.Errorf("%s: child %s of %s listed before its parent", r.Name, c, k.Name)
				}
			}
		}
	}
}

func TestNewRegistry_UnknownChildPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for unknown child")
		}
	}()
	NewRegistry("broken", nil, &Kind{Name: "A", children: []string{"B"}})
}

func TestRegistry_Quoted(t *testing.T) {
	q := Bill().Quoted()
	para1 := mustKind(t, q, "Para1")
	if !q.ValidChild(nil, para1) || !q.ValidChild(nil, Unnumbered) {
		t.Error("expected every kind to be valid at the root of a quoted registry")
	}
}

func TestFollows(t *testing.T) {
	cases := []struct {
		prev, next string
		want       bool
	}{
		{"1", "2", true},
		{"3", "3A", true},
		{"3A", "4", true},
		{"2", "4", false},
		{"h", "i", true},
		{"a", "i", false},
		{"i", "ii", true},
		{"iv", "v", true},
		{"z", "aa", true},
		{"", "a", false},
	}
	for _, c := range cases {
		if got := Follows(c.prev, c.next); got != c.want {
			t.Errorf("Follows(%q, %q): expected %v, got %v", c.prev, c.next, c.want, got)
		}
	}
}

func TestRoman(t *testing.T) {
	cases := map[string]int{"i": 1, "iv": 4, "ix": 9, "xiv": 14, "XL": 40}
	for in, want := range cases {
		if got, ok := Roman(in); !ok || got != want {
			t.Errorf("%q: expected %d, got %d", in, want, got)
		}
	}
	if _, ok := Roman("b"); ok {
		t.Error("expected b not to be roman")
	}
}

func TestHeadingLike(t *testing.T) {
	bold := model.Formatting{Bold: true}
	cases := []struct {
		b    model.Block
		want bool
	}{
		{&model.TextLine{Contents: []model.Inline{&model.Text{Value: "Preliminary", Format: bold}}}, true},
		{&model.TextLine{Contents: []model.Inline{&model.Text{Value: "GENERAL PROVISIONS"}}}, true},
		{&model.TextLine{Alignment: model.AlignCenter, Contents: []model.Inline{&model.Text{Value: "Interpretation"}}}, true},
		{&model.TextLine{Contents: []model.Inline{&model.Text{Value: "Ends with a stop.", Format: bold}}}, false},
		{&model.TextLine{Contents: []model.Inline{&model.Text{Value: "plain words"}}}, false},
		{&model.NumberedLine{Number: &model.Text{Value: "1"}, TextLine: model.TextLine{Contents: []model.Inline{&model.Text{Value: "X", Format: bold}}}}, false},
	}
	for i, c := range cases {
		if got := HeadingLike(c.b); got != c.want {
			t.Errorf("case %d: expected %v, got %v", i, c.want, got)
		}
	}
}

func TestJudgment_CrossHeadingMinPosition(t *testing.T) {
	r := Judgment(JudgmentOptions{CrossHeadingMinPosition: 2})
	ch := mustKind(t, r, "CrossHeading")
	blocks := []model.Block{
		&model.TextLine{Contents: []model.Inline{&model.Text{Value: "Introduction", Format: model.Formatting{Bold: true}}}},
		&model.TextLine{Contents: []model.Inline{&model.Text{Value: "text"}}},
		&model.TextLine{Contents: []model.Inline{&model.Text{Value: "Background", Format: model.Formatting{Bold: true}}}},
		&model.TextLine{Indent: model.Indent{Left: 36}, Contents: []model.Inline{&model.Text{Value: "Indented", Format: model.Formatting{Bold: true}}}},
	}
	if ch.Heading(blocks, 0) {
		t.Error("expected bold line inside the title block to be rejected")
	}
	if !ch.Heading(blocks, 2) {
		t.Error("expected bold line after the minimum position to be a cross-heading")
	}
	if ch.Heading(blocks, 3) {
		t.Error("expected indented bold line to be rejected")
	}
}

func TestJudgment_CrossHeadingOffset(t *testing.T) {
	r := Judgment(JudgmentOptions{CrossHeadingMinPosition: 3, Offset: 3})
	ch := mustKind(t, r, "CrossHeading")
	blocks := []model.Block{
		&model.TextLine{Contents: []model.Inline{&model.Text{Value: "Introduction", Format: model.Formatting{Bold: true}}}},
	}
	if !ch.Heading(blocks, 0) {
		t.Error("expected a bold line at document position 3 to be a cross-heading")
	}
	r = Judgment(JudgmentOptions{CrossHeadingMinPosition: 3, Offset: 2})
	if mustKind(t, r, "CrossHeading").Heading(blocks, 0) {
		t.Error("expected a bold line at document position 2 to be rejected")
	}
}

func TestForFamily(t *testing.T) {
	if _, err := ForFamily("statute", JudgmentOptions{}); err == nil {
		t.Error("expected error for unknown family")
	}
	r, err := ForFamily("bill", JudgmentOptions{})
	if err != nil || r.Name != "bill" {
		t.Errorf("expected bill registry, got %v, %v", r, err)
	}
}
