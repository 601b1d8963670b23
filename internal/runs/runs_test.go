package runs

import (
	"testing"

	"github.com/dgallion1/lawtree/internal/model"
)

var bold = model.Formatting{Bold: true}

func TestMerge_CoalescesIdenticalFormatting(t *testing.T) {
	in := []model.Inline{
		&model.Text{Value: "Neutral ", Format: bold},
		&model.Text{Value: "Citation", Format: bold},
		&model.Text{Value: " Number: "},
		model.Tab{},
		&model.Text{Value: "[2022] "},
		&model.Text{Value: "EWCA Civ 733"},
	}
	got := Merge(in)
	if len(got) != 4 {
		t.Fatalf("expected 4 runs, got %d", len(got))
	}
	if got[0].Text() != "Neutral Citation" {
		t.Errorf("expected merged bold run, got %q", got[0].Text())
	}
	if got[3].Text() != "[2022] EWCA Civ 733" {
		t.Errorf("expected merged citation run, got %q", got[3].Text())
	}
	if model.Concat(got) != model.Concat(in) {
		t.Errorf("merge changed text: %q vs %q", model.Concat(got), model.Concat(in))
	}
}

func TestMerge_DoesNotMutateInput(t *testing.T) {
	first := &model.Text{Value: "a"}
	in := []model.Inline{first, &model.Text{Value: "b"}}
	Merge(in)
	if first.Value != "a" {
		t.Errorf("input run mutated to %q", first.Value)
	}
}

func TestMerge_Idempotent(t *testing.T) {
	inputs := [][]model.Inline{
		nil,
		{&model.Text{Value: ""}},
		{&model.Text{Value: "a"}, &model.Text{Value: "b", Format: bold}, &model.Text{Value: "c", Format: bold}},
		{&model.Text{Value: "x"}, model.LineBreak{}, &model.Text{Value: "y"}, &model.Text{Value: "z"}},
		{&model.Span{Category: model.Date, Runs: []*model.Text{{Value: "1 May 2020"}}}, &model.Text{Value: "q"}},
	}
	for i, in := range inputs {
		once := Merge(in)
		twice := Merge(once)
		if len(once) != len(twice) {
			t.Errorf("input %d: expected %d runs after second merge, got %d", i, len(once), len(twice))
			continue
		}
		for j := range once {
			if once[j].Text() != twice[j].Text() || once[j].Kind() != twice[j].Kind() {
				t.Errorf("input %d run %d: %q != %q", i, j, once[j].Text(), twice[j].Text())
			}
		}
	}
}

func TestTrimTrailing(t *testing.T) {
	in := []model.Inline{&model.Text{Value: "Claimant"}, model.Tab{}, &model.Text{Value: "  "}, model.Tab{}}
	got := TrimTrailing(in)
	if len(got) != 1 || got[0].Text() != "Claimant" {
		t.Errorf("expected only the text run to remain, got %d runs", len(got))
	}
	if len(TrimTrailing([]model.Inline{model.Tab{}})) != 0 {
		t.Error("expected all-tab line to trim to nothing")
	}
}

func TestSplitAt_ThreeSegments(t *testing.T) {
	run := &model.Text{Value: "See [2022] EWCA Civ 733 above", Format: bold}
	got := SplitAt(run, 4, 23)
	if len(got) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(got))
	}
	want := []string{"See ", "[2022] EWCA Civ 733", " above"}
	for i, w := range want {
		if got[i].Value != w {
			t.Errorf("segment %d: expected %q, got %q", i, w, got[i].Value)
		}
		if got[i].Format != bold {
			t.Errorf("segment %d lost formatting", i)
		}
	}
}

func TestSplitAt_OmitsEmptySegments(t *testing.T) {
	run := &model.Text{Value: "[2022] UKSC 5"}
	if got := SplitAt(run, 0, len(run.Value)); len(got) != 1 {
		t.Errorf("expected a single segment for a whole-run match, got %d", len(got))
	}
	if got := SplitAt(run, 0, 6); len(got) != 2 || got[0].Value != "[2022]" {
		t.Errorf("expected match plus after, got %v", got)
	}
}

func TestWrap_PreservesText(t *testing.T) {
	in := []model.Inline{&model.Text{Value: "Case No: A1/2020/1234"}}
	out := Wrap(in, 0, 9, 21, func(m *model.Text) model.Inline {
		return &model.Span{Category: model.CaseNumber, Runs: []*model.Text{m}}
	})
	if len(out) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(out))
	}
	if s, ok := out[1].(*model.Span); !ok || s.Text() != "A1/2020/1234" {
		t.Errorf("expected case number span, got %#v", out[1])
	}
	if model.Concat(out) != model.Concat(in) {
		t.Errorf("wrap changed text")
	}
}

func TestSignificant_SkipsInterstitials(t *testing.T) {
	in := []model.Inline{
		&model.Text{Value: "17"},
		&model.ImageRef{},
		&model.Text{Value: "th"},
		model.LineBreak{},
		&model.Text{Value: " "},
		&model.Text{Value: "June 2025"},
		model.Tab{},
	}
	got := Significant(in)
	want := []int{0, 2, 5, 6}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %v, got %v", want, got)
			break
		}
	}
}

func TestTrimmed(t *testing.T) {
	s, start, end := Trimmed(&model.Text{Value: "  Claimant "})
	if s != "Claimant" || start != 2 || end != 10 {
		t.Errorf("unexpected trim result %q %d %d", s, start, end)
	}
}

func TestWrapRange_AcrossRuns(t *testing.T) {
	in := []model.Inline{
		&model.Text{Value: "Date: 17"},
		&model.Text{Value: "th", Format: model.Formatting{VertAlign: "superscript"}},
		&model.Text{Value: " June 2025."},
	}
	out := WrapRange(in, 0, 2, 6, 20, func(parts []*model.Text) model.Inline {
		return &model.Span{Category: model.Date, Runs: parts}
	})
	if model.Concat(out) != model.Concat(in) {
		t.Fatalf("text changed: %q", model.Concat(out))
	}
	if len(out) != 3 {
		t.Fatalf("expected before, span, after; got %d runs", len(out))
	}
	span, ok := out[1].(*model.Span)
	if !ok {
		t.Fatalf("expected span at index 1, got %T", out[1])
	}
	if span.Text() != "17th June 2025" {
		t.Errorf("expected span text %q, got %q", "17th June 2025", span.Text())
	}
	if len(span.Runs) != 3 || span.Runs[1].Format.VertAlign != "superscript" {
		t.Errorf("expected span to keep the superscript run, got %d runs", len(span.Runs))
	}
}

func TestTextRun(t *testing.T) {
	in := []model.Inline{&model.Text{Value: "a"}, &model.Text{Value: "b"}, model.Tab{}, &model.Text{Value: "c"}}
	if got := TextRun(in, 0); got != 1 {
		t.Errorf("expected run to end at 1, got %d", got)
	}
	if got := TextRun(in, 2); got != -1 {
		t.Errorf("expected -1 for a tab, got %d", got)
	}
}
