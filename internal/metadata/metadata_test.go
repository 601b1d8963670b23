package metadata

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/dgallion1/lawtree/internal/doctree"
)

func TestLoad_YAML(t *testing.T) {
	o, err := Load(strings.NewReader("uri: ewca/civ/2022/733\ncitation: \"[2022] EWCA Civ 733\"\ndate: 2022-05-27\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if o.URI != "ewca/civ/2022/733" || o.Date != "2022-05-27" {
		t.Errorf("unexpected override %+v", o)
	}
}

func TestLoad_JSON(t *testing.T) {
	o, err := Load(strings.NewReader(`{"court": "EWCA-Civil", "name": "Smith v Jones"}`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if o.Court != "EWCA-Civil" || o.Name != "Smith v Jones" {
		t.Errorf("unexpected override %+v", o)
	}
}

func TestLoad_UnknownField(t *testing.T) {
	if _, err := Load(strings.NewReader("judge: Smith\n")); err == nil {
		t.Error("expected an error for an unknown field")
	}
}

func TestLoad_MalformedDate(t *testing.T) {
	_, err := Load(strings.NewReader("date: 27/05/2022\n"))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected a ValidationError, got %v", err)
	}
	if verr.Field != "date" || verr.Value != "27/05/2022" {
		t.Errorf("unexpected error %+v", verr)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name  string
		o     Override
		field string
	}{
		{"empty", Override{}, ""},
		{"good", Override{URI: "ukut/iac/2021/12", Court: "UKUT-IAC", Citation: "[2021] UKUT 12 (IAC)"}, ""},
		{"bad citation", Override{Citation: "Smith v Jones"}, "citation"},
		{"bad uri", Override{URI: "/EWCA/Civ"}, "uri"},
		{"bad court", Override{Court: "court of appeal"}, "court"},
	}
	for _, tc := range cases {
		err := tc.o.Validate()
		var verr *ValidationError
		switch {
		case tc.field == "" && err != nil:
			t.Errorf("%s: unexpected error %v", tc.name, err)
		case tc.field != "" && (!errors.As(err, &verr) || verr.Field != tc.field):
			t.Errorf("%s: expected a %s error, got %v", tc.name, tc.field, err)
		}
	}
}

func TestApply_OverrideWinsAndWarns(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	meta := doctree.Metadata{Court: "EWHC-KBD", Citation: "[2022] EWCA Civ 733", Name: "A v B"}
	o := &Override{Court: "EWCA-Civil", Citation: "[2022]  EWCA  Civ  733", Date: "2022-05-27"}
	if err := Apply(&meta, o, log); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if meta.Court != "EWCA-Civil" || meta.Date != "2022-05-27" || meta.Name != "A v B" {
		t.Errorf("unexpected metadata %+v", meta)
	}
	out := buf.String()
	if strings.Count(out, "level=WARN") != 1 || !strings.Contains(out, "field=court") {
		t.Errorf("expected exactly one court mismatch warning, got %q", out)
	}
}

func TestApply_Nil(t *testing.T) {
	meta := doctree.Metadata{URI: "x"}
	if err := Apply(&meta, nil, nil); err != nil || meta.URI != "x" {
		t.Errorf("expected nil override to be a no-op")
	}
}

func TestApply_CitationRederivesURI(t *testing.T) {
	meta := doctree.Metadata{Citation: "[2022] EWCA Civ 733", URI: "ewca/civ/2022/733"}
	if err := Apply(&meta, &Override{Citation: "[2023] EWHC 12 (Admin)"}, nil); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if meta.Citation != "[2023] EWHC 12 (Admin)" || meta.URI != "ewhc/admin/2023/12" {
		t.Errorf("expected the URI of the overriding citation, got %q / %q", meta.Citation, meta.URI)
	}

	meta = doctree.Metadata{Citation: "[2022] EWCA Civ 733", URI: "ewca/civ/2022/733"}
	if err := Apply(&meta, &Override{Citation: "[2023] EWHC 12 (Admin)", URI: "custom/path"}, nil); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if meta.URI != "custom/path" {
		t.Errorf("expected an explicit URI to win, got %q", meta.URI)
	}
}
