package doctree

import (
	"encoding/json"

	"github.com/dgallion1/lawtree/internal/model"
)

type divisionJSON struct {
	Kind     string        `json:"kind"`
	Class    string        `json:"class"`
	Number   string        `json:"number,omitempty"`
	Value    string        `json:"value,omitempty"`
	Heading  string        `json:"heading,omitempty"`
	Lead     []model.Block `json:"lead,omitempty"`
	Intro    []model.Block `json:"intro,omitempty"`
	Children []*Division   `json:"children,omitempty"`
	WrapUp   []model.Block `json:"wrapUp,omitempty"`
	Contents []model.Block `json:"contents,omitempty"`
}

func (d *Division) MarshalJSON() ([]byte, error) {
	out := divisionJSON{
		Kind:    d.Kind.Name,
		Class:   d.Kind.Class,
		Number:  d.Number,
		Value:   d.Value,
		Heading: d.Heading,
		Lead:    d.Lead,
	}
	if d.IsLeaf() {
		out.Contents = d.Intro
	} else {
		out.Intro, out.Children, out.WrapUp = d.Intro, d.Children, d.WrapUp
	}
	return json.Marshal(out)
}

func (q *QuotedStructure) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type     string      `json:"type"`
		Open     string      `json:"open"`
		Close    string      `json:"close"`
		Appended string      `json:"appended,omitempty"`
		Contents []*Division `json:"contents"`
	}{string(model.BlockQuoted), q.Open, q.Close, q.Appended, q.Contents})
}

func (doc *Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Family      string        `json:"family"`
		Meta        Metadata      `json:"meta"`
		Header      []model.Block `json:"header,omitempty"`
		Preamble    []model.Block `json:"preamble,omitempty"`
		Body        []*Division   `json:"body"`
		Schedules   []*Division   `json:"schedules,omitempty"`
		Conclusions []model.Block `json:"conclusions,omitempty"`
	}{doc.Family, doc.Meta, doc.Header, doc.Preamble, doc.Body, doc.Schedules, doc.Conclusions})
}
