package model

import (
	"encoding/json"
	"fmt"
)

type textJSON struct {
	Type string `json:"type"`
	Text string `json:"text"`
	Formatting
}

type spanJSON struct {
	Type     string      `json:"type"`
	Category Category    `json:"category"`
	Value    string      `json:"value,omitempty"`
	Role     string      `json:"role,omitempty"`
	ID       string      `json:"id,omitempty"`
	Runs     []*textJSON `json:"runs"`
}

type inlineJSON struct {
	Type string `json:"type"`
	Src  string `json:"src,omitempty"`
	Alt  string `json:"alt,omitempty"`
}

func (t *Text) MarshalJSON() ([]byte, error) {
	return json.Marshal(textJSON{Type: string(InlineText), Text: t.Value, Formatting: t.Format})
}

func (Tab) MarshalJSON() ([]byte, error) {
	return json.Marshal(inlineJSON{Type: string(InlineTab)})
}

func (LineBreak) MarshalJSON() ([]byte, error) {
	return json.Marshal(inlineJSON{Type: string(InlineBreak)})
}

func (i *ImageRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(inlineJSON{Type: string(InlineImage), Src: i.Src, Alt: i.Alt})
}

func (s *Span) MarshalJSON() ([]byte, error) {
	out := spanJSON{Type: string(InlineSpan), Category: s.Category, Value: s.Value, Role: s.Role, ID: s.ID}
	for _, r := range s.Runs {
		out.Runs = append(out.Runs, &textJSON{Type: string(InlineText), Text: r.Value, Formatting: r.Format})
	}
	return json.Marshal(out)
}

type lineJSON struct {
	Type      string            `json:"type"`
	Number    *textJSON         `json:"number,omitempty"`
	Style     string            `json:"style,omitempty"`
	Alignment Alignment         `json:"align,omitempty"`
	Indent    Indent            `json:"indent"`
	Contents  []json.RawMessage `json:"contents"`
}

func (l *TextLine) MarshalJSON() ([]byte, error) {
	return marshalLine(string(BlockLine), nil, l)
}

func (n *NumberedLine) MarshalJSON() ([]byte, error) {
	num := &textJSON{Type: string(InlineText), Text: n.Number.Value, Formatting: n.Number.Format}
	return marshalLine(string(BlockNumbered), num, &n.TextLine)
}

func marshalLine(typ string, num *textJSON, l *TextLine) ([]byte, error) {
	out := lineJSON{Type: typ, Number: num, Style: l.Style, Alignment: l.Alignment, Indent: l.Indent}
	out.Contents = make([]json.RawMessage, 0, len(l.Contents))
	for _, in := range l.Contents {
		raw, err := json.Marshal(in)
		if err != nil {
			return nil, err
		}
		out.Contents = append(out.Contents, raw)
	}
	return json.Marshal(out)
}

type tableJSON struct {
	Type string      `json:"type"`
	Rows [][]cellOut `json:"rows"`
}

type cellOut struct {
	Blocks []Block `json:"blocks"`
}

func (t *Table) MarshalJSON() ([]byte, error) {
	out := tableJSON{Type: string(BlockTable), Rows: make([][]cellOut, 0, len(t.Rows))}
	for _, row := range t.Rows {
		cells := make([]cellOut, 0, len(row.Cells))
		for _, c := range row.Cells {
			cells = append(cells, cellOut{Blocks: c.Blocks})
		}
		out.Rows = append(out.Rows, cells)
	}
	return json.Marshal(out)
}

func (u *Unknown) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{"type": string(BlockUnknown), "name": u.Name})
}

// DecodeBlocks reads a JSON array of blocks in the form produced by the
// MarshalJSON methods above.
func DecodeBlocks(data []byte) ([]Block, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("decode blocks: %w", err)
	}
	blocks := make([]Block, 0, len(raws))
	for i, raw := range raws {
		b, err := decodeBlock(raw)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

func decodeBlock(raw json.RawMessage) (Block, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, err
	}
	switch BlockKind(head.Type) {
	case BlockLine, BlockNumbered:
		var in lineJSON
		if err := json.Unmarshal(raw, &in); err != nil {
			return nil, err
		}
		line := TextLine{Style: in.Style, Alignment: in.Alignment, Indent: in.Indent}
		for _, c := range in.Contents {
			inl, err := decodeInline(c)
			if err != nil {
				return nil, err
			}
			line.Contents = append(line.Contents, inl)
		}
		if BlockKind(head.Type) == BlockLine {
			return &line, nil
		}
		if in.Number == nil {
			return nil, fmt.Errorf("numbered block without number")
		}
		return &NumberedLine{Number: &Text{Value: in.Number.Text, Format: in.Number.Formatting}, TextLine: line}, nil
	case BlockTable:
		var in struct {
			Rows [][]struct {
				Blocks []json.RawMessage `json:"blocks"`
			} `json:"rows"`
		}
		if err := json.Unmarshal(raw, &in); err != nil {
			return nil, err
		}
		t := &Table{}
		for _, row := range in.Rows {
			var r Row
			for _, cell := range row {
				var c Cell
				for _, rb := range cell.Blocks {
					b, err := decodeBlock(rb)
					if err != nil {
						return nil, err
					}
					c.Blocks = append(c.Blocks, b)
				}
				r.Cells = append(r.Cells, c)
			}
			t.Rows = append(t.Rows, r)
		}
		return t, nil
	case BlockUnknown:
		var in struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(raw, &in); err != nil {
			return nil, err
		}
		return &Unknown{Name: in.Name}, nil
	}
	return nil, fmt.Errorf("unsupported block type %q", head.Type)
}

func decodeInline(raw json.RawMessage) (Inline, error) {
	var head inlineJSON
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, err
	}
	switch InlineKind(head.Type) {
	case InlineText:
		var t textJSON
		if err := json.Unmarshal(raw, &t); err != nil {
			return nil, err
		}
		return &Text{Value: t.Text, Format: t.Formatting}, nil
	case InlineTab:
		return Tab{}, nil
	case InlineBreak:
		return LineBreak{}, nil
	case InlineImage:
		return &ImageRef{Src: head.Src, Alt: head.Alt}, nil
	case InlineSpan:
		var s spanJSON
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		span := &Span{Category: s.Category, Value: s.Value, Role: s.Role, ID: s.ID}
		for _, r := range s.Runs {
			span.Runs = append(span.Runs, &Text{Value: r.Text, Format: r.Formatting})
		}
		return span, nil
	}
	return nil, fmt.Errorf("unsupported inline type %q", head.Type)
}
