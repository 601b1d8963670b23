package parser

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dgallion1/lawtree/internal/model"
	"github.com/fumiama/go-docx"
)

// DOCXReader handles .docx files.
type DOCXReader struct{}

func (p *DOCXReader) Read(r io.Reader) ([]model.Block, error) {
	// go-docx needs a ReaderAt and size.
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}
	nums := &listNumbers{}
	var blocks []model.Block
	for _, item := range doc.Document.Body.Items {
		switch v := item.(type) {
		case *docx.Paragraph:
			if b := docxParagraph(v, nums); b != nil {
				blocks = append(blocks, b)
			}
		case *docx.Table:
			blocks = append(blocks, docxTable(v, nums))
		}
	}
	return blocks, nil
}

func docxParagraph(para *docx.Paragraph, nums *listNumbers) model.Block {
	var lb lineBuilder
	for _, child := range para.Children {
		switch c := child.(type) {
		case *docx.Run:
			docxRun(c, &lb)
		case *docx.Hyperlink:
			docxRun(&c.Run, &lb)
		}
	}
	if lb.empty() {
		return nil
	}
	line := model.TextLine{Contents: lb.contents}
	props := para.Properties
	if props == nil {
		return &line
	}
	if props.Style != nil {
		line.Style = props.Style.Val
	}
	if props.Justification != nil {
		line.Alignment = docxAlignment(props.Justification.Val)
	}
	if props.Ind != nil {
		line.Indent.Left = twips(props.Ind.Left)
		line.Indent.FirstLine = twips(props.Ind.FirstLine)
		if props.Ind.Hanging != 0 {
			line.Indent.FirstLine = -twips(props.Ind.Hanging)
		}
	}
	if np := props.NumProperties; np != nil && np.NumID != nil && np.NumID.Val != "0" {
		level := 0
		if np.Ilvl != nil {
			level, _ = strconv.Atoi(np.Ilvl.Val)
		}
		return &model.NumberedLine{Number: &model.Text{Value: nums.next(np.NumID.Val, level)}, TextLine: line}
	}
	return &line
}

func docxRun(run *docx.Run, lb *lineBuilder) {
	f := docxFormatting(run.RunProperties)
	for _, rc := range run.Children {
		switch c := rc.(type) {
		case *docx.Text:
			lb.text(c.Text, f)
		case *docx.Tab:
			lb.add(model.Tab{})
		case *docx.BarterRabbet:
			if c.Type == "" || c.Type == "textWrapping" {
				lb.add(model.LineBreak{})
			}
		case *docx.Drawing:
			img := &model.ImageRef{}
			if c.Inline != nil && c.Inline.DocPr != nil {
				img.Alt = c.Inline.DocPr.Name
			}
			lb.add(img)
		}
	}
}

func docxFormatting(rp *docx.RunProperties) model.Formatting {
	var f model.Formatting
	if rp == nil {
		return f
	}
	f.Bold = rp.Bold != nil
	f.Italic = rp.Italic != nil
	f.Underline = rp.Underline != nil && rp.Underline.Val != "none"
	if rp.VertAlign != nil && rp.VertAlign.Val != "baseline" {
		f.VertAlign = rp.VertAlign.Val
	}
	if rp.Fonts != nil {
		f.Font = rp.Fonts.ASCII
	}
	if rp.Size != nil {
		// half-points
		if n, err := strconv.ParseFloat(rp.Size.Val, 64); err == nil {
			f.Size = n / 2
		}
	}
	return f
}

func docxTable(tbl *docx.Table, nums *listNumbers) *model.Table {
	out := &model.Table{}
	for _, row := range tbl.TableRows {
		var r model.Row
		for _, cell := range row.TableCells {
			var c model.Cell
			for _, p := range cell.Paragraphs {
				if b := docxParagraph(p, nums); b != nil {
					c.Blocks = append(c.Blocks, b)
				}
			}
			for _, inner := range cell.Tables {
				c.Blocks = append(c.Blocks, docxTable(inner, nums))
			}
			r.Cells = append(r.Cells, c)
		}
		out.Rows = append(out.Rows, r)
	}
	return out
}

func docxAlignment(val string) model.Alignment {
	switch strings.ToLower(val) {
	case "center":
		return model.AlignCenter
	case "right", "end":
		return model.AlignRight
	case "both", "distribute":
		return model.AlignJustify
	case "left", "start":
		return model.AlignLeft
	}
	return model.AlignNone
}

// twips converts twentieths of a point to points.
func twips(n int) float64 { return float64(n) / 20 }

// listNumbers renders Word list numbering. The numbering definitions are not
// read; each level uses the conventional legal format: "1.", "(a)", "(i)",
// "(A)".
type listNumbers struct {
	counters map[string][]int
}

func (l *listNumbers) next(numID string, level int) string {
	if l.counters == nil {
		l.counters = make(map[string][]int)
	}
	level = max(0, min(level, 8))
	c := l.counters[numID]
	for len(c) <= level {
		c = append(c, 0)
	}
	c[level]++
	for i := level + 1; i < len(c); i++ {
		c[i] = 0
	}
	l.counters[numID] = c
	n := c[level]
	switch level % 4 {
	case 0:
		return strconv.Itoa(n) + "."
	case 1:
		return "(" + alphaNumber(n) + ")"
	case 2:
		return "(" + romanNumber(n) + ")"
	default:
		return "(" + strings.ToUpper(alphaNumber(n)) + ")"
	}
}

func alphaNumber(n int) string {
	var sb []byte
	for n > 0 {
		n--
		sb = append([]byte{byte('a' + n%26)}, sb...)
		n /= 26
	}
	return string(sb)
}

var romanTable = []struct {
	v int
	s string
}{{1000, "m"}, {900, "cm"}, {500, "d"}, {400, "cd"}, {100, "c"}, {90, "xc"}, {50, "l"}, {40, "xl"}, {10, "x"}, {9, "ix"}, {5, "v"}, {4, "iv"}, {1, "i"}}

func romanNumber(n int) string {
	var sb strings.Builder
	for _, r := range romanTable {
		for n >= r.v {
			sb.WriteString(r.s)
			n -= r.v
		}
	}
	return sb.String()
}
