package parser

import (
	"io"
	"strconv"

	"github.com/dgallion1/lawtree/internal/model"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownReader handles Markdown files using goldmark. Headings become bold
// lines, items of ordered lists become numbered lines.
type MarkdownReader struct{}

func (p *MarkdownReader) Read(r io.Reader) ([]model.Block, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	doc := goldmark.New().Parser().Parse(text.NewReader(src))
	return mdBlocks(doc, src), nil
}

func mdBlocks(parent ast.Node, src []byte) []model.Block {
	var out []model.Block
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			if l := mdLine(node, src, model.Formatting{Bold: true}); l != nil {
				l.Style = "h" + strconv.Itoa(node.Level)
				out = append(out, l)
			}
		case *ast.Paragraph, *ast.TextBlock:
			if l := mdLine(node, src, model.Formatting{}); l != nil {
				out = append(out, l)
			}
		case *ast.List:
			out = append(out, mdList(node, src)...)
		case *ast.Blockquote:
			out = append(out, mdBlocks(node, src)...)
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				v := trimNewline(string(seg.Value(src)))
				if v != "" {
					out = append(out, &model.TextLine{Style: "code", Contents: []model.Inline{&model.Text{Value: v}}})
				}
			}
		}
	}
	return out
}

func mdList(list *ast.List, src []byte) []model.Block {
	var out []model.Block
	n := list.Start
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		first := true
		for c := item.FirstChild(); c != nil; c = c.NextSibling() {
			switch c.(type) {
			case *ast.Paragraph, *ast.TextBlock:
				l := mdLine(c, src, model.Formatting{})
				if l == nil {
					continue
				}
				if first && list.IsOrdered() {
					out = append(out, &model.NumberedLine{Number: &model.Text{Value: mdNumber(list.Marker, n)}, TextLine: *l})
				} else {
					out = append(out, l)
				}
				first = false
			case *ast.List:
				out = append(out, mdList(c.(*ast.List), src)...)
			default:
				out = append(out, mdBlocks(c, src)...)
			}
		}
		n++
	}
	return out
}

func mdNumber(marker byte, n int) string {
	if marker == ')' {
		return "(" + strconv.Itoa(n) + ")"
	}
	return strconv.Itoa(n) + "."
}

func mdLine(n ast.Node, src []byte, f model.Formatting) *model.TextLine {
	var lb lineBuilder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		mdInline(c, src, f, &lb)
	}
	if lb.empty() {
		return nil
	}
	return &model.TextLine{Contents: trimLine(lb.contents)}
}

func mdInline(n ast.Node, src []byte, f model.Formatting, lb *lineBuilder) {
	switch node := n.(type) {
	case *ast.Text:
		lb.text(string(node.Value(src)), f)
		switch {
		case node.HardLineBreak():
			lb.add(model.LineBreak{})
		case node.SoftLineBreak():
			lb.text(" ", f)
		}
		return
	case *ast.String:
		lb.text(string(node.Value), f)
		return
	case *ast.AutoLink:
		lb.text(string(node.Label(src)), f)
		return
	case *ast.Image:
		var alt lineBuilder
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			mdInline(c, src, f, &alt)
		}
		lb.add(&model.ImageRef{Src: string(node.Destination), Alt: model.Concat(alt.contents)})
		return
	case *ast.RawHTML:
		return
	case *ast.Emphasis:
		if node.Level >= 2 {
			f.Bold = true
		} else {
			f.Italic = true
		}
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		mdInline(c, src, f, lb)
	}
}

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}
