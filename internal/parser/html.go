package parser

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dgallion1/lawtree/internal/model"
	"golang.org/x/net/html"
)

// HTMLReader handles HTML files.
type HTMLReader struct{}

func (p *HTMLReader) Read(r io.Reader) ([]model.Block, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	// Find <body> or use whole document.
	if body := findBody(doc); body != nil {
		return htmlBlocks(body), nil
	}
	return htmlBlocks(doc), nil
}

// htmlBlocks converts the children of n. Inline content found directly
// inside a container becomes a line of its own.
func htmlBlocks(n *html.Node) []model.Block {
	var out []model.Block
	var pending lineBuilder
	flush := func(align model.Alignment, indent float64) {
		if !pending.empty() {
			out = append(out, &model.TextLine{Alignment: align, Indent: model.Indent{Left: indent}, Contents: trimLine(pending.contents)})
		}
		pending = lineBuilder{}
	}
	align, indent := htmlLayout(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || !isBlockTag(c.Data) {
			htmlInline(c, model.Formatting{}, &pending)
			continue
		}
		flush(align, indent)
		switch c.Data {
		case "script", "style", "nav", "head", "title", "noscript":
		case "p", "dt", "dd", "h1", "h2", "h3", "h4", "h5", "h6":
			if l := htmlLine(c, model.Formatting{Bold: headingLevel(c.Data) > 0}); l != nil {
				out = append(out, l)
			}
		case "ol", "ul":
			out = append(out, htmlList(c)...)
		case "table":
			out = append(out, htmlTable(c))
		default:
			if hasBlockChild(c) {
				out = append(out, htmlBlocks(c)...)
			} else if l := htmlLine(c, model.Formatting{}); l != nil {
				out = append(out, l)
			}
		}
	}
	flush(align, indent)
	return out
}

func htmlLine(n *html.Node, f model.Formatting) *model.TextLine {
	var lb lineBuilder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		htmlInline(c, f, &lb)
	}
	if lb.empty() {
		return nil
	}
	align, indent := htmlLayout(n)
	return &model.TextLine{Style: n.Data, Alignment: align, Indent: model.Indent{Left: indent}, Contents: trimLine(lb.contents)}
}

func htmlInline(n *html.Node, f model.Formatting, lb *lineBuilder) {
	switch n.Type {
	case html.TextNode:
		lb.text(collapseSpace(n.Data), f)
		return
	case html.ElementNode:
	default:
		return
	}
	switch n.Data {
	case "br":
		lb.add(model.LineBreak{})
		return
	case "img":
		lb.add(&model.ImageRef{Src: attr(n, "src"), Alt: attr(n, "alt")})
		return
	case "script", "style", "ol", "ul":
		return
	case "b", "strong":
		f.Bold = true
	case "i", "em", "cite":
		f.Italic = true
	case "u", "ins":
		f.Underline = true
	case "sup":
		f.VertAlign = "superscript"
	case "sub":
		f.VertAlign = "subscript"
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		htmlInline(c, f, lb)
	}
}

// htmlList emits list items; items of an ordered list become numbered lines.
// Nested lists follow their item.
func htmlList(n *html.Node) []model.Block {
	var out []model.Block
	ordered := n.Data == "ol"
	counter := 1
	if s, err := strconv.Atoi(attr(n, "start")); err == nil {
		counter = s
	}
	for li := n.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.Data != "li" {
			continue
		}
		if l := htmlLine(li, model.Formatting{}); l != nil {
			if ordered {
				out = append(out, &model.NumberedLine{Number: &model.Text{Value: listLabel(attr(n, "type"), counter)}, TextLine: *l})
			} else {
				out = append(out, l)
			}
		}
		counter++
		for c := li.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.Data == "ol" || c.Data == "ul") {
				out = append(out, htmlList(c)...)
			}
		}
	}
	return out
}

func listLabel(typ string, n int) string {
	switch typ {
	case "a":
		return "(" + alphaNumber(n) + ")"
	case "A":
		return "(" + strings.ToUpper(alphaNumber(n)) + ")"
	case "i":
		return "(" + romanNumber(n) + ")"
	case "I":
		return "(" + strings.ToUpper(romanNumber(n)) + ")"
	}
	return strconv.Itoa(n) + "."
}

func htmlTable(n *html.Node) *model.Table {
	t := &model.Table{}
	var rows func(*html.Node)
	rows = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.Data {
			case "thead", "tbody", "tfoot":
				rows(c)
			case "tr":
				var r model.Row
				for cell := c.FirstChild; cell != nil; cell = cell.NextSibling {
					if cell.Type == html.ElementNode && (cell.Data == "td" || cell.Data == "th") {
						r.Cells = append(r.Cells, model.Cell{Blocks: htmlBlocks(cell)})
					}
				}
				t.Rows = append(t.Rows, r)
			}
		}
	}
	rows(n)
	return t
}

var blockTags = map[string]bool{
	"p": true, "div": true, "section": true, "article": true, "main": true, "header": true, "footer": true,
	"blockquote": true, "center": true, "ol": true, "ul": true, "table": true, "dl": true, "dt": true, "dd": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true, "pre": true, "hr": true,
	"script": true, "style": true, "nav": true, "head": true, "title": true, "noscript": true, "body": true,
}

func isBlockTag(tag string) bool { return blockTags[tag] }

func hasBlockChild(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && isBlockTag(c.Data) {
			return true
		}
	}
	return false
}

func headingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}

// htmlLayout reads alignment and left margin from the align attribute and
// inline style.
func htmlLayout(n *html.Node) (model.Alignment, float64) {
	align := docxAlignment(attr(n, "align"))
	var indent float64
	for _, decl := range strings.Split(attr(n, "style"), ";") {
		k, v, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		v = strings.TrimSpace(strings.ToLower(v))
		switch strings.TrimSpace(strings.ToLower(k)) {
		case "text-align":
			align = docxAlignment(v)
		case "margin-left", "padding-left":
			indent = cssLength(v)
		}
	}
	return align, indent
}

// cssLength converts a CSS length to points.
func cssLength(v string) float64 {
	units := []struct {
		suffix string
		scale  float64
	}{{"pt", 1}, {"px", 0.75}, {"em", 12}, {"rem", 12}, {"in", 72}, {"cm", 72 / 2.54}, {"mm", 72 / 25.4}}
	for _, u := range units {
		if s, ok := strings.CutSuffix(v, u.suffix); ok {
			if n, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
				return n * u.scale
			}
			return 0
		}
	}
	return 0
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func collapseSpace(s string) string {
	var sb strings.Builder
	space := false
	for _, r := range s {
		if r == ' ' || r == '\n' || r == '\r' || r == '\t' || r == '\f' {
			if !space {
				sb.WriteByte(' ')
			}
			space = true
			continue
		}
		space = false
		sb.WriteRune(r)
	}
	return sb.String()
}

// trimLine drops leading and trailing spaces left by markup whitespace.
func trimLine(contents []model.Inline) []model.Inline {
	if len(contents) == 0 {
		return contents
	}
	out := make([]model.Inline, len(contents))
	copy(out, contents)
	if t, ok := out[0].(*model.Text); ok {
		out[0] = &model.Text{Value: strings.TrimLeft(t.Value, " "), Format: t.Format}
	}
	if t, ok := out[len(out)-1].(*model.Text); ok {
		out[len(out)-1] = &model.Text{Value: strings.TrimRight(t.Value, " "), Format: t.Format}
	}
	res := out[:0]
	for _, in := range out {
		if t, ok := in.(*model.Text); ok && t.Value == "" {
			continue
		}
		res = append(res, in)
	}
	return res
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
