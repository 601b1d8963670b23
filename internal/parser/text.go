package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/lawtree/internal/model"
)

// TextReader handles plain text files. Each non-blank line is one block and
// tabs are kept as tab runs, so "Claimant:\tJOHN BROWN" keeps its layout.
type TextReader struct{}

func (p *TextReader) Read(r io.Reader) ([]model.Block, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var blocks []model.Block
	for scanner.Scan() {
		if l := textLine(scanner.Text()); l != nil {
			blocks = append(blocks, l)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return blocks, nil
}

// textLine converts one line of plain text, or returns nil when it is blank.
func textLine(s string) *model.TextLine {
	s = strings.TrimRight(s, " \r\f")
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var lb lineBuilder
	for i, part := range strings.Split(s, "\t") {
		if i > 0 {
			lb.add(model.Tab{})
		}
		if i == 0 {
			part = strings.TrimLeft(part, " ")
		}
		lb.text(part, model.Formatting{})
	}
	return &model.TextLine{Contents: lb.contents}
}
