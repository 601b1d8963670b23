// Package parser reads word-processor, web and text formats into the block
// stream the classifiers consume. Readers never classify.
package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/lawtree/internal/model"
)

// Reader converts raw document bytes into blocks.
type Reader interface {
	Read(r io.Reader) ([]model.Block, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// Options configures the readers ForFile returns.
type Options struct {
	// PDFFallbackPdftotext shells out to pdftotext when the PDF library
	// cannot read a file.
	PDFFallbackPdftotext bool
}

// ForFile returns the appropriate reader for a filename.
func ForFile(filename string, opts Options) (Reader, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextReader{}, nil
	case ".md", ".markdown":
		return &MarkdownReader{}, nil
	case ".html", ".htm":
		return &HTMLReader{}, nil
	case ".pdf":
		return &PDFReader{FallbackPdftotext: opts.PDFFallbackPdftotext}, nil
	case ".docx":
		return &DOCXReader{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// lineBuilder accumulates the runs of one paragraph.
type lineBuilder struct {
	contents []model.Inline
}

func (b *lineBuilder) text(s string, f model.Formatting) {
	if s == "" {
		return
	}
	b.contents = append(b.contents, &model.Text{Value: s, Format: f})
}

func (b *lineBuilder) add(in model.Inline) { b.contents = append(b.contents, in) }

func (b *lineBuilder) empty() bool {
	return strings.TrimSpace(model.Concat(b.contents)) == "" && !b.hasImage()
}

func (b *lineBuilder) hasImage() bool {
	for _, in := range b.contents {
		if _, ok := in.(*model.ImageRef); ok {
			return true
		}
	}
	return false
}
