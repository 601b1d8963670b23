// Package chunker splits a classified document into retrieval-sized chunks
// that follow its division structure. Each chunk carries the breadcrumb of
// the division it came from.
package chunker

import (
	"strings"

	"github.com/dgallion1/lawtree/internal/doctree"
	"github.com/dgallion1/lawtree/internal/model"
)

// Config controls chunking behavior.
type Config struct {
	ChunkSize    int // Target chunk size in tokens.
	ChunkOverlap int // Overlap between consecutive chunks in tokens.
	MinChunk     int // Minimum chunk size to emit.
}

// DefaultConfig returns sensible defaults. Legal divisions are often a
// single short sentence, so nothing with text is dropped.
func DefaultConfig() Config {
	return Config{
		ChunkSize:    1500,
		ChunkOverlap: 200,
		MinChunk:     1,
	}
}

// Chunk is one piece of a document.
type Chunk struct {
	Index      int      `json:"index"`
	Breadcrumb []string `json:"breadcrumb,omitempty"`
	Kind       string   `json:"kind,omitempty"`
	Text       string   `json:"text"`
	Tokens     int      `json:"tokens"`
}

// ChunkDocument walks a document and produces structure-aware chunks. A
// division whose whole subtree fits in one chunk is emitted as one chunk;
// larger divisions emit their own lead and intro, then their children, then
// their wrap-up.
func ChunkDocument(doc *doctree.Document, cfg Config) []Chunk {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 1500
	}
	if cfg.ChunkOverlap <= 0 {
		cfg.ChunkOverlap = 200
	}
	if cfg.MinChunk <= 0 {
		cfg.MinChunk = 1
	}

	c := &collector{cfg: cfg}
	c.emit(blockText(doc.Header), []string{"Header"}, "")
	c.emit(blockText(doc.Preamble), []string{"Preamble"}, "")
	for _, d := range doc.Body {
		c.walkDivision(d, nil)
	}
	for _, d := range doc.Schedules {
		c.walkDivision(d, []string{"Schedules"})
	}
	c.emit(blockText(doc.Conclusions), []string{"Conclusions"}, "")
	return c.chunks
}

type collector struct {
	cfg    Config
	chunks []Chunk
}

// walkDivision recursively visits divisions, collecting text and splitting into chunks.
func (c *collector) walkDivision(d *doctree.Division, breadcrumb []string) {
	var bc []string
	bc = append(bc, breadcrumb...)
	if label := doctree.Label(d); label != "" {
		bc = append(bc, label)
	}

	if all := blockText(d.Blocks()); EstimateTokens(all) <= c.cfg.ChunkSize || d.IsLeaf() {
		c.emit(all, bc, d.Kind.Name)
		return
	}

	own := append(append([]model.Block{}, d.Lead...), d.Intro...)
	c.emit(blockText(own), bc, d.Kind.Name)
	for _, child := range d.Children {
		c.walkDivision(child, bc)
	}
	c.emit(blockText(d.WrapUp), bc, d.Kind.Name)
}

// emit appends text as one chunk, or several when it exceeds the target size.
func (c *collector) emit(text string, bc []string, kind string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	parts := []string{text}
	if EstimateTokens(text) > c.cfg.ChunkSize {
		parts = splitText(text, c.cfg.ChunkSize, c.cfg.ChunkOverlap)
	}
	for _, part := range parts {
		tokens := EstimateTokens(part)
		if tokens < c.cfg.MinChunk {
			continue
		}
		c.chunks = append(c.chunks, Chunk{
			Index:      len(c.chunks),
			Breadcrumb: copyBreadcrumb(bc),
			Kind:       kind,
			Text:       part,
			Tokens:     tokens,
		})
	}
}

// blockText joins block texts as paragraphs so that splitting can respect
// block boundaries.
func blockText(blocks []model.Block) string {
	var paras []string
	for _, b := range blocks {
		if t := model.Normalize(model.AllText(b)); t != "" {
			paras = append(paras, t)
		}
	}
	return strings.Join(paras, "\n\n")
}

// splitText breaks text into chunks of approximately targetTokens, with overlap.
func splitText(text string, targetTokens, overlapTokens int) []string {
	// Split by paragraphs first.
	paragraphs := splitByParagraphs(text)

	var result []string
	var current strings.Builder
	currentTokens := 0

	for _, para := range paragraphs {
		paraTokens := EstimateTokens(para)

		// If a single paragraph exceeds the target, split it further.
		if paraTokens > targetTokens {
			// Flush current buffer.
			if currentTokens > 0 {
				result = append(result, current.String())
				current.Reset()
				currentTokens = 0
			}
			// Split the large paragraph by sentences.
			subParts := splitBySentences(para, targetTokens, overlapTokens)
			result = append(result, subParts...)
			continue
		}

		// Would adding this paragraph exceed the target?
		if currentTokens+paraTokens > targetTokens && currentTokens > 0 {
			result = append(result, current.String())

			// Start next chunk with overlap from end of current.
			overlap := getOverlapText(current.String(), overlapTokens)
			current.Reset()
			currentTokens = 0
			if overlap != "" {
				current.WriteString(overlap)
				currentTokens = EstimateTokens(overlap)
			}
		}

		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
		currentTokens += paraTokens
	}

	if currentTokens > 0 {
		result = append(result, current.String())
	}

	return result
}

// splitByParagraphs splits on double-newlines.
func splitByParagraphs(text string) []string {
	parts := strings.Split(text, "\n\n")
	var result []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// splitBySentences breaks a large paragraph into sentence-based chunks.
func splitBySentences(text string, targetTokens, overlapTokens int) []string {
	sentences := splitSentences(text)

	var result []string
	var current strings.Builder
	currentTokens := 0

	for _, sent := range sentences {
		sentTokens := EstimateTokens(sent)

		if currentTokens+sentTokens > targetTokens && currentTokens > 0 {
			result = append(result, current.String())
			overlap := getOverlapText(current.String(), overlapTokens)
			current.Reset()
			currentTokens = 0
			if overlap != "" {
				current.WriteString(overlap)
				currentTokens = EstimateTokens(overlap)
			}
		}

		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(sent)
		currentTokens += sentTokens
	}

	if currentTokens > 0 {
		result = append(result, current.String())
	}

	return result
}

// splitSentences does basic sentence splitting.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for i, r := range text {
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(text) && text[i+1] == ' ' {
			sentences = append(sentences, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}
	if current.Len() > 0 {
		sentences = append(sentences, strings.TrimSpace(current.String()))
	}

	return sentences
}

// getOverlapText extracts the last N tokens worth of text for overlap.
func getOverlapText(text string, targetTokens int) string {
	words := strings.Fields(text)
	// Approximate: 1.33 tokens per word.
	targetWords := int(float64(targetTokens) / 1.33)
	if targetWords <= 0 || len(words) <= targetWords {
		return ""
	}
	return strings.Join(words[len(words)-targetWords:], " ")
}

func copyBreadcrumb(bc []string) []string {
	if len(bc) == 0 {
		return nil
	}
	out := make([]string, len(bc))
	copy(out, bc)
	return out
}
