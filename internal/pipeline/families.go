package pipeline

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgallion1/lawtree/internal/bill"
	"github.com/dgallion1/lawtree/internal/doctree"
	"github.com/dgallion1/lawtree/internal/judgment"
	"github.com/dgallion1/lawtree/internal/metadata"
	"github.com/dgallion1/lawtree/internal/model"
)

// ErrUnknownFamily is returned for a family name no parser handles.
var ErrUnknownFamily = errors.New("unknown document family")

// FamilyNames lists the document families, default first.
var FamilyNames = []string{"judgment", "bill"}

// Families dispatches block streams to the parser of their document family.
// The parsers are stateless, so one Families serves every worker.
type Families struct {
	judgment *judgment.Parser
	bill     *bill.Parser
}

func NewFamilies(opts judgment.Options, log *slog.Logger) *Families {
	return &Families{
		judgment: judgment.NewParser(opts, log),
		bill:     bill.NewParser(log),
	}
}

// Parse classifies blocks as a document of the named family.
func (f *Families) Parse(family string, blocks []model.Block, override *metadata.Override) (*doctree.Document, error) {
	switch family {
	case "judgment":
		return f.judgment.Parse(blocks, override)
	case "bill":
		return f.bill.Parse(blocks, override)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFamily, family)
}
