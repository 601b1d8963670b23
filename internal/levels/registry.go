package levels

import (
	"fmt"
	"regexp"

	"github.com/dgallion1/lawtree/internal/model"
)

// Registry is the table of kinds for one document family, in descending
// specificity: a kind is always tried before the kinds that may nest inside
// it.
type Registry struct {
	Name   string
	Kinds  []*Kind
	top    map[string]bool
	byName map[string]*Kind
}

// NewRegistry builds a registry. top names the kinds valid at the root.
func NewRegistry(name string, top []string, kinds ...*Kind) *Registry {
	r := &Registry{
		Name:   name,
		Kinds:  kinds,
		top:    make(map[string]bool, len(top)),
		byName: make(map[string]*Kind, len(kinds)),
	}
	for _, k := range kinds {
		r.byName[k.Name] = k
	}
	for _, n := range top {
		if _, ok := r.byName[n]; !ok {
			panic(fmt.Sprintf("levels: %s: unknown top-level kind %q", name, n))
		}
		r.top[n] = true
	}
	for _, k := range kinds {
		for _, c := range k.children {
			if _, ok := r.byName[c]; !ok {
				panic(fmt.Sprintf("levels: %s: kind %s names unknown child %q", name, k.Name, c))
			}
		}
	}
	return r
}

// Kind looks a kind up by name.
func (r *Registry) Kind(name string) (*Kind, bool) {
	k, ok := r.byName[name]
	return k, ok
}

// ValidChild reports whether child may nest directly inside parent. A nil
// parent stands for the document root. Dummy is valid everywhere.
func (r *Registry) ValidChild(parent, child *Kind) bool {
	if child == Dummy {
		return true
	}
	if parent == nil {
		return r.top[child.Name]
	}
	for _, c := range parent.children {
		if c == child.Name {
			return true
		}
	}
	return false
}

// Candidates returns the kinds valid under parent, in registry order.
func (r *Registry) Candidates(parent *Kind) []*Kind {
	var out []*Kind
	for _, k := range r.Kinds {
		if r.ValidChild(parent, k) {
			out = append(out, k)
		}
	}
	return out
}

// Quoted returns a registry sharing r's kinds in which every kind is valid at
// the root, since quoted amendment text may start at any level. Plain quoted
// prose classifies as Unnumbered.
func (r *Registry) Quoted() *Registry {
	kinds := r.Kinds
	if _, ok := r.byName[Unnumbered.Name]; !ok {
		kinds = append(append([]*Kind(nil), r.Kinds...), Unnumbered)
	}
	top := make([]string, 0, len(kinds))
	for _, k := range kinds {
		top = append(top, k.Name)
	}
	return NewRegistry(r.Name+"/quoted", top, kinds...)
}

func re(s string) *regexp.Regexp { return regexp.MustCompile(s) }

// headed builds an unnumbered heading kind recognized by HeadingLike and
// required to be followed by a block matching next.
func headed(next func(model.Block) bool) func([]model.Block, int) bool {
	return func(blocks []model.Block, pos int) bool {
		if !HeadingLike(blocks[pos]) || pos+1 >= len(blocks) {
			return false
		}
		return next(blocks[pos+1])
	}
}

func numberMatches(k *Kind) func(model.Block) bool {
	return func(b model.Block) bool {
		n, ok := b.(*model.NumberedLine)
		if !ok {
			return false
		}
		_, ok = k.ParseNumber(n.Number.Value)
		return ok
	}
}

// Bill returns the registry for the body of a bill.
func Bill() *Registry {
	section := &Kind{Name: "Section", Class: "section", Number: re(`^(\d+[A-Z]*)\.?$`), InlineHeading: true, children: []string{"Subsection", "Para1"}}
	crossHeading := &Kind{Name: "CrossHeading", Class: "crossheading", HeadingFirst: true, Heading: headed(numberMatches(section)), children: []string{"Section"}}
	return NewRegistry("bill",
		[]string{"GroupOfParts", "Part", "Chapter", "CrossHeading", "Section"},
		&Kind{Name: "GroupOfParts", Class: "groupOfParts", Title: re(`^GROUP OF PARTS ([A-Z]*\d+[A-Z]*)$`), children: []string{"Part"}},
		&Kind{Name: "Part", Class: "part", Title: re(`^PART ([A-Z]*\d+[A-Z]*)$`), children: []string{"Chapter", "CrossHeading", "Section"}},
		&Kind{Name: "Chapter", Class: "chapter", Title: re(`^CHAPTER ([A-Z]*\d+[A-Z]*)$`), children: []string{"CrossHeading", "Section"}},
		crossHeading,
		section,
		&Kind{Name: "Subsection", Class: "subsection", Number: re(`^\((\d+[A-Z]*)\)$`), children: []string{"Para1"}},
		&Kind{Name: "Para1", Class: "paragraph", Number: re(`^\(([a-z]+)\)$`), children: []string{"Para2"}},
		&Kind{Name: "Para2", Class: "subparagraph", Number: re(`^\(([ivxlc]+)\)$`), children: []string{"Para3"}},
		&Kind{Name: "Para3", Class: "clause", Number: re(`^\(([A-Z]+)\)$`)},
	)
}

// Schedules returns the registry for the schedules of a bill.
func Schedules() *Registry {
	prov1 := &Kind{Name: "SchProv1", Class: "paragraph", Number: re(`^(\d+[A-Z]*)\.?$`), InlineHeading: true, children: []string{"SchProv2", "Para1"}}
	crossHeading := &Kind{Name: "ScheduleCrossHeading", Class: "crossheading", HeadingFirst: true, Heading: headed(numberMatches(prov1)), children: []string{"SchProv1"}}
	return NewRegistry("schedules",
		[]string{"Schedules", "Schedule"},
		&Kind{Name: "Schedules", Class: "schedules", Title: re(`^SCHEDULES$`), children: []string{"Schedule"}},
		&Kind{Name: "Schedule", Class: "schedule", Title: re(`^SCHEDULE(?: (\d+[A-Z]*))?$`), children: []string{"SchedulePart", "ScheduleCrossHeading", "SchProv1"}},
		&Kind{Name: "SchedulePart", Class: "part", Title: re(`^PART ([A-Z]*\d+[A-Z]*)$`), children: []string{"ScheduleChapter", "ScheduleCrossHeading", "SchProv1"}},
		&Kind{Name: "ScheduleChapter", Class: "chapter", Title: re(`^CHAPTER ([A-Z]*\d+[A-Z]*)$`), children: []string{"ScheduleCrossHeading", "SchProv1"}},
		crossHeading,
		prov1,
		&Kind{Name: "SchProv2", Class: "subparagraph", Number: re(`^\((\d+[A-Z]*)\)$`), children: []string{"Para1"}},
		&Kind{Name: "Para1", Class: "paragraph", Number: re(`^\(([a-z]+)\)$`), children: []string{"Para2"}},
		&Kind{Name: "Para2", Class: "subparagraph", Number: re(`^\(([ivxlc]+)\)$`), children: []string{"Para3"}},
		&Kind{Name: "Para3", Class: "clause", Number: re(`^\(([A-Z]+)\)$`)},
	)
}

// JudgmentOptions tunes the judgment heuristics.
type JudgmentOptions struct {
	// CrossHeadingMinPosition is the first document position at which a bold
	// line may be read as a cross-heading; earlier lines belong to the title
	// block.
	CrossHeadingMinPosition int
	// Offset is the document position of the first classified block, the
	// length of the header when only the body is classified.
	Offset int
}

// Judgment returns the registry for the body of a judgment. Cross-headings
// carry no number: they are zero-indented lines set entirely in bold.
func Judgment(opts JudgmentOptions) *Registry {
	crossHeading := func(blocks []model.Block, pos int) bool {
		if opts.Offset+pos < opts.CrossHeadingMinPosition {
			return false
		}
		l, ok := blocks[pos].(*model.TextLine)
		if !ok || l.Indent.Left != 0 || l.Indent.FirstLine > 0 {
			return false
		}
		return l.Bold() && ShortText(l.Text())
	}
	return NewRegistry("judgment",
		[]string{"CrossHeading", "Paragraph", Unnumbered.Name},
		&Kind{Name: "CrossHeading", Class: "crossheading", HeadingFirst: true, Heading: crossHeading, children: []string{"Paragraph"}},
		&Kind{Name: "Paragraph", Class: "paragraph", Number: re(`^(\d+)\.?$`), children: []string{"SubPara1"}},
		&Kind{Name: "SubPara1", Class: "subparagraph", Number: re(`^\(?([a-z])\)$|^([a-z])\.$`), children: []string{"SubPara2"}},
		&Kind{Name: "SubPara2", Class: "clause", Number: re(`^\(?([ivx]+)\)$`)},
		Unnumbered,
	)
}

// ForFamily returns the body registry of a document family by name.
func ForFamily(family string, opts JudgmentOptions) (*Registry, error) {
	switch family {
	case "judgment":
		return Judgment(opts), nil
	case "bill":
		return Bill(), nil
	case "schedules":
		return Schedules(), nil
	}
	return nil, fmt.Errorf("unknown document family %q", family)
}
