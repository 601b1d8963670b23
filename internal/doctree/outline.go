package doctree

import "strings"

// Entry is one division in a flattened outline.
type Entry struct {
	Path    []string `json:"path"`
	Kind    string   `json:"kind"`
	Number  string   `json:"number,omitempty"`
	Heading string   `json:"heading,omitempty"`
	Depth   int      `json:"depth"`
	Blocks  int      `json:"blocks"`
}

// Outline flattens the body and schedules of a document into breadcrumb
// entries, one per division, in document order.
func Outline(doc *Document) []Entry {
	var out []Entry
	for _, d := range doc.Body {
		outlineNode(d, nil, 0, &out)
	}
	for _, d := range doc.Schedules {
		outlineNode(d, nil, 0, &out)
	}
	return out
}

func outlineNode(d *Division, breadcrumb []string, depth int, out *[]Entry) {
	var bc []string
	bc = append(bc, breadcrumb...)
	if label := Label(d); label != "" {
		bc = append(bc, label)
	}

	*out = append(*out, Entry{
		Path:    copyBreadcrumb(bc),
		Kind:    d.Kind.Name,
		Number:  d.Number,
		Heading: d.Heading,
		Depth:   depth,
		Blocks:  len(d.Lead) + len(d.Intro) + len(d.WrapUp),
	})

	for _, c := range d.Children {
		outlineNode(c, bc, depth+1, out)
	}
}

// Label names a division for a breadcrumb: its number and heading, in the
// order the kind renders them.
func Label(d *Division) string {
	parts := []string{d.Number, d.Heading}
	if d.Kind.HeadingFirst {
		parts[0], parts[1] = parts[1], parts[0]
	}
	var out []string
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}

func copyBreadcrumb(bc []string) []string {
	if len(bc) == 0 {
		return nil
	}
	out := make([]string, len(bc))
	copy(out, bc)
	return out
}
