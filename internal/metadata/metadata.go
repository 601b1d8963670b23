// Package metadata applies caller-supplied document identity over what the
// parsers derive from the document itself.
package metadata

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dgallion1/lawtree/internal/doctree"
	"github.com/dgallion1/lawtree/internal/enrich"
)

// Override carries the fields a caller may pin. Empty fields are not
// overridden.
type Override struct {
	URI      string `yaml:"uri" json:"uri,omitempty"`
	Citation string `yaml:"citation" json:"citation,omitempty"`
	Court    string `yaml:"court" json:"court,omitempty"`
	Date     string `yaml:"date" json:"date,omitempty"`
	Name     string `yaml:"name" json:"name,omitempty"`
	Title    string `yaml:"title" json:"title,omitempty"`
}

// ValidationError reports an override field holding malformed data. It is
// distinct from a field being absent.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid override %s %q: %s", e.Field, e.Value, e.Reason)
}

var (
	uriPath   = regexp.MustCompile(`^[a-z0-9]+(?:/[a-z0-9-]+)*$`)
	courtCode = regexp.MustCompile(`^[A-Z][A-Za-z]*(?:-[A-Za-z]+)*$`)
)

// Load reads an override in YAML. JSON input is accepted as a YAML subset.
func Load(r io.Reader) (*Override, error) {
	var o Override
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&o); err != nil {
		if errors.Is(err, io.EOF) {
			return &o, nil
		}
		return nil, fmt.Errorf("decode override: %w", err)
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return &o, nil
}

// LoadFile reads an override from path.
func LoadFile(path string) (*Override, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open override: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Validate checks the format of every field present.
func (o *Override) Validate() error {
	if o.Date != "" {
		if _, err := time.Parse(time.DateOnly, o.Date); err != nil {
			return &ValidationError{Field: "date", Value: o.Date, Reason: "expected YYYY-MM-DD"}
		}
	}
	if o.Citation != "" {
		if _, ok := enrich.ParseCitation(o.Citation); !ok {
			return &ValidationError{Field: "citation", Value: o.Citation, Reason: "not a neutral citation"}
		}
	}
	if o.URI != "" && !uriPath.MatchString(o.URI) {
		return &ValidationError{Field: "uri", Value: o.URI, Reason: "expected a lower-case path such as ewca/civ/2022/733"}
	}
	if o.Court != "" && !courtCode.MatchString(o.Court) {
		return &ValidationError{Field: "court", Value: o.Court, Reason: "expected a court code such as EWCA-Civil"}
	}
	return nil
}

// Apply overwrites meta with every field present in o. A present field that
// disagrees with a value found in the document is logged, never rejected.
// A nil override leaves meta unchanged.
func Apply(meta *doctree.Metadata, o *Override, log *slog.Logger) error {
	if o == nil {
		return nil
	}
	if err := o.Validate(); err != nil {
		return err
	}
	citation, uri := o.Citation, o.URI
	if citation != "" {
		// compare canonical forms so spacing differences are not reported
		citation, _ = enrich.ParseCitation(citation)
		if uri == "" && citation != "" && citation != meta.Citation {
			// the document's URI belongs to the citation being replaced
			uri, _ = enrich.CitationURI(citation)
			meta.URI = ""
		}
	}
	set(&meta.URI, uri, "uri", log)
	set(&meta.Citation, citation, "citation", log)
	set(&meta.Court, o.Court, "court", log)
	set(&meta.Date, o.Date, "date", log)
	set(&meta.Name, o.Name, "name", log)
	set(&meta.Title, o.Title, "title", log)
	return nil
}

func set(field *string, value, name string, log *slog.Logger) {
	if value == "" {
		return
	}
	if *field != "" && *field != value && log != nil {
		log.Warn("metadata override differs from document", "field", name, "document", *field, "override", value)
	}
	*field = value
}
