// Package ruleset defines the declarative rule sets the transform engine
// applies to metadata documents.
//
// A rule set is a YAML document naming its output kind (a Geoblacklight
// record or an HTML view), the namespace prefixes its XPath expressions
// use, and an ordered list of rules, one per output field. Built-in rule
// sets for FGDC, ISO19139, CSW, Dublin Core and Geoblacklight are
// embedded in the package; a Registry may overlay them from a directory.
package ruleset

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/geocombine/geocombine/document"
	"github.com/geocombine/geocombine/mderr"
	"github.com/geocombine/geocombine/xmlutil"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Output is the kind of result a rule set produces
type Output string

const (
	OutputGeoblacklight Output = "geoblacklight"
	OutputHTML          Output = "html"
)

// Value formats
const (
	FormatNone       = ""
	FormatEnvelope   = "envelope"   // four selects: west, east, north, south
	FormatCorners    = "corners"    // two selects: lower "x y", upper "x y"
	FormatBox        = "box"        // DCMI Box encoding, northlimit=...; ...
	FormatSlug       = "slug"       // lower case, runs of other characters to '-'
	FormatYear       = "year"       // first four digit year
	FormatDate       = "date"       // RFC3339 UTC timestamp
	FormatUUID       = "uuid"       // name based (SHA1) UUID in the URL namespace
	FormatReferences = "references" // JSON object built from References
)

// RuleSet is a named, immutable set of field rules
type RuleSet struct {
	Name        string            `yaml:"name"`
	Version     string            `yaml:"version"`
	Description string            `yaml:"description,omitempty"`
	Output      Output            `yaml:"output"`
	Title       string            `yaml:"title,omitempty"`
	Namespaces  xmlutil.PrefixMap `yaml:"namespaces,omitempty"`
	Rules       []Rule            `yaml:"rules"`
}

// Rule produces the values of one output field. Sources are tried in
// order: Param, Value, Select (the first expression yielding any value
// wins), then Default. For the envelope, corners and references
// formats, Select and References are components, not alternatives.
type Rule struct {
	Field      string            `yaml:"field"`
	Label      string            `yaml:"label,omitempty"`
	Param      string            `yaml:"param,omitempty"`
	Value      string            `yaml:"value,omitempty"`
	Select     []string          `yaml:"select,omitempty"`
	References map[string]string `yaml:"references,omitempty"`
	Map        map[string]string `yaml:"map,omitempty"`
	Default    string            `yaml:"default,omitempty"`
	Format     string            `yaml:"format,omitempty"`
	Required   bool              `yaml:"required,omitempty"`
	Multiple   *bool             `yaml:"multiple,omitempty"`
}

// IsMultiple reports whether the rule keeps every value it selects
func (r Rule) IsMultiple() bool {
	if r.Multiple != nil {
		return *r.Multiple
	}
	return Multivalued(r.Field)
}

// Lookup applies the rule's value map, matching keys case-insensitively.
// Unmapped values are returned unchanged.
func (r Rule) Lookup(v string) string {
	if len(r.Map) == 0 {
		return v
	}
	if m, ok := r.Map[v]; ok {
		return m
	}
	keys := make([]string, 0, len(r.Map))
	for k := range r.Map {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.EqualFold(k, v) {
			return r.Map[k]
		}
	}
	return v
}

// Multivalued reports whether the Solr field name carries a multi-valued
// type suffix
func Multivalued(field string) bool {
	for _, sfx := range []string{"_sm", "_im", "_bm", "_dtm", "_tm"} {
		if strings.HasSuffix(field, sfx) {
			return true
		}
	}
	return false
}

// Decode reads and validates a rule set
func Decode(r io.Reader) (*RuleSet, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	rs := &RuleSet{}
	if err := dec.Decode(rs); err != nil {
		return nil, errors.WithStack(mderr.InvalidRuleSet("", mderr.WithCause(err)))
	}
	if err := rs.Validate(); err != nil {
		return nil, err
	}
	return rs, nil
}

// DecodeBytes calls Decode on b
func DecodeBytes(b []byte) (*RuleSet, error) { return Decode(bytes.NewReader(b)) }

// Validate checks the rule set's structure and compiles every XPath
// expression it holds.
func (rs *RuleSet) Validate() error {
	invalid := func(format string, args ...interface{}) error {
		return errors.WithStack(mderr.InvalidRuleSet(rs.Name, mderr.WithMessage(fmt.Sprintf(format, args...))))
	}
	if !xmlutil.IsNCName(rs.Name) {
		return invalid("invalid name %q", rs.Name)
	}
	switch rs.Output {
	case OutputGeoblacklight, OutputHTML:
	default:
		return invalid("unknown output %q", rs.Output)
	}
	if len(rs.Rules) == 0 {
		return invalid("no rules")
	}

	seen := map[string]bool{}
	for _, r := range rs.Rules {
		if !xmlutil.IsNCName(r.Field) {
			return invalid("invalid field name %q", r.Field)
		}
		if seen[r.Field] {
			return invalid("duplicate field %q", r.Field)
		}
		seen[r.Field] = true

		if r.Param == "" && r.Value == "" && len(r.Select) == 0 && len(r.References) == 0 && r.Default == "" {
			return invalid("field %q has no value source", r.Field)
		}
		switch r.Format {
		case FormatEnvelope:
			if len(r.Select) != 4 {
				return invalid("field %q: envelope needs 4 selects, got %d", r.Field, len(r.Select))
			}
		case FormatCorners:
			if len(r.Select) != 2 {
				return invalid("field %q: corners needs 2 selects, got %d", r.Field, len(r.Select))
			}
		case FormatReferences:
			if len(r.References) == 0 {
				return invalid("field %q: references format needs references", r.Field)
			}
		case FormatNone, FormatBox, FormatSlug, FormatYear, FormatDate, FormatUUID:
			if len(r.References) > 0 {
				return invalid("field %q: references need the references format", r.Field)
			}
		default:
			return invalid("field %q: unknown format %q", r.Field, r.Format)
		}

		exprs := append([]string(nil), r.Select...)
		for _, expr := range r.References {
			exprs = append(exprs, expr)
		}
		for _, expr := range exprs {
			if err := document.Compile(rs.Namespaces, expr); err != nil {
				return errors.WithStack(mderr.InvalidRuleSet(rs.Name,
					mderr.WithMessage(fmt.Sprintf("field %q", r.Field)), mderr.WithCause(err)))
			}
		}
	}
	if rs.Title != "" && !seen[rs.Title] {
		return invalid("title field %q has no rule", rs.Title)
	}
	return nil
}

// Fields returns the output field names in rule order
func (rs *RuleSet) Fields() []string {
	out := make([]string, 0, len(rs.Rules))
	for _, r := range rs.Rules {
		out = append(out, r.Field)
	}
	return out
}

// Rule returns the rule for field
func (rs *RuleSet) Rule(field string) (Rule, bool) {
	for _, r := range rs.Rules {
		if r.Field == field {
			return r, true
		}
	}
	return Rule{}, false
}
