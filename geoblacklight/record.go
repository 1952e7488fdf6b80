// Package geoblacklight holds the normalized discovery record produced
// by the transform engine.
//
// A Record wraps an XML document in the Geoblacklight record form: one
// element per field value, Dublin Core fields in the dc and dct
// namespaces, everything else in the gbl namespace, each element
// carrying its Solr field name in a field attribute. Records are
// queryable with the same namespace accessors as any XML document and
// may be rendered to HTML or Solr JSON.
package geoblacklight

import (
	"sort"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/geocombine/geocombine/document"
	"github.com/geocombine/geocombine/mderr"
	"github.com/geocombine/geocombine/ruleset"
	"github.com/geocombine/geocombine/transform"
	"github.com/geocombine/geocombine/xmlutil"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// Record is an immutable Geoblacklight record
type Record struct {
	doc *document.Document
}

// NewRecord wraps doc. An XML document must be in the record form; a
// JSON document must hold a Solr JSON object, which is re-encoded into
// the record form.
func NewRecord(doc *document.Document) (*Record, error) {
	if doc.IsJSON() {
		return fromJSON(doc)
	}
	root, err := doc.RootElement()
	if err != nil {
		return nil, err
	}
	if root.NamespaceURI != xmlutil.NSGeoblacklight || root.Data != "record" {
		return nil, errors.WithStack(mderr.ShapeMismatch("geoblacklight record", "<"+root.Data+">",
			mderr.WithSource(doc.Source()), mderr.WithNamespace(root.NamespaceURI)))
	}
	return &Record{doc: doc}, nil
}

// Load is document.Load followed by NewRecord
func Load(input string) (*Record, error) {
	doc, err := document.Load(input)
	if err != nil {
		return nil, err
	}
	return NewRecord(doc)
}

func fromJSON(doc *document.Document) (*Record, error) {
	v, err := doc.Value()
	if err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]interface{})
	if !ok {
		return nil, errors.WithStack(mderr.ShapeMismatch("json object", jsonKind(v), mderr.WithSource(doc.Source())))
	}
	names := make([]string, 0, len(obj))
	for name := range obj {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]transform.Field, 0, len(names))
	for _, name := range names {
		var values []string
		switch val := obj[name].(type) {
		case []interface{}:
			for _, item := range val {
				if s, ok := scalar(item); ok {
					values = append(values, s)
				}
			}
		default:
			if s, ok := scalar(val); ok {
				values = append(values, s)
			}
		}
		if len(values) > 0 {
			fields = append(fields, transform.Field{Name: name, Values: values})
		}
	}
	out, err := transform.Encode(fields)
	if err != nil {
		return nil, err
	}
	return &Record{doc: out}, nil
}

func scalar(v interface{}) (string, bool) {
	switch v := v.(type) {
	case string:
		return v, v != ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	case json.Number:
		return v.String(), true
	}
	return "", false
}

func jsonKind(v interface{}) string {
	switch v.(type) {
	case []interface{}:
		return "json array"
	case nil:
		return "json null"
	}
	return "json scalar"
}

// Document returns the record's XML document
func (r *Record) Document() *document.Document { return r.doc }

// DC queries the Dublin Core elements namespace
func (r *Record) DC(local string) (document.Field, error) { return r.doc.DC(local) }

// DCT queries the Dublin Core terms namespace
func (r *Record) DCT(local string) (document.Field, error) { return r.doc.DCT(local) }

// Query is document.Document.Query on the record
func (r *Record) Query(prefix, uri, local string) (document.Field, error) {
	return r.doc.Query(prefix, uri, local)
}

// Get returns the values of the Solr field name, in order. An absent
// field yields an empty slice.
func (r *Record) Get(field string) []string {
	out := []string{}
	for _, n := range r.elements() {
		if n.SelectAttr(transform.FieldAttr) == field {
			out = append(out, strings.TrimSpace(n.InnerText()))
		}
	}
	return out
}

// First returns the first value of field, or ""
func (r *Record) First(field string) string {
	if v := r.Get(field); len(v) > 0 {
		return v[0]
	}
	return ""
}

// Fields returns the distinct field names in document order
func (r *Record) Fields() []string {
	out := []string{}
	seen := map[string]bool{}
	for _, n := range r.elements() {
		if f := n.SelectAttr(transform.FieldAttr); f != "" && !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

func (r *Record) elements() []*xmlquery.Node {
	root, err := r.doc.RootElement()
	if err != nil {
		return nil
	}
	var out []*xmlquery.Node
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// Transform applies a Geoblacklight-output rule set to the record
func (r *Record) Transform(rs *ruleset.RuleSet, opts ...transform.Option) (*Record, error) {
	doc, err := transform.Geoblacklight(r.doc, rs, opts...)
	if err != nil {
		return nil, err
	}
	return &Record{doc: doc}, nil
}

// ToHTML renders the record with the built-in geoblacklight2html rule
// set, or the one found in the registry given
func (r *Record) ToHTML(reg *ruleset.Registry, opts ...transform.Option) (string, error) {
	if reg == nil {
		var err error
		if reg, err = ruleset.Default(); err != nil {
			return "", err
		}
	}
	rs, err := reg.Get(ruleset.GeoblacklightToHTML)
	if err != nil {
		return "", err
	}
	return transform.HTML(r.doc, rs, opts...)
}

// XML returns the record's XML serialization
func (r *Record) XML() (string, error) { return r.doc.XML() }
