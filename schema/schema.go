package schema

import (
	"github.com/geocombine/geocombine/document"
	"github.com/geocombine/geocombine/geoblacklight"
	"github.com/geocombine/geocombine/ruleset"
	"github.com/geocombine/geocombine/transform"
	"github.com/geocombine/geocombine/xmlutil"
	"github.com/golang/glog"
)

// Adapter names
const (
	NameFGDC       = "fgdc"
	NameISO19139   = "iso19139"
	NameCSW        = "csw"
	NameDublinCore = "dc"
)

// Adapter is the interface common to every schema variant
type Adapter interface {
	// Name returns the schema name
	Name() string
	// Document returns the wrapped document
	Document() *document.Document

	DC(local string) (document.Field, error)
	DCT(local string) (document.Field, error)

	// ToGeoblacklight applies the adapter's Geoblacklight rule set
	ToGeoblacklight() (*geoblacklight.Record, error)
	// ToHTML applies the adapter's HTML rule set
	ToHTML() (string, error)
}

// Option configures an adapter
type Option func(*base)

// WithRegistry selects the rule set registry. The default is the
// built-in registry.
func WithRegistry(r *ruleset.Registry) Option { return func(b *base) { b.registry = r } }

// WithParams supplies rule set parameters, such as provenance
func WithParams(params map[string]string) Option {
	return func(b *base) {
		for k, v := range params {
			b.params[k] = v
		}
	}
}

// WithParam supplies a single rule set parameter
func WithParam(name, value string) Option { return func(b *base) { b.params[name] = value } }

// base is the shared adapter implementation
type base struct {
	name          string
	doc           *document.Document
	ns            xmlutil.PrefixMap
	geoblacklight string
	html          string

	registry *ruleset.Registry
	params   map[string]string
}

func newBase(name string, doc *document.Document, ns xmlutil.PrefixMap, gbl, html string, opts []Option) base {
	b := base{
		name:          name,
		doc:           doc,
		ns:            ns,
		geoblacklight: gbl,
		html:          html,
		params:        map[string]string{},
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

func (b *base) Name() string                 { return b.name }
func (b *base) Document() *document.Document { return b.doc }

func (b *base) DC(local string) (document.Field, error)  { return b.doc.DC(local) }
func (b *base) DCT(local string) (document.Field, error) { return b.doc.DCT(local) }

// Select evaluates a namespaced XPath expression using the schema's
// namespace prefixes
func (b *base) Select(expr string) ([]string, error) { return b.doc.Select(b.ns, expr) }

func (b *base) first(expr string) (string, error) {
	values, err := b.Select(expr)
	if err != nil || len(values) == 0 {
		return "", err
	}
	return values[0], nil
}

func (b *base) ruleSet(name string) (*ruleset.RuleSet, error) {
	reg := b.registry
	if reg == nil {
		var err error
		if reg, err = ruleset.Default(); err != nil {
			return nil, err
		}
	}
	return reg.Get(name)
}

func (b *base) ToGeoblacklight() (*geoblacklight.Record, error) {
	rs, err := b.ruleSet(b.geoblacklight)
	if err != nil {
		return nil, err
	}
	glog.V(1).Infof("schema: %s -> %s", b.name, rs.Name)
	doc, err := transform.Geoblacklight(b.doc, rs, transform.WithParams(b.params))
	if err != nil {
		return nil, err
	}
	return geoblacklight.NewRecord(doc)
}

func (b *base) ToHTML() (string, error) {
	rs, err := b.ruleSet(b.html)
	if err != nil {
		return "", err
	}
	glog.V(1).Infof("schema: %s -> %s", b.name, rs.Name)
	return transform.HTML(b.doc, rs, transform.WithParams(b.params))
}
