package transform

import (
	"github.com/geocombine/geocombine/document"
	"github.com/geocombine/geocombine/mderr"
	"github.com/geocombine/geocombine/ruleset"
	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// Field is one evaluated output field
type Field struct {
	Name   string
	Label  string
	Values []string
}

// Option configures a transformation
type Option func(*options)

type options struct {
	params map[string]string
}

// WithParams supplies rule set parameters. Later options override
// earlier ones key by key.
func WithParams(params map[string]string) Option {
	return func(o *options) {
		for k, v := range params {
			o.params[k] = v
		}
	}
}

// WithParam supplies a single rule set parameter
func WithParam(name, value string) Option {
	return func(o *options) { o.params[name] = value }
}

func newOptions(opts []Option) *options {
	o := &options{params: map[string]string{}}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Geoblacklight applies rs to doc and returns the Geoblacklight record
// as a new XML document
func Geoblacklight(doc *document.Document, rs *ruleset.RuleSet, opts ...Option) (*document.Document, error) {
	fields, err := apply(doc, rs, ruleset.OutputGeoblacklight, newOptions(opts))
	if err != nil {
		return nil, err
	}
	return Encode(fields)
}

// HTML applies rs to doc and returns the rendered XHTML page
func HTML(doc *document.Document, rs *ruleset.RuleSet, opts ...Option) (string, error) {
	fields, err := apply(doc, rs, ruleset.OutputHTML, newOptions(opts))
	if err != nil {
		return "", err
	}
	return renderHTML(rs, fields)
}

// Evaluate applies rs to doc regardless of its output kind and returns
// the evaluated fields in rule order. Fields without values are omitted.
func Evaluate(doc *document.Document, rs *ruleset.RuleSet, opts ...Option) ([]Field, error) {
	return apply(doc, rs, rs.Output, newOptions(opts))
}

func apply(doc *document.Document, rs *ruleset.RuleSet, want ruleset.Output, o *options) ([]Field, error) {
	if rs == nil {
		return nil, errors.WithStack(mderr.InvalidValue(mderr.WithMessage("nil rule set")))
	}
	if rs.Output != want {
		return nil, errors.WithStack(mderr.InvalidValue(mderr.WithSource(rs.Name),
			mderr.WithMessage("rule set output is "+string(rs.Output)+", want "+string(want))))
	}
	if !doc.IsXML() {
		return nil, errors.WithStack(mderr.ShapeMismatch(document.KindXML.String(), doc.Kind().String(),
			mderr.WithSource(rs.Name)))
	}

	var (
		fields  []Field
		missing []string
	)
	for _, r := range rs.Rules {
		values, err := evalRule(doc, rs, r, o)
		if err != nil {
			return nil, err
		}
		if len(values) == 0 {
			if r.Required {
				missing = append(missing, r.Field)
			}
			continue
		}
		fields = append(fields, Field{Name: r.Field, Label: r.Label, Values: values})
	}
	if len(missing) > 0 {
		glog.V(1).Infof("transform: %s missing required fields %v", rs.Name, missing)
		return nil, errors.WithStack(mderr.MissingElement(missing, mderr.WithSource(rs.Name),
			mderr.WithMessage("required fields produced no value")))
	}
	glog.V(1).Infof("transform: %s produced %d fields from %q", rs.Name, len(fields), doc.Source())
	return fields, nil
}

func evalRule(doc *document.Document, rs *ruleset.RuleSet, r ruleset.Rule, o *options) ([]string, error) {
	if v := o.params[r.Param]; r.Param != "" && v != "" {
		return finish(r, []string{v}, rs.Name)
	}
	if r.Value != "" {
		return finish(r, []string{r.Value}, rs.Name)
	}

	var (
		values []string
		err    error
	)
	switch r.Format {
	case ruleset.FormatEnvelope, ruleset.FormatCorners:
		values, err = components(doc, rs, r)
	case ruleset.FormatReferences:
		values, err = references(doc, rs, r)
	default:
		values, err = alternatives(doc, rs, r)
	}
	if err != nil {
		return nil, err
	}
	if len(values) > 0 {
		return values, nil
	}
	if r.Default != "" {
		glog.V(2).Infof("transform: %s %s using default %q", rs.Name, r.Field, r.Default)
		return finish(r, []string{r.Default}, rs.Name)
	}
	return nil, nil
}

// alternatives returns the mapped and formatted values of the first
// select expression yielding any value
func alternatives(doc *document.Document, rs *ruleset.RuleSet, r ruleset.Rule) ([]string, error) {
	for _, expr := range r.Select {
		values, err := doc.Select(rs.Namespaces, expr)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: field %s", rs.Name, r.Field)
		}
		for i, v := range values {
			values[i] = r.Lookup(v)
		}
		if values, err = finish(r, values, rs.Name); err != nil || len(values) > 0 {
			return values, err
		}
	}
	return nil, nil
}

// components evaluates every select as one part of a single value; all
// parts must be present
func components(doc *document.Document, rs *ruleset.RuleSet, r ruleset.Rule) ([]string, error) {
	parts := make([]string, 0, len(r.Select))
	for _, expr := range r.Select {
		values, err := doc.Select(rs.Namespaces, expr)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: field %s", rs.Name, r.Field)
		}
		if len(values) == 0 {
			glog.V(2).Infof("transform: %s %s: component %q empty", rs.Name, r.Field, expr)
			return nil, nil
		}
		parts = append(parts, values[0])
	}
	var (
		v   string
		err error
	)
	if r.Format == ruleset.FormatEnvelope {
		v, err = envelope(parts[0], parts[1], parts[2], parts[3])
	} else {
		v, err = corners(parts[0], parts[1])
	}
	if err != nil {
		return nil, badElement(rs.Name, r.Field, err)
	}
	return []string{v}, nil
}

func references(doc *document.Document, rs *ruleset.RuleSet, r ruleset.Rule) ([]string, error) {
	refs := map[string]string{}
	for uri, expr := range r.References {
		values, err := doc.Select(rs.Namespaces, expr)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: field %s", rs.Name, r.Field)
		}
		if len(values) > 0 {
			refs[uri] = values[0]
		}
	}
	if len(refs) == 0 {
		return nil, nil
	}
	v, err := encodeReferences(refs)
	if err != nil {
		return nil, badElement(rs.Name, r.Field, err)
	}
	return []string{v}, nil
}

// finish applies the rule's per-value format, then removes duplicates
// and truncates single-valued fields
func finish(r ruleset.Rule, values []string, rsName string) ([]string, error) {
	out := make([]string, 0, len(values))
	seen := map[string]bool{}
	for _, v := range values {
		f, err := formatValue(r.Format, v)
		if err != nil {
			return nil, badElement(rsName, r.Field, err)
		}
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
		if !r.IsMultiple() {
			break
		}
	}
	return out, nil
}

func badElement(rsName, field string, err error) error {
	return errors.WithStack(mderr.BadElement(field, mderr.WithSource(rsName),
		mderr.WithMessage(err.Error())))
}
