package document

import (
	"math"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
	"github.com/geocombine/geocombine/mderr"
	"github.com/geocombine/geocombine/xmlutil"
	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// Field is the ordered result of a namespace-scoped query: the child
// nodes (text or element) of every matching element.
type Field []*xmlquery.Node

// Len returns the number of nodes in the field
func (f Field) Len() int { return len(f) }

// Text returns the text content of each node, unmodified
func (f Field) Text() []string {
	out := make([]string, 0, len(f))
	for _, n := range f {
		out = append(out, n.InnerText())
	}
	return out
}

// Strings returns the whitespace-normalized text of each node, omitting
// nodes with no text
func (f Field) Strings() []string {
	out := []string{}
	for _, n := range f {
		if s := normalize(n.InnerText()); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Query returns the children of every element in namespace uri with the
// given local name, anywhere in the document. prefix names the binding
// in the compiled expression only; matching is by URI.
func (d *Document) Query(prefix, uri, local string) (Field, error) {
	if !xmlutil.IsNCName(prefix) || !xmlutil.IsNCName(local) {
		return nil, errors.WithStack(mderr.InvalidName(local, uri,
			mderr.WithMessage("prefix "+strconv.Quote(prefix))))
	}
	root, err := d.Root()
	if err != nil {
		return nil, err
	}
	expr, err := compile(xmlutil.Binding{Prefix: prefix, URI: uri}.Map(), "//"+prefix+":"+local)
	if err != nil {
		return nil, err
	}
	field := Field{}
	for _, match := range xmlquery.QuerySelectorAll(root, expr) {
		for c := match.FirstChild; c != nil; c = c.NextSibling {
			field = append(field, c)
		}
	}
	glog.V(2).Infof("document: query %s:%s {%s} matched %d nodes", prefix, local, uri, len(field))
	return field, nil
}

// QueryBinding calls Query with the prefix and URI of b
func (d *Document) QueryBinding(b xmlutil.Binding, local string) (Field, error) {
	return d.Query(b.Prefix, b.URI, local)
}

// DC queries the Dublin Core elements namespace
func (d *Document) DC(local string) (Field, error) { return d.QueryBinding(xmlutil.DC, local) }

// DCT queries the Dublin Core terms namespace
func (d *Document) DCT(local string) (Field, error) { return d.QueryBinding(xmlutil.DCT, local) }

// Select evaluates the XPath expression expr from the document node,
// with prefixes resolved through ns, and returns the whitespace
// normalized string value of each selected node in document order.
// Scalar results yield at most one value. Empty values and NaN numbers
// are dropped; number() of an empty node set is 0.
func (d *Document) Select(ns xmlutil.PrefixMap, expr string) ([]string, error) {
	root, err := d.Root()
	if err != nil {
		return nil, err
	}
	e, err := compile(ns, expr)
	if err != nil {
		return nil, err
	}
	return evaluate(e, root), nil
}

// Compile checks that expr is a valid XPath expression under ns
func Compile(ns xmlutil.PrefixMap, expr string) error {
	_, err := compile(ns, expr)
	return err
}

func compile(ns xmlutil.PrefixMap, expr string) (*xpath.Expr, error) {
	var (
		e   *xpath.Expr
		err error
	)
	if len(ns) > 0 {
		e, err = xpath.CompileWithNS(expr, map[string]string(ns))
	} else {
		e, err = xpath.Compile(expr)
	}
	if err != nil {
		return nil, errors.WithStack(mderr.InvalidValue(
			mderr.WithMessage("xpath "+strconv.Quote(expr)), mderr.WithCause(err)))
	}
	return e, nil
}

func evaluate(e *xpath.Expr, root *xmlquery.Node) []string {
	out := []string{}
	add := func(s string) {
		if s = normalize(s); s != "" {
			out = append(out, s)
		}
	}
	switch v := e.Evaluate(xmlquery.CreateXPathNavigator(root)).(type) {
	case *xpath.NodeIterator:
		for v.MoveNext() {
			add(v.Current().Value())
		}
	case string:
		add(v)
	case float64:
		if !math.IsNaN(v) {
			add(strconv.FormatFloat(v, 'f', -1, 64))
		}
	case bool:
		add(strconv.FormatBool(v))
	}
	return out
}

func normalize(s string) string { return strings.Join(strings.Fields(s), " ") }
