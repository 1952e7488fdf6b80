package transform

import (
	"bytes"
	"encoding/xml"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/geocombine/geocombine/document"
	"github.com/geocombine/geocombine/mderr"
	"github.com/geocombine/geocombine/ruleset"
	"github.com/geocombine/geocombine/xmlutil"
	"github.com/pkg/errors"
)

const (
	xmlnsXHTML = "http://www.w3.org/1999/xhtml"

	// FieldAttr names the attribute holding each record element's Solr
	// field name
	FieldAttr = "field"
)

var seRecord = xml.StartElement{
	Name: xmlutil.XMLName("gbl:record"),
	Attr: xmlutil.Geoblacklight.Declarations(),
}

// ElementName returns the qualified element name a Solr field is
// written as: dc_ and dct_ fields in the Dublin Core namespaces with
// their type suffix removed, anything else in the gbl namespace.
func ElementName(field string) string {
	for _, b := range []xmlutil.Binding{xmlutil.DCT, xmlutil.DC} {
		rest := strings.TrimPrefix(field, b.Prefix+"_")
		if rest == field {
			continue
		}
		if i := strings.LastIndexByte(rest, '_'); i > 0 {
			rest = rest[:i]
		}
		if xmlutil.IsNCName(rest) {
			return b.Prefix + ":" + rest
		}
	}
	return xmlutil.GBL.Prefix + ":" + field
}

// Encode writes fields as a Geoblacklight record and returns it parsed
// as a new XML document. Each value becomes one element, in order.
func Encode(fields []Field) (*document.Document, error) {
	buf := &bytes.Buffer{}
	xe := xml.NewEncoder(buf)
	err := xe.EncodeToken(seRecord)
	for _, f := range fields {
		if err != nil {
			break
		}
		if !xmlutil.IsNCName(f.Name) {
			return nil, errors.WithStack(mderr.InvalidName(f.Name, xmlutil.NSGeoblacklight))
		}
		se := xml.StartElement{
			Name: xmlutil.XMLName(ElementName(f.Name)),
			Attr: []xml.Attr{{Name: xmlutil.XMLName(FieldAttr), Value: f.Name}},
		}
		for _, v := range f.Values {
			if err = xe.EncodeToken(se); err == nil {
				err = xe.EncodeToken(xml.CharData(v))
			}
			if err == nil {
				err = xe.EncodeToken(se.End())
			}
		}
	}
	if err == nil {
		err = xe.EncodeToken(seRecord.End())
	}
	if err == nil {
		err = xe.Flush()
	}
	if err != nil {
		return nil, errors.WithStack(mderr.OperationFailed(mderr.WithCause(err)))
	}
	root, err := xmlquery.Parse(buf)
	if err != nil {
		return nil, errors.WithStack(mderr.OperationFailed(mderr.WithCause(err)))
	}
	return document.FromNode(root), nil
}

// renderHTML writes an XHTML page: the title field as the page title
// and heading, then a definition list of every other field.
func renderHTML(rs *ruleset.RuleSet, fields []Field) (string, error) {
	var title string
	for _, f := range fields {
		if f.Name == rs.Title {
			title = strings.Join(f.Values, "; ")
		}
	}

	buf := &bytes.Buffer{}
	xe := xml.NewEncoder(buf)
	xe.Indent("", "  ")
	w := &tokenWriter{xe: xe}

	html := start("html")
	html.Name.Space = xmlnsXHTML
	w.open(html)
	w.open(start("head"))
	w.element(start("title"), title)
	w.close()

	w.open(start("body"))
	w.open(start("div", "class", "geocombine-metadata", "data-rule-set", rs.Name))
	if title != "" {
		w.element(start("h1"), title)
	}
	w.open(start("dl"))
	for _, f := range fields {
		if f.Name == rs.Title {
			continue
		}
		label := f.Label
		if label == "" {
			label = f.Name
		}
		w.element(start("dt"), label)
		for _, v := range f.Values {
			if isLink(v) {
				w.open(start("dd"))
				w.element(start("a", "href", v), v)
				w.close()
			} else {
				w.element(start("dd"), v)
			}
		}
	}
	w.close() // dl
	w.close() // div
	w.close() // body
	w.close() // html

	if err := w.flush(); err != nil {
		return "", errors.WithStack(mderr.OperationFailed(mderr.WithSource(rs.Name), mderr.WithCause(err)))
	}
	return buf.String(), nil
}

func isLink(v string) bool {
	return !strings.ContainsAny(v, " \t\n") &&
		(strings.HasPrefix(v, "http://") || strings.HasPrefix(v, "https://"))
}

func start(local string, attrs ...string) xml.StartElement {
	se := xml.StartElement{Name: xmlutil.XMLName(local)}
	for i := 0; i+1 < len(attrs); i += 2 {
		se.Attr = append(se.Attr, xml.Attr{Name: xmlutil.XMLName(attrs[i]), Value: attrs[i+1]})
	}
	return se
}

// tokenWriter records the first encoding error and ignores later writes
type tokenWriter struct {
	xe    *xml.Encoder
	stack []xml.StartElement
	err   error
}

func (w *tokenWriter) token(t xml.Token) {
	if w.err == nil {
		w.err = w.xe.EncodeToken(t)
	}
}

func (w *tokenWriter) open(se xml.StartElement) {
	w.token(se)
	w.stack = append(w.stack, se)
}

func (w *tokenWriter) close() {
	if n := len(w.stack); n > 0 {
		w.token(w.stack[n-1].End())
		w.stack = w.stack[:n-1]
	}
}

func (w *tokenWriter) element(se xml.StartElement, text string) {
	w.open(se)
	w.token(xml.CharData(text))
	w.close()
}

func (w *tokenWriter) flush() error {
	if w.err == nil {
		w.err = w.xe.Flush()
	}
	return w.err
}
