package document

import (
	"bytes"
	"encoding/xml"
	"io"
	"os"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/geocombine/geocombine/mderr"
	"github.com/geocombine/geocombine/xmlutil"
	"github.com/goccy/go-json"
	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// Kind is the parsed representation held by a Document
type Kind int

const (
	// KindXML documents hold an XML tree
	KindXML Kind = iota + 1
	// KindJSON documents hold a decoded JSON value
	KindJSON
)

func (k Kind) String() string {
	switch k {
	case KindXML:
		return "xml"
	case KindJSON:
		return "json"
	default:
		return "unknown"
	}
}

// Document is an immutable parsed metadata record.
//
// The tree returned by Root and the value returned by Value are shared
// with the Document and must not be modified.
type Document struct {
	kind   Kind
	source string
	root   *xmlquery.Node
	value  interface{}
}

// Load returns the Document for input, which is either the path of a
// readable file or the literal JSON or XML content. A path that exists
// but cannot be read is treated as content; if that content then fails
// to parse the returned error wraps the read failure.
func Load(input string) (*Document, error) {
	data, readErr := readFile(input)
	if data != nil {
		return parse(data, input)
	}
	doc, err := parse([]byte(input), "")
	if err != nil && readErr != nil {
		return nil, errors.WithStack(mderr.Unreadable(input, mderr.WithCause(readErr)))
	}
	return doc, err
}

// Parse classifies and parses data. Any valid JSON value produces a
// KindJSON document; anything else is parsed as XML.
func Parse(data []byte) (*Document, error) { return parse(data, "") }

// ParseReader reads r fully and calls Parse
func ParseReader(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.WithStack(mderr.Unreadable("reader", mderr.WithCause(err)))
	}
	return parse(data, "")
}

// FromNode returns an XML Document reusing the already parsed tree n.
// If n is not a document node, the Document is rooted at n's top-most
// ancestor.
func FromNode(n *xmlquery.Node) *Document {
	for n != nil && n.Parent != nil {
		n = n.Parent
	}
	return &Document{kind: KindXML, root: n}
}

// FromJSON returns a JSON Document holding the decoded value v
func FromJSON(v interface{}) *Document {
	return &Document{kind: KindJSON, value: v}
}

// readFile returns the content of the regular file at path. A nil slice
// means path is not a readable file; err is set when a regular file
// exists but could not be read.
func readFile(path string) ([]byte, error) {
	if path == "" || bytes.ContainsAny([]byte(path), "\x00<{") {
		return nil, nil
	}
	fi, err := os.Stat(path)
	if err != nil || !fi.Mode().IsRegular() {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = []byte{}
	}
	return data, nil
}

func parse(data []byte, source string) (*Document, error) {
	var v interface{}
	if err := json.Unmarshal(data, &v); err == nil {
		glog.V(1).Infof("document: loaded json source=%q bytes=%d", source, len(data))
		return &Document{kind: KindJSON, source: source, value: v}, nil
	}

	root, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, errors.WithStack(mderr.MalformedDocument(
			mderr.WithSource(source), mderr.WithMessage(err.Error())))
	}
	if firstElement(root) == nil {
		return nil, errors.WithStack(mderr.UnrecognizedFormat(
			mderr.WithSource(source), mderr.WithMessage("content is neither JSON nor XML")))
	}
	glog.V(1).Infof("document: loaded xml source=%q root=%s", source, firstElement(root).Data)
	return &Document{kind: KindXML, source: source, root: root}, nil
}

func firstElement(n *xmlquery.Node) *xmlquery.Node {
	if n == nil {
		return nil
	}
	if n.Type == xmlquery.ElementNode {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			return c
		}
	}
	return nil
}

// Kind returns the document kind
func (d *Document) Kind() Kind { return d.kind }

// IsXML reports whether d holds an XML tree
func (d *Document) IsXML() bool { return d.kind == KindXML }

// IsJSON reports whether d holds a JSON value
func (d *Document) IsJSON() bool { return d.kind == KindJSON }

// Source returns the path the document was loaded from, if any
func (d *Document) Source() string { return d.source }

// Root returns the XML document node.
func (d *Document) Root() (*xmlquery.Node, error) {
	if d.kind != KindXML {
		return nil, errors.WithStack(mderr.ShapeMismatch(KindXML.String(), d.kind.String(),
			mderr.WithSource(d.source)))
	}
	return d.root, nil
}

// RootElement returns the document element of an XML document
func (d *Document) RootElement() (*xmlquery.Node, error) {
	root, err := d.Root()
	if err != nil {
		return nil, err
	}
	if e := firstElement(root); e != nil {
		return e, nil
	}
	return nil, errors.WithStack(mderr.UnrecognizedFormat(mderr.WithSource(d.source)))
}

// Namespaces returns the prefixes declared on the document element
func (d *Document) Namespaces() (xmlutil.PrefixMap, error) {
	root, err := d.RootElement()
	if err != nil {
		return nil, err
	}
	attrs := make([]xml.Attr, 0, len(root.Attr))
	for _, a := range root.Attr {
		attrs = append(attrs, xml.Attr{Name: a.Name, Value: a.Value})
	}
	return xmlutil.NewPrefixMap(attrs...), nil
}

// Value returns the decoded JSON value
func (d *Document) Value() (interface{}, error) {
	if d.kind != KindJSON {
		return nil, errors.WithStack(mderr.ShapeMismatch(KindJSON.String(), d.kind.String(),
			mderr.WithSource(d.source)))
	}
	return d.value, nil
}

// XML returns the serialized XML tree. The XML declaration is not
// written, so the output starts with the document element or a top
// level comment.
func (d *Document) XML() (string, error) {
	root, err := d.Root()
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for n := root.FirstChild; n != nil; n = n.NextSibling {
		if n.Type == xmlquery.DeclarationNode {
			continue
		}
		sb.WriteString(n.OutputXML(true))
	}
	return sb.String(), nil
}
