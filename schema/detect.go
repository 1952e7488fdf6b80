package schema

import (
	"github.com/geocombine/geocombine/document"
	"github.com/geocombine/geocombine/mderr"
	"github.com/geocombine/geocombine/xmlutil"
	"github.com/pkg/errors"
)

// Detect names the schema of doc from its root element:
//
//	<metadata>               fgdc
//	gmd:MD_Metadata          iso19139
//	any csw element          csw
//	dc or dct content        dc
//
// JSON documents and unrecognized roots are not detected.
func Detect(doc *document.Document) (string, bool) {
	root, err := doc.RootElement()
	if err != nil {
		return "", false
	}
	switch {
	case root.NamespaceURI == "" && root.Data == "metadata":
		return NameFGDC, true
	case root.NamespaceURI == xmlutil.NSGMD && root.Data == "MD_Metadata":
		return NameISO19139, true
	case root.NamespaceURI == xmlutil.NSCSW:
		return NameCSW, true
	}
	for _, b := range []xmlutil.Binding{xmlutil.DC, xmlutil.DCT} {
		if f, err := doc.QueryBinding(b, "title"); err == nil && f.Len() > 0 {
			return NameDublinCore, true
		}
		if f, err := doc.QueryBinding(b, "identifier"); err == nil && f.Len() > 0 {
			return NameDublinCore, true
		}
	}
	return "", false
}

// New returns the adapter named by name. An empty name or "auto"
// detects the schema from content.
func New(name string, doc *document.Document, opts ...Option) (Adapter, error) {
	if name == "" || name == "auto" {
		var ok bool
		if name, ok = Detect(doc); !ok {
			if doc.IsJSON() {
				return nil, errors.WithStack(mderr.ShapeMismatch(document.KindXML.String(), doc.Kind().String(),
					mderr.WithSource(doc.Source())))
			}
			return nil, errors.WithStack(mderr.InvalidValue(mderr.WithSource(doc.Source()),
				mderr.WithMessage("unrecognized metadata schema")))
		}
	}
	switch name {
	case NameFGDC:
		return NewFGDC(doc, opts...), nil
	case NameISO19139:
		return NewISO19139(doc, opts...), nil
	case NameCSW:
		return NewCSW(doc, opts...), nil
	case NameDublinCore:
		return NewDublinCore(doc, opts...), nil
	}
	return nil, errors.WithStack(mderr.InvalidValue(mderr.WithMessage("unknown schema " + name)))
}

// Names returns the adapter names New accepts
func Names() []string { return []string{NameFGDC, NameISO19139, NameCSW, NameDublinCore} }
