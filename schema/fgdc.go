package schema

import (
	"github.com/geocombine/geocombine/document"
	"github.com/geocombine/geocombine/ruleset"
)

// FGDC is the FGDC Content Standard for Digital Geospatial Metadata
// adapter. FGDC records carry no namespace.
type FGDC struct{ base }

var _ Adapter = (*FGDC)(nil)

// NewFGDC returns an FGDC adapter over doc
func NewFGDC(doc *document.Document, opts ...Option) *FGDC {
	return &FGDC{newBase(NameFGDC, doc, nil, ruleset.FGDCToGeoblacklight, ruleset.FGDCToHTML, opts)}
}

// Title returns the citation title
func (f *FGDC) Title() (string, error) { return f.first("/metadata/idinfo/citation/citeinfo/title") }

// Abstract returns the description abstract
func (f *FGDC) Abstract() (string, error) { return f.first("/metadata/idinfo/descript/abstract") }

// Keywords returns the theme keywords in document order
func (f *FGDC) Keywords() ([]string, error) {
	return f.Select("/metadata/idinfo/keywords/theme/themekey")
}

// Places returns the place keywords in document order
func (f *FGDC) Places() ([]string, error) {
	return f.Select("/metadata/idinfo/keywords/place/placekey")
}
