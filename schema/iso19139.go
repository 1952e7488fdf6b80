package schema

import (
	"github.com/geocombine/geocombine/document"
	"github.com/geocombine/geocombine/ruleset"
	"github.com/geocombine/geocombine/xmlutil"
)

// ISO19139 is the ISO 19139 (gmd) metadata adapter
type ISO19139 struct{ base }

var _ Adapter = (*ISO19139)(nil)

// NewISO19139 returns an ISO 19139 adapter over doc
func NewISO19139(doc *document.Document, opts ...Option) *ISO19139 {
	return &ISO19139{newBase(NameISO19139, doc, xmlutil.ISO19139, ruleset.ISOToGeoblacklight, ruleset.ISOToHTML, opts)}
}

// FileIdentifier returns the metadata file identifier
func (i *ISO19139) FileIdentifier() (string, error) {
	return i.first("/gmd:MD_Metadata/gmd:fileIdentifier/gco:CharacterString")
}

// Title returns the resource citation title
func (i *ISO19139) Title() (string, error) {
	return i.first("//gmd:identificationInfo//gmd:citation/gmd:CI_Citation/gmd:title/gco:CharacterString")
}

// Keywords returns every descriptive keyword in document order
func (i *ISO19139) Keywords() ([]string, error) {
	return i.Select("//gmd:descriptiveKeywords//gmd:keyword/gco:CharacterString")
}

// Query is a namespace-scoped query in the gmd namespace
func (i *ISO19139) Query(local string) (document.Field, error) {
	return i.doc.Query("gmd", xmlutil.NSGMD, local)
}
