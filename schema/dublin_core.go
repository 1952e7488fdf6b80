package schema

import (
	"github.com/geocombine/geocombine/document"
	"github.com/geocombine/geocombine/ruleset"
	"github.com/geocombine/geocombine/xmlutil"
)

// DublinCore is the adapter for plain or qualified Dublin Core records,
// such as OAI-PMH oai_dc
type DublinCore struct{ base }

var _ Adapter = (*DublinCore)(nil)

// NewDublinCore returns a Dublin Core adapter over doc
func NewDublinCore(doc *document.Document, opts ...Option) *DublinCore {
	ns := xmlutil.Bind(xmlutil.DC, xmlutil.DCT)
	return &DublinCore{newBase(NameDublinCore, doc, ns, ruleset.DCToGeoblacklight, ruleset.DCToHTML, opts)}
}
