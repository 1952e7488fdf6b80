package xmlutil

import (
	"encoding/xml"
	"sort"
)

// Fixed namespace URIs. Accessors only match content declared with
// exactly these values.
const (
	NSDublinCore      = "http://purl.org/dc/elements/1.1/"
	NSDublinCoreTerms = "http://purl.org/dc/terms/"
	NSGeoblacklight   = "http://geoblacklight.org/schema"

	NSGMD   = "http://www.isotc211.org/2005/gmd"
	NSGCO   = "http://www.isotc211.org/2005/gco"
	NSGML   = "http://www.opengis.net/gml"
	NSSRV   = "http://www.isotc211.org/2005/srv"
	NSXLink = "http://www.w3.org/1999/xlink"

	NSCSW = "http://www.opengis.net/cat/csw/2.0.2"
	NSOWS = "http://www.opengis.net/ows"
)

// Binding is a single prefix to namespace URI pair.
type Binding struct {
	Prefix string
	URI    string
}

// Built-in Dublin Core bindings.
var (
	DC  = Binding{Prefix: "dc", URI: NSDublinCore}
	DCT = Binding{Prefix: "dct", URI: NSDublinCoreTerms}
	GBL = Binding{Prefix: "gbl", URI: NSGeoblacklight}
)

// Map returns the binding as a single entry PrefixMap
func (b Binding) Map() PrefixMap { return PrefixMap{b.Prefix: b.URI} }

// PrefixMap is a prefix to namespace URI map
type PrefixMap map[string]string

// NewPrefixMap returns a PrefixMap, containing the passed XML attributes
func NewPrefixMap(attrs ...xml.Attr) PrefixMap {
	pmap := PrefixMap{}
	for _, attr := range attrs {
		if attr.Name.Space == "xmlns" {
			pmap[attr.Name.Local] = attr.Value
		}
	}
	return pmap
}

// Bind returns a PrefixMap holding the given bindings
func Bind(bindings ...Binding) PrefixMap {
	pmap := PrefixMap{}
	for _, b := range bindings {
		pmap[b.Prefix] = b.URI
	}
	return pmap
}

// Merge returns a new PrefixMap with the contents of m overlaid by
// each of others in turn.
func (m PrefixMap) Merge(others ...PrefixMap) PrefixMap {
	out := make(PrefixMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	for _, o := range others {
		for k, v := range o {
			out[k] = v
		}
	}
	return out
}

// Attr returns the prefix map contents as a series of xmlns:<prefix>=<nsuri> attributes,
// sorted lexically by prefix.
func (m PrefixMap) Attr() (a []xml.Attr) {
	for k, v := range m {
		a = append(a, xml.Attr{Name: xml.Name{Space: "xmlns", Local: k}, Value: v})
	}
	if len(a) > 0 {
		// sort lexically by prefix
		sort.Slice(a, func(i int, j int) bool { return a[i].Name.Local < a[j].Name.Local })
	}
	return a
}

// Declarations returns the prefix map contents as literal xmlns:<prefix>
// attributes, sorted lexically by prefix. Unlike Attr, the result is
// written verbatim by an xml.Encoder, which would otherwise rewrite the
// reserved xmlns space into a generated prefix.
func (m PrefixMap) Declarations() (a []xml.Attr) {
	for _, attr := range m.Attr() {
		a = append(a, xml.Attr{Name: xml.Name{Local: "xmlns:" + attr.Name.Local}, Value: attr.Value})
	}
	return a
}

// Namespace returns the namespace URI for the given prefix
func (m PrefixMap) Namespace(prefix string) string { return m[prefix] }

// Schema namespace tables used by the schema adapters and rule sets.
var (
	ISO19139 = PrefixMap{
		"gmd":   NSGMD,
		"gco":   NSGCO,
		"gml":   NSGML,
		"srv":   NSSRV,
		"xlink": NSXLink,
	}
	CSW = PrefixMap{
		"csw": NSCSW,
		"ows": NSOWS,
		"dc":  NSDublinCore,
		"dct": NSDublinCoreTerms,
	}
	Geoblacklight = Bind(DC, DCT, GBL)
)
