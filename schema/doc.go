// Package schema provides the metadata schema adapters.
//
// Each adapter wraps a loaded document and binds, at construction, the
// two rule sets it hands to the transform engine: one producing a
// Geoblacklight record and one producing an HTML view. The variants
// differ only in those names and in the schema-specific accessors they
// add; the transformation itself is shared.
//
//	NewFGDC          fgdc2geoBL   fgdc2html
//	NewISO19139      iso2geoBL    iso2html
//	NewCSW           csw2geoBL    csw2html
//	NewDublinCore    dc2geoBL     dc2html
//
// Explicit constructors never inspect content. New picks a variant from
// the document's root element for callers that do not know the schema.
//
// An adapter over a JSON document reports a shape mismatch from every
// XML operation; it does not switch rule sets on its own.
package schema
