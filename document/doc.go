/*
Package document loads metadata records and exposes namespace-scoped
field accessors over them.

A Document wraps exactly one parsed representation: an XML tree or a
decoded JSON value. The kind is decided once, at construction, by
attempting a strict JSON parse and falling back to an XML parse. It is
never re-evaluated, and a Document is never modified after it is built;
transformations elsewhere produce new Documents.

Namespace accessors

Query finds every element with a given namespace URI and local name
anywhere in an XML document and returns the children of each match,
flattened in document order, as a Field. DC and DCT are Query bound to
the Dublin Core elements and Dublin Core terms namespaces. A query that
matches nothing returns an empty Field and no error. Querying a JSON
document is a caller error and returns a shape-mismatch error.
*/
package document
