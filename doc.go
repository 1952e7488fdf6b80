/*
Package geocombine is a set of libraries converting geospatial metadata
into Geoblacklight discovery records and HTML views.

Source documents (FGDC, ISO 19139, CSW records and Dublin Core) are
loaded by the document package, which parses JSON or XML content and
answers namespaced element queries. Schema adapters in the schema package
wrap a loaded document and run the matching rule sets from the ruleset
package through the transform engine. The resulting records are
represented by the geoblacklight package, which renders them as Solr JSON,
in their XML form, or as an HTML view.

The geocombine command under cmd/geocombine converts files from the
command line. See the schema sub-directory for the adapter API.
*/
package geocombine
