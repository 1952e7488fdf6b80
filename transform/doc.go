/*
Package transform is the rule set engine.

Geoblacklight applies a Geoblacklight-output rule set to an XML
document and returns the resulting record as a new XML document. HTML
applies an HTML-output rule set and serializes the result as an XHTML
page. Both evaluate the same rules:

	param       a caller supplied parameter, when set
	value       a literal
	select      XPath alternatives; the first yielding any value wins
	default     a literal used when nothing else produced a value

followed by the rule's value map and format. A required rule that
yields nothing fails the whole call; no partial output is produced.

Each call compiles its own XPath expressions and keeps no state, so the
same document and rule set always give structurally identical output,
and calls may run concurrently.
*/
package transform
