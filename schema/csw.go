package schema

import (
	"strconv"

	"github.com/geocombine/geocombine/document"
	"github.com/geocombine/geocombine/ruleset"
	"github.com/geocombine/geocombine/xmlutil"
)

// CSW is the adapter for CSW 2.0.2 responses holding Dublin Core
// records (csw:Record, csw:SummaryRecord or csw:BriefRecord). When a
// response holds several records, the first one is converted.
type CSW struct{ base }

var _ Adapter = (*CSW)(nil)

// NewCSW returns a CSW adapter over doc
func NewCSW(doc *document.Document, opts ...Option) *CSW {
	return &CSW{newBase(NameCSW, doc, xmlutil.CSW, ruleset.CSWToGeoblacklight, ruleset.CSWToHTML, opts)}
}

// Records returns the number of records in the response
func (c *CSW) Records() (int, error) {
	values, err := c.Select("count(//csw:Record | //csw:SummaryRecord | //csw:BriefRecord)")
	if err != nil || len(values) == 0 {
		return 0, err
	}
	return strconv.Atoi(values[0])
}

// BoundingBox returns the lower and upper corners of the first OWS
// bounding box
func (c *CSW) BoundingBox() (lower, upper string, err error) {
	if lower, err = c.first("(//ows:WGS84BoundingBox | //ows:BoundingBox)[1]/ows:LowerCorner"); err != nil {
		return "", "", err
	}
	upper, err = c.first("(//ows:WGS84BoundingBox | //ows:BoundingBox)[1]/ows:UpperCorner")
	return lower, upper, err
}
