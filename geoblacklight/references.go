package geoblacklight

import (
	"sort"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// Reference type URIs, keyed by the short names Lookup accepts
var referenceURIs = map[string]string{
	"arcgis_dynamic_map_layer": "urn:x-esri:serviceType:ArcGIS#DynamicMapLayer",
	"arcgis_feature_layer":     "urn:x-esri:serviceType:ArcGIS#FeatureLayer",
	"arcgis_image_map_layer":   "urn:x-esri:serviceType:ArcGIS#ImageMapLayer",
	"arcgis_tiled_map_layer":   "urn:x-esri:serviceType:ArcGIS#TiledMapLayer",
	"download":                 "http://schema.org/downloadUrl",
	"fgdc":                     "http://www.opengis.net/cat/csw/csdgm",
	"html":                     "http://www.w3.org/1999/xhtml",
	"iiif":                     "http://iiif.io/api/image",
	"iso19139":                 "http://www.isotc211.org/schemas/2005/gmd/",
	"mods":                     "http://www.loc.gov/mods/v3",
	"url":                      "http://schema.org/url",
	"wcs":                      "http://www.opengis.net/def/serviceType/ogc/wcs",
	"wfs":                      "http://www.opengis.net/def/serviceType/ogc/wfs",
	"wms":                      "http://www.opengis.net/def/serviceType/ogc/wms",
}

// References is the decoded dct_references_s field: reference type URI
// to endpoint URL
type References map[string]string

// ParseReferences decodes a dct_references_s JSON object
func ParseReferences(s string) (References, error) {
	refs := References{}
	if err := json.Unmarshal([]byte(s), &refs); err != nil {
		return nil, errors.Wrap(err, "dct_references_s")
	}
	return refs, nil
}

// References decodes the record's dct_references_s field. A record
// without one has no references.
func (r *Record) References() (References, error) {
	s := r.First("dct_references_s")
	if s == "" {
		return References{}, nil
	}
	return ParseReferences(s)
}

// Lookup returns the endpoint for a short reference name such as wms,
// download or iso19139
func (refs References) Lookup(name string) (string, bool) {
	uri, ok := referenceURIs[name]
	if !ok {
		return "", false
	}
	url, ok := refs[uri]
	return url, ok
}

// Names returns the short names of every known reference present,
// sorted
func (refs References) Names() []string {
	var out []string
	for name, uri := range referenceURIs {
		if _, ok := refs[uri]; ok {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
