package transform

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/geocombine/geocombine/document"
	"github.com/geocombine/geocombine/mderr"
	"github.com/geocombine/geocombine/ruleset"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, name string) *document.Document {
	t.Helper()
	doc, err := document.Load(filepath.Join("..", "testdata", name))
	require.NoError(t, err)
	return doc
}

func ruleSet(t *testing.T, name string) *ruleset.RuleSet {
	t.Helper()
	reg, err := ruleset.Default()
	require.NoError(t, err)
	rs, err := reg.Get(name)
	require.NoError(t, err)
	return rs
}

func byName(fields []Field) map[string][]string {
	out := map[string][]string{}
	for _, f := range fields {
		out[f.Name] = f.Values
	}
	return out
}

func TestEvaluateISO(t *testing.T) {
	fields, err := Evaluate(load(t, "iso19139.xml"), ruleSet(t, ruleset.ISOToGeoblacklight))
	require.NoError(t, err)
	require.NotEmpty(t, fields)
	assert.Equal(t, "geoblacklight_version", fields[0].Name)

	id := "edu.stanford.purl:bb338jh0716"
	got := byName(fields)
	for field, want := range map[string][]string{
		"geoblacklight_version": {"1.0"},
		"dc_identifier_s":       {id},
		"uuid":                  {uuid.NewSHA1(uuid.NameSpaceURL, []byte(id)).String()},
		"layer_slug_s":          {"edu-stanford-purl-bb338jh0716"},
		"dc_title_s":            {"Hydrologic Sub-Area Boundaries: Russian River Watershed, California, 1999"},
		"dc_description_s":      {"This polygon shapefile contains Hydrologic Sub-Area boundaries for the Russian River Watershed in 1999."},
		"dc_rights_s":           {"Public"},
		"dct_provenance_s":      {"Stanford"},
		"dc_creator_sm":         {"California Department of Forestry and Fire Protection"},
		"dc_publisher_s":        {"Circuit Rider Productions"},
		"dc_subject_sm":         {"Hydrology", "Watersheds", "inlandWaters"},
		"dct_spatial_sm":        {"Russian River Watershed (Calif.)", "Sonoma County (Calif.)"},
		"dct_temporal_sm":       {"1999"},
		"dct_issued_s":          {"2002-09-01"},
		"layer_modified_dt":     {"2015-01-01T00:00:00Z"},
		"solr_year_i":           {"1999"},
		"solr_geom":             {"ENVELOPE(-123.387626, -122.52699, 39.399103, 38.298673)"},
		"dc_format_s":           {"Shapefile"},
		"dc_language_s":         {"English"},
		"dc_type_s":             {"Dataset"},
		"layer_geom_type_s":     {"Polygon"},
	} {
		assert.Equal(t, want, got[field], field)
	}
	assert.NotContains(t, got, "dct_isPartOf_sm")

	require.Len(t, got["dct_references_s"], 1)
	refs := map[string]string{}
	require.NoError(t, json.Unmarshal([]byte(got["dct_references_s"][0]), &refs))
	assert.Equal(t, map[string]string{
		"http://schema.org/url":                         "http://purl.stanford.edu/bb338jh0716",
		"http://www.opengis.net/def/serviceType/ogc/wms": "https://geowebservices.stanford.edu/geoserver/wms",
	}, refs)
}

func TestEvaluateFGDCParams(t *testing.T) {
	fields, err := Evaluate(load(t, "fgdc.xml"), ruleSet(t, ruleset.FGDCToGeoblacklight),
		WithParams(map[string]string{"slug": "ignored", "provenance": "Harvard"}),
		WithParam("slug", "harvard-masstowns05"),
		WithParam("identifier", ""))
	require.NoError(t, err)

	got := byName(fields)
	for field, want := range map[string][]string{
		"dc_identifier_s":   {"http://hgl.harvard.edu:8080/HGL/jsp/HGL.jsp?action=VColl&VCollName=MASSTOWNS05"},
		"layer_slug_s":      {"harvard-masstowns05"},
		"dc_title_s":        {"Massachusetts Towns, 2005"},
		"dc_rights_s":       {"Public"},
		"dct_provenance_s":  {"Harvard"},
		"dc_creator_sm":     {"Harvard Map Collection, Harvard College Library", "Geographic Information Systems"},
		"dc_subject_sm":     {"Boundaries", "Municipalities"},
		"dct_spatial_sm":    {"Massachusetts"},
		"dct_temporal_sm":   {"2005"},
		"layer_modified_dt": {"2012-10-11T00:00:00Z"},
		"solr_year_i":       {"2005"},
		"solr_geom":         {"ENVELOPE(-73.508142, -69.928393, 42.886589, 41.237964)"},
		"dc_format_s":       {"Shapefile"},
		"dc_language_s":     {"English"},
		"layer_geom_type_s": {"Polygon"},
	} {
		assert.Equal(t, want, got[field], field)
	}
}

func TestGeoblacklightMissingRequired(t *testing.T) {
	doc, err := document.Parse([]byte(`<metadata><idinfo><descript><abstract>Only an abstract</abstract></descript></idinfo></metadata>`))
	require.NoError(t, err)

	out, err := Geoblacklight(doc, ruleSet(t, ruleset.FGDCToGeoblacklight))
	require.Error(t, err)
	assert.Nil(t, out)

	var merr *mderr.Error
	require.True(t, errors.As(err, &merr), "%v", err)
	assert.Equal(t, mderr.KindTransform, merr.Kind)
	assert.Equal(t, "missing-element", merr.Tag)
	assert.Equal(t, []string{"dc_identifier_s", "layer_slug_s", "dc_title_s", "dct_provenance_s", "solr_geom"}, merr.Fields)

	// parameters satisfy required fields the document lacks
	_, err = Geoblacklight(doc, ruleSet(t, ruleset.FGDCToGeoblacklight),
		WithParam("identifier", "urn:x"), WithParam("slug", "x"), WithParam("provenance", "Harvard"))
	require.True(t, errors.As(err, &merr), "%v", err)
	assert.Equal(t, []string{"dc_title_s", "solr_geom"}, merr.Fields)
}

func TestGeoblacklightBadGeometry(t *testing.T) {
	for _, tc := range []struct {
		name                     string
		west, east, north, south string
	}{
		{"not a number", "-73.5", "east", "42.9", "41.2"},
		{"nan", "NaN", "-69.9", "42.9", "41.2"},
		{"infinite", "-73.5", "+Inf", "42.9", "41.2"},
		{"longitude range", "-190", "-69.9", "42.9", "41.2"},
		{"latitude range", "-73.5", "-69.9", "92.9", "41.2"},
		{"south of north", "-73.5", "-69.9", "41.2", "42.9"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			doc, err := document.Parse([]byte(`<metadata><idinfo>
<datsetid>ma-towns</datsetid>
<citation><citeinfo><title>Towns</title></citeinfo></citation>
<spdom><bounding>
<westbc>` + tc.west + `</westbc><eastbc>` + tc.east + `</eastbc>
<northbc>` + tc.north + `</northbc><southbc>` + tc.south + `</southbc>
</bounding></spdom></idinfo>
<metainfo><metc><cntinfo><cntorgp><cntorg>Harvard</cntorg></cntorgp></cntinfo></metc></metainfo>
</metadata>`))
			require.NoError(t, err)
			_, err = Geoblacklight(doc, ruleSet(t, ruleset.FGDCToGeoblacklight))
			assert.True(t, mderr.HasTag(err, "bad-element"), "%v", err)
		})
	}
}

func TestApplyErrors(t *testing.T) {
	jsonDoc, err := document.Parse([]byte(`{"dc_title_s": "Map of Earth"}`))
	require.NoError(t, err)
	_, err = Geoblacklight(jsonDoc, ruleSet(t, ruleset.DCToGeoblacklight))
	assert.True(t, mderr.Is(err, mderr.KindShape), "%v", err)
	_, err = HTML(jsonDoc, ruleSet(t, ruleset.DCToHTML))
	assert.True(t, mderr.Is(err, mderr.KindShape), "%v", err)

	xmlDoc := load(t, "oai_dc.xml")
	_, err = Geoblacklight(xmlDoc, ruleSet(t, ruleset.DCToHTML))
	assert.True(t, mderr.HasTag(err, "invalid-value"), "%v", err)
	_, err = HTML(xmlDoc, ruleSet(t, ruleset.DCToGeoblacklight))
	assert.True(t, mderr.HasTag(err, "invalid-value"), "%v", err)
	_, err = Geoblacklight(xmlDoc, nil)
	assert.True(t, mderr.Is(err, mderr.KindArgument), "%v", err)
}

func TestGeoblacklightDeterministic(t *testing.T) {
	for _, tc := range []struct{ fixture, ruleSet string }{
		{"iso19139.xml", ruleset.ISOToGeoblacklight},
		{"fgdc.xml", ruleset.FGDCToGeoblacklight},
		{"csw_record.xml", ruleset.CSWToGeoblacklight},
		{"oai_dc.xml", ruleset.DCToGeoblacklight},
	} {
		t.Run(tc.ruleSet, func(t *testing.T) {
			rs := ruleSet(t, tc.ruleSet)
			a, err := Geoblacklight(load(t, tc.fixture), rs)
			require.NoError(t, err)
			b, err := Geoblacklight(load(t, tc.fixture), rs)
			require.NoError(t, err)

			xa, err := a.XML()
			require.NoError(t, err)
			xb, err := b.XML()
			require.NoError(t, err)
			assert.Equal(t, xa, xb)
			assert.True(t, strings.HasPrefix(xa, "<gbl:record "), xa)
		})
	}
}

func TestGeoblacklightDublinCoreAccess(t *testing.T) {
	out, err := Geoblacklight(load(t, "oai_dc.xml"), ruleSet(t, ruleset.DCToGeoblacklight))
	require.NoError(t, err)

	title, err := out.DC("title")
	require.NoError(t, err)
	assert.Equal(t, []string{"Map of Earth"}, title.Strings())

	creator, err := out.DC("creator")
	require.NoError(t, err)
	assert.Equal(t, []string{"Mercator, Gerhard"}, creator.Strings())

	provenance, err := out.DCT("provenance")
	require.NoError(t, err)
	assert.Equal(t, []string{"Example Map Library"}, provenance.Strings())

	geom, err := out.Select(nil, "//*[@field='solr_geom']")
	require.NoError(t, err)
	assert.Equal(t, []string{"ENVELOPE(-180, 180, 85, -85)"}, geom)

	year, err := out.Select(nil, "//*[@field='solr_year_i']")
	require.NoError(t, err)
	assert.Equal(t, []string{"1569"}, year)
}

func TestHTML(t *testing.T) {
	page, err := HTML(load(t, "oai_dc.xml"), ruleSet(t, ruleset.DCToHTML))
	require.NoError(t, err)

	for _, want := range []string{
		`<html xmlns="http://www.w3.org/1999/xhtml">`,
		`<title>Map of Earth</title>`,
		`<h1>Map of Earth</h1>`,
		`data-rule-set="dc2html"`,
		`<dt>Creator</dt>`,
		`<dd>Mercator, Gerhard</dd>`,
		`<dt>Bounding Box</dt>`,
		`<dd>ENVELOPE(-180, 180, 85, -85)</dd>`,
		`<a href="http://example.org/maps/earth">http://example.org/maps/earth</a>`,
	} {
		assert.Contains(t, page, want)
	}

	again, err := HTML(load(t, "oai_dc.xml"), ruleSet(t, ruleset.DCToHTML))
	require.NoError(t, err)
	assert.Equal(t, page, again)

	// the output is well formed XML
	doc, err := document.Parse([]byte(page))
	require.NoError(t, err)
	assert.True(t, doc.IsXML())
}

func TestEncode(t *testing.T) {
	doc, err := Encode([]Field{
		{Name: "dc_title_s", Values: []string{"A & B <maps>"}},
		{Name: "dc_subject_sm", Values: []string{"Roads", "Rivers"}},
		{Name: "solr_geom", Values: []string{"ENVELOPE(0, 1, 1, 0)"}},
	})
	require.NoError(t, err)

	title, err := doc.DC("title")
	require.NoError(t, err)
	assert.Equal(t, []string{"A & B <maps>"}, title.Strings())

	subjects, err := doc.Select(nil, "//*[@field='dc_subject_sm']")
	require.NoError(t, err)
	assert.Equal(t, []string{"Roads", "Rivers"}, subjects)

	_, err = Encode([]Field{{Name: "bad field", Values: []string{"x"}}})
	assert.True(t, mderr.HasTag(err, "invalid-name"), "%v", err)
}

func TestElementName(t *testing.T) {
	for field, want := range map[string]string{
		"dc_title_s":            "dc:title",
		"dc_creator_sm":         "dc:creator",
		"dct_references_s":      "dct:references",
		"dct_isPartOf_sm":       "dct:isPartOf",
		"dct_provenance_s":      "dct:provenance",
		"solr_geom":             "gbl:solr_geom",
		"layer_slug_s":          "gbl:layer_slug_s",
		"geoblacklight_version": "gbl:geoblacklight_version",
		"uuid":                  "gbl:uuid",
	} {
		assert.Equal(t, want, ElementName(field), field)
	}
}

func TestFormatValue(t *testing.T) {
	for _, tc := range []struct {
		format, in, want string
	}{
		{ruleset.FormatNone, " as is ", " as is "},
		{ruleset.FormatSlug, "Stanford: BB338JH0716!", "stanford-bb338jh0716"},
		{ruleset.FormatYear, "circa 1999-2001", "1999"},
		{ruleset.FormatYear, "Present", ""},
		{ruleset.FormatDate, "2016-03-04T10:00:00+02:00", "2016-03-04T08:00:00Z"},
		{ruleset.FormatDate, "2015-01-01", "2015-01-01T00:00:00Z"},
		{ruleset.FormatDate, "20121011", "2012-10-11T00:00:00Z"},
		{ruleset.FormatDate, "2005", "2005-01-01T00:00:00Z"},
		{ruleset.FormatDate, "last spring", ""},
		{ruleset.FormatBox, "northlimit=85; southlimit=-85; westlimit=-180; eastlimit=180; units=signed decimal degrees", "ENVELOPE(-180, 180, 85, -85)"},
		{ruleset.FormatBox, "Westlimit=-1.5;Eastlimit=2;Northlimit=3;Southlimit=-4", "ENVELOPE(-1.5, 2, 3, -4)"},
	} {
		t.Run(tc.format+"/"+tc.in, func(t *testing.T) {
			got, err := formatValue(tc.format, tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := formatValue(ruleset.FormatBox, "northlimit=85; southlimit=-85")
	assert.Error(t, err)

	a, err := formatValue(ruleset.FormatUUID, "urn:x")
	require.NoError(t, err)
	b, err := formatValue(ruleset.FormatUUID, "urn:x")
	require.NoError(t, err)
	assert.Equal(t, a, b)
	_, err = uuid.Parse(a)
	assert.NoError(t, err)
}

func TestEnvelope(t *testing.T) {
	got, err := corners("-97.5 43.4", "-89.5 49.4")
	require.NoError(t, err)
	assert.Equal(t, "ENVELOPE(-97.5, -89.5, 49.4, 43.4)", got)

	// boxes crossing the antimeridian keep west > east
	got, err = envelope("170", "-170", "10", "-10")
	require.NoError(t, err)
	assert.Equal(t, "ENVELOPE(170, -170, 10, -10)", got)

	_, err = corners("-97.5", "-89.5 49.4")
	assert.Error(t, err)
	_, err = envelope("0", "0", "-1", "1")
	assert.Error(t, err)

	for _, bad := range []string{"NaN", "nan", "Inf", "-Infinity"} {
		_, err = envelope(bad, "1", "1", "0")
		assert.Error(t, err, bad)
		_, err = envelope("0", "1", "1", bad)
		assert.Error(t, err, bad)
	}
}
