package geoblacklight

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/geocombine/geocombine/document"
	"github.com/geocombine/geocombine/mderr"
	"github.com/geocombine/geocombine/ruleset"
	"github.com/geocombine/geocombine/transform"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixture = filepath.Join("..", "testdata", "geoblacklight.json")

func loadFixture(t *testing.T) *Record {
	t.Helper()
	r, err := Load(fixture)
	require.NoError(t, err)
	return r
}

func TestRecordFromJSON(t *testing.T) {
	r := loadFixture(t)

	assert.Equal(t, "2005 Rural Poverty GIS Database: Uganda", r.First("dc_title_s"))
	assert.Equal(t, []string{"Poverty", "Statistics"}, r.Get("dc_subject_sm"))
	assert.Equal(t, "2005", r.First("solr_year_i"))
	assert.Equal(t, []string{}, r.Get("dct_isPartOf_sm"))
	assert.Equal(t, "", r.First("dct_isPartOf_sm"))
	assert.Contains(t, r.Fields(), "solr_geom")
	assert.Len(t, r.Fields(), 18)

	title, err := r.DC("title")
	require.NoError(t, err)
	assert.Equal(t, []string{"2005 Rural Poverty GIS Database: Uganda"}, title.Strings())

	spatial, err := r.DCT("spatial")
	require.NoError(t, err)
	assert.Equal(t, []string{"Uganda"}, spatial.Strings())

	geom, err := r.Query("gbl", "http://geoblacklight.org/schema", "solr_geom")
	require.NoError(t, err)
	assert.Equal(t, []string{"ENVELOPE(29.572742, 35.000308, 4.234077, -1.478794)"}, geom.Strings())

	assert.NoError(t, r.Validate())
}

func TestRecordJSON(t *testing.T) {
	want, err := os.ReadFile(fixture)
	require.NoError(t, err)

	r := loadFixture(t)
	got, err := r.JSON()
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(got))

	m := r.Map()
	assert.Equal(t, 2005, m["solr_year_i"])
	assert.Equal(t, []string{"Uganda Bureau of Statistics"}, m["dc_creator_sm"])
	assert.Equal(t, "1.0", m["geoblacklight_version"])
}

func TestRecordTypedValues(t *testing.T) {
	var v interface{}
	require.NoError(t, json.Unmarshal([]byte(`{
  "dc_title_s": "Quads",
  "solr_year_im": [1999, 2005],
  "suppressed_bm": [true, "maybe"],
  "notes_tm": ["first", "second"],
  "solr_year_i": "unknown"
}`), &v))

	r, err := NewRecord(document.FromJSON(v))
	require.NoError(t, err)
	m := r.Map()
	assert.Equal(t, "Quads", m["dc_title_s"])
	assert.Equal(t, []interface{}{1999, 2005}, m["solr_year_im"])
	assert.Equal(t, []interface{}{true, "maybe"}, m["suppressed_bm"])
	assert.Equal(t, []string{"first", "second"}, m["notes_tm"])
	assert.Equal(t, "unknown", m["solr_year_i"])

	out, err := r.JSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{
  "dc_title_s": "Quads",
  "notes_tm": ["first", "second"],
  "solr_year_i": "unknown",
  "solr_year_im": [1999, 2005],
  "suppressed_bm": [true, "maybe"]
}`, string(out))
}

func TestNewRecordShape(t *testing.T) {
	for _, tc := range []struct {
		name  string
		input string
	}{
		{"json array", `[{"dc_title_s": "x"}]`},
		{"json scalar", `"dc_title_s"`},
		{"foreign xml", `<metadata><idinfo/></metadata>`},
		{"record without namespace", `<record><title field="dc_title_s">x</title></record>`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			doc, err := document.Parse([]byte(tc.input))
			require.NoError(t, err)
			_, err = NewRecord(doc)
			assert.True(t, mderr.Is(err, mderr.KindShape), "%v", err)
		})
	}
}

func TestRecordXMLRoundTrip(t *testing.T) {
	r := loadFixture(t)
	x, err := r.XML()
	require.NoError(t, err)

	again, err := Load(x)
	require.NoError(t, err)
	assert.Equal(t, r.Fields(), again.Fields())
	assert.Equal(t, r.Map(), again.Map())
}

func TestRecordTransform(t *testing.T) {
	reg, err := ruleset.Default()
	require.NoError(t, err)
	rs, err := reg.Get(ruleset.GeoblacklightToGeoblacklight)
	require.NoError(t, err)

	r := loadFixture(t)
	once, err := r.Transform(rs)
	require.NoError(t, err)
	assert.Equal(t, r.Map(), once.Map())
	assert.Equal(t, "geoblacklight_version", once.Fields()[0])

	twice, err := once.Transform(rs)
	require.NoError(t, err)
	x1, err := once.XML()
	require.NoError(t, err)
	x2, err := twice.XML()
	require.NoError(t, err)
	assert.Equal(t, x1, x2)

	html, err := reg.Get(ruleset.GeoblacklightToHTML)
	require.NoError(t, err)
	_, err = r.Transform(html)
	assert.True(t, mderr.HasTag(err, "invalid-value"), "%v", err)
}

func TestRecordToHTML(t *testing.T) {
	page, err := loadFixture(t).ToHTML(nil)
	require.NoError(t, err)
	for _, want := range []string{
		`<title>2005 Rural Poverty GIS Database: Uganda</title>`,
		`data-rule-set="geoblacklight2html"`,
		`<dt>Provenance</dt>`,
		`<dd>Stanford</dd>`,
		`<a href="http://purl.stanford.edu/cz128vq0535">`,
	} {
		assert.Contains(t, page, want)
	}

	empty, err := ruleset.NewRegistry(ruleset.WithoutBuiltin())
	require.NoError(t, err)
	_, err = loadFixture(t).ToHTML(empty)
	assert.True(t, mderr.HasTag(err, "unknown-rule-set"), "%v", err)
}

func TestValidate(t *testing.T) {
	valid := map[string]string{
		"geoblacklight_version": "1.0",
		"dc_identifier_s":       "urn:x",
		"dc_rights_s":           "Restricted",
		"dc_title_s":            "X",
		"dct_provenance_s":      "Harvard",
		"layer_slug_s":          "x",
		"solr_geom":             "ENVELOPE(170, -170, 10, -10)",
	}
	record := func(t *testing.T, override map[string]string) *Record {
		var fields []transform.Field
		for _, name := range RequiredFields {
			v := valid[name]
			if o, ok := override[name]; ok {
				v = o
			}
			if v != "" {
				fields = append(fields, transform.Field{Name: name, Values: []string{v}})
			}
		}
		if refs, ok := override["dct_references_s"]; ok {
			fields = append(fields, transform.Field{Name: "dct_references_s", Values: []string{refs}})
		}
		doc, err := transform.Encode(fields)
		require.NoError(t, err)
		r, err := NewRecord(doc)
		require.NoError(t, err)
		return r
	}

	assert.NoError(t, record(t, nil).Validate())

	for _, tc := range []struct {
		name     string
		override map[string]string
		tag      string
		field    string
	}{
		{"missing title", map[string]string{"dc_title_s": ""}, "missing-element", "dc_title_s"},
		{"version", map[string]string{"geoblacklight_version": "2.0"}, "bad-element", "geoblacklight_version"},
		{"rights", map[string]string{"dc_rights_s": "public"}, "bad-element", "dc_rights_s"},
		{"geometry", map[string]string{"solr_geom": "POLYGON((0 0))"}, "bad-element", "solr_geom"},
		{"geometry range", map[string]string{"solr_geom": "ENVELOPE(0, 1, 95, 0)"}, "bad-element", "solr_geom"},
		{"references", map[string]string{"dct_references_s": "http://example.org"}, "bad-element", "dct_references_s"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := record(t, tc.override).Validate()
			require.Error(t, err)
			assert.True(t, mderr.HasTag(err, tc.tag), "%v", err)
			assert.Contains(t, err.Error(), tc.field)
		})
	}
}

func TestParseEnvelope(t *testing.T) {
	env, err := ParseEnvelope("ENVELOPE(29.572742, 35.000308, 4.234077, -1.478794)")
	require.NoError(t, err)
	assert.Equal(t, Envelope{West: 29.572742, East: 35.000308, North: 4.234077, South: -1.478794}, env)
	assert.False(t, env.CrossesAntimeridian())

	env, err = ParseEnvelope("ENVELOPE(170,-170,10,-10)")
	require.NoError(t, err)
	assert.True(t, env.CrossesAntimeridian())

	for _, s := range []string{"", "ENVELOPE(1, 2, 3)", "ENVELOPE(0, 181, 1, 0)", "ENVELOPE(0, 1, 0, 1)"} {
		_, err := ParseEnvelope(s)
		assert.Error(t, err, s)
	}
}

func TestReferences(t *testing.T) {
	refs, err := loadFixture(t).References()
	require.NoError(t, err)

	wms, ok := refs.Lookup("wms")
	assert.True(t, ok)
	assert.Equal(t, "https://geowebservices.stanford.edu/geoserver/wms", wms)
	_, ok = refs.Lookup("wfs")
	assert.False(t, ok)
	_, ok = refs.Lookup("gopher")
	assert.False(t, ok)
	assert.Equal(t, []string{"url", "wms"}, refs.Names())

	doc, err := transform.Encode([]transform.Field{{Name: "dc_title_s", Values: []string{"x"}}})
	require.NoError(t, err)
	r, err := NewRecord(doc)
	require.NoError(t, err)
	refs, err = r.References()
	require.NoError(t, err)
	assert.Empty(t, refs)
}
