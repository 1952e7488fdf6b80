package geoblacklight

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/geocombine/geocombine/mderr"
	"github.com/pkg/errors"
)

// Version is the Geoblacklight schema version records are validated against
const Version = "1.0"

// RequiredFields are the fields every Geoblacklight 1.0 record carries
var RequiredFields = []string{
	"dc_identifier_s",
	"dc_rights_s",
	"dc_title_s",
	"dct_provenance_s",
	"geoblacklight_version",
	"layer_slug_s",
	"solr_geom",
}

var reEnvelope = regexp.MustCompile(
	`^ENVELOPE\(\s*(-?[0-9.]+)\s*,\s*(-?[0-9.]+)\s*,\s*(-?[0-9.]+)\s*,\s*(-?[0-9.]+)\s*\)$`)

// Validate checks the record against the Geoblacklight 1.0 schema
// constraints: required fields, the rights vocabulary and the solr_geom
// envelope.
func (r *Record) Validate() error {
	var missing []string
	for _, f := range RequiredFields {
		if r.First(f) == "" {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return errors.WithStack(mderr.MissingElement(missing, mderr.WithSource("geoblacklight "+Version)))
	}
	if v := r.First("geoblacklight_version"); v != Version {
		return invalid("geoblacklight_version", "unsupported version %q", v)
	}
	switch rights := r.First("dc_rights_s"); rights {
	case "Public", "Restricted":
	default:
		return invalid("dc_rights_s", "rights %q must be Public or Restricted", rights)
	}
	if _, err := ParseEnvelope(r.First("solr_geom")); err != nil {
		return invalid("solr_geom", "%v", err)
	}
	if refs := r.First("dct_references_s"); refs != "" {
		if _, err := ParseReferences(refs); err != nil {
			return invalid("dct_references_s", "%v", err)
		}
	}
	return nil
}

func invalid(field, format string, args ...interface{}) error {
	return errors.WithStack(mderr.BadElement(field, mderr.WithSource("geoblacklight "+Version),
		mderr.WithMessage(fmt.Sprintf(format, args...))))
}

// Envelope is a bounding box in decimal degrees
type Envelope struct {
	West, East, North, South float64
}

// ParseEnvelope parses the Solr ENVELOPE(west, east, north, south) form
func ParseEnvelope(s string) (Envelope, error) {
	m := reEnvelope.FindStringSubmatch(s)
	if m == nil {
		return Envelope{}, errors.Errorf("%q is not an ENVELOPE", s)
	}
	var n [4]float64
	for i := range n {
		f, err := strconv.ParseFloat(m[i+1], 64)
		if err != nil {
			return Envelope{}, errors.Wrapf(err, "envelope %q", s)
		}
		n[i] = f
	}
	env := Envelope{West: n[0], East: n[1], North: n[2], South: n[3]}
	switch {
	case env.West < -180 || env.West > 180 || env.East < -180 || env.East > 180:
		return Envelope{}, errors.Errorf("envelope %q: longitude out of range", s)
	case env.North < -90 || env.North > 90 || env.South < -90 || env.South > 90:
		return Envelope{}, errors.Errorf("envelope %q: latitude out of range", s)
	case env.South > env.North:
		return Envelope{}, errors.Errorf("envelope %q: south is north of north", s)
	}
	return env, nil
}

// CrossesAntimeridian reports whether the envelope wraps past 180 degrees
func (e Envelope) CrossesAntimeridian() bool { return e.West > e.East }
