package geoblacklight

import (
	"strconv"
	"strings"

	"github.com/geocombine/geocombine/ruleset"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// Map returns the record as a Solr document. Multi-valued fields are
// slices, _i and _b values (and the items of _im and _bm fields) are
// numbers and booleans where they parse, everything else is a string.
func (r *Record) Map() map[string]interface{} {
	out := map[string]interface{}{}
	for _, field := range r.Fields() {
		values := r.Get(field)
		if ruleset.Multivalued(field) {
			out[field] = typedList(field, values)
			continue
		}
		out[field] = typed(field, values[0])
	}
	return out
}

func typedList(field string, values []string) interface{} {
	if !strings.HasSuffix(field, "_im") && !strings.HasSuffix(field, "_bm") {
		return values
	}
	item := strings.TrimSuffix(field, "m")
	list := make([]interface{}, len(values))
	for i, v := range values {
		list[i] = typed(item, v)
	}
	return list
}

func typed(field, v string) interface{} {
	switch {
	case strings.HasSuffix(field, "_i"):
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	case strings.HasSuffix(field, "_b"):
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return v
}

// JSON returns the record as indented Solr JSON with sorted keys
func (r *Record) JSON() ([]byte, error) {
	b, err := json.MarshalIndent(r.Map(), "", "  ")
	return b, errors.WithStack(err)
}
