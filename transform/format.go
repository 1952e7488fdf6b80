package transform

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/geocombine/geocombine/ruleset"
	"github.com/goccy/go-json"
	"github.com/golang/glog"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var (
	reSlug = regexp.MustCompile(`[^a-z0-9]+`)
	reYear = regexp.MustCompile(`\d{4}`)

	dateLayouts = []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02",
		"20060102150405",
		"20060102",
		"2006-01",
		"200601",
		"2006",
	}
)

// formatValue applies a per-value format. Values a lenient format
// cannot use (a date without a recognizable date) are dropped by
// returning "", while malformed geometry is an error.
func formatValue(format, v string) (string, error) {
	switch format {
	case ruleset.FormatSlug:
		return slug(v), nil
	case ruleset.FormatYear:
		y := reYear.FindString(v)
		if y == "" {
			glog.V(2).Infof("transform: no year in %q", v)
		}
		return y, nil
	case ruleset.FormatDate:
		d, ok := date(v)
		if !ok {
			glog.Warningf("transform: unrecognized date %q", v)
		}
		return d, nil
	case ruleset.FormatUUID:
		return uuid.NewSHA1(uuid.NameSpaceURL, []byte(v)).String(), nil
	case ruleset.FormatBox:
		return box(v)
	}
	return v, nil
}

func slug(v string) string {
	return strings.Trim(reSlug.ReplaceAllString(strings.ToLower(v), "-"), "-")
}

func date(v string) (string, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC().Format("2006-01-02T15:04:05Z"), true
		}
	}
	return "", false
}

// envelope returns the Solr ENVELOPE(west, east, north, south) form
func envelope(west, east, north, south string) (string, error) {
	var n [4]float64
	for i, s := range []string{west, east, north, south} {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return "", errors.Errorf("coordinate %q is not a number", s)
		}
		n[i] = f
	}
	w, e, no, so := n[0], n[1], n[2], n[3]
	switch {
	case w < -180 || w > 180 || e < -180 || e > 180:
		return "", errors.Errorf("longitude out of range in %v", n)
	case no < -90 || no > 90 || so < -90 || so > 90:
		return "", errors.Errorf("latitude out of range in %v", n)
	case so > no:
		return "", errors.Errorf("south %v is north of north %v", so, no)
	}
	return fmt.Sprintf("ENVELOPE(%s, %s, %s, %s)", ff(w), ff(e), ff(no), ff(so)), nil
}

// corners converts OWS lower and upper "x y" corners to an envelope
func corners(lower, upper string) (string, error) {
	lo, up := strings.Fields(lower), strings.Fields(upper)
	if len(lo) != 2 || len(up) != 2 {
		return "", errors.Errorf("corners %q %q need two coordinates each", lower, upper)
	}
	return envelope(lo[0], up[0], up[1], lo[1])
}

// box converts a DCMI Box encoding to an envelope
func box(v string) (string, error) {
	limits := map[string]string{}
	for _, part := range strings.Split(v, ";") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		limits[strings.ToLower(strings.TrimSpace(kv[0]))] = strings.TrimSpace(kv[1])
	}
	for _, k := range []string{"westlimit", "eastlimit", "northlimit", "southlimit"} {
		if limits[k] == "" {
			return "", errors.Errorf("box %q has no %s", v, k)
		}
	}
	return envelope(limits["westlimit"], limits["eastlimit"], limits["northlimit"], limits["southlimit"])
}

func ff(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

// encodeReferences returns the dct_references_s JSON object. Keys are
// written in sorted order.
func encodeReferences(refs map[string]string) (string, error) {
	b, err := json.Marshal(refs)
	if err != nil {
		return "", errors.WithStack(err)
	}
	return string(b), nil
}
