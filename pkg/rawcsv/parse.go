package rawcsv

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	errNotFinite    = errors.New("not a finite number")
	errUnknownUnit  = errors.New("unknown speed unit")
	errBadTimestamp = errors.New("unrecognized timestamp")
)

// Layouts carrying their own offset.
var zonedLayouts = []string{
	"2006:01:02 15:04:05Z07:00",
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
}

// Layouts without an offset, read in the configured location.
var localLayouts = []string{
	"2006:01:02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006:01:02 15:04",
}

// parseTimestamp returns the zero time for values exif tools use to mean
// "unset". The bool reports whether s carried its own UTC offset.
func parseTimestamp(s string, loc *time.Location) (time.Time, bool, error) {
	if strings.HasPrefix(s, "0000:00:00") || strings.HasPrefix(s, "0000-00-00") {
		return time.Time{}, false, nil
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true, nil
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, false, nil
		}
	}
	return time.Time{}, false, errBadTimestamp
}

var (
	// 40 deg 26' 46.80" N
	reDMS = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*deg\s*(\d+(?:\.\d+)?)'\s*(\d+(?:\.\d+)?)"\s*([NSEWnsew])$`)
	// 40.446 N
	reHemisphere = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*([NSEWnsew])$`)
)

// parseCoordinate accepts decimal degrees and exiftool's printed forms. The
// value is not range checked: an implausible position is still a position.
func parseCoordinate(s string) (float64, error) {
	var v float64
	switch {
	case reDMS.MatchString(s):
		m := reDMS.FindStringSubmatch(s)
		d, _ := strconv.ParseFloat(m[1], 64)
		mi, _ := strconv.ParseFloat(m[2], 64)
		sec, _ := strconv.ParseFloat(m[3], 64)
		v = applyHemisphere(d+mi/60+sec/3600, m[4])
	case reHemisphere.MatchString(s):
		m := reHemisphere.FindStringSubmatch(s)
		d, _ := strconv.ParseFloat(m[1], 64)
		v = applyHemisphere(d, m[2])
	default:
		f, err := parseNumber(s)
		if err != nil {
			return 0, err
		}
		v = f
	}
	return v, nil
}

func applyHemisphere(v float64, ref string) float64 {
	switch strings.ToUpper(ref) {
	case "S", "W":
		return -v
	}
	return v
}

// parseAltitude accepts bare meters and exiftool's printed form
// "12.3 m Above Sea Level".
func parseAltitude(s string) (float64, error) {
	below := false
	lower := strings.ToLower(s)
	switch {
	case strings.HasSuffix(lower, "below sea level"):
		below = true
		s = s[:len(s)-len("below sea level")]
	case strings.HasSuffix(lower, "above sea level"):
		s = s[:len(s)-len("above sea level")]
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimSuffix(s, "m"))

	v, err := parseNumber(s)
	if err != nil {
		return 0, err
	}
	if below {
		v = -math.Abs(v)
	}
	return v, nil
}

// speedFactor converts the recorded speed unit into km/h. An empty ref means
// the value is already km/h, which is the EXIF default.
func speedFactor(ref string) (float64, error) {
	switch strings.ToLower(strings.TrimSpace(ref)) {
	case "", "k", "km/h":
		return 1, nil
	case "m", "mph":
		return 1.609344, nil
	case "n", "knots":
		return 1.852, nil
	}
	return 0, errUnknownUnit
}

func parseNumber(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNotFinite
	}
	return v, nil
}
