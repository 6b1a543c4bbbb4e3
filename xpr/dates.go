package xpr

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/eokit/stacforge/errors"
)

var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"20060102T150405",
	"2006-01-02",
}

// ParseTimestamp parses an ISO-8601 timestamp in the forms metadata files
// actually carry, including the compact EOF form. Zone-naive inputs are
// taken as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Newf("unparsable timestamp %q", s)
}

var durationPart = regexp.MustCompile(`(\d+(?:\.\d+)?)([dhms])`)

// parseDelta parses signed offsets like "2d8h5m20s" or "-12h".
func parseDelta(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	matches := durationPart.FindAllStringSubmatch(s, -1)
	if matches == nil {
		return 0, errors.Newf("unparsable duration %q", s)
	}
	var total time.Duration
	for _, m := range matches {
		n, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, errors.Wrapf(err, "duration %q", s)
		}
		switch m[2] {
		case "d":
			total += time.Duration(n * 24 * float64(time.Hour))
		case "h":
			total += time.Duration(n * float64(time.Hour))
		case "m":
			total += time.Duration(n * float64(time.Minute))
		case "s":
			total += time.Duration(n * float64(time.Second))
		}
	}
	if neg {
		total = -total
	}
	return total, nil
}

// date_format parses an ISO-8601 value, applies an optional signed offset,
// and reformats it with an optional Go layout. The default layout is
// RFC 3339 with nanosecond precision, so reformatting an already formatted
// value is a no-op.
func evalDateFormat(args []Value) (Value, error) {
	in := args[0].First()
	if in == "" {
		return Value{}, nil
	}
	t, err := ParseTimestamp(in)
	if err != nil {
		return Value{}, err
	}
	layout := time.RFC3339Nano
	if len(args) >= 2 && args[1].First() != "" {
		layout = args[1].First()
	}
	if len(args) == 3 && args[2].First() != "" {
		delta, err := parseDelta(args[2].First())
		if err != nil {
			return Value{}, err
		}
		t = t.Add(delta)
	}
	return Lit(t.UTC().Format(layout)), nil
}

// date_diff returns the midpoint between two timestamps, formatted per the
// optional timespec (auto, seconds, milliseconds, microseconds).
func evalDateDiff(args []Value) (Value, error) {
	start, err := ParseTimestamp(args[0].First())
	if err != nil {
		return Value{}, errors.WithMessage(err, "start")
	}
	end, err := ParseTimestamp(args[1].First())
	if err != nil {
		return Value{}, errors.WithMessage(err, "end")
	}
	mid := start.Add(end.Sub(start) / 2).UTC()

	spec := "auto"
	if len(args) == 3 && args[2].First() != "" {
		spec = args[2].First()
	}
	var layout string
	switch spec {
	case "auto":
		if mid.Nanosecond() == 0 {
			layout = "2006-01-02T15:04:05Z07:00"
		} else {
			layout = "2006-01-02T15:04:05.000000Z07:00"
		}
	case "seconds":
		layout = "2006-01-02T15:04:05Z07:00"
	case "milliseconds":
		layout = "2006-01-02T15:04:05.000Z07:00"
	case "microseconds":
		layout = "2006-01-02T15:04:05.000000Z07:00"
	default:
		return Value{}, errors.Newf("unsupported timespec %q", spec)
	}
	return Lit(mid.Format(layout)), nil
}
