package extract

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/eokit/stacforge/errors"
	"github.com/eokit/stacforge/registry"
	"github.com/eokit/stacforge/xpr"
)

// timestamps render in UTC with microsecond precision
const (
	dateTimeLayout       = "2006-01-02T15:04:05.000000Z"
	dateTimeOffsetLayout = "2006-01-02T15:04:05.000000-07:00"
)

// coerce converts an evaluated value to the rule's declared type. Sequence
// rules coerce element-wise; an empty value coerces to nothing and the
// attribute stays absent.
func coerce(v xpr.Value, t registry.DataType, multi bool) (any, error) {
	if v.IsEmpty() {
		return nil, nil
	}
	if multi {
		out := make([]any, 0, len(v.Texts))
		for _, s := range v.Texts {
			c, err := coerceOne(s, v, t)
			if err != nil {
				return nil, err
			}
			if c != nil {
				out = append(out, c)
			}
		}
		if len(out) == 0 {
			return nil, nil
		}
		return out, nil
	}
	return coerceOne(v.First(), v, t)
}

func coerceOne(s string, v xpr.Value, t registry.DataType) (any, error) {
	s = strings.TrimSpace(s)
	if s == "" && t != registry.TypeDict {
		return nil, nil
	}
	switch t {
	case registry.TypeString, registry.TypeGeography:
		return s, nil

	case registry.TypeInt:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, errors.NewExtractionError("not an integer: %q", s)
		}
		if n < math.MinInt32 || n > math.MaxInt32 {
			return nil, errors.NewExtractionError("integer out of range: %d", n)
		}
		return n, nil

	case registry.TypeInt64:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, errors.NewExtractionError("not an integer: %q", s)
		}
		return n, nil

	case registry.TypeDouble:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, errors.NewExtractionError("not a number: %q", s)
		}
		return f, nil

	case registry.TypeBoolean:
		b, err := strconv.ParseBool(strings.ToLower(s))
		if err != nil {
			return nil, errors.NewExtractionError("not a boolean: %q", s)
		}
		return b, nil

	case registry.TypeDateTime:
		ts, err := xpr.ParseTimestamp(s)
		if err != nil {
			return nil, errors.NewExtractionError("%v", err)
		}
		return ts.UTC().Format(dateTimeLayout), nil

	case registry.TypeDateTimeOffset:
		ts, err := xpr.ParseTimestamp(s)
		if err != nil {
			return nil, errors.NewExtractionError("%v", err)
		}
		return ts.Format(dateTimeOffsetLayout), nil

	case registry.TypeDict:
		if v.Raw != nil {
			return v.Raw, nil
		}
		var out any
		if err := json.Unmarshal([]byte(s), &out); err != nil {
			return nil, errors.NewExtractionError("not a JSON value: %q", s)
		}
		return out, nil

	default:
		return nil, errors.NewExtractionError("unsupported data type %q", t)
	}
}

// nowUTC is swapped in tests.
var nowUTC = func() time.Time { return time.Now().UTC() }
