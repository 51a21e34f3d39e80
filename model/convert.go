package model

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/relvacode/iso8601"
)

// ToNumberOrZero converts x into a finite float64.
// Only numeric kinds are accepted; strings, bools, nil, NaN and infinities give 0.
func ToNumberOrZero(x interface{}) float64 {
	var f float64
	switch t := x.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int8:
		f = float64(t)
	case int16:
		f = float64(t)
	case int32:
		f = float64(t)
	case int64:
		f = float64(t)
	case uint:
		f = float64(t)
	case uint8:
		f = float64(t)
	case uint16:
		f = float64(t)
	case uint32:
		f = float64(t)
	case uint64:
		f = float64(t)
	case json.Number:
		v, err := t.Float64()
		if err != nil {
			return 0
		}
		f = v
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// ToTimeOrZero converts x into an instant. Strings are parsed as ISO-8601, or as
// epoch milliseconds when purely numeric; numbers are epoch milliseconds.
// Anything unusable gives the zero time.
func ToTimeOrZero(x interface{}) time.Time {
	switch t := x.(type) {
	case time.Time:
		return t
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}
		}
		if ms, err := strconv.ParseFloat(s, 64); err == nil {
			return fromMillis(ms)
		}
		if ts, err := iso8601.ParseString(s); err == nil {
			return ts
		}
		return time.Time{}
	case nil, bool:
		return time.Time{}
	default:
		ms := ToNumberOrZero(x)
		if ms == 0 {
			return time.Time{}
		}
		return fromMillis(ms)
	}
}

func fromMillis(ms float64) time.Time {
	if math.IsNaN(ms) || math.IsInf(ms, 0) || ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(int64(ms))
}
