package evalworkbook

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

const (
	// DefaultWeight replaces weight values that cannot be read as an integer.
	DefaultWeight = 5
	MinWeight     = 0
	MaxWeight     = 10
)

// CoerceWeight turns a raw weight from storage or a config file into an optional integer.
//
// nil and blank strings mean "no weight" and return nil. Integral numbers in
// [MinWeight, MaxWeight] are kept. Anything else yields fallback with coerced set.
func CoerceWeight(raw interface{}, fallback int) (weight *int, coerced bool) {
	switch v := raw.(type) {
	case nil:
		return nil, false
	case *int:
		if v == nil {
			return nil, false
		}
		return inRange(*v, fallback)
	case int:
		return inRange(v, fallback)
	case int32:
		return inRange(int(v), fallback)
	case int64:
		return inRange(int(v), fallback)
	case uint:
		return inRange(int(v), fallback)
	case float32:
		return fromFloat(float64(v), fallback)
	case float64:
		return fromFloat(v, fallback)
	case json.Number:
		return fromString(v.String(), fallback)
	case *string:
		if v == nil {
			return nil, false
		}
		return fromString(*v, fallback)
	case string:
		return fromString(v, fallback)
	}
	return intPtr(fallback), true
}

func fromString(s string, fallback int) (*int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	if i, err := strconv.Atoi(s); err == nil {
		return inRange(i, fallback)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return fromFloat(f, fallback)
	}
	return intPtr(fallback), true
}

func fromFloat(f float64, fallback int) (*int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return intPtr(fallback), true
	}
	return inRange(int(f), fallback)
}

func inRange(i, fallback int) (*int, bool) {
	if i < MinWeight || i > MaxWeight {
		return intPtr(fallback), true
	}
	return intPtr(i), false
}

func intPtr(i int) *int {
	return &i
}
