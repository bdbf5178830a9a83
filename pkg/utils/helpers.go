package utils

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// nullTokens are the cell spellings read as an absent value
var nullTokens = map[string]bool{
	"":     true,
	"NA":   true,
	"N/A":  true,
	"n/a":  true,
	"NaN":  true,
	"nan":  true,
	"null": true,
	"NULL": true,
	"None": true,
}

// ParseValue converts a raw text cell into nil, int64, float64, bool or string
func ParseValue(s string) interface{} {
	// Trim whitespace first
	s = strings.TrimSpace(s)

	if nullTokens[s] {
		return nil
	}
	// try int
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	// try float; "inf" and friends stay text
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return f
	}
	switch s {
	case "true", "True", "TRUE":
		return true
	case "false", "False", "FALSE":
		return false
	}
	return s
}

// FormatValue renders a cell back to text; absent cells become the empty string
func FormatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		if math.IsNaN(val) {
			return ""
		}
		out := strconv.FormatFloat(val, 'f', -1, 64)
		// keep floats distinguishable from ints when read back
		if !strings.ContainsAny(out, ".eEn") {
			out += ".0"
		}
		return out
	case bool:
		if val {
			return "True"
		}
		return "False"
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Numeric safely converts supported types to float64.
func Numeric(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case float64:
		return val, !math.IsNaN(val)
	case float32:
		return float64(val), true
	default:
		rv := reflect.ValueOf(v)
		if rv.IsValid() && rv.Kind() >= reflect.Int && rv.Kind() <= reflect.Float64 {
			return rv.Convert(reflect.TypeOf(float64(0))).Float(), true
		}
		return 0, false
	}
}
