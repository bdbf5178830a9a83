package model

import (
	"math"
)

// Column kinds, named after the dtypes users see in validation reports
const (
	KindInt64   = "int64"
	KindFloat64 = "float64"
	KindBool    = "bool"
	KindObject  = "object"
)

// IsNull reports whether a cell is absent
func IsNull(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(val)
	default:
		return false
	}
}

// IsNumeric reports whether a cell holds a number
func IsNumeric(v interface{}) bool {
	switch v.(type) {
	case int64, float64:
		return true
	default:
		return false
	}
}

// InferKind returns the kind that fits every non-null value of a column.
// Mixed integers and floats widen to float64, anything else is object.
func InferKind(values []interface{}) string {
	var ints, floats, bools, others int
	for _, v := range values {
		if IsNull(v) {
			continue
		}
		switch v.(type) {
		case int64:
			ints++
		case float64:
			floats++
		case bool:
			bools++
		default:
			others++
		}
	}

	switch {
	case others > 0:
		return KindObject
	case bools > 0 && ints+floats == 0:
		return KindBool
	case bools > 0:
		return KindObject
	case floats > 0:
		return KindFloat64
	case ints > 0:
		return KindInt64
	default:
		return KindObject
	}
}
