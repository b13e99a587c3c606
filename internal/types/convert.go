package types

import (
	"fmt"
	"strconv"
)

// ToInt64 converts a scanned identifier value to int64.
// Integer and float kinds convert directly. The MySQL text protocol hands back
// integers as []byte, so byte slices and strings are parsed as base-10.
func ToInt64(v interface{}) (int64, error) {
	switch i := v.(type) {
	case int64:
		return i, nil
	case int:
		return int64(i), nil
	case int32:
		return int64(i), nil
	case int16:
		return int64(i), nil
	case int8:
		return int64(i), nil
	case uint:
		return int64(i), nil
	case uint64:
		return int64(i), nil
	case uint32:
		return int64(i), nil
	case uint16:
		return int64(i), nil
	case uint8:
		return int64(i), nil
	case float64:
		return int64(i), nil
	case float32:
		return int64(i), nil
	case []byte:
		return strconv.ParseInt(string(i), 10, 64)
	case string:
		return strconv.ParseInt(i, 10, 64)
	case nil:
		return 0, fmt.Errorf("identifier is NULL")
	default:
		return 0, fmt.Errorf("unsupported identifier type %T", v)
	}
}

// NormalizeValue turns driver-level []byte values into strings so values read
// through a cursor print and compare naturally. Everything else is returned as is.
func NormalizeValue(v interface{}) interface{} {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
