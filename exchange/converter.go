package exchange

import (
	"fmt"
	"strconv"
)

// ToBool coerces a stored property value to a boolean. Booleans pass through,
// strings go through strconv.ParseBool, and numeric values are true when
// non-zero. Anything else, including nil, is an error.
func ToBool(v interface{}) (bool, error) {
	switch value := v.(type) {
	case bool:
		return value, nil
	case string:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return false, fmt.Errorf("cannot convert %q to bool: %w", value, err)
		}
		return b, nil
	case int:
		return value != 0, nil
	case int32:
		return value != 0, nil
	case int64:
		return value != 0, nil
	case uint:
		return value != 0, nil
	case uint32:
		return value != 0, nil
	case uint64:
		return value != 0, nil
	case float32:
		return value != 0, nil
	case float64:
		return value != 0, nil
	case nil:
		return false, fmt.Errorf("cannot convert nil to bool")
	default:
		return false, fmt.Errorf("cannot convert %T to bool", v)
	}
}
