package dataset

import (
	"cmp"
	"fmt"
	"math"
	"strconv"
	"time"
)

// IsNull reports whether v is a null value.
func IsNull(v any) bool {
	return v == nil
}

// Compare orders two non-null values. Numbers compare numerically, times
// chronologically and everything else by its string form. Mixed kinds fall
// back to string comparison so the ordering stays total. Integers compare
// exactly; only a float on either side widens the comparison to float64.
func Compare(a, b any) int {
	if ia, ok := toInt(a); ok {
		if ib, ok := toInt(b); ok {
			return cmp.Compare(ia, ib)
		}
	}
	if ua, ok := a.(uint64); ok {
		if ub, ok := b.(uint64); ok {
			return cmp.Compare(ua, ub)
		}
	}
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return cmp.Compare(fa, fb)
		}
	}
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb)
		}
	}
	if ba, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ba == bb:
				return 0
			case !ba:
				return -1
			default:
				return 1
			}
		}
	}
	return cmp.Compare(Format(a), Format(b))
}

// Equal reports whether two values are equal under Compare. Nulls are
// never equal to anything, including other nulls.
func Equal(a, b any) bool {
	if IsNull(a) || IsNull(b) {
		return false
	}
	return Compare(a, b) == 0
}

// KeyString returns a canonical string for use as a map key when grouping
// or joining rows. Integers keep every digit, and integral floats share the
// integer form so 7 and 7.0 land on the same key.
func KeyString(v any) string {
	if i, ok := toInt(v); ok {
		return strconv.FormatInt(i, 10)
	}
	switch x := v.(type) {
	case uint64:
		return strconv.FormatUint(x, 10)
	case uint:
		return strconv.FormatUint(uint64(x), 10)
	}
	if f, ok := toFloat(v); ok {
		if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
			return strconv.FormatInt(int64(f), 10)
		}
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return Format(v)
}

// Format renders a value for display and text output. Nulls render empty.
func Format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format(time.DateOnly)
		}
		return x.Format(time.RFC3339)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case bool:
		return strconv.FormatBool(x)
	case []byte:
		return string(x)
	default:
		return fmt.Sprint(x)
	}
}

// toInt returns signed and small unsigned integers as int64 without loss.
func toInt(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int64:
		return x, true
	case int32:
		return int64(x), true
	case int16:
		return int64(x), true
	case int8:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint:
		if uint64(x) <= math.MaxInt64 {
			return int64(x), true
		}
	case uint64:
		if x <= math.MaxInt64 {
			return int64(x), true
		}
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	case int16:
		return float64(x), true
	case int8:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint64:
		return float64(x), true
	case uint32:
		return float64(x), true
	default:
		return 0, false
	}
}
