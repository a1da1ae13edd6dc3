package reconcile

import (
	"encoding/json"
	"strconv"
	"time"
)

// String timestamp layouts seen in legacy imports, tried in order.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// coerceTime normalizes the timestamp representations found in raw records
// (native time, {"seconds":N} containers, epoch numbers, date strings) to a
// single comparable instant. Unparseable or missing values map to the zero
// time, which sorts as earliest.
func coerceTime(v any) time.Time {
	switch t := v.(type) {
	case nil:
		return time.Time{}
	case time.Time:
		return t
	case *time.Time:
		if t == nil {
			return time.Time{}
		}
		return *t
	case map[string]any:
		if sec, ok := epochFromContainer(t); ok {
			return time.Unix(sec, 0)
		}
		return time.Time{}
	case float64:
		return time.Unix(int64(t), 0)
	case int64:
		return time.Unix(t, 0)
	case int:
		return time.Unix(int64(t), 0)
	case json.Number:
		if sec, err := t.Int64(); err == nil {
			return time.Unix(sec, 0)
		}
		return time.Time{}
	case string:
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed
			}
		}
		return time.Time{}
	default:
		return time.Time{}
	}
}

// epochFromContainer reads firestore-style {"seconds":N} / {"_seconds":N}
// timestamp containers.
func epochFromContainer(m map[string]any) (int64, bool) {
	for _, key := range []string{"seconds", "_seconds"} {
		if raw, ok := m[key]; ok {
			switch n := raw.(type) {
			case float64:
				return int64(n), true
			case int64:
				return n, true
			case json.Number:
				if sec, err := n.Int64(); err == nil {
					return sec, true
				}
			}
		}
	}
	return 0, false
}

// parseAmount coerces a loose amount value to a number; non-numeric values
// count as zero rather than failing the batch.
func parseAmount(v any) float64 {
	switch a := v.(type) {
	case nil:
		return 0
	case float64:
		return a
	case float32:
		return float64(a)
	case int:
		return float64(a)
	case int64:
		return float64(a)
	case json.Number:
		if f, err := a.Float64(); err == nil {
			return f
		}
		return 0
	case string:
		if f, err := strconv.ParseFloat(a, 64); err == nil {
			return f
		}
		return 0
	default:
		return 0
	}
}
