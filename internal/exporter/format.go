package exporter

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
)

// formatValue renders one dataset value as a CSV field. Timestamps use
// layout, which callers pick once per column with timeLayout.
func formatValue(v any, layout string) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return formatFloat(x)
	case float32:
		return formatFloat(float64(x))
	case int64:
		return formatInt(x)
	case int:
		return formatInt(int64(x))
	case int32:
		return formatInt(int64(x))
	case bool:
		return formatBool(x)
	case time.Time:
		return x.Format(layout)
	default:
		return fmt.Sprint(v)
	}
}

// formatFloat writes the shortest decimal that round-trips. Integral values
// keep a trailing ".0" and NaN is an empty field.
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ""
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// formatInt formats an int64 value for CSV output
func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

// formatBool formats a boolean value for CSV output
func formatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// timeLayout drops the clock for a whole column when every timestamp in it
// is a plain date
func timeLayout(values []any) string {
	for _, v := range values {
		if t, ok := v.(time.Time); ok && !isDate(t) {
			return dateTimeLayout
		}
	}
	return dateLayout
}

func isDate(t time.Time) bool {
	return t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0
}
