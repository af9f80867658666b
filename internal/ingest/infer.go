package ingest

import (
	"strconv"
	"time"
)

// datetimeLayouts are the textual timestamp shapes recognised during type
// inference, tried in order.
var datetimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// InferColumnType picks the narrowest SQL type that fits every non-empty
// value in the column: INT, then DOUBLE, then DATETIME, falling back to a
// VARCHAR sized to the longest observed value. Empty strings are treated
// as NULLs and are skipped during inference.
func InferColumnType(values []string) string {
	allInt, allFloat, allTime := true, true, true
	maxLen := 1
	sawValue := false

	for _, v := range values {
		if v == "" {
			continue
		}
		sawValue = true
		if len(v) > maxLen {
			maxLen = len(v)
		}
		if allInt {
			if _, err := strconv.ParseInt(v, 10, 64); err != nil {
				allInt = false
			}
		}
		if allFloat {
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				allFloat = false
			}
		}
		if allTime {
			allTime = parsesAsTime(v)
		}
	}

	switch {
	case !sawValue:
		return "VARCHAR(50)"
	case allInt:
		return "INT"
	case allFloat:
		return "DOUBLE"
	case allTime:
		return "DATETIME"
	default:
		return "VARCHAR(" + strconv.Itoa(roundUpTo(maxLen, 50)) + ")"
	}
}

func parsesAsTime(v string) bool {
	for _, layout := range datetimeLayouts {
		if _, err := time.Parse(layout, v); err == nil {
			return true
		}
	}
	return false
}

func roundUpTo(n, step int) int {
	return ((n + step - 1) / step) * step
}
