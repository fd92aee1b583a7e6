package parser

import (
	"strconv"
	"strings"
	"time"

	"github.com/pable/go-smite-metrics/internal/model"
)

// timeLayout matches the combat log's "YYYY.MM.DD-HH.MM.SS" stamps.
const timeLayout = "2006.01.02-15.04.05"

// parseTimestamp parses a combat-log timestamp. Trailing garbage after the
// 19-character stamp is ignored.
func parseTimestamp(s string) (time.Time, bool) {
	if len(s) < len(timeLayout) {
		return time.Time{}, false
	}
	ts, err := time.Parse(timeLayout, s[:len(timeLayout)])
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// cleanLine prepares a raw log line for JSON decoding: strips the UTF-8 BOM,
// trims whitespace, drops a trailing comma and removes stray carriage
// returns.
func cleanLine(line string) string {
	line = strings.TrimPrefix(line, "\ufeff")
	line = strings.TrimSpace(line)
	line = strings.TrimSuffix(line, ",")
	line = strings.ReplaceAll(line, "\r", "")
	return line
}

// toValue coerces a decoded JSON field to a model.Value. Numbers and numeric
// strings become numeric; anything else keeps its text form.
func toValue(v any) model.Value {
	switch x := v.(type) {
	case nil:
		return model.Value{}
	case float64:
		return model.Value{Num: x, IsNum: true}
	case bool:
		if x {
			return model.Value{Num: 1, IsNum: true, Str: "true"}
		}
		return model.Value{IsNum: true, Str: "false"}
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(x), 64); err == nil {
			return model.Value{Num: f, IsNum: true, Str: x}
		}
		return model.Value{Str: x}
	default:
		return model.Value{}
	}
}

// asString renders a decoded JSON field as text. Numeric ids in the log
// (matchID, itemid) keep their integer form.
func asString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}

// asFloatPtr coerces a field to a float pointer, nil when absent or
// non-numeric.
func asFloatPtr(v any) *float64 {
	val := toValue(v)
	if !val.IsNum {
		return nil
	}
	f := val.Num
	return &f
}
