package tablex

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Backends hand back different Go types for the same column: lib/pq yields
// string, int64, float64, []byte (numeric) and time.Time; JSON decoding
// yields string, float64, bool and json.Number. The accessors below accept
// all of them.

// String returns the column as a string, "" when absent or null
func (r Row) String(col string) string {
	switch v := r[col].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// StringPtr returns the column as a string, nil when absent or null
func (r Row) StringPtr(col string) *string {
	if r[col] == nil {
		return nil
	}
	s := r.String(col)
	return &s
}

// Float returns the column as a number, nil when absent, null or not numeric
func (r Row) Float(col string) *float64 {
	var f float64
	switch v := r[col].(type) {
	case nil:
		return nil
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int64:
		f = float64(v)
	case int:
		f = float64(v)
	case int32:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case []byte:
		parsed, err := strconv.ParseFloat(string(v), 64)
		if err != nil {
			return nil
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	return &f
}

// Bool returns the column as a bool; absent or null is false
func (r Row) Bool(col string) bool {
	switch v := r[col].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	case []byte:
		b, _ := strconv.ParseBool(string(v))
		return b
	case int64:
		return v != 0
	default:
		return false
	}
}

// Time returns the column as a time; absent or unparsable is the zero time
func (r Row) Time(col string) time.Time {
	switch v := r[col].(type) {
	case time.Time:
		return v
	case string:
		return parseTime(v)
	case []byte:
		return parseTime(string(v))
	default:
		return time.Time{}
	}
}

func parseTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02 15:04:05.999999-07", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// EscapeLike escapes LIKE wildcards so s matches literally
func EscapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// ValidText drops bytes that are not valid UTF-8; text columns reject them
func ValidText(s string) string {
	return strings.ToValidUTF8(s, "")
}

// Contains builds a pattern matching s anywhere in the column
func Contains(s string) string {
	return "%" + EscapeLike(ValidText(s)) + "%"
}

// MaxSearchRunes caps free-text search input
const MaxSearchRunes = 100

// searchStrip are removed from free text: they delimit PostgREST logic
// trees and quoted values
var searchStrip = strings.NewReplacer(
	",", " ", "(", " ", ")", " ", `"`, " ", "'", " ", "*", " ", `\`, " ",
)

// SearchText trims free text, removes syntax characters, collapses
// whitespace and caps the length. Wildcards are left for Contains to escape.
func SearchText(q string) string {
	q = strings.Join(strings.Fields(searchStrip.Replace(ValidText(q))), " ")
	if utf8.RuneCountInString(q) > MaxSearchRunes {
		q = strings.TrimSpace(string([]rune(q)[:MaxSearchRunes]))
	}
	return q
}
