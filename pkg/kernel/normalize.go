package kernel

import (
	"slices"
	"strconv"
	"strings"
)

// Trim trims surrounding whitespace
func Trim(s string) string {
	return strings.TrimSpace(s)
}

// TrimOrNil trims s and returns nil when nothing is left
func TrimOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

// NumberOrNull parses a form value; blank or unparsable input is nil
func NumberOrNull(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

// UniqueSorted drops blanks and duplicates after trimming and sorts the rest
func UniqueSorted(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}
