package kernel

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

var jsonNull = []byte("null")

// Optional distinguishes an absent field from an explicit null in a JSON
// body: Set is true whenever the key was present.
type Optional[T any] struct {
	Value *T
	Set   bool
}

// Some returns a present, non-null Optional
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: &v, Set: true}
}

// Null returns a present, null Optional
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(b), jsonNull) {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// FormNumber accepts a JSON number or a numeric string. Blank strings,
// unparsable strings and null decode to a nil Value.
type FormNumber struct {
	Value *float64
}

// Num returns a FormNumber holding f
func Num(f float64) FormNumber {
	return FormNumber{Value: &f}
}

func (n *FormNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, jsonNull):
		n.Value = nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		n.Value = NumberOrNull(s)
	default:
		f, err := strconv.ParseFloat(string(b), 64)
		if err != nil {
			return err
		}
		n.Value = &f
	}
	return nil
}

// FormBool accepts true/false, "true"/"false", "on", "1"/"0" and 1/0.
// Anything else, including null, decodes to false.
type FormBool bool

func (f *FormBool) UnmarshalJSON(b []byte) error {
	s := strings.ToLower(strings.Trim(string(bytes.TrimSpace(b)), `"`))
	switch s {
	case "true", "on", "1", "yes":
		*f = true
	default:
		*f = false
	}
	return nil
}
