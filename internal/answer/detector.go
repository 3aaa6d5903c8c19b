// Package answer decodes the storage formats of survey answers. Single-select
// answers are stored as a one-element JSON array (`["X"]`), multi-select
// answers as a JSON array that the engine unnests into quoted elements
// (`"X"`), and geography answers as bare numeric codes.
package answer

import (
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// Stored answers keep '&', '<' and '>' literal.
var json = jsoniter.Config{
	EscapeHTML:             false,
	ValidateJsonRawMessage: true,
}.Froze()

// Format identifies how a raw value is wrapped
type Format int

const (
	Bare Format = iota
	// Array is a JSON array of strings, one or more elements
	Array
	// Quoted is a single JSON string literal
	Quoted
)

func (f Format) String() string {
	switch f {
	case Array:
		return "array"
	case Quoted:
		return "quoted"
	default:
		return "bare"
	}
}

// Detect returns the storage format of a raw value
func Detect(raw string) Format {
	v := strings.TrimSpace(raw)
	if len(v) < 2 {
		return Bare
	}
	switch {
	case v[0] == '[' && v[len(v)-1] == ']':
		var arr []string
		if err := json.Unmarshal([]byte(v), &arr); err == nil {
			return Array
		}
	case v[0] == '"' && v[len(v)-1] == '"':
		var s string
		if err := json.Unmarshal([]byte(v), &s); err == nil {
			return Quoted
		}
	}
	return Bare
}

// Unwrap strips a `["X"]` or `"X"` wrapper and returns the bare text.
// Multi-element arrays and bare values are returned trimmed but otherwise
// unchanged.
func Unwrap(raw string) string {
	v := strings.TrimSpace(raw)
	switch Detect(v) {
	case Array:
		var arr []string
		_ = json.Unmarshal([]byte(v), &arr)
		if len(arr) == 1 {
			return arr[0]
		}
		return v
	case Quoted:
		var s string
		_ = json.Unmarshal([]byte(v), &s)
		return s
	default:
		return v
	}
}

// Elements decodes a multi-select answer into its options. A value that is
// not a JSON array yields a single element holding its unwrapped text.
func Elements(raw string) []string {
	v := strings.TrimSpace(raw)
	if v == "" {
		return nil
	}
	if Detect(v) == Array {
		var arr []string
		_ = json.Unmarshal([]byte(v), &arr)
		out := arr[:0]
		for _, e := range arr {
			if strings.TrimSpace(e) != "" {
				out = append(out, e)
			}
		}
		return out
	}
	return []string{Unwrap(v)}
}

// WrapSingle renders bare text the way single-select answers are stored
func WrapSingle(text string) string {
	b, err := json.Marshal([]string{text})
	if err != nil {
		return text
	}
	return string(b)
}

// WrapElement renders bare text the way an unnested multi-select element looks
func WrapElement(text string) string {
	b, err := json.Marshal(text)
	if err != nil {
		return text
	}
	return string(b)
}
