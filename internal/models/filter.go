package models

import (
	"slices"

	"github.com/rebeliceyang/surveylens/internal/answer"
)

// Option is a single legal value of a filter category
type Option struct {
	Value string `yaml:"value"`
	Label string `yaml:"label"`
}

// FilterCategory is one entry of the filter registry
type FilterCategory struct {
	Key         string
	QuestionID  string
	Name        string
	MultiSelect bool
	Options     []Option
	// Special categories do not query their own question directly
	// (continent expands to country codes of the geography question).
	Special bool
}

// FilterState maps every known category key to its selected raw values.
// An empty slice means the category is inactive. Values are compared by
// their unwrapped text, so `["X"]`, `"X"` and `X` name the same option.
type FilterState map[string][]string

// NewFilterState creates a state with every key present and empty
func NewFilterState(keys []string) FilterState {
	fs := make(FilterState, len(keys))
	for _, k := range keys {
		fs[k] = []string{}
	}
	return fs
}

// Has reports whether key is a known category of this state
func (fs FilterState) Has(key string) bool {
	_, ok := fs[key]
	return ok
}

// Set replaces the values of a known category. Unknown keys are ignored.
func (fs FilterState) Set(key string, values []string) bool {
	if !fs.Has(key) {
		return false
	}
	fs[key] = slices.Clone(values)
	if fs[key] == nil {
		fs[key] = []string{}
	}
	return true
}

// Toggle adds value to key if absent, removes it otherwise.
// Returns false for unknown keys.
func (fs FilterState) Toggle(key, value string) bool {
	vals, ok := fs[key]
	if !ok {
		return false
	}
	if i := indexOf(vals, value); i >= 0 {
		fs[key] = slices.Delete(slices.Clone(vals), i, i+1)
		return true
	}
	fs[key] = append(slices.Clone(vals), value)
	return true
}

// Contains reports whether key holds value in any storage form
func (fs FilterState) Contains(key, value string) bool {
	return indexOf(fs[key], value) >= 0
}

// SameValue reports whether two raw values name the same option
func SameValue(a, b string) bool {
	return a == b || answer.Unwrap(a) == answer.Unwrap(b)
}

func indexOf(vals []string, value string) int {
	return slices.IndexFunc(vals, func(v string) bool { return SameValue(v, value) })
}

// Active returns the number of categories with at least one value
func (fs FilterState) Active() int {
	n := 0
	for _, vals := range fs {
		if len(vals) > 0 {
			n++
		}
	}
	return n
}

// IsEmpty returns true if no category has a selected value
func (fs FilterState) IsEmpty() bool {
	return fs.Active() == 0
}

// Clone returns a deep copy
func (fs FilterState) Clone() FilterState {
	out := make(FilterState, len(fs))
	for k, v := range fs {
		out[k] = slices.Clone(v)
		if out[k] == nil {
			out[k] = []string{}
		}
	}
	return out
}

// Equal compares two states value by value, order-sensitive
func (fs FilterState) Equal(other FilterState) bool {
	if len(fs) != len(other) {
		return false
	}
	for k, v := range fs {
		ov, ok := other[k]
		if !ok || !slices.EqualFunc(v, ov, SameValue) {
			return false
		}
	}
	return true
}

// Column identifies a side in comparison mode
type Column int

const (
	ColumnA Column = iota
	ColumnB
)

func (c Column) String() string {
	if c == ColumnB {
		return "B"
	}
	return "A"
}

// Prefix returns the URL parameter prefix for the column
func (c Column) Prefix() string {
	if c == ColumnB {
		return "b_"
	}
	return "a_"
}

// ComparisonState holds two independent filter states
type ComparisonState struct {
	A      FilterState
	B      FilterState
	Active Column
	// BMounted is set on first entry into comparison mode and never cleared
	BMounted bool
}

// Column returns the state for the given side
func (cs *ComparisonState) Column(c Column) FilterState {
	if c == ColumnB {
		return cs.B
	}
	return cs.A
}

// Clone returns a deep copy
func (cs ComparisonState) Clone() ComparisonState {
	return ComparisonState{
		A:        cs.A.Clone(),
		B:        cs.B.Clone(),
		Active:   cs.Active,
		BMounted: cs.BMounted,
	}
}
