package models

import "time"

// ErrorKind classifies why a fetch produced no data
type ErrorKind int

const (
	KindNone ErrorKind = iota
	// KindValidation: unsafe compiled SQL or malformed identifier
	KindValidation
	// KindEngine: query execution or asset transport failure
	KindEngine
	// KindInit: engine never became ready
	KindInit
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindValidation:
		return "validation"
	case KindEngine:
		return "engine"
	case KindInit:
		return "init"
	default:
		return "unknown"
	}
}

// Result is the envelope every data fetch returns. Data holds the zero/empty
// value whenever Err is set.
type Result[T any] struct {
	Data T
	Err  error
	Kind ErrorKind
	// Degraded is set when the query ran with filters dropped by the validator
	Degraded bool
}

// OK wraps data in a successful result
func OK[T any](data T) Result[T] {
	return Result[T]{Data: data}
}

// Fail wraps an error with an empty payload
func Fail[T any](kind ErrorKind, err error, empty T) Result[T] {
	return Result[T]{Data: empty, Err: err, Kind: kind}
}

// Failed reports whether the fetch errored
func (r Result[T]) Failed() bool {
	return r.Err != nil
}

// QueryResult represents raw rows returned by the engine
type QueryResult struct {
	Columns  []string
	Rows     [][]any
	Duration time.Duration
	Cached   bool
}

// BreakdownItem is one bar, cell or theme of a chart
type BreakdownItem struct {
	Label string `json:"label"`
	// Row is set for matrix breakdowns (sub-question label)
	Row   string  `json:"row,omitempty"`
	Count int64   `json:"count"`
	Share float64 `json:"share"`
}

// Breakdown is a single-question aggregate for one chart
type Breakdown struct {
	ChartID    string          `json:"chartId"`
	QuestionID string          `json:"questionId"`
	Kind       string          `json:"kind"`
	Total      int64           `json:"total"`
	Items      []BreakdownItem `json:"items"`
}

// DashboardRow is one aggregate row for the dashboard header strip
type DashboardRow struct {
	QuestionID string `json:"questionId"`
	Section    string `json:"section"`
	Answered   int64  `json:"answered"`
}
