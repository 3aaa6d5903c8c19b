package query

import (
	"fmt"
	"math"
	"math/big"
	"strconv"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/marcboeker/go-duckdb"
)

// maxSafeInt is the largest integer a float64 holds exactly (2^53)
const maxSafeInt = 1 << 53

// Normalize narrows driver values to int64, float64, string, bool or
// time. Integers beyond ±2^53 become decimal strings so they survive JSON
// consumers unchanged.
func Normalize(v any) any {
	switch n := v.(type) {
	case nil:
		return nil
	case int64:
		return narrowInt(n)
	case int:
		return narrowInt(int64(n))
	case int32:
		return int64(n)
	case int16:
		return int64(n)
	case int8:
		return int64(n)
	case uint64:
		if n > maxSafeInt {
			return strconv.FormatUint(n, 10)
		}
		return int64(n)
	case uint32:
		return int64(n)
	case uint16:
		return int64(n)
	case uint8:
		return int64(n)
	case float32:
		return float64(n)
	case *big.Int:
		return narrowBig(n)
	case duckdb.Decimal:
		return n.Float64()
	case pgtype.Numeric:
		return narrowNumeric(n)
	case []byte:
		return string(n)
	default:
		return v
	}
}

func narrowInt(n int64) any {
	if n > maxSafeInt || n < -maxSafeInt {
		return strconv.FormatInt(n, 10)
	}
	return n
}

func narrowBig(n *big.Int) any {
	if n == nil {
		return nil
	}
	if n.IsInt64() {
		return narrowInt(n.Int64())
	}
	return n.String()
}

func narrowNumeric(n pgtype.Numeric) any {
	if !n.Valid || n.NaN {
		return nil
	}
	if n.Exp >= 0 {
		i, err := n.Int64Value()
		if err == nil && i.Valid {
			return narrowInt(i.Int64)
		}
	}
	f, err := n.Float64Value()
	if err != nil || !f.Valid || math.IsInf(f.Float64, 0) {
		return fmt.Sprintf("%v", n.Int)
	}
	return f.Float64
}

// AsInt64 reads a narrowed count value. Strings from oversized integers
// are parsed back when they fit.
func AsInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case float64:
		return int64(n), true
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		return i, err == nil
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// AsString reads a narrowed text value
func AsString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprintf("%v", s)
	}
}
