package query

import (
	"context"
	"math/big"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebeliceyang/surveylens/internal/db/connection"
	"github.com/rebeliceyang/surveylens/internal/db/dbtest"
	"github.com/rebeliceyang/surveylens/internal/models"
)

func newExecutor(t *testing.T, cacheEntries int) *Executor {
	t.Helper()
	engine := connection.NewEngine(dbtest.Config(dbtest.Seed(t), "survey"), nil)
	require.NoError(t, engine.Initialize(context.Background()))
	t.Cleanup(func() { _ = engine.Close() })
	return NewExecutor(engine, cacheEntries, 0, nil)
}

func TestExecute(t *testing.T) {
	x := newExecutor(t, 8)

	res, err := x.Execute(context.Background(),
		"SELECT question_id, COUNT(*) AS n FROM survey.responses GROUP BY question_id ORDER BY question_id")
	require.NoError(t, err)

	assert.Equal(t, []string{"question_id", "n"}, res.Columns)
	require.NotEmpty(t, res.Rows)
	assert.IsType(t, "", res.Rows[0][0])
	assert.IsType(t, int64(0), res.Rows[0][1])
	assert.False(t, res.Cached)
}

func TestExecute_Cache(t *testing.T) {
	x := newExecutor(t, 8)
	ctx := context.Background()
	sql := "SELECT COUNT(*) FROM survey.respondents"

	first, err := x.Execute(ctx, sql)
	require.NoError(t, err)
	second, err := x.Execute(ctx, sql)
	require.NoError(t, err)

	assert.False(t, first.Cached)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Rows, second.Rows)

	hits, misses := x.CacheStats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)
}

func TestExecute_Error(t *testing.T) {
	x := newExecutor(t, 0)
	_, err := x.Execute(context.Background(), "SELECT * FROM survey.nope")
	assert.Error(t, err)
}

func TestExecute_NotReady(t *testing.T) {
	engine := connection.NewEngine(dbtest.Config("unused.db", "survey"), nil)
	x := NewExecutor(engine, 0, 0, nil)

	_, err := x.Execute(context.Background(), "SELECT 1")
	assert.ErrorIs(t, err, connection.ErrNotReady)
}

func TestResultCache_Evicts(t *testing.T) {
	c := newResultCache(2)
	c.put("a", resultOf(1))
	c.put("b", resultOf(2))
	c.put("c", resultOf(3))

	_, ok := c.get("a")
	assert.False(t, ok)
	_, ok = c.get("c")
	assert.True(t, ok)
}

func TestNormalize(t *testing.T) {
	huge, _ := new(big.Int).SetString("123456789012345678901234567890", 10)

	var numInt, numFrac pgtype.Numeric
	require.NoError(t, numInt.Scan("42"))
	require.NoError(t, numFrac.Scan("2.5"))

	tests := []struct {
		name string
		in   any
		want any
	}{
		{"nil", nil, nil},
		{"small int64", int64(623), int64(623)},
		{"int32", int32(7), int64(7)},
		{"unsafe int64", int64(1<<53 + 1), "9007199254740993"},
		{"negative unsafe", int64(-(1<<53 + 1)), "-9007199254740993"},
		{"uint64 unsafe", uint64(1 << 60), "1152921504606846976"},
		{"big small", big.NewInt(12), int64(12)},
		{"big huge", huge, "123456789012345678901234567890"},
		{"numeric integer", numInt, int64(42)},
		{"numeric fraction", numFrac, 2.5},
		{"bytes", []byte("Oceania"), "Oceania"},
		{"float32", float32(0.5), 0.5},
		{"string", "x", "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestAsInt64(t *testing.T) {
	n, ok := AsInt64(int64(3))
	assert.True(t, ok)
	assert.Equal(t, int64(3), n)

	n, ok = AsInt64("9007199254740993")
	assert.True(t, ok)
	assert.Equal(t, int64(9007199254740993), n)

	_, ok = AsInt64("abc")
	assert.False(t, ok)
}

func resultOf(n int64) models.QueryResult {
	return models.QueryResult{Columns: []string{"n"}, Rows: [][]any{{n}}}
}
