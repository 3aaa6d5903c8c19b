package query

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rebeliceyang/surveylens/internal/db/connection"
	"github.com/rebeliceyang/surveylens/internal/models"
)

// Executor runs prepared SQL on the engine and narrows the values it returns
type Executor struct {
	engine  *connection.Engine
	cache   *resultCache
	timeout time.Duration
	logger  *zap.Logger
}

// NewExecutor creates an executor. cacheEntries <= 0 disables the result
// cache; timeout <= 0 leaves deadlines to the caller.
func NewExecutor(engine *connection.Engine, cacheEntries int, timeout time.Duration, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		engine:  engine,
		cache:   newResultCache(cacheEntries),
		timeout: timeout,
		logger:  logger,
	}
}

// Execute executes a SQL query and returns the results
func (x *Executor) Execute(ctx context.Context, sql string) (models.QueryResult, error) {
	start := time.Now()

	if res, ok := x.cache.get(sql); ok {
		res.Cached = true
		res.Duration = time.Since(start)
		return res, nil
	}

	db, err := x.engine.DB()
	if err != nil {
		return models.QueryResult{}, err
	}

	if x.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, x.timeout)
		defer cancel()
	}

	rows, err := db.QueryContext(ctx, sql)
	if err != nil {
		x.logger.Warn("query failed", zap.Error(err), zap.Duration("took", time.Since(start)))
		return models.QueryResult{}, fmt.Errorf("execute query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return models.QueryResult{}, fmt.Errorf("read columns: %w", err)
	}

	var result [][]any
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return models.QueryResult{}, fmt.Errorf("scan row: %w", err)
		}
		for i, v := range values {
			values[i] = Normalize(v)
		}
		result = append(result, values)
	}

	// Check for errors from iteration
	if err := rows.Err(); err != nil {
		return models.QueryResult{}, fmt.Errorf("iterate rows: %w", err)
	}

	res := models.QueryResult{
		Columns:  columns,
		Rows:     result,
		Duration: time.Since(start),
	}
	x.cache.put(sql, res)

	x.logger.Debug("query executed",
		zap.Int("rows", len(result)),
		zap.Duration("took", res.Duration))
	return res, nil
}

// CacheStats returns result cache hits and misses
func (x *Executor) CacheStats() (hits, misses uint64) {
	return x.cache.stats()
}

// Engine returns the engine queries run on
func (x *Executor) Engine() *connection.Engine {
	return x.engine
}
