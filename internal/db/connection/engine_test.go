package connection

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebeliceyang/surveylens/internal/db/dbtest"
	"github.com/rebeliceyang/surveylens/internal/models"
)

func TestEngine_AttachUnderSchema(t *testing.T) {
	path := dbtest.Seed(t)
	e := NewEngine(dbtest.Config(path, "survey"), nil)
	t.Cleanup(func() { _ = e.Close() })

	_, err := e.DB()
	assert.ErrorIs(t, err, ErrNotReady)
	assert.Equal(t, models.Uninitialized, e.State())

	require.NoError(t, e.Initialize(context.Background()))
	assert.Equal(t, models.Ready, e.State())
	assert.True(t, e.NeedsSchemaPrefix())

	db, err := e.DB()
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM survey.respondents").Scan(&n))
	assert.Equal(t, dbtest.Respondents, n)

	status := e.Status()
	assert.Equal(t, models.Ready, status.State)
	assert.False(t, status.ReadyAt.IsZero())
}

func TestEngine_Unqualified(t *testing.T) {
	path := dbtest.Seed(t)
	e := NewEngine(dbtest.Config(path, ""), nil)
	t.Cleanup(func() { _ = e.Close() })

	require.NoError(t, e.Initialize(context.Background()))
	assert.False(t, e.NeedsSchemaPrefix())

	db, err := e.DB()
	require.NoError(t, err)
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM respondents").Scan(&n))
	assert.Equal(t, dbtest.Respondents, n)
}

func TestEngine_FailureIsPermanent(t *testing.T) {
	var calls atomic.Int32
	boom := errors.New("dataset missing")
	e := NewEngine(models.EngineConfig{Driver: DriverDuckDB}, nil,
		WithOpener(func(context.Context, models.EngineConfig) (*Pool, error) {
			calls.Add(1)
			return nil, boom
		}))

	err := e.Initialize(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInitFailed)
	assert.ErrorIs(t, err, boom)

	err = e.Initialize(context.Background())
	assert.ErrorIs(t, err, ErrInitFailed)
	assert.Equal(t, int32(1), calls.Load(), "no retry after failure")
	assert.Equal(t, models.Failed, e.State())

	_, err = e.DB()
	assert.ErrorIs(t, err, ErrInitFailed)

	require.NoError(t, e.Close())
	assert.Equal(t, models.Failed, e.State())
}

func TestEngine_ConcurrentInitializeSharesAttempt(t *testing.T) {
	path := dbtest.Seed(t)
	var calls atomic.Int32
	e := NewEngine(dbtest.Config(path, "survey"), nil,
		WithOpener(func(ctx context.Context, cfg models.EngineConfig) (*Pool, error) {
			calls.Add(1)
			time.Sleep(20 * time.Millisecond)
			return NewPool(ctx, cfg)
		}))
	t.Cleanup(func() { _ = e.Close() })

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, e.Initialize(context.Background()))
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, models.Ready, e.State())
}

func TestNewPool_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := NewPool(ctx, models.EngineConfig{Driver: "oracle"})
	assert.ErrorIs(t, err, ErrUnknownDriver)

	_, err = NewPool(ctx, models.EngineConfig{Driver: DriverSQLite, DatasetPath: "x.db", Schema: "bad schema"})
	assert.Error(t, err)

	_, err = NewPool(ctx, models.EngineConfig{Driver: DriverSQLite})
	assert.Error(t, err)
}
