package connection

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/rebeliceyang/surveylens/internal/models"
)

var (
	// ErrNotReady is returned when the engine is used before Initialize
	ErrNotReady = errors.New("engine not ready")
	// ErrInitFailed wraps the cause of a failed initialization. The failure
	// is permanent for the life of the Engine.
	ErrInitFailed = errors.New("engine initialization failed")
	// ErrUnknownDriver is returned for an unsupported driver name
	ErrUnknownDriver = errors.New("unknown engine driver")
)

// OpenFunc opens a pool for a config
type OpenFunc func(ctx context.Context, config models.EngineConfig) (*Pool, error)

// Option configures an Engine
type Option func(*Engine)

// WithOpener replaces NewPool, mostly for tests
func WithOpener(open OpenFunc) Option {
	return func(e *Engine) { e.open = open }
}

// Engine owns the analytical database handle and its lifecycle
type Engine struct {
	config models.EngineConfig
	logger *zap.Logger
	open   OpenFunc
	group  singleflight.Group

	mu       sync.RWMutex
	pool     *Pool
	state    models.EngineState
	readyAt  time.Time
	initTime time.Duration
	err      error
}

// NewEngine creates an uninitialized engine
func NewEngine(config models.EngineConfig, logger *zap.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		config: config,
		logger: logger,
		open:   NewPool,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Initialize opens the engine and attaches the dataset. Concurrent callers
// share one attempt. Once it fails every later call returns the same error.
func (e *Engine) Initialize(ctx context.Context) error {
	e.mu.RLock()
	state, err := e.state, e.err
	e.mu.RUnlock()

	switch state {
	case models.Ready:
		return nil
	case models.Failed:
		return err
	}

	_, err, shared := e.group.Do("init", func() (interface{}, error) {
		return nil, e.initialize(ctx)
	})
	if shared {
		e.logger.Debug("joined in-flight engine initialization")
	}
	return err
}

func (e *Engine) initialize(ctx context.Context) error {
	e.mu.Lock()
	switch e.state {
	case models.Ready:
		e.mu.Unlock()
		return nil
	case models.Failed:
		err := e.err
		e.mu.Unlock()
		return err
	}
	e.state = models.Initializing
	e.mu.Unlock()

	start := time.Now()
	pool, err := e.open(ctx, e.config)

	e.mu.Lock()
	defer e.mu.Unlock()

	if err != nil {
		e.state = models.Failed
		e.err = fmt.Errorf("%w: %w", ErrInitFailed, err)
		e.logger.Error("engine initialization failed",
			zap.String("driver", e.config.Driver),
			zap.String("dataset", e.config.DatasetPath),
			zap.Error(err))
		return e.err
	}

	e.pool = pool
	e.state = models.Ready
	e.readyAt = time.Now()
	e.initTime = time.Since(start)
	e.logger.Info("engine ready",
		zap.String("driver", e.config.Driver),
		zap.String("dataset", e.config.DatasetPath),
		zap.Duration("took", e.initTime))
	return nil
}

// DB returns the handle of a ready engine
func (e *Engine) DB() (*sql.DB, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	switch e.state {
	case models.Ready:
		return e.pool.DB(), nil
	case models.Failed:
		return nil, e.err
	default:
		return nil, ErrNotReady
	}
}

// Ping tests a ready engine
func (e *Engine) Ping(ctx context.Context) error {
	db, err := e.DB()
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}

// State returns the lifecycle state
func (e *Engine) State() models.EngineState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// Status returns a snapshot for display
func (e *Engine) Status() models.EngineStatus {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return models.EngineStatus{
		State:    e.state,
		Driver:   e.config.Driver,
		Dataset:  e.config.DatasetPath,
		ReadyAt:  e.readyAt,
		InitTime: e.initTime,
		Err:      e.err,
	}
}

// Config returns the engine configuration
func (e *Engine) Config() models.EngineConfig {
	return e.config
}

// NeedsSchemaPrefix reports whether queries must qualify dataset tables
func (e *Engine) NeedsSchemaPrefix() bool {
	return e.config.NeedsSchemaPrefix()
}

// Close releases the handle. A failed engine stays failed.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.pool != nil {
		e.pool.Close()
		e.pool = nil
	}
	if e.state != models.Failed {
		e.state = models.Uninitialized
	}
	return nil
}
