package connection

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "github.com/marcboeker/go-duckdb"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"github.com/rebeliceyang/surveylens/internal/models"
)

// Driver names accepted in EngineConfig.Driver
const (
	DriverDuckDB  = "duckdb"
	DriverSQLite3 = "sqlite3" // mattn/go-sqlite3, cgo
	DriverSQLite  = "sqlite"  // modernc.org/sqlite, pure Go
	DriverPgx     = "pgx"
)

var schemaPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Pool wraps the engine's database handle with our configuration
type Pool struct {
	db     *sql.DB
	pgpool *pgxpool.Pool
	config models.EngineConfig
}

// NewPool opens the configured driver and attaches the dataset read-only
func NewPool(ctx context.Context, config models.EngineConfig) (*Pool, error) {
	if config.Schema != "" && !schemaPattern.MatchString(config.Schema) {
		return nil, fmt.Errorf("invalid schema name %q", config.Schema)
	}

	var (
		p   *Pool
		err error
	)
	switch config.Driver {
	case DriverDuckDB, "":
		p, err = openDuckDB(ctx, config)
	case DriverSQLite3, DriverSQLite:
		p, err = openSQLite(ctx, config)
	case DriverPgx:
		p, err = openPgx(ctx, config)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, config.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to ping engine: %w", err)
	}
	return p, nil
}

func openDuckDB(ctx context.Context, config models.EngineConfig) (*Pool, error) {
	db, err := sql.Open(DriverDuckDB, "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	// ATTACH and SET are per connection
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, fmt.Sprintf("SET threads = %d", runtime.GOMAXPROCS(0))); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set threads: %w", err)
	}

	if config.DatasetPath != "" {
		if config.Schema == "" {
			_ = db.Close()
			return nil, fmt.Errorf("duckdb needs a schema to attach %s under", config.DatasetPath)
		}
		attach := fmt.Sprintf("ATTACH '%s' AS %s (READ_ONLY)", escapePath(config.DatasetPath), config.Schema)
		if _, err := db.ExecContext(ctx, attach); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("attach dataset: %w", err)
		}
	}

	return &Pool{db: db, config: config}, nil
}

func openSQLite(ctx context.Context, config models.EngineConfig) (*Pool, error) {
	if config.DatasetPath == "" {
		return nil, fmt.Errorf("%s driver needs a dataset path", config.Driver)
	}

	// Unqualified tables: open the file itself read-only
	if config.Schema == "" {
		db, err := sql.Open(config.Driver, "file:"+config.DatasetPath+"?mode=ro")
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", config.Driver, err)
		}
		return &Pool{db: db, config: config}, nil
	}

	db, err := sql.Open(config.Driver, ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", config.Driver, err)
	}
	// each connection to :memory: is a separate database
	db.SetMaxOpenConns(1)

	attach := fmt.Sprintf("ATTACH DATABASE '%s' AS %s", escapePath(config.DatasetPath), config.Schema)
	if _, err := db.ExecContext(ctx, attach); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("attach dataset: %w", err)
	}
	return &Pool{db: db, config: config}, nil
}

func openPgx(ctx context.Context, config models.EngineConfig) (*Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(config.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w", err)
	}

	poolConfig.MaxConns = 5
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pgpool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	return &Pool{
		db:     stdlib.OpenDBFromPool(pgpool),
		pgpool: pgpool,
		config: config,
	}, nil
}

// Close closes the database handle
func (p *Pool) Close() {
	if p.db != nil {
		_ = p.db.Close()
	}
	if p.pgpool != nil {
		p.pgpool.Close()
	}
}

// Ping tests the connection
func (p *Pool) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// DB returns the underlying handle
func (p *Pool) DB() *sql.DB {
	return p.db
}

// escapePath doubles single quotes for use in ATTACH
func escapePath(path string) string {
	return strings.ReplaceAll(path, "'", "''")
}
