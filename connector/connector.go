package connector

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/Konsultn-Engineering/sqlkit/dialect"
	"github.com/Konsultn-Engineering/sqlkit/query"
)

// Database is a named connection configuration plus the live pool opened
// from it. The pool is opened on first use and replaced when it is found
// closed or unreachable.
//
// Setters change the configuration used for the next connection attempt; they
// do not reconnect a live pool.
type Database struct {
	alias      string
	addressing dialect.Addressing

	mu       sync.RWMutex // guards the configuration below
	schema   string
	host     string
	port     string
	username string
	password string
	path     string
	dialect  dialect.Dialect
	props    map[string]string

	pool           PoolConfig
	retry          *RetryConfig
	connectTimeout time.Duration

	connMu sync.Mutex // serializes opening the live pool
	live   *sql.DB

	open   OpenFunc
	logger hclog.Logger
}

var _ query.Conn = (*Database)(nil)

// Conn returns the live pool, opening a new one when none exists or the
// cached one no longer answers a ping. Concurrent callers never open two
// pools for the same handle.
func (d *Database) Conn(ctx context.Context) (*sql.DB, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.connMu.Lock()
	defer d.connMu.Unlock()

	if d.live != nil {
		err := d.live.PingContext(ctx)
		if err == nil {
			return d.live, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		d.logger.Warn("discarding stale connection", "error", err)
		_ = d.live.Close()
		d.live = nil
	}

	db, err := d.connect(ctx)
	if err != nil {
		return nil, err
	}
	d.live = db
	return db, nil
}

func (d *Database) connect(ctx context.Context) (*sql.DB, error) {
	d.mu.RLock()
	dl := d.dialect
	dsn, err := d.connectionString()
	pool, retry, timeout := d.pool, d.retry, d.connectTimeout
	d.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	d.logger.Info("opening connection", "dialect", dl.Name())
	db, err := withRetry(ctx, retry, func() (*sql.DB, error) {
		db, err := d.open(dl.DriverName(), dsn)
		if err != nil {
			return nil, err
		}
		pool.apply(db)

		pingCtx := ctx
		if timeout > 0 {
			var cancel context.CancelFunc
			pingCtx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		if err := db.PingContext(pingCtx); err != nil {
			_ = db.Close()
			return nil, err
		}
		return db, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConnectionUnavailable, d.alias, err)
	}
	return db, nil
}

// connectionString must be called with mu held.
func (d *Database) connectionString() (string, error) {
	switch d.addressing {
	case dialect.File:
		return d.dialect.ConnectionString(d.props, d.path)
	case dialect.Memory:
		return d.dialect.ConnectionString(d.props, d.schema)
	default:
		return d.dialect.ConnectionString(d.props, d.host, d.port, d.schema, d.username, d.password)
	}
}

// WithConn hands fn a dedicated connection from the live pool and returns it
// to the pool afterwards, whatever fn does.
func (d *Database) WithConn(ctx context.Context, fn func(*sql.Conn) error) error {
	db, err := d.Conn(ctx)
	if err != nil {
		return err
	}
	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrConnectionUnavailable, d.alias, err)
	}
	defer conn.Close()
	return fn(conn)
}

// QueryContext runs text on the live pool.
func (d *Database) QueryContext(ctx context.Context, text string, args ...any) (*sql.Rows, error) {
	db, err := d.Conn(ctx)
	if err != nil {
		return nil, err
	}
	return db.QueryContext(ctx, text, args...)
}

// ExecContext runs text on the live pool.
func (d *Database) ExecContext(ctx context.Context, text string, args ...any) (sql.Result, error) {
	db, err := d.Conn(ctx)
	if err != nil {
		return nil, err
	}
	return db.ExecContext(ctx, text, args...)
}

// QueryFunc runs text and passes the cursor to fn. The rows are closed
// before QueryFunc returns.
func (d *Database) QueryFunc(ctx context.Context, text string, fn func(*sql.Rows) error) error {
	rows, err := d.QueryContext(ctx, text)
	if err != nil {
		return err
	}
	defer rows.Close()
	if err := fn(rows); err != nil {
		return err
	}
	return rows.Err()
}

// Close closes the live pool, if any. The handle reconnects on next use.
func (d *Database) Close() error {
	d.connMu.Lock()
	defer d.connMu.Unlock()
	if d.live == nil {
		return nil
	}
	err := d.live.Close()
	d.live = nil
	return err
}

// Stats reports pool statistics of the live pool.
func (d *Database) Stats() ConnectionStats {
	d.connMu.Lock()
	db := d.live
	d.connMu.Unlock()
	if db == nil {
		return ConnectionStats{}
	}
	return statsFrom(db.Stats())
}

// Renderer returns the dialect statements bound to this handle render with.
func (d *Database) Renderer() query.Renderer {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.dialect
}

func (d *Database) Select(columns ...string) *query.Select {
	return query.NewSelect(columns...).Bind(d)
}

func (d *Database) SelectDistinct(columns ...string) *query.Select {
	return query.NewSelect(columns...).Distinct().Bind(d)
}

func (d *Database) Insert() *query.Insert {
	return query.NewInsert().Bind(d)
}

func (d *Database) Update(table string) *query.Update {
	return query.NewUpdate(table).Bind(d)
}

func (d *Database) Delete() *query.Delete {
	return query.NewDelete().Bind(d)
}

func (d *Database) Alias() string { return d.alias }

func (d *Database) Addressing() dialect.Addressing { return d.addressing }

func (d *Database) Dialect() dialect.Dialect {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.dialect
}

// SetDialect changes the dialect. Its addressing must match the handle's.
func (d *Database) SetDialect(dl dialect.Dialect) error {
	if dl == nil {
		return fmt.Errorf("%w: dialect", ErrRequiredConfigMissing)
	}
	if dl.Addressing() != d.addressing {
		return fmt.Errorf("%w: %s is addressed by %s", ErrWrongAddressing, dl.Name(), dl.Addressing())
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dialect = dl
	return nil
}

func (d *Database) Schema() string   { return d.get(&d.schema) }
func (d *Database) Host() string     { return d.get(&d.host) }
func (d *Database) Port() string     { return d.get(&d.port) }
func (d *Database) Username() string { return d.get(&d.username) }
func (d *Database) Path() string     { return d.get(&d.path) }

func (d *Database) SetSchema(v string)   { d.set(&d.schema, v) }
func (d *Database) SetHost(v string)     { d.set(&d.host, v) }
func (d *Database) SetPort(v string)     { d.set(&d.port, v) }
func (d *Database) SetUsername(v string) { d.set(&d.username, v) }
func (d *Database) SetPassword(v string) { d.set(&d.password, v) }

// SetPath points a file-backed handle at a new file and re-derives the schema.
func (d *Database) SetPath(v string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.path = v
	d.schema = SchemaFromPath(v)
}

// SetProperty sets a driver option merged into the connection string.
func (d *Database) SetProperty(name, value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.props[name] = value
}

func (d *Database) Property(name string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	v, ok := d.props[name]
	return v, ok
}

// Properties returns a copy of the driver options.
func (d *Database) Properties() map[string]string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make(map[string]string, len(d.props))
	for k, v := range d.props {
		out[k] = v
	}
	return out
}

func (d *Database) configure(cfg Config) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if cfg.Pool != (PoolConfig{}) {
		d.pool = cfg.Pool
	}
	if cfg.Retry != nil {
		rc := *cfg.Retry
		d.retry = &rc
	}
	if cfg.ConnectTimeout > 0 {
		d.connectTimeout = cfg.ConnectTimeout
	}
	if d.addressing != dialect.Network {
		for k, v := range cfg.Params {
			d.props[k] = v
		}
	}
}

func (d *Database) get(field *string) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return *field
}

func (d *Database) set(field *string, v string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	*field = v
}
