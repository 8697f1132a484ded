package connector

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"

	"github.com/Konsultn-Engineering/sqlkit/dialect"
)

var (
	ErrRequiredConfigMissing = errors.New("connector: required configuration missing")
	ErrConnectionUnavailable = errors.New("connector: connection unavailable")
	ErrAliasInUse            = errors.New("connector: alias registered with a different addressing")
	ErrWrongAddressing       = errors.New("connector: dialect does not support this addressing")
)

// OpenFunc opens a database/sql pool. sql.Open is the default.
type OpenFunc func(driverName, dsn string) (*sql.DB, error)

// Registry caches one Database handle per alias. Create it once at startup
// and pass it to whatever needs handles.
type Registry struct {
	mu      sync.Mutex
	handles map[string]*Database

	logger         hclog.Logger
	open           OpenFunc
	pool           PoolConfig
	retry          *RetryConfig
	connectTimeout time.Duration
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger handed to every handle.
func WithLogger(l hclog.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithOpener replaces sql.Open.
func WithOpener(fn OpenFunc) Option {
	return func(r *Registry) {
		if fn != nil {
			r.open = fn
		}
	}
}

// WithPool sets the default pool settings of new handles.
func WithPool(p PoolConfig) Option {
	return func(r *Registry) { r.pool = p }
}

// WithRetry makes new handles retry failed connection attempts.
func WithRetry(rc RetryConfig) Option {
	return func(r *Registry) { r.retry = &rc }
}

// WithConnectTimeout bounds each connection attempt.
func WithConnectTimeout(d time.Duration) Option {
	return func(r *Registry) { r.connectTimeout = d }
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		handles: make(map[string]*Database),
		logger:  hclog.NewNullLogger(),
		open:    sql.Open,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Connect returns the handle registered under alias, creating it from the
// given settings the first time. Later calls with the same alias return the
// cached handle unchanged. password may be empty.
func (r *Registry) Connect(alias, schema string, d dialect.Dialect, host, port, user, password string, props map[string]string) (*Database, error) {
	if err := required(
		"alias", alias,
		"schema", schema,
		"host", host,
		"port", port,
		"username", user,
	); err != nil {
		return nil, err
	}
	if d == nil {
		return nil, fmt.Errorf("%w: dialect", ErrRequiredConfigMissing)
	}
	if d.Addressing() != dialect.Network {
		return nil, fmt.Errorf("%w: %s is addressed by %s", ErrWrongAddressing, d.Name(), d.Addressing())
	}

	return r.fetchOrCreate(alias, dialect.Network, func() *Database {
		h := r.newHandle(alias, d)
		h.schema = schema
		h.host = host
		h.port = port
		h.username = user
		h.password = password
		for k, v := range props {
			h.props[k] = v
		}
		return h
	}, nil)
}

// ConnectFile registers a file-backed database. The schema is the file name
// without its extension. Calling it again for an alias updates the path.
func (r *Registry) ConnectFile(alias, path string, d dialect.Dialect) (*Database, error) {
	if err := required("alias", alias, "path", path); err != nil {
		return nil, err
	}
	if d == nil {
		return nil, fmt.Errorf("%w: dialect", ErrRequiredConfigMissing)
	}
	if d.Addressing() != dialect.File {
		return nil, fmt.Errorf("%w: %s is addressed by %s", ErrWrongAddressing, d.Name(), d.Addressing())
	}

	return r.fetchOrCreate(alias, dialect.File, func() *Database {
		h := r.newHandle(alias, d)
		h.path = path
		h.schema = SchemaFromPath(path)
		return h
	}, func(h *Database) {
		h.SetPath(path)
	})
}

// ConnectMemory registers an in-process database named schema.
func (r *Registry) ConnectMemory(alias, schema string, d dialect.Dialect) (*Database, error) {
	if err := required("alias", alias, "schema", schema); err != nil {
		return nil, err
	}
	if d == nil {
		return nil, fmt.Errorf("%w: dialect", ErrRequiredConfigMissing)
	}
	if d.Addressing() != dialect.Memory {
		return nil, fmt.Errorf("%w: %s is addressed by %s", ErrWrongAddressing, d.Name(), d.Addressing())
	}

	return r.fetchOrCreate(alias, dialect.Memory, func() *Database {
		h := r.newHandle(alias, d)
		h.schema = schema
		return h
	}, nil)
}

// ConnectConfig registers cfg using the connect operation that matches its
// dialect's addressing, then applies the pool, retry and timeout settings.
func (r *Registry) ConnectConfig(cfg Config) (*Database, error) {
	if cfg.Dialect == "" {
		return nil, fmt.Errorf("%w: dialect", ErrRequiredConfigMissing)
	}
	d, err := dialect.Lookup(cfg.Dialect)
	if err != nil {
		return nil, err
	}

	var h *Database
	switch d.Addressing() {
	case dialect.File:
		h, err = r.ConnectFile(cfg.Alias, cfg.Path, d)
	case dialect.Memory:
		h, err = r.ConnectMemory(cfg.Alias, cfg.Schema, d)
	default:
		h, err = r.Connect(cfg.Alias, cfg.Schema, d, cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.Params)
	}
	if err != nil {
		return nil, err
	}
	h.configure(cfg)
	return h, nil
}

// Get returns the handle registered under alias. It never creates one.
func (r *Registry) Get(alias string) (*Database, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.handles[alias]
	return h, ok
}

// Aliases returns the registered aliases in sorted order.
func (r *Registry) Aliases() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.handles))
	for a := range r.handles {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// Close closes every live connection. Handles stay registered and reconnect
// on next use. Every failure is reported.
func (r *Registry) Close() error {
	var result *multierror.Error
	for _, alias := range r.Aliases() {
		h, ok := r.Get(alias)
		if !ok {
			continue
		}
		if err := h.Close(); err != nil {
			r.logger.Error("closing connection failed", "alias", alias, "error", err)
			result = multierror.Append(result, fmt.Errorf("%s: %w", alias, err))
		}
	}
	return result.ErrorOrNil()
}

func (r *Registry) fetchOrCreate(alias string, addressing dialect.Addressing, create func() *Database, update func(*Database)) (*Database, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if h, ok := r.handles[alias]; ok {
		if h.addressing != addressing {
			return nil, fmt.Errorf("%w: %q is a %s handle", ErrAliasInUse, alias, h.addressing)
		}
		if update != nil {
			update(h)
		}
		r.logger.Debug("reusing handle", "alias", alias)
		return h, nil
	}

	h := create()
	r.handles[alias] = h
	r.logger.Debug("registered handle", "alias", alias, "dialect", h.dialect.Name(), "addressing", addressing.String())
	return h, nil
}

func (r *Registry) newHandle(alias string, d dialect.Dialect) *Database {
	h := &Database{
		alias:          alias,
		addressing:     d.Addressing(),
		dialect:        d,
		props:          make(map[string]string),
		open:           r.open,
		logger:         r.logger.Named(alias),
		pool:           r.pool,
		connectTimeout: r.connectTimeout,
	}
	if r.retry != nil {
		rc := *r.retry
		h.retry = &rc
	}
	return h
}

// SchemaFromPath derives a schema name from a database file path: the last
// path segment with its final extension removed. "data/sqlite.db" yields
// "sqlite". A name whose only dot is the leading one is kept whole.
func SchemaFromPath(path string) string {
	name := filepath.ToSlash(path)
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndex(name, "."); i > 0 {
		name = name[:i]
	}
	return name
}

// required takes name/value pairs and reports every empty value.
func required(pairs ...string) error {
	var missing []string
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			missing = append(missing, pairs[i])
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrRequiredConfigMissing, strings.Join(missing, ", "))
	}
	return nil
}
