// Package dialect renders statements for a specific database product and
// knows how to reach that product through database/sql.
package dialect

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/Konsultn-Engineering/sqlkit/query"
)

var (
	ErrUnknownDialect        = errors.New("dialect: unknown dialect")
	ErrInvalidConnectionArgs = errors.New("dialect: invalid connection arguments")
)

// Dialect describes one database product. Implementations are immutable and
// safe to share between connections.
type Dialect interface {
	query.Renderer

	// Name is the identifier used in configuration, e.g. "postgres".
	Name() string
	// DriverName is the database/sql driver the connection is opened with.
	DriverName() string
	// Addressing tells how the connection arguments locate the database.
	Addressing() Addressing
	// ConnectionString builds the driver DSN. The meaning and order of args
	// is documented on each implementation; props are merged as driver options.
	ConnectionString(props map[string]string, args ...string) (string, error)
}

// Addressing is the way a dialect's connection arguments locate a database.
type Addressing int

const (
	// Network dialects take host, port, schema, user and password.
	Network Addressing = iota
	// File dialects take a filesystem path.
	File
	// Memory dialects take the name of an in-process database.
	Memory
)

func (a Addressing) String() string {
	switch a {
	case Network:
		return "network"
	case File:
		return "file"
	case Memory:
		return "memory"
	}
	return "unknown"
}

var registry = struct {
	mu       sync.RWMutex
	dialects map[string]Dialect
}{dialects: make(map[string]Dialect)}

// Register makes d available to Lookup under its name. Registering the same
// name twice replaces the earlier dialect.
func Register(d Dialect) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.dialects[strings.ToLower(d.Name())] = d
}

// Lookup returns the dialect registered under name, ignoring case.
func Lookup(name string) (Dialect, error) {
	registry.mu.RLock()
	d, ok := registry.dialects[strings.ToLower(strings.TrimSpace(name))]
	registry.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDialect, name)
	}
	return d, nil
}

// Names returns the registered dialect names in sorted order.
func Names() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	names := make([]string, 0, len(registry.dialects))
	for n := range registry.dialects {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func init() {
	for _, d := range []Dialect{
		NewMySQLDialect(),
		NewTiDBDialect(),
		NewPostgresDialect(),
		NewOracleDialect(),
		NewSQLServerDialect(),
		NewSQLiteDialect(),
		NewSQLiteMemoryDialect(),
	} {
		Register(d)
	}
}

// serverArgs unpacks the host, port, schema, user, password argument list
// shared by every server dialect.
type serverArgs struct {
	host, port, schema, user, password string
}

func parseServerArgs(dialect string, args []string) (serverArgs, error) {
	if len(args) < 3 {
		return serverArgs{}, fmt.Errorf("%w: %s needs host, port and schema, got %d arguments",
			ErrInvalidConnectionArgs, dialect, len(args))
	}
	a := serverArgs{host: args[0], port: args[1], schema: args[2]}
	if len(args) > 3 {
		a.user = args[3]
	}
	if len(args) > 4 {
		a.password = args[4]
	}
	if a.host == "" || a.port == "" || a.schema == "" {
		return serverArgs{}, fmt.Errorf("%w: %s host, port and schema must be set", ErrInvalidConnectionArgs, dialect)
	}
	return a, nil
}

func (a serverArgs) portNumber(dialect string) (int, error) {
	p, err := strconv.Atoi(a.port)
	if err != nil || p <= 0 || p > 65535 {
		return 0, fmt.Errorf("%w: %s port %q", ErrInvalidConnectionArgs, dialect, a.port)
	}
	return p, nil
}
