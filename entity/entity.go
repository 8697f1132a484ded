// Package entity maps rows to Go types that opt in through small capability
// interfaces. Nothing here inspects types at runtime beyond deriving a
// default table name.
package entity

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Konsultn-Engineering/sqlkit/connector"
	"github.com/Konsultn-Engineering/sqlkit/database"
	"github.com/Konsultn-Engineering/sqlkit/query"
)

// ErrNotFound is returned when a keyed load yields no row.
var ErrNotFound = errors.New("entity: not found")

// Loader fills the receiver from the row identified by keys.
type Loader interface {
	Load(ctx context.Context, keys ...any) error
}

// Lister loads every T matching keys.
type Lister[T any] interface {
	LoadAll(ctx context.Context, keys ...any) ([]T, error)
}

type Saver interface {
	Save(ctx context.Context) error
}

type Updater interface {
	Update(ctx context.Context) error
}

type Deleter interface {
	Delete(ctx context.Context) error
}

// Load creates a value with factory and loads it by keys.
func Load[T Loader](ctx context.Context, factory func() T, keys ...any) (T, error) {
	v := factory()
	if err := v.Load(ctx, keys...); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// LoadAll creates a lister with factory and loads every match for keys.
func LoadAll[T any, L Lister[T]](ctx context.Context, factory func() L, keys ...any) ([]T, error) {
	return factory().LoadAll(ctx, keys...)
}

// Base binds an entity type to a database handle and its table. Types embed
// it and build their capability methods on its statement factories.
type Base struct {
	db    *connector.Database
	table string

	keyColumn string
	keys      KeyGenerator
}

// NewBase binds db to the table of entity. See TableName. The name is stored
// as given; the statement builders escape it.
func NewBase(db *connector.Database, entity any) Base {
	return Base{db: db, table: TableName(entity)}
}

// WithKey returns a copy of b whose inserts fill column with a key from gen.
func (b Base) WithKey(column string, gen KeyGenerator) Base {
	b.keyColumn, b.keys = column, gen
	return b
}

func (b Base) DB() *connector.Database { return b.db }
func (b Base) Table() string           { return b.table }
func (b Base) KeyColumn() string       { return b.keyColumn }

func (b Base) Select(columns ...string) *query.Select {
	return b.db.Select(columns...).From(b.table)
}

// Insert returns an insert into the entity's table. With a key configured the
// key column is filled first with a generated value; a later Value for that
// column replaces it in place. A generator failure is recorded on the insert.
func (b Base) Insert() *query.Insert {
	ins := b.db.Insert().Into(b.table)
	if b.keyColumn == "" || b.keys == nil {
		return ins
	}
	key, err := b.keys.NewKey()
	if err != nil {
		ins.AddError(err)
		return ins
	}
	return ins.Value(b.keyColumn, key)
}

// InsertedKey reports the key value ins will write, or nil when the entity
// has no key column or ins does not set it.
func (b Base) InsertedKey(ins *query.Insert) any {
	if b.keyColumn == "" {
		return nil
	}
	v, _ := ins.ColumnValues().Get(query.Escape(b.keyColumn))
	return v
}

func (b Base) Update() *query.Update {
	return b.db.Update(b.table)
}

func (b Base) Delete() *query.Delete {
	return b.db.Delete().From(b.table)
}

// FindOne runs sel and scans its first row with scan. It returns
// ErrNotFound when sel matches nothing.
func FindOne(ctx context.Context, sel *query.Select, scan func(database.Rows) error) error {
	return sel.Query(ctx, func(rows *sql.Rows) error {
		_, err := database.First(rows, func(r database.Rows) (struct{}, error) {
			return struct{}{}, scan(r)
		})
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	})
}

// Find runs sel and maps every row with mapper.
func Find[T any](ctx context.Context, sel *query.Select, mapper func(database.Rows) (T, error)) ([]T, error) {
	var out []T
	err := sel.Query(ctx, func(rows *sql.Rows) error {
		var err error
		out, err = database.Collect(rows, mapper)
		return err
	})
	return out, err
}

// Affected turns a zero row count from an update or delete into ErrNotFound.
func Affected(n int64, err error) error {
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
