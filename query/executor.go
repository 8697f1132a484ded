package query

import (
	"context"
	"database/sql"
	"errors"
)

var (
	ErrMissingTableName = errors.New("query: missing table name")
	ErrInvalidDistinct  = errors.New("query: distinct requires at least one column")
	ErrNoValuesToInsert = errors.New("query: no values to insert")
	ErrNoValuesToUpdate = errors.New("query: no values to update")
	ErrNotBound         = errors.New("query: statement is not bound to a connection")
)

// Conn is the connection a statement is bound to. It supplies the dialect
// renderer and runs rendered text.
type Conn interface {
	Renderer() Renderer
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// runQuery hands text to conn and closes the rows on every path.
func runQuery(ctx context.Context, conn Conn, text string, fn func(*sql.Rows) error) error {
	rows, err := conn.QueryContext(ctx, text)
	if err != nil {
		return err
	}
	defer rows.Close()

	if fn != nil {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func runExec(ctx context.Context, conn Conn, text string) (int64, error) {
	res, err := conn.ExecContext(ctx, text)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
