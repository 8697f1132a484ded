package query

import (
	"context"
	"database/sql"
	"strings"
)

// NoLimit disables pagination on a Select. Any negative limit does the same.
const NoLimit = -1

// Select is a SELECT statement builder.
type Select struct {
	Statement
	columns  []string
	distinct bool
	limit    int
	orderBy  []string
}

// NewSelect starts a SELECT of the given columns. No columns selects all.
func NewSelect(columns ...string) *Select {
	s := &Select{Statement: newStatement(DataManipulation), limit: NoLimit}
	for _, c := range columns {
		s.columns = append(s.columns, Escape(c))
	}
	return s
}

// From sets the table.
func (s *Select) From(table string) *Select {
	s.setTable(table)
	return s
}

// Where adds a keyed equality condition. A later call for the same column
// replaces the value without moving the column.
func (s *Select) Where(column string, value any) *Select {
	s.where(column, value)
	return s
}

// WhereMap adds every entry of m as a keyed condition, in sorted key order.
func (s *Select) WhereMap(m map[string]any) *Select {
	s.keyed.merge(m)
	return s
}

// WhereRaw appends raw fragments that are AND-joined into the WHERE clause.
// They are emitted verbatim after the keyed conditions and kept alongside
// them, not dropped when keyed conditions exist.
func (s *Select) WhereRaw(fragments ...string) *Select {
	s.whereRaw(fragments)
	return s
}

// Condition appends a raw fragment after the WHERE material.
func (s *Select) Condition(fragment string) *Select {
	s.condition(fragment)
	return s
}

// Bind attaches the connection used to render and run the statement.
func (s *Select) Bind(conn Conn) *Select {
	s.conn = conn
	return s
}

// Distinct turns the select into SELECT DISTINCT. It records
// ErrInvalidDistinct when the select has no named columns.
func (s *Select) Distinct() *Select {
	if len(s.columns) == 0 {
		s.AddError(ErrInvalidDistinct)
		return s
	}
	s.distinct = true
	return s
}

// Limit caps the number of rows. NoLimit removes the cap.
func (s *Select) Limit(n int) *Select {
	s.limit = n
	return s
}

// OrderBy appends raw ordering fragments such as "name DESC".
func (s *Select) OrderBy(fragments ...string) *Select {
	for _, f := range fragments {
		if f = strings.TrimSpace(f); f != "" {
			s.orderBy = append(s.orderBy, f)
		}
	}
	return s
}

func (s *Select) Columns() []string  { return s.columns }
func (s *Select) IsDistinct() bool   { return s.distinct }
func (s *Select) LimitValue() int    { return s.limit }
func (s *Select) Ordering() []string { return s.orderBy }

// HasLimit reports whether a row cap is set.
func (s *Select) HasLimit() bool { return s.limit >= 0 }

// Render returns the SQL text for the bound connection's dialect.
func (s *Select) Render() (string, error) { return s.RenderWith(nil) }

// RenderWith renders with r, or with the bound connection's renderer when r is nil.
func (s *Select) RenderWith(r Renderer) (string, error) {
	if err := s.Err(); err != nil {
		return "", err
	}
	r, err := s.renderer(r)
	if err != nil {
		return "", err
	}
	return r.RenderSelect(s)
}

// Query renders the select, runs it on the bound connection and passes the
// cursor to fn. The rows are closed when Query returns.
func (s *Select) Query(ctx context.Context, fn func(*sql.Rows) error) error {
	text, err := s.Render()
	if err != nil {
		return err
	}
	return runQuery(ctx, s.conn, text, fn)
}
