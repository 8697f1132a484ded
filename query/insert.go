package query

import "context"

// Insert is an INSERT statement builder.
type Insert struct {
	Statement
	values ColumnValues
}

// NewInsert starts an INSERT. The table is set with Into.
func NewInsert() *Insert {
	return &Insert{Statement: newStatement(DataManipulation)}
}

// Into sets the target table.
func (s *Insert) Into(table string) *Insert {
	s.setTable(table)
	return s
}

// Value sets the value inserted into column. A later call for the same
// column replaces the value without moving the column.
func (s *Insert) Value(column string, value any) *Insert {
	s.values.Set(Escape(column), value)
	return s
}

// Values sets every entry of m, in sorted key order.
func (s *Insert) Values(m map[string]any) *Insert {
	s.values.merge(m)
	return s
}

// Bind attaches the connection used to render and run the statement.
func (s *Insert) Bind(conn Conn) *Insert {
	s.conn = conn
	return s
}

// ColumnValues returns the inserted columns in insertion order.
func (s *Insert) ColumnValues() *ColumnValues { return &s.values }

// Render returns the SQL text for the bound connection's dialect.
func (s *Insert) Render() (string, error) { return s.RenderWith(nil) }

// RenderWith renders with r, or with the bound connection's renderer when r is nil.
func (s *Insert) RenderWith(r Renderer) (string, error) {
	if err := s.Err(); err != nil {
		return "", err
	}
	r, err := s.renderer(r)
	if err != nil {
		return "", err
	}
	return r.RenderInsert(s)
}

// Run renders and executes the insert, returning the number of rows affected.
func (s *Insert) Run(ctx context.Context) (int64, error) {
	text, err := s.Render()
	if err != nil {
		return 0, err
	}
	return runExec(ctx, s.conn, text)
}
