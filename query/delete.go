package query

import "context"

// Delete is a DELETE statement builder.
type Delete struct {
	Statement
}

// NewDelete starts a DELETE. The table is set with From.
func NewDelete() *Delete {
	return &Delete{Statement: newStatement(DataManipulation)}
}

func (s *Delete) From(table string) *Delete {
	s.setTable(table)
	return s
}

func (s *Delete) Where(column string, value any) *Delete {
	s.where(column, value)
	return s
}

func (s *Delete) WhereMap(m map[string]any) *Delete {
	s.keyed.merge(m)
	return s
}

// WhereRaw appends raw fragments that are AND-joined into the WHERE clause.
// They are emitted verbatim after the keyed conditions and kept alongside
// them, not dropped when keyed conditions exist.
func (s *Delete) WhereRaw(fragments ...string) *Delete {
	s.whereRaw(fragments)
	return s
}

func (s *Delete) Condition(fragment string) *Delete {
	s.condition(fragment)
	return s
}

func (s *Delete) Bind(conn Conn) *Delete {
	s.conn = conn
	return s
}

// Render returns the SQL text for the bound connection's dialect.
func (s *Delete) Render() (string, error) { return s.RenderWith(nil) }

// RenderWith renders with r, or with the bound connection's renderer when r is nil.
func (s *Delete) RenderWith(r Renderer) (string, error) {
	if err := s.Err(); err != nil {
		return "", err
	}
	r, err := s.renderer(r)
	if err != nil {
		return "", err
	}
	return r.RenderDelete(s)
}

// Run renders and executes the delete, returning the number of rows affected.
func (s *Delete) Run(ctx context.Context) (int64, error) {
	text, err := s.Render()
	if err != nil {
		return 0, err
	}
	return runExec(ctx, s.conn, text)
}
