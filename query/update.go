package query

import (
	"context"
	"strings"
)

// Update is an UPDATE statement builder.
type Update struct {
	Statement
	set       ColumnValues
	fragments []string
}

// NewUpdate starts an UPDATE of table.
func NewUpdate(table string) *Update {
	s := &Update{Statement: newStatement(DataManipulation)}
	s.setTable(table)
	return s
}

// Set assigns value to column.
func (s *Update) Set(column string, value any) *Update {
	s.set.Set(Escape(column), value)
	return s
}

// SetMap assigns every entry of m, in sorted key order.
func (s *Update) SetMap(m map[string]any) *Update {
	s.set.merge(m)
	return s
}

// SetRaw appends raw assignments such as "hits = hits + 1". Each fragment
// must hold a single assignment; commas are inserted when rendering.
func (s *Update) SetRaw(fragments ...string) *Update {
	for _, f := range fragments {
		if f = strings.TrimSpace(f); f != "" {
			s.fragments = append(s.fragments, f)
		}
	}
	return s
}

// Where adds a keyed equality condition.
func (s *Update) Where(column string, value any) *Update {
	s.where(column, value)
	return s
}

// WhereMap adds every entry of m as a keyed condition, in sorted key order.
func (s *Update) WhereMap(m map[string]any) *Update {
	s.keyed.merge(m)
	return s
}

// WhereRaw appends raw fragments that are AND-joined into the WHERE clause.
// They are emitted verbatim after the keyed conditions and kept alongside
// them, not dropped when keyed conditions exist.
func (s *Update) WhereRaw(fragments ...string) *Update {
	s.whereRaw(fragments)
	return s
}

// Condition appends a raw fragment after the WHERE material.
func (s *Update) Condition(fragment string) *Update {
	s.condition(fragment)
	return s
}

// Bind attaches the connection used to render and run the statement.
func (s *Update) Bind(conn Conn) *Update {
	s.conn = conn
	return s
}

func (s *Update) SetValues() *ColumnValues { return &s.set }
func (s *Update) SetFragments() []string  { return s.fragments }

// Render returns the SQL text for the bound connection's dialect.
func (s *Update) Render() (string, error) { return s.RenderWith(nil) }

// RenderWith renders with r, or with the bound connection's renderer when r is nil.
func (s *Update) RenderWith(r Renderer) (string, error) {
	if err := s.Err(); err != nil {
		return "", err
	}
	r, err := s.renderer(r)
	if err != nil {
		return "", err
	}
	return r.RenderUpdate(s)
}

// Run renders and executes the update, returning the number of rows affected.
func (s *Update) Run(ctx context.Context) (int64, error) {
	text, err := s.Render()
	if err != nil {
		return 0, err
	}
	return runExec(ctx, s.conn, text)
}
