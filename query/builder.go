package query

import "strings"

// Kind classifies a statement. It does not influence rendering.
type Kind int

const (
	DataDefinition Kind = iota
	DataManipulation
	DataControl
	TransactionControl
)

func (k Kind) String() string {
	switch k {
	case DataDefinition:
		return "DDL"
	case DataManipulation:
		return "DML"
	case DataControl:
		return "DCL"
	case TransactionControl:
		return "TCL"
	}
	return "unknown"
}

// Statement holds the table and condition material shared by every
// statement variant. Variants embed it and expose their own fluent methods.
//
// A Statement is mutated in place by its builder methods and must not be
// shared between goroutines while it is being built.
type Statement struct {
	kind     Kind
	table    string
	keyed    ColumnValues
	freeText []string
	generic  []string
	conn     Conn
	errors   []error
}

func newStatement(kind Kind) Statement {
	return Statement{kind: kind}
}

// Kind returns the statement classification.
func (s *Statement) Kind() Kind { return s.kind }

// Table returns the escaped table name, or "" when none was set.
func (s *Statement) Table() string { return s.table }

// Conditions returns the keyed WHERE conditions in insertion order.
func (s *Statement) Conditions() *ColumnValues { return &s.keyed }

// FreeText returns the raw WHERE fragments.
func (s *Statement) FreeText() []string { return s.freeText }

// Generic returns the raw condition fragments joined after the WHERE material.
func (s *Statement) Generic() []string { return s.generic }

// Conn returns the bound connection, if any.
func (s *Statement) Conn() Conn { return s.conn }

// Err returns the first error recorded while building, or nil.
func (s *Statement) Err() error {
	if len(s.errors) > 0 {
		return s.errors[0]
	}
	return nil
}

// Errors returns every error recorded while building.
func (s *Statement) Errors() []error { return s.errors }

// AddError records err; every later render returns the first recorded error.
// Nil errors are ignored.
func (s *Statement) AddError(err error) {
	if err != nil {
		s.errors = append(s.errors, err)
	}
}

func (s *Statement) setTable(name string) { s.table = Escape(strings.TrimSpace(name)) }

func (s *Statement) where(column string, value any) {
	s.keyed.Set(Escape(column), value)
}

func (s *Statement) whereRaw(fragments []string) {
	for _, f := range fragments {
		if f = strings.TrimSpace(f); f != "" {
			s.freeText = append(s.freeText, f)
		}
	}
}

func (s *Statement) condition(fragment string) {
	if fragment = strings.TrimSpace(fragment); fragment != "" {
		s.generic = append(s.generic, fragment)
	}
}

// renderer picks the explicit renderer, falling back to the bound connection's.
func (s *Statement) renderer(r Renderer) (Renderer, error) {
	if r != nil {
		return r, nil
	}
	if s.conn == nil || s.conn.Renderer() == nil {
		return nil, ErrNotBound
	}
	return s.conn.Renderer(), nil
}

// Renderer turns statement variants into dialect specific SQL text.
type Renderer interface {
	RenderSelect(s *Select) (string, error)
	RenderInsert(s *Insert) (string, error)
	RenderUpdate(s *Update) (string, error)
	RenderDelete(s *Delete) (string, error)
}
