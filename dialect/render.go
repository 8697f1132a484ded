package dialect

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/Konsultn-Engineering/sqlkit/query"
)

// Pagination selects how a row cap on a Select is expressed.
type Pagination int

const (
	// TrailingLimit appends LIMIT n after ORDER BY.
	TrailingLimit Pagination = iota
	// RowNumPredicate adds ROWNUM <= n to the WHERE chain.
	RowNumPredicate
	// TopN writes TOP n right after SELECT or SELECT DISTINCT.
	TopN
)

// Quoted reports whether the token for v is wrapped in single quotes.
// Strings and dates are quoted; null, numbers, booleans and literals are not.
func Quoted(v any) bool {
	v = query.Resolve(v)
	switch v.(type) {
	case nil, query.Literal:
		return false
	case query.Date, time.Time, []byte, fmt.Stringer:
		return true
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return false
	}
	return true
}

// Token renders v as it appears in SQL text.
func Token(v any) string {
	s := query.Escape(v)
	if Quoted(v) {
		return "'" + s + "'"
	}
	return s
}

// renderer implements the statement layout shared by every dialect. Only the
// pagination strategy differs between products.
type renderer struct {
	pagination Pagination
}

func (r renderer) RenderSelect(s *query.Select) (string, error) {
	if s.Table() == "" {
		return "", query.ErrMissingTableName
	}
	if s.IsDistinct() && len(s.Columns()) == 0 {
		return "", query.ErrInvalidDistinct
	}

	parts := []string{"SELECT"}
	if s.IsDistinct() {
		parts = append(parts, "DISTINCT")
	}
	if r.pagination == TopN && s.HasLimit() {
		parts = append(parts, "TOP", strconv.Itoa(s.LimitValue()))
	}
	if cols := s.Columns(); len(cols) > 0 {
		parts = append(parts, strings.Join(cols, ", "))
	} else {
		parts = append(parts, "*")
	}
	parts = append(parts, "FROM", s.Table())

	var rowCap []string
	if r.pagination == RowNumPredicate && s.HasLimit() {
		rowCap = append(rowCap, "ROWNUM <= "+strconv.Itoa(s.LimitValue()))
	}
	parts = appendWhere(parts, &s.Statement, rowCap...)

	if order := s.Ordering(); len(order) > 0 {
		parts = append(parts, "ORDER BY", strings.Join(order, ", "))
	}
	if r.pagination == TrailingLimit && s.HasLimit() {
		parts = append(parts, "LIMIT", strconv.Itoa(s.LimitValue()))
	}
	return strings.Join(parts, " "), nil
}

func (r renderer) RenderInsert(s *query.Insert) (string, error) {
	if s.Table() == "" {
		return "", query.ErrMissingTableName
	}
	values := s.ColumnValues()
	if values.Len() == 0 {
		return "", query.ErrNoValuesToInsert
	}

	tokens := make([]string, 0, values.Len())
	values.Each(func(_ string, v any) {
		tokens = append(tokens, Token(v))
	})
	return "INSERT INTO " + s.Table() +
		"(" + strings.Join(values.Keys(), ", ") + ")" +
		" VALUES(" + strings.Join(tokens, ", ") + ")", nil
}

func (r renderer) RenderUpdate(s *query.Update) (string, error) {
	if s.Table() == "" {
		return "", query.ErrMissingTableName
	}
	set := s.SetValues()
	if set.Len() == 0 && len(s.SetFragments()) == 0 {
		return "", query.ErrNoValuesToUpdate
	}

	sets := assignments(set)
	sets = append(sets, s.SetFragments()...)

	parts := []string{"UPDATE", s.Table(), "SET", strings.Join(sets, ", ")}
	parts = appendWhere(parts, &s.Statement)
	return strings.Join(parts, " "), nil
}

func (r renderer) RenderDelete(s *query.Delete) (string, error) {
	if s.Table() == "" {
		return "", query.ErrMissingTableName
	}
	parts := appendWhere([]string{"DELETE", "FROM", s.Table()}, &s.Statement)
	return strings.Join(parts, " "), nil
}

// appendWhere emits the keyed conditions, the free text fragments, the
// generic conditions and finally extra, all AND-joined behind one WHERE.
func appendWhere(parts []string, st *query.Statement, extra ...string) []string {
	predicates := assignments(st.Conditions())
	predicates = append(predicates, st.FreeText()...)
	predicates = append(predicates, st.Generic()...)
	predicates = append(predicates, extra...)
	if len(predicates) == 0 {
		return parts
	}
	return append(parts, "WHERE", strings.Join(predicates, " AND "))
}

func assignments(cv *query.ColumnValues) []string {
	out := make([]string, 0, cv.Len())
	cv.Each(func(column string, v any) {
		out = append(out, column+" = "+Token(v))
	})
	return out
}
