package query

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Escaping
// =============================================================================

type birthday time.Time

func (b birthday) Time() time.Time    { return time.Time(b) }
func (b birthday) DateLayout() string { return "02/01/2006" }

type status string

func TestEscape(t *testing.T) {
	when := time.Date(2024, 3, 9, 17, 4, 5, 0, time.UTC)
	name := "O'Brien"
	var nilName *string

	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"nil", nil, "null"},
		{"nil pointer", nilName, "null"},
		{"plain string", "hello", "hello"},
		{"quote doubled", "O'Brien", "O''Brien"},
		{"pointer", &name, "O''Brien"},
		{"named string", status("it's"), "it''s"},
		{"literal verbatim", Literal("SYSDATE"), "SYSDATE"},
		{"literal not escaped", Literal("'x'"), "'x'"},
		{"int", 24, "24"},
		{"float", 0.5, "0.5"},
		{"bool", true, "true"},
		{"time default layout", when, "2024-03-09 17:04:05"},
		{"timestamp custom layout", Timestamp{T: when, Layout: "2006-01-02"}, "2024-03-09"},
		{"timestamp empty layout", Timestamp{T: when}, "2024-03-09 17:04:05"},
		{"date type layout", birthday(when), "09/03/2024"},
		{"bytes", []byte("a'b"), "a''b"},
		{"valid null string", sql.NullString{String: "x'y", Valid: true}, "x''y"},
		{"invalid null string", sql.NullString{}, "null"},
		{"null int", sql.NullInt64{Int64: 7, Valid: true}, "7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Escape(tt.value))
		})
	}
}

func TestEscape_Idempotent(t *testing.T) {
	assert.Equal(t, "no quotes here", Escape(Escape("no quotes here")))
	assert.Equal(t, Escape("O'Brien"), Escape("O'Brien"))
}

func TestIsDateLike(t *testing.T) {
	now := time.Now()
	assert.True(t, IsDateLike(now))
	assert.True(t, IsDateLike(&now))
	assert.True(t, IsDateLike(Timestamp{T: now}))
	assert.True(t, IsDateLike(sql.NullTime{Time: now, Valid: true}))
	assert.False(t, IsDateLike(sql.NullTime{}))
	assert.False(t, IsDateLike("2024-01-01"))
}

// =============================================================================
// Ordered columns
// =============================================================================

func TestColumnValues_LastWriteKeepsPosition(t *testing.T) {
	var cv ColumnValues
	cv.Set("a", 1)
	cv.Set("b", 2)
	cv.Set("a", 3)

	assert.Equal(t, []string{"a", "b"}, cv.Keys())
	v, ok := cv.Get("a")
	require.True(t, ok)
	assert.Equal(t, 3, v)
	assert.Equal(t, 2, cv.Len())
}

func TestColumnValues_MergeSortsKeys(t *testing.T) {
	var cv ColumnValues
	cv.Set("z", 0)
	cv.merge(map[string]any{"c": 1, "a": 2, "b": 3, "z": 9})

	assert.Equal(t, []string{"z", "a", "b", "c"}, cv.Keys())
	v, _ := cv.Get("z")
	assert.Equal(t, 9, v)
}

// =============================================================================
// Builders
// =============================================================================

type recordingRenderer struct {
	calls int
}

func (r *recordingRenderer) RenderSelect(s *Select) (string, error) {
	r.calls++
	return "SELECT FROM " + s.Table(), nil
}
func (r *recordingRenderer) RenderInsert(s *Insert) (string, error) { return "INSERT " + s.Table(), nil }
func (r *recordingRenderer) RenderUpdate(s *Update) (string, error) { return "UPDATE " + s.Table(), nil }
func (r *recordingRenderer) RenderDelete(s *Delete) (string, error) { return "DELETE " + s.Table(), nil }

type mockConn struct {
	*sql.DB
	r Renderer
}

func (m mockConn) Renderer() Renderer { return m.r }

func TestStatement_Accessors(t *testing.T) {
	s := NewSelect("id", "na'me").
		From(" users ").
		Where("id", 1).
		WhereRaw("age > 3", "  ").
		Condition("deleted IS NULL").
		OrderBy("id DESC").
		Limit(5)

	assert.Equal(t, DataManipulation, s.Kind())
	assert.Equal(t, "DML", s.Kind().String())
	assert.Equal(t, "users", s.Table())
	assert.Equal(t, []string{"id", "na''me"}, s.Columns())
	assert.Equal(t, []string{"id"}, s.Conditions().Keys())
	assert.Equal(t, []string{"age > 3"}, s.FreeText())
	assert.Equal(t, []string{"deleted IS NULL"}, s.Generic())
	assert.Equal(t, []string{"id DESC"}, s.Ordering())
	assert.Equal(t, 5, s.LimitValue())
	assert.True(t, s.HasLimit())
	assert.Nil(t, s.Conn())
	assert.NoError(t, s.Err())
}

func TestSelect_DistinctWithoutColumns(t *testing.T) {
	s := NewSelect().From("t").Distinct()
	require.ErrorIs(t, s.Err(), ErrInvalidDistinct)
	assert.False(t, s.IsDistinct())

	_, err := s.RenderWith(&recordingRenderer{})
	assert.ErrorIs(t, err, ErrInvalidDistinct)

	ok := NewSelect("a").From("t").Distinct()
	assert.NoError(t, ok.Err())
	assert.True(t, ok.IsDistinct())
}

func TestSelect_NoLimitByDefault(t *testing.T) {
	s := NewSelect()
	assert.Equal(t, NoLimit, s.LimitValue())
	assert.False(t, s.HasLimit())
	assert.False(t, s.Limit(-7).HasLimit())
	assert.True(t, s.Limit(0).HasLimit())
}

func TestRender_RequiresRenderer(t *testing.T) {
	_, err := NewSelect().From("t").Render()
	assert.ErrorIs(t, err, ErrNotBound)
	_, err = NewInsert().Into("t").Render()
	assert.ErrorIs(t, err, ErrNotBound)
	_, err = NewUpdate("t").Render()
	assert.ErrorIs(t, err, ErrNotBound)
	_, err = NewDelete().From("t").Render()
	assert.ErrorIs(t, err, ErrNotBound)
}

func TestRender_UsesBoundRenderer(t *testing.T) {
	r := &recordingRenderer{}
	conn := mockConn{r: r}

	out, err := NewSelect().From("t").Bind(conn).Render()
	require.NoError(t, err)
	assert.Equal(t, "SELECT FROM t", out)

	out, err = NewInsert().Into("t").Bind(conn).Render()
	require.NoError(t, err)
	assert.Equal(t, "INSERT t", out)

	out, err = NewUpdate("t").Bind(conn).Render()
	require.NoError(t, err)
	assert.Equal(t, "UPDATE t", out)

	out, err = NewDelete().From("t").Bind(conn).Render()
	require.NoError(t, err)
	assert.Equal(t, "DELETE t", out)
}

func TestUpdate_SetRawSkipsBlank(t *testing.T) {
	u := NewUpdate("t").Set("a", 1).SetMap(map[string]any{"b": 2}).SetRaw("hits = hits + 1", " ")
	assert.Equal(t, []string{"a", "b"}, u.SetValues().Keys())
	assert.Equal(t, []string{"hits = hits + 1"}, u.SetFragments())
}

// =============================================================================
// Execution
// =============================================================================

func TestSelect_QueryClosesRows(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2)).
		RowsWillBeClosed()

	var ids []int
	err = NewSelect().From("users").Bind(mockConn{DB: db, r: &recordingRenderer{}}).
		Query(context.Background(), func(rows *sql.Rows) error {
			for rows.Next() {
				var id int
				if err := rows.Scan(&id); err != nil {
					return err
				}
				ids = append(ids, id)
			}
			return nil
		})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSelect_QueryHandlerError(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1)).
		RowsWillBeClosed()

	boom := errors.New("boom")
	err = NewSelect().From("users").Bind(mockConn{DB: db, r: &recordingRenderer{}}).
		Query(context.Background(), func(*sql.Rows) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_ReturnsRowsAffected(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	conn := mockConn{DB: db, r: &recordingRenderer{}}
	mock.ExpectExec("INSERT t").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE t").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("DELETE t").WillReturnResult(sqlmock.NewResult(0, 2))

	ctx := context.Background()
	n, err := NewInsert().Into("t").Bind(conn).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = NewUpdate("t").Bind(conn).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = NewDelete().From("t").Bind(conn).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_RenderErrorNeverReachesConnection(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewSelect().From("t").Distinct().Bind(mockConn{DB: db, r: &recordingRenderer{}})
	err = s.Query(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvalidDistinct)
	assert.NoError(t, mock.ExpectationsWereMet())
}
