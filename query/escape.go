package query

import (
	"database/sql/driver"
	"fmt"
	"reflect"
	"strings"
	"time"
)

// DefaultDateLayout is used for date-like values that do not carry a layout of their own.
const DefaultDateLayout = "2006-01-02 15:04:05"

// Literal is rendered verbatim: never escaped, never quoted.
//
//	stmt.Where("created", query.Literal("SYSDATE"))
type Literal string

// Date is implemented by date-like values that know how they should be formatted.
type Date interface {
	Time() time.Time
	DateLayout() string
}

// Timestamp pairs a time with the layout used to render it.
type Timestamp struct {
	T      time.Time
	Layout string
}

// Time returns the wrapped time.
func (t Timestamp) Time() time.Time { return t.T }

// DateLayout returns the layout, or DefaultDateLayout when none was set.
func (t Timestamp) DateLayout() string {
	if t.Layout == "" {
		return DefaultDateLayout
	}
	return t.Layout
}

// Resolve dereferences pointers and unwraps driver.Valuer implementations so
// that the escaper sees the underlying value. A nil pointer or an invalid
// nullable value resolves to nil.
func Resolve(v any) any {
	for v != nil {
		switch val := v.(type) {
		case Literal, Date, time.Time:
			return v
		case driver.Valuer:
			rv := reflect.ValueOf(val)
			if rv.Kind() == reflect.Pointer && rv.IsNil() {
				return nil
			}
			inner, err := val.Value()
			if err != nil {
				return nil
			}
			v = inner
			continue
		}
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Pointer {
			return v
		}
		if rv.IsNil() {
			return nil
		}
		v = rv.Elem().Interface()
	}
	return nil
}

// IsDateLike reports whether v renders through a date layout.
func IsDateLike(v any) bool {
	switch Resolve(v).(type) {
	case Date, time.Time:
		return true
	}
	return false
}

// Escape converts v into a token safe to embed in SQL text. It never adds
// quotes; whether the token is quoted is decided when rendering.
func Escape(v any) string {
	v = Resolve(v)
	switch val := v.(type) {
	case nil:
		return "null"
	case Literal:
		return string(val)
	case Date:
		layout := val.DateLayout()
		if layout == "" {
			layout = DefaultDateLayout
		}
		return escapeString(val.Time().Format(layout))
	case time.Time:
		return escapeString(val.Format(DefaultDateLayout))
	case []byte:
		return escapeString(string(val))
	case string:
		return escapeString(val)
	default:
		return escapeString(fmt.Sprint(val))
	}
}

func escapeString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
