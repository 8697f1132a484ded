package dialect

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	// Registers the "sqlite" database/sql driver.
	_ "modernc.org/sqlite"
)

// SQLite renders with a trailing LIMIT and opens a database file.
type SQLite struct {
	renderer
}

func NewSQLiteDialect() Dialect {
	return SQLite{renderer{pagination: TrailingLimit}}
}

func (SQLite) Name() string           { return "sqlite" }
func (SQLite) DriverName() string     { return "sqlite" }
func (SQLite) Addressing() Addressing { return File }

// ConnectionString takes the database file path and returns file:path?props.
func (d SQLite) ConnectionString(props map[string]string, args ...string) (string, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return "", fmt.Errorf("%w: %s needs a file path", ErrInvalidConnectionArgs, d.Name())
	}
	return fileURI(args[0], nil, props), nil
}

// SQLiteMemory is SQLite backed by a named in-memory database that lives as
// long as one connection to it stays open.
type SQLiteMemory struct {
	SQLite
}

func NewSQLiteMemoryDialect() Dialect {
	return SQLiteMemory{SQLite: NewSQLiteDialect().(SQLite)}
}

func (SQLiteMemory) Name() string           { return "sqlite-memory" }
func (SQLiteMemory) Addressing() Addressing { return Memory }

// ConnectionString takes the database name and returns
// file:name?mode=memory&cache=shared with props appended.
func (d SQLiteMemory) ConnectionString(props map[string]string, args ...string) (string, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return "", fmt.Errorf("%w: %s needs a database name", ErrInvalidConnectionArgs, d.Name())
	}
	return fileURI(args[0], [][2]string{{"mode", "memory"}, {"cache", "shared"}}, props), nil
}

func fileURI(path string, fixed [][2]string, props map[string]string) string {
	var q []string
	for _, kv := range fixed {
		q = append(q, url.QueryEscape(kv[0])+"="+url.QueryEscape(kv[1]))
	}
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		q = append(q, url.QueryEscape(k)+"="+url.QueryEscape(props[k]))
	}
	path = escapeFilePath(path)
	if len(q) == 0 {
		return "file:" + path
	}
	return "file:" + path + "?" + strings.Join(q, "&")
}

// escapeFilePath percent-encodes each segment so ?, # and % inside a file name
// cannot end the path part of the URI. SQLite decodes the escapes on open.
func escapeFilePath(path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}
