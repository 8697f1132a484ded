// Package database holds helpers for walking result cursors.
package database

import (
	"database/sql"
)

// Rows is the part of a result cursor the helpers use.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

var _ Rows = (*sql.Rows)(nil)

// Each calls fn for every remaining row. It does not close rows.
func Each(rows Rows, fn func(Rows) error) error {
	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Collect maps every remaining row and returns the results in order.
func Collect[T any](rows Rows, mapper func(Rows) (T, error)) ([]T, error) {
	var out []T
	err := Each(rows, func(r Rows) error {
		v, err := mapper(r)
		if err != nil {
			return err
		}
		out = append(out, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CollectSet maps every remaining row into a set, dropping duplicates.
func CollectSet[T comparable](rows Rows, mapper func(Rows) (T, error)) (map[T]struct{}, error) {
	out := make(map[T]struct{})
	err := Each(rows, func(r Rows) error {
		v, err := mapper(r)
		if err != nil {
			return err
		}
		out[v] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// First maps the first row. It returns sql.ErrNoRows when there is none.
func First[T any](rows Rows, mapper func(Rows) (T, error)) (T, error) {
	var zero T
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return zero, err
		}
		return zero, sql.ErrNoRows
	}
	return mapper(rows)
}

// Scalar scans a single column value of type T.
func Scalar[T any](rows Rows) (T, error) {
	var v T
	err := rows.Scan(&v)
	return v, err
}
