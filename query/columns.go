package query

import "sort"

// ColumnValues is an insertion-ordered column to value mapping. Setting a
// column that is already present replaces its value in place.
type ColumnValues struct {
	keys   []string
	values map[string]any
}

// Set stores value under column.
func (c *ColumnValues) Set(column string, value any) {
	if c.values == nil {
		c.values = make(map[string]any)
	}
	if _, ok := c.values[column]; !ok {
		c.keys = append(c.keys, column)
	}
	c.values[column] = value
}

// Get returns the value stored for column.
func (c *ColumnValues) Get(column string) (any, bool) {
	v, ok := c.values[column]
	return v, ok
}

// Len returns the number of columns.
func (c *ColumnValues) Len() int { return len(c.keys) }

// Keys returns the columns in insertion order.
func (c *ColumnValues) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// Each calls fn for every column in insertion order.
func (c *ColumnValues) Each(fn func(column string, value any)) {
	for _, k := range c.keys {
		fn(k, c.values[k])
	}
}

// merge sets every entry of m, escaping keys. Keys are applied in sorted
// order so that Go's map iteration order never leaks into rendered SQL.
func (c *ColumnValues) merge(m map[string]any) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		c.Set(Escape(k), m[k])
	}
}
