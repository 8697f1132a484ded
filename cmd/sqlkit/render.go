package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Konsultn-Engineering/sqlkit/dialect"
	"github.com/Konsultn-Engineering/sqlkit/query"
)

func newDialectsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dialects",
		Short: "List registered dialects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, name := range dialect.Names() {
				d, err := dialect.Lookup(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-14s driver=%s addressing=%s\n", name, d.DriverName(), d.Addressing())
			}
			return nil
		},
	}
}

type renderOptions struct {
	dialect    string
	kind       string
	table      string
	columns    []string
	where      []string
	whereRaw   []string
	conditions []string
	orderBy    []string
	limit      int
	distinct   bool
	values     []string
	setRaw     []string
}

func newRenderCommand() *cobra.Command {
	var o renderOptions

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a statement for a dialect",
		Long: `Render a statement for a dialect.

Values given as column=value render as numbers or booleans when they parse as
such and as quoted strings otherwise. "null" renders as null and a "sql:"
prefix passes the rest through verbatim, e.g. created=sql:SYSDATE.`,
		Example: "  sqlkit render --dialect oracle --table SOME_TABLE --where id=24 --limit 1",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := o.render()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.dialect, "dialect", "postgres", "dialect name")
	f.StringVar(&o.kind, "kind", "select", "statement kind: select, insert, update or delete")
	f.StringVar(&o.table, "table", "", "table name")
	f.StringSliceVar(&o.columns, "column", nil, "selected column (repeatable)")
	f.StringArrayVar(&o.where, "where", nil, "keyed condition column=value (repeatable)")
	f.StringArrayVar(&o.whereRaw, "raw", nil, "raw WHERE fragment (repeatable)")
	f.StringArrayVar(&o.conditions, "condition", nil, "raw condition appended after the WHERE material (repeatable)")
	f.StringArrayVar(&o.orderBy, "order-by", nil, "ORDER BY fragment (repeatable)")
	f.IntVar(&o.limit, "limit", query.NoLimit, "row cap for select")
	f.BoolVar(&o.distinct, "distinct", false, "select distinct rows")
	f.StringArrayVar(&o.values, "value", nil, "inserted or assigned column=value (repeatable)")
	f.StringArrayVar(&o.setRaw, "set-raw", nil, "raw assignment for update (repeatable)")
	return cmd
}

func (o renderOptions) render() (string, error) {
	d, err := dialect.Lookup(o.dialect)
	if err != nil {
		return "", err
	}
	where, err := parsePairs(o.where)
	if err != nil {
		return "", err
	}
	values, err := parsePairs(o.values)
	if err != nil {
		return "", err
	}

	switch strings.ToLower(o.kind) {
	case "select":
		s := query.NewSelect(o.columns...).From(o.table).WhereRaw(o.whereRaw...).OrderBy(o.orderBy...).Limit(o.limit)
		if o.distinct {
			s.Distinct()
		}
		for _, kv := range where {
			s.Where(kv.column, kv.value)
		}
		for _, c := range o.conditions {
			s.Condition(c)
		}
		return s.RenderWith(d)
	case "insert":
		s := query.NewInsert().Into(o.table)
		for _, kv := range values {
			s.Value(kv.column, kv.value)
		}
		return s.RenderWith(d)
	case "update":
		s := query.NewUpdate(o.table).SetRaw(o.setRaw...).WhereRaw(o.whereRaw...)
		for _, kv := range values {
			s.Set(kv.column, kv.value)
		}
		for _, kv := range where {
			s.Where(kv.column, kv.value)
		}
		for _, c := range o.conditions {
			s.Condition(c)
		}
		return s.RenderWith(d)
	case "delete":
		s := query.NewDelete().From(o.table).WhereRaw(o.whereRaw...)
		for _, kv := range where {
			s.Where(kv.column, kv.value)
		}
		for _, c := range o.conditions {
			s.Condition(c)
		}
		return s.RenderWith(d)
	}
	return "", fmt.Errorf("unknown statement kind %q", o.kind)
}

type pair struct {
	column string
	value  any
}

func parsePairs(raw []string) ([]pair, error) {
	out := make([]pair, 0, len(raw))
	for _, r := range raw {
		col, val, ok := strings.Cut(r, "=")
		if !ok || strings.TrimSpace(col) == "" {
			return nil, fmt.Errorf("expected column=value, got %q", r)
		}
		out = append(out, pair{column: strings.TrimSpace(col), value: parseValue(val)})
	}
	return out, nil
}

func parseValue(s string) any {
	if lit, ok := strings.CutPrefix(s, "sql:"); ok {
		return query.Literal(lit)
	}
	if s == "null" {
		return nil
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if s == "true" || s == "false" {
		return s == "true"
	}
	return s
}
