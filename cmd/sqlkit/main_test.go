package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Konsultn-Engineering/sqlkit/query"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return strings.TrimSpace(out.String()), err
}

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "oracle rownum",
			args: []string{"render", "--dialect", "oracle", "--table", "SOME_TABLE", "--where", "id=24", "--limit", "1"},
			want: "SELECT * FROM SOME_TABLE WHERE id = 24 AND ROWNUM <= 1",
		},
		{
			name: "sqlserver top",
			args: []string{"render", "--dialect", "sqlserver", "--table", "t", "--column", "a,b", "--distinct", "--limit", "5"},
			want: "SELECT DISTINCT TOP 5 a, b FROM t",
		},
		{
			name: "mysql trailing limit",
			args: []string{"render", "--dialect", "mysql", "--table", "t", "--where", "name=O'Neil", "--order-by", "name", "--limit", "10"},
			want: "SELECT * FROM t WHERE name = 'O''Neil' ORDER BY name LIMIT 10",
		},
		{
			name: "insert",
			args: []string{"render", "--kind", "insert", "--table", "t", "--value", "a=1", "--value", "b=x", "--value", "c=sql:NOW()"},
			want: "INSERT INTO t(a, b, c) VALUES(1, 'x', NOW())",
		},
		{
			name: "update",
			args: []string{"render", "--kind", "update", "--table", "t", "--value", "done=true", "--where", "id=7"},
			want: "UPDATE t SET done = true WHERE id = 7",
		},
		{
			name: "delete",
			args: []string{"render", "--kind", "delete", "--table", "t", "--raw", "age > 3"},
			want: "DELETE FROM t WHERE age > 3",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestRender_Errors(t *testing.T) {
	_, err := execute(t, "render", "--dialect", "db2", "--table", "t")
	assert.Error(t, err)

	_, err = execute(t, "render", "--kind", "merge", "--table", "t")
	assert.ErrorContains(t, err, "unknown statement kind")

	_, err = execute(t, "render", "--table", "t", "--where", "novalue")
	assert.ErrorContains(t, err, "column=value")

	_, err = execute(t, "render")
	assert.ErrorIs(t, err, query.ErrMissingTableName)
}

func TestParseValue(t *testing.T) {
	assert.Equal(t, int64(42), parseValue("42"))
	assert.Equal(t, 1.5, parseValue("1.5"))
	assert.Equal(t, true, parseValue("true"))
	assert.Nil(t, parseValue("null"))
	assert.Equal(t, query.Literal("SYSDATE"), parseValue("sql:SYSDATE"))
	assert.Equal(t, "abc", parseValue("abc"))
}

func TestDialects(t *testing.T) {
	out, err := execute(t, "dialects")
	require.NoError(t, err)
	assert.Contains(t, out, "oracle")
	assert.Contains(t, out, "addressing=file")
}

func TestPing(t *testing.T) {
	dir := t.TempDir()
	cfg := "databases:\n" +
		"  - alias: scratch\n    dialect: sqlite-memory\n    schema: cli_ping\n" +
		"  - alias: local\n    dialect: sqlite\n    path: " + filepath.Join(dir, "local.db") + "\n"
	path := filepath.Join(dir, "databases.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))

	out, err := execute(t, "ping", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "scratch: ok")
	assert.Contains(t, out, "local: ok")

	_, err = execute(t, "ping", "--config", path, "--alias", "missing")
	assert.ErrorContains(t, err, "no database configured")
}
