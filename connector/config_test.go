package connector

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
databases:
  - alias: main
    dialect: postgres
    schema: shop
    host: db.local
    port: "5432"
    username: app
    password: s3cret
    params:
      sslmode: disable
    pool:
      max_open: 10
      max_idle_time: 30s
    connect_timeout: 5s
    retry:
      max_retries: 3
      base_delay: 100ms
  - alias: local
    dialect: sqlite
    path: data/local.db
  - alias: scratch
    dialect: sqlite-memory
    schema: scratch
`

func TestParse(t *testing.T) {
	cfgs, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)
	require.Len(t, cfgs, 3)

	main := cfgs[0]
	assert.Equal(t, "main", main.Alias)
	assert.Equal(t, "5432", main.Port)
	assert.Equal(t, map[string]string{"sslmode": "disable"}, main.Params)
	assert.Equal(t, 10, main.Pool.MaxOpen)
	assert.Equal(t, 30*time.Second, main.Pool.MaxIdleTime)
	assert.Equal(t, 5*time.Second, main.ConnectTimeout)
	require.NotNil(t, main.Retry)
	assert.Equal(t, 3, main.Retry.MaxRetries)
	assert.Equal(t, 100*time.Millisecond, main.Retry.BaseDelay)

	assert.Equal(t, "data/local.db", cfgs[1].Path)
	assert.Nil(t, cfgs[1].Retry)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte("databases:\n  - dialect: postgres\n"))
	assert.ErrorIs(t, err, ErrRequiredConfigMissing)

	_, err = Parse([]byte("databases:\n  - alias: a\n  - alias: a\n"))
	assert.ErrorContains(t, err, "duplicate alias")

	_, err = Parse([]byte("databases: ["))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "databases.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o600))

	cfgs, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, cfgs, 3)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("SQLKIT_ALIAS", "env")
	t.Setenv("SQLKIT_DIALECT", "mysql")
	t.Setenv("SQLKIT_SCHEMA", "shop")
	t.Setenv("SQLKIT_HOST", "db.local")
	t.Setenv("SQLKIT_PORT", "3306")
	t.Setenv("SQLKIT_USERNAME", "app")
	t.Setenv("SQLKIT_PARAMS", "parseTime:true,charset:utf8mb4")
	t.Setenv("SQLKIT_POOL_MAX_OPEN", "4")
	t.Setenv("SQLKIT_CONNECT_TIMEOUT", "2s")

	cfg, err := FromEnv("sqlkit")
	require.NoError(t, err)
	assert.Equal(t, "env", cfg.Alias)
	assert.Equal(t, "3306", cfg.Port)
	assert.Equal(t, map[string]string{"parseTime": "true", "charset": "utf8mb4"}, cfg.Params)
	assert.Equal(t, 4, cfg.Pool.MaxOpen)
	assert.Equal(t, 2*time.Second, cfg.ConnectTimeout)
	assert.Nil(t, cfg.Retry)
	assert.Empty(t, cfg.Path)
}

func TestConnectConfig(t *testing.T) {
	cfgs, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	r := NewRegistry()
	for _, c := range cfgs {
		_, err := r.ConnectConfig(c)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"local", "main", "scratch"}, r.Aliases())

	main, _ := r.Get("main")
	assert.Equal(t, "db.local", main.Host())
	v, ok := main.Property("sslmode")
	assert.True(t, ok)
	assert.Equal(t, "disable", v)

	local, _ := r.Get("local")
	assert.Equal(t, "local", local.Schema())

	_, err = r.ConnectConfig(Config{Alias: "x", Dialect: "db2"})
	assert.Error(t, err)
	_, err = r.ConnectConfig(Config{Alias: "x"})
	assert.ErrorIs(t, err, ErrRequiredConfigMissing)
}
