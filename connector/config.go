package connector

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config represents one aliased database connection.
type Config struct {
	Alias          string            `json:"alias" yaml:"alias" split_words:"true"`
	Dialect        string            `json:"dialect" yaml:"dialect" split_words:"true"`
	Schema         string            `json:"schema" yaml:"schema" split_words:"true"`
	Host           string            `json:"host" yaml:"host" split_words:"true"`
	Port           string            `json:"port" yaml:"port" split_words:"true"`
	Username       string            `json:"username" yaml:"username" split_words:"true"`
	Password       string            `json:"password" yaml:"password" split_words:"true"`
	Path           string            `json:"path" yaml:"path" split_words:"true"`
	Params         map[string]string `json:"params" yaml:"params" split_words:"true"`
	Pool           PoolConfig        `json:"pool" yaml:"pool" split_words:"true"`
	ConnectTimeout time.Duration     `json:"connect_timeout" yaml:"connect_timeout" split_words:"true"`
	Retry          *RetryConfig      `json:"retry,omitempty" yaml:"retry,omitempty" split_words:"true"`
}

// PoolConfig defines connection pool settings.
type PoolConfig struct {
	MaxOpen     int           `json:"max_open" yaml:"max_open" split_words:"true"`
	MaxIdle     int           `json:"max_idle" yaml:"max_idle" split_words:"true"`
	MaxLifetime time.Duration `json:"max_lifetime" yaml:"max_lifetime" split_words:"true"`
	MaxIdleTime time.Duration `json:"max_idle_time" yaml:"max_idle_time" split_words:"true"`
}

func (p PoolConfig) apply(db *sql.DB) {
	if p.MaxOpen > 0 {
		db.SetMaxOpenConns(p.MaxOpen)
	}
	if p.MaxIdle > 0 {
		db.SetMaxIdleConns(p.MaxIdle)
	}
	if p.MaxLifetime > 0 {
		db.SetConnMaxLifetime(p.MaxLifetime)
	}
	if p.MaxIdleTime > 0 {
		db.SetConnMaxIdleTime(p.MaxIdleTime)
	}
}

// RetryConfig defines connection retry behavior. Retries are off unless
// MaxRetries is positive.
type RetryConfig struct {
	MaxRetries int           `json:"max_retries" yaml:"max_retries" split_words:"true"`
	BaseDelay  time.Duration `json:"base_delay" yaml:"base_delay" split_words:"true"`
	MaxDelay   time.Duration `json:"max_delay" yaml:"max_delay" split_words:"true"`
	Backoff    float64       `json:"backoff" yaml:"backoff" split_words:"true"`
}

type fileConfig struct {
	Databases []Config `yaml:"databases"`
}

// LoadFile reads a YAML document with a top level "databases" list.
func LoadFile(path string) ([]Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes the YAML accepted by LoadFile.
func Parse(data []byte) ([]Config, error) {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	seen := make(map[string]bool, len(fc.Databases))
	for i, c := range fc.Databases {
		if c.Alias == "" {
			return nil, fmt.Errorf("%w: databases[%d].alias", ErrRequiredConfigMissing, i)
		}
		if seen[c.Alias] {
			return nil, fmt.Errorf("parse config: duplicate alias %q", c.Alias)
		}
		seen[c.Alias] = true
	}
	return fc.Databases, nil
}

// FromEnv reads one configuration from environment variables named
// PREFIX_ALIAS, PREFIX_HOST, PREFIX_POOL_MAX_OPEN and so on.
func FromEnv(prefix string) (Config, error) {
	var c Config
	if err := envconfig.Process(prefix, &c); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}
	if c.Retry != nil && c.Retry.MaxRetries <= 0 {
		c.Retry = nil
	}
	return c, nil
}
