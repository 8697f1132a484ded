package dialect

import (
	"net"

	"github.com/go-sql-driver/mysql"
)

// MySQL renders with a trailing LIMIT and connects through go-sql-driver/mysql.
type MySQL struct {
	renderer
}

func NewMySQLDialect() Dialect {
	return MySQL{renderer{pagination: TrailingLimit}}
}

func (MySQL) Name() string           { return "mysql" }
func (MySQL) DriverName() string     { return "mysql" }
func (MySQL) Addressing() Addressing { return Network }

// ConnectionString takes host, port, schema, user, password and returns
// user:password@tcp(host:port)/schema with props as DSN parameters.
func (m MySQL) ConnectionString(props map[string]string, args ...string) (string, error) {
	return mysqlDSN(m.Name(), props, args)
}

func mysqlDSN(name string, props map[string]string, args []string) (string, error) {
	a, err := parseServerArgs(name, args)
	if err != nil {
		return "", err
	}
	if _, err := a.portNumber(name); err != nil {
		return "", err
	}

	cfg := mysql.NewConfig()
	cfg.User = a.user
	cfg.Passwd = a.password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(a.host, a.port)
	cfg.DBName = a.schema
	if len(props) > 0 {
		cfg.Params = make(map[string]string, len(props))
		for k, v := range props {
			cfg.Params[k] = v
		}
	}
	return cfg.FormatDSN(), nil
}
