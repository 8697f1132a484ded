package dialect

// TiDB speaks the MySQL protocol and syntax; it differs only in name so that
// configuration can select it explicitly.
type TiDB struct {
	MySQL
}

func NewTiDBDialect() Dialect {
	return TiDB{MySQL: NewMySQLDialect().(MySQL)}
}

func (TiDB) Name() string { return "tidb" }

// ConnectionString takes the same arguments as MySQL.
func (t TiDB) ConnectionString(props map[string]string, args ...string) (string, error) {
	return mysqlDSN(t.Name(), props, args)
}
