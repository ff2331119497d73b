package datastore

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// Supported storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// dialect captures the differences between the supported SQL engines.
type dialect struct {
	name        string
	sqlDriver   string
	placeholder sq.PlaceholderFormat
	serialKey   string
}

var dialects = map[string]dialect{
	DriverSQLite: {
		name:        DriverSQLite,
		sqlDriver:   "sqlite",
		placeholder: sq.Question,
		serialKey:   "INTEGER PRIMARY KEY",
	},
	DriverPostgres: {
		name:        DriverPostgres,
		sqlDriver:   "pgx",
		placeholder: sq.Dollar,
		serialKey:   "SERIAL PRIMARY KEY",
	},
}

func lookupDialect(driver string) (dialect, error) {
	d, ok := dialects[strings.ToLower(strings.TrimSpace(driver))]
	if !ok {
		return dialect{}, fmt.Errorf("unsupported database driver %q (want %s or %s)", driver, DriverSQLite, DriverPostgres)
	}
	return d, nil
}

// sqliteDSN turns a file path into a modernc DSN with foreign keys enforced.
func sqliteDSN(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}
