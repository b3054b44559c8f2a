package dal

import (
	"database/sql"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	// Drivers supported by the SQL storage
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

var sqliteDefaultParams = url.Values{
	"_foreign_keys": {"on"},
	"_busy_timeout": {"5000"},
	"_txlock":       {"immediate"},
}

// sqliteDSN adds default params the DSN does not set on its own
func sqliteDSN(dataSourceName string) (string, error) {
	name, rawQuery, _ := strings.Cut(dataSourceName, "?")
	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		return "", errors.Wrap(err, "Failed to parse sqlite3 dsn params")
	}
	for key, values := range sqliteDefaultParams {
		if _, ok := query[key]; !ok {
			query[key] = values
		}
	}
	return name + "?" + query.Encode(), nil
}

// OpenDB opens a db handle for one of supported drivers: sqlite3 or pgx
func OpenDB(driver string, dataSourceName string) (*sql.DB, error) {
	switch driver {
	case "sqlite3":
		dsn, err := sqliteDSN(dataSourceName)
		if err != nil {
			return nil, err
		}
		dataSourceName = dsn
	case "pgx":
	default:
		return nil, errors.Errorf("Unsupported storage driver: %v", driver)
	}
	db, err := sql.Open(driver, dataSourceName)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to open %v db", driver)
	}
	return db, nil
}
