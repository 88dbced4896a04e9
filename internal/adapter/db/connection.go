package db

import (
	"context"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"todoapi/internal/config"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

const createTasksTable = `
CREATE TABLE IF NOT EXISTS tasks (
  id          VARCHAR(36) NOT NULL PRIMARY KEY,
  title       TEXT        NOT NULL,
  description TEXT        NOT NULL,
  completed   BOOLEAN     NOT NULL DEFAULT FALSE,
  priority    VARCHAR(10) NOT NULL DEFAULT 'medium',
  sort_order  BIGINT      NOT NULL DEFAULT 0,
  created_at  BIGINT      NOT NULL,
  updated_at  BIGINT      NOT NULL
)`

// ConnectDB opens the SQL backend selected by conf.StoreDriver and makes sure
// the tasks table exists.
func ConnectDB(ctx context.Context, conf *config.Config) (*sqlx.DB, error) {
	var (
		db  *sqlx.DB
		err error
	)

	switch conf.StoreDriver {
	case DriverMySQL:
		db, err = sqlx.ConnectContext(ctx, DriverMySQL, MySQLDSN(conf))
	case DriverSQLite:
		db, err = ConnectSQLite(ctx, conf.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", conf.StoreDriver)
	}
	if err != nil {
		return nil, err
	}

	if err := EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func MySQLDSN(conf *config.Config) string {
	params := conf.DbParams
	if params == "" {
		params = "parseTime=true&multiStatements=true"
	}

	return fmt.Sprintf(
		"%s:%s@tcp(%s:%s)/%s?%s",
		conf.DbUser,
		conf.DbPassword,
		conf.DbHost,
		conf.DbPort,
		conf.DbName,
		params,
	)
}

func ConnectSQLite(ctx context.Context, path string) (*sqlx.DB, error) {
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sqlx.ConnectContext(ctx, DriverSQLite, dsn)
	if err != nil {
		return nil, err
	}
	// SQLite allows a single writer; one connection avoids SQLITE_BUSY inside transactions.
	db.SetMaxOpenConns(1)
	return db, nil
}

func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, createTasksTable); err != nil {
		return fmt.Errorf("create tasks table: %w", err)
	}
	return nil
}
