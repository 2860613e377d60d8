// Package db opens the database that backs the invocation history.
package db

import (
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// inMemoryDSN keeps all data in the process; nothing is written to disk.
const inMemoryDSN = ":memory:"

// NewDBConnection opens a database connection for the given DSN.
// An empty DSN opens a private in-memory SQLite database.
// DSNs starting with postgres:// or postgresql:// use Postgres, anything else is treated as a SQLite path.
func NewDBConnection(dsn string) (*gorm.DB, error) {
	conf := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	var dialector gorm.Dialector
	isSqlite := false
	switch {
	case dsn == "":
		dialector = sqlite.Open(inMemoryDSN)
		isSqlite = true
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		dialector = postgres.Open(dsn)
	default:
		dialector = sqlite.Open(dsn)
		isSqlite = true
	}

	db, err := gorm.Open(dialector, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if isSqlite {
		// every new connection to :memory: would get its own empty database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}
