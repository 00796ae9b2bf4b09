package exec

import (
	"context"
	"database/sql"
	"fmt"
)

// DB executes statements on a database/sql handle. The driver is chosen by
// the binary (lib/pq, go-sql-driver/mysql) via HOST_DRIVER.
type DB struct {
	db *sql.DB
}

// OpenDB opens and pings a database/sql connection for the given driver.
func OpenDB(ctx context.Context, driver, dsn string) (*DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s host connection: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s host connection: %w", driver, err)
	}
	return &DB{db: db}, nil
}

// NewDB wraps an existing database/sql handle.
func NewDB(db *sql.DB) *DB {
	return &DB{db: db}
}

func (d *DB) Execute(ctx context.Context, stmt string) error {
	_, err := d.db.ExecContext(ctx, stmt)
	return err
}

// Ping reports whether the host connection is reachable.
func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

func (d *DB) Close() error {
	return d.db.Close()
}
