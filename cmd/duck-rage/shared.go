package main

import (
	"context"
	"fmt"

	// database/sql drivers selectable via HOST_DRIVER
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"

	"github.com/duck-rage/duck-rage/internal/api"
	"github.com/duck-rage/duck-rage/internal/exec"
	"github.com/duck-rage/duck-rage/pkg/config"
)

// hostConn bundles the executor with its health and close hooks.
type hostConn struct {
	executor exec.Executor
	pinger   api.Pinger
	close    func() error
}

// openHost connects to the host database the registration statements run
// against. All executions are serialized behind a mutex regardless of the
// underlying driver.
func openHost(ctx context.Context, cfg *config.Config) (*hostConn, error) {
	switch cfg.HostDriver {
	case "pgx":
		pool, err := exec.OpenPool(ctx, cfg.HostDSN, exec.PoolConfig{
			MaxConns:          int32(cfg.PGMaxConns),
			MinConns:          int32(cfg.PGMinConns),
			MaxConnLifetime:   cfg.PGMaxConnLifetime,
			MaxConnIdleTime:   cfg.PGMaxConnIdleTime,
			HealthCheckPeriod: cfg.PGHealthCheckPeriod,
		})
		if err != nil {
			return nil, err
		}
		return &hostConn{
			executor: exec.NewLocked(pool),
			pinger:   pool,
			close:    pool.Close,
		}, nil
	case "postgres", "mysql":
		db, err := exec.OpenDB(ctx, cfg.HostDriver, cfg.HostDSN)
		if err != nil {
			return nil, err
		}
		return &hostConn{
			executor: exec.NewLocked(db),
			pinger:   db,
			close:    db.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unknown HOST_DRIVER %q (want postgres, mysql or pgx)", cfg.HostDriver)
	}
}
