// Package exec runs registration statements against the host connection.
package exec

import (
	"context"
	"errors"
	"sync"
)

// Executor runs a single SQL statement against the host connection.
// Implementations do not interpret the statement.
type Executor interface {
	Execute(ctx context.Context, sql string) error
}

// Locked serializes every execution behind a mutex so no two statements run
// concurrently on the same underlying connection.
type Locked struct {
	mu    sync.Mutex
	inner Executor
}

// NewLocked wraps an Executor with mutual exclusion.
func NewLocked(inner Executor) *Locked {
	return &Locked{inner: inner}
}

func (l *Locked) Execute(ctx context.Context, sql string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inner.Execute(ctx, sql)
}

var (
	sharedMu sync.Mutex
	shared   Executor
)

// ErrNoShared is returned by Shared when no host connection was registered.
var ErrNoShared = errors.New("host connection not initialised")

// SetShared installs the process-wide host executor. It is called once at
// startup by the composition root; later calls are ignored so a live handle
// cannot be swapped mid-flight.
func SetShared(e Executor) {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	if shared == nil {
		shared = e
	}
}

// Shared returns the process-wide host executor.
func Shared() (Executor, error) {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	if shared == nil {
		return nil, ErrNoShared
	}
	return shared, nil
}
