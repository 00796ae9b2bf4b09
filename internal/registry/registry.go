// Package registry holds the named table-shaped operations a host can call.
//
// The calling protocol mirrors a pull-based table function: Bind is called
// once with positional string arguments, then NextBatch is polled until it
// returns an empty batch.
package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Function is a callable table-shaped operation.
type Function interface {
	Name() string
	Columns() []string
	// Bind validates arguments and returns a Cursor for one logical call.
	Bind(ctx context.Context, args []string) (Cursor, error)
}

// Cursor produces the result rows of one call. NextBatch may be polled any
// number of times, from any goroutine; an empty batch signals exhaustion.
type Cursor interface {
	NextBatch(ctx context.Context) ([][]string, error)
}

// Registry maps operation names to Functions.
type Registry struct {
	mu  sync.RWMutex
	fns map[string]Function
}

func New() *Registry {
	return &Registry{fns: make(map[string]Function)}
}

// Register adds a Function under its name. Registering the same name twice
// is a programming error; startup treats it as fatal.
func (r *Registry) Register(fn Function) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.fns[fn.Name()]; exists {
		return fmt.Errorf("function %q already registered", fn.Name())
	}
	r.fns[fn.Name()] = fn
	return nil
}

// Lookup returns the Function registered under name.
func (r *Registry) Lookup(name string) (Function, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.fns[name]
	return fn, ok
}

// Names returns the registered function names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.fns))
	for name := range r.fns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Drain runs one full call: bind once, then poll until the cursor reports
// no more rows. A failed poll aborts the call; rows already produced are
// not retracted.
func Drain(ctx context.Context, fn Function, args []string) ([][]string, error) {
	cursor, err := fn.Bind(ctx, args)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	for {
		batch, err := cursor.NextBatch(ctx)
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			return rows, nil
		}
		rows = append(rows, batch...)
	}
}
