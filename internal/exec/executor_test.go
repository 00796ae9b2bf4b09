package exec

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDB_Execute(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE OR REPLACE SECRET duck_rage_orders").
		WillReturnResult(sqlmock.NewResult(0, 0))

	executor := NewDB(db)
	err = executor.Execute(context.Background(),
		"CREATE OR REPLACE SECRET duck_rage_orders ( TYPE postgres, HOST 'h', PORT 5432, DATABASE 'orders', USER 'u', PASSWORD 'p' )")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_ExecuteError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE OR REPLACE SECRET").
		WillReturnError(errors.New("syntax error"))

	executor := NewDB(db)
	err = executor.Execute(context.Background(), "CREATE OR REPLACE SECRET broken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "syntax error")
}

func TestDB_ExecutesEachStatementOnce(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("SECRET duck_rage_a").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("SECRET duck_rage_b").WillReturnResult(sqlmock.NewResult(0, 0))

	executor := NewDB(db)
	require.NoError(t, executor.Execute(context.Background(), "CREATE OR REPLACE SECRET duck_rage_a ( )"))
	require.NoError(t, executor.Execute(context.Background(), "CREATE OR REPLACE SECRET duck_rage_b ( )"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// overlapExecutor flags any concurrent entry into Execute.
type overlapExecutor struct {
	inside   atomic.Int32
	overlaps atomic.Int32
}

func (o *overlapExecutor) Execute(_ context.Context, _ string) error {
	if o.inside.Add(1) > 1 {
		o.overlaps.Add(1)
	}
	time.Sleep(time.Millisecond)
	o.inside.Add(-1)
	return nil
}

func TestLocked_SerializesExecutions(t *testing.T) {
	inner := &overlapExecutor{}
	locked := NewLocked(inner)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = locked.Execute(context.Background(), "stmt")
		}()
	}
	wg.Wait()

	assert.Zero(t, inner.overlaps.Load(), "no two statements may run concurrently")
}

func TestShared_SetOnce(t *testing.T) {
	_, err := Shared()
	assert.ErrorIs(t, err, ErrNoShared)

	first := &overlapExecutor{}
	SetShared(first)
	got, err := Shared()
	require.NoError(t, err)
	assert.Same(t, first, got)

	// a second install is ignored
	SetShared(&overlapExecutor{})
	got, err = Shared()
	require.NoError(t, err)
	assert.Same(t, first, got)
}
