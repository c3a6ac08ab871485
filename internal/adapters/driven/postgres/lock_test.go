package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvisoryLock_AcquireRelease(t *testing.T) {
	db, mock := newMockDB(t)
	lock := NewAdvisoryLock(db)
	ctx := context.Background()
	key := hashLockName("sync:standards")

	mock.ExpectQuery(q("SELECT pg_try_advisory_lock($1)")).
		WithArgs(key).
		WillReturnRows(sqlmock.NewRows([]string{"pg_try_advisory_lock"}).AddRow(true))

	acquired, err := lock.Acquire(ctx, "sync:standards", time.Minute)
	require.NoError(t, err)
	assert.True(t, acquired)

	// Second acquire from this process is refused without a round trip
	acquired, err = lock.Acquire(ctx, "sync:standards", time.Minute)
	require.NoError(t, err)
	assert.False(t, acquired)

	mock.ExpectQuery(q("SELECT pg_advisory_unlock($1)")).
		WithArgs(key).
		WillReturnRows(sqlmock.NewRows([]string{"pg_advisory_unlock"}).AddRow(true))
	require.NoError(t, lock.Release(ctx, "sync:standards"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdvisoryLock_HeldElsewhere(t *testing.T) {
	db, mock := newMockDB(t)
	lock := NewAdvisoryLock(db)

	mock.ExpectQuery(q("SELECT pg_try_advisory_lock($1)")).
		WillReturnRows(sqlmock.NewRows([]string{"pg_try_advisory_lock"}).AddRow(false))

	acquired, err := lock.Acquire(context.Background(), "sync:benchmark", time.Minute)
	require.NoError(t, err)
	assert.False(t, acquired)

	// Not held here, so no unlock query
	require.NoError(t, lock.Release(context.Background(), "sync:benchmark"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHashLockName(t *testing.T) {
	assert.Equal(t, hashLockName("sync:standards"), hashLockName("sync:standards"))
	assert.NotEqual(t, hashLockName("sync:standards"), hashLockName("sync:benchmark"))
}
