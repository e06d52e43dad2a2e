package postgres

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileDiffsExistingMappings(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTypeStatusRepository(NewBaseRepository(db))

	// Existing: 100 active, 101 active, 102 inactive.
	// Requested: 100, 102, 103.
	// Expected: deactivate 101, reactivate 102, insert 103.
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status_id, is_active FROM communication_type_statuses")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"status_id", "is_active"}).
			AddRow(100, true).
			AddRow(101, true).
			AddRow(102, false))
	mock.ExpectExec(regexp.QuoteMeta("SET is_active = false")).
		WithArgs(int64(1), int64(101)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("SET is_active = true")).
		WithArgs(int64(1), int64(102)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO communication_type_statuses")).
		WithArgs(int64(1), int64(103)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.Reconcile(context.Background(), 1, []int64{100, 102, 103})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReconcileIdenticalSetIsNoOp(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTypeStatusRepository(NewBaseRepository(db))

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status_id, is_active FROM communication_type_statuses")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"status_id", "is_active"}).
			AddRow(100, true).
			AddRow(101, true))
	mock.ExpectCommit()

	err := repo.Reconcile(context.Background(), 1, []int64{100, 101})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReconcileEmptySetDeactivatesAll(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTypeStatusRepository(NewBaseRepository(db))

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status_id, is_active FROM communication_type_statuses")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"status_id", "is_active"}).
			AddRow(100, true))
	mock.ExpectExec(regexp.QuoteMeta("SET is_active = false")).
		WithArgs(int64(1), int64(100)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Reconcile(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsActiveMapping(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTypeStatusRepository(NewBaseRepository(db))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs(int64(1), int64(100)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.IsActiveMapping(context.Background(), 1, 100)
	require.NoError(t, err)
	assert.True(t, ok)
}
