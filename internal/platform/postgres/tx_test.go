package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Apurer/pet-adoption-api/internal/shared/txn"
)

func newMockGorm(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), Config())
	require.NoError(t, err)
	return db, mock
}

func TestTransactor_CommitsOnSuccess(t *testing.T) {
	db, mock := newMockGorm(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	tx := NewTransactor(db)
	var inner *gorm.DB
	err := tx.WithinTx(context.Background(), func(ctx context.Context) error {
		inner = Conn(ctx, db)
		return tx.WithinTx(ctx, func(context.Context) error { return nil })
	})
	require.NoError(t, err)
	require.NotNil(t, inner)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactor_RollsBackOnError(t *testing.T) {
	db, mock := newMockGorm(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := NewTransactor(db).WithinTx(context.Background(), func(context.Context) error { return boom })
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactor_ReportsRollback(t *testing.T) {
	require.True(t, txn.RollsBack(NewTransactor(nil)))
	require.Error(t, NewTransactor(nil).WithinTx(context.Background(), func(context.Context) error { return nil }))
}
