package database

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trogers1052/finance-tracker-system/internal/models"
)

func TestCreateInstallments_Success(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db := &DB{conn: sqlDB}

	installments := []models.Installment{
		{ObligationID: 3, Month: 1, Amount: decimal.NewFromInt(1000)},
		{ObligationID: 3, Month: 2, Amount: decimal.NewFromInt(1000)},
	}

	mock.ExpectBegin()

	// One insert per installment.
	mock.ExpectQuery("INSERT INTO installments").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectQuery("INSERT INTO installments").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(12))

	mock.ExpectCommit()
	// CreateInstallments defers tx.Rollback(), but database/sql short-circuits Rollback after Commit,
	// so the underlying driver rollback is not executed (and sqlmock won't observe it).

	err = db.CreateInstallments(installments)
	require.NoError(t, err)

	assert.Equal(t, 11, installments[0].ID)
	assert.Equal(t, 12, installments[1].ID)
	assert.False(t, installments[0].CreatedAt.IsZero())
	assert.False(t, installments[1].CreatedAt.IsZero())

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateInstallments_ReturnsErrorIfBeginFails(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db := &DB{conn: sqlDB}

	mock.ExpectBegin().WillReturnError(errors.New("begin failed"))

	err = db.CreateInstallments([]models.Installment{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to begin transaction")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateInstallments_RollsBackOnInsertFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db := &DB{conn: sqlDB}

	installments := []models.Installment{
		{ObligationID: 3, Month: 1, Amount: decimal.NewFromInt(1000)},
		{ObligationID: 3, Month: 2, Amount: decimal.NewFromInt(1000)},
	}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO installments").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectQuery("INSERT INTO installments").WillReturnError(errors.New("insert failed"))
	mock.ExpectRollback()

	err = db.CreateInstallments(installments)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create installment 2")

	require.NoError(t, mock.ExpectationsWereMet())
}
