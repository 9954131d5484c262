package repository

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/sahelpay/tontine-backend/models"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	assert.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return mockDB, mock
}

func TestCreatePayout_SecondPayoutForTourRejected(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := NewPayoutRepository(mockDB)

	mock.ExpectBegin()
	// The partial unique index on tour_id fires for the second insert.
	mock.ExpectExec(`INSERT INTO payouts`).
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	tx, err := mockDB.Begin()
	assert.NoError(t, err)

	err = repo.CreatePayout(tx, &models.Payout{
		ID:            "po-2",
		TourID:        "tour-1",
		BeneficiaryID: "fatou",
		Amount:        decimal.NewFromInt(25000),
		Type:          models.PaymentCash,
		Status:        models.PaymentPending,
		CreatedAt:     time.Now(),
	})
	assert.True(t, errors.Is(err, ErrDuplicatePayout))

	assert.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePayoutStatusIf(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := NewPayoutRepository(mockDB)

	mock.ExpectExec(`UPDATE payouts SET status = \$1 WHERE id = \$2 AND status = \$3`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	ok, err := repo.UpdatePayoutStatusIf("po-1", models.PaymentPending, models.PaymentSuccess)
	assert.NoError(t, err)
	assert.True(t, ok)

	// Already resolved: the status guard matches no row, so a late FAILED
	// cannot overwrite SUCCESS.
	mock.ExpectExec(`UPDATE payouts SET status = \$1 WHERE id = \$2 AND status = \$3`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	ok, err = repo.UpdatePayoutStatusIf("po-1", models.PaymentPending, models.PaymentFailed)
	assert.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}
