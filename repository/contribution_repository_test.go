package repository

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMarkLateIf_PenaltyAppliedOnce(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := NewContributionRepository(mockDB)
	penalty := decimal.NewFromInt(500)

	mock.ExpectExec(`CASE WHEN penalty_applied = 0 THEN \$2 ELSE penalty_applied END`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	ok, err := repo.MarkLateIf("con-1", penalty)
	assert.NoError(t, err)
	assert.True(t, ok)

	// Re-running the sweep on a row that is already LATE matches nothing,
	// so the penalty cannot stack.
	mock.ExpectExec(`CASE WHEN penalty_applied = 0 THEN \$2 ELSE penalty_applied END`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	ok, err = repo.MarkLateIf("con-1", penalty)
	assert.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}
