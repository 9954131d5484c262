package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/sahelpay/tontine-backend/models"
)

func TestCreateJoinRequest_SecondPendingRejected(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := NewJoinRequestRepository(mockDB)

	// The partial unique index on (group_id, person_id) fires when a second
	// pending request races past the service-level check.
	mock.ExpectExec(`INSERT INTO join_requests`).
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.CreateJoinRequest(&models.JoinRequest{
		ID:        "jr-2",
		GroupID:   "grp-1",
		PersonID:  "idrissa",
		Status:    models.JoinRequestPending,
		CreatedAt: time.Now(),
	})
	assert.True(t, errors.Is(err, ErrDuplicateJoinRequest))
	assert.NoError(t, mock.ExpectationsWereMet())
}
