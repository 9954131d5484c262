// repository/joinrequest_repository.go
package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/sahelpay/tontine-backend/models"
)

// JoinRequestRepository handles database operations for join requests
type JoinRequestRepository struct {
	db *sql.DB
}

// NewJoinRequestRepository creates a new JoinRequestRepository
func NewJoinRequestRepository(db *sql.DB) *JoinRequestRepository {
	return &JoinRequestRepository{db: db}
}

const joinRequestColumns = `id, group_id, person_id, status, COALESCE(message, ''),
	COALESCE(reviewer_id, ''), reviewed_at, COALESCE(review_note, ''), created_at`

// ErrDuplicateJoinRequest is returned when the unique index rejects a second
// pending request for the same (group, person).
var ErrDuplicateJoinRequest = fmt.Errorf("pending join request already exists")

// CreateJoinRequest saves a join request. The partial unique index on
// (group_id, person_id) is the backstop against two concurrent submissions.
func (r *JoinRequestRepository) CreateJoinRequest(jr *models.JoinRequest) error {
	_, err := r.db.Exec(
		`INSERT INTO join_requests (id, group_id, person_id, status, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		jr.ID, jr.GroupID, jr.PersonID, jr.Status, jr.Message, jr.CreatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrDuplicateJoinRequest
		}
		return fmt.Errorf("failed to insert join request: %v", err)
	}
	return nil
}

// GetJoinRequestByID retrieves a join request by id; returns nil when absent
func (r *JoinRequestRepository) GetJoinRequestByID(id string) (*models.JoinRequest, error) {
	return scanJoinRequest(r.db.QueryRow(
		"SELECT "+joinRequestColumns+" FROM join_requests WHERE id = $1", id,
	))
}

// FindPendingJoinRequest retrieves the non-terminal request for
// (group, person); returns nil when absent.
func (r *JoinRequestRepository) FindPendingJoinRequest(groupID, personID string) (*models.JoinRequest, error) {
	return scanJoinRequest(r.db.QueryRow(
		"SELECT "+joinRequestColumns+" FROM join_requests WHERE group_id = $1 AND person_id = $2 AND status = $3",
		groupID, personID, models.JoinRequestPending,
	))
}

// ListJoinRequestsByGroup retrieves all join requests for a group
func (r *JoinRequestRepository) ListJoinRequestsByGroup(groupID string) ([]models.JoinRequest, error) {
	rows, err := r.db.Query(
		"SELECT "+joinRequestColumns+" FROM join_requests WHERE group_id = $1 ORDER BY created_at DESC",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list join requests: %v", err)
	}
	defer rows.Close()

	var requests []models.JoinRequest
	for rows.Next() {
		var jr models.JoinRequest
		err := rows.Scan(&jr.ID, &jr.GroupID, &jr.PersonID, &jr.Status, &jr.Message,
			&jr.ReviewerID, &jr.ReviewedAt, &jr.ReviewNote, &jr.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan join request: %v", err)
		}
		requests = append(requests, jr)
	}
	return requests, rows.Err()
}

// ReviewJoinRequestIf records the review outcome, guarded on the request
// still being PENDING. Returns false when another reviewer got there first.
func (r *JoinRequestRepository) ReviewJoinRequestIf(id string, status models.JoinRequestStatus, reviewerID, note string, reviewedAt time.Time) (bool, error) {
	result, err := r.db.Exec(
		`UPDATE join_requests SET status = $1, reviewer_id = $2, review_note = $3, reviewed_at = $4
		WHERE id = $5 AND status = $6`,
		status, reviewerID, note, reviewedAt, id, models.JoinRequestPending,
	)
	if err != nil {
		return false, fmt.Errorf("failed to review join request: %v", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func scanJoinRequest(row *sql.Row) (*models.JoinRequest, error) {
	var jr models.JoinRequest
	err := row.Scan(&jr.ID, &jr.GroupID, &jr.PersonID, &jr.Status, &jr.Message,
		&jr.ReviewerID, &jr.ReviewedAt, &jr.ReviewNote, &jr.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan join request: %v", err)
	}
	return &jr, nil
}
