// repository/membership_repository.go
package repository

import (
	"database/sql"
	"fmt"

	"github.com/sahelpay/tontine-backend/models"
)

// MembershipRepository handles database operations for memberships
type MembershipRepository struct {
	db *sql.DB
}

// NewMembershipRepository creates a new MembershipRepository
func NewMembershipRepository(db *sql.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

// CreateMembership saves a membership
func (r *MembershipRepository) CreateMembership(m *models.Membership) error {
	_, err := r.db.Exec(
		"INSERT INTO memberships (group_id, person_id, role, joined_at) VALUES ($1, $2, $3, $4)",
		m.GroupID, m.PersonID, m.Role, m.JoinedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert membership: %v", err)
	}
	return nil
}

// GetMembership retrieves the membership for (group, person); returns nil when absent
func (r *MembershipRepository) GetMembership(groupID, personID string) (*models.Membership, error) {
	var m models.Membership
	err := r.db.QueryRow(
		"SELECT group_id, person_id, role, joined_at FROM memberships WHERE group_id = $1 AND person_id = $2",
		groupID, personID,
	).Scan(&m.GroupID, &m.PersonID, &m.Role, &m.JoinedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan membership: %v", err)
	}
	return &m, nil
}

// ListMembershipsByGroup retrieves a group's memberships in join order
func (r *MembershipRepository) ListMembershipsByGroup(groupID string) ([]models.Membership, error) {
	rows, err := r.db.Query(
		"SELECT group_id, person_id, role, joined_at FROM memberships WHERE group_id = $1 ORDER BY joined_at, person_id",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %v", err)
	}
	defer rows.Close()

	var memberships []models.Membership
	for rows.Next() {
		var m models.Membership
		if err := rows.Scan(&m.GroupID, &m.PersonID, &m.Role, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan membership: %v", err)
		}
		memberships = append(memberships, m)
	}
	return memberships, rows.Err()
}

// CountByGroup returns the number of members in a group
func (r *MembershipRepository) CountByGroup(groupID string) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM memberships WHERE group_id = $1", groupID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count memberships: %v", err)
	}
	return count, nil
}

// DeleteMembership removes a membership
func (r *MembershipRepository) DeleteMembership(groupID, personID string) error {
	_, err := r.db.Exec(
		"DELETE FROM memberships WHERE group_id = $1 AND person_id = $2",
		groupID, personID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete membership: %v", err)
	}
	return nil
}
