// repository/group_repository.go
package repository

import (
	"database/sql"
	"fmt"

	"github.com/sahelpay/tontine-backend/models"
)

// GroupRepository handles database operations for groups
type GroupRepository struct {
	db *sql.DB
}

// NewGroupRepository creates a new GroupRepository
func NewGroupRepository(db *sql.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// StoreGroup saves a group and its creator's admin membership atomically
func (r *GroupRepository) StoreGroup(group *models.Group, creator *models.Membership) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO groups (id, code, name, amount, frequency, rotation_policy, total_tours,
			start_date, late_penalty_amount, grace_days, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		group.ID, group.Code, group.Name, group.Amount, group.Frequency, group.RotationPolicy,
		group.TotalTours, group.StartDate, group.LatePenaltyAmount, group.GraceDays,
		group.CreatedBy, group.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group: %v", err)
	}

	_, err = tx.Exec(
		"INSERT INTO memberships (group_id, person_id, role, joined_at) VALUES ($1, $2, $3, $4)",
		creator.GroupID, creator.PersonID, creator.Role, creator.JoinedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert creator membership: %v", err)
	}

	return tx.Commit()
}

const groupColumns = `id, code, name, amount, frequency, rotation_policy, total_tours,
	start_date, late_penalty_amount, grace_days, created_by, created_at`

// GetGroupByID retrieves a group by id; returns nil when absent
func (r *GroupRepository) GetGroupByID(id string) (*models.Group, error) {
	return scanGroup(r.db.QueryRow(
		"SELECT "+groupColumns+" FROM groups WHERE id = $1", id,
	))
}

// GetGroupByCode retrieves a group by its join code; returns nil when absent
func (r *GroupRepository) GetGroupByCode(code string) (*models.Group, error) {
	return scanGroup(r.db.QueryRow(
		"SELECT "+groupColumns+" FROM groups WHERE code = $1", code,
	))
}

// ListGroupsForPerson retrieves all groups a person is a member of
func (r *GroupRepository) ListGroupsForPerson(personID string) ([]models.Group, error) {
	rows, err := r.db.Query(
		`SELECT g.id, g.code, g.name, g.amount, g.frequency, g.rotation_policy, g.total_tours,
			g.start_date, g.late_penalty_amount, g.grace_days, g.created_by, g.created_at
		FROM groups g
		JOIN memberships m ON m.group_id = g.id
		WHERE m.person_id = $1
		ORDER BY g.created_at DESC`,
		personID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %v", err)
	}
	defer rows.Close()

	var groups []models.Group
	for rows.Next() {
		group, err := scanGroupRow(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, *group)
	}
	return groups, rows.Err()
}

func scanGroup(row *sql.Row) (*models.Group, error) {
	var g models.Group
	err := row.Scan(&g.ID, &g.Code, &g.Name, &g.Amount, &g.Frequency, &g.RotationPolicy,
		&g.TotalTours, &g.StartDate, &g.LatePenaltyAmount, &g.GraceDays, &g.CreatedBy, &g.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan group: %v", err)
	}
	return &g, nil
}

func scanGroupRow(rows *sql.Rows) (*models.Group, error) {
	var g models.Group
	err := rows.Scan(&g.ID, &g.Code, &g.Name, &g.Amount, &g.Frequency, &g.RotationPolicy,
		&g.TotalTours, &g.StartDate, &g.LatePenaltyAmount, &g.GraceDays, &g.CreatedBy, &g.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan group: %v", err)
	}
	return &g, nil
}
