// repository/delegation_repository.go
package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/sahelpay/tontine-backend/models"
)

// DelegationRepository handles database operations for delegations
type DelegationRepository struct {
	db *sql.DB
}

// NewDelegationRepository creates a new DelegationRepository
func NewDelegationRepository(db *sql.DB) *DelegationRepository {
	return &DelegationRepository{db: db}
}

const delegationColumns = "id, group_id, grantor_id, proxy_id, status, valid_from, valid_to, created_at"

// CreateDelegation saves a delegation
func (r *DelegationRepository) CreateDelegation(d *models.Delegation) error {
	_, err := r.db.Exec(
		`INSERT INTO delegations (id, group_id, grantor_id, proxy_id, status, valid_from, valid_to, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		d.ID, d.GroupID, d.GrantorID, d.ProxyID, d.Status, d.ValidFrom, d.ValidTo, d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert delegation: %v", err)
	}
	return nil
}

// GetDelegationByID retrieves a delegation by id; returns nil when absent
func (r *DelegationRepository) GetDelegationByID(id string) (*models.Delegation, error) {
	return scanDelegation(r.db.QueryRow(
		"SELECT "+delegationColumns+" FROM delegations WHERE id = $1", id,
	))
}

// GetDelegation retrieves the delegation for (group, grantor, proxy);
// returns nil when absent.
func (r *DelegationRepository) GetDelegation(groupID, grantorID, proxyID string) (*models.Delegation, error) {
	return scanDelegation(r.db.QueryRow(
		"SELECT "+delegationColumns+" FROM delegations WHERE group_id = $1 AND grantor_id = $2 AND proxy_id = $3",
		groupID, grantorID, proxyID,
	))
}

// FindActiveDelegation retrieves the approved delegation covering the given
// date for a grantor in a group; returns nil when none applies.
func (r *DelegationRepository) FindActiveDelegation(groupID, grantorID string, onDate time.Time) (*models.Delegation, error) {
	return scanDelegation(r.db.QueryRow(
		`SELECT `+delegationColumns+` FROM delegations
		WHERE group_id = $1 AND grantor_id = $2 AND status = $3
			AND valid_from <= $4 AND valid_to >= $4
		ORDER BY created_at DESC LIMIT 1`,
		groupID, grantorID, models.DelegationApproved, onDate,
	))
}

// ListDelegationsByGroup retrieves all delegations for a group
func (r *DelegationRepository) ListDelegationsByGroup(groupID string) ([]models.Delegation, error) {
	rows, err := r.db.Query(
		"SELECT "+delegationColumns+" FROM delegations WHERE group_id = $1 ORDER BY created_at DESC",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list delegations: %v", err)
	}
	defer rows.Close()

	var delegations []models.Delegation
	for rows.Next() {
		var d models.Delegation
		err := rows.Scan(&d.ID, &d.GroupID, &d.GrantorID, &d.ProxyID, &d.Status,
			&d.ValidFrom, &d.ValidTo, &d.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan delegation: %v", err)
		}
		delegations = append(delegations, d)
	}
	return delegations, rows.Err()
}

// UpdateDelegationStatusIf transitions a delegation's status only if it
// still holds the expected current status.
func (r *DelegationRepository) UpdateDelegationStatusIf(id string, from, to models.DelegationStatus) (bool, error) {
	result, err := r.db.Exec(
		"UPDATE delegations SET status = $1 WHERE id = $2 AND status = $3",
		to, id, from,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update delegation status: %v", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// RevokeExpiredDelegations revokes approved delegations whose validity
// window has ended. Status-guarded, so re-running is a no-op.
func (r *DelegationRepository) RevokeExpiredDelegations(asOf time.Time) (int64, error) {
	result, err := r.db.Exec(
		"UPDATE delegations SET status = $1 WHERE status = $2 AND valid_to < $3",
		models.DelegationRevoked, models.DelegationApproved, asOf,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke expired delegations: %v", err)
	}
	return result.RowsAffected()
}

func scanDelegation(row *sql.Row) (*models.Delegation, error) {
	var d models.Delegation
	err := row.Scan(&d.ID, &d.GroupID, &d.GrantorID, &d.ProxyID, &d.Status,
		&d.ValidFrom, &d.ValidTo, &d.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan delegation: %v", err)
	}
	return &d, nil
}
