// repository/payout_repository.go
package repository

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/sahelpay/tontine-backend/models"
)

// PayoutRepository handles database operations for payouts
type PayoutRepository struct {
	db *sql.DB
}

// NewPayoutRepository creates a new PayoutRepository
func NewPayoutRepository(db *sql.DB) *PayoutRepository {
	return &PayoutRepository{db: db}
}

const payoutColumns = `id, tour_id, beneficiary_id, amount, payout_type, status,
	COALESCE(external_ref, ''), created_at`

// ErrDuplicatePayout is returned when the unique index rejects a second
// payout for the same tour.
var ErrDuplicatePayout = fmt.Errorf("payout already exists for tour")

// CreatePayout inserts a payout inside tx. The partial unique index on
// tour_id is the backstop against two concurrent payout requests.
func (r *PayoutRepository) CreatePayout(tx *sql.Tx, p *models.Payout) error {
	var externalRef interface{}
	if p.ExternalRef != "" {
		externalRef = p.ExternalRef
	}
	_, err := tx.Exec(
		`INSERT INTO payouts (id, tour_id, beneficiary_id, amount, payout_type, status, external_ref, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.TourID, p.BeneficiaryID, p.Amount, p.Type, p.Status, externalRef, p.CreatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrDuplicatePayout
		}
		return fmt.Errorf("failed to insert payout: %v", err)
	}
	return nil
}

// GetPayoutByTour retrieves the non-failed payout for a tour; returns nil
// when absent.
func (r *PayoutRepository) GetPayoutByTour(dbtx DBTX, tourID string) (*models.Payout, error) {
	return scanPayout(dbtx.QueryRow(
		"SELECT "+payoutColumns+" FROM payouts WHERE tour_id = $1 AND status <> $2",
		tourID, models.PaymentFailed,
	))
}

// GetPendingPayoutByExternalRef retrieves the pending payout carrying the
// given gateway reference; returns nil when absent.
func (r *PayoutRepository) GetPendingPayoutByExternalRef(externalRef string) (*models.Payout, error) {
	return scanPayout(r.db.QueryRow(
		"SELECT "+payoutColumns+" FROM payouts WHERE external_ref = $1 AND status = $2",
		externalRef, models.PaymentPending,
	))
}

// UpdatePayoutStatusIf transitions a payout's status only if it still holds
// the expected current status. Returns false when another caller resolved
// the payout first.
func (r *PayoutRepository) UpdatePayoutStatusIf(id string, from, to models.PaymentStatus) (bool, error) {
	result, err := r.db.Exec(
		"UPDATE payouts SET status = $1 WHERE id = $2 AND status = $3",
		to, id, from,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update payout status: %v", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func scanPayout(row *sql.Row) (*models.Payout, error) {
	var p models.Payout
	err := row.Scan(&p.ID, &p.TourID, &p.BeneficiaryID, &p.Amount, &p.Type, &p.Status,
		&p.ExternalRef, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan payout: %v", err)
	}
	return &p, nil
}
