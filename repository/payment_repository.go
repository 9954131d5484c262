// repository/payment_repository.go
package repository

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/sahelpay/tontine-backend/models"
)

// PaymentRepository handles database operations for payments
type PaymentRepository struct {
	db *sql.DB
}

// NewPaymentRepository creates a new PaymentRepository
func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

const paymentColumns = `id, group_id, payer_id, contribution_id, amount, payment_type, status,
	COALESCE(external_ref, ''), COALESCE(notes, ''), overpaid_by, created_at`

// CreatePayment inserts a payment record. Accepts a DBTX so the reconciler
// can insert inside its settlement transaction.
func (r *PaymentRepository) CreatePayment(dbtx DBTX, p *models.Payment) error {
	var externalRef interface{}
	if p.ExternalRef != "" {
		externalRef = p.ExternalRef
	}
	_, err := dbtx.Exec(
		`INSERT INTO payments (id, group_id, payer_id, contribution_id, amount, payment_type,
			status, external_ref, notes, overpaid_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		p.ID, p.GroupID, p.PayerID, p.ContributionID, p.Amount, p.Type,
		p.Status, externalRef, p.Notes, p.OverpaidBy, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %v", err)
	}
	return nil
}

// GetPaymentByID retrieves a payment by id; returns nil when absent
func (r *PaymentRepository) GetPaymentByID(id string) (*models.Payment, error) {
	return scanPayment(r.db.QueryRow(
		"SELECT "+paymentColumns+" FROM payments WHERE id = $1", id,
	))
}

// GetPendingPaymentByExternalRef retrieves the pending payment carrying the
// given gateway reference; returns nil when absent.
func (r *PaymentRepository) GetPendingPaymentByExternalRef(externalRef string) (*models.Payment, error) {
	return scanPayment(r.db.QueryRow(
		"SELECT "+paymentColumns+" FROM payments WHERE external_ref = $1 AND status = $2",
		externalRef, models.PaymentPending,
	))
}

// GetPaymentForUpdate retrieves a payment inside tx with a row lock
func (r *PaymentRepository) GetPaymentForUpdate(tx *sql.Tx, id string) (*models.Payment, error) {
	return scanPayment(tx.QueryRow(
		"SELECT "+paymentColumns+" FROM payments WHERE id = $1 FOR UPDATE", id,
	))
}

// UpdatePaymentStatus updates a payment's status, notes and overpayment flag
func (r *PaymentRepository) UpdatePaymentStatus(dbtx DBTX, id string, status models.PaymentStatus, notes string, overpaidBy decimal.Decimal) error {
	_, err := dbtx.Exec(
		"UPDATE payments SET status = $1, notes = $2, overpaid_by = $3 WHERE id = $4",
		status, notes, overpaidBy, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update payment status: %v", err)
	}
	return nil
}

// ListPaymentsByContribution retrieves all payments against a contribution
func (r *PaymentRepository) ListPaymentsByContribution(contributionID string) ([]models.Payment, error) {
	rows, err := r.db.Query(
		"SELECT "+paymentColumns+" FROM payments WHERE contribution_id = $1 ORDER BY created_at",
		contributionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %v", err)
	}
	defer rows.Close()
	return collectPayments(rows)
}

// ListPaymentsByGroup retrieves all payments for a group, newest first
func (r *PaymentRepository) ListPaymentsByGroup(groupID string) ([]models.Payment, error) {
	rows, err := r.db.Query(
		"SELECT "+paymentColumns+" FROM payments WHERE group_id = $1 ORDER BY created_at DESC",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %v", err)
	}
	defer rows.Close()
	return collectPayments(rows)
}

func scanPayment(row *sql.Row) (*models.Payment, error) {
	var p models.Payment
	err := row.Scan(&p.ID, &p.GroupID, &p.PayerID, &p.ContributionID, &p.Amount, &p.Type,
		&p.Status, &p.ExternalRef, &p.Notes, &p.OverpaidBy, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan payment: %v", err)
	}
	return &p, nil
}

func collectPayments(rows *sql.Rows) ([]models.Payment, error) {
	var payments []models.Payment
	for rows.Next() {
		var p models.Payment
		err := rows.Scan(&p.ID, &p.GroupID, &p.PayerID, &p.ContributionID, &p.Amount, &p.Type,
			&p.Status, &p.ExternalRef, &p.Notes, &p.OverpaidBy, &p.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %v", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
