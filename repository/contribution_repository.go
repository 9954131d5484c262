// repository/contribution_repository.go
package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sahelpay/tontine-backend/models"
)

// ContributionRepository handles database operations for contributions
type ContributionRepository struct {
	db *sql.DB
}

// NewContributionRepository creates a new ContributionRepository
func NewContributionRepository(db *sql.DB) *ContributionRepository {
	return &ContributionRepository{db: db}
}

const contributionColumns = `id, group_id, tour_id, member_id, amount_due, penalty_applied,
	status, due_date, COALESCE(linked_payment_id, ''), created_at`

// GetContributionByID retrieves a contribution by id; returns nil when absent
func (r *ContributionRepository) GetContributionByID(id string) (*models.Contribution, error) {
	return scanContribution(r.db.QueryRow(
		"SELECT "+contributionColumns+" FROM contributions WHERE id = $1", id,
	))
}

// GetContributionForUpdate retrieves a contribution inside tx with a row
// lock, so concurrent settlements serialize on the same row.
func (r *ContributionRepository) GetContributionForUpdate(tx *sql.Tx, id string) (*models.Contribution, error) {
	return scanContribution(tx.QueryRow(
		"SELECT "+contributionColumns+" FROM contributions WHERE id = $1 FOR UPDATE", id,
	))
}

// ListContributionsByTour retrieves all contributions for a tour
func (r *ContributionRepository) ListContributionsByTour(tourID string) ([]models.Contribution, error) {
	rows, err := r.db.Query(
		"SELECT "+contributionColumns+" FROM contributions WHERE tour_id = $1 ORDER BY created_at, member_id",
		tourID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list contributions: %v", err)
	}
	defer rows.Close()
	return collectContributions(rows)
}

// ListContributionsByGroup retrieves all contributions for a group
func (r *ContributionRepository) ListContributionsByGroup(groupID string) ([]models.Contribution, error) {
	rows, err := r.db.Query(
		"SELECT "+contributionColumns+" FROM contributions WHERE group_id = $1 ORDER BY due_date, member_id",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list contributions: %v", err)
	}
	defer rows.Close()
	return collectContributions(rows)
}

// OverdueContribution pairs a contribution with the penalty settings of its group
type OverdueContribution struct {
	Contribution models.Contribution
	GraceDays    int
	Penalty      decimal.Decimal
}

// ListOverdueContributions retrieves open contributions whose grace period
// has elapsed as of the given date, joined with their group's penalty rules.
func (r *ContributionRepository) ListOverdueContributions(asOf time.Time) ([]OverdueContribution, error) {
	rows, err := r.db.Query(
		`SELECT c.id, c.group_id, c.tour_id, c.member_id, c.amount_due, c.penalty_applied,
			c.status, c.due_date, COALESCE(c.linked_payment_id, ''), c.created_at,
			g.grace_days, g.late_penalty_amount
		FROM contributions c
		JOIN groups g ON g.id = c.group_id
		WHERE c.status IN ($1, $2)
			AND c.due_date + (g.grace_days || ' days')::interval < $3`,
		models.ContributionDue, models.ContributionPartial, asOf,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue contributions: %v", err)
	}
	defer rows.Close()

	var overdue []OverdueContribution
	for rows.Next() {
		var o OverdueContribution
		c := &o.Contribution
		err := rows.Scan(&c.ID, &c.GroupID, &c.TourID, &c.MemberID, &c.AmountDue, &c.PenaltyApplied,
			&c.Status, &c.DueDate, &c.LinkedPaymentID, &c.CreatedAt, &o.GraceDays, &o.Penalty)
		if err != nil {
			return nil, fmt.Errorf("failed to scan overdue contribution: %v", err)
		}
		overdue = append(overdue, o)
	}
	return overdue, rows.Err()
}

// MarkLateIf flips an open contribution to LATE, applying the late penalty
// only if none has been applied yet. Re-running the sweep on an already-LATE
// row matches no rows; a row that went LATE, received a partial payment and
// is still overdue flips back to LATE without a second penalty.
func (r *ContributionRepository) MarkLateIf(contributionID string, penalty decimal.Decimal) (bool, error) {
	result, err := r.db.Exec(
		`UPDATE contributions
		SET status = $1,
			penalty_applied = CASE WHEN penalty_applied = 0 THEN $2 ELSE penalty_applied END
		WHERE id = $3 AND status IN ($4, $5)`,
		models.ContributionLate, penalty, contributionID,
		models.ContributionDue, models.ContributionPartial,
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark contribution late: %v", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// UpdateStatusTx updates a contribution's status and settling payment link
// inside a transaction.
func (r *ContributionRepository) UpdateStatusTx(tx *sql.Tx, id string, status models.ContributionStatus, linkedPaymentID string) error {
	var linked interface{}
	if linkedPaymentID != "" {
		linked = linkedPaymentID
	}
	_, err := tx.Exec(
		"UPDATE contributions SET status = $1, linked_payment_id = $2 WHERE id = $3",
		status, linked, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update contribution status: %v", err)
	}
	return nil
}

// UpdateStatus updates a contribution's status outside a transaction
func (r *ContributionRepository) UpdateStatus(id string, status models.ContributionStatus) error {
	_, err := r.db.Exec("UPDATE contributions SET status = $1 WHERE id = $2", status, id)
	if err != nil {
		return fmt.Errorf("failed to update contribution status: %v", err)
	}
	return nil
}

// SettledTotal sums the settled payment amounts recorded against a
// contribution. Runs on dbtx so the reconciler can read it under lock.
func (r *ContributionRepository) SettledTotal(dbtx DBTX, contributionID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := dbtx.QueryRow(
		"SELECT COALESCE(SUM(amount), 0) FROM payments WHERE contribution_id = $1 AND status IN ($2, $3)",
		contributionID, models.PaymentConfirmed, models.PaymentSuccess,
	).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum settled payments: %v", err)
	}
	return total, nil
}

// CollectedTotalForTour sums the amounts of PAID contributions for a tour
func (r *ContributionRepository) CollectedTotalForTour(dbtx DBTX, tourID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := dbtx.QueryRow(
		"SELECT COALESCE(SUM(amount_due), 0) FROM contributions WHERE tour_id = $1 AND status = $2",
		tourID, models.ContributionPaid,
	).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum collected contributions: %v", err)
	}
	return total, nil
}

// HasOutstandingForMember reports whether a member still owes anything in a
// group (any contribution not yet PAID or WAIVED).
func (r *ContributionRepository) HasOutstandingForMember(groupID, personID string) (bool, error) {
	var count int
	err := r.db.QueryRow(
		"SELECT COUNT(*) FROM contributions WHERE group_id = $1 AND member_id = $2 AND status NOT IN ($3, $4)",
		groupID, personID, models.ContributionPaid, models.ContributionWaived,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to count outstanding contributions: %v", err)
	}
	return count > 0, nil
}

func scanContribution(row *sql.Row) (*models.Contribution, error) {
	var c models.Contribution
	err := row.Scan(&c.ID, &c.GroupID, &c.TourID, &c.MemberID, &c.AmountDue, &c.PenaltyApplied,
		&c.Status, &c.DueDate, &c.LinkedPaymentID, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan contribution: %v", err)
	}
	return &c, nil
}

func collectContributions(rows *sql.Rows) ([]models.Contribution, error) {
	var contributions []models.Contribution
	for rows.Next() {
		var c models.Contribution
		err := rows.Scan(&c.ID, &c.GroupID, &c.TourID, &c.MemberID, &c.AmountDue, &c.PenaltyApplied,
			&c.Status, &c.DueDate, &c.LinkedPaymentID, &c.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contribution: %v", err)
		}
		contributions = append(contributions, c)
	}
	return contributions, rows.Err()
}
