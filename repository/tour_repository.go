// repository/tour_repository.go
package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/sahelpay/tontine-backend/models"
)

// TourRepository handles database operations for tours
type TourRepository struct {
	db *sql.DB
}

// NewTourRepository creates a new TourRepository
func NewTourRepository(db *sql.DB) *TourRepository {
	return &TourRepository{db: db}
}

// StoreGeneratedTours persists a full tour schedule and its contribution
// obligations in one transaction.
func (r *TourRepository) StoreGeneratedTours(tours []models.Tour, contributions []models.Contribution) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	for _, tour := range tours {
		_, err = tx.Exec(
			`INSERT INTO tours (id, group_id, tour_index, beneficiary_id, scheduled_date, status, expected_amount, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			tour.ID, tour.GroupID, tour.Index, tour.BeneficiaryID, tour.ScheduledDate,
			tour.Status, tour.ExpectedAmount, tour.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert tour %d: %v", tour.Index, err)
		}
	}

	for _, c := range contributions {
		_, err = tx.Exec(
			`INSERT INTO contributions (id, group_id, tour_id, member_id, amount_due, penalty_applied, status, due_date, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			c.ID, c.GroupID, c.TourID, c.MemberID, c.AmountDue, c.PenaltyApplied,
			c.Status, c.DueDate, c.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert contribution: %v", err)
		}
	}

	return tx.Commit()
}

const tourColumns = "id, group_id, tour_index, beneficiary_id, scheduled_date, status, expected_amount, created_at"

// CountByGroup returns the number of tours already generated for a group
func (r *TourRepository) CountByGroup(groupID string) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM tours WHERE group_id = $1", groupID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count tours: %v", err)
	}
	return count, nil
}

// GetTourByID retrieves a tour by id; returns nil when absent
func (r *TourRepository) GetTourByID(id string) (*models.Tour, error) {
	return scanTour(r.db.QueryRow("SELECT "+tourColumns+" FROM tours WHERE id = $1", id))
}

// GetTourForUpdate retrieves a tour inside tx with a row lock
func (r *TourRepository) GetTourForUpdate(tx *sql.Tx, id string) (*models.Tour, error) {
	return scanTour(tx.QueryRow("SELECT "+tourColumns+" FROM tours WHERE id = $1 FOR UPDATE", id))
}

// ListToursByGroup retrieves a group's tours ordered by index
func (r *TourRepository) ListToursByGroup(groupID string) ([]models.Tour, error) {
	rows, err := r.db.Query(
		"SELECT "+tourColumns+" FROM tours WHERE group_id = $1 ORDER BY tour_index", groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tours: %v", err)
	}
	defer rows.Close()
	return collectTours(rows)
}

// ListToursDueForStart retrieves SCHEDULED tours whose date has been reached
func (r *TourRepository) ListToursDueForStart(asOf time.Time) ([]models.Tour, error) {
	rows, err := r.db.Query(
		"SELECT "+tourColumns+" FROM tours WHERE status = $1 AND scheduled_date <= $2",
		models.TourScheduled, asOf,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list startable tours: %v", err)
	}
	defer rows.Close()
	return collectTours(rows)
}

// UpdateStatusIf transitions a tour's status only if it still holds the
// expected current status. Returns false when the guard did not match.
func (r *TourRepository) UpdateStatusIf(dbtx DBTX, tourID string, from, to models.TourStatus) (bool, error) {
	result, err := dbtx.Exec(
		"UPDATE tours SET status = $1 WHERE id = $2 AND status = $3",
		to, tourID, from,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update tour status: %v", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// BeneficiaryReassignment pairs a tour with its new beneficiary
type BeneficiaryReassignment struct {
	TourID        string
	BeneficiaryID string
}

// ReassignBeneficiaries applies a set of beneficiary changes in one
// transaction; either the whole reorder lands or none of it does.
func (r *TourRepository) ReassignBeneficiaries(changes []BeneficiaryReassignment) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	for _, change := range changes {
		_, err := tx.Exec(
			"UPDATE tours SET beneficiary_id = $1 WHERE id = $2",
			change.BeneficiaryID, change.TourID,
		)
		if err != nil {
			return fmt.Errorf("failed to update tour beneficiary: %v", err)
		}
	}
	return tx.Commit()
}

func scanTour(row *sql.Row) (*models.Tour, error) {
	var t models.Tour
	err := row.Scan(&t.ID, &t.GroupID, &t.Index, &t.BeneficiaryID, &t.ScheduledDate,
		&t.Status, &t.ExpectedAmount, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan tour: %v", err)
	}
	return &t, nil
}

func collectTours(rows *sql.Rows) ([]models.Tour, error) {
	var tours []models.Tour
	for rows.Next() {
		var t models.Tour
		err := rows.Scan(&t.ID, &t.GroupID, &t.Index, &t.BeneficiaryID, &t.ScheduledDate,
			&t.Status, &t.ExpectedAmount, &t.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tour: %v", err)
		}
		tours = append(tours, t)
	}
	return tours, rows.Err()
}
