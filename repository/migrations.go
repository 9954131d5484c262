package repository

import "database/sql"

// migrate applies the schema. Statements are idempotent so the application
// can run them on every start.
func migrate(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS persons (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			phone TEXT NOT NULL UNIQUE,
			pin_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS groups (
			id TEXT PRIMARY KEY,
			code TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			amount NUMERIC(14,2) NOT NULL,
			frequency TEXT NOT NULL,
			rotation_policy TEXT NOT NULL,
			total_tours INT NOT NULL,
			start_date TIMESTAMPTZ NOT NULL,
			late_penalty_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
			grace_days INT NOT NULL DEFAULT 0,
			created_by TEXT NOT NULL REFERENCES persons(id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS memberships (
			group_id TEXT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
			person_id TEXT NOT NULL REFERENCES persons(id),
			role TEXT NOT NULL,
			joined_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (group_id, person_id)
		)`,
		`CREATE TABLE IF NOT EXISTS tours (
			id TEXT PRIMARY KEY,
			group_id TEXT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
			tour_index INT NOT NULL,
			beneficiary_id TEXT NOT NULL REFERENCES persons(id),
			scheduled_date TIMESTAMPTZ NOT NULL,
			status TEXT NOT NULL,
			expected_amount NUMERIC(14,2) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (group_id, tour_index)
		)`,
		`CREATE TABLE IF NOT EXISTS contributions (
			id TEXT PRIMARY KEY,
			group_id TEXT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
			tour_id TEXT NOT NULL REFERENCES tours(id) ON DELETE CASCADE,
			member_id TEXT NOT NULL REFERENCES persons(id),
			amount_due NUMERIC(14,2) NOT NULL,
			penalty_applied NUMERIC(14,2) NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			due_date TIMESTAMPTZ NOT NULL,
			linked_payment_id TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (tour_id, member_id)
		)`,
		// Payments and payouts are financial records: no cascade delete, they
		// must outlive the schedule entities for audit.
		`CREATE TABLE IF NOT EXISTS payments (
			id TEXT PRIMARY KEY,
			group_id TEXT NOT NULL,
			payer_id TEXT NOT NULL,
			contribution_id TEXT NOT NULL,
			amount NUMERIC(14,2) NOT NULL,
			payment_type TEXT NOT NULL,
			status TEXT NOT NULL,
			external_ref TEXT,
			notes TEXT,
			overpaid_by NUMERIC(14,2) NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS payouts (
			id TEXT PRIMARY KEY,
			tour_id TEXT NOT NULL,
			beneficiary_id TEXT NOT NULL,
			amount NUMERIC(14,2) NOT NULL,
			payout_type TEXT NOT NULL,
			status TEXT NOT NULL,
			external_ref TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		// Backstop for the payout gate: at most one non-failed payout per tour.
		`CREATE UNIQUE INDEX IF NOT EXISTS payouts_tour_unique
			ON payouts (tour_id) WHERE status <> 'FAILED'`,
		`CREATE TABLE IF NOT EXISTS delegations (
			id TEXT PRIMARY KEY,
			group_id TEXT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
			grantor_id TEXT NOT NULL REFERENCES persons(id),
			proxy_id TEXT NOT NULL REFERENCES persons(id),
			status TEXT NOT NULL,
			valid_from TIMESTAMPTZ NOT NULL,
			valid_to TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (group_id, grantor_id, proxy_id)
		)`,
		`CREATE TABLE IF NOT EXISTS join_requests (
			id TEXT PRIMARY KEY,
			group_id TEXT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
			person_id TEXT NOT NULL REFERENCES persons(id),
			status TEXT NOT NULL,
			message TEXT,
			reviewer_id TEXT,
			reviewed_at TIMESTAMPTZ,
			review_note TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		// Backstop for the workflow rule: one pending request per (group, person).
		`CREATE UNIQUE INDEX IF NOT EXISTS join_requests_pending_unique
			ON join_requests (group_id, person_id) WHERE status = 'PENDING'`,
		`CREATE INDEX IF NOT EXISTS contributions_overdue_idx
			ON contributions (status, due_date)`,
		`CREATE INDEX IF NOT EXISTS payments_external_ref_idx
			ON payments (external_ref)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
