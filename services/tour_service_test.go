package services

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/sahelpay/tontine-backend/models"
	"github.com/sahelpay/tontine-backend/repository"
	"github.com/sahelpay/tontine-backend/utils"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestScheduledDateFor_Monthly(t *testing.T) {
	start := date(2025, time.January, 1)

	assert.Equal(t, date(2025, time.January, 1), ScheduledDateFor(start, models.FrequencyMonthly, 1))
	assert.Equal(t, date(2025, time.February, 1), ScheduledDateFor(start, models.FrequencyMonthly, 2))
	assert.Equal(t, date(2025, time.March, 1), ScheduledDateFor(start, models.FrequencyMonthly, 3))
	assert.Equal(t, date(2025, time.December, 1), ScheduledDateFor(start, models.FrequencyMonthly, 12))
	assert.Equal(t, date(2026, time.January, 1), ScheduledDateFor(start, models.FrequencyMonthly, 13))
}

func TestScheduledDateFor_Weekly(t *testing.T) {
	start := date(2025, time.January, 6)

	assert.Equal(t, date(2025, time.January, 6), ScheduledDateFor(start, models.FrequencyWeekly, 1))
	assert.Equal(t, date(2025, time.January, 13), ScheduledDateFor(start, models.FrequencyWeekly, 2))
	assert.Equal(t, date(2025, time.February, 3), ScheduledDateFor(start, models.FrequencyWeekly, 5))
}

func TestScheduledDateFor_Biweekly(t *testing.T) {
	start := date(2025, time.January, 6)

	assert.Equal(t, date(2025, time.January, 6), ScheduledDateFor(start, models.FrequencyBiweekly, 1))
	assert.Equal(t, date(2025, time.January, 20), ScheduledDateFor(start, models.FrequencyBiweekly, 2))
	assert.Equal(t, date(2025, time.March, 3), ScheduledDateFor(start, models.FrequencyBiweekly, 5))
}

func TestScheduledDateFor_MonthlyEndOfMonthNormalizes(t *testing.T) {
	// Go normalizes Jan 31 + 1 month to March 3 (or 2 in leap years); the
	// schedule stays monotonic either way.
	start := date(2025, time.January, 31)
	second := ScheduledDateFor(start, models.FrequencyMonthly, 2)
	third := ScheduledDateFor(start, models.FrequencyMonthly, 3)
	assert.True(t, second.After(start))
	assert.True(t, third.After(second))
}

func newTestTourService(db *sql.DB) *TourService {
	return NewTourService(
		NewRotationService(),
		repository.NewGroupRepository(db),
		repository.NewMembershipRepository(db),
		repository.NewTourRepository(db),
		repository.NewContributionRepository(db),
		NewLogNotifier(),
		NewLogAuditSink(),
	)
}

var (
	groupCols = []string{"id", "code", "name", "amount", "frequency", "rotation_policy",
		"total_tours", "start_date", "late_penalty_amount", "grace_days", "created_by", "created_at"}
	tourCols = []string{"id", "group_id", "tour_index", "beneficiary_id", "scheduled_date",
		"status", "expected_amount", "created_at"}
)

func TestGenerateTours_SecondGenerationConflicts(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newTestTourService(db)
	now := time.Now()

	mock.ExpectQuery(`FROM groups WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows(groupCols).
			AddRow("grp-1", "TNT001", "Tontine du marché", "5000", "MONTHLY", "SEQUENTIAL",
				3, now, "0", 0, "awa", now))
	mock.ExpectQuery(`FROM memberships WHERE group_id = \$1 AND person_id = \$2`).
		WillReturnRows(sqlmock.NewRows(membershipCols).
			AddRow("grp-1", "awa", "ADMIN", now))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM tours WHERE group_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	_, err := svc.GenerateTours("grp-1", "awa", nil)
	assert.True(t, utils.IsKind(err, utils.KindConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReorganizeTours_AppliesInOneTransaction(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newTestTourService(db)
	now := time.Now()

	mock.ExpectQuery(`FROM memberships WHERE group_id = \$1 AND person_id = \$2`).
		WillReturnRows(sqlmock.NewRows(membershipCols).
			AddRow("grp-1", "awa", "ADMIN", now))
	mock.ExpectQuery(`FROM tours WHERE group_id = \$1 ORDER BY tour_index`).
		WillReturnRows(sqlmock.NewRows(tourCols).
			AddRow("tour-1", "grp-1", 1, "awa", now, "SCHEDULED", "15000", now).
			AddRow("tour-2", "grp-1", 2, "moussa", now, "SCHEDULED", "15000", now))
	mock.ExpectQuery(`FROM memberships WHERE group_id = \$1 AND person_id = \$2`).
		WillReturnRows(sqlmock.NewRows(membershipCols).
			AddRow("grp-1", "fatou", "MEMBER", now))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE tours SET beneficiary_id = \$1 WHERE id = \$2`).
		WithArgs("fatou", "tour-2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tours, err := svc.ReorganizeTours("grp-1", "awa", &models.ReorganizeToursRequest{
		NewOrder: map[int]string{2: "fatou"},
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, "fatou", tours[1].BeneficiaryID)
}

func TestReorganizeTours_RollsBackOnFailure(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newTestTourService(db)
	now := time.Now()

	mock.ExpectQuery(`FROM memberships WHERE group_id = \$1 AND person_id = \$2`).
		WillReturnRows(sqlmock.NewRows(membershipCols).
			AddRow("grp-1", "awa", "ADMIN", now))
	mock.ExpectQuery(`FROM tours WHERE group_id = \$1 ORDER BY tour_index`).
		WillReturnRows(sqlmock.NewRows(tourCols).
			AddRow("tour-1", "grp-1", 1, "awa", now, "SCHEDULED", "15000", now))
	mock.ExpectQuery(`FROM memberships WHERE group_id = \$1 AND person_id = \$2`).
		WillReturnRows(sqlmock.NewRows(membershipCols).
			AddRow("grp-1", "fatou", "MEMBER", now))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE tours SET beneficiary_id = \$1 WHERE id = \$2`).
		WillReturnError(errors.New("connection reset"))
	// No commit: the reorder must not land partially.
	mock.ExpectRollback()

	_, err := svc.ReorganizeTours("grp-1", "awa", &models.ReorganizeToursRequest{
		NewOrder: map[int]string{1: "fatou"},
	})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
