package services

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/sahelpay/tontine-backend/models"
	"github.com/sahelpay/tontine-backend/repository"
	"github.com/sahelpay/tontine-backend/utils"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

type sentNotification struct {
	personID string
	template NotificationType
}

type recordingNotifier struct {
	sent []sentNotification
}

func (n *recordingNotifier) Notify(personID string, template NotificationType, vars map[string]string) {
	n.sent = append(n.sent, sentNotification{personID: personID, template: template})
}

func newTestPaymentService(db *sql.DB, notifier Notifier) *PaymentService {
	return NewPaymentService(
		db,
		repository.NewPaymentRepository(db),
		repository.NewPayoutRepository(db),
		repository.NewContributionRepository(db),
		repository.NewMembershipRepository(db),
		repository.NewDelegationRepository(db),
		repository.NewTourRepository(db),
		notifier,
		NewLogAuditSink(),
	)
}

var (
	paymentCols = []string{"id", "group_id", "payer_id", "contribution_id", "amount",
		"payment_type", "status", "external_ref", "notes", "overpaid_by", "created_at"}
	contributionCols = []string{"id", "group_id", "tour_id", "member_id", "amount_due",
		"penalty_applied", "status", "due_date", "linked_payment_id", "created_at"}
	membershipCols = []string{"group_id", "person_id", "role", "joined_at"}
	payoutCols     = []string{"id", "tour_id", "beneficiary_id", "amount", "payout_type",
		"status", "external_ref", "created_at"}
)

func TestSettlementOutcome_PartialThenPaid(t *testing.T) {
	due := decimal.NewFromInt(5000)
	penalty := decimal.Zero

	// First payment of 2000 leaves the contribution PARTIAL
	status, excess := SettlementOutcome(due, penalty, decimal.Zero, decimal.NewFromInt(2000))
	assert.Equal(t, models.ContributionPartial, status)
	assert.True(t, excess.IsZero())

	// Second payment of 3000 completes it
	status, excess = SettlementOutcome(due, penalty, decimal.NewFromInt(2000), decimal.NewFromInt(3000))
	assert.Equal(t, models.ContributionPaid, status)
	assert.True(t, excess.IsZero())
}

func TestSettlementOutcome_ExactAmount(t *testing.T) {
	status, excess := SettlementOutcome(decimal.NewFromInt(5000), decimal.Zero, decimal.Zero, decimal.NewFromInt(5000))
	assert.Equal(t, models.ContributionPaid, status)
	assert.True(t, excess.IsZero())
}

func TestSettlementOutcome_OverpaymentFlagged(t *testing.T) {
	// 6000 against a 5000 debt: PAID with 1000 excess recorded, never
	// auto-credited anywhere.
	status, excess := SettlementOutcome(decimal.NewFromInt(5000), decimal.Zero, decimal.Zero, decimal.NewFromInt(6000))
	assert.Equal(t, models.ContributionPaid, status)
	assert.True(t, excess.Equal(decimal.NewFromInt(1000)))
}

func TestSettlementOutcome_PenaltyRaisesTheBar(t *testing.T) {
	due := decimal.NewFromInt(5000)
	penalty := decimal.NewFromInt(500)

	// Paying the base amount is not enough once a penalty applies
	status, _ := SettlementOutcome(due, penalty, decimal.Zero, decimal.NewFromInt(5000))
	assert.Equal(t, models.ContributionPartial, status)

	status, excess := SettlementOutcome(due, penalty, decimal.NewFromInt(5000), decimal.NewFromInt(500))
	assert.Equal(t, models.ContributionPaid, status)
	assert.True(t, excess.IsZero())
}

func TestOutstandingBalance(t *testing.T) {
	c := &models.Contribution{
		AmountDue:      decimal.NewFromInt(5000),
		PenaltyApplied: decimal.NewFromInt(500),
	}
	assert.True(t, c.OutstandingBalance(decimal.Zero).Equal(decimal.NewFromInt(5500)))
	assert.True(t, c.OutstandingBalance(decimal.NewFromInt(2000)).Equal(decimal.NewFromInt(3500)))
	// Never negative once fully covered
	assert.True(t, c.OutstandingBalance(decimal.NewFromInt(9000)).IsZero())
}

func TestValidatePayment_AlreadySettledUnderLock(t *testing.T) {
	db, mock := newMockDB(t)
	notifier := &recordingNotifier{}
	svc := newTestPaymentService(db, notifier)
	now := time.Now()

	mock.ExpectQuery(`FROM payments WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows(paymentCols).
			AddRow("pay-1", "grp-1", "awa", "con-1", "5000", "CASH", "PENDING", "", "", "0", now))
	mock.ExpectQuery(`FROM memberships WHERE group_id = \$1 AND person_id = \$2`).
		WillReturnRows(sqlmock.NewRows(membershipCols).
			AddRow("grp-1", "moussa", "TREASURER", now))
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM contributions WHERE id = \$1 FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows(contributionCols).
			AddRow("con-1", "grp-1", "tour-1", "awa", "5000", "0", "DUE", now, "", now))
	// A second validation confirmed the same payment between the first read
	// and the row lock; the re-check under lock must refuse to count it twice.
	mock.ExpectQuery(`FROM payments WHERE id = \$1 FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows(paymentCols).
			AddRow("pay-1", "grp-1", "awa", "con-1", "5000", "CASH", "CONFIRMED", "", "", "0", now))
	mock.ExpectRollback()

	_, err := svc.ValidatePayment("moussa", "pay-1", &models.ValidatePaymentRequest{Confirmed: true})
	assert.True(t, utils.IsKind(err, utils.KindConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Empty(t, notifier.sent)
}

func TestHandleGatewayCallback_PayoutSuccessCompletesTour(t *testing.T) {
	db, mock := newMockDB(t)
	notifier := &recordingNotifier{}
	svc := newTestPaymentService(db, notifier)
	now := time.Now()

	mock.ExpectQuery(`FROM payments WHERE external_ref = \$1`).
		WillReturnRows(sqlmock.NewRows(paymentCols))
	mock.ExpectQuery(`FROM payouts WHERE external_ref = \$1`).
		WillReturnRows(sqlmock.NewRows(payoutCols).
			AddRow("po-1", "tour-1", "fatou", "25000", "ORANGE_MONEY", "PENDING", "om-123", now))
	mock.ExpectExec(`UPDATE payouts SET status = \$1 WHERE id = \$2 AND status = \$3`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE tours SET status = \$1 WHERE id = \$2 AND status = \$3`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := svc.HandleGatewayCallback(&models.GatewayCallbackRequest{ExternalRef: "om-123", Success: true})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Len(t, notifier.sent, 1)
	assert.Equal(t, "fatou", notifier.sent[0].personID)
	assert.Equal(t, NotifyPayoutSent, notifier.sent[0].template)
}

func TestHandleGatewayCallback_DuplicatePayoutCallbackConflicts(t *testing.T) {
	db, mock := newMockDB(t)
	notifier := &recordingNotifier{}
	svc := newTestPaymentService(db, notifier)
	now := time.Now()

	mock.ExpectQuery(`FROM payments WHERE external_ref = \$1`).
		WillReturnRows(sqlmock.NewRows(paymentCols))
	mock.ExpectQuery(`FROM payouts WHERE external_ref = \$1`).
		WillReturnRows(sqlmock.NewRows(payoutCols).
			AddRow("po-1", "tour-1", "fatou", "25000", "ORANGE_MONEY", "PENDING", "om-123", now))
	// The gateway retried: another callback already resolved the payout.
	mock.ExpectExec(`UPDATE payouts SET status = \$1 WHERE id = \$2 AND status = \$3`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := svc.HandleGatewayCallback(&models.GatewayCallbackRequest{ExternalRef: "om-123", Success: true})
	assert.True(t, utils.IsKind(err, utils.KindConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Empty(t, notifier.sent)
}

func TestDeclarePayment_PendingDeclarationDoesNotNotify(t *testing.T) {
	db, mock := newMockDB(t)
	notifier := &recordingNotifier{}
	svc := newTestPaymentService(db, notifier)
	now := time.Now()

	mock.ExpectQuery(`FROM contributions WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows(contributionCols).
			AddRow("con-1", "grp-1", "tour-1", "awa", "5000", "0", "DUE", now, "", now))
	mock.ExpectQuery(`FROM memberships WHERE group_id = \$1 AND person_id = \$2`).
		WillReturnRows(sqlmock.NewRows(membershipCols).
			AddRow("grp-1", "awa", "MEMBER", now))
	mock.ExpectExec(`INSERT INTO payments`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	payment, err := svc.DeclarePayment("awa", &models.DeclarePaymentRequest{
		ContributionID: "con-1",
		Amount:         decimal.NewFromInt(5000),
		Type:           models.PaymentCash,
	})
	assert.NoError(t, err)
	assert.Equal(t, models.PaymentPending, payment.Status)
	// The declaration may still be rejected; no notification until it settles.
	assert.Empty(t, notifier.sent)
	assert.NoError(t, mock.ExpectationsWereMet())
}
