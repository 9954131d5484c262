package services

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sahelpay/tontine-backend/models"
	"github.com/sahelpay/tontine-backend/repository"
	"github.com/sahelpay/tontine-backend/utils"
)

// PaymentService ingests payments and reconciles them against contributions
type PaymentService struct {
	db               *sql.DB
	paymentRepo      *repository.PaymentRepository
	payoutRepo       *repository.PayoutRepository
	contributionRepo *repository.ContributionRepository
	membershipRepo   *repository.MembershipRepository
	delegationRepo   *repository.DelegationRepository
	tourRepo         *repository.TourRepository
	notifier         Notifier
	audit            AuditSink
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	db *sql.DB,
	paymentRepo *repository.PaymentRepository,
	payoutRepo *repository.PayoutRepository,
	contributionRepo *repository.ContributionRepository,
	membershipRepo *repository.MembershipRepository,
	delegationRepo *repository.DelegationRepository,
	tourRepo *repository.TourRepository,
	notifier Notifier,
	audit AuditSink,
) *PaymentService {
	return &PaymentService{
		db:               db,
		paymentRepo:      paymentRepo,
		payoutRepo:       payoutRepo,
		contributionRepo: contributionRepo,
		membershipRepo:   membershipRepo,
		delegationRepo:   delegationRepo,
		tourRepo:         tourRepo,
		notifier:         notifier,
		audit:            audit,
	}
}

// SettlementOutcome decides where a contribution lands after a settled
// payment: the new status, and how much of the payment exceeded the
// outstanding balance. Excess is recorded but never auto-credited; it stays
// flagged on the payment for administrative reconciliation.
func SettlementOutcome(amountDue, penalty, previouslySettled, paymentAmount decimal.Decimal) (models.ContributionStatus, decimal.Decimal) {
	owed := amountDue.Add(penalty)
	settled := previouslySettled.Add(paymentAmount)
	if settled.GreaterThanOrEqual(owed) {
		return models.ContributionPaid, settled.Sub(owed)
	}
	return models.ContributionPartial, decimal.Zero
}

// DeclarePayment records a payment toward a contribution. Mobile-money
// payments stay PENDING until the gateway confirms them; cash and bank
// transfers recorded by a treasurer or admin settle immediately, while a
// member-declared cash payment stays PENDING until an admin validates it.
func (s *PaymentService) DeclarePayment(actorID string, req *models.DeclarePaymentRequest) (*models.Payment, error) {
	if err := utils.ValidatePositiveAmount(req.Amount, "amount"); err != nil {
		return nil, err
	}

	contribution, err := s.contributionRepo.GetContributionByID(req.ContributionID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to retrieve contribution")
	}
	if contribution == nil {
		return nil, utils.NewNotFoundError("Contribution")
	}
	if contribution.Status.IsTerminal() {
		return nil, utils.NewConflictError("contribution is already settled")
	}

	actorMembership, err := s.membershipRepo.GetMembership(contribution.GroupID, actorID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to retrieve membership")
	}
	canManage := actorMembership != nil && actorMembership.CanManageLedger()
	if !canManage && actorID != contribution.MemberID {
		// A proxy with an active delegation may declare on the member's behalf.
		delegation, err := s.delegationRepo.FindActiveDelegation(contribution.GroupID, contribution.MemberID, time.Now())
		if err != nil {
			return nil, utils.NewInternalError("Failed to check delegation")
		}
		if delegation == nil || delegation.ProxyID != actorID {
			return nil, utils.NewForbiddenError("not allowed to declare a payment for this contribution")
		}
	}

	status := models.PaymentPending
	if !req.Type.IsMobileMoney() && canManage {
		status = models.PaymentConfirmed
	}

	payment := &models.Payment{
		ID:             utils.GenerateID(),
		GroupID:        contribution.GroupID,
		PayerID:        contribution.MemberID,
		ContributionID: contribution.ID,
		Amount:         req.Amount,
		Type:           req.Type,
		Status:         status,
		ExternalRef:    req.ExternalRef,
		Notes:          req.Notes,
		OverpaidBy:     decimal.Zero,
		CreatedAt:      time.Now(),
	}

	if status == models.PaymentConfirmed {
		// Admin-entered cash settles in the same transaction it is recorded.
		if err := s.settle(payment, true); err != nil {
			return nil, err
		}
	} else {
		if err := s.paymentRepo.CreatePayment(s.db, payment); err != nil {
			return nil, utils.NewInternalError("Failed to store payment")
		}
	}

	s.audit.Record(actorID, "declare_payment", "payment", payment.ID, map[string]string{
		"contributionId": contribution.ID,
		"amount":         req.Amount.String(),
		"type":           string(req.Type),
	})
	// A pending declaration may still be rejected; the member is only
	// notified once money actually settles.
	if payment.Status.IsSettled() {
		s.notifier.Notify(contribution.MemberID, NotifyPaymentReceived, map[string]string{
			"amount": req.Amount.String(),
		})
	}

	return payment, nil
}

// ValidatePayment is the second phase of the declare-then-validate flow for
// cash and bank-transfer payments: a treasurer or admin confirms or rejects
// a pending declaration.
func (s *PaymentService) ValidatePayment(actorID, paymentID string, req *models.ValidatePaymentRequest) (*models.Payment, error) {
	payment, err := s.paymentRepo.GetPaymentByID(paymentID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to retrieve payment")
	}
	if payment == nil {
		return nil, utils.NewNotFoundError("Payment")
	}
	if payment.Status != models.PaymentPending {
		return nil, utils.NewConflictError("payment has already been resolved")
	}
	if payment.Type.IsMobileMoney() {
		return nil, utils.NewConflictError("mobile-money payments are confirmed by the gateway, not manually")
	}

	membership, err := s.membershipRepo.GetMembership(payment.GroupID, actorID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to retrieve membership")
	}
	if membership == nil || !membership.CanManageLedger() {
		return nil, utils.NewForbiddenError("only a treasurer or admin may validate payments")
	}

	if !req.Confirmed {
		if err := s.paymentRepo.UpdatePaymentStatus(s.db, payment.ID, models.PaymentFailed, req.Notes, decimal.Zero); err != nil {
			return nil, utils.NewInternalError("Failed to update payment")
		}
		payment.Status = models.PaymentFailed
		payment.Notes = req.Notes
		return payment, nil
	}

	payment.Status = models.PaymentConfirmed
	if req.Notes != "" {
		payment.Notes = req.Notes
	}
	if err := s.settle(payment, false); err != nil {
		return nil, err
	}

	s.audit.Record(actorID, "validate_payment", "payment", payment.ID, nil)
	s.notifier.Notify(payment.PayerID, NotifyPaymentValidated, map[string]string{
		"amount": payment.Amount.String(),
	})
	return payment, nil
}

// HandleGatewayCallback applies an asynchronous mobile-money confirmation,
// matched by external reference. The reference may belong to a contribution
// payment or to a payout disbursement.
func (s *PaymentService) HandleGatewayCallback(req *models.GatewayCallbackRequest) error {
	payment, err := s.paymentRepo.GetPendingPaymentByExternalRef(req.ExternalRef)
	if err != nil {
		return utils.NewInternalError("Failed to look up payment")
	}
	if payment != nil {
		if !req.Success {
			return s.failPayment(payment)
		}
		payment.Status = models.PaymentSuccess
		if err := s.settle(payment, false); err != nil {
			return err
		}
		s.notifier.Notify(payment.PayerID, NotifyPaymentReceived, map[string]string{
			"amount": payment.Amount.String(),
		})
		return nil
	}

	payout, err := s.payoutRepo.GetPendingPayoutByExternalRef(req.ExternalRef)
	if err != nil {
		return utils.NewInternalError("Failed to look up payout")
	}
	if payout == nil {
		return utils.NewNotFoundError("Payment")
	}
	status := models.PaymentSuccess
	if !req.Success {
		status = models.PaymentFailed
	}
	ok, err := s.payoutRepo.UpdatePayoutStatusIf(payout.ID, models.PaymentPending, status)
	if err != nil {
		return utils.NewInternalError("Failed to update payout")
	}
	if !ok {
		return utils.NewConflictError("payout has already been resolved")
	}
	if req.Success {
		// The disbursement went through; the tour's cycle is over.
		if _, err := s.tourRepo.UpdateStatusIf(s.db, payout.TourID, models.TourPaidOut, models.TourCompleted); err != nil {
			return utils.NewInternalError("Failed to complete tour")
		}
		s.notifier.Notify(payout.BeneficiaryID, NotifyPayoutSent, map[string]string{
			"amount": payout.Amount.String(),
		})
	}
	return nil
}

func (s *PaymentService) failPayment(payment *models.Payment) error {
	if err := s.paymentRepo.UpdatePaymentStatus(s.db, payment.ID, models.PaymentFailed, payment.Notes, decimal.Zero); err != nil {
		return utils.NewInternalError("Failed to update payment")
	}
	return nil
}

// settle runs the reconciliation transaction: lock the contribution row,
// mark the payment settled, recompute the settled total and move the ledger
// forward. The row lock is what stops two concurrent payments from both
// observing "not yet PAID" and double-counting settlement.
func (s *PaymentService) settle(payment *models.Payment, insertPayment bool) error {
	tx, err := s.db.Begin()
	if err != nil {
		return utils.NewInternalError("Failed to begin transaction")
	}
	defer tx.Rollback()

	contribution, err := s.contributionRepo.GetContributionForUpdate(tx, payment.ContributionID)
	if err != nil {
		return utils.NewInternalError("Failed to lock contribution")
	}
	if contribution == nil {
		return utils.NewNotFoundError("Contribution")
	}
	if contribution.Status.IsTerminal() {
		return utils.NewConflictError("contribution is already settled")
	}

	if insertPayment {
		if err := s.paymentRepo.CreatePayment(tx, payment); err != nil {
			return utils.NewInternalError("Failed to store payment")
		}
	} else {
		// Re-check the payment under lock. Two concurrent validations (or a
		// gateway retry) both see PENDING before the transaction; only the
		// first may count the amount toward the contribution.
		locked, err := s.paymentRepo.GetPaymentForUpdate(tx, payment.ID)
		if err != nil {
			return utils.NewInternalError("Failed to lock payment")
		}
		if locked == nil {
			return utils.NewNotFoundError("Payment")
		}
		if locked.Status != models.PaymentPending {
			return utils.NewConflictError("payment has already been settled")
		}
	}

	previouslySettled, err := s.contributionRepo.SettledTotal(tx, contribution.ID)
	if err != nil {
		return utils.NewInternalError("Failed to sum settled payments")
	}
	if insertPayment {
		// The payment row was inserted already settled, so it is part of the sum.
		previouslySettled = previouslySettled.Sub(payment.Amount)
	}

	newStatus, overpaid := SettlementOutcome(
		contribution.AmountDue, contribution.PenaltyApplied, previouslySettled, payment.Amount)

	if err := s.paymentRepo.UpdatePaymentStatus(tx, payment.ID, payment.Status, payment.Notes, overpaid); err != nil {
		return utils.NewInternalError("Failed to update payment")
	}
	payment.OverpaidBy = overpaid

	if contribution.Status != newStatus {
		if !contribution.Status.CanTransition(newStatus) {
			return utils.NewConflictError("invalid contribution transition")
		}
		linkedPayment := ""
		if newStatus == models.ContributionPaid {
			linkedPayment = payment.ID
		}
		if err := s.contributionRepo.UpdateStatusTx(tx, contribution.ID, newStatus, linkedPayment); err != nil {
			return utils.NewInternalError("Failed to update contribution")
		}
	}

	if err := tx.Commit(); err != nil {
		return utils.NewInternalError("Failed to commit settlement")
	}
	return nil
}

// GetPayment retrieves a payment by id
func (s *PaymentService) GetPayment(paymentID string) (*models.Payment, error) {
	payment, err := s.paymentRepo.GetPaymentByID(paymentID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to retrieve payment")
	}
	if payment == nil {
		return nil, utils.NewNotFoundError("Payment")
	}
	return payment, nil
}

// ListPaymentsByGroup retrieves a group's payments, newest first
func (s *PaymentService) ListPaymentsByGroup(groupID string) ([]models.Payment, error) {
	return s.paymentRepo.ListPaymentsByGroup(groupID)
}
