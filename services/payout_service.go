package services

import (
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sahelpay/tontine-backend/models"
	"github.com/sahelpay/tontine-backend/repository"
	"github.com/sahelpay/tontine-backend/utils"
)

// PayoutService gates and records the disbursement of a tour's funds
type PayoutService struct {
	db               *sql.DB
	tourRepo         *repository.TourRepository
	contributionRepo *repository.ContributionRepository
	membershipRepo   *repository.MembershipRepository
	payoutRepo       *repository.PayoutRepository
	notifier         Notifier
	audit            AuditSink
}

// NewPayoutService creates a new payout service
func NewPayoutService(
	db *sql.DB,
	tourRepo *repository.TourRepository,
	contributionRepo *repository.ContributionRepository,
	membershipRepo *repository.MembershipRepository,
	payoutRepo *repository.PayoutRepository,
	notifier Notifier,
	audit AuditSink,
) *PayoutService {
	return &PayoutService{
		db:               db,
		tourRepo:         tourRepo,
		contributionRepo: contributionRepo,
		membershipRepo:   membershipRepo,
		payoutRepo:       payoutRepo,
		notifier:         notifier,
		audit:            audit,
	}
}

// PayoutAllowed is the gate predicate: disbursement requires the full
// expected amount to be collected, no partial payouts.
func PayoutAllowed(totalCollected, totalDue decimal.Decimal) bool {
	return totalCollected.GreaterThanOrEqual(totalDue)
}

// ProcessPayout disburses a tour's collected funds to its beneficiary once
// collection is complete. The tour row is locked for the duration so two
// concurrent requests serialize; the unique index on payouts is the backstop.
func (s *PayoutService) ProcessPayout(actorID, tourID string, req *models.ProcessPayoutRequest) (*models.Payout, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, utils.NewInternalError("Failed to begin transaction")
	}
	defer tx.Rollback()

	tour, err := s.tourRepo.GetTourForUpdate(tx, tourID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to lock tour")
	}
	if tour == nil {
		return nil, utils.NewNotFoundError("Tour")
	}

	membership, err := s.membershipRepo.GetMembership(tour.GroupID, actorID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to retrieve membership")
	}
	if membership == nil || !membership.CanManageLedger() {
		return nil, utils.NewForbiddenError("only a treasurer or admin may process payouts")
	}

	existing, err := s.payoutRepo.GetPayoutByTour(tx, tourID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to check existing payout")
	}
	if existing != nil {
		return nil, utils.NewConflictError("a payout already exists for this tour")
	}

	collected, err := s.contributionRepo.CollectedTotalForTour(tx, tourID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to compute collected total")
	}
	if !PayoutAllowed(collected, tour.ExpectedAmount) {
		return nil, utils.NewForbiddenError("tour is not fully collected yet")
	}

	// A tour fully collected before its scheduled date may still be
	// SCHEDULED; paying out implies it is underway.
	if tour.Status == models.TourScheduled {
		if _, err := s.tourRepo.UpdateStatusIf(tx, tourID, models.TourScheduled, models.TourInProgress); err != nil {
			return nil, utils.NewInternalError("Failed to start tour")
		}
		tour.Status = models.TourInProgress
	}
	if !tour.Status.CanTransition(models.TourPaidOut) {
		return nil, utils.NewConflictError("tour is not in a payable state")
	}

	payout := &models.Payout{
		ID:            utils.GenerateID(),
		TourID:        tourID,
		BeneficiaryID: tour.BeneficiaryID,
		Amount:        tour.ExpectedAmount,
		Type:          req.Type,
		Status:        models.PaymentPending,
		ExternalRef:   req.ExternalRef,
		CreatedAt:     time.Now(),
	}
	if err := s.payoutRepo.CreatePayout(tx, payout); err != nil {
		if errors.Is(err, repository.ErrDuplicatePayout) {
			return nil, utils.NewConflictError("a payout already exists for this tour")
		}
		return nil, utils.NewInternalError("Failed to store payout")
	}

	if _, err := s.tourRepo.UpdateStatusIf(tx, tourID, tour.Status, models.TourPaidOut); err != nil {
		return nil, utils.NewInternalError("Failed to update tour status")
	}

	if err := tx.Commit(); err != nil {
		return nil, utils.NewInternalError("Failed to commit payout")
	}

	s.audit.Record(actorID, "process_payout", "tour", tourID, map[string]string{
		"payoutId": payout.ID,
		"amount":   payout.Amount.String(),
	})
	s.notifier.Notify(tour.BeneficiaryID, NotifyPayoutSent, map[string]string{
		"amount": payout.Amount.String(),
	})

	return payout, nil
}

// ConfirmPayout records the final outcome of a disbursement that is not
// confirmed by a gateway callback (cash handed over at a meeting). On
// success the tour completes.
func (s *PayoutService) ConfirmPayout(actorID, tourID string, success bool) (*models.Payout, error) {
	payout, err := s.payoutRepo.GetPayoutByTour(repository.GetDB(), tourID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to retrieve payout")
	}
	if payout == nil {
		return nil, utils.NewNotFoundError("Payout")
	}
	if payout.Status != models.PaymentPending {
		return nil, utils.NewConflictError("payout has already been resolved")
	}

	tour, err := s.tourRepo.GetTourByID(tourID)
	if err != nil || tour == nil {
		return nil, utils.NewNotFoundError("Tour")
	}
	membership, err := s.membershipRepo.GetMembership(tour.GroupID, actorID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to retrieve membership")
	}
	if membership == nil || !membership.CanManageLedger() {
		return nil, utils.NewForbiddenError("only a treasurer or admin may confirm payouts")
	}

	status := models.PaymentSuccess
	if !success {
		status = models.PaymentFailed
	}
	ok, err := s.payoutRepo.UpdatePayoutStatusIf(payout.ID, models.PaymentPending, status)
	if err != nil {
		return nil, utils.NewInternalError("Failed to update payout")
	}
	if !ok {
		return nil, utils.NewConflictError("payout has already been resolved")
	}
	payout.Status = status

	if success {
		if _, err := s.tourRepo.UpdateStatusIf(repository.GetDB(), tourID, models.TourPaidOut, models.TourCompleted); err != nil {
			return nil, utils.NewInternalError("Failed to complete tour")
		}
		s.notifier.Notify(payout.BeneficiaryID, NotifyPayoutSent, map[string]string{
			"amount": payout.Amount.String(),
		})
	}

	s.audit.Record(actorID, "confirm_payout", "payout", payout.ID, map[string]string{
		"status": string(status),
	})
	return payout, nil
}

// CloseTour closes a tour administratively. Allowed from IN_PROGRESS (a
// group that dissolved mid-cycle) or PAID_OUT.
func (s *PayoutService) CloseTour(actorID, tourID string) (*models.Tour, error) {
	tour, err := s.tourRepo.GetTourByID(tourID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to retrieve tour")
	}
	if tour == nil {
		return nil, utils.NewNotFoundError("Tour")
	}

	membership, err := s.membershipRepo.GetMembership(tour.GroupID, actorID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to retrieve membership")
	}
	if membership == nil || !membership.IsAdmin() {
		return nil, utils.NewForbiddenError("only a group admin may close tours")
	}

	if !tour.Status.CanTransition(models.TourClosed) {
		return nil, utils.NewConflictError("tour cannot be closed from its current state")
	}
	ok, err := s.tourRepo.UpdateStatusIf(repository.GetDB(), tourID, tour.Status, models.TourClosed)
	if err != nil {
		return nil, utils.NewInternalError("Failed to close tour")
	}
	if !ok {
		return nil, utils.NewConflictError("tour changed state, retry")
	}
	tour.Status = models.TourClosed

	s.audit.Record(actorID, "close_tour", "tour", tourID, nil)
	return tour, nil
}
