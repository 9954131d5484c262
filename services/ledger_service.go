package services

import (
	"github.com/sahelpay/tontine-backend/models"
	"github.com/sahelpay/tontine-backend/repository"
	"github.com/sahelpay/tontine-backend/utils"
)

// LedgerService exposes the contribution ledger: reads plus the explicit
// administrative transitions that are not driven by payments or sweeps.
type LedgerService struct {
	contributionRepo *repository.ContributionRepository
	membershipRepo   *repository.MembershipRepository
	notifier         Notifier
	audit            AuditSink
}

// NewLedgerService creates a new ledger service
func NewLedgerService(
	contributionRepo *repository.ContributionRepository,
	membershipRepo *repository.MembershipRepository,
	notifier Notifier,
	audit AuditSink,
) *LedgerService {
	return &LedgerService{
		contributionRepo: contributionRepo,
		membershipRepo:   membershipRepo,
		notifier:         notifier,
		audit:            audit,
	}
}

// GetContribution retrieves a contribution by id
func (s *LedgerService) GetContribution(contributionID string) (*models.Contribution, error) {
	contribution, err := s.contributionRepo.GetContributionByID(contributionID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to retrieve contribution")
	}
	if contribution == nil {
		return nil, utils.NewNotFoundError("Contribution")
	}
	return contribution, nil
}

// ListContributionsByTour retrieves all contributions for a tour
func (s *LedgerService) ListContributionsByTour(tourID string) ([]models.Contribution, error) {
	return s.contributionRepo.ListContributionsByTour(tourID)
}

// ListContributionsByGroup retrieves all contributions for a group
func (s *LedgerService) ListContributionsByGroup(groupID string) ([]models.Contribution, error) {
	return s.contributionRepo.ListContributionsByGroup(groupID)
}

// WaiveContribution forgives an open obligation. Only a treasurer or admin
// may waive; WAIVED is terminal.
func (s *LedgerService) WaiveContribution(actorID, contributionID string, req *models.WaiveContributionRequest) (*models.Contribution, error) {
	contribution, err := s.contributionRepo.GetContributionByID(contributionID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to retrieve contribution")
	}
	if contribution == nil {
		return nil, utils.NewNotFoundError("Contribution")
	}

	membership, err := s.membershipRepo.GetMembership(contribution.GroupID, actorID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to retrieve membership")
	}
	if membership == nil || !membership.CanManageLedger() {
		return nil, utils.NewForbiddenError("only a treasurer or admin may waive contributions")
	}

	if !contribution.Status.CanTransition(models.ContributionWaived) {
		return nil, utils.NewConflictError("contribution cannot be waived from its current state")
	}
	if err := s.contributionRepo.UpdateStatus(contributionID, models.ContributionWaived); err != nil {
		return nil, utils.NewInternalError("Failed to waive contribution")
	}
	contribution.Status = models.ContributionWaived

	s.audit.Record(actorID, "waive_contribution", "contribution", contributionID, map[string]string{
		"notes": req.Notes,
	})
	s.notifier.Notify(contribution.MemberID, NotifyContributionWaived, map[string]string{
		"contributionId": contributionID,
	})
	return contribution, nil
}
