package services

import (
	"time"

	"github.com/sahelpay/tontine-backend/models"
	"github.com/sahelpay/tontine-backend/repository"
	"github.com/sahelpay/tontine-backend/utils"
)

// DelegationService manages proxy authority within groups
type DelegationService struct {
	delegationRepo *repository.DelegationRepository
	membershipRepo *repository.MembershipRepository
	notifier       Notifier
	audit          AuditSink
}

// NewDelegationService creates a new delegation service
func NewDelegationService(
	delegationRepo *repository.DelegationRepository,
	membershipRepo *repository.MembershipRepository,
	notifier Notifier,
	audit AuditSink,
) *DelegationService {
	return &DelegationService{
		delegationRepo: delegationRepo,
		membershipRepo: membershipRepo,
		notifier:       notifier,
		audit:          audit,
	}
}

// CreateDelegation registers a proxy grant from the acting person. The
// validity window must end in the future; the pair (group, grantor, proxy)
// is unique.
func (s *DelegationService) CreateDelegation(grantorID string, req *models.CreateDelegationRequest) (*models.Delegation, error) {
	if err := utils.ValidateFutureDate(req.ValidTo, "validTo"); err != nil {
		return nil, err
	}
	if !req.ValidTo.After(req.ValidFrom) {
		return nil, utils.NewValidationError("validTo must be after validFrom")
	}
	if req.ProxyID == grantorID {
		return nil, utils.NewValidationError("cannot delegate to yourself")
	}

	grantor, err := s.membershipRepo.GetMembership(req.GroupID, grantorID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to retrieve membership")
	}
	if grantor == nil {
		return nil, utils.NewForbiddenError("grantor is not a member of this group")
	}
	proxy, err := s.membershipRepo.GetMembership(req.GroupID, req.ProxyID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to retrieve membership")
	}
	if proxy == nil {
		return nil, utils.NewValidationError("proxy is not a member of this group")
	}

	existing, err := s.delegationRepo.GetDelegation(req.GroupID, grantorID, req.ProxyID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to check existing delegation")
	}
	if existing != nil && existing.Status != models.DelegationRevoked {
		return nil, utils.NewConflictError("a delegation already exists for this proxy")
	}

	delegation := &models.Delegation{
		ID:        utils.GenerateID(),
		GroupID:   req.GroupID,
		GrantorID: grantorID,
		ProxyID:   req.ProxyID,
		Status:    models.DelegationPending,
		ValidFrom: req.ValidFrom,
		ValidTo:   req.ValidTo,
		CreatedAt: time.Now(),
	}
	if err := s.delegationRepo.CreateDelegation(delegation); err != nil {
		return nil, utils.NewInternalError("Failed to store delegation")
	}

	s.audit.Record(grantorID, "create_delegation", "delegation", delegation.ID, nil)
	return delegation, nil
}

// ApproveDelegation moves a pending delegation to APPROVED. Admin only.
func (s *DelegationService) ApproveDelegation(actorID, delegationID string) (*models.Delegation, error) {
	delegation, err := s.delegationRepo.GetDelegationByID(delegationID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to retrieve delegation")
	}
	if delegation == nil {
		return nil, utils.NewNotFoundError("Delegation")
	}

	membership, err := s.membershipRepo.GetMembership(delegation.GroupID, actorID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to retrieve membership")
	}
	if membership == nil || !membership.IsAdmin() {
		return nil, utils.NewForbiddenError("only a group admin may approve delegations")
	}

	ok, err := s.delegationRepo.UpdateDelegationStatusIf(delegationID, models.DelegationPending, models.DelegationApproved)
	if err != nil {
		return nil, utils.NewInternalError("Failed to approve delegation")
	}
	if !ok {
		return nil, utils.NewConflictError("delegation is not pending")
	}
	delegation.Status = models.DelegationApproved

	s.audit.Record(actorID, "approve_delegation", "delegation", delegationID, nil)
	s.notifier.Notify(delegation.GrantorID, NotifyDelegationReviewed, map[string]string{
		"status": string(models.DelegationApproved),
	})
	return delegation, nil
}

// RevokeDelegation revokes a delegation. Only the grantor or a group admin
// may revoke; revocation is irreversible.
func (s *DelegationService) RevokeDelegation(delegationID, byPersonID string) (*models.Delegation, error) {
	delegation, err := s.delegationRepo.GetDelegationByID(delegationID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to retrieve delegation")
	}
	if delegation == nil {
		return nil, utils.NewNotFoundError("Delegation")
	}

	if byPersonID != delegation.GrantorID {
		membership, err := s.membershipRepo.GetMembership(delegation.GroupID, byPersonID)
		if err != nil {
			return nil, utils.NewInternalError("Failed to retrieve membership")
		}
		if membership == nil || !membership.IsAdmin() {
			return nil, utils.NewForbiddenError("only the grantor or a group admin may revoke")
		}
	}

	if delegation.Status == models.DelegationRevoked {
		return nil, utils.NewConflictError("delegation is already revoked")
	}
	ok, err := s.delegationRepo.UpdateDelegationStatusIf(delegationID, delegation.Status, models.DelegationRevoked)
	if err != nil {
		return nil, utils.NewInternalError("Failed to revoke delegation")
	}
	if !ok {
		return nil, utils.NewConflictError("delegation changed state, retry")
	}
	delegation.Status = models.DelegationRevoked

	s.audit.Record(byPersonID, "revoke_delegation", "delegation", delegationID, nil)
	return delegation, nil
}

// ActiveProxy answers "who may act as proxy for this member in this group on
// this date". Returns "" when nobody may.
func (s *DelegationService) ActiveProxy(groupID, grantorID string, onDate time.Time) (string, error) {
	delegation, err := s.delegationRepo.FindActiveDelegation(groupID, grantorID, onDate)
	if err != nil {
		return "", utils.NewInternalError("Failed to look up delegation")
	}
	if delegation == nil {
		return "", nil
	}
	return delegation.ProxyID, nil
}

// ListDelegations retrieves all delegations for a group
func (s *DelegationService) ListDelegations(groupID string) ([]models.Delegation, error) {
	return s.delegationRepo.ListDelegationsByGroup(groupID)
}

// ExpireDelegations revokes approved delegations whose window has ended
func (s *DelegationService) ExpireDelegations(asOf time.Time) (int64, error) {
	return s.delegationRepo.RevokeExpiredDelegations(asOf)
}
