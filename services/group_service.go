package services

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sahelpay/tontine-backend/models"
	"github.com/sahelpay/tontine-backend/repository"
	"github.com/sahelpay/tontine-backend/utils"
)

// GroupService handles group lifecycle and membership management
type GroupService struct {
	groupRepo        *repository.GroupRepository
	membershipRepo   *repository.MembershipRepository
	contributionRepo *repository.ContributionRepository
	audit            AuditSink
}

// NewGroupService creates a new group service
func NewGroupService(
	groupRepo *repository.GroupRepository,
	membershipRepo *repository.MembershipRepository,
	contributionRepo *repository.ContributionRepository,
	audit AuditSink,
) *GroupService {
	return &GroupService{
		groupRepo:        groupRepo,
		membershipRepo:   membershipRepo,
		contributionRepo: contributionRepo,
		audit:            audit,
	}
}

func validFrequency(f models.Frequency) bool {
	switch f {
	case models.FrequencyWeekly, models.FrequencyBiweekly, models.FrequencyMonthly:
		return true
	}
	return false
}

func validRotationPolicy(p models.RotationPolicy) bool {
	switch p {
	case models.RotationSequential, models.RotationRandom, models.RotationShuffle,
		models.RotationCustom, models.RotationFixedOrder:
		return true
	}
	return false
}

// CreateGroup validates the configuration and creates the group with the
// creator as its first admin.
func (s *GroupService) CreateGroup(creatorID string, req *models.CreateGroupRequest) (*models.Group, error) {
	if err := utils.ValidateRequired(req.Name, "name"); err != nil {
		return nil, err
	}
	if req.Amount.LessThan(decimal.NewFromInt(utils.MinContributionAmount)) {
		return nil, utils.NewValidationError("amount must be at least 1000")
	}
	if err := utils.ValidateIntRange(req.TotalTours, utils.MinTotalTours, utils.MaxTotalTours, "totalTours"); err != nil {
		return nil, err
	}
	if err := utils.ValidateIntRange(req.GraceDays, utils.MinGraceDays, utils.MaxGraceDays, "graceDays"); err != nil {
		return nil, err
	}
	if err := utils.ValidateNonNegativeAmount(req.LatePenaltyAmount, "latePenaltyAmount"); err != nil {
		return nil, err
	}
	if !validFrequency(req.Frequency) {
		return nil, utils.NewValidationError("frequency must be WEEKLY, BIWEEKLY or MONTHLY")
	}
	if !validRotationPolicy(req.RotationPolicy) {
		return nil, utils.NewValidationError("unknown rotation policy")
	}

	now := time.Now()
	group := &models.Group{
		ID:                utils.GenerateID(),
		Code:              utils.GenerateCode(),
		Name:              req.Name,
		Amount:            req.Amount,
		Frequency:         req.Frequency,
		RotationPolicy:    req.RotationPolicy,
		TotalTours:        req.TotalTours,
		StartDate:         req.StartDate,
		LatePenaltyAmount: req.LatePenaltyAmount,
		GraceDays:         req.GraceDays,
		CreatedBy:         creatorID,
		CreatedAt:         now,
	}
	creator := &models.Membership{
		GroupID:  group.ID,
		PersonID: creatorID,
		Role:     models.RoleAdmin,
		JoinedAt: now,
	}
	if err := s.groupRepo.StoreGroup(group, creator); err != nil {
		return nil, utils.NewInternalError("Failed to store group")
	}

	s.audit.Record(creatorID, "create_group", "group", group.ID, map[string]string{
		"name": group.Name,
	})
	return group, nil
}

// GetGroupByID retrieves a group by id
func (s *GroupService) GetGroupByID(groupID string) (*models.Group, error) {
	group, err := s.groupRepo.GetGroupByID(groupID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to retrieve group")
	}
	if group == nil {
		return nil, utils.NewNotFoundError("Group")
	}
	return group, nil
}

// GetGroupByCode retrieves a group by its join code
func (s *GroupService) GetGroupByCode(code string) (*models.Group, error) {
	group, err := s.groupRepo.GetGroupByCode(code)
	if err != nil {
		return nil, utils.NewInternalError("Failed to retrieve group")
	}
	if group == nil {
		return nil, utils.NewNotFoundError("Group")
	}
	return group, nil
}

// ListGroupsForPerson retrieves all groups the person belongs to
func (s *GroupService) ListGroupsForPerson(personID string) ([]models.Group, error) {
	return s.groupRepo.ListGroupsForPerson(personID)
}

// ListMembers retrieves a group's memberships in join order
func (s *GroupService) ListMembers(groupID string) ([]models.Membership, error) {
	group, err := s.groupRepo.GetGroupByID(groupID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to retrieve group")
	}
	if group == nil {
		return nil, utils.NewNotFoundError("Group")
	}
	return s.membershipRepo.ListMembershipsByGroup(groupID)
}

// RemoveMember removes a member from a group: a member leaving on their own,
// or an admin kicking someone. Blocked while the member still owes anything.
func (s *GroupService) RemoveMember(actorID, groupID, personID string) error {
	membership, err := s.membershipRepo.GetMembership(groupID, personID)
	if err != nil {
		return utils.NewInternalError("Failed to retrieve membership")
	}
	if membership == nil {
		return utils.NewNotFoundError("Membership")
	}

	if actorID != personID {
		actor, err := s.membershipRepo.GetMembership(groupID, actorID)
		if err != nil {
			return utils.NewInternalError("Failed to retrieve membership")
		}
		if actor == nil || !actor.IsAdmin() {
			return utils.NewForbiddenError("only a group admin may remove other members")
		}
	}

	outstanding, err := s.contributionRepo.HasOutstandingForMember(groupID, personID)
	if err != nil {
		return utils.NewInternalError("Failed to check outstanding contributions")
	}
	if outstanding {
		return utils.NewConflictError("member still has outstanding contributions")
	}

	if err := s.membershipRepo.DeleteMembership(groupID, personID); err != nil {
		return utils.NewInternalError("Failed to remove membership")
	}

	s.audit.Record(actorID, "remove_member", "membership", groupID+"/"+personID, nil)
	return nil
}
