package services

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sahelpay/tontine-backend/models"
	"github.com/sahelpay/tontine-backend/repository"
	"github.com/sahelpay/tontine-backend/utils"
)

// TourService builds and maintains a group's tour schedule
type TourService struct {
	rotationService  *RotationService
	groupRepo        *repository.GroupRepository
	membershipRepo   *repository.MembershipRepository
	tourRepo         *repository.TourRepository
	contributionRepo *repository.ContributionRepository
	notifier         Notifier
	audit            AuditSink
}

// NewTourService creates a new tour service
func NewTourService(
	rotationService *RotationService,
	groupRepo *repository.GroupRepository,
	membershipRepo *repository.MembershipRepository,
	tourRepo *repository.TourRepository,
	contributionRepo *repository.ContributionRepository,
	notifier Notifier,
	audit AuditSink,
) *TourService {
	return &TourService{
		rotationService:  rotationService,
		groupRepo:        groupRepo,
		membershipRepo:   membershipRepo,
		tourRepo:         tourRepo,
		contributionRepo: contributionRepo,
		notifier:         notifier,
		audit:            audit,
	}
}

// ScheduledDateFor computes the date of the tour at the given 1-based index
// by advancing the start date per the group's frequency.
func ScheduledDateFor(startDate time.Time, frequency models.Frequency, index int) time.Time {
	switch frequency {
	case models.FrequencyWeekly:
		return startDate.AddDate(0, 0, 7*(index-1))
	case models.FrequencyBiweekly:
		return startDate.AddDate(0, 0, 14*(index-1))
	default: // MONTHLY
		return startDate.AddDate(0, index-1, 0)
	}
}

// GenerateTours builds the full tour schedule for a group: beneficiary
// assignments from the rotation policy, scheduled dates from the frequency,
// and one contribution obligation per member per tour. At most one
// generation per group; a second call fails with a conflict.
func (s *TourService) GenerateTours(groupID, actorID string, req *models.GenerateToursRequest) ([]models.Tour, error) {
	group, err := s.groupRepo.GetGroupByID(groupID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to retrieve group")
	}
	if group == nil {
		return nil, utils.NewNotFoundError("Group")
	}

	membership, err := s.membershipRepo.GetMembership(groupID, actorID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to retrieve membership")
	}
	if membership == nil || !membership.IsAdmin() {
		return nil, utils.NewForbiddenError("only a group admin may generate tours")
	}

	existing, err := s.tourRepo.CountByGroup(groupID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to count tours")
	}
	if existing > 0 {
		return nil, utils.NewConflictError("tours have already been generated for this group")
	}

	memberships, err := s.membershipRepo.ListMembershipsByGroup(groupID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to list members")
	}
	members := make([]string, len(memberships))
	for i, m := range memberships {
		members[i] = m.PersonID
	}

	policy := group.RotationPolicy
	if req != nil && req.Shuffle && policy != models.RotationCustom {
		policy = models.RotationShuffle
	}
	var customOrder []string
	if req != nil {
		customOrder = req.CustomOrder
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	assignments, err := s.rotationService.AssignBeneficiaries(members, policy, group.TotalTours, customOrder, rng)
	if err != nil {
		return nil, err
	}

	expectedAmount := group.Amount.Mul(decimal.NewFromInt(int64(len(members))))
	now := time.Now()

	tours := make([]models.Tour, group.TotalTours)
	var contributions []models.Contribution
	for i := 0; i < group.TotalTours; i++ {
		scheduledDate := ScheduledDateFor(group.StartDate, group.Frequency, i+1)
		tour := models.Tour{
			ID:             utils.GenerateID(),
			GroupID:        groupID,
			Index:          i + 1,
			BeneficiaryID:  assignments[i],
			ScheduledDate:  scheduledDate,
			Status:         models.TourScheduled,
			ExpectedAmount: expectedAmount,
			CreatedAt:      now,
		}
		tours[i] = tour

		for _, member := range members {
			contributions = append(contributions, models.Contribution{
				ID:             utils.GenerateID(),
				GroupID:        groupID,
				TourID:         tour.ID,
				MemberID:       member,
				AmountDue:      group.Amount,
				PenaltyApplied: decimal.Zero,
				Status:         models.ContributionDue,
				DueDate:        scheduledDate,
				CreatedAt:      now,
			})
		}
	}

	if err := s.tourRepo.StoreGeneratedTours(tours, contributions); err != nil {
		return nil, utils.NewInternalError("Failed to store generated tours")
	}

	s.audit.Record(actorID, "generate_tours", "group", groupID, map[string]string{
		"tours": fmt.Sprintf("%d", len(tours)),
	})
	for _, member := range members {
		s.notifier.Notify(member, NotifyToursGenerated, map[string]string{
			"groupName": group.Name,
		})
	}

	return tours, nil
}

// ReorganizeTours reassigns beneficiaries for tours that have not started
// yet. Tours in IN_PROGRESS or beyond are immutable.
func (s *TourService) ReorganizeTours(groupID, actorID string, req *models.ReorganizeToursRequest) ([]models.Tour, error) {
	membership, err := s.membershipRepo.GetMembership(groupID, actorID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to retrieve membership")
	}
	if membership == nil || !membership.IsAdmin() {
		return nil, utils.NewForbiddenError("only a group admin may reorganize tours")
	}

	tours, err := s.tourRepo.ListToursByGroup(groupID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to list tours")
	}
	byIndex := make(map[int]*models.Tour, len(tours))
	for i := range tours {
		byIndex[tours[i].Index] = &tours[i]
	}

	// Validate the whole reassignment before touching anything.
	for index, beneficiaryID := range req.NewOrder {
		tour, ok := byIndex[index]
		if !ok {
			return nil, utils.NewNotFoundError(fmt.Sprintf("Tour %d", index))
		}
		if tour.Status.HasStarted() {
			return nil, utils.NewForbiddenError(fmt.Sprintf("tour %d has already started and cannot be reordered", index))
		}
		member, err := s.membershipRepo.GetMembership(groupID, beneficiaryID)
		if err != nil {
			return nil, utils.NewInternalError("Failed to retrieve membership")
		}
		if member == nil {
			return nil, utils.NewValidationError(fmt.Sprintf("beneficiary for tour %d is not a group member", index))
		}
	}

	indices := make([]int, 0, len(req.NewOrder))
	for index := range req.NewOrder {
		indices = append(indices, index)
	}
	sort.Ints(indices)

	changes := make([]repository.BeneficiaryReassignment, 0, len(indices))
	for _, index := range indices {
		changes = append(changes, repository.BeneficiaryReassignment{
			TourID:        byIndex[index].ID,
			BeneficiaryID: req.NewOrder[index],
		})
	}
	// One transaction: a mid-reorder failure must not leave a half-applied
	// rotation on the schedule.
	if err := s.tourRepo.ReassignBeneficiaries(changes); err != nil {
		return nil, utils.NewInternalError("Failed to update tour beneficiaries")
	}
	for _, index := range indices {
		byIndex[index].BeneficiaryID = req.NewOrder[index]
	}

	s.audit.Record(actorID, "reorganize_tours", "group", groupID, nil)
	return tours, nil
}

// GetTourSnapshot returns a tour with its computed collection totals
func (s *TourService) GetTourSnapshot(tourID string) (*models.TourSnapshot, error) {
	tour, err := s.tourRepo.GetTourByID(tourID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to retrieve tour")
	}
	if tour == nil {
		return nil, utils.NewNotFoundError("Tour")
	}

	collected, err := s.contributionRepo.CollectedTotalForTour(repository.GetDB(), tourID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to compute collected total")
	}
	contributions, err := s.contributionRepo.ListContributionsByTour(tourID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to list contributions")
	}

	tour.TotalCollected = collected
	return &models.TourSnapshot{
		Tour:           *tour,
		TotalDue:       tour.ExpectedAmount,
		TotalCollected: collected,
		Contributions:  contributions,
	}, nil
}

// ListTours returns a group's tours in index order
func (s *TourService) ListTours(groupID string) ([]models.Tour, error) {
	group, err := s.groupRepo.GetGroupByID(groupID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to retrieve group")
	}
	if group == nil {
		return nil, utils.NewNotFoundError("Group")
	}
	tours, err := s.tourRepo.ListToursByGroup(groupID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to list tours")
	}
	return tours, nil
}

// StartDueTours flips SCHEDULED tours whose date has arrived to
// IN_PROGRESS. Status-guarded, safe to re-run concurrently with requests.
func (s *TourService) StartDueTours(asOf time.Time) (int, error) {
	tours, err := s.tourRepo.ListToursDueForStart(asOf)
	if err != nil {
		return 0, err
	}
	started := 0
	for _, tour := range tours {
		ok, err := s.tourRepo.UpdateStatusIf(repository.GetDB(), tour.ID, models.TourScheduled, models.TourInProgress)
		if err != nil {
			slog.Error("failed to start tour", "tour_id", tour.ID, "error", err)
			continue
		}
		if ok {
			started++
		}
	}
	return started, nil
}
