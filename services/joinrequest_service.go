package services

import (
	"errors"
	"time"

	"github.com/sahelpay/tontine-backend/models"
	"github.com/sahelpay/tontine-backend/repository"
	"github.com/sahelpay/tontine-backend/utils"
)

// JoinRequestService runs the join-request workflow gating membership
type JoinRequestService struct {
	groupRepo       *repository.GroupRepository
	membershipRepo  *repository.MembershipRepository
	joinRequestRepo *repository.JoinRequestRepository
	notifier        Notifier
	audit           AuditSink
}

// NewJoinRequestService creates a new join request service
func NewJoinRequestService(
	groupRepo *repository.GroupRepository,
	membershipRepo *repository.MembershipRepository,
	joinRequestRepo *repository.JoinRequestRepository,
	notifier Notifier,
	audit AuditSink,
) *JoinRequestService {
	return &JoinRequestService{
		groupRepo:       groupRepo,
		membershipRepo:  membershipRepo,
		joinRequestRepo: joinRequestRepo,
		notifier:        notifier,
		audit:           audit,
	}
}

// RequestToJoin creates a pending join request for the acting person. Only
// one non-terminal request may exist per (group, person); a rejected or
// cancelled request requires a fresh record.
func (s *JoinRequestService) RequestToJoin(personID string, req *models.CreateJoinRequestRequest) (*models.JoinRequest, error) {
	if err := utils.ValidateMaxLength(req.Message, utils.MaxReviewNoteLength, "message"); err != nil {
		return nil, err
	}

	group, err := s.groupRepo.GetGroupByID(req.GroupID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to retrieve group")
	}
	if group == nil {
		return nil, utils.NewNotFoundError("Group")
	}

	membership, err := s.membershipRepo.GetMembership(req.GroupID, personID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to retrieve membership")
	}
	if membership != nil {
		return nil, utils.NewConflictError("already a member of this group")
	}

	pending, err := s.joinRequestRepo.FindPendingJoinRequest(req.GroupID, personID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to check existing requests")
	}
	if pending != nil {
		return nil, utils.NewConflictError("a join request is already pending for this group")
	}

	joinRequest := &models.JoinRequest{
		ID:        utils.GenerateID(),
		GroupID:   req.GroupID,
		PersonID:  personID,
		Status:    models.JoinRequestPending,
		Message:   req.Message,
		CreatedAt: time.Now(),
	}
	if err := s.joinRequestRepo.CreateJoinRequest(joinRequest); err != nil {
		if errors.Is(err, repository.ErrDuplicateJoinRequest) {
			return nil, utils.NewConflictError("a join request is already pending for this group")
		}
		return nil, utils.NewInternalError("Failed to store join request")
	}

	s.audit.Record(personID, "request_to_join", "join_request", joinRequest.ID, map[string]string{
		"groupId": req.GroupID,
	})
	return joinRequest, nil
}

// ReviewJoinRequest approves or rejects a pending request. Approval creates
// the membership; rejection only records the reviewer's decision.
func (s *JoinRequestService) ReviewJoinRequest(reviewerID, requestID string, req *models.ReviewJoinRequestRequest) (*models.JoinRequest, error) {
	if req.Action != models.ReviewApprove && req.Action != models.ReviewReject {
		return nil, utils.NewValidationError("action must be APPROVE or REJECT")
	}
	if err := utils.ValidateMaxLength(req.Note, utils.MaxReviewNoteLength, "note"); err != nil {
		return nil, err
	}

	joinRequest, err := s.joinRequestRepo.GetJoinRequestByID(requestID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to retrieve join request")
	}
	if joinRequest == nil {
		return nil, utils.NewNotFoundError("Join request")
	}
	if joinRequest.Status.IsTerminal() {
		return nil, utils.NewConflictError("join request has already been resolved")
	}

	membership, err := s.membershipRepo.GetMembership(joinRequest.GroupID, reviewerID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to retrieve membership")
	}
	if membership == nil || !membership.IsAdmin() {
		return nil, utils.NewForbiddenError("only a group admin may review join requests")
	}

	status := models.JoinRequestApproved
	if req.Action == models.ReviewReject {
		status = models.JoinRequestRejected
	}
	now := time.Now()
	ok, err := s.joinRequestRepo.ReviewJoinRequestIf(requestID, status, reviewerID, req.Note, now)
	if err != nil {
		return nil, utils.NewInternalError("Failed to review join request")
	}
	if !ok {
		return nil, utils.NewConflictError("join request has already been resolved")
	}

	if status == models.JoinRequestApproved {
		err := s.membershipRepo.CreateMembership(&models.Membership{
			GroupID:  joinRequest.GroupID,
			PersonID: joinRequest.PersonID,
			Role:     models.RoleMember,
			JoinedAt: now,
		})
		if err != nil {
			return nil, utils.NewInternalError("Failed to create membership")
		}
	}

	joinRequest.Status = status
	joinRequest.ReviewerID = reviewerID
	joinRequest.ReviewedAt = &now
	joinRequest.ReviewNote = req.Note

	s.audit.Record(reviewerID, "review_join_request", "join_request", requestID, map[string]string{
		"action": string(req.Action),
	})
	s.notifier.Notify(joinRequest.PersonID, NotifyJoinRequestReviewed, map[string]string{
		"status": string(status),
	})
	return joinRequest, nil
}

// CancelJoinRequest withdraws a pending request. Only the requester may
// cancel, and only while the request is still pending.
func (s *JoinRequestService) CancelJoinRequest(personID, requestID string) (*models.JoinRequest, error) {
	joinRequest, err := s.joinRequestRepo.GetJoinRequestByID(requestID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to retrieve join request")
	}
	if joinRequest == nil {
		return nil, utils.NewNotFoundError("Join request")
	}
	if joinRequest.PersonID != personID {
		return nil, utils.NewForbiddenError("only the requester may cancel a join request")
	}
	if joinRequest.Status.IsTerminal() {
		return nil, utils.NewConflictError("join request has already been resolved")
	}

	ok, err := s.joinRequestRepo.ReviewJoinRequestIf(requestID, models.JoinRequestCancelled, personID, "", time.Now())
	if err != nil {
		return nil, utils.NewInternalError("Failed to cancel join request")
	}
	if !ok {
		return nil, utils.NewConflictError("join request has already been resolved")
	}
	joinRequest.Status = models.JoinRequestCancelled

	s.audit.Record(personID, "cancel_join_request", "join_request", requestID, nil)
	return joinRequest, nil
}

// ListJoinRequests retrieves a group's join requests. Admin only.
func (s *JoinRequestService) ListJoinRequests(actorID, groupID string) ([]models.JoinRequest, error) {
	membership, err := s.membershipRepo.GetMembership(groupID, actorID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to retrieve membership")
	}
	if membership == nil || !membership.IsAdmin() {
		return nil, utils.NewForbiddenError("only a group admin may list join requests")
	}
	return s.joinRequestRepo.ListJoinRequestsByGroup(groupID)
}
