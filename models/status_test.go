package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContributionStatusTransitions(t *testing.T) {
	assert.True(t, ContributionDue.CanTransition(ContributionPartial))
	assert.True(t, ContributionDue.CanTransition(ContributionPaid))
	assert.True(t, ContributionDue.CanTransition(ContributionLate))
	assert.True(t, ContributionDue.CanTransition(ContributionWaived))

	assert.True(t, ContributionPartial.CanTransition(ContributionPaid))
	assert.True(t, ContributionPartial.CanTransition(ContributionLate))
	assert.False(t, ContributionPartial.CanTransition(ContributionDue))

	// A late contribution can still be paid down or forgiven
	assert.True(t, ContributionLate.CanTransition(ContributionPartial))
	assert.True(t, ContributionLate.CanTransition(ContributionPaid))
	assert.True(t, ContributionLate.CanTransition(ContributionWaived))
}

func TestContributionStatusTerminal(t *testing.T) {
	assert.True(t, ContributionPaid.IsTerminal())
	assert.True(t, ContributionWaived.IsTerminal())
	assert.False(t, ContributionDue.IsTerminal())
	assert.False(t, ContributionPartial.IsTerminal())
	assert.False(t, ContributionLate.IsTerminal())

	// Nothing leaves a terminal state
	for _, to := range []ContributionStatus{ContributionDue, ContributionPartial, ContributionLate, ContributionWaived} {
		assert.False(t, ContributionPaid.CanTransition(to))
	}
	for _, to := range []ContributionStatus{ContributionDue, ContributionPartial, ContributionLate, ContributionPaid} {
		assert.False(t, ContributionWaived.CanTransition(to))
	}
}

func TestTourStatusTransitions(t *testing.T) {
	assert.True(t, TourPending.CanTransition(TourScheduled))
	assert.True(t, TourScheduled.CanTransition(TourInProgress))
	assert.True(t, TourInProgress.CanTransition(TourPaidOut))
	assert.True(t, TourInProgress.CanTransition(TourClosed))
	assert.True(t, TourPaidOut.CanTransition(TourCompleted))
	assert.True(t, TourPaidOut.CanTransition(TourClosed))

	// No skipping ahead and no going back
	assert.False(t, TourPending.CanTransition(TourInProgress))
	assert.False(t, TourScheduled.CanTransition(TourPaidOut))
	assert.False(t, TourPaidOut.CanTransition(TourInProgress))
	assert.False(t, TourCompleted.CanTransition(TourClosed))
	assert.False(t, TourClosed.CanTransition(TourScheduled))
}

func TestTourStatusHasStarted(t *testing.T) {
	assert.False(t, TourPending.HasStarted())
	assert.False(t, TourScheduled.HasStarted())
	assert.True(t, TourInProgress.HasStarted())
	assert.True(t, TourPaidOut.HasStarted())
	assert.True(t, TourCompleted.HasStarted())
	assert.True(t, TourClosed.HasStarted())
}

func TestPaymentStatusIsSettled(t *testing.T) {
	assert.True(t, PaymentConfirmed.IsSettled())
	assert.True(t, PaymentSuccess.IsSettled())
	assert.False(t, PaymentPending.IsSettled())
	assert.False(t, PaymentFailed.IsSettled())
}

func TestJoinRequestStatusTerminal(t *testing.T) {
	assert.False(t, JoinRequestPending.IsTerminal())
	assert.True(t, JoinRequestApproved.IsTerminal())
	assert.True(t, JoinRequestRejected.IsTerminal())
	assert.True(t, JoinRequestCancelled.IsTerminal())
}
