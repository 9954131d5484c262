package models

// TourStatus represents a tour's lifecycle state
type TourStatus string

const (
	TourPending    TourStatus = "PENDING"
	TourScheduled  TourStatus = "SCHEDULED"
	TourInProgress TourStatus = "IN_PROGRESS"
	TourPaidOut    TourStatus = "PAID_OUT"
	TourCompleted  TourStatus = "COMPLETED"
	TourClosed     TourStatus = "CLOSED"
)

var tourTransitions = map[TourStatus][]TourStatus{
	TourPending:    {TourScheduled},
	TourScheduled:  {TourInProgress},
	TourInProgress: {TourPaidOut, TourClosed},
	TourPaidOut:    {TourCompleted, TourClosed},
}

// CanTransition reports whether the tour may move to the target status.
func (s TourStatus) CanTransition(to TourStatus) bool {
	for _, next := range tourTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// HasStarted reports whether the tour has progressed past the point where
// its beneficiary may still be reassigned.
func (s TourStatus) HasStarted() bool {
	switch s {
	case TourPending, TourScheduled:
		return false
	}
	return true
}

// ContributionStatus represents a contribution's ledger state
type ContributionStatus string

const (
	ContributionPending ContributionStatus = "PENDING"
	ContributionDue     ContributionStatus = "DUE"
	ContributionPartial ContributionStatus = "PARTIAL"
	ContributionPaid    ContributionStatus = "PAID"
	ContributionLate    ContributionStatus = "LATE"
	ContributionWaived  ContributionStatus = "WAIVED"
)

// Contribution statuses progress monotonically toward PAID or WAIVED except
// the DUE/PARTIAL/LATE triangle, which may be revisited.
var contributionTransitions = map[ContributionStatus][]ContributionStatus{
	ContributionPending: {ContributionDue},
	ContributionDue:     {ContributionPartial, ContributionPaid, ContributionLate, ContributionWaived},
	ContributionPartial: {ContributionPaid, ContributionLate, ContributionWaived},
	ContributionLate:    {ContributionPartial, ContributionPaid, ContributionWaived},
}

// CanTransition reports whether the contribution may move to the target
// status. PAID and WAIVED are terminal.
func (s ContributionStatus) CanTransition(to ContributionStatus) bool {
	for _, next := range contributionTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the contribution can no longer change.
func (s ContributionStatus) IsTerminal() bool {
	return s == ContributionPaid || s == ContributionWaived
}

// PaymentStatus represents the settlement state of a payment or payout
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentConfirmed PaymentStatus = "CONFIRMED"
	PaymentSuccess   PaymentStatus = "SUCCESS"
	PaymentFailed    PaymentStatus = "FAILED"
)

// IsSettled reports whether the payment counts toward the ledger: CONFIRMED
// for admin-validated cash, SUCCESS for gateway-confirmed mobile money.
func (s PaymentStatus) IsSettled() bool {
	return s == PaymentConfirmed || s == PaymentSuccess
}

// DelegationStatus represents a delegation's lifecycle state
type DelegationStatus string

const (
	DelegationPending  DelegationStatus = "PENDING"
	DelegationApproved DelegationStatus = "APPROVED"
	DelegationRevoked  DelegationStatus = "REVOKED"
)

// JoinRequestStatus represents a join request's lifecycle state
type JoinRequestStatus string

const (
	JoinRequestPending   JoinRequestStatus = "PENDING"
	JoinRequestApproved  JoinRequestStatus = "APPROVED"
	JoinRequestRejected  JoinRequestStatus = "REJECTED"
	JoinRequestCancelled JoinRequestStatus = "CANCELLED"
)

// IsTerminal reports whether the join request has been resolved. A new
// request after rejection or cancellation needs a fresh record.
func (s JoinRequestStatus) IsTerminal() bool {
	return s != JoinRequestPending
}
