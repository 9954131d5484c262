package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Frequency represents how often a group's tours occur
type Frequency string

const (
	FrequencyWeekly   Frequency = "WEEKLY"
	FrequencyBiweekly Frequency = "BIWEEKLY"
	FrequencyMonthly  Frequency = "MONTHLY"
)

// RotationPolicy determines the beneficiary order across tours
type RotationPolicy string

const (
	RotationSequential RotationPolicy = "SEQUENTIAL"
	RotationRandom     RotationPolicy = "RANDOM"
	RotationShuffle    RotationPolicy = "SHUFFLE"
	RotationCustom     RotationPolicy = "CUSTOM"
	RotationFixedOrder RotationPolicy = "FIXED_ORDER"
)

// MemberRole represents a membership role within a group
type MemberRole string

const (
	RoleAdmin     MemberRole = "ADMIN"
	RoleTreasurer MemberRole = "TREASURER"
	RoleMember    MemberRole = "MEMBER"
)

// PaymentType represents the channel a payment was made through
type PaymentType string

const (
	PaymentOrangeMoney  PaymentType = "ORANGE_MONEY"
	PaymentMoovMoney    PaymentType = "MOOV_MONEY"
	PaymentWaveMoney    PaymentType = "WAVE_MONEY"
	PaymentCash         PaymentType = "CASH"
	PaymentBankTransfer PaymentType = "BANK_TRANSFER"
)

// IsMobileMoney reports whether the payment type settles through a
// mobile-money gateway and therefore needs an asynchronous confirmation.
func (t PaymentType) IsMobileMoney() bool {
	switch t {
	case PaymentOrangeMoney, PaymentMoovMoney, PaymentWaveMoney:
		return true
	}
	return false
}

// Person represents a registered user of the platform
type Person struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Phone     string    `json:"phone" db:"phone"`
	PinHash   string    `json:"-" db:"pin_hash"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Group represents a tontine: a fixed set of members contributing a fixed
// amount on a recurring schedule, with one beneficiary per tour.
type Group struct {
	ID                string          `json:"id" db:"id"`
	Code              string          `json:"code" db:"code"`
	Name              string          `json:"name" db:"name"`
	Amount            decimal.Decimal `json:"amount" db:"amount"`
	Frequency         Frequency       `json:"frequency" db:"frequency"`
	RotationPolicy    RotationPolicy  `json:"rotationPolicy" db:"rotation_policy"`
	TotalTours        int             `json:"totalTours" db:"total_tours"`
	StartDate         time.Time       `json:"startDate" db:"start_date"`
	LatePenaltyAmount decimal.Decimal `json:"latePenaltyAmount" db:"late_penalty_amount"`
	GraceDays         int             `json:"graceDays" db:"grace_days"`
	CreatedBy         string          `json:"createdBy" db:"created_by"`
	CreatedAt         time.Time       `json:"createdAt" db:"created_at"`
}

// Membership links a person to a group with a role.
// Composite-keyed by (group, person); unique per pair.
type Membership struct {
	GroupID  string     `json:"groupId" db:"group_id"`
	PersonID string     `json:"personId" db:"person_id"`
	Role     MemberRole `json:"role" db:"role"`
	JoinedAt time.Time  `json:"joinedAt" db:"joined_at"`
}

// IsAdmin reports whether the membership may administer the group.
func (m *Membership) IsAdmin() bool {
	return m.Role == RoleAdmin
}

// CanManageLedger reports whether the membership may record cash payments
// and waive contributions.
func (m *Membership) CanManageLedger() bool {
	return m.Role == RoleAdmin || m.Role == RoleTreasurer
}

// Tour represents one rotation cycle with exactly one beneficiary
type Tour struct {
	ID             string          `json:"id" db:"id"`
	GroupID        string          `json:"groupId" db:"group_id"`
	Index          int             `json:"index" db:"tour_index"`
	BeneficiaryID  string          `json:"beneficiaryId" db:"beneficiary_id"`
	ScheduledDate  time.Time       `json:"scheduledDate" db:"scheduled_date"`
	Status         TourStatus      `json:"status" db:"status"`
	ExpectedAmount decimal.Decimal `json:"expectedAmount" db:"expected_amount"`
	CreatedAt      time.Time       `json:"createdAt" db:"created_at"`

	// TotalCollected is the live sum of PAID contribution amounts for this
	// tour; computed on read, never stored.
	TotalCollected decimal.Decimal `json:"totalCollected" db:"-"`
}

// Contribution represents one member's payment obligation for one tour
type Contribution struct {
	ID              string             `json:"id" db:"id"`
	GroupID         string             `json:"groupId" db:"group_id"`
	TourID          string             `json:"tourId" db:"tour_id"`
	MemberID        string             `json:"memberId" db:"member_id"`
	AmountDue       decimal.Decimal    `json:"amountDue" db:"amount_due"`
	PenaltyApplied  decimal.Decimal    `json:"penaltyApplied" db:"penalty_applied"`
	Status          ContributionStatus `json:"status" db:"status"`
	DueDate         time.Time          `json:"dueDate" db:"due_date"`
	LinkedPaymentID string             `json:"linkedPaymentId,omitempty" db:"linked_payment_id"`
	CreatedAt       time.Time          `json:"createdAt" db:"created_at"`
}

// OutstandingBalance returns the amount still owed given the total already
// settled against this contribution. Never negative: excess lives on the
// payment as OverpaidBy, not here.
func (c *Contribution) OutstandingBalance(settledTotal decimal.Decimal) decimal.Decimal {
	balance := c.AmountDue.Add(c.PenaltyApplied).Sub(settledTotal)
	if balance.IsNegative() {
		return decimal.Zero
	}
	return balance
}

// Payment represents money received from a member toward a contribution
type Payment struct {
	ID             string          `json:"id" db:"id"`
	GroupID        string          `json:"groupId" db:"group_id"`
	PayerID        string          `json:"payerId" db:"payer_id"`
	ContributionID string          `json:"contributionId" db:"contribution_id"`
	Amount         decimal.Decimal `json:"amount" db:"amount"`
	Type           PaymentType     `json:"type" db:"payment_type"`
	Status         PaymentStatus   `json:"status" db:"status"`
	ExternalRef    string          `json:"externalRef,omitempty" db:"external_ref"`
	Notes          string          `json:"notes,omitempty" db:"notes"`
	OverpaidBy     decimal.Decimal `json:"overpaidBy" db:"overpaid_by"`
	CreatedAt      time.Time       `json:"createdAt" db:"created_at"`
}

// Payout represents the disbursement of a tour's collected funds to its
// beneficiary. At most one non-failed payout may exist per tour.
type Payout struct {
	ID            string          `json:"id" db:"id"`
	TourID        string          `json:"tourId" db:"tour_id"`
	BeneficiaryID string          `json:"beneficiaryId" db:"beneficiary_id"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	Type          PaymentType     `json:"type" db:"payout_type"`
	Status        PaymentStatus   `json:"status" db:"status"`
	ExternalRef   string          `json:"externalRef,omitempty" db:"external_ref"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
}

// Delegation represents a time-bounded grant letting a proxy act on behalf
// of a grantor within a group.
type Delegation struct {
	ID        string           `json:"id" db:"id"`
	GroupID   string           `json:"groupId" db:"group_id"`
	GrantorID string           `json:"grantorId" db:"grantor_id"`
	ProxyID   string           `json:"proxyId" db:"proxy_id"`
	Status    DelegationStatus `json:"status" db:"status"`
	ValidFrom time.Time        `json:"validFrom" db:"valid_from"`
	ValidTo   time.Time        `json:"validTo" db:"valid_to"`
	CreatedAt time.Time        `json:"createdAt" db:"created_at"`
}

// IsActiveOn reports whether the delegation authorizes the proxy on the
// given date: status APPROVED and validFrom <= date <= validTo.
func (d *Delegation) IsActiveOn(date time.Time) bool {
	if d.Status != DelegationApproved {
		return false
	}
	return !date.Before(d.ValidFrom) && !date.After(d.ValidTo)
}

// JoinRequest represents a prospective member's request to join a group
type JoinRequest struct {
	ID         string            `json:"id" db:"id"`
	GroupID    string            `json:"groupId" db:"group_id"`
	PersonID   string            `json:"personId" db:"person_id"`
	Status     JoinRequestStatus `json:"status" db:"status"`
	Message    string            `json:"message,omitempty" db:"message"`
	ReviewerID string            `json:"reviewerId,omitempty" db:"reviewer_id"`
	ReviewedAt *time.Time        `json:"reviewedAt,omitempty" db:"reviewed_at"`
	ReviewNote string            `json:"reviewNote,omitempty" db:"review_note"`
	CreatedAt  time.Time         `json:"createdAt" db:"created_at"`
}
