package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoginRequest request model
type LoginRequest struct {
	Phone string `json:"phone" binding:"required"`
	Pin   string `json:"pin" binding:"required"`
}

// LoginResponse response model
type LoginResponse struct {
	Token    string `json:"token"`
	PersonID string `json:"personId"`
	Name     string `json:"name"`
}

// CreateGroupRequest request model
type CreateGroupRequest struct {
	Name              string          `json:"name" binding:"required"`
	Amount            decimal.Decimal `json:"amount" binding:"required"`
	Frequency         Frequency       `json:"frequency" binding:"required"`
	RotationPolicy    RotationPolicy  `json:"rotationPolicy" binding:"required"`
	TotalTours        int             `json:"totalTours" binding:"required"`
	StartDate         time.Time       `json:"startDate" binding:"required"`
	LatePenaltyAmount decimal.Decimal `json:"latePenaltyAmount"`
	GraceDays         int             `json:"graceDays"`
}

// GetGroupByCodeRequest request model
type GetGroupByCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

// GenerateToursRequest request model
type GenerateToursRequest struct {
	CustomOrder []string `json:"customOrder,omitempty"`
	Shuffle     bool     `json:"shuffle,omitempty"`
}

// ReorganizeToursRequest request model
type ReorganizeToursRequest struct {
	// NewOrder maps tour index to beneficiary person id.
	NewOrder map[int]string `json:"newOrder" binding:"required"`
}

// DeclarePaymentRequest request model
type DeclarePaymentRequest struct {
	ContributionID string          `json:"contributionId" binding:"required"`
	Amount         decimal.Decimal `json:"amount" binding:"required"`
	Type           PaymentType     `json:"type" binding:"required"`
	ExternalRef    string          `json:"externalRef,omitempty"`
	Notes          string          `json:"notes,omitempty"`
}

// ValidatePaymentRequest request model for admin validation of cash payments
type ValidatePaymentRequest struct {
	Confirmed bool   `json:"confirmed"`
	Notes     string `json:"notes,omitempty"`
}

// GatewayCallbackRequest request model for mobile-money confirmations
type GatewayCallbackRequest struct {
	ExternalRef string `json:"externalRef" binding:"required"`
	Success     bool   `json:"success"`
}

// ProcessPayoutRequest request model
type ProcessPayoutRequest struct {
	Type        PaymentType `json:"type" binding:"required"`
	ExternalRef string      `json:"externalRef,omitempty"`
}

// WaiveContributionRequest request model
type WaiveContributionRequest struct {
	Notes string `json:"notes,omitempty"`
}

// CreateDelegationRequest request model
type CreateDelegationRequest struct {
	GroupID   string    `json:"groupId" binding:"required"`
	ProxyID   string    `json:"proxyId" binding:"required"`
	ValidFrom time.Time `json:"validFrom" binding:"required"`
	ValidTo   time.Time `json:"validTo" binding:"required"`
}

// CreateJoinRequestRequest request model
type CreateJoinRequestRequest struct {
	GroupID string `json:"groupId" binding:"required"`
	Message string `json:"message,omitempty"`
}

// ReviewAction is the decision taken on a join request
type ReviewAction string

const (
	ReviewApprove ReviewAction = "APPROVE"
	ReviewReject  ReviewAction = "REJECT"
)

// ReviewJoinRequestRequest request model
type ReviewJoinRequestRequest struct {
	Action ReviewAction `json:"action" binding:"required"`
	Note   string       `json:"note,omitempty"`
}

// TourSnapshot is a tour enriched with its computed collection totals
type TourSnapshot struct {
	Tour           Tour            `json:"tour"`
	TotalDue       decimal.Decimal `json:"totalDue"`
	TotalCollected decimal.Decimal `json:"totalCollected"`
	Contributions  []Contribution  `json:"contributions,omitempty"`
}
