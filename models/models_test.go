package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDelegationIsActiveOn(t *testing.T) {
	delegation := &Delegation{
		Status:    DelegationApproved,
		ValidFrom: day(2025, time.January, 10),
		ValidTo:   day(2025, time.January, 31),
	}

	assert.False(t, delegation.IsActiveOn(day(2025, time.January, 9)))
	assert.True(t, delegation.IsActiveOn(day(2025, time.January, 10)))
	assert.True(t, delegation.IsActiveOn(day(2025, time.January, 15)))
	assert.True(t, delegation.IsActiveOn(day(2025, time.January, 31)))
	assert.False(t, delegation.IsActiveOn(day(2025, time.February, 1)))
}

func TestDelegationIsActiveOn_RequiresApproval(t *testing.T) {
	window := Delegation{
		ValidFrom: day(2025, time.January, 1),
		ValidTo:   day(2025, time.December, 31),
	}
	inside := day(2025, time.June, 15)

	pending := window
	pending.Status = DelegationPending
	assert.False(t, pending.IsActiveOn(inside))

	revoked := window
	revoked.Status = DelegationRevoked
	assert.False(t, revoked.IsActiveOn(inside))
}

func TestMembershipRoles(t *testing.T) {
	admin := &Membership{Role: RoleAdmin}
	treasurer := &Membership{Role: RoleTreasurer}
	member := &Membership{Role: RoleMember}

	assert.True(t, admin.IsAdmin())
	assert.False(t, treasurer.IsAdmin())
	assert.False(t, member.IsAdmin())

	assert.True(t, admin.CanManageLedger())
	assert.True(t, treasurer.CanManageLedger())
	assert.False(t, member.CanManageLedger())
}

func TestPaymentTypeIsMobileMoney(t *testing.T) {
	assert.True(t, PaymentOrangeMoney.IsMobileMoney())
	assert.True(t, PaymentMoovMoney.IsMobileMoney())
	assert.True(t, PaymentWaveMoney.IsMobileMoney())
	assert.False(t, PaymentCash.IsMobileMoney())
	assert.False(t, PaymentBankTransfer.IsMobileMoney())
}
