package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPayoutAllowed(t *testing.T) {
	due := decimal.NewFromInt(25000)

	assert.False(t, PayoutAllowed(decimal.Zero, due))
	assert.False(t, PayoutAllowed(decimal.NewFromInt(24999), due))
	assert.True(t, PayoutAllowed(decimal.NewFromInt(25000), due))
	assert.True(t, PayoutAllowed(decimal.NewFromInt(26000), due))
}

func TestPayoutAllowed_ZeroDue(t *testing.T) {
	assert.True(t, PayoutAllowed(decimal.Zero, decimal.Zero))
}
