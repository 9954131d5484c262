package utils

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestValidateIntRange(t *testing.T) {
	assert.NoError(t, ValidateIntRange(2, MinTotalTours, MaxTotalTours, "totalTours"))
	assert.NoError(t, ValidateIntRange(100, MinTotalTours, MaxTotalTours, "totalTours"))
	assert.Error(t, ValidateIntRange(1, MinTotalTours, MaxTotalTours, "totalTours"))
	assert.Error(t, ValidateIntRange(101, MinTotalTours, MaxTotalTours, "totalTours"))

	assert.NoError(t, ValidateIntRange(0, MinGraceDays, MaxGraceDays, "graceDays"))
	assert.NoError(t, ValidateIntRange(30, MinGraceDays, MaxGraceDays, "graceDays"))
	assert.Error(t, ValidateIntRange(-1, MinGraceDays, MaxGraceDays, "graceDays"))
	assert.Error(t, ValidateIntRange(31, MinGraceDays, MaxGraceDays, "graceDays"))
}

func TestValidateAmounts(t *testing.T) {
	assert.NoError(t, ValidatePositiveAmount(decimal.NewFromInt(1000), "amount"))
	assert.Error(t, ValidatePositiveAmount(decimal.Zero, "amount"))
	assert.Error(t, ValidatePositiveAmount(decimal.NewFromInt(-1), "amount"))

	assert.NoError(t, ValidateNonNegativeAmount(decimal.Zero, "penalty"))
	assert.Error(t, ValidateNonNegativeAmount(decimal.NewFromInt(-5), "penalty"))
}

func TestValidateMaxLength(t *testing.T) {
	short := "all good"
	assert.NoError(t, ValidateMaxLength(short, MaxReviewNoteLength, "note"))

	long := make([]byte, MaxReviewNoteLength+1)
	for i := range long {
		long[i] = 'x'
	}
	assert.Error(t, ValidateMaxLength(string(long), MaxReviewNoteLength, "note"))
}

func TestValidateFutureDate(t *testing.T) {
	assert.NoError(t, ValidateFutureDate(time.Now().Add(24*time.Hour), "validTo"))
	assert.Error(t, ValidateFutureDate(time.Now().Add(-time.Minute), "validTo"))
}

func TestIsKind(t *testing.T) {
	assert.True(t, IsKind(NewConflictError("dup"), KindConflict))
	assert.True(t, IsKind(NewNotFoundError("Group"), KindNotFound))
	assert.False(t, IsKind(NewValidationError("bad"), KindConflict))
}
