package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsOverdue_GracePeriodScenario(t *testing.T) {
	// Contribution due 2025-01-01 with 3 grace days: the deadline is
	// 2025-01-04 inclusive, so the first overdue day is 2025-01-05.
	dueDate := date(2025, time.January, 1)
	graceDays := 3

	assert.False(t, IsOverdue(dueDate, graceDays, date(2025, time.January, 1)))
	assert.False(t, IsOverdue(dueDate, graceDays, date(2025, time.January, 3)))
	assert.False(t, IsOverdue(dueDate, graceDays, date(2025, time.January, 4)))
	assert.True(t, IsOverdue(dueDate, graceDays, date(2025, time.January, 5)))
	assert.True(t, IsOverdue(dueDate, graceDays, date(2025, time.February, 1)))
}

func TestIsOverdue_ZeroGraceDays(t *testing.T) {
	dueDate := date(2025, time.March, 10)

	assert.False(t, IsOverdue(dueDate, 0, date(2025, time.March, 10)))
	assert.True(t, IsOverdue(dueDate, 0, date(2025, time.March, 11)))
}

func TestIsOverdue_IgnoresTimeOfDay(t *testing.T) {
	dueDate := date(2025, time.January, 1)
	lateEvening := time.Date(2025, time.January, 1, 23, 59, 0, 0, time.UTC)
	assert.False(t, IsOverdue(dueDate, 0, lateEvening))
}
