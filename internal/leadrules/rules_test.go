package leadrules

import (
	"testing"

	"github.com/horizon-travel/crm-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestValidateStatusChange_SameStatus(t *testing.T) {
	statuses := []string{
		models.LeadStatusNew,
		models.LeadStatusContacted,
		models.LeadStatusQuoted,
		models.LeadStatusNegotiating,
		models.LeadStatusBooked,
		models.LeadStatusCompleted,
		models.LeadStatusCancelled,
	}

	for _, s := range statuses {
		result := ValidateStatusChange(s, s, false)
		assert.True(t, result.Allowed, "same-status change should be allowed for %s", s)
		assert.Empty(t, result.Warning)
		assert.False(t, result.RequiresReason)
	}
}

func TestValidateStatusChange_ActiveBookingsLockSystemStatuses(t *testing.T) {
	// Cannot move to a system status by hand while bookings are active
	result := ValidateStatusChange(models.LeadStatusNegotiating, models.LeadStatusBooked, true)
	assert.False(t, result.Allowed)
	assert.Contains(t, result.Warning, "managed automatically")

	// Cannot move away from a system status while bookings are active
	result = ValidateStatusChange(models.LeadStatusBooked, models.LeadStatusContacted, true)
	assert.False(t, result.Allowed)
	assert.Contains(t, result.Warning, "Cancel all bookings")
}

func TestValidateStatusChange_UnknownStatus(t *testing.T) {
	assert.False(t, ValidateStatusChange("BOGUS", models.LeadStatusContacted, false).Allowed)
	assert.False(t, ValidateStatusChange(models.LeadStatusNew, "BOGUS", false).Allowed)
}

func TestValidateStatusChange_OneStepForward(t *testing.T) {
	result := ValidateStatusChange(models.LeadStatusNew, models.LeadStatusContacted, false)
	assert.True(t, result.Allowed)
	assert.False(t, result.RequiresReason)

	result = ValidateStatusChange(models.LeadStatusQuoted, models.LeadStatusNegotiating, false)
	assert.True(t, result.Allowed)
	assert.False(t, result.RequiresReason)
}

func TestValidateStatusChange_SkippingStepsNeedsReason(t *testing.T) {
	result := ValidateStatusChange(models.LeadStatusNew, models.LeadStatusNegotiating, false)
	assert.True(t, result.Allowed)
	assert.True(t, result.RequiresReason)
	assert.Contains(t, result.Warning, "skipping")

	result = ValidateStatusChange(models.LeadStatusNew, models.LeadStatusQuoted, false)
	assert.True(t, result.Allowed)
	assert.True(t, result.RequiresReason)
}

func TestValidateStatusChange_RevertNeedsReason(t *testing.T) {
	result := ValidateStatusChange(models.LeadStatusNegotiating, models.LeadStatusContacted, false)
	assert.True(t, result.Allowed)
	assert.True(t, result.RequiresReason)
	assert.Contains(t, result.Warning, "reverting")
}

func TestValidateStatusChange_CloseLost(t *testing.T) {
	result := ValidateStatusChange(models.LeadStatusNew, models.LeadStatusCancelled, false)
	assert.True(t, result.Allowed)
	assert.True(t, result.RequiresReason)

	result = ValidateStatusChange(models.LeadStatusNegotiating, models.LeadStatusCancelled, false)
	assert.True(t, result.Allowed)
	assert.True(t, result.RequiresReason)
}

func TestValidateStatusChange_ManualBookedFlagged(t *testing.T) {
	result := ValidateStatusChange(models.LeadStatusContacted, models.LeadStatusBooked, false)
	assert.True(t, result.Allowed)
	assert.True(t, result.RequiresReason)
	assert.Contains(t, result.Warning, "automatically")
}

func TestValidateStatusChange_ManualCompletedRejected(t *testing.T) {
	result := ValidateStatusChange(models.LeadStatusNegotiating, models.LeadStatusCompleted, false)
	assert.False(t, result.Allowed)
	assert.Contains(t, result.Warning, "automatically")
}

func TestStatusClassification(t *testing.T) {
	assert.True(t, IsManual(models.LeadStatusNew))
	assert.True(t, IsManual(models.LeadStatusNegotiating))
	assert.False(t, IsManual(models.LeadStatusBooked))

	assert.True(t, IsSystem(models.LeadStatusBooked))
	assert.True(t, IsSystem(models.LeadStatusCompleted))
	assert.True(t, IsSystem(models.LeadStatusCancelled))
	assert.False(t, IsSystem(models.LeadStatusQuoted))
}
