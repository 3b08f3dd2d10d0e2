package statemachine

import (
	"context"
	"testing"

	"github.com/horizon-travel/crm-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestCommissionFSM_ApproveFromPending(t *testing.T) {
	commission := &models.Commission{Status: models.CommissionStatusPending}
	cfsm := NewCommissionFSM(commission)

	err := cfsm.Approve(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, models.CommissionStatusApproved, commission.Status)
}

func TestCommissionFSM_PayRequiresApproved(t *testing.T) {
	commission := &models.Commission{Status: models.CommissionStatusPending}
	cfsm := NewCommissionFSM(commission)

	err := cfsm.Pay(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "must be APPROVED before PAID")
	assert.Equal(t, models.CommissionStatusPending, commission.Status)
	assert.Nil(t, commission.PaidAt)
}

func TestCommissionFSM_PayFromApproved(t *testing.T) {
	commission := &models.Commission{Status: models.CommissionStatusApproved}
	cfsm := NewCommissionFSM(commission)

	err := cfsm.Pay(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, models.CommissionStatusPaid, commission.Status)
	assert.NotNil(t, commission.PaidAt)
}

func TestCommissionFSM_RevertFromApproved(t *testing.T) {
	commission := &models.Commission{Status: models.CommissionStatusApproved}
	cfsm := NewCommissionFSM(commission)

	err := cfsm.Revert(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, models.CommissionStatusPending, commission.Status)
}

func TestCommissionFSM_PaidIsTerminal(t *testing.T) {
	commission := &models.Commission{Status: models.CommissionStatusPaid}
	cfsm := NewCommissionFSM(commission)

	assert.Error(t, cfsm.Revert(context.Background()))
	assert.Error(t, cfsm.Approve(context.Background()))
	assert.Equal(t, models.CommissionStatusPaid, commission.Status)
}

func TestLeadFSM_BookFromManual(t *testing.T) {
	lead := &models.Lead{Status: models.LeadStatusNegotiating}
	lfsm := NewLeadFSM(lead)

	err := lfsm.Book(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, models.LeadStatusBooked, lead.Status)
	assert.NotNil(t, lead.ClosedAt)
}

func TestLeadFSM_CompleteAndRegress(t *testing.T) {
	lead := &models.Lead{Status: models.LeadStatusBooked}
	lfsm := NewLeadFSM(lead)

	err := lfsm.Complete(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, models.LeadStatusCompleted, lead.Status)

	// A deleted payment can regress a completed lead back to booked
	lfsm = NewLeadFSM(lead)
	err = lfsm.Book(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, models.LeadStatusBooked, lead.Status)
}

func TestLeadFSM_CancelFromCancelledFails(t *testing.T) {
	lead := &models.Lead{Status: models.LeadStatusCancelled}
	lfsm := NewLeadFSM(lead)

	assert.Error(t, lfsm.Cancel(context.Background()))
}
