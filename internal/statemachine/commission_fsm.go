package statemachine

import (
	"context"
	"fmt"
	"time"

	"github.com/horizon-travel/crm-api/internal/models"
	"github.com/looplab/fsm"
)

// CommissionFSM wraps a commission with its state machine.
// PENDING and APPROVED swing back and forth with the booking's payment
// state; PAID is terminal and only ever reached from APPROVED.
type CommissionFSM struct {
	commission *models.Commission
	fsm        *fsm.FSM
}

// NewCommissionFSM creates a new commission state machine
func NewCommissionFSM(commission *models.Commission) *CommissionFSM {
	cfsm := &CommissionFSM{
		commission: commission,
	}

	cfsm.fsm = fsm.NewFSM(
		commission.Status,
		fsm.Events{
			// pending → approved (booking fully paid)
			{Name: "approve", Src: []string{models.CommissionStatusPending}, Dst: models.CommissionStatusApproved},

			// approved → pending (payment regressed or booking cancelled)
			{Name: "revert", Src: []string{models.CommissionStatusApproved}, Dst: models.CommissionStatusPending},

			// approved → paid (explicit payout, terminal)
			{Name: "pay", Src: []string{models.CommissionStatusApproved}, Dst: models.CommissionStatusPaid},
		},
		fsm.Callbacks{},
	)

	return cfsm
}

// Approve transitions the commission to approved
func (c *CommissionFSM) Approve(ctx context.Context) error {
	if !c.commission.MayApprove() {
		return fmt.Errorf("commission cannot be approved in current state: %s", c.commission.Status)
	}

	if err := c.fsm.Event(ctx, "approve"); err != nil {
		return fmt.Errorf("failed to approve commission: %w", err)
	}

	c.commission.Status = c.fsm.Current()
	return nil
}

// Revert drops the commission back to pending
func (c *CommissionFSM) Revert(ctx context.Context) error {
	if !c.commission.MayRevert() {
		return fmt.Errorf("commission cannot be reverted in current state: %s", c.commission.Status)
	}

	if err := c.fsm.Event(ctx, "revert"); err != nil {
		return fmt.Errorf("failed to revert commission: %w", err)
	}

	c.commission.Status = c.fsm.Current()
	return nil
}

// Pay transitions the commission to paid and stamps the payout time
func (c *CommissionFSM) Pay(ctx context.Context) error {
	if !c.commission.MayMarkPaid() {
		return fmt.Errorf("commission must be APPROVED before PAID, current state: %s", c.commission.Status)
	}

	if err := c.fsm.Event(ctx, "pay"); err != nil {
		return fmt.Errorf("failed to pay commission: %w", err)
	}

	c.commission.Status = c.fsm.Current()
	now := time.Now()
	c.commission.PaidAt = &now
	return nil
}

// Current returns the current state
func (c *CommissionFSM) Current() string {
	return c.fsm.Current()
}

// Can checks if a transition is possible
func (c *CommissionFSM) Can(event string) bool {
	return c.fsm.Can(event)
}
