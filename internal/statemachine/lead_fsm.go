package statemachine

import (
	"context"
	"fmt"

	"github.com/horizon-travel/crm-api/internal/models"
	"github.com/looplab/fsm"
)

// manualStatuses are the agent-driven pipeline states a system transition
// may start from.
var manualStatuses = []string{
	models.LeadStatusNew,
	models.LeadStatusContacted,
	models.LeadStatusQuoted,
	models.LeadStatusNegotiating,
}

// LeadFSM wraps a lead with its system-managed state machine. Only the sync
// service drives these transitions; manual changes go through leadrules
// instead. System states can swing between each other because booking
// payment state can regress (a deleted payment drops COMPLETED back to
// BOOKED, cancelled bookings drop to CANCELLED).
type LeadFSM struct {
	lead *models.Lead
	fsm  *fsm.FSM
}

// NewLeadFSM creates a new lead state machine
func NewLeadFSM(lead *models.Lead) *LeadFSM {
	lfsm := &LeadFSM{
		lead: lead,
	}

	lfsm.fsm = fsm.NewFSM(
		lead.Status,
		fsm.Events{
			// any manual state, or a regressed system state → booked
			{Name: "book", Src: append(append([]string{}, manualStatuses...), models.LeadStatusCompleted, models.LeadStatusCancelled), Dst: models.LeadStatusBooked},

			// booked (or manual, when bookings were already fully paid) → completed
			{Name: "complete", Src: append(append([]string{}, manualStatuses...), models.LeadStatusBooked), Dst: models.LeadStatusCompleted},

			// anything non-cancelled → cancelled
			{Name: "cancel", Src: append(append([]string{}, manualStatuses...), models.LeadStatusBooked, models.LeadStatusCompleted), Dst: models.LeadStatusCancelled},
		},
		fsm.Callbacks{},
	)

	return lfsm
}

// Book transitions the lead to BOOKED
func (l *LeadFSM) Book(ctx context.Context) error {
	if err := l.fsm.Event(ctx, "book"); err != nil {
		return fmt.Errorf("failed to mark lead booked: %w", err)
	}

	l.lead.Status = l.fsm.Current()
	l.lead.Close()
	return nil
}

// Complete transitions the lead to COMPLETED
func (l *LeadFSM) Complete(ctx context.Context) error {
	if err := l.fsm.Event(ctx, "complete"); err != nil {
		return fmt.Errorf("failed to mark lead completed: %w", err)
	}

	l.lead.Status = l.fsm.Current()
	l.lead.Close()
	return nil
}

// Cancel transitions the lead to CANCELLED
func (l *LeadFSM) Cancel(ctx context.Context) error {
	if err := l.fsm.Event(ctx, "cancel"); err != nil {
		return fmt.Errorf("failed to mark lead cancelled: %w", err)
	}

	l.lead.Status = l.fsm.Current()
	l.lead.Close()
	return nil
}

// Current returns the current state
func (l *LeadFSM) Current() string {
	return l.fsm.Current()
}

// Can checks if a transition is possible
func (l *LeadFSM) Can(event string) bool {
	return l.fsm.Can(event)
}
