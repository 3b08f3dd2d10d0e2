// Package leadrules validates manual lead status changes. It is a pure
// decision table: it never touches storage, and a RequiresReason outcome is
// advisory; the caller must reject the write if no reason was supplied.
package leadrules

import "github.com/horizon-travel/crm-api/internal/models"

// Result is the outcome of a status change validation
type Result struct {
	Allowed        bool   `json:"allowed"`
	Warning        string `json:"warning,omitempty"`
	RequiresReason bool   `json:"requires_reason,omitempty"`
}

// statusOrder ranks the pipeline. Manual statuses advance one step at a
// time; all terminal statuses share the final rank.
var statusOrder = map[string]int{
	models.LeadStatusNew:         0,
	models.LeadStatusContacted:   1,
	models.LeadStatusQuoted:      2,
	models.LeadStatusNegotiating: 3,
	models.LeadStatusBooked:      4,
	models.LeadStatusCompleted:   4,
	models.LeadStatusCancelled:   4,
}

// IsManual returns true for agent-driven statuses
func IsManual(status string) bool {
	switch status {
	case models.LeadStatusNew, models.LeadStatusContacted, models.LeadStatusQuoted, models.LeadStatusNegotiating:
		return true
	}
	return false
}

// IsSystem returns true for statuses the sync service manages
func IsSystem(status string) bool {
	switch status {
	case models.LeadStatusBooked, models.LeadStatusCompleted, models.LeadStatusCancelled:
		return true
	}
	return false
}

// ValidateStatusChange decides whether a manual transition from current to
// next is allowed, and whether it needs a confirmation warning and a reason.
func ValidateStatusChange(current, next string, hasActiveBookings bool) Result {
	// Same status is always a no-op
	if current == next {
		return Result{Allowed: true}
	}

	if hasActiveBookings && IsSystem(next) {
		return Result{
			Allowed: false,
			Warning: "Cannot manually change to this status when there are active bookings. Status is managed automatically by the system.",
		}
	}

	if hasActiveBookings && IsSystem(current) {
		return Result{
			Allowed: false,
			Warning: "Cannot change status when there are active bookings. Cancel all bookings first.",
		}
	}

	currentOrder, ok := statusOrder[current]
	if !ok {
		return Result{Allowed: false, Warning: "Unknown current status: " + current}
	}
	nextOrder, ok := statusOrder[next]
	if !ok {
		return Result{Allowed: false, Warning: "Unknown target status: " + next}
	}

	// System targets never ride the normal progression rules.
	// COMPLETED only ever comes from the sync service, off fully paid bookings.
	if next == models.LeadStatusCompleted {
		return Result{
			Allowed: false,
			Warning: "COMPLETED is set automatically by the system when all bookings are fully paid.",
		}
	}

	// Closing the lead as lost
	if next == models.LeadStatusCancelled {
		return Result{
			Allowed:        true,
			Warning:        "You are closing this lead as lost. Please provide a reason.",
			RequiresReason: true,
		}
	}

	// Closing as won by hand; normally the sync service does this when a
	// booking is created
	if next == models.LeadStatusBooked {
		return Result{
			Allowed:        true,
			Warning:        "BOOKED is normally set automatically when a booking is created. Are you sure you want to set this manually?",
			RequiresReason: true,
		}
	}

	// Normal pipeline progression, one step forward
	if nextOrder == currentOrder+1 {
		return Result{Allowed: true}
	}

	// Skipping ahead in the pipeline
	if nextOrder > currentOrder+1 {
		return Result{
			Allowed:        true,
			Warning:        "You are skipping pipeline steps. Please provide a reason.",
			RequiresReason: true,
		}
	}

	// Reverting to an earlier manual status
	if nextOrder < currentOrder {
		return Result{
			Allowed:        true,
			Warning:        "You are reverting the lead to an earlier status. Are you sure?",
			RequiresReason: true,
		}
	}

	return Result{Allowed: true}
}
