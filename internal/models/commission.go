package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Commission records money owed to an agent for a booking. One commission
// per booking, created idempotently once the booking has a resolvable agent.
type Commission struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	BookingID uint            `gorm:"not null;uniqueIndex" json:"booking_id"`
	AgentID   uint            `gorm:"not null;index" json:"agent_id"`
	LeadID    *uint           `gorm:"index" json:"lead_id"`
	Type      string          `gorm:"not null" json:"type"`
	Rate      decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"rate"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Status    string          `gorm:"default:PENDING;not null;index" json:"status"`
	Note      *string         `gorm:"type:text" json:"note"`
	PaidAt    *time.Time      `json:"paid_at"`
	CreatedAt time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`

	// Associations
	Booking Booking `gorm:"foreignKey:BookingID" json:"booking,omitempty"`
	Agent   User    `gorm:"foreignKey:AgentID" json:"agent,omitempty"`
	Lead    *Lead   `gorm:"foreignKey:LeadID" json:"lead,omitempty"`
}

// TableName specifies the table name for Commission
func (Commission) TableName() string {
	return "commissions"
}

// Commission status constants
const (
	CommissionStatusPending  = "PENDING"
	CommissionStatusApproved = "APPROVED"
	CommissionStatusPaid     = "PAID"
)

// Commission type constants
const (
	CommissionTypeSales   = "SALES"
	CommissionTypeService = "SERVICE"
	CommissionTypeWalkin  = "WALKIN"
)

// MayApprove returns true if the commission can move to approved
func (c *Commission) MayApprove() bool {
	return c.Status == CommissionStatusPending
}

// MayRevert returns true if the commission can drop back to pending
func (c *Commission) MayRevert() bool {
	return c.Status == CommissionStatusApproved
}

// MayMarkPaid returns true if the commission can be paid out.
// PAID is terminal and only ever reached from APPROVED.
func (c *Commission) MayMarkPaid() bool {
	return c.Status == CommissionStatusApproved
}

// IsPaid returns true if the commission has been paid out
func (c *Commission) IsPaid() bool {
	return c.Status == CommissionStatusPaid
}

// CommissionResponse is the JSON response format for commissions
type CommissionResponse struct {
	ID         uint            `json:"id"`
	BookingID  uint            `json:"booking_id"`
	AgentID    uint            `json:"agent_id"`
	LeadID     *uint           `json:"lead_id"`
	Type       string          `json:"type"`
	Rate       decimal.Decimal `json:"rate"`
	Amount     decimal.Decimal `json:"amount"`
	Status     string          `json:"status"`
	Note       *string         `json:"note"`
	PaidAt     *time.Time      `json:"paid_at"`
	AgentName  string          `json:"agent_name,omitempty"`
	TripName   string          `json:"trip_name,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// ToResponse converts Commission to CommissionResponse
func (c *Commission) ToResponse() CommissionResponse {
	resp := CommissionResponse{
		ID:        c.ID,
		BookingID: c.BookingID,
		AgentID:   c.AgentID,
		LeadID:    c.LeadID,
		Type:      c.Type,
		Rate:      c.Rate,
		Amount:    c.Amount,
		Status:    c.Status,
		Note:      c.Note,
		PaidAt:    c.PaidAt,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}

	if c.Agent.ID != 0 {
		resp.AgentName = c.Agent.FullName
	}
	if c.Booking.ID != 0 && c.Booking.Trip.ID != 0 {
		resp.TripName = c.Booking.Trip.Name
	}

	return resp
}
