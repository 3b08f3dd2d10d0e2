package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Booking represents a confirmed trip reservation for a customer.
// PaidAmount is a cache over the booking's payments; only the payment
// service recomputes it.
type Booking struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	CustomerID    uint            `gorm:"not null;index" json:"customer_id"`
	TripID        uint            `gorm:"not null;index" json:"trip_id"`
	LeadID        *uint           `gorm:"index" json:"lead_id"`
	AgentID       *uint           `gorm:"index" json:"agent_id"`
	Travellers    int             `gorm:"not null;default:1" json:"travellers"`
	PaymentStatus string          `gorm:"default:DEPOSIT_PENDING;not null;index" json:"payment_status"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	PaidAmount    decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"paid_amount"`
	Extras        decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"extras"`
	Discount      decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"discount"`
	Note          *string         `gorm:"type:text" json:"note"`
	CancelledAt   *time.Time      `json:"cancelled_at"`
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	// Associations
	Customer   Customer    `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Trip       Trip        `gorm:"foreignKey:TripID" json:"trip,omitempty"`
	Lead       *Lead       `gorm:"foreignKey:LeadID" json:"lead,omitempty"`
	Agent      *User       `gorm:"foreignKey:AgentID" json:"agent,omitempty"`
	Payments   []Payment   `gorm:"foreignKey:BookingID" json:"payments,omitempty"`
	Commission *Commission `gorm:"foreignKey:BookingID" json:"commission,omitempty"`
}

// TableName specifies the table name for Booking
func (Booking) TableName() string {
	return "bookings"
}

// Payment status constants
const (
	PaymentStatusDepositPending = "DEPOSIT_PENDING"
	PaymentStatusDepositPaid    = "DEPOSIT_PAID"
	PaymentStatusFullyPaid      = "FULLY_PAID"
	PaymentStatusCancelled      = "CANCELLED"
)

// ActivePaymentStatuses are the statuses of a live sale with money received.
// Leads lock and commissions accrue against these.
var ActivePaymentStatuses = []string{PaymentStatusDepositPaid, PaymentStatusFullyPaid}

// IsActive returns true if the booking is a live sale (deposit or fully paid)
func (b *Booking) IsActive() bool {
	return b.PaymentStatus == PaymentStatusDepositPaid || b.PaymentStatus == PaymentStatusFullyPaid
}

// IsFullyPaid returns true if the booking has been paid in full
func (b *Booking) IsFullyPaid() bool {
	return b.PaymentStatus == PaymentStatusFullyPaid
}

// IsCancelled returns true if the booking was cancelled
func (b *Booking) IsCancelled() bool {
	return b.PaymentStatus == PaymentStatusCancelled
}

// IsSettled returns true if paid_amount covers total_amount
func (b *Booking) IsSettled() bool {
	return b.PaidAmount.GreaterThanOrEqual(b.TotalAmount)
}

// Outstanding returns the amount still owed, never negative
func (b *Booking) Outstanding() decimal.Decimal {
	out := b.TotalAmount.Sub(b.PaidAmount)
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}

// BookingResponse is the JSON response format for bookings
type BookingResponse struct {
	ID            uint            `json:"id"`
	CustomerID    uint            `json:"customer_id"`
	TripID        uint            `json:"trip_id"`
	LeadID        *uint           `json:"lead_id"`
	AgentID       *uint           `json:"agent_id"`
	Travellers    int             `json:"travellers"`
	PaymentStatus string          `json:"payment_status"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	Outstanding   decimal.Decimal `json:"outstanding"`
	Note          *string         `json:"note"`
	CustomerName  string          `json:"customer_name,omitempty"`
	TripName      string          `json:"trip_name,omitempty"`
	AgentName     string          `json:"agent_name,omitempty"`
	CancelledAt   *time.Time      `json:"cancelled_at"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ToResponse converts Booking to BookingResponse
func (b *Booking) ToResponse() BookingResponse {
	resp := BookingResponse{
		ID:            b.ID,
		CustomerID:    b.CustomerID,
		TripID:        b.TripID,
		LeadID:        b.LeadID,
		AgentID:       b.AgentID,
		Travellers:    b.Travellers,
		PaymentStatus: b.PaymentStatus,
		TotalAmount:   b.TotalAmount,
		PaidAmount:    b.PaidAmount,
		Outstanding:   b.Outstanding(),
		Note:          b.Note,
		CancelledAt:   b.CancelledAt,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}

	if b.Customer.ID != 0 {
		resp.CustomerName = b.Customer.FullName
	}
	if b.Trip.ID != 0 {
		resp.TripName = b.Trip.Name
	}
	if b.Agent != nil && b.Agent.ID != 0 {
		resp.AgentName = b.Agent.FullName
	}

	return resp
}
