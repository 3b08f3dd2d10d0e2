package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Payment represents money received against a booking. Payments are
// append-only; deleting one triggers a paid-amount recompute on the booking.
type Payment struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	BookingID        uint            `gorm:"not null;index" json:"booking_id"`
	Amount           decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Method           string          `gorm:"default:transfer" json:"method"`
	PaidAt           time.Time       `gorm:"not null;index" json:"paid_at"`
	ReceiptPath      *string         `json:"-"`
	RecordedByUserID *uint           `gorm:"index" json:"recorded_by_user_id"`
	Note             *string         `gorm:"type:text" json:"note"`
	CreatedAt        time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`

	// Associations
	Booking        Booking `gorm:"foreignKey:BookingID" json:"booking,omitempty"`
	RecordedByUser *User   `gorm:"foreignKey:RecordedByUserID" json:"recorded_by_user,omitempty"`
}

// TableName specifies the table name for Payment
func (Payment) TableName() string {
	return "payments"
}

// Payment method constants
const (
	PaymentMethodCash      = "cash"
	PaymentMethodTransfer  = "transfer"
	PaymentMethodCard      = "card"
	PaymentMethodPromptPay = "promptpay"
)

// PaymentResponse is the JSON response format for payments
type PaymentResponse struct {
	ID         uint            `json:"id"`
	BookingID  uint            `json:"booking_id"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method"`
	PaidAt     time.Time       `json:"paid_at"`
	Note       *string         `json:"note"`
	HasReceipt bool            `json:"has_receipt"`
	IsPDF      bool            `json:"is_pdf"`
	RecordedBy string          `json:"recorded_by,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// ToResponse converts Payment to PaymentResponse
func (p *Payment) ToResponse() PaymentResponse {
	resp := PaymentResponse{
		ID:         p.ID,
		BookingID:  p.BookingID,
		Amount:     p.Amount,
		Method:     p.Method,
		PaidAt:     p.PaidAt,
		Note:       p.Note,
		HasReceipt: p.ReceiptPath != nil && *p.ReceiptPath != "",
		IsPDF:      p.ReceiptPath != nil && strings.HasSuffix(strings.ToLower(*p.ReceiptPath), ".pdf"),
		CreatedAt:  p.CreatedAt,
	}

	if p.RecordedByUser != nil && p.RecordedByUser.ID != 0 {
		resp.RecordedBy = p.RecordedByUser.FullName
	}

	return resp
}
