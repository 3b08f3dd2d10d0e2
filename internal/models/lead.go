package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Lead represents a prospective sale. Manual statuses are agent-driven;
// system statuses are written only by the lead sync service based on the
// customer's booking payment state.
type Lead struct {
	ID                  uint            `gorm:"primaryKey" json:"id"`
	CustomerID          *uint           `gorm:"index" json:"customer_id"`
	AgentID             *uint           `gorm:"index" json:"agent_id"`
	Status              string          `gorm:"default:NEW;not null;index" json:"status"`
	Source              string          `gorm:"default:OTHER" json:"source"`
	PotentialValue      decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"potential_value"`
	DestinationInterest *string         `json:"destination_interest"`
	TravelDateEstimate  *time.Time      `gorm:"type:date" json:"travel_date_estimate"`
	Note                *string         `gorm:"type:text" json:"note"`
	LastActivityAt      time.Time       `gorm:"not null;index" json:"last_activity_at"`
	ClosedAt            *time.Time      `json:"closed_at"`
	CreatedAt           time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`

	// Associations
	Customer *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Agent    *User     `gorm:"foreignKey:AgentID" json:"agent,omitempty"`
	Bookings []Booking `gorm:"foreignKey:LeadID" json:"bookings,omitempty"`
}

// TableName specifies the table name for Lead
func (Lead) TableName() string {
	return "leads"
}

// BeforeCreate hook for setting defaults
func (l *Lead) BeforeCreate(tx *gorm.DB) error {
	if l.Status == "" {
		l.Status = LeadStatusNew
	}
	if l.LastActivityAt.IsZero() {
		l.LastActivityAt = time.Now()
	}
	return nil
}

// Lead status constants. NEW..NEGOTIATING are manual (agent-driven);
// BOOKED, COMPLETED and CANCELLED are system-managed.
const (
	LeadStatusNew         = "NEW"
	LeadStatusContacted   = "CONTACTED"
	LeadStatusQuoted      = "QUOTED"
	LeadStatusNegotiating = "NEGOTIATING"
	LeadStatusBooked      = "BOOKED"
	LeadStatusCompleted   = "COMPLETED"
	LeadStatusCancelled   = "CANCELLED"
)

// Lead source constants
const (
	LeadSourceWebsite  = "WEBSITE"
	LeadSourceWalkin   = "WALKIN"
	LeadSourceReferral = "REFERRAL"
	LeadSourceSocial   = "SOCIAL"
	LeadSourceLine     = "LINE"
	LeadSourceOther    = "OTHER"
)

// Touch bumps the activity timestamp
func (l *Lead) Touch() {
	l.LastActivityAt = time.Now()
}

// Close stamps the terminal transition time
func (l *Lead) Close() {
	now := time.Now()
	l.ClosedAt = &now
	l.LastActivityAt = now
}

// LeadResponse is the JSON response format for leads
type LeadResponse struct {
	ID                  uint            `json:"id"`
	CustomerID          *uint           `json:"customer_id"`
	AgentID             *uint           `json:"agent_id"`
	Status              string          `json:"status"`
	Source              string          `json:"source"`
	PotentialValue      decimal.Decimal `json:"potential_value"`
	DestinationInterest *string         `json:"destination_interest"`
	TravelDateEstimate  *time.Time      `json:"travel_date_estimate"`
	Note                *string         `json:"note"`
	CustomerName        string          `json:"customer_name,omitempty"`
	AgentName           string          `json:"agent_name,omitempty"`
	LastActivityAt      time.Time       `json:"last_activity_at"`
	ClosedAt            *time.Time      `json:"closed_at"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// ToResponse converts Lead to LeadResponse
func (l *Lead) ToResponse() LeadResponse {
	resp := LeadResponse{
		ID:                  l.ID,
		CustomerID:          l.CustomerID,
		AgentID:             l.AgentID,
		Status:              l.Status,
		Source:              l.Source,
		PotentialValue:      l.PotentialValue,
		DestinationInterest: l.DestinationInterest,
		TravelDateEstimate:  l.TravelDateEstimate,
		Note:                l.Note,
		LastActivityAt:      l.LastActivityAt,
		ClosedAt:            l.ClosedAt,
		CreatedAt:           l.CreatedAt,
		UpdatedAt:           l.UpdatedAt,
	}

	if l.Customer != nil && l.Customer.ID != 0 {
		resp.CustomerName = l.Customer.FullName
	}
	if l.Agent != nil && l.Agent.ID != 0 {
		resp.AgentName = l.Agent.FullName
	}

	return resp
}
