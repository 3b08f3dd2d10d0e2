package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trip represents a group trip offered by the agency. Trip status is never
// stored: it is derived from dates and booking counts on every read
// (see internal/tripstatus).
type Trip struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"not null" json:"name"`
	Destination string          `gorm:"not null;index" json:"destination"`
	StartDate   time.Time       `gorm:"not null;index" json:"start_date"`
	EndDate     time.Time       `gorm:"not null" json:"end_date"`
	Pax         int             `gorm:"not null" json:"pax"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Description *string         `gorm:"type:text" json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	// Associations
	Bookings []Booking `gorm:"foreignKey:TripID" json:"bookings,omitempty"`
}

// TableName specifies the table name for Trip
func (Trip) TableName() string {
	return "trips"
}

// TripResponse is the JSON response format for trips, including the
// derived status and current booking count
type TripResponse struct {
	ID             uint            `json:"id"`
	Name           string          `json:"name"`
	Destination    string          `json:"destination"`
	StartDate      time.Time       `json:"start_date"`
	EndDate        time.Time       `json:"end_date"`
	Pax            int             `json:"pax"`
	Price          decimal.Decimal `json:"price"`
	Description    *string         `json:"description"`
	Status         string          `json:"status"`
	ActiveBookings int             `json:"active_bookings"`
	SeatsLeft      int             `json:"seats_left"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ToResponse converts Trip to TripResponse with its derived status
func (t *Trip) ToResponse(status string, activeBookings int) TripResponse {
	seatsLeft := t.Pax - activeBookings
	if seatsLeft < 0 {
		seatsLeft = 0
	}
	return TripResponse{
		ID:             t.ID,
		Name:           t.Name,
		Destination:    t.Destination,
		StartDate:      t.StartDate,
		EndDate:        t.EndDate,
		Pax:            t.Pax,
		Price:          t.Price,
		Description:    t.Description,
		Status:         status,
		ActiveBookings: activeBookings,
		SeatsLeft:      seatsLeft,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}
