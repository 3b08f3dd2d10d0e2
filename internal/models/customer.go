package models

import (
	"time"
)

// Customer represents a travel agency customer
type Customer struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	FullName    string     `gorm:"not null" json:"full_name"`
	Email       *string    `gorm:"index" json:"email"`
	Phone       string     `gorm:"index" json:"phone"`
	Nationality *string    `json:"nationality"`
	PassportNo  *string    `json:"passport_no"`
	BirthDate   *time.Time `gorm:"type:date" json:"birth_date"`
	Note        *string    `gorm:"type:text" json:"note"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Associations
	Leads    []Lead    `gorm:"foreignKey:CustomerID" json:"leads,omitempty"`
	Bookings []Booking `gorm:"foreignKey:CustomerID" json:"bookings,omitempty"`
}

// TableName specifies the table name for Customer
func (Customer) TableName() string {
	return "customers"
}
