package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// User represents a staff member (admin or sales agent)
type User struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	Email             string          `gorm:"uniqueIndex;not null" json:"email"`
	EncryptedPassword string          `gorm:"column:encrypted_password;not null" json:"-"`
	FullName          string          `json:"full_name"`
	Phone             string          `json:"phone"`
	Role              string          `gorm:"default:agent" json:"role"`
	Status            string          `gorm:"default:active" json:"status"`
	CommissionRate    decimal.Decimal `gorm:"type:decimal(5,2);default:0" json:"commission_rate"`
	DiscardedAt       *time.Time      `gorm:"index" json:"-"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`

	// Associations
	Leads       []Lead       `gorm:"foreignKey:AgentID" json:"leads,omitempty"`
	Bookings    []Booking    `gorm:"foreignKey:AgentID" json:"bookings,omitempty"`
	Commissions []Commission `gorm:"foreignKey:AgentID" json:"commissions,omitempty"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// BeforeCreate hook for setting defaults
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.Role == "" {
		u.Role = RoleAgent
	}
	if u.Status == "" {
		u.Status = StatusActive
	}
	return nil
}

// IsAgent returns true if user has agent role
func (u *User) IsAgent() bool {
	return u.Role == RoleAgent
}

// IsActive returns true if user status is active
func (u *User) IsActive() bool {
	return u.Status == StatusActive && u.DiscardedAt == nil
}

// Role constants
const (
	RoleAdmin = "admin"
	RoleAgent = "agent"
)

// Status constants
const (
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusSuspended = "suspended"
)

// UserResponse is the JSON response format for users
type UserResponse struct {
	ID             uint            `json:"id"`
	Email          string          `json:"email"`
	FullName       string          `json:"full_name"`
	Phone          string          `json:"phone"`
	Role           string          `json:"role"`
	Status         string          `json:"status"`
	CommissionRate decimal.Decimal `json:"commission_rate"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:             u.ID,
		Email:          u.Email,
		FullName:       u.FullName,
		Phone:          u.Phone,
		Role:           u.Role,
		Status:         u.Status,
		CommissionRate: u.CommissionRate,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}
