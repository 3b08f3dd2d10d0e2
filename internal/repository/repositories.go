package repository

import (
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	User         UserRepository
	Customer     CustomerRepository
	Trip         TripRepository
	Lead         LeadRepository
	Booking      BookingRepository
	Payment      PaymentRepository
	Commission   CommissionRepository
	Notification NotificationRepository
	RefreshToken RefreshTokenRepository
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Customer:     NewCustomerRepository(db),
		Trip:         NewTripRepository(db),
		Lead:         NewLeadRepository(db),
		Booking:      NewBookingRepository(db),
		Payment:      NewPaymentRepository(db),
		Commission:   NewCommissionRepository(db),
		Notification: NewNotificationRepository(db),
		RefreshToken: NewRefreshTokenRepository(db),
	}
}
