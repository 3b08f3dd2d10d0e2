package services

import (
	"time"

	"github.com/horizon-travel/crm-api/internal/config"
	"github.com/horizon-travel/crm-api/internal/jobs"
	"github.com/horizon-travel/crm-api/internal/repository"
	"github.com/horizon-travel/crm-api/internal/storage"
	"gorm.io/gorm"
)

// Services holds all service instances
type Services struct {
	Auth         *AuthService
	User         *UserService
	Customer     *CustomerService
	Trip         *TripService
	Lead         *LeadService
	Booking      *BookingService
	Payment      *PaymentService
	Commission   *CommissionService
	Dashboard    *DashboardService
	Notification *NotificationService
	Export       *ExportService
	Report       *ReportService
	Audit        *AuditService
	Job          *JobService
}

// NewServices creates all service instances
func NewServices(repos *repository.Repositories, worker *jobs.Worker, storage *storage.LocalStorage, cfg *config.Config, db *gorm.DB) *Services {
	notificationSvc := NewNotificationService(repos.Notification, repos.User)
	auditSvc := NewAuditService(db)

	tripSvc := NewTripService(repos.Trip)
	leadSvc := NewLeadService(repos.Lead, repos.Booking, notificationSvc, auditSvc)
	if cfg.LeadAbandonDays > 0 {
		leadSvc.abandonAfter = time.Duration(cfg.LeadAbandonDays) * 24 * time.Hour
	}
	commissionSvc := NewCommissionService(repos.Commission, repos.Booking, repos.Lead, repos.User, notificationSvc, auditSvc)

	return &Services{
		Auth:         NewAuthService(repos.User, repos.RefreshToken, cfg),
		User:         NewUserService(repos.User, auditSvc),
		Customer:     NewCustomerService(repos.Customer, repos.Booking),
		Trip:         tripSvc,
		Lead:         leadSvc,
		Booking:      NewBookingService(repos.Booking, repos.Trip, repos.Customer, repos.Lead, commissionSvc, leadSvc, auditSvc),
		Payment:      NewPaymentService(repos.Payment, repos.Booking, commissionSvc, leadSvc, notificationSvc, auditSvc, storage, worker),
		Commission:   commissionSvc,
		Dashboard:    NewDashboardService(tripSvc, repos.Lead, repos.Commission),
		Notification: notificationSvc,
		Export:       NewExportService(tripSvc, repos.Commission),
		Report:       NewReportService(repos.Commission, repos.Payment, repos.User),
		Audit:        auditSvc,
		Job:          NewJobService(worker),
	}
}
