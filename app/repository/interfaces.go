package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/submate-app/SubMate/app/models"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
}

// SubscriptionRepository defines the interface for subscription storage.
// Callers (the lifecycle service) are responsible for keeping billing-cycle
// invariants consistent before writing.
type SubscriptionRepository interface {
	Create(sub *models.Subscription) error
	GetByIDAndUser(id, userID uint) (*models.Subscription, error)
	ListByUser(userID uint) ([]models.Subscription, error)
	ListActive() ([]models.Subscription, error)
	// Update persists the given fields and refreshes updated_at, replacing
	// the original schema's BEFORE UPDATE touch trigger at the app layer.
	Update(id uint, fields map[string]interface{}) error
	Delete(id uint) error
	FindByNormalizedName(userID uint, normalized string) (*models.Subscription, error)
}

// PaymentHistoryRepository defines the append-only payment ledger. Entries
// are never updated or deleted here; removal happens only through the FK
// cascade when a subscription is deleted.
type PaymentHistoryRepository interface {
	Create(entry *models.PaymentHistory) error
	ListBySubscription(subscriptionID uint) ([]models.PaymentHistory, error)
	SumByMonth(userID uint, month time.Month, year int) (decimal.Decimal, error)
	SumByMethod(userID uint) ([]models.MethodTotal, error)
}

// ReminderTaskRepository defines the durable reminder queue.
type ReminderTaskRepository interface {
	Create(task *models.ReminderTask) error
	Exists(subscriptionID uint, alertType string, scheduledFor time.Time) (bool, error)
	ListPendingDue(asOf time.Time) ([]models.ReminderTask, error)
	MarkSent(id uint) error
	MarkFailed(id uint) error
}

// Repositories struct holds all repository instances
type Repositories struct {
	User           UserRepository
	Subscription   SubscriptionRepository
	PaymentHistory PaymentHistoryRepository
	ReminderTask   ReminderTaskRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:           NewUserRepository(db),
		Subscription:   NewSubscriptionRepository(db),
		PaymentHistory: NewPaymentHistoryRepository(db),
		ReminderTask:   NewReminderTaskRepository(db),
	}
}
