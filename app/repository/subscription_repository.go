package repository

import (
	"gorm.io/gorm"

	"github.com/submate-app/SubMate/app/models"
)

// subscriptionRepository implements the SubscriptionRepository interface
type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new subscription repository instance
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

// Create inserts a new subscription row
func (r *subscriptionRepository) Create(sub *models.Subscription) error {
	return r.db.Create(sub).Error
}

// GetByIDAndUser retrieves a subscription scoped to its owner, so one user
// can never read another user's row.
func (r *subscriptionRepository) GetByIDAndUser(id, userID uint) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// ListByUser retrieves all subscriptions for a user, newest-created first
func (r *subscriptionRepository) ListByUser(userID uint) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&subs).Error
	return subs, err
}

// ListActive retrieves every active subscription across all users; the
// reminder worker scans this set once per run.
func (r *subscriptionRepository) ListActive() ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.Where("status = ?", models.SubscriptionStatusActive).Find(&subs).Error
	return subs, err
}

// Update applies a partial field update. GORM's Updates refreshes updated_at
// through autoUpdateTime, which is the application-layer "touch" on write.
func (r *subscriptionRepository) Update(id uint, fields map[string]interface{}) error {
	return r.db.Model(&models.Subscription{}).Where("id = ?", id).Updates(fields).Error
}

// Delete removes a subscription; payment history rows follow via FK cascade.
func (r *subscriptionRepository) Delete(id uint) error {
	return r.db.Delete(&models.Subscription{}, id).Error
}

// FindByNormalizedName looks up a subscription by its case- and
// space-insensitive name form. The comparison runs in SQL so no extra
// normalized column is needed; uniqueness is a business rule, not a schema
// constraint.
func (r *subscriptionRepository) FindByNormalizedName(userID uint, normalized string) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.
		Where("user_id = ? AND REPLACE(LOWER(service_name), ' ', '') = ?", userID, normalized).
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}
