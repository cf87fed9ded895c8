package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/submate-app/SubMate/app/models"
)

// reminderTaskRepository implements the ReminderTaskRepository interface
type reminderTaskRepository struct {
	db *gorm.DB
}

// NewReminderTaskRepository creates a new reminder task repository instance
func NewReminderTaskRepository(db *gorm.DB) ReminderTaskRepository {
	return &reminderTaskRepository{db: db}
}

// Create enqueues a reminder task
func (r *reminderTaskRepository) Create(task *models.ReminderTask) error {
	return r.db.Create(task).Error
}

// Exists reports whether a task already exists for the given
// (subscription, alert type, scheduled date) tuple, regardless of status.
// The generation phase checks this before inserting so repeated runs on the
// same day stay idempotent.
func (r *reminderTaskRepository) Exists(subscriptionID uint, alertType string, scheduledFor time.Time) (bool, error) {
	var task models.ReminderTask
	err := r.db.
		Where("subscription_id = ? AND alert_type = ? AND scheduled_for = ?", subscriptionID, alertType, scheduledFor).
		First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListPendingDue retrieves all pending tasks scheduled on or before asOf
func (r *reminderTaskRepository) ListPendingDue(asOf time.Time) ([]models.ReminderTask, error) {
	var tasks []models.ReminderTask
	err := r.db.
		Where("status = ? AND scheduled_for <= ?", models.TaskStatusPending, asOf).
		Order("id ASC").
		Find(&tasks).Error
	return tasks, err
}

// MarkSent transitions a task to sent
func (r *reminderTaskRepository) MarkSent(id uint) error {
	return r.setStatus(id, models.TaskStatusSent)
}

// MarkFailed transitions a task to failed. Failed tasks are terminal; there
// is no automatic retry.
func (r *reminderTaskRepository) MarkFailed(id uint) error {
	return r.setStatus(id, models.TaskStatusFailed)
}

func (r *reminderTaskRepository) setStatus(id uint, status string) error {
	return r.db.Model(&models.ReminderTask{}).Where("id = ?", id).Update("status", status).Error
}
