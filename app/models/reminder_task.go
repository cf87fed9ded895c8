package models

import "time"

const (
	TaskStatusPending = "pending"
	TaskStatusSent    = "sent"
	TaskStatusFailed  = "failed"
)

const (
	AlertReminder15 = "reminder-15"
	AlertReminder7  = "reminder-7"
	AlertReminder3  = "reminder-3"
)

// ReminderTask is a durable queue entry meaning "send this alert on this
// date". Tasks are never deleted; sent/failed rows double as an audit log.
// The (subscription, alert type, scheduled date) tuple is unique so the
// generation phase stays idempotent across repeated runs on the same day.
type ReminderTask struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"not null;index" json:"user_id"`
	SubscriptionID uint      `gorm:"not null;uniqueIndex:ux_reminder_tasks_sub_type_date,priority:1" json:"subscription_id"`
	AlertType      string    `gorm:"type:varchar(20);not null;uniqueIndex:ux_reminder_tasks_sub_type_date,priority:2" json:"alert_type"`
	ScheduledFor   time.Time `gorm:"type:date;not null;uniqueIndex:ux_reminder_tasks_sub_type_date,priority:3" json:"scheduled_for"`
	Status         string    `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// AlertTypeForDays maps a days-remaining value to its alert type. The second
// return is false for values outside the reminder thresholds.
func AlertTypeForDays(days int) (string, bool) {
	switch days {
	case 15:
		return AlertReminder15, true
	case 7:
		return AlertReminder7, true
	case 3:
		return AlertReminder3, true
	}
	return "", false
}
