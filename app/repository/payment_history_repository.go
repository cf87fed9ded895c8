package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/submate-app/SubMate/app/models"
)

// paymentHistoryRepository implements the PaymentHistoryRepository interface
type paymentHistoryRepository struct {
	db *gorm.DB
}

// NewPaymentHistoryRepository creates a new payment history repository instance
func NewPaymentHistoryRepository(db *gorm.DB) PaymentHistoryRepository {
	return &paymentHistoryRepository{db: db}
}

// Create appends one payment ledger entry. There is deliberately no Update
// or Delete counterpart.
func (r *paymentHistoryRepository) Create(entry *models.PaymentHistory) error {
	return r.db.Create(entry).Error
}

// ListBySubscription retrieves all payments for a subscription, newest first
func (r *paymentHistoryRepository) ListBySubscription(subscriptionID uint) ([]models.PaymentHistory, error) {
	var entries []models.PaymentHistory
	err := r.db.Where("subscription_id = ?", subscriptionID).Order("paid_at DESC").Find(&entries).Error
	return entries, err
}

// SumByMonth totals a user's realized payments inside one calendar month
func (r *paymentHistoryRepository) SumByMonth(userID uint, month time.Month, year int) (decimal.Decimal, error) {
	var raw struct {
		Total decimal.Decimal
	}
	err := r.db.Model(&models.PaymentHistory{}).
		Select("COALESCE(SUM(payment_histories.amount), 0) AS total").
		Joins("JOIN subscriptions ON subscriptions.id = payment_histories.subscription_id").
		Where("subscriptions.user_id = ?", userID).
		Where("MONTH(payment_histories.paid_at) = ? AND YEAR(payment_histories.paid_at) = ?", int(month), year).
		Scan(&raw).Error
	if err != nil {
		return decimal.Zero, err
	}
	return raw.Total, nil
}

// SumByMethod totals a user's realized payments grouped by the method
// snapshot captured at pay time.
func (r *paymentHistoryRepository) SumByMethod(userID uint) ([]models.MethodTotal, error) {
	var totals []models.MethodTotal
	err := r.db.Model(&models.PaymentHistory{}).
		Select("payment_histories.method_snapshot AS method, COALESCE(SUM(payment_histories.amount), 0) AS total").
		Joins("JOIN subscriptions ON subscriptions.id = payment_histories.subscription_id").
		Where("subscriptions.user_id = ?", userID).
		Group("payment_histories.method_snapshot").
		Order("total DESC").
		Scan(&totals).Error
	return totals, err
}
