package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentHistory is one realized payment for a subscription. Entries are
// append-only: amount, date and method snapshot never change after insert,
// and rows only disappear via the FK cascade when the subscription is
// deleted. MethodSnapshot is the payment method at pay time, so later edits
// to the subscription do not rewrite history.
type PaymentHistory struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	SubscriptionID uint            `gorm:"not null;index" json:"subscription_id"`
	Amount         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	PaidAt         time.Time       `gorm:"type:date;not null;index" json:"paid_at"`
	MethodSnapshot string          `gorm:"type:varchar(20);not null" json:"method_snapshot"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

// MethodTotal is an aggregation row for spend grouped by payment method.
type MethodTotal struct {
	Method string          `json:"method"`
	Total  decimal.Decimal `json:"total"`
}
