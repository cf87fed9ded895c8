package models

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	SubscriptionStatusActive   = "active"
	SubscriptionStatusInactive = "inactive"
)

const (
	FrequencyMonthly = "monthly"
	FrequencyAnnual  = "annual"
)

const (
	PaymentMethodMasterCard = "MasterCard"
	PaymentMethodVisa       = "Visa"
	PaymentMethodGPay       = "GPay"
	PaymentMethodPayPal     = "PayPal"
)

// Subscription is a recurring service a user pays for. Billing-cycle fields
// (BillingDay, BillingMonth, NextPaymentAt) are nil while the subscription is
// inactive; BillingMonth is only set for annual frequency.
type Subscription struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	UserID        uint            `gorm:"not null;index" json:"user_id"`
	ServiceName   string          `gorm:"type:varchar(100);not null" json:"service_name" validate:"required,min=1,max=100"`
	Cost          decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"cost"`
	Status        string          `gorm:"type:varchar(16);not null;default:'active';index" json:"status" validate:"oneof=active inactive"`
	Frequency     string          `gorm:"type:varchar(16);not null" json:"frequency" validate:"oneof=monthly annual"`
	PaymentMethod string          `gorm:"type:varchar(20);not null" json:"payment_method" validate:"oneof=MasterCard Visa GPay PayPal"`
	BillingDay    *int            `gorm:"type:tinyint unsigned" json:"billing_day"`
	BillingMonth  *int            `gorm:"type:tinyint unsigned" json:"billing_month"`
	LastPaymentAt time.Time       `gorm:"type:date;not null" json:"last_payment_at"`
	NextPaymentAt *time.Time      `gorm:"type:date" json:"next_payment_at"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (s *Subscription) Validate() error {
	v := validator.New()
	return v.Struct(s)
}

// IsActive reports whether the subscription status is active.
func (s *Subscription) IsActive() bool {
	return s.Status == SubscriptionStatusActive
}

// NormalizedName returns the duplicate-detection form of the service name.
func (s *Subscription) NormalizedName() string {
	return NormalizeServiceName(s.ServiceName)
}

// NormalizeServiceName lowercases a service name and strips all whitespace,
// so "Netflix" and "net flix" collide.
func NormalizeServiceName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), ""))
}

// IsValidPaymentMethod reports whether method is one of the supported values.
func IsValidPaymentMethod(method string) bool {
	switch method {
	case PaymentMethodMasterCard, PaymentMethodVisa, PaymentMethodGPay, PaymentMethodPayPal:
		return true
	}
	return false
}
