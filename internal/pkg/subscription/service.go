// Package subscription implements the subscription lifecycle: creation with
// historical backfill, edits, the active/inactive state machine, deletion and
// payment simulation. All date arithmetic is delegated to billingcycle; all
// persistence goes through the repository layer.
package subscription

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/submate-app/SubMate/app/models"
	"github.com/submate-app/SubMate/app/repository"
	"github.com/submate-app/SubMate/internal/pkg/apperrors"
	"github.com/submate-app/SubMate/internal/pkg/billingcycle"
)

// TxRunner runs a function with repositories bound to one database
// transaction. repository.Factory satisfies it in production; tests supply a
// fake that reuses in-memory repositories.
type TxRunner interface {
	Transaction(fn func(r *repository.Repositories) error) error
}

// Service orchestrates subscription lifecycle operations for one store.
type Service struct {
	repos *repository.Repositories
	tx    TxRunner
	now   func() time.Time
}

// NewService creates a lifecycle service over the given repositories.
func NewService(repos *repository.Repositories, tx TxRunner) *Service {
	return &Service{repos: repos, tx: tx, now: time.Now}
}

// WithClock overrides the service clock. Intended for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) today() time.Time {
	n := s.now()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

// CreateInput carries the validated field set for a new subscription.
type CreateInput struct {
	ServiceName   string
	Cost          decimal.Decimal
	Frequency     string
	PaymentMethod string
	BillingDay    int
	BillingMonth  *int
}

// UpdateInput carries a partial edit. Nil fields are left untouched.
type UpdateInput struct {
	ServiceName   *string
	Cost          *decimal.Decimal
	PaymentMethod *string
	BillingDay    *int
	Frequency     *string
	BillingMonth  *int
}

// StateInput carries a state transition request. Frequency, Cost and
// BillingMonth are only consulted on reactivation.
type StateInput struct {
	Status       string
	Frequency    *string
	Cost         *decimal.Decimal
	BillingMonth *int
}

// ListItem is a subscription annotated with the days remaining until its
// next payment; DaysRemaining is nil while the subscription is inactive.
type ListItem struct {
	models.Subscription
	DaysRemaining *int `json:"days_remaining"`
}

// Create validates the input, rejects duplicate names, computes the initial
// billing dates and persists the new subscription together with its
// backfilled history entry in one transaction.
//
// The initial last-payment date is the most recent past-or-present cycle
// occurrence, so the subscription starts mid-cycle with that theoretical
// payment recorded retroactively.
func (s *Service) Create(ownerID uint, in CreateInput) (*models.Subscription, []Event, error) {
	if in.ServiceName == "" {
		return nil, nil, apperrors.NewValidationError("service name is required")
	}
	if in.Cost.LessThanOrEqual(decimal.Zero) {
		return nil, nil, apperrors.NewValidationError("cost must be greater than zero")
	}
	freq, err := billingcycle.ParseFrequency(in.Frequency)
	if err != nil {
		return nil, nil, err
	}
	if !models.IsValidPaymentMethod(in.PaymentMethod) {
		return nil, nil, apperrors.NewValidationError("invalid payment method %q", in.PaymentMethod)
	}
	if err := billingcycle.ValidateDay(in.BillingDay); err != nil {
		return nil, nil, err
	}

	// Monthly subscriptions never carry a billing month, whatever the caller sent.
	var month *int
	if freq == billingcycle.FrequencyAnnual {
		if in.BillingMonth == nil {
			return nil, nil, apperrors.NewValidationError("billing month is required for annual frequency")
		}
		if err := billingcycle.ValidateMonth(*in.BillingMonth); err != nil {
			return nil, nil, err
		}
		m := *in.BillingMonth
		month = &m
	}

	normalized := models.NormalizeServiceName(in.ServiceName)
	if _, err := s.repos.Subscription.FindByNormalizedName(ownerID, normalized); err == nil {
		return nil, nil, apperrors.NewConflictError("a subscription named %q already exists", in.ServiceName)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, apperrors.NewInternalError("failed to check for duplicate subscription")
	}

	today := s.today()
	monthVal := 0
	if month != nil {
		monthVal = *month
	}
	last, err := billingcycle.InitialLastPayment(freq, in.BillingDay, monthVal, today)
	if err != nil {
		return nil, nil, err
	}
	next, err := billingcycle.NextPayment(freq, in.BillingDay, last)
	if err != nil {
		return nil, nil, err
	}

	day := in.BillingDay
	sub := &models.Subscription{
		UserID:        ownerID,
		ServiceName:   in.ServiceName,
		Cost:          in.Cost,
		Status:        models.SubscriptionStatusActive,
		Frequency:     string(freq),
		PaymentMethod: in.PaymentMethod,
		BillingDay:    &day,
		BillingMonth:  month,
		LastPaymentAt: last,
		NextPaymentAt: &next,
	}

	err = s.tx.Transaction(func(r *repository.Repositories) error {
		if err := r.Subscription.Create(sub); err != nil {
			return err
		}
		// The initial occurrence is always past-or-present, so the elapsed
		// cycle gets its retroactive ledger entry.
		if !last.After(today) {
			return r.PaymentHistory.Create(&models.PaymentHistory{
				SubscriptionID: sub.ID,
				Amount:         in.Cost,
				PaidAt:         last,
				MethodSnapshot: in.PaymentMethod,
			})
		}
		return nil
	})
	if err != nil {
		return nil, nil, apperrors.NewInternalError("failed to create subscription")
	}

	return sub, []Event{newEvent(EventCreated, *sub, s.now())}, nil
}

// Get retrieves one subscription scoped to its owner.
func (s *Service) Get(id, ownerID uint) (*models.Subscription, error) {
	sub, err := s.repos.Subscription.GetByIDAndUser(id, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("subscription not found")
		}
		return nil, apperrors.NewInternalError("failed to load subscription")
	}
	return sub, nil
}

// List returns the owner's subscriptions, newest-created first, each
// annotated with days remaining until the next payment.
func (s *Service) List(ownerID uint) ([]ListItem, error) {
	subs, err := s.repos.Subscription.ListByUser(ownerID)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list subscriptions")
	}

	today := s.today()
	items := make([]ListItem, 0, len(subs))
	for _, sub := range subs {
		item := ListItem{Subscription: sub}
		if sub.NextPaymentAt != nil {
			days := billingcycle.DaysUntil(today, *sub.NextPaymentAt)
			item.DaysRemaining = &days
		}
		items = append(items, item)
	}
	return items, nil
}

// Update applies a non-state-changing edit. The service name is immutable;
// cost, payment method and billing day may change freely. A frequency change
// recalculates the billing month and, while the subscription is active, the
// next payment date from today. Changing the billing day without changing
// frequency leaves stored dates alone; the new day takes effect on the next
// natural cycle.
func (s *Service) Update(id, ownerID uint, in UpdateInput) (*models.Subscription, []Event, error) {
	sub, err := s.Get(id, ownerID)
	if err != nil {
		return nil, nil, err
	}

	if in.ServiceName != nil && *in.ServiceName != sub.ServiceName {
		return nil, nil, apperrors.NewValidationError("service name cannot be changed")
	}

	fields := map[string]interface{}{}

	if in.Cost != nil {
		if in.Cost.LessThanOrEqual(decimal.Zero) {
			return nil, nil, apperrors.NewValidationError("cost must be greater than zero")
		}
		fields["cost"] = *in.Cost
	}
	if in.PaymentMethod != nil {
		if !models.IsValidPaymentMethod(*in.PaymentMethod) {
			return nil, nil, apperrors.NewValidationError("invalid payment method %q", *in.PaymentMethod)
		}
		fields["payment_method"] = *in.PaymentMethod
	}
	if in.BillingDay != nil {
		if err := billingcycle.ValidateDay(*in.BillingDay); err != nil {
			return nil, nil, err
		}
		fields["billing_day"] = *in.BillingDay
	}

	if in.Frequency != nil && *in.Frequency != sub.Frequency {
		freq, err := billingcycle.ParseFrequency(*in.Frequency)
		if err != nil {
			return nil, nil, err
		}
		fields["frequency"] = string(freq)

		switch freq {
		case billingcycle.FrequencyMonthly:
			fields["billing_month"] = nil
		case billingcycle.FrequencyAnnual:
			if in.BillingMonth == nil {
				return nil, nil, apperrors.NewValidationError("billing month is required for annual frequency")
			}
			if err := billingcycle.ValidateMonth(*in.BillingMonth); err != nil {
				return nil, nil, err
			}
			fields["billing_month"] = *in.BillingMonth
		}

		// Only an active subscription carries a schedule to recalculate.
		if sub.IsActive() {
			day := sub.BillingDay
			if in.BillingDay != nil {
				day = in.BillingDay
			}
			if day == nil {
				return nil, nil, apperrors.NewInternalError("active subscription has no billing day")
			}
			next, err := billingcycle.NextPayment(freq, *day, s.today())
			if err != nil {
				return nil, nil, err
			}
			fields["next_payment_at"] = next
		}
	}

	if len(fields) > 0 {
		if err := s.repos.Subscription.Update(sub.ID, fields); err != nil {
			return nil, nil, apperrors.NewInternalError("failed to update subscription")
		}
	}

	updated, err := s.Get(id, ownerID)
	if err != nil {
		return nil, nil, err
	}
	return updated, []Event{newEvent(EventEdited, *updated, s.now())}, nil
}

// SetState drives the active/inactive state machine.
//
// Deactivation clears every billing-cycle field: an inactive subscription
// carries no schedule. Reactivation restarts the cycle from today: the
// billing day becomes today's day-of-month, the last payment becomes today,
// and the next payment is one cycle out. Cost changes are honored only when
// the frequency actually changes, which keeps a redundant reactivate call
// from drifting the cost. A transition to the current state is a no-op that
// returns the record untouched and fires nothing.
func (s *Service) SetState(id, ownerID uint, in StateInput) (*models.Subscription, []Event, error) {
	if in.Status != models.SubscriptionStatusActive && in.Status != models.SubscriptionStatusInactive {
		return nil, nil, apperrors.NewValidationError("invalid status %q", in.Status)
	}

	sub, err := s.Get(id, ownerID)
	if err != nil {
		return nil, nil, err
	}

	if sub.Status == in.Status {
		return sub, nil, nil
	}

	if in.Status == models.SubscriptionStatusInactive {
		fields := map[string]interface{}{
			"status":          models.SubscriptionStatusInactive,
			"next_payment_at": nil,
			"billing_day":     nil,
			"billing_month":   nil,
		}
		if err := s.repos.Subscription.Update(sub.ID, fields); err != nil {
			return nil, nil, apperrors.NewInternalError("failed to deactivate subscription")
		}
		updated, err := s.Get(id, ownerID)
		if err != nil {
			return nil, nil, err
		}
		return updated, []Event{newEvent(EventDeactivated, *updated, s.now())}, nil
	}

	// Reactivation.
	freq := billingcycle.Frequency(sub.Frequency)
	freqChanged := false
	if in.Frequency != nil {
		parsed, err := billingcycle.ParseFrequency(*in.Frequency)
		if err != nil {
			return nil, nil, err
		}
		freqChanged = string(parsed) != sub.Frequency
		freq = parsed
	}

	today := s.today()
	day := today.Day()

	fields := map[string]interface{}{
		"status":          models.SubscriptionStatusActive,
		"frequency":       string(freq),
		"billing_day":     day,
		"last_payment_at": today,
	}

	if freq == billingcycle.FrequencyMonthly {
		fields["billing_month"] = nil
	} else if in.BillingMonth != nil {
		if err := billingcycle.ValidateMonth(*in.BillingMonth); err != nil {
			return nil, nil, err
		}
		fields["billing_month"] = *in.BillingMonth
	} else {
		fields["billing_month"] = int(today.Month())
	}

	if freqChanged && in.Cost != nil {
		if in.Cost.LessThanOrEqual(decimal.Zero) {
			return nil, nil, apperrors.NewValidationError("cost must be greater than zero")
		}
		fields["cost"] = *in.Cost
	}

	next, err := billingcycle.NextPayment(freq, day, today)
	if err != nil {
		return nil, nil, err
	}
	fields["next_payment_at"] = next

	if err := s.repos.Subscription.Update(sub.ID, fields); err != nil {
		return nil, nil, apperrors.NewInternalError("failed to activate subscription")
	}
	updated, err := s.Get(id, ownerID)
	if err != nil {
		return nil, nil, err
	}
	return updated, []Event{newEvent(EventActivated, *updated, s.now())}, nil
}

// Delete removes a subscription after an ownership check; payment history
// follows via cascade.
func (s *Service) Delete(id, ownerID uint) ([]Event, error) {
	sub, err := s.Get(id, ownerID)
	if err != nil {
		return nil, err
	}
	if err := s.repos.Subscription.Delete(sub.ID); err != nil {
		return nil, apperrors.NewInternalError("failed to delete subscription")
	}
	return []Event{newEvent(EventDeleted, *sub, s.now())}, nil
}

// SimulatePayment records a realized payment: the last payment moves to
// today, the next payment moves one cycle out, and a ledger entry dated
// today is appended with the given method snapshot. Both writes share one
// transaction; a payment without its subscription update (or vice versa)
// would corrupt billing-cycle consistency.
func (s *Service) SimulatePayment(id, ownerID uint, method string) (*models.Subscription, error) {
	sub, err := s.Get(id, ownerID)
	if err != nil {
		return nil, err
	}
	if !sub.IsActive() {
		return nil, apperrors.NewValidationError("cannot process a payment on an inactive subscription")
	}
	if method == "" {
		method = sub.PaymentMethod
	}
	if !models.IsValidPaymentMethod(method) {
		return nil, apperrors.NewValidationError("invalid payment method %q", method)
	}
	if sub.BillingDay == nil {
		return nil, apperrors.NewInternalError("active subscription has no billing day")
	}

	today := s.today()
	next, err := billingcycle.NextPayment(billingcycle.Frequency(sub.Frequency), *sub.BillingDay, today)
	if err != nil {
		return nil, err
	}

	err = s.tx.Transaction(func(r *repository.Repositories) error {
		if err := r.Subscription.Update(sub.ID, map[string]interface{}{
			"last_payment_at": today,
			"next_payment_at": next,
		}); err != nil {
			return err
		}
		return r.PaymentHistory.Create(&models.PaymentHistory{
			SubscriptionID: sub.ID,
			Amount:         sub.Cost,
			PaidAt:         today,
			MethodSnapshot: method,
		})
	})
	if err != nil {
		return nil, apperrors.NewInternalError("failed to process payment")
	}

	return s.Get(id, ownerID)
}

// History lists the payment ledger for an owned subscription.
func (s *Service) History(id, ownerID uint) ([]models.PaymentHistory, error) {
	sub, err := s.Get(id, ownerID)
	if err != nil {
		return nil, err
	}
	entries, err := s.repos.PaymentHistory.ListBySubscription(sub.ID)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load payment history")
	}
	return entries, nil
}
