// Package billingcycle computes last/next billing occurrences for monthly and
// annual subscriptions. All functions are pure; dates are normalized to
// midnight UTC so they compare as calendar days.
package billingcycle

import (
	"time"

	"github.com/submate-app/SubMate/internal/pkg/apperrors"
)

// Frequency is the billing cadence of a subscription.
type Frequency string

const (
	FrequencyMonthly Frequency = "monthly"
	FrequencyAnnual  Frequency = "annual"
)

// ParseFrequency validates a raw frequency value.
func ParseFrequency(raw string) (Frequency, error) {
	switch Frequency(raw) {
	case FrequencyMonthly, FrequencyAnnual:
		return Frequency(raw), nil
	default:
		return "", apperrors.NewValidationError("invalid billing frequency %q", raw)
	}
}

// ValidateDay checks a nominal billing day-of-month (1-31).
func ValidateDay(day int) error {
	if day < 1 || day > 31 {
		return apperrors.NewValidationError("billing day %d out of range 1-31", day)
	}
	return nil
}

// ValidateMonth checks a billing month-of-year (1-12).
func ValidateMonth(month int) error {
	if month < 1 || month > 12 {
		return apperrors.NewValidationError("billing month %d out of range 1-12", month)
	}
	return nil
}

// daysInMonth returns the length of the given month, leap-year aware.
func daysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// clampedDate builds a date with the nominal day clamped to the last real day
// of the month (day 31 in a 30-day month becomes 30, Feb 29 becomes 28 in
// non-leap years).
func clampedDate(year int, month time.Month, day int) time.Time {
	if max := daysInMonth(year, month); day > max {
		day = max
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// truncateToDay drops the time-of-day component.
func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// InitialLastPayment computes the most recent past-or-present occurrence of
// the billing cycle, used when a subscription is created mid-cycle.
//
// Monthly: the target day in the current month when today's day has reached
// it, otherwise the target day in the previous month. Annual: (month, day)
// compared lexicographically against today's (month, day); this year when
// today is on-or-after the target, otherwise last year. The resolved day is
// always clamped to the length of the resolved month.
func InitialLastPayment(freq Frequency, day int, month int, today time.Time) (time.Time, error) {
	if err := ValidateDay(day); err != nil {
		return time.Time{}, err
	}
	today = truncateToDay(today)

	switch freq {
	case FrequencyMonthly:
		if today.Day() >= day {
			return clampedDate(today.Year(), today.Month(), day), nil
		}
		prev := today.AddDate(0, 0, -today.Day()) // last day of the previous month
		return clampedDate(prev.Year(), prev.Month(), day), nil

	case FrequencyAnnual:
		if err := ValidateMonth(month); err != nil {
			return time.Time{}, err
		}
		target := time.Month(month)
		if today.Month() > target || (today.Month() == target && today.Day() >= day) {
			return clampedDate(today.Year(), target, day), nil
		}
		return clampedDate(today.Year()-1, target, day), nil

	default:
		return time.Time{}, apperrors.NewValidationError("invalid billing frequency %q", string(freq))
	}
}

// NextPayment advances one full cycle from base: one calendar month for
// monthly, one calendar year for annual, with the nominal day re-clamped
// against the new month's length. Jan 31 + 1 month yields Feb 28/29, never
// Mar 2/3.
func NextPayment(freq Frequency, day int, base time.Time) (time.Time, error) {
	if err := ValidateDay(day); err != nil {
		return time.Time{}, err
	}
	base = truncateToDay(base)

	switch freq {
	case FrequencyMonthly:
		// Normalize via the first of the month so AddDate cannot overflow.
		first := time.Date(base.Year(), base.Month(), 1, 0, 0, 0, 0, time.UTC)
		next := first.AddDate(0, 1, 0)
		return clampedDate(next.Year(), next.Month(), day), nil

	case FrequencyAnnual:
		return clampedDate(base.Year()+1, base.Month(), day), nil

	default:
		return time.Time{}, apperrors.NewValidationError("invalid billing frequency %q", string(freq))
	}
}

// DaysUntil returns the number of calendar days from today until the given
// date. Time-of-day is ignored on both sides. Negative when the date is past.
func DaysUntil(today, date time.Time) int {
	today = truncateToDay(today)
	date = truncateToDay(date)
	return int(date.Sub(today) / (24 * time.Hour))
}
