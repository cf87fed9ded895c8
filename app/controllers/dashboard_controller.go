package controllers

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/shopspring/decimal"

	"github.com/submate-app/SubMate/app/models"
	"github.com/submate-app/SubMate/app/repository"
	"github.com/submate-app/SubMate/internal/pkg/cache"
	"github.com/submate-app/SubMate/internal/pkg/usercontext"
)

const dashboardCacheTTL = 60 * time.Second

type dashboardSummary struct {
	MonthlySpend     decimal.Decimal      `json:"monthly_spend"`
	ActiveCount      int                  `json:"active_count"`
	InactiveCount    int                  `json:"inactive_count"`
	SpendByMethod    []models.MethodTotal `json:"spend_by_method"`
	UpcomingPayments []upcomingPayment    `json:"upcoming_payments"`
	GeneratedAt      time.Time            `json:"generated_at"`
}

type upcomingPayment struct {
	SubscriptionID uint            `json:"subscription_id"`
	ServiceName    string          `json:"service_name"`
	Cost           decimal.Decimal `json:"cost"`
	DueAt          time.Time       `json:"due_at"`
	DaysRemaining  int             `json:"days_remaining"`
}

// HandleDashboardSummary aggregates the caller's spending: realized payments
// this month, totals per payment method and payments due within 7 days.
// The result is cached per user for a minute.
func HandleDashboardSummary(c *fiber.Ctx) error {
	userID := usercontext.UserID(c)

	cacheKey := fmt.Sprintf("dashboard:summary:%d", userID)
	if cached, err := cache.Get(cacheKey); err == nil && cached != "" {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.SendString(cached)
	}

	summary, err := buildDashboardSummary(userID)
	if err != nil {
		return respondError(c, err)
	}

	if payload, err := json.Marshal(summary); err == nil {
		if err := cache.Set(cacheKey, string(payload), dashboardCacheTTL); err != nil {
			log.Warnf("[Dashboard] Failed to cache summary for user %d: %v", userID, err)
		}
	}

	return c.JSON(summary)
}

func buildDashboardSummary(userID uint) (*dashboardSummary, error) {
	repos := repository.GetGlobalRepositories()
	now := time.Now().UTC()

	monthly, err := repos.PaymentHistory.SumByMonth(userID, now.Month(), now.Year())
	if err != nil {
		return nil, err
	}

	byMethod, err := repos.PaymentHistory.SumByMethod(userID)
	if err != nil {
		return nil, err
	}

	svc, _ := services()
	items, err := svc.List(userID)
	if err != nil {
		return nil, err
	}

	summary := &dashboardSummary{
		MonthlySpend:     monthly,
		SpendByMethod:    byMethod,
		UpcomingPayments: []upcomingPayment{},
		GeneratedAt:      now,
	}
	for _, item := range items {
		if item.IsActive() {
			summary.ActiveCount++
		} else {
			summary.InactiveCount++
		}
		if item.DaysRemaining == nil || item.NextPaymentAt == nil || *item.DaysRemaining > 7 {
			continue
		}
		summary.UpcomingPayments = append(summary.UpcomingPayments, upcomingPayment{
			SubscriptionID: item.ID,
			ServiceName:    item.ServiceName,
			Cost:           item.Cost,
			DueAt:          *item.NextPaymentAt,
			DaysRemaining:  *item.DaysRemaining,
		})
	}

	return summary, nil
}
