package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/submate-app/SubMate/internal/pkg/subscription"
	"github.com/submate-app/SubMate/internal/pkg/usercontext"
)

type stateRequest struct {
	Status       string           `json:"status"`
	Frequency    *string          `json:"frequency"`
	Cost         *decimal.Decimal `json:"cost"`
	BillingMonth *int             `json:"billing_month"`
}

type simulatePaymentRequest struct {
	PaymentMethod string `json:"payment_method"`
}

// HandleSetSubscriptionState activates or deactivates a subscription.
// Deactivation clears the billing schedule; reactivation rebuilds it starting
// today. A same-state request is a no-op.
func HandleSetSubscriptionState(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var req stateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "validation_error",
			"message": "Invalid request body",
		})
	}

	svc, notifier := services()
	sub, events, err := svc.SetState(id, usercontext.UserID(c), subscription.StateInput{
		Status:       req.Status,
		Frequency:    req.Frequency,
		Cost:         req.Cost,
		BillingMonth: req.BillingMonth,
	})
	if err != nil {
		return respondError(c, err)
	}

	notifier.Dispatch(events)
	return c.JSON(sub)
}

// HandleSimulatePayment records a payment as of today and advances the
// billing cycle. No real money moves; the entry only feeds history and
// reminders.
func HandleSimulatePayment(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var req simulatePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "validation_error",
			"message": "Invalid request body",
		})
	}

	svc, _ := services()
	sub, err := svc.SimulatePayment(id, usercontext.UserID(c), req.PaymentMethod)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sub)
}

// HandleSubscriptionHistory returns the payment ledger for one subscription,
// newest first.
func HandleSubscriptionHistory(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	svc, _ := services()
	entries, err := svc.History(id, usercontext.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"payments": entries})
}
