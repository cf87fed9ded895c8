package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/submate-app/SubMate/internal/pkg/subscription"
	"github.com/submate-app/SubMate/internal/pkg/usercontext"
)

type createSubscriptionRequest struct {
	ServiceName   string          `json:"service_name"`
	Cost          decimal.Decimal `json:"cost"`
	Frequency     string          `json:"frequency"`
	PaymentMethod string          `json:"payment_method"`
	BillingDay    int             `json:"billing_day"`
	BillingMonth  *int            `json:"billing_month"`
}

type updateSubscriptionRequest struct {
	ServiceName   *string          `json:"service_name"`
	Cost          *decimal.Decimal `json:"cost"`
	PaymentMethod *string          `json:"payment_method"`
	BillingDay    *int             `json:"billing_day"`
	Frequency     *string          `json:"frequency"`
	BillingMonth  *int             `json:"billing_month"`
}

// HandleListSubscriptions returns the caller's subscriptions, newest first,
// each annotated with days remaining until the next payment.
func HandleListSubscriptions(c *fiber.Ctx) error {
	svc, _ := services()
	items, err := svc.List(usercontext.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"subscriptions": items})
}

// HandleGetSubscription returns one subscription owned by the caller.
func HandleGetSubscription(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	svc, _ := services()
	sub, err := svc.Get(id, usercontext.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sub)
}

// HandleCreateSubscription registers a new subscription and backfills its
// most recent theoretical payment.
func HandleCreateSubscription(c *fiber.Ctx) error {
	var req createSubscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "validation_error",
			"message": "Invalid request body",
		})
	}

	svc, notifier := services()
	sub, events, err := svc.Create(usercontext.UserID(c), subscription.CreateInput{
		ServiceName:   req.ServiceName,
		Cost:          req.Cost,
		Frequency:     req.Frequency,
		PaymentMethod: req.PaymentMethod,
		BillingDay:    req.BillingDay,
		BillingMonth:  req.BillingMonth,
	})
	if err != nil {
		return respondError(c, err)
	}

	notifier.Dispatch(events)
	return c.Status(fiber.StatusCreated).JSON(sub)
}

// HandleUpdateSubscription applies a partial edit. The service name is
// immutable once created.
func HandleUpdateSubscription(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var req updateSubscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "validation_error",
			"message": "Invalid request body",
		})
	}

	svc, notifier := services()
	sub, events, err := svc.Update(id, usercontext.UserID(c), subscription.UpdateInput{
		ServiceName:   req.ServiceName,
		Cost:          req.Cost,
		PaymentMethod: req.PaymentMethod,
		BillingDay:    req.BillingDay,
		Frequency:     req.Frequency,
		BillingMonth:  req.BillingMonth,
	})
	if err != nil {
		return respondError(c, err)
	}

	notifier.Dispatch(events)
	return c.JSON(sub)
}

// HandleDeleteSubscription removes a subscription and, via cascade, its
// payment history.
func HandleDeleteSubscription(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	svc, notifier := services()
	events, err := svc.Delete(id, usercontext.UserID(c))
	if err != nil {
		return respondError(c, err)
	}

	notifier.Dispatch(events)
	return c.JSON(fiber.Map{"message": "Subscription deleted"})
}
