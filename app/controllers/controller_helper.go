package controllers

import (
	"strconv"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/submate-app/SubMate/app/repository"
	"github.com/submate-app/SubMate/internal/pkg/alerts"
	"github.com/submate-app/SubMate/internal/pkg/apperrors"
	"github.com/submate-app/SubMate/internal/pkg/mail"
	"github.com/submate-app/SubMate/internal/pkg/subscription"
)

var (
	initOnce     sync.Once
	lifecycleSvc *subscription.Service
	notifierSvc  *alerts.Notifier
)

// services lazily wires the lifecycle service and notifier on top of the
// global repository factory. Controllers share one instance per process.
func services() (*subscription.Service, *alerts.Notifier) {
	initOnce.Do(func() {
		factory := repository.GetGlobalFactory()
		repos := factory.GetRepositories()
		lifecycleSvc = subscription.NewService(repos, factory)
		notifierSvc = alerts.NewNotifier(repos.User, mail.NewSMTPMailer())
	})
	return lifecycleSvc, notifierSvc
}

// parseIDParam reads a positive integer route parameter.
func parseIDParam(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.NewValidationError("invalid %s %q", name, raw)
	}
	return uint(id), nil
}

// respondError translates an application error into its JSON response.
// Unknown errors become a generic 500 without leaking storage details.
func respondError(c *fiber.Ctx, err error) error {
	if appErr := apperrors.Get(err); appErr != nil {
		return c.Status(appErr.Code).JSON(fiber.Map{
			"error":   string(appErr.Type),
			"message": appErr.Message,
		})
	}

	log.Errorf("[API] Unhandled error on %s %s: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":   string(apperrors.ErrorTypeInternal),
		"message": "Something went wrong",
	})
}
