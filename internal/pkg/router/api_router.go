package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/submate-app/SubMate/app/controllers"
	"github.com/submate-app/SubMate/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	auth := api.Group("/auth")
	auth.Post("/register", controllers.HandleRegister)
	auth.Post("/login", controllers.HandleLogin)

	subs := api.Group("/subscriptions", middleware.RequireAuth)
	subs.Get("/", controllers.HandleListSubscriptions)
	subs.Post("/", controllers.HandleCreateSubscription)
	subs.Get("/:id", controllers.HandleGetSubscription)
	subs.Put("/:id", controllers.HandleUpdateSubscription)
	subs.Delete("/:id", controllers.HandleDeleteSubscription)
	subs.Patch("/:id/state", controllers.HandleSetSubscriptionState)
	subs.Post("/:id/simulate-payment", controllers.HandleSimulatePayment)
	subs.Get("/:id/history", controllers.HandleSubscriptionHistory)

	dashboard := api.Group("/dashboard", middleware.RequireAuth)
	dashboard.Get("/summary", controllers.HandleDashboardSummary)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
