package routes

import (
	dashboard_handlers "echotap.link/handlers/dashboard"
	"echotap.link/middlewares"
	"echotap.link/repositories"

	"github.com/gofiber/fiber/v2"
)

// registerDashboardRoutes /dashboard altındaki rotaları tanımlar.
// Yalnızca sistem kullanıcıları (IsSystem == true) erişebilir.
func registerDashboardRoutes(app *fiber.App) {
	cardHandler := dashboard_handlers.NewDashboardCardHandler(repositories.NewCardRepository())

	dashboardGroup := app.Group("/dashboard")
	dashboardGroup.Use(middlewares.AuthMiddleware)
	dashboardGroup.Use(middlewares.SystemMiddleware)

	dashboardGroup.Get("/home", cardHandler.Home)
	dashboardGroup.Get("/cards", cardHandler.ListCards)
}
