package routes

import (
	panel_handlers "echotap.link/handlers/panel"
	"echotap.link/middlewares"
	"echotap.link/services"

	"github.com/gofiber/fiber/v2"
)

// registerPanelRoutes /panel altındaki rotaları tanımlar.
// Yalnızca oturum açmış normal kullanıcılar erişebilir.
func registerPanelRoutes(app *fiber.App, cardService services.ICardService) {
	homeHandler := panel_handlers.NewPanelHomeHandler(cardService)
	cardHandler := panel_handlers.NewPanelCardHandler(cardService)

	panelGroup := app.Group("/panel")
	panelGroup.Use(middlewares.AuthMiddleware)

	panelGroup.Get("/home", homeHandler.Home)

	panelGroup.Get("/cards", cardHandler.ListCards)
	panelGroup.Get("/cards/new", cardHandler.NewCard)
	panelGroup.Get("/cards/config/:cardId", cardHandler.ShowConfigCard)
	panelGroup.Post("/cards/config/:cardId", cardHandler.SaveConfigCard)
	panelGroup.Get("/cards/nfc/:cardId", cardHandler.ShowNFC)
	panelGroup.Post("/cards/delete/:cardId", cardHandler.DeleteCard)
}
