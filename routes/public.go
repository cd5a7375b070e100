package routes

import (
	public_handlers "echotap.link/handlers/public"
	"echotap.link/services"

	"github.com/gofiber/fiber/v2"
)

// registerPublicCardRoutes NFC etiketinden gelen public kartvizit adreslerini
// (örn. /A1B2C3D4) yönetecek rotayı tanımlar. Diğer tüm özel rotalardan SONRA
// kaydedilmelidir.
func registerPublicCardRoutes(app *fiber.App, cardService services.ICardService) {
	publicHandler := public_handlers.NewPublicCardHandler(cardService)
	app.Get("/:cardId", publicHandler.HandleCard)
}
