package routes

import (
	"echotap.link/configs/configssession"
	"echotap.link/services"
	"echotap.link/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	recoverMiddleware "github.com/gofiber/fiber/v2/middleware/recover"
)

// SetupRoutes tüm uygulama rotalarını ve genel middleware'leri ayarlar.
func SetupRoutes(app *fiber.App, cardService services.ICardService) {
	// --- Genel Middleware'ler ---
	app.Use(recoverMiddleware.New()) // Panic yakalama
	app.Use(logger.New())            // İstek loglama
	app.Use(initializeSessionAndLocals())

	// --- Rota Grupları ---
	registerAuthRoutes(app)
	registerPanelRoutes(app, cardService)
	registerDashboardRoutes(app)

	// --- Kök URL ("/") Yönlendirmesi ---
	app.Get("/", rootRedirector)

	// --- Public Kartvizit Rotası ---
	// Diğer gruplardan sonra gelmeli; /:cardId en genel desendir.
	registerPublicCardRoutes(app, cardService)

	// --- 404 Handler ---
	app.Use(notFoundHandler)
}

// initializeSessionAndLocals oturumu açar ve temel locals değerlerini doldurur.
func initializeSessionAndLocals() fiber.Handler {
	sessionStore := configssession.SetupSession()
	return func(c *fiber.Ctx) error {
		c.Locals("session_store", sessionStore)
		sess, err := utils.SessionStart(c)
		if err != nil {
			return c.Next()
		}
		if userID, idErr := utils.GetUserIDFromSession(sess); idErr == nil {
			c.Locals("userID", userID)
		}
		if isSystem, sysErr := utils.GetIsSystemFromSession(sess); sysErr == nil {
			c.Locals("isSystem", isSystem)
		}
		if userName, ok := sess.Get("user_name").(string); ok {
			c.Locals("userName", userName)
		}
		return c.Next()
	}
}

// rootRedirector oturum durumuna göre giriş/panel/dashboard'a yönlendirir.
func rootRedirector(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok || userID == 0 {
		return c.Redirect("/auth/login", fiber.StatusTemporaryRedirect)
	}
	if isSystem, ok := c.Locals("isSystem").(bool); ok && isSystem {
		return c.Redirect("/dashboard/home", fiber.StatusFound)
	}
	return c.Redirect("/panel/home", fiber.StatusFound)
}

// notFoundHandler eşleşmeyen tüm rotaları yakalar.
func notFoundHandler(c *fiber.Ctx) error {
	if c.Accepts("application/json", "text/html") == "application/json" {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Kaynak bulunamadı"})
	}
	return c.Status(fiber.StatusNotFound).Render("errors/404", fiber.Map{
		"Title": "Sayfa Bulunamadı",
	}, "layouts/error_layout")
}
