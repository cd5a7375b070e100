package middlewares

import (
	"echotap.link/pkg/flashmessages"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware oturum açmamış kullanıcıları login sayfasına yönlendirir.
func AuthMiddleware(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok || userID == 0 {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Bu sayfa için giriş yapmalısınız.")
		return c.Redirect("/auth/login", fiber.StatusSeeOther)
	}
	return c.Next()
}

// GuestMiddleware oturumu açık kullanıcıları misafir sayfalarından uzaklaştırır.
func GuestMiddleware(c *fiber.Ctx) error {
	if userID, ok := c.Locals("userID").(uint); ok && userID != 0 {
		return c.Redirect("/panel/home", fiber.StatusSeeOther)
	}
	return c.Next()
}

// SystemMiddleware dashboard'u yalnızca sistem kullanıcılarına açar.
func SystemMiddleware(c *fiber.Ctx) error {
	isSystem, ok := c.Locals("isSystem").(bool)
	if !ok || !isSystem {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Bu alana erişim yetkiniz yok.")
		return c.Redirect("/panel/home", fiber.StatusSeeOther)
	}
	return c.Next()
}
