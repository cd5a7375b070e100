package handlers // handlers/panel paketi

import (
	"echotap.link/pkg/renderer"
	"echotap.link/services"

	"github.com/gofiber/fiber/v2"
)

// PanelHomeHandler panel ana sayfası.
type PanelHomeHandler struct {
	cardService services.ICardService
}

// NewPanelHomeHandler yeni bir PanelHomeHandler örneği oluşturur.
func NewPanelHomeHandler(cardService services.ICardService) *PanelHomeHandler {
	return &PanelHomeHandler{cardService: cardService}
}

// Home kart sayısı özetiyle panel ana sayfasını gösterir.
func (h *PanelHomeHandler) Home(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(uint)
	if userID == 0 {
		return c.Redirect("/auth/login")
	}

	return renderer.Render(c, "panel/home", "layouts/panel_layout", fiber.Map{
		"Title":     "Panel",
		"CardCount": h.cardService.GetUserCardCount(c.UserContext(), userID),
		"MaxCards":  3,
	})
}
