package handlers // handlers/public paketi

import (
	"errors"

	"echotap.link/configs/configslog"
	"echotap.link/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Public URL'deki kart anahtarı uzunluğu (8 haneli büyük harf base36).
const publicCardKeyLength = 8

// PublicCardHandler anonim kartvizit görüntüleme isteklerini yönetir.
// Kimlik doğrulaması yoktur; çağıran yalnızca cardId bilir.
type PublicCardHandler struct {
	cardService services.ICardService
}

// NewPublicCardHandler yeni bir PublicCardHandler örneği oluşturur.
func NewPublicCardHandler(cardService services.ICardService) *PublicCardHandler {
	return &PublicCardHandler{cardService: cardService}
}

// HandleCard /:cardId isteğini karşılar ve kartvizit sayfasını render eder.
func (h *PublicCardHandler) HandleCard(c *fiber.Ctx) error {
	cardID := c.Params("cardId")
	if len(cardID) != publicCardKeyLength {
		configslog.SLog.Warnf("Geçersiz formatta kart anahtarı denendi: %s", cardID)
		return h.renderNotFound(c, "Geçersiz kartvizit adresi.")
	}

	card, err := h.cardService.GetPublicCard(c.UserContext(), cardID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCardNotFound), errors.Is(err, services.ErrCardInvalidInput):
			return h.renderNotFound(c, "Bu adreste bir kartvizit yok.")
		case errors.Is(err, services.ErrCardNotConfigured):
			// Kart var ama henüz yapılandırılmamış: adresin boşta olmadığını,
			// sahibinin yapılandırması gerektiğini söyle.
			return c.Status(fiber.StatusOK).Render("public/card_pending", fiber.Map{
				"Title":  "Kartvizit Hazır Değil",
				"CardID": cardID,
			}, "layouts/public_layout")
		default:
			configslog.Log.Error("HandleCard: GetPublicCard error", zap.String("card_id", cardID), zap.Error(err))
			return h.renderError(c, "Kartvizit yüklenirken bir sorun oluştu.")
		}
	}

	return c.Render("public/card_view", fiber.Map{
		"Title": card.Name,
		"Card":  card,
	}, "layouts/public_layout")
}

// renderNotFound standart 404 sayfasını render eder.
func (h *PublicCardHandler) renderNotFound(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).Render("errors/404", fiber.Map{
		"Title":   "Bulunamadı",
		"Message": message,
	}, "layouts/error_layout")
}

// renderError standart 500 hata sayfasını render eder.
func (h *PublicCardHandler) renderError(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusInternalServerError).Render("errors/500", fiber.Map{
		"Title":   "Sunucu Hatası",
		"Message": message,
	}, "layouts/error_layout")
}
