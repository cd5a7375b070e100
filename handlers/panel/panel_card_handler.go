package handlers // handlers/panel paketi

import (
	"errors"
	"fmt"

	"echotap.link/configs/configslog"
	"echotap.link/models"
	"echotap.link/pkg/flashmessages"
	"echotap.link/pkg/renderer"
	"echotap.link/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// PanelCardHandler kullanıcının kendi kartvizitleri için handler.
type PanelCardHandler struct {
	service services.ICardService
}

// NewPanelCardHandler yeni bir PanelCardHandler örneği oluşturur.
func NewPanelCardHandler(service services.ICardService) *PanelCardHandler {
	return &PanelCardHandler{service: service}
}

// currentUserID oturumdaki kullanıcıyı döndürür; yoksa 0.
func currentUserID(c *fiber.Ctx) uint {
	userID, _ := c.Locals("userID").(uint)
	return userID
}

// ListCards kullanıcının kartvizitlerini listeler. Listelemeden önce eski
// yerel depodaki kayıtlar buluta taşınır; süpürme idempotenttir.
func (h *PanelCardHandler) ListCards(c *fiber.Ctx) error {
	userID := currentUserID(c)
	if userID == 0 {
		return c.Redirect("/auth/login")
	}
	ctx := c.UserContext()

	if _, err := h.service.MigrateLegacyData(ctx, userID); err != nil {
		// Migrasyon hatası listelemeyi engellemez; bir sonraki süpürme dener.
		configslog.Log.Warn("Panel ListCards: migrasyon hatası", zap.Uint("userID", userID), zap.Error(err))
	}

	renderData := fiber.Map{
		"Title":     "Kartvizitlerim",
		"MaxCards":  3,
		"CanCreate": h.service.CanCreateCard(ctx, userID),
		"CardCount": h.service.GetUserCardCount(ctx, userID),
	}

	cards, err := h.service.GetUserCards(ctx, userID)
	if err != nil {
		configslog.Log.Error("Panel - ListCards Error", zap.Uint("userID", userID), zap.Error(err))
		renderData[renderer.FlashErrorKeyView] = "Kartvizitler listelenirken bir hata oluştu."
		cards = []models.Card{}
	}
	renderData["Cards"] = cards

	return renderer.Render(c, "panel/cards/list", "layouts/panel_layout", renderData)
}

// NewCard yeni bir kart anahtarı üretir ve yapılandırma formuna yönlendirir.
func (h *PanelCardHandler) NewCard(c *fiber.Ctx) error {
	userID := currentUserID(c)
	if userID == 0 {
		return c.Redirect("/auth/login")
	}
	ctx := c.UserContext()

	if !h.service.CanCreateCard(ctx, userID) {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey,
			"Kartvizit limitine ulaştınız (3/3). Yeni kartvizit için önce bir kartvizit silin.")
		return c.Redirect("/panel/cards", fiber.StatusSeeOther)
	}

	cardID, err := h.service.GenerateCardID(ctx)
	if err != nil {
		configslog.Log.Error("Panel - NewCard: anahtar üretilemedi", zap.Uint("userID", userID), zap.Error(err))
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Kartvizit anahtarı üretilemedi, lütfen tekrar deneyin.")
		return c.Redirect("/panel/cards", fiber.StatusSeeOther)
	}

	return c.Redirect("/panel/cards/config/"+cardID, fiber.StatusFound)
}

// ShowConfigCard kartvizit yapılandırma formunu gösterir. Kart henüz
// kaydedilmemişse boş form, mevcutsa kayıtlı değerlerle açılır.
func (h *PanelCardHandler) ShowConfigCard(c *fiber.Ctx) error {
	userID := currentUserID(c)
	if userID == 0 {
		return c.Redirect("/auth/login")
	}
	cardID := c.Params("cardId")

	card, err := h.service.GetCard(c.UserContext(), userID, cardID)
	if err != nil {
		if !errors.Is(err, services.ErrCardNotFound) {
			if errors.Is(err, services.ErrCardInvalidInput) {
				_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Geçersiz kartvizit anahtarı.")
				return c.Redirect("/panel/cards", fiber.StatusSeeOther)
			}
			configslog.Log.Error("Panel - ShowConfigCard Error", zap.String("cardID", cardID), zap.Error(err))
			_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Kartvizit bilgileri alınamadı.")
			return c.Redirect("/panel/cards", fiber.StatusSeeOther)
		}
		// Yeni kart: varsayılan tek linkli boş form.
		card = &models.Card{
			CardID:       cardID,
			PrimaryColor: "#2563EB",
			Links: models.CardLinks{
				{Title: "Web Sitem", Icon: "bi-globe", Color: "#2563EB", IsExternal: true},
			},
		}
	}

	return renderer.Render(c, "panel/cards/config", "layouts/panel_layout", fiber.Map{
		"Title": "Kartviziti Yapılandır",
		"Card":  card,
	})
}

// SaveConfigCard formu kaydeder; kayıt kartı yapılandırılmış olarak işaretler.
func (h *PanelCardHandler) SaveConfigCard(c *fiber.Ctx) error {
	userID := currentUserID(c)
	if userID == 0 {
		return c.Redirect("/auth/login")
	}
	cardID := c.Params("cardId")
	redirectPathOnError := "/panel/cards/config/" + cardID

	data := models.Card{
		Name:         c.FormValue("name"),
		Bio:          c.FormValue("bio"),
		ProfileImage: c.FormValue("profile_image"),
		PrimaryColor: c.FormValue("primary_color", "#2563EB"),
		Links:        parseLinksForm(c),
		IsConfigured: true,
	}

	if data.Name == "" || data.Bio == "" {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "İsim ve kısa tanıtım zorunludur.")
		return c.Redirect(redirectPathOnError, fiber.StatusSeeOther)
	}
	for _, link := range data.Links {
		if link.Title == "" || link.Path == "" {
			_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Tüm linkler için başlık ve adres zorunludur.")
			return c.Redirect(redirectPathOnError, fiber.StatusSeeOther)
		}
	}

	if _, err := h.service.SaveCard(c.UserContext(), userID, cardID, data); err != nil {
		if errors.Is(err, services.ErrCardQuotaExceeded) {
			_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, err.Error())
			return c.Redirect("/panel/cards", fiber.StatusSeeOther)
		}
		configslog.Log.Error("Panel - SaveConfigCard Error",
			zap.Uint("userID", userID), zap.String("cardID", cardID), zap.Error(err))
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Kartvizit kaydedilemedi: "+err.Error())
		return c.Redirect(redirectPathOnError, fiber.StatusSeeOther)
	}

	_ = flashmessages.SetFlashMessage(c, flashmessages.FlashSuccessKey, "Kartvizit kaydedildi. Şimdi NFC etiketinize yazabilirsiniz.")
	return c.Redirect("/panel/cards/nfc/"+cardID, fiber.StatusFound)
}

// ShowNFC kartın public adresini ve NFC yazma talimatlarını gösterir.
func (h *PanelCardHandler) ShowNFC(c *fiber.Ctx) error {
	userID := currentUserID(c)
	if userID == 0 {
		return c.Redirect("/auth/login")
	}
	cardID := c.Params("cardId")

	card, err := h.service.GetCard(c.UserContext(), userID, cardID)
	if err != nil {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Kartvizit bulunamadı.")
		return c.Redirect("/panel/cards", fiber.StatusSeeOther)
	}

	return renderer.Render(c, "panel/cards/nfc", "layouts/panel_layout", fiber.Map{
		"Title":     "NFC Etiketine Yaz",
		"Card":      card,
		"PublicURL": fmt.Sprintf("%s/%s", c.BaseURL(), card.CardID),
	})
}

// DeleteCard kartviziti siler. Servis katmanı silmeyi idempotent yürütür.
func (h *PanelCardHandler) DeleteCard(c *fiber.Ctx) error {
	userID := currentUserID(c)
	if userID == 0 {
		return c.Redirect("/auth/login")
	}
	cardID := c.Params("cardId")

	if err := h.service.DeleteCard(c.UserContext(), userID, cardID); err != nil {
		configslog.Log.Error("Panel - DeleteCard Error",
			zap.Uint("userID", userID), zap.String("cardID", cardID), zap.Error(err))
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Silme hatası: "+err.Error())
	} else {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashSuccessKey, "Kartvizit silindi.")
	}
	return c.Redirect("/panel/cards", fiber.StatusSeeOther)
}

// parseLinksForm paralel form dizilerinden sıralı link listesini kurar.
// Form alanları: link_title, link_description, link_icon, link_path,
// link_color, link_external (aynı indeks aynı linke aittir).
func parseLinksForm(c *fiber.Ctx) models.CardLinks {
	args := c.Request().PostArgs()
	titles := args.PeekMulti("link_title")
	descriptions := args.PeekMulti("link_description")
	icons := args.PeekMulti("link_icon")
	paths := args.PeekMulti("link_path")
	colors := args.PeekMulti("link_color")
	externals := args.PeekMulti("link_external")

	at := func(values [][]byte, i int) string {
		if i < len(values) {
			return string(values[i])
		}
		return ""
	}

	links := make(models.CardLinks, 0, len(titles))
	for i := range titles {
		links = append(links, models.CardLink{
			Title:       at(titles, i),
			Description: at(descriptions, i),
			Icon:        at(icons, i),
			Path:        at(paths, i),
			Color:       at(colors, i),
			IsExternal:  at(externals, i) == "true" || at(externals, i) == "on",
		})
	}
	return links
}
