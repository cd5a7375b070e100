package handlers // handlers/dashboard paketi

import (
	"echotap.link/configs/configslog"
	"echotap.link/models"
	"echotap.link/pkg/queryparams"
	"echotap.link/pkg/renderer"
	"echotap.link/repositories"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// DashboardCardHandler sistem kullanıcısı için tüm kartvizitlerin listesi.
type DashboardCardHandler struct {
	repo repositories.ICardRepository
}

// NewDashboardCardHandler yeni bir DashboardCardHandler örneği oluşturur.
func NewDashboardCardHandler(repo repositories.ICardRepository) *DashboardCardHandler {
	return &DashboardCardHandler{repo: repo}
}

// ListCards sistemdeki tüm kartvizitleri sayfalayarak listeler.
func (h *DashboardCardHandler) ListCards(c *fiber.Ctx) error {
	var params queryparams.ListParams
	if err := c.QueryParser(&params); err != nil {
		configslog.Log.Warn("Dashboard ListCards: Query parse error", zap.Error(err))
		params = queryparams.DefaultListParams("created_at")
	}
	if params.SortBy == "" {
		params.SortBy = "created_at"
	}
	params.Validate()

	cards, totalCount, err := h.repo.GetAllCardsPaginated(c.UserContext(), params)

	renderData := fiber.Map{
		"Title":  "Tüm Kartvizitler",
		"Params": params,
	}
	if err != nil {
		configslog.Log.Error("Dashboard - ListCards Error", zap.Error(err))
		renderData[renderer.FlashErrorKeyView] = "Kartvizitler listelenirken bir hata oluştu."
		cards = []models.Card{}
		totalCount = 0
	}
	renderData["PrevPage"] = params.Page - 1
	renderData["NextPage"] = params.Page + 1
	renderData["Result"] = &queryparams.PaginatedResult{
		Data: cards,
		Meta: queryparams.PaginationMeta{
			CurrentPage: params.Page,
			PerPage:     params.PerPage,
			TotalItems:  totalCount,
			TotalPages:  queryparams.CalculateTotalPages(totalCount, params.PerPage),
		},
	}

	return renderer.Render(c, "dashboard/cards/list", "layouts/dashboard_layout", renderData)
}

// Home toplam kart sayısı ile dashboard ana sayfasını gösterir.
func (h *DashboardCardHandler) Home(c *fiber.Ctx) error {
	totalCards, err := h.repo.GetCardCount(c.UserContext())
	if err != nil {
		configslog.Log.Error("Dashboard - Home: kart sayısı alınamadı", zap.Error(err))
	}
	return renderer.Render(c, "dashboard/home", "layouts/dashboard_layout", fiber.Map{
		"Title":      "Dashboard",
		"TotalCards": totalCards,
	})
}
