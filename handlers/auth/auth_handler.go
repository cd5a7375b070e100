package handlers // handlers/auth paketi

import (
	"errors"

	"echotap.link/configs/configslog"
	"echotap.link/pkg/flashmessages"
	"echotap.link/pkg/renderer"
	"echotap.link/services"
	"echotap.link/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AuthHandler giriş/kayıt/çıkış isteklerini yönetir.
type AuthHandler struct {
	service services.IAuthService
}

// NewAuthHandler yeni bir AuthHandler örneği oluşturur.
func NewAuthHandler() *AuthHandler {
	return &AuthHandler{service: services.NewAuthService()}
}

// ShowLogin giriş formunu gösterir.
func (h *AuthHandler) ShowLogin(c *fiber.Ctx) error {
	return renderer.Render(c, "auth/login", "layouts/auth_layout", fiber.Map{
		"Title": "Giriş Yap",
	})
}

// Login e-posta/şifre doğrulaması yapar ve oturumu başlatır.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	email := c.FormValue("email")
	password := c.FormValue("password")

	user, err := h.service.Authenticate(c.UserContext(), email, password)
	if err != nil {
		if !errors.Is(err, services.ErrInvalidCredentials) && !errors.Is(err, services.ErrUserInactive) {
			configslog.Log.Error("Login error", zap.Error(err))
		}
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, err.Error())
		return c.Redirect("/auth/login", fiber.StatusSeeOther)
	}

	sess, err := utils.SessionStart(c)
	if err != nil {
		configslog.Log.Error("Login: oturum başlatılamadı", zap.Error(err))
		return c.Redirect("/auth/login", fiber.StatusSeeOther)
	}
	sess.Set("user_id", user.ID)
	sess.Set("user_name", user.Name)
	sess.Set("is_system", user.IsSystem)
	if err := sess.Save(); err != nil {
		configslog.Log.Error("Login: oturum kaydedilemedi", zap.Error(err))
		return c.Redirect("/auth/login", fiber.StatusSeeOther)
	}

	if user.IsSystem {
		return c.Redirect("/dashboard/home", fiber.StatusFound)
	}
	return c.Redirect("/panel/home", fiber.StatusFound)
}

// ShowRegister kayıt formunu gösterir.
func (h *AuthHandler) ShowRegister(c *fiber.Ctx) error {
	return renderer.Render(c, "auth/register", "layouts/auth_layout", fiber.Map{
		"Title":    "Kayıt Ol",
		"FormData": flashmessages.GetFlashFormData(c),
	})
}

// Register yeni hesap oluşturur ve giriş sayfasına yönlendirir.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	name := c.FormValue("name")
	email := c.FormValue("email")
	password := c.FormValue("password")

	_, err := h.service.Register(c.UserContext(), name, email, password)
	if err != nil {
		if !errors.Is(err, services.ErrAuthInvalidInput) && !errors.Is(err, services.ErrEmailTaken) {
			configslog.Log.Error("Register error", zap.Error(err))
		}
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, err.Error())
		_ = flashmessages.SetFlashFormData(c, fiber.Map{"name": name, "email": email})
		return c.Redirect("/auth/register", fiber.StatusSeeOther)
	}

	_ = flashmessages.SetFlashMessage(c, flashmessages.FlashSuccessKey, "Hesabınız oluşturuldu, giriş yapabilirsiniz.")
	return c.Redirect("/auth/login", fiber.StatusFound)
}

// Logout oturumu sonlandırır.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if sess, err := utils.SessionStart(c); err == nil {
		_ = sess.Destroy()
	}
	return c.Redirect("/auth/login", fiber.StatusFound)
}
