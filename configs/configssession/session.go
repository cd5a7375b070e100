package configssession

import (
	"time"

	"github.com/gofiber/fiber/v2/middleware/session"
)

var store *session.Store

// SetupSession oturum deposunu hazırlar ve paylaşılan örneği döndürür.
func SetupSession() *session.Store {
	if store != nil {
		return store
	}
	store = session.New(session.Config{
		Expiration:     12 * time.Hour,
		KeyLookup:      "cookie:echotap_session",
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
	})
	return store
}
