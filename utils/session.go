package utils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

var (
	ErrSessionStoreMissing = errors.New("session store locals içinde bulunamadı")
	ErrUserIDMissing       = errors.New("oturumda kullanıcı ID yok")
)

// SessionStart locals'a konan store üzerinden isteğe ait oturumu açar.
func SessionStart(c *fiber.Ctx) (*session.Session, error) {
	store, ok := c.Locals("session_store").(*session.Store)
	if !ok || store == nil {
		return nil, ErrSessionStoreMissing
	}
	return store.Get(c)
}

// GetUserIDFromSession oturumdaki kullanıcı ID'sini döndürür.
func GetUserIDFromSession(sess *session.Session) (uint, error) {
	switch v := sess.Get("user_id").(type) {
	case uint:
		if v != 0 {
			return v, nil
		}
	case int:
		if v > 0 {
			return uint(v), nil
		}
	case float64:
		// JSON tabanlı session backend'leri sayıları float64 olarak saklayabilir.
		if v > 0 {
			return uint(v), nil
		}
	}
	return 0, ErrUserIDMissing
}

// GetIsSystemFromSession oturumdaki sistem kullanıcısı bayrağını döndürür.
func GetIsSystemFromSession(sess *session.Session) (bool, error) {
	if isSystem, ok := sess.Get("is_system").(bool); ok {
		return isSystem, nil
	}
	return false, errors.New("oturumda is_system bilgisi yok")
}
