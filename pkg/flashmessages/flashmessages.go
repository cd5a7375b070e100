// Package flashmessages oturum üzerinden tek seferlik (flash) mesaj taşır.
package flashmessages

import (
	"encoding/json"

	"echotap.link/utils"

	"github.com/gofiber/fiber/v2"
)

const (
	FlashSuccessKey  = "flash_success"
	FlashErrorKey    = "flash_error"
	flashFormDataKey = "flash_form_data"
)

// SetFlashMessage verilen anahtara bir flash mesajı yazar.
func SetFlashMessage(c *fiber.Ctx, key, message string) error {
	sess, err := utils.SessionStart(c)
	if err != nil {
		return err
	}
	sess.Set(key, message)
	return sess.Save()
}

// GetFlashMessage mesajı okur ve oturumdan temizler.
func GetFlashMessage(c *fiber.Ctx, key string) string {
	sess, err := utils.SessionStart(c)
	if err != nil {
		return ""
	}
	message, _ := sess.Get(key).(string)
	if message != "" {
		sess.Delete(key)
		_ = sess.Save()
	}
	return message
}

// SetFlashFormData hata sonrası formu tekrar doldurmak için veriyi saklar.
func SetFlashFormData(c *fiber.Ctx, data interface{}) error {
	sess, err := utils.SessionStart(c)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(data)
	if err != nil {
		return err
	}
	sess.Set(flashFormDataKey, string(encoded))
	return sess.Save()
}

// GetFlashFormData saklanan form verisini okur, temizler ve map olarak döndürür.
func GetFlashFormData(c *fiber.Ctx) map[string]interface{} {
	sess, err := utils.SessionStart(c)
	if err != nil {
		return nil
	}
	encoded, _ := sess.Get(flashFormDataKey).(string)
	if encoded == "" {
		return nil
	}
	sess.Delete(flashFormDataKey)
	_ = sess.Save()

	var data map[string]interface{}
	if err := json.Unmarshal([]byte(encoded), &data); err != nil {
		return nil
	}
	return data
}
