package seeders

import (
	"errors"
	"os"

	"echotap.link/configs/configslog"
	"echotap.link/models"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedSystemUser dashboard erişimi için sistem kullanıcısını oluşturur.
// Bilgiler ortamdan okunur: SYSTEM_USER_EMAIL, SYSTEM_USER_PASSWORD.
func SeedSystemUser(db *gorm.DB) error {
	email := os.Getenv("SYSTEM_USER_EMAIL")
	password := os.Getenv("SYSTEM_USER_PASSWORD")
	if email == "" || password == "" {
		configslog.SLog.Warn("SYSTEM_USER_EMAIL/SYSTEM_USER_PASSWORD tanımlı değil, sistem kullanıcısı atlanıyor.")
		return nil
	}

	var existing models.User
	result := db.Where("email = ?", email).First(&existing)
	if result.Error == nil {
		configslog.SLog.Debug("Sistem kullanıcısı zaten mevcut, oluşturma atlanıyor.")
		return nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		configslog.Log.Error("Sistem kullanıcısı kontrol edilirken veritabanı hatası", zap.Error(result.Error))
		return result.Error
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		configslog.Log.Error("Sistem kullanıcısı şifresi hashlenemedi", zap.Error(err))
		return err
	}

	systemUser := models.User{
		Name:         "Sistem",
		Email:        email,
		PasswordHash: string(hash),
		IsSystem:     true,
		IsActive:     true,
	}
	if err := db.Create(&systemUser).Error; err != nil {
		configslog.Log.Error("Sistem kullanıcısı oluşturulamadı", zap.Error(err))
		return err
	}

	configslog.SLog.Infof("Sistem kullanıcısı oluşturuldu (ID: %d).", systemUser.ID)
	return nil
}
