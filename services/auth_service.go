// services/auth_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"echotap.link/configs/configslog"
	"echotap.link/models"
	"echotap.link/repositories"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthServiceError özel servis hataları
type AuthServiceError string

func (e AuthServiceError) Error() string { return string(e) }

const (
	ErrInvalidCredentials AuthServiceError = "e-posta veya şifre hatalı"
	ErrUserInactive       AuthServiceError = "hesap pasif durumda"
	ErrEmailTaken         AuthServiceError = "bu e-posta ile kayıtlı bir hesap zaten var"
	ErrAuthInvalidInput   AuthServiceError = "geçersiz kayıt verisi"
	ErrRegistrationFailed AuthServiceError = "kayıt oluşturulamadı"
)

const minPasswordLength = 8

// IAuthService kimlik kaynağıdır: kart servisi için kararlı kullanıcı ID üretir.
type IAuthService interface {
	Register(ctx context.Context, name, email, password string) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
}

// AuthService IAuthService arayüzünü uygular.
type AuthService struct {
	userRepo repositories.IUserRepository
}

// NewAuthService yeni bir AuthService örneği oluşturur.
func NewAuthService() IAuthService {
	return &AuthService{userRepo: repositories.NewUserRepository()}
}

// Register yeni bir hesap oluşturur.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: ad ve geçerli e-posta zorunludur", ErrAuthInvalidInput)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: şifre en az %d karakter olmalı", ErrAuthInvalidInput, minPasswordLength)
	}

	exists, err := s.userRepo.EmailExists(ctx, email)
	if err != nil {
		configslog.Log.Error("Register: e-posta kontrolü başarısız", zap.Error(err))
		return nil, ErrRegistrationFailed
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		configslog.Log.Error("Register: şifre hashlenemedi", zap.Error(err))
		return nil, ErrRegistrationFailed
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		configslog.Log.Error("Register: kullanıcı oluşturulamadı", zap.Error(err))
		return nil, ErrRegistrationFailed
	}

	configslog.SLog.Infof("Yeni hesap oluşturuldu: %s (ID: %d)", user.Email, user.ID)
	return user, nil
}

// Authenticate e-posta/şifre doğrulaması yapar ve kullanıcıyı döndürür.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		configslog.Log.Error("Authenticate: kullanıcı sorgusu başarısız", zap.Error(err))
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// GetUserByID kullanıcıyı ID ile getirir.
func (s *AuthService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return user, nil
}

// Arayüz uyumluluğu kontrolü
var _ IAuthService = (*AuthService)(nil)
