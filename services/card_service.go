// services/card_service.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"echotap.link/configs/configslog"
	"echotap.link/models"
	"echotap.link/pkg/legacystore"
	"echotap.link/repositories"
	"echotap.link/utils"

	"go.uber.org/zap"
)

// CardServiceError özel servis hataları
type CardServiceError string

func (e CardServiceError) Error() string { return string(e) }

const (
	ErrCardNotFound        CardServiceError = "kartvizit bulunamadı"
	ErrCardNotConfigured   CardServiceError = "kartvizit henüz yapılandırılmamış"
	ErrCardQuotaExceeded   CardServiceError = "hesap başına en fazla 3 kartvizit oluşturulabilir; yeni kartvizit için önce bir kartvizit silin"
	ErrCardInvalidInput    CardServiceError = "geçersiz girdi verisi"
	ErrCardSaveFailed      CardServiceError = "kartvizit kaydedilemedi"
	ErrCardDeletionFailed  CardServiceError = "kartvizit silinemedi"
	ErrCardKeyGeneration   CardServiceError = "benzersiz kartvizit anahtarı üretilemedi"
	ErrCardMigrationFailed CardServiceError = "eski kartvizit verileri taşınamadı"
)

// Hesap başına kart kotası. Yeni kart oluşturulurken uygulanır, güncellemede değil.
const maxCardsPerOwner = 3

// Kart anahtarı formatı: 8 haneli büyük harf base36. NFC etiketine yazılan
// public URL'nin path bölümü olarak kullanılır.
const cardKeyLength = 8

// ICardService kartvizit kalıcılık ve senkronizasyon işlemleri için arayüz.
type ICardService interface {
	CanCreateCard(ctx context.Context, ownerID uint) bool
	GetUserCardCount(ctx context.Context, ownerID uint) int
	SaveCard(ctx context.Context, ownerID uint, cardID string, data models.Card) (*models.Card, error)
	GetCard(ctx context.Context, ownerID uint, cardID string) (*models.Card, error)
	GetPublicCard(ctx context.Context, cardID string) (*models.Card, error)
	GetUserCards(ctx context.Context, ownerID uint) ([]models.Card, error)
	DeleteCard(ctx context.Context, ownerID uint, cardID string) error
	CardExists(ctx context.Context, cardID string) bool
	GenerateCardID(ctx context.Context) (string, error)
	MigrateLegacyData(ctx context.Context, ownerID uint) (int, error)
}

// CardService ICardService arayüzünü uygular. Birincil kaynak belge deposudur
// (repo); eski yerel depo (legacy) yalnızca migrasyon kaynağı ve birincil depo
// okunamadığında son çare okuma yolu olarak kullanılır. İki kaynağın sonuçları
// asla karıştırılmaz.
type CardService struct {
	repo   repositories.ICardRepository
	legacy legacystore.Store
}

// NewCardService yeni bir CardService örneği oluşturur.
func NewCardService(legacy legacystore.Store) ICardService {
	return &CardService{
		repo:   repositories.NewCardRepository(),
		legacy: legacy,
	}
}

// --- Yardımcı Metodlar ---

// validateCardID kart anahtarının belge anahtarı ile çakışmayacak biçimde
// olduğunu doğrular: yalnızca rakam ve büyük harf ('_' ayracı asla geçemez).
func validateCardID(cardID string) error {
	if cardID == "" || len(cardID) > 16 {
		return fmt.Errorf("%w: geçersiz kart ID uzunluğu", ErrCardInvalidInput)
	}
	for _, ch := range cardID {
		if (ch < '0' || ch > '9') && (ch < 'A' || ch > 'Z') {
			return fmt.Errorf("%w: kart ID yalnızca rakam ve büyük harf içerebilir", ErrCardInvalidInput)
		}
	}
	return nil
}

// legacyKeyFor kart ID'sinden eski depo anahtarını üretir (sahip kapsamı yok,
// eski tek-cihaz formatı).
func legacyKeyFor(cardID string) string {
	return legacystore.CardKeyPrefix + cardID
}

// readLegacyCard eski depodan kartı okur ve çözer.
func (s *CardService) readLegacyCard(cardID string) (*models.Card, error) {
	raw, err := s.legacy.Get(legacyKeyFor(cardID))
	if err != nil {
		return nil, err
	}
	var card models.Card
	if err := json.Unmarshal(raw, &card); err != nil {
		return nil, fmt.Errorf("eski kayıt çözülemedi: %w", err)
	}
	if card.CardID == "" {
		card.CardID = cardID
	}
	return &card, nil
}

// --- Servis Metodları ---

// CanCreateCard sahibin kotasında yer olup olmadığını söyler. Danışma amaçlı
// bir okumadır: herhangi bir hata durumunda temkinli davranıp false döner
// (kota asla sessizce aşılmaz).
func (s *CardService) CanCreateCard(ctx context.Context, ownerID uint) bool {
	cards, err := s.GetUserCards(ctx, ownerID)
	if err != nil {
		configslog.Log.Warn("CanCreateCard: kartlar okunamadı, kota kapalı kabul ediliyor",
			zap.Uint("owner_id", ownerID), zap.Error(err))
		return false
	}
	return len(cards) < maxCardsPerOwner
}

// GetUserCardCount sahibin kart sayısını döndürür; gösterim amaçlı olduğu için
// hata durumunda 0 döner.
func (s *CardService) GetUserCardCount(ctx context.Context, ownerID uint) int {
	cards, err := s.GetUserCards(ctx, ownerID)
	if err != nil {
		configslog.Log.Warn("GetUserCardCount: kartlar okunamadı",
			zap.Uint("owner_id", ownerID), zap.Error(err))
		return 0
	}
	return len(cards)
}

// SaveCard kartı oluşturur veya günceller. Yenilik kararı belgenin
// deterministik anahtarında var olup olmamasına göre verilir: yoksa bu bir
// oluşturma işlemidir ve kota transaction içinde uygulanır; varsa mevcut
// CreatedAt korunarak güncellenir. UpdatedAt her başarılı kayıtta yenilenir.
func (s *CardService) SaveCard(ctx context.Context, ownerID uint, cardID string, data models.Card) (*models.Card, error) {
	if ownerID == 0 {
		return nil, fmt.Errorf("%w: geçersiz kullanıcı ID", ErrCardInvalidInput)
	}
	if err := validateCardID(cardID); err != nil {
		return nil, err
	}

	docKey := models.CardDocKey(ownerID, cardID)
	now := time.Now().UTC()

	existing, err := s.repo.FindByDocKey(ctx, docKey)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		// Yazma yolunda depo hatası asla yutulmaz.
		return nil, fmt.Errorf("%w: %s", ErrCardSaveFailed, err.Error())
	}

	card := models.Card{
		DocKey:       docKey,
		CardID:       cardID,
		OwnerID:      ownerID,
		Name:         data.Name,
		Bio:          data.Bio,
		ProfileImage: data.ProfileImage,
		PrimaryColor: data.PrimaryColor,
		Links:        data.Links,
		IsConfigured: data.IsConfigured,
		UpdatedAt:    now,
	}

	if existing == nil {
		// Yeni kart: çağıran bir CreatedAt verdiyse (örn. migrasyon) korunur,
		// yoksa sunucu saati atanır.
		card.CreatedAt = data.CreatedAt
		if card.CreatedAt.IsZero() {
			card.CreatedAt = now
		}

		created, createErr := s.repo.CreateCardWithinLimit(ctx, &card, maxCardsPerOwner)
		if createErr != nil {
			return nil, fmt.Errorf("%w: %s", ErrCardSaveFailed, createErr.Error())
		}
		if !created {
			configslog.Log.Warn("SaveCard: kota dolu, yeni kart reddedildi",
				zap.Uint("owner_id", ownerID), zap.String("card_id", cardID))
			return nil, ErrCardQuotaExceeded
		}
		configslog.SLog.Infof("Kartvizit oluşturuldu: %s (sahip: %d)", cardID, ownerID)
		return &card, nil
	}

	// Güncelleme: CreatedAt bir kez yazılır; upsert created_at kolonuna dokunmaz.
	card.CreatedAt = existing.CreatedAt
	if err := s.repo.UpsertCard(ctx, &card); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCardSaveFailed, err.Error())
	}
	configslog.SLog.Infof("Kartvizit güncellendi: %s (sahip: %d)", cardID, ownerID)
	return &card, nil
}

// GetCard sahibine ait kartı deterministik anahtar ile getirir. Yalnızca
// sahibin düzenleme akışında kullanılır; anonim okuyucuya açılmaz. Birincil
// depo okunamazsa eski yerel kopyaya düşülür (bayat veri > tam kesinti).
func (s *CardService) GetCard(ctx context.Context, ownerID uint, cardID string) (*models.Card, error) {
	if ownerID == 0 {
		return nil, fmt.Errorf("%w: geçersiz kullanıcı ID", ErrCardInvalidInput)
	}
	if err := validateCardID(cardID); err != nil {
		return nil, err
	}

	card, err := s.repo.FindByDocKey(ctx, models.CardDocKey(ownerID, cardID))
	if err == nil {
		return card, nil
	}
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrCardNotFound
	}

	// Birincil depo hatası: eski yerel kopya varsa onunla devam et.
	if legacyCard, legacyErr := s.readLegacyCard(cardID); legacyErr == nil {
		configslog.Log.Warn("GetCard: birincil depo hatası, eski yerel kopya kullanılıyor",
			zap.String("card_id", cardID), zap.Error(err))
		return legacyCard, nil
	}
	return nil, fmt.Errorf("kartvizit okunamadı: %w", err)
}

// GetPublicCard anonim çağıran için kartı cardId alanı üzerinden arar.
// Belge var ama IsConfigured değilse ErrCardNotConfigured döner; public
// görünürlüğün kapısı yapılandırılmış olmaktır.
func (s *CardService) GetPublicCard(ctx context.Context, cardID string) (*models.Card, error) {
	if err := validateCardID(cardID); err != nil {
		return nil, err
	}

	card, err := s.repo.FindFirstByCardID(ctx, cardID)
	if err == nil {
		if !card.IsConfigured {
			configslog.SLog.Infof("Yapılandırılmamış kartvizite public erişim denemesi: %s", cardID)
			return nil, ErrCardNotConfigured
		}
		return card, nil
	}
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrCardNotFound
	}

	// Birincil depo hatası: eski yerel kopyaya düş; görünürlük kapısı burada da geçerli.
	if legacyCard, legacyErr := s.readLegacyCard(cardID); legacyErr == nil {
		configslog.Log.Warn("GetPublicCard: birincil depo hatası, eski yerel kopya kullanılıyor",
			zap.String("card_id", cardID), zap.Error(err))
		if !legacyCard.IsConfigured {
			return nil, ErrCardNotConfigured
		}
		return legacyCard, nil
	}
	return nil, fmt.Errorf("kartvizit okunamadı: %w", err)
}

// GetUserCards sahibin tüm kartlarını getirir. Depo sıralama garantisi vermez;
// kronolojik görünüm için istemci tarafında en yeniden eskiye sıralanır.
// Zamanı olmayan kayıtlar en eski kabul edilir (kararlı sıralama).
func (s *CardService) GetUserCards(ctx context.Context, ownerID uint) ([]models.Card, error) {
	if ownerID == 0 {
		return nil, fmt.Errorf("%w: geçersiz kullanıcı ID", ErrCardInvalidInput)
	}
	cards, err := s.repo.FindAllByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("kartvizitler okunamadı: %w", err)
	}
	sort.SliceStable(cards, func(i, j int) bool {
		return cards[i].EffectiveTime().After(cards[j].EffectiveTime())
	})
	return cards, nil
}

// DeleteCard kartı siler. Silme idempotenttir: belge zaten yoksa işlem
// başarılı sayılır. Eski yerel kopya da kaldırılır ki iki depo tutarlı kalsın.
func (s *CardService) DeleteCard(ctx context.Context, ownerID uint, cardID string) error {
	if ownerID == 0 || cardID == "" {
		return fmt.Errorf("%w: silme için kullanıcı ID ve kart ID zorunludur", ErrCardInvalidInput)
	}

	docKey := models.CardDocKey(ownerID, cardID)
	_, err := s.repo.FindByDocKey(ctx, docKey)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			configslog.SLog.Infof("DeleteCard: belge zaten yok, silinmiş sayılıyor: %s", docKey)
			s.removeLegacyEntry(cardID)
			return nil
		}
		return fmt.Errorf("%w: %s", ErrCardDeletionFailed, err.Error())
	}

	if err := s.repo.DeleteByDocKey(ctx, docKey); err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrCardDeletionFailed, err.Error())
	}

	s.removeLegacyEntry(cardID)
	configslog.SLog.Infof("Kartvizit silindi: %s (sahip: %d)", cardID, ownerID)
	return nil
}

// removeLegacyEntry eski depodaki karşılığı temizler; hata yalnızca loglanır,
// bir sonraki migrasyon süpürmesi kalıntıyı zaten toplar.
func (s *CardService) removeLegacyEntry(cardID string) {
	if err := s.legacy.Remove(legacyKeyFor(cardID)); err != nil {
		configslog.Log.Warn("Eski depo kaydı silinemedi", zap.String("card_id", cardID), zap.Error(err))
	}
}

// CardExists kart anahtarının kullanımda olup olmadığını söyler. Yumuşak bir
// kontroldür, güvenlik kapısı değildir; hata durumunda false döner.
func (s *CardService) CardExists(ctx context.Context, cardID string) bool {
	count, err := s.repo.CountByCardID(ctx, cardID)
	if err != nil {
		configslog.Log.Warn("CardExists: sorgu hatası", zap.String("card_id", cardID), zap.Error(err))
		return false
	}
	return count > 0
}

// GenerateCardID kullanımda olmayan 8 haneli büyük harf base36 anahtar üretir.
// Çakışma olasılığı ihmal edilebilir olsa da ilk kullanımdan önce varlık
// kontrolü yapılır ve çakışmada yeniden üretilir.
func (s *CardService) GenerateCardID(ctx context.Context) (string, error) {
	maxKeyAttempts := 5
	for i := 0; i < maxKeyAttempts; i++ {
		key, err := utils.GenerateCardKey(cardKeyLength)
		if err != nil {
			return "", fmt.Errorf("%w: %s", ErrCardKeyGeneration, err.Error())
		}
		if !s.CardExists(ctx, key) {
			return key, nil
		}
		configslog.Log.Warn("Kart anahtarı çakışması, yeniden deneniyor", zap.String("key", key))
	}
	return "", ErrCardKeyGeneration
}

// MigrateLegacyData eski depodaki "card_*" kayıtlarını sahibin hesabına taşır.
// Yalnızca yapılandırılmış kayıtlar taşınır; yerel kayıt ancak kayıt işlemi
// başarılı olduktan sonra silinir. Çözülemeyen veya kaydedilemeyen girdiler
// loglanır ve yerinde bırakılır (aynı süpürmede tekrar denenmez). Her
// listelemeden önce çağrıldığı için işlem yapısı gereği idempotenttir.
func (s *CardService) MigrateLegacyData(ctx context.Context, ownerID uint) (int, error) {
	if ownerID == 0 {
		return 0, fmt.Errorf("%w: geçersiz kullanıcı ID", ErrCardInvalidInput)
	}

	keys, err := s.legacy.Keys()
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrCardMigrationFailed, err.Error())
	}

	migrated := 0
	for _, key := range keys {
		if !strings.HasPrefix(key, legacystore.CardKeyPrefix) {
			continue
		}

		cardID := strings.TrimPrefix(key, legacystore.CardKeyPrefix)
		legacyCard, readErr := s.readLegacyCard(cardID)
		if readErr != nil {
			configslog.Log.Error("Migrasyon: eski kayıt çözülemedi, yerinde bırakıldı",
				zap.String("key", key), zap.Error(readErr))
			continue
		}
		if !legacyCard.IsConfigured {
			// Yapılandırılmamış taslaklar taşınmaz.
			continue
		}

		if _, saveErr := s.SaveCard(ctx, ownerID, cardID, *legacyCard); saveErr != nil {
			configslog.Log.Error("Migrasyon: kayıt taşınamadı, yerinde bırakıldı",
				zap.String("key", key), zap.Uint("owner_id", ownerID), zap.Error(saveErr))
			continue
		}

		// Yerel kayıt ancak başarılı kayıttan sonra silinir.
		if removeErr := s.legacy.Remove(key); removeErr != nil {
			configslog.Log.Warn("Migrasyon: taşınan eski kayıt silinemedi",
				zap.String("key", key), zap.Error(removeErr))
		}
		migrated++
	}

	if migrated > 0 {
		configslog.SLog.Infof("%d eski kartvizit buluta taşındı (sahip: %d)", migrated, ownerID)
	}
	return migrated, nil
}

// Arayüz uyumluluğu kontrolü
var _ ICardService = (*CardService)(nil)
