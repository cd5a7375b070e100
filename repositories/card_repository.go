package repositories

import (
	"context"
	"errors"
	"strings"

	"echotap.link/configs/configsdatabase"
	"echotap.link/configs/configslog"
	"echotap.link/models"
	"echotap.link/pkg/queryparams"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ICardRepository kartvizit belge deposu işlemleri için arayüz.
// Belgeler "<ownerID>_<cardID>" anahtarıyla tek düz tabloda tutulur.
type ICardRepository interface {
	FindByDocKey(ctx context.Context, docKey string) (*models.Card, error)
	FindFirstByCardID(ctx context.Context, cardID string) (*models.Card, error)
	FindAllByOwnerID(ctx context.Context, ownerID uint) ([]models.Card, error)
	CountByCardID(ctx context.Context, cardID string) (int64, error)
	// CreateCardWithinLimit kartı, sahibin kart sayısı limitin altındaysa tek
	// transaction içinde oluşturur. Limit aşılmışsa (false, nil) döner.
	CreateCardWithinLimit(ctx context.Context, card *models.Card, limit int64) (bool, error)
	// UpsertCard belgeyi doc_key üzerinden günceller; created_at ve owner_id
	// kolonlarına çakışma durumunda asla dokunmaz.
	UpsertCard(ctx context.Context, card *models.Card) error
	DeleteByDocKey(ctx context.Context, docKey string) error
	GetAllCardsPaginated(ctx context.Context, params queryparams.ListParams) ([]models.Card, int64, error)
	GetCardCount(ctx context.Context) (int64, error)
}

// CardRepository ICardRepository arayüzünü GORM ile uygular.
type CardRepository struct {
	db *gorm.DB
}

// NewCardRepository paylaşılan DB bağlantısı ile yeni bir repository oluşturur.
func NewCardRepository() ICardRepository {
	return &CardRepository{db: configsdatabase.GetDB()}
}

// NewCardRepositoryTx transaction'a bağlı bir repository oluşturur.
func NewCardRepositoryTx(tx *gorm.DB) ICardRepository {
	return &CardRepository{db: tx}
}

func (r *CardRepository) getDB(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

// FindByDocKey belge anahtarıyla nokta sorgusu yapar.
func (r *CardRepository) FindByDocKey(ctx context.Context, docKey string) (*models.Card, error) {
	if docKey == "" {
		return nil, errors.New("geçersiz belge anahtarı")
	}
	var card models.Card
	err := r.getDB(ctx).Where("doc_key = ?", docKey).First(&card).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("CardRepository.FindByDocKey: DB error", zap.String("doc_key", docKey), zap.Error(err))
		return nil, err
	}
	return &card, nil
}

// FindFirstByCardID cardId alanı üzerinden (sahibi bilinmeden) ilk eşleşmeyi
// döndürür. Üretim politikası gereği aynı cardId'den birden fazla belge
// beklenmez; olursa ilk eşleşme kullanılır.
func (r *CardRepository) FindFirstByCardID(ctx context.Context, cardID string) (*models.Card, error) {
	if cardID == "" {
		return nil, errors.New("geçersiz kart ID")
	}
	var card models.Card
	err := r.getDB(ctx).Where("card_id = ?", cardID).Order("doc_key").First(&card).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("CardRepository.FindFirstByCardID: DB error", zap.String("card_id", cardID), zap.Error(err))
		return nil, err
	}
	return &card, nil
}

// FindAllByOwnerID sahibe ait tüm kartları döndürür. Sunucu tarafı sıralama
// istenmez; kronolojik sıralama isteyen çağıran istemci tarafında sıralar.
func (r *CardRepository) FindAllByOwnerID(ctx context.Context, ownerID uint) ([]models.Card, error) {
	if ownerID == 0 {
		return nil, errors.New("geçersiz kullanıcı ID")
	}
	var cards []models.Card
	err := r.getDB(ctx).Where("owner_id = ?", ownerID).Find(&cards).Error
	if err != nil {
		configslog.Log.Error("CardRepository.FindAllByOwnerID: DB error", zap.Uint("owner_id", ownerID), zap.Error(err))
		return nil, err
	}
	return cards, nil
}

// CountByCardID cardId alanına göre belge sayısını döndürür.
func (r *CardRepository) CountByCardID(ctx context.Context, cardID string) (int64, error) {
	if cardID == "" {
		return 0, errors.New("geçersiz kart ID")
	}
	var count int64
	err := r.getDB(ctx).Model(&models.Card{}).Where("card_id = ?", cardID).Count(&count).Error
	if err != nil {
		configslog.Log.Error("CardRepository.CountByCardID: DB error", zap.String("card_id", cardID), zap.Error(err))
		return 0, err
	}
	return count, nil
}

// CreateCardWithinLimit sahibin mevcut kart sayısını ve yeni kaydı aynı
// transaction içinde işler. Sayım ile insert arası tam anlamıyla serileşmez;
// kota kişisel kullanım için yumuşak bir sınırdır.
func (r *CardRepository) CreateCardWithinLimit(ctx context.Context, card *models.Card, limit int64) (bool, error) {
	if card == nil || card.DocKey == "" {
		return false, errors.New("oluşturulacak kart geçerli değil")
	}
	created := false
	err := r.getDB(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Card{}).Where("owner_id = ?", card.OwnerID).Count(&count).Error; err != nil {
			return err
		}
		if count >= limit {
			return nil // created=false olarak döner, hata değil
		}
		if err := tx.Create(card).Error; err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		configslog.Log.Error("CardRepository.CreateCardWithinLimit: DB error",
			zap.String("doc_key", card.DocKey), zap.Error(err))
		return false, err
	}
	return created, nil
}

// UpsertCard belgeyi create-or-merge semantiği ile yazar. created_at ve
// owner_id çakışma listesinde yoktur: ilk yazıldıkları değerde kalırlar.
func (r *CardRepository) UpsertCard(ctx context.Context, card *models.Card) error {
	if card == nil || card.DocKey == "" {
		return errors.New("yazılacak kart geçerli değil")
	}
	err := r.getDB(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "doc_key"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"card_id", "name", "bio", "profile_image", "primary_color",
			"links", "is_configured", "updated_at",
		}),
	}).Create(card).Error
	if err != nil {
		configslog.Log.Error("CardRepository.UpsertCard: DB error", zap.String("doc_key", card.DocKey), zap.Error(err))
		return err
	}
	return nil
}

// DeleteByDocKey belgeyi kalıcı olarak siler; kayıt yoksa ErrNotFound döner.
func (r *CardRepository) DeleteByDocKey(ctx context.Context, docKey string) error {
	if docKey == "" {
		return errors.New("geçersiz belge anahtarı")
	}
	result := r.getDB(ctx).Where("doc_key = ?", docKey).Delete(&models.Card{})
	if result.Error != nil {
		configslog.Log.Error("CardRepository.DeleteByDocKey: DB error", zap.String("doc_key", docKey), zap.Error(result.Error))
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetAllCardsPaginated dashboard için tüm kartları sayfalayarak listeler.
func (r *CardRepository) GetAllCardsPaginated(ctx context.Context, params queryparams.ListParams) ([]models.Card, int64, error) {
	var results []models.Card
	var totalCount int64

	query := r.getDB(ctx).Model(&models.Card{})
	if params.Name != "" {
		query = query.Where("lower(name) LIKE ?", "%"+strings.ToLower(params.Name)+"%")
	}

	if err := query.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}
	if totalCount == 0 {
		return results, 0, nil
	}

	allowedSortColumns := map[string]string{
		"created_at": "created_at",
		"updated_at": "updated_at",
		"card_id":    "card_id",
		"name":       "name",
	}
	orderColumn := "created_at"
	if col, ok := allowedSortColumns[params.SortBy]; ok {
		orderColumn = col
	}
	orderBy := strings.ToLower(params.OrderBy)
	if orderBy != "asc" && orderBy != "desc" {
		orderBy = queryparams.DefaultOrderBy
	}

	err := query.
		Order(orderColumn + " " + orderBy).
		Limit(params.PerPage).
		Offset(params.CalculateOffset()).
		Find(&results).Error
	return results, totalCount, err
}

// GetCardCount toplam kart sayısını döndürür.
func (r *CardRepository) GetCardCount(ctx context.Context) (int64, error) {
	var count int64
	err := r.getDB(ctx).Model(&models.Card{}).Count(&count).Error
	return count, err
}

// Arayüz uyumluluğu kontrolü
var _ ICardRepository = (*CardRepository)(nil)
