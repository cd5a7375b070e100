package models

import (
	"fmt"
	"time"
)

// Card dijital kartvizitin belge kaydıdır. Klasik ilişkisel parçalama yerine
// tek bir düz tabloda, deterministik "<ownerID>_<cardID>" anahtarı ile tutulur;
// böylece aynı CardID iki farklı hesapta çakışmadan var olabilir.
type Card struct {
	DocKey  string `gorm:"type:varchar(80);primaryKey" json:"-"`
	CardID  string `gorm:"type:varchar(8);index;not null" json:"cardId"`
	OwnerID uint   `gorm:"index;not null" json:"userId"`

	// Profil alanları
	Name         string `gorm:"type:varchar(150)" json:"name"`
	Bio          string `gorm:"type:text" json:"bio"`
	ProfileImage string `gorm:"type:text" json:"profileImage"` // Opak, istemcide küçültülmüş görsel verisi
	PrimaryColor string `gorm:"type:varchar(7)" json:"primaryColor"`

	// Sıralı link listesi; sıra görüntüleme sırasıdır ve korunmalıdır.
	Links CardLinks `gorm:"type:jsonb" json:"links"`

	// IsConfigured true olana kadar kartvizit public olarak çözümlenmez.
	IsConfigured bool `gorm:"default:false;index" json:"isConfigured"`

	CreatedAt time.Time `json:"createdAt,omitempty"` // Bir kez yazılır, güncellemede korunur
	UpdatedAt time.Time `json:"updatedAt,omitempty"` // Her başarılı kayıtta yenilenir
}

// CardDocKey (ownerID, cardID) ikilisinden belge anahtarını üretir.
// CardID büyük harf base36 olduğu için '_' ayracı ile çakışmaz.
func CardDocKey(ownerID uint, cardID string) string {
	return fmt.Sprintf("%d_%s", ownerID, cardID)
}

// EffectiveTime listelemede sıralama için kullanılacak zamanı döndürür:
// önce UpdatedAt, yoksa CreatedAt; ikisi de yoksa sıfır değer (en eski sayılır).
func (c *Card) EffectiveTime() time.Time {
	if !c.UpdatedAt.IsZero() {
		return c.UpdatedAt
	}
	return c.CreatedAt
}
