package models

// User kimlik kaynağıdır; kartvizitlerin sahibi olan hesabı temsil eder.
type User struct {
	BaseModel
	Name         string `gorm:"type:varchar(100);not null"`
	Email        string `gorm:"type:varchar(100);uniqueIndex;not null"`
	PasswordHash string `gorm:"type:varchar(100);not null"`
	IsSystem     bool   `gorm:"default:false;index"` // Dashboard erişimi için sistem kullanıcısı
	IsActive     bool   `gorm:"default:true"`
}
