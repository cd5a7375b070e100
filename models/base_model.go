package models

import (
	"time"

	"gorm.io/gorm"
)

// ContextUserIDKey işlemi yapan kullanıcıyı context üzerinden taşımak için kullanılır.
// (BaseModel hook'ları bu değeri okur.)
type contextKey string

const ContextUserIDKey contextKey = "user_id"

// BaseModel tüm ilişkisel modeller için ortak alanları içerir.
type BaseModel struct {
	ID        uint           `gorm:"primarykey"`
	CreatedAt time.Time      `gorm:"index"`
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
	CreatedBy *uint
	UpdatedBy *uint
	DeletedBy *uint
}

// userIDFromContext context'ten işlemi yapan kullanıcı ID'sini okur.
func userIDFromContext(tx *gorm.DB) *uint {
	if tx.Statement == nil || tx.Statement.Context == nil {
		return nil
	}
	if id, ok := tx.Statement.Context.Value(ContextUserIDKey).(uint); ok && id != 0 {
		return &id
	}
	return nil
}

// BeforeCreate CreatedBy alanını context'teki kullanıcı ile doldurur.
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.CreatedBy == nil {
		m.CreatedBy = userIDFromContext(tx)
	}
	return nil
}

// BeforeUpdate UpdatedBy alanını context'teki kullanıcı ile doldurur.
func (m *BaseModel) BeforeUpdate(tx *gorm.DB) error {
	if id := userIDFromContext(tx); id != nil {
		m.UpdatedBy = id
	}
	return nil
}
