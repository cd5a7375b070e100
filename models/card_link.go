package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// CardLink kartvizit üzerindeki tek bir temalı linki temsil eder.
type CardLink struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"` // Sembolik ikon etiketi (örn: "bi-globe")
	Path        string `json:"path"`
	Color       string `json:"color"`
	IsExternal  bool   `json:"isExternal"`
}

// CardLinks JSONB kolonunda saklanan sıralı link dizisidir.
// Dizi sırası görüntüleme sırasıdır; Scan/Value bu sırayı aynen korur.
type CardLinks []CardLink

// Value GORM için JSONB değerini üretir.
func (l CardLinks) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("card links serileştirilemedi: %w", err)
	}
	return string(b), nil
}

// Scan JSONB kolonundan gelen değeri çözer.
func (l *CardLinks) Scan(value interface{}) error {
	if value == nil {
		*l = CardLinks{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("card links için beklenmeyen kolon tipi")
	}
	if len(data) == 0 {
		*l = CardLinks{}
		return nil
	}
	return json.Unmarshal(data, l)
}
