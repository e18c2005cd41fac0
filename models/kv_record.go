package models

import (
	"time"

	"gorm.io/datatypes"
)

// KVRecord speichert einen Wert unter einem festen Schlüssel (z.B. die Favoritenliste).
type KVRecord struct {
	Key       string         `json:"key" gorm:"primaryKey;size:128"`
	Value     datatypes.JSON `json:"value"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// TableName gibt explizit den Tabellennamen an.
func (KVRecord) TableName() string {
	return "kv_records"
}
