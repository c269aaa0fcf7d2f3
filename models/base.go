package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base carries the identity and timestamps shared by every persisted record.
// Identities are assigned here, never by API callers.
type Base struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Initialize UUID before creating
func (b *Base) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return
}

// All lists every model for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&Company{},
		&User{},
		&Client{},
		&Job{},
		&JobNote{},
		&Invoice{},
		&Technician{},
		&TimeEntry{},
		&InventoryItem{},
		&StockMovement{},
		&JobPartUsage{},
		&LowStockAlert{},
		&Notification{},
		&MessageTemplate{},
		&MessageLog{},
	}
}
