package models

import (
	"github.com/google/uuid"
)

const (
	NotificationInfo    = "info"
	NotificationSuccess = "success"
	NotificationWarning = "warning"
	NotificationError   = "error"
)

type Notification struct {
	Base
	CompanyID uuid.UUID  `gorm:"type:uuid;index;not null" json:"company_id"`
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"` // nil: every user of the company
	Type      string     `gorm:"type:varchar(20);not null" json:"type"`
	Title     string     `json:"title"`
	Message   string     `gorm:"type:text;not null" json:"message"`
	IsRead    bool       `gorm:"default:false;index" json:"is_read"`
}

type UnreadCount struct {
	Count int64 `json:"count"`
}
