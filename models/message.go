package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Message kinds sent to the company notification phone.
const (
	MessageOverdueInvoice = "overdue_invoice"
	MessageLowStock       = "low_stock"
)

// Default bodies used when a company has not customised a template.
var DefaultTemplates = map[string]string{
	MessageOverdueInvoice: "Invoice {{invoice_number}} for {{client_name}} ({{amount}}) is overdue since {{due_date}}.",
	MessageLowStock:       "Low stock: {{item_name}} has {{quantity}} left (minimum {{min_level}}).",
}

type MessageTemplate struct {
	Base
	CompanyID uuid.UUID `gorm:"type:uuid;index;not null" json:"company_id"`
	Type      string    `gorm:"type:varchar(30);not null" json:"type"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
}

type MessageTemplateInput struct {
	Type     string `json:"type" binding:"required,oneof=overdue_invoice low_stock"`
	Message  string `json:"message" binding:"required"`
	IsActive *bool  `json:"is_active"`
}

// Render substitutes {{key}} placeholders.
func Render(body string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(body)
}

type MessageLog struct {
	Base
	CompanyID    uuid.UUID  `gorm:"type:uuid;index;not null" json:"company_id"`
	TemplateID   *uuid.UUID `gorm:"type:uuid;index" json:"template_id,omitempty"`
	ReferenceID  uuid.UUID  `gorm:"type:uuid;index" json:"reference_id"` // invoice or inventory item
	Type         string     `gorm:"type:varchar(30)" json:"type"`
	Recipient    string     `json:"recipient"`
	Message      string     `gorm:"type:text" json:"message"`
	Status       string     `gorm:"type:varchar(20)" json:"status"` // sent, failed
	ErrorMessage string     `gorm:"type:text" json:"error_message,omitempty"`
	Channel      string     `gorm:"type:varchar(20)" json:"channel"` // sms
	ProviderID   string     `json:"provider_id,omitempty"`
	SentAt       time.Time  `json:"sent_at"`
}
