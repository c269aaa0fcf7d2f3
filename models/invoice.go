package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	InvoicePending = "pending"
	InvoiceSent    = "sent"
	InvoicePaid    = "paid"
	InvoiceOverdue = "overdue"
)

// Invoice bills a client for one or more jobs. TotalAmount is fixed at
// creation as Subtotal + TaxAmount - DiscountAmount.
type Invoice struct {
	Base
	CompanyID uuid.UUID `gorm:"type:uuid;index;not null" json:"company_id"`

	InvoiceNumber string      `gorm:"uniqueIndex;not null" json:"invoice_number"`
	ClientID      uuid.UUID   `gorm:"type:uuid;index;not null" json:"client_id"`
	JobIDs        []uuid.UUID `gorm:"type:text;serializer:json" json:"job_ids"`

	Subtotal       float64 `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	TaxRate        float64 `gorm:"type:decimal(6,4);default:0" json:"tax_rate"`
	TaxAmount      float64 `gorm:"type:decimal(10,2);default:0" json:"tax_amount"`
	DiscountAmount float64 `gorm:"type:decimal(10,2);default:0" json:"discount_amount"`
	TotalAmount    float64 `gorm:"type:decimal(10,2);not null" json:"total_amount"`

	Status           string     `gorm:"type:varchar(20);index;default:'pending'" json:"status"`
	DueDate          time.Time  `gorm:"index" json:"due_date"`
	PaidDate         *time.Time `json:"paid_date,omitempty"`
	PaymentReference string     `json:"payment_reference,omitempty"`
	Notes            string     `json:"notes,omitempty"`
}

// IsOutstanding reports whether the invoice still counts toward money owed.
func (i Invoice) IsOutstanding() bool {
	return i.Status != InvoicePaid
}

type InvoiceInput struct {
	ClientID       uuid.UUID   `json:"client_id" binding:"required"`
	JobIDs         []uuid.UUID `json:"job_ids" binding:"required,min=1"`
	DueDate        time.Time   `json:"due_date" binding:"required"`
	TaxRate        float64     `json:"tax_rate" binding:"min=0,max=1"`
	DiscountAmount float64     `json:"discount_amount" binding:"min=0"`
	Notes          string      `json:"notes"`
}

// PaymentInput is the card payment request for an invoice.
type PaymentInput struct {
	PaymentMethodID string `json:"payment_method_id" binding:"required"`
	Token           string `json:"token"`
	PayerEmail      string `json:"payer_email" binding:"required,email"`
	Installments    int    `json:"installments" binding:"omitempty,min=1"`
}
