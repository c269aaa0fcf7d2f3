package models

import (
	"github.com/google/uuid"
)

// Client is a customer of the company. TotalJobs and TotalRevenue are kept
// up to date by the backend and never computed by consumers.
type Client struct {
	Base
	CompanyID uuid.UUID `gorm:"type:uuid;index;not null" json:"company_id"`

	Name          string `gorm:"not null" json:"name"`
	Email         string `gorm:"not null;index" json:"email"`
	Phone         string `gorm:"not null" json:"phone"`
	Address       string `gorm:"not null" json:"address"`
	ContactPerson string `json:"contact_person,omitempty"`

	TotalJobs    int     `gorm:"default:0" json:"total_jobs"`
	TotalRevenue float64 `gorm:"type:decimal(10,2);default:0.0" json:"total_revenue"`
}

// ClientInput is the body of both create and update requests.
type ClientInput struct {
	Name          string `json:"name" binding:"required"`
	Email         string `json:"email" binding:"required,email"`
	Phone         string `json:"phone" binding:"required"`
	Address       string `json:"address" binding:"required"`
	ContactPerson string `json:"contact_person"`
}
