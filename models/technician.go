package models

import (
	"time"

	"github.com/google/uuid"
)

type Technician struct {
	Base
	CompanyID uuid.UUID `gorm:"type:uuid;index;not null" json:"company_id"`

	Name       string   `gorm:"not null" json:"name"`
	Email      string   `gorm:"not null" json:"email"`
	Phone      string   `json:"phone,omitempty"`
	Skills     []string `gorm:"type:text;serializer:json" json:"skills"`
	HourlyRate float64  `gorm:"type:decimal(10,2);default:0" json:"hourly_rate"`
	IsActive   bool     `gorm:"default:true" json:"is_active"`
}

type TechnicianInput struct {
	Name       string   `json:"name" binding:"required"`
	Email      string   `json:"email" binding:"required,email"`
	Phone      string   `json:"phone"`
	Skills     []string `json:"skills"`
	HourlyRate float64  `json:"hourly_rate" binding:"min=0"`
	IsActive   *bool    `json:"is_active"`
}

type TimeEntry struct {
	Base
	CompanyID    uuid.UUID  `gorm:"type:uuid;index;not null" json:"company_id"`
	JobID        uuid.UUID  `gorm:"type:uuid;index;not null" json:"job_id"`
	TechnicianID *uuid.UUID `gorm:"type:uuid;index" json:"technician_id,omitempty"`
	UserID       uuid.UUID  `gorm:"type:uuid;index;not null" json:"user_id"`

	StartTime   time.Time  `gorm:"index" json:"start_time"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	Description string     `json:"description,omitempty"`
	IsBillable  bool       `json:"is_billable"`
}

// Duration is zero while the entry is still running.
func (e TimeEntry) Duration() time.Duration {
	if e.EndTime == nil {
		return 0
	}
	return e.EndTime.Sub(e.StartTime)
}

func (e TimeEntry) IsActive() bool {
	return e.EndTime == nil
}

type TimeEntryInput struct {
	JobID        uuid.UUID  `json:"job_id" binding:"required"`
	TechnicianID *uuid.UUID `json:"technician_id"`
	Description  string     `json:"description"`
	IsBillable   *bool      `json:"is_billable"`
}

// TimeEntryUpdate edits an entry. Stop closes a running entry at the
// current time when no EndTime is given.
type TimeEntryUpdate struct {
	Stop        bool       `json:"stop"`
	EndTime     *time.Time `json:"end_time"`
	Description *string    `json:"description"`
	IsBillable  *bool      `json:"is_billable"`
}

// TechnicianStats summarises one technician's workload.
type TechnicianStats struct {
	TechnicianID   uuid.UUID `json:"technician_id"`
	Name           string    `json:"name"`
	TotalJobs      int       `json:"total_jobs"`
	CompletedJobs  int       `json:"completed_jobs"`
	TotalHours     float64   `json:"total_hours"`
	TotalRevenue   float64   `json:"total_revenue"`
	CompletionRate float64   `json:"completion_rate"`
}
