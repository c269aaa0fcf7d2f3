package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	JobScheduled  = "scheduled"
	JobInProgress = "in_progress"
	JobCompleted  = "completed"
	JobCancelled  = "cancelled"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

type Job struct {
	Base
	CompanyID uuid.UUID `gorm:"type:uuid;index;not null" json:"company_id"`

	Title       string    `gorm:"not null" json:"title"`
	Description string    `json:"description,omitempty"`
	ClientID    uuid.UUID `gorm:"type:uuid;index;not null" json:"client_id"`
	ServiceType string    `gorm:"not null" json:"service_type"`

	Status   string `gorm:"type:varchar(20);index;default:'scheduled'" json:"status"`
	Priority string `gorm:"type:varchar(10);default:'medium'" json:"priority"`

	ScheduledDate     time.Time  `gorm:"index" json:"scheduled_date"`
	CompletedDate     *time.Time `json:"completed_date,omitempty"`
	EstimatedDuration int        `json:"estimated_duration"` // minutes
	ActualDuration    *int       `json:"actual_duration,omitempty"`
	EstimatedCost     float64    `gorm:"type:decimal(10,2)" json:"estimated_cost"`
	ActualCost        *float64   `gorm:"type:decimal(10,2)" json:"actual_cost,omitempty"`

	AssignedTechnicianID *uuid.UUID `gorm:"type:uuid;index" json:"assigned_technician_id,omitempty"`

	Photos []string  `gorm:"type:text;serializer:json" json:"photos"`
	Notes  []JobNote `gorm:"foreignKey:JobID" json:"notes"`

	// Filled in on reads for list screens.
	ClientName     string `gorm:"-" json:"client_name,omitempty"`
	TechnicianName string `gorm:"-" json:"technician_name,omitempty"`
}

// BillableAmount is the actual cost once recorded, otherwise the estimate.
func (j Job) BillableAmount() float64 {
	if j.ActualCost != nil && *j.ActualCost > 0 {
		return *j.ActualCost
	}
	return j.EstimatedCost
}

type JobNote struct {
	Base
	JobID     uuid.UUID `gorm:"type:uuid;index;not null" json:"job_id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedBy string    `json:"created_by"`
}

type JobInput struct {
	Title                string     `json:"title" binding:"required"`
	Description          string     `json:"description"`
	ClientID             uuid.UUID  `json:"client_id" binding:"required"`
	ServiceType          string     `json:"service_type" binding:"required"`
	Priority             string     `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	ScheduledDate        time.Time  `json:"scheduled_date" binding:"required"`
	EstimatedDuration    int        `json:"estimated_duration" binding:"min=0"`
	EstimatedCost        float64    `json:"estimated_cost" binding:"min=0"`
	ActualDuration       *int       `json:"actual_duration" binding:"omitempty,min=0"`
	ActualCost           *float64   `json:"actual_cost" binding:"omitempty,min=0"`
	AssignedTechnicianID *uuid.UUID `json:"assigned_technician_id"`
}

type JobNoteInput struct {
	Text string `json:"text" binding:"required"`
}

// StatusInput drives job and invoice status changes.
type StatusInput struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}
