package models

import (
	"time"
)

const TrialPeriod = 14 * 24 * time.Hour

type Company struct {
	Base
	Name               string    `gorm:"not null" json:"name"`
	Email              string    `json:"email"`
	Phone              string    `json:"phone,omitempty"`
	Address            string    `json:"address,omitempty"`
	SubscriptionStatus string    `gorm:"type:varchar(20);default:'trial'" json:"subscription_status"` // trial, active, suspended
	SubscriptionPlan   string    `gorm:"type:varchar(20);default:'basic'" json:"subscription_plan"`   // basic, professional, enterprise
	TrialEndsAt        time.Time `json:"trial_ends_at"`

	// SMS alerts go to NotifyPhone when SMSNotifications is on.
	NotifyPhone      string `json:"notify_phone,omitempty"`
	SMSNotifications bool   `gorm:"default:false" json:"sms_notifications"`

	Users            []User            `gorm:"foreignKey:CompanyID" json:"-"`
	Clients          []Client          `gorm:"foreignKey:CompanyID" json:"-"`
	MessageTemplates []MessageTemplate `gorm:"foreignKey:CompanyID" json:"-"`
}

type CompanySettingsInput struct {
	Name             *string `json:"name"`
	Phone            *string `json:"phone"`
	Address          *string `json:"address"`
	NotifyPhone      *string `json:"notify_phone"`
	SMSNotifications *bool   `json:"sms_notifications"`
}
