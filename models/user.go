package models

import (
	"fieldpro-backend/utils"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleAdmin      = "admin"
	RoleManager    = "manager"
	RoleTechnician = "technician"
)

type User struct {
	Base
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`
	FullName string `gorm:"not null" json:"full_name"`
	Phone    string `json:"phone,omitempty"`

	Role      string    `gorm:"type:varchar(20);not null" json:"role"` // admin, manager, technician
	CompanyID uuid.UUID `gorm:"type:uuid;index;not null" json:"company_id"`

	Company Company `gorm:"foreignKey:CompanyID" json:"-"`

	LastLogin *time.Time `json:"last_login,omitempty"`
	IsActive  bool       `gorm:"default:true" json:"is_active"`
}

// Hash the password before the first insert
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if err = u.Base.BeforeCreate(tx); err != nil {
		return err
	}
	hashed, err := utils.HashPassword(u.Password)
	if err != nil {
		return err
	}
	u.Password = hashed
	return
}

// Profile is the public view of a user cached by clients after login.
type Profile struct {
	ID          uuid.UUID `json:"id" yaml:"id"`
	Email       string    `json:"email" yaml:"email"`
	FullName    string    `json:"full_name" yaml:"full_name"`
	Role        string    `json:"role" yaml:"role"`
	CompanyName string    `json:"company_name" yaml:"company_name"`
}

func (u User) Profile(companyName string) Profile {
	return Profile{
		ID:          u.ID,
		Email:       u.Email,
		FullName:    u.FullName,
		Role:        u.Role,
		CompanyName: companyName,
	}
}

type RegisterInput struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	FullName    string `json:"full_name" binding:"required"`
	CompanyName string `json:"company_name" binding:"required"`
	Phone       string `json:"phone"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	AccessToken string  `json:"access_token"`
	TokenType   string  `json:"token_type"`
	User        Profile `json:"user"`
}
