package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleAdmin   UserRole = "admin"
)

// User mirrors the identity provider's account record. The service never
// authenticates users itself; rows exist only to attribute results.
type User struct {
	ID          string   `json:"id" gorm:"primaryKey;size:255"`
	DisplayName string   `json:"display_name" gorm:"size:100"`
	Email       string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Role        UserRole `json:"role" gorm:"size:20;default:student"`

	AvatarURL   *string    `json:"avatar_url" gorm:"size:500"`
	LastLoginAt *time.Time `json:"last_login_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}
