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

// User is the minimal identity the scoring and ranking paths need.
// Registration, OTP verification and payment plans live in other services.
type User struct {
	ID       uint     `json:"id" gorm:"primaryKey"`
	FullName string   `json:"full_name" gorm:"size:120;not null" validate:"required,min=1,max=120"`
	Email    string   `json:"email" gorm:"uniqueIndex;size:254;not null" validate:"required,email"`
	Role     UserRole `json:"role" gorm:"default:student;index" validate:"omitempty,oneof=student admin"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}
