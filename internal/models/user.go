package models

import (
	"time"

	"grabwallet/internal/domain"

	"gorm.io/gorm"
)

// User is a member of the referral tree. UserID is the short public id other users
// reference as their sponsor (SharedID); root users have no sponsor.
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	UserID       string         `gorm:"uniqueIndex;size:16;not null" json:"user_id"`
	SharedID     *string        `gorm:"index;size:16" json:"shared_id"`
	Username     string         `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Email        string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Mobile       string         `gorm:"size:20" json:"mobile"`
	PasswordHash string         `gorm:"size:255" json:"-"`
	Role         string         `gorm:"size:20;not null;default:'USER';index" json:"role"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool { return u.Role == domain.RoleAdmin }

// Sponsor returns the sponsor's user id, or "" for a root user.
func (u *User) Sponsor() string {
	if u.SharedID == nil {
		return ""
	}
	return *u.SharedID
}
