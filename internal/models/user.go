package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleMember UserRole = "member"
)

type User struct {
	ID           uint64         `gorm:"primarykey" json:"id"`
	Email        string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	DisplayName  string         `gorm:"type:varchar(100);not null" json:"display_name"`
	PasswordHash string         `gorm:"type:varchar(255);not null" json:"-"`
	TeamID       *uint64        `gorm:"index" json:"team_id"`
	Role         UserRole       `gorm:"type:varchar(20);not null;default:'member'" json:"role"`
	LastLoginAt  *time.Time     `gorm:"index" json:"last_login_at"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Team *Team `gorm:"foreignKey:TeamID" json:"-"`
}

// IsAdmin reports whether the user administers their team.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
