package models

import (
	"time"

	"gorm.io/gorm"
)

type Team struct {
	ID         uint64         `gorm:"primarykey" json:"id"`
	Name       string         `gorm:"type:varchar(255);not null" json:"name"`
	InviteCode string         `gorm:"type:varchar(50);uniqueIndex;not null" json:"invite_code"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Members []User `gorm:"foreignKey:TeamID" json:"members,omitempty"`
	Todos   []Todo `gorm:"foreignKey:TeamID" json:"todos,omitempty"`
}
