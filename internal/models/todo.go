package models

import (
	"time"

	"gorm.io/gorm"
)

type Todo struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	TeamID      uint64         `gorm:"not null;index:idx_todos_team_owner_active,priority:1" json:"team_id"`
	OwnerID     uint64         `gorm:"not null;index:idx_todos_team_owner_active,priority:2" json:"owner_id"`
	Content     string         `gorm:"type:text;not null" json:"content"`
	Priority    int            `gorm:"not null;default:3;index" json:"priority"`
	IsSecret    bool           `gorm:"not null;default:false" json:"is_secret"`
	IsCompleted bool           `gorm:"not null;default:false;index:idx_todos_team_owner_active,priority:3" json:"is_completed"`
	CompletedAt *time.Time     `json:"completed_at"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Owner User `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Team  Team `gorm:"foreignKey:TeamID" json:"-"`
}

// SetCompleted flips the completion flag and keeps CompletedAt in step with it.
func (t *Todo) SetCompleted(completed bool, now time.Time) {
	if t.IsCompleted == completed {
		return
	}
	t.IsCompleted = completed
	if completed {
		t.CompletedAt = &now
	} else {
		t.CompletedAt = nil
	}
}
