package models

import "time"

// MemberStats is the per (team, user) summary of active todos. It is only
// ever written by the stats recompute handler.
type MemberStats struct {
	TeamID            uint64    `gorm:"primarykey;autoIncrement:false" json:"team_id"`
	UserID            uint64    `gorm:"primarykey;autoIncrement:false" json:"user_id"`
	ActiveCount       int64     `gorm:"not null;default:0" json:"active_count"`
	SecretCount       int64     `gorm:"not null;default:0" json:"secret_count"`
	HighPriorityCount int64     `gorm:"not null;default:0" json:"high_priority_count"`
	LastActivityAt    time.Time `json:"last_activity_at"`
	CreatedAt         time.Time `json:"created_at"`
}

// TeamStats is the team-wide rollup of all shard counters.
type TeamStats struct {
	TeamID         uint64     `gorm:"primarykey;autoIncrement:false" json:"team_id"`
	TotalCompleted int64      `gorm:"not null;default:0" json:"total_completed"`
	TotalCount     int64      `gorm:"not null;default:0" json:"total_count"`
	CompletionRate float64    `gorm:"not null;default:0" json:"completion_rate"`
	LastUpdatedAt  time.Time  `json:"last_updated_at"`
	LastBackupAt   *time.Time `json:"last_backup_at"`
}

// ShardCounter is one partition of a team's completion counters.
type ShardCounter struct {
	TeamID    uint64 `gorm:"primarykey;autoIncrement:false" json:"team_id"`
	Shard     int    `gorm:"primarykey;autoIncrement:false" json:"shard"`
	Completed int64  `gorm:"not null;default:0" json:"completed"`
	Total     int64  `gorm:"not null;default:0" json:"total"`
}

// ProcessedMutation marks a mutation whose shard delta has been applied.
type ProcessedMutation struct {
	ID        string    `gorm:"primarykey;size:64" json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

func (MemberStats) TableName() string       { return "member_stats" }
func (TeamStats) TableName() string         { return "team_stats" }
func (ShardCounter) TableName() string      { return "shard_counters" }
func (ProcessedMutation) TableName() string { return "processed_mutations" }
