package repository

import (
	"context"
	"time"

	"github.com/yukikurage/team-todo-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStatsRepository is a GORM implementation of StatsRepository
type GormStatsRepository struct {
	db *gorm.DB
}

// NewStatsRepository creates a new StatsRepository
func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &GormStatsRepository{db: db}
}

// UpsertMemberStats inserts the member row or overwrites only its counters
// and activity timestamp
func (r *GormStatsRepository) UpsertMemberStats(ctx context.Context, stats *models.MemberStats) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "team_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"active_count", "secret_count", "high_priority_count", "last_activity_at",
			}),
		}).
		Create(stats).Error
}

// FindMemberStats finds the stats of a member
func (r *GormStatsRepository) FindMemberStats(ctx context.Context, teamID, userID uint64) (*models.MemberStats, error) {
	var stats models.MemberStats
	if err := r.db.WithContext(ctx).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		First(&stats).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}

// ListMemberStats lists the stats of every member of a team
func (r *GormStatsRepository) ListMemberStats(ctx context.Context, teamID uint64) ([]models.MemberStats, error) {
	var stats []models.MemberStats
	if err := r.db.WithContext(ctx).
		Where("team_id = ?", teamID).
		Order("user_id ASC").
		Find(&stats).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

// IncrementShard adds the deltas to a shard counter, creating it on first use
func (r *GormStatsRepository) IncrementShard(ctx context.Context, teamID uint64, shard int, completed, total int64) error {
	return incrementShard(r.db.WithContext(ctx), teamID, shard, completed, total)
}

// ApplyShardDelta records the mutation and increments the shard in one
// transaction. A mutation ID seen before leaves the counters untouched.
func (r *GormStatsRepository) ApplyShardDelta(ctx context.Context, mutationID string, teamID uint64, shard int, completed, total int64) (bool, error) {
	applied := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.ProcessedMutation{ID: mutationID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		if err := incrementShard(tx, teamID, shard, completed, total); err != nil {
			return err
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}

// ResetShards deletes the team's shards and writes shard 0 with the totals
func (r *GormStatsRepository) ResetShards(ctx context.Context, teamID uint64, completed, total int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("team_id = ?", teamID).Delete(&models.ShardCounter{}).Error; err != nil {
			return err
		}
		return tx.Create(&models.ShardCounter{
			TeamID:    teamID,
			Shard:     0,
			Completed: completed,
			Total:     total,
		}).Error
	})
}

func incrementShard(db *gorm.DB, teamID uint64, shard int, completed, total int64) error {
	counter := &models.ShardCounter{
		TeamID:    teamID,
		Shard:     shard,
		Completed: completed,
		Total:     total,
	}
	return db.
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "team_id"}, {Name: "shard"}},
			DoUpdates: clause.Assignments(map[string]any{
				"completed": gorm.Expr("completed + ?", completed),
				"total":     gorm.Expr("total + ?", total),
			}),
		}).
		Create(counter).Error
}

// ListShards lists every shard counter of a team
func (r *GormStatsRepository) ListShards(ctx context.Context, teamID uint64) ([]models.ShardCounter, error) {
	var shards []models.ShardCounter
	if err := r.db.WithContext(ctx).
		Where("team_id = ?", teamID).
		Order("shard ASC").
		Find(&shards).Error; err != nil {
		return nil, err
	}
	return shards, nil
}

// UpsertTeamStats inserts the team row or overwrites only the rollup columns.
// last_backup_at is left alone.
func (r *GormStatsRepository) UpsertTeamStats(ctx context.Context, stats *models.TeamStats) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "team_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"total_completed", "total_count", "completion_rate", "last_updated_at",
			}),
		}).
		Create(stats).Error
}

// FindTeamStats finds the rollup of a team
func (r *GormStatsRepository) FindTeamStats(ctx context.Context, teamID uint64) (*models.TeamStats, error) {
	var stats models.TeamStats
	if err := r.db.WithContext(ctx).
		Where("team_id = ?", teamID).
		First(&stats).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}

// SetLastBackup records a completed backup without touching the rollup columns
func (r *GormStatsRepository) SetLastBackup(ctx context.Context, teamID uint64, at time.Time) error {
	stats := &models.TeamStats{
		TeamID:        teamID,
		LastUpdatedAt: at,
		LastBackupAt:  &at,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "team_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"last_backup_at"}),
		}).
		Create(stats).Error
}
