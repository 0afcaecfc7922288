package stats

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/yukikurage/team-todo-api/internal/models"
	"github.com/yukikurage/team-todo-api/internal/triggers"
)

// RollupTeam sums every shard counter of a team into its team stats row.
func (e *Engine) RollupTeam(ctx context.Context, teamID uint64) error {
	shards, err := e.stats.ListShards(ctx, teamID)
	if err != nil {
		return fmt.Errorf("list shards: %w", err)
	}

	stats := &models.TeamStats{
		TeamID:        teamID,
		LastUpdatedAt: e.now(),
	}
	for _, s := range shards {
		stats.TotalCompleted += s.Completed
		stats.TotalCount += s.Total
	}
	stats.CompletionRate = CompletionRate(stats.TotalCompleted, stats.TotalCount)

	if err := e.stats.UpsertTeamStats(ctx, stats); err != nil {
		return fmt.Errorf("upsert team stats: %w", err)
	}
	return nil
}

// HandleShardCounter is the team rollup trigger.
func (e *Engine) HandleShardCounter(ctx context.Context, m triggers.Mutation) error {
	teamID, ok := triggers.TeamID(m.Key)
	if !ok {
		log.WithField("key", m.Key).Debug("skipping rollup: no team")
		return nil
	}
	return e.RollupTeam(ctx, teamID)
}

// CompletionRate is completed/total, or 0 for an empty team.
func CompletionRate(completed, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(completed) / float64(total)
}
