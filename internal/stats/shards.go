package stats

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/yukikurage/team-todo-api/internal/triggers"
)

// Delta is the change a todo mutation makes to its team's counters.
type Delta struct {
	Completed int64
	Total     int64
}

func (d Delta) IsZero() bool {
	return d.Completed == 0 && d.Total == 0
}

// DeltaFor derives counter changes from a mutation's snapshots.
func DeltaFor(m triggers.Mutation) Delta {
	var d Delta
	switch m.Op {
	case triggers.OpCreate:
		if m.After == nil {
			return d
		}
		d.Total = 1
		if m.After.IsCompleted {
			d.Completed = 1
		}
	case triggers.OpUpdate:
		if m.Before == nil || m.After == nil || m.Before.IsCompleted == m.After.IsCompleted {
			return d
		}
		if m.After.IsCompleted {
			d.Completed = 1
		} else {
			d.Completed = -1
		}
	case triggers.OpDelete:
		if m.Before == nil {
			return d
		}
		d.Total = -1
		if m.Before.IsCompleted {
			d.Completed = -1
		}
	}
	return d
}

// HandleTodoForShard applies a todo mutation's delta to a random shard and
// announces the shard write. A mutation is counted at most once, so
// redelivery leaves the counters unchanged.
func (e *Engine) HandleTodoForShard(ctx context.Context, m triggers.Mutation) error {
	d := DeltaFor(m)
	if d.IsZero() {
		return nil
	}
	teamID, _, ok := memberOf(m)
	if !ok {
		log.WithField("key", m.Key).Debug("skipping shard counter: no team")
		return nil
	}

	shard := e.shard(e.shardCount)
	if m.ID == "" {
		if err := e.stats.IncrementShard(ctx, teamID, shard, d.Completed, d.Total); err != nil {
			return fmt.Errorf("increment shard %d: %w", shard, err)
		}
	} else {
		applied, err := e.stats.ApplyShardDelta(ctx, m.ID, teamID, shard, d.Completed, d.Total)
		if err != nil {
			return fmt.Errorf("increment shard %d: %w", shard, err)
		}
		if !applied {
			log.WithFields(log.Fields{"mutation": m.ID, "key": m.Key}).Debug("shard delta already applied")
			return nil
		}
	}
	if err := e.publisher.Publish(ctx, triggers.ShardMutation(teamID, shard)); err != nil {
		return fmt.Errorf("publish shard write: %w", err)
	}
	return nil
}

// RebuildShards recounts a team's todos, collapses its shards into one
// holding the counted totals and rolls the result up into team stats.
func (e *Engine) RebuildShards(ctx context.Context, teamID uint64) error {
	total, err := e.todos.CountByTeam(ctx, teamID)
	if err != nil {
		return fmt.Errorf("count todos: %w", err)
	}
	completed, err := e.todos.CountCompletedByTeam(ctx, teamID)
	if err != nil {
		return fmt.Errorf("count completed todos: %w", err)
	}
	if err := e.stats.ResetShards(ctx, teamID, completed, total); err != nil {
		return fmt.Errorf("reset shards: %w", err)
	}
	log.WithFields(log.Fields{"team": teamID, "completed": completed, "total": total}).Info("rebuilt shard counters")
	return e.RollupTeam(ctx, teamID)
}
