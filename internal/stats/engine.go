// Package stats keeps the denormalized statistics tables in step with todo
// writes. Member stats are recounted from scratch on every mutation; team
// stats are rolled up from shard counters that absorb the per-write deltas.
package stats

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/yukikurage/team-todo-api/internal/constants"
	"github.com/yukikurage/team-todo-api/internal/models"
	"github.com/yukikurage/team-todo-api/internal/repository"
	"github.com/yukikurage/team-todo-api/internal/triggers"
)

// Engine reacts to todo and shard counter mutations.
type Engine struct {
	todos      repository.TodoRepository
	stats      repository.StatsRepository
	publisher  triggers.Publisher
	shardCount int

	now   func() time.Time
	shard func(n int) int
}

// NewEngine creates an Engine. Shard counter writes are announced through
// publisher so that the rollup runs wherever the bus delivers them.
func NewEngine(todos repository.TodoRepository, stats repository.StatsRepository, publisher triggers.Publisher, shardCount int) *Engine {
	if shardCount < 1 {
		shardCount = 1
	}
	return &Engine{
		todos:      todos,
		stats:      stats,
		publisher:  publisher,
		shardCount: shardCount,
		now:        func() time.Time { return time.Now().UTC() },
		shard:      rand.IntN,
	}
}

// Register subscribes the engine's handlers.
func (e *Engine) Register(reg *triggers.Registry) {
	reg.On(triggers.KindTodo, triggers.PatternTodo, "member-stats", e.HandleTodoForMember)
	reg.On(triggers.KindTodo, triggers.PatternTodo, "shard-counter", e.HandleTodoForShard)
	reg.On(triggers.KindShardCounter, triggers.PatternShardCounter, "team-rollup", e.HandleShardCounter)
}

// RecomputeMember recounts a member's active todos and overwrites their
// stats row.
func (e *Engine) RecomputeMember(ctx context.Context, teamID, userID uint64) error {
	active, err := e.todos.ListActiveByMember(ctx, teamID, userID)
	if err != nil {
		return fmt.Errorf("list active todos: %w", err)
	}

	stats := &models.MemberStats{
		TeamID:         teamID,
		UserID:         userID,
		ActiveCount:    int64(len(active)),
		LastActivityAt: e.now(),
	}
	for _, todo := range active {
		if todo.IsSecret {
			stats.SecretCount++
		}
		if todo.Priority >= constants.HighPriorityMinimum {
			stats.HighPriorityCount++
		}
	}

	if err := e.stats.UpsertMemberStats(ctx, stats); err != nil {
		return fmt.Errorf("upsert member stats: %w", err)
	}
	return nil
}

// HandleTodoForMember is the member stats trigger.
func (e *Engine) HandleTodoForMember(ctx context.Context, m triggers.Mutation) error {
	teamID, userID, ok := memberOf(m)
	if !ok {
		log.WithField("key", m.Key).Debug("skipping member stats: no team or user")
		return nil
	}
	return e.RecomputeMember(ctx, teamID, userID)
}

// memberOf resolves the (team, user) pair a todo mutation belongs to.
func memberOf(m triggers.Mutation) (uint64, uint64, bool) {
	for _, snap := range []*triggers.TodoSnapshot{m.After, m.Before} {
		if snap != nil && snap.TeamID != 0 && snap.OwnerID != 0 {
			return snap.TeamID, snap.OwnerID, true
		}
	}
	teamID, ok := triggers.TeamID(m.Key)
	if !ok {
		return 0, 0, false
	}
	userID, ok := triggers.UserID(m.Key)
	if !ok {
		return 0, 0, false
	}
	return teamID, userID, true
}
