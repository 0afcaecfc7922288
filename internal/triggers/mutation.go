package triggers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/team-todo-api/internal/models"
)

// Kind is the entity kind a mutation touched.
type Kind string

const (
	KindTodo         Kind = "todo"
	KindShardCounter Kind = "shard_counter"
)

// Op is the write that produced a mutation.
type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Key patterns understood by the registry.
const (
	PatternTodo         = "teams/*/users/*/todos/*"
	PatternShardCounter = "teams/*/shards/*"
)

// TodoSnapshot is the part of a todo that stats handlers care about.
type TodoSnapshot struct {
	ID          uint64 `json:"id"`
	TeamID      uint64 `json:"teamId"`
	OwnerID     uint64 `json:"ownerId"`
	Priority    int    `json:"priority"`
	IsSecret    bool   `json:"isSecret"`
	IsCompleted bool   `json:"isCompleted"`
}

// Mutation describes one write to the store.
type Mutation struct {
	ID         string        `json:"id"`
	Kind       Kind          `json:"kind"`
	Op         Op            `json:"op"`
	Key        string        `json:"key"`
	Before     *TodoSnapshot `json:"before,omitempty"`
	After      *TodoSnapshot `json:"after,omitempty"`
	OccurredAt time.Time     `json:"occurredAt"`
}

// Snapshot copies the stats-relevant fields of a todo.
func Snapshot(todo *models.Todo) *TodoSnapshot {
	if todo == nil {
		return nil
	}
	return &TodoSnapshot{
		ID:          todo.ID,
		TeamID:      todo.TeamID,
		OwnerID:     todo.OwnerID,
		Priority:    todo.Priority,
		IsSecret:    todo.IsSecret,
		IsCompleted: todo.IsCompleted,
	}
}

// TodoMutation builds the mutation for a todo write. Either side may be nil.
func TodoMutation(op Op, before, after *models.Todo) Mutation {
	ref := after
	if ref == nil {
		ref = before
	}
	m := Mutation{
		ID:         uuid.NewString(),
		Kind:       KindTodo,
		Op:         op,
		Before:     Snapshot(before),
		After:      Snapshot(after),
		OccurredAt: time.Now().UTC(),
	}
	if ref != nil {
		m.Key = TodoKey(ref.TeamID, ref.OwnerID, ref.ID)
	}
	return m
}

// ShardMutation builds the mutation emitted after a shard counter write.
func ShardMutation(teamID uint64, shard int) Mutation {
	return Mutation{
		ID:         uuid.NewString(),
		Kind:       KindShardCounter,
		Op:         OpUpdate,
		Key:        ShardKey(teamID, shard),
		OccurredAt: time.Now().UTC(),
	}
}

func TodoKey(teamID, ownerID, todoID uint64) string {
	return fmt.Sprintf("teams/%d/users/%d/todos/%d", teamID, ownerID, todoID)
}

func ShardKey(teamID uint64, shard int) string {
	return fmt.Sprintf("teams/%d/shards/%d", teamID, shard)
}

// TeamID extracts the team segment of a key. Zero ids are not resolvable.
func TeamID(key string) (uint64, bool) {
	return segment(key, "teams")
}

// UserID extracts the user segment of a key.
func UserID(key string) (uint64, bool) {
	return segment(key, "users")
}

func segment(key, name string) (uint64, bool) {
	parts := strings.Split(key, "/")
	for i := 0; i+1 < len(parts); i += 2 {
		if parts[i] != name {
			continue
		}
		id, err := strconv.ParseUint(parts[i+1], 10, 64)
		if err != nil || id == 0 {
			return 0, false
		}
		return id, true
	}
	return 0, false
}
