package repository

import (
	"context"
	"time"

	"github.com/yukikurage/team-todo-api/internal/models"
)

// TodoRepository defines the interface for todo data access.
//
// Team-scoped reads only exist in privacy-filtered form: there is no method
// that lists another member's todos without either the secrecy condition or
// content redaction applied in SQL.
type TodoRepository interface {
	// Create creates a new todo
	Create(ctx context.Context, todo *models.Todo) error

	// FindByID finds a todo by ID
	FindByID(ctx context.Context, id uint64) (*models.Todo, error)

	// Update saves all columns of a todo
	Update(ctx context.Context, todo *models.Todo) error

	// Delete soft deletes a todo
	Delete(ctx context.Context, id uint64) error

	// ListByOwner lists every todo owned by the user, secret ones included
	ListByOwner(ctx context.Context, ownerID uint64) ([]models.Todo, error)

	// ListTeamVisible lists the non-secret todos of a team
	ListTeamVisible(ctx context.Context, filter TeamTodoFilter) ([]models.Todo, int64, error)

	// ListTeamExport lists every todo of a team with secret content redacted
	ListTeamExport(ctx context.Context, teamID uint64) ([]ExportRow, error)

	// ListActiveByMember lists a member's incomplete todos in a team
	ListActiveByMember(ctx context.Context, teamID, ownerID uint64) ([]models.Todo, error)

	// CountByTeam counts all todos of a team
	CountByTeam(ctx context.Context, teamID uint64) (int64, error)

	// CountCompletedByTeam counts the completed todos of a team
	CountCompletedByTeam(ctx context.Context, teamID uint64) (int64, error)

	// CountCreatedAfter counts todos of a team created strictly after t
	CountCreatedAfter(ctx context.Context, teamID uint64, t time.Time) (int64, error)

	// CountUrgentOpen counts incomplete todos of a team with the urgent priority
	CountUrgentOpen(ctx context.Context, teamID uint64) (int64, error)

	// ActivePriorities returns the priorities of at most limit incomplete todos
	ActivePriorities(ctx context.Context, teamID uint64, limit int) ([]int, error)
}

// TeamTodoFilter holds paging options for team listings
type TeamTodoFilter struct {
	TeamID   uint64
	Page     int
	PageSize int
}

// ExportRow is a todo as exposed to admin exports. Content is already
// redacted for secret rows.
type ExportRow struct {
	ID          uint64
	TeamID      uint64
	OwnerID     uint64
	OwnerName   string
	Content     string
	Priority    int
	IsSecret    bool
	IsCompleted bool
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// TeamRepository defines the interface for team data access
type TeamRepository interface {
	// Create creates a team and makes the creator its admin in one transaction
	Create(ctx context.Context, team *models.Team, creatorID uint64) error

	// FindByID finds a team by ID
	FindByID(ctx context.Context, id uint64) (*models.Team, error)

	// FindByInviteCode finds a team by invite code
	FindByInviteCode(ctx context.Context, code string) (*models.Team, error)

	// Update updates a team
	Update(ctx context.Context, team *models.Team) error

	// AddMember moves a user into a team as a regular member
	AddMember(ctx context.Context, teamID, userID uint64) error

	// RemoveMember detaches a user from a team
	RemoveMember(ctx context.Context, teamID, userID uint64) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// TouchLastLogin records a successful login
	TouchLastLogin(ctx context.Context, id uint64, at time.Time) error

	// ListByTeam lists the members of a team
	ListByTeam(ctx context.Context, teamID uint64) ([]models.User, error)

	// ListAdmins lists the admins of a team
	ListAdmins(ctx context.Context, teamID uint64) ([]models.User, error)

	// CountByTeam counts the members of a team
	CountByTeam(ctx context.Context, teamID uint64) (int64, error)

	// CountActiveSince counts members of a team who logged in at or after since
	CountActiveSince(ctx context.Context, teamID uint64, since time.Time) (int64, error)
}

// StatsRepository defines the interface for the denormalized statistics
// tables. Every write merges only the columns it owns.
type StatsRepository interface {
	// UpsertMemberStats writes the recomputed counters of a member
	UpsertMemberStats(ctx context.Context, stats *models.MemberStats) error

	// FindMemberStats finds the stats of a member
	FindMemberStats(ctx context.Context, teamID, userID uint64) (*models.MemberStats, error)

	// ListMemberStats lists the stats of every member of a team
	ListMemberStats(ctx context.Context, teamID uint64) ([]models.MemberStats, error)

	// IncrementShard atomically adds the deltas to one shard counter
	IncrementShard(ctx context.Context, teamID uint64, shard int, completed, total int64) error

	// ApplyShardDelta increments a shard once per mutation ID. It reports
	// false when the mutation was already applied.
	ApplyShardDelta(ctx context.Context, mutationID string, teamID uint64, shard int, completed, total int64) (bool, error)

	// ResetShards replaces every shard of a team with a single shard holding
	// the given totals
	ResetShards(ctx context.Context, teamID uint64, completed, total int64) error

	// ListShards lists every shard counter of a team
	ListShards(ctx context.Context, teamID uint64) ([]models.ShardCounter, error)

	// UpsertTeamStats writes the rollup columns of a team
	UpsertTeamStats(ctx context.Context, stats *models.TeamStats) error

	// FindTeamStats finds the rollup of a team
	FindTeamStats(ctx context.Context, teamID uint64) (*models.TeamStats, error)

	// SetLastBackup records a completed spreadsheet backup
	SetLastBackup(ctx context.Context, teamID uint64, at time.Time) error
}
