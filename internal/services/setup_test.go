package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yukikurage/team-todo-api/internal/database"
	"github.com/yukikurage/team-todo-api/internal/identity"
	"github.com/yukikurage/team-todo-api/internal/models"
	"github.com/yukikurage/team-todo-api/internal/repository"
	"github.com/yukikurage/team-todo-api/internal/triggers"
)

type serviceTestEnv struct {
	db        *gorm.DB
	todoRepo  repository.TodoRepository
	userRepo  repository.UserRepository
	teamRepo  repository.TeamRepository
	statsRepo repository.StatsRepository
}

func setupServiceTestEnv(t *testing.T) serviceTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, db.AutoMigrate(database.AllModels...))

	return serviceTestEnv{
		db:        db,
		todoRepo:  repository.NewTodoRepository(db),
		userRepo:  repository.NewUserRepository(db),
		teamRepo:  repository.NewTeamRepository(db),
		statsRepo: repository.NewStatsRepository(db),
	}
}

func (env serviceTestEnv) createTeam(t *testing.T, name string) *models.Team {
	t.Helper()
	team := &models.Team{Name: name, InviteCode: name + "-CODE"}
	require.NoError(t, env.db.Create(team).Error)
	return team
}

func (env serviceTestEnv) createUser(t *testing.T, email string, team *models.Team, role models.UserRole) *models.User {
	t.Helper()
	user := &models.User{Email: email, DisplayName: email, PasswordHash: "x", Role: role}
	if team != nil {
		user.TeamID = &team.ID
	}
	require.NoError(t, env.db.Create(user).Error)
	return user
}

func (env serviceTestEnv) createTodo(t *testing.T, owner *models.User, content string, priority int, secret, completed bool) *models.Todo {
	t.Helper()
	todo := &models.Todo{
		TeamID:      *owner.TeamID,
		OwnerID:     owner.ID,
		Content:     content,
		Priority:    priority,
		IsSecret:    secret,
		IsCompleted: completed,
	}
	require.NoError(t, env.db.Create(todo).Error)
	return todo
}

func idOf(user *models.User) identity.Identity {
	return identity.FromUser(user)
}

type recordingPublisher struct {
	mutations []triggers.Mutation
	err       error
}

func (p *recordingPublisher) Publish(_ context.Context, m triggers.Mutation) error {
	p.mutations = append(p.mutations, m)
	return p.err
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}
