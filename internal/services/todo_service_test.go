package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yukikurage/team-todo-api/internal/identity"
	"github.com/yukikurage/team-todo-api/internal/models"
	"github.com/yukikurage/team-todo-api/internal/triggers"
)

func TestTodoService_CreateTodo(t *testing.T) {
	env := setupServiceTestEnv(t)
	team := env.createTeam(t, "alpha")
	user := env.createUser(t, "u@example.com", team, models.RoleMember)
	pub := &recordingPublisher{}
	svc := NewTodoService(env.todoRepo, pub)
	ctx := context.Background()

	todo, err := svc.CreateTodo(ctx, idOf(user), CreateTodoInput{Content: "  write report  ", IsSecret: true})
	require.NoError(t, err)
	assert.Equal(t, "write report", todo.Content)
	assert.Equal(t, 3, todo.Priority)
	assert.Equal(t, team.ID, todo.TeamID)
	assert.True(t, todo.IsSecret)

	require.Len(t, pub.mutations, 1)
	m := pub.mutations[0]
	assert.Equal(t, triggers.OpCreate, m.Op)
	assert.Equal(t, triggers.TodoKey(team.ID, user.ID, todo.ID), m.Key)
	assert.Nil(t, m.Before)
	require.NotNil(t, m.After)
	assert.True(t, m.After.IsSecret)
}

func TestTodoService_CreateTodoValidation(t *testing.T) {
	env := setupServiceTestEnv(t)
	team := env.createTeam(t, "alpha")
	user := env.createUser(t, "u@example.com", team, models.RoleMember)
	loner := env.createUser(t, "l@example.com", nil, models.RoleMember)
	svc := NewTodoService(env.todoRepo, &recordingPublisher{})
	ctx := context.Background()

	_, err := svc.CreateTodo(ctx, idOf(loner), CreateTodoInput{Content: "x"})
	assert.ErrorIs(t, err, ErrNoTeam)

	_, err = svc.CreateTodo(ctx, idOf(user), CreateTodoInput{Content: "   "})
	assert.ErrorIs(t, err, ErrContentRequired)

	for _, p := range []int{0, 6, -1} {
		priority := p
		_, err = svc.CreateTodo(ctx, idOf(user), CreateTodoInput{Content: "x", Priority: &priority})
		assert.ErrorIs(t, err, ErrInvalidPriority, "priority %d", p)
	}
}

func TestTodoService_CreateTodoSurvivesPublishFailure(t *testing.T) {
	env := setupServiceTestEnv(t)
	team := env.createTeam(t, "alpha")
	user := env.createUser(t, "u@example.com", team, models.RoleMember)
	svc := NewTodoService(env.todoRepo, &recordingPublisher{err: errors.New("bus down")})

	todo, err := svc.CreateTodo(context.Background(), idOf(user), CreateTodoInput{Content: "x"})
	require.NoError(t, err)
	assert.NotZero(t, todo.ID)
}

func TestTodoService_ListingsApplyPrivacy(t *testing.T) {
	env := setupServiceTestEnv(t)
	team := env.createTeam(t, "alpha")
	owner := env.createUser(t, "o@example.com", team, models.RoleMember)
	peer := env.createUser(t, "p@example.com", team, models.RoleAdmin)
	svc := NewTodoService(env.todoRepo, nil)
	ctx := context.Background()

	env.createTodo(t, owner, "public", 3, false, false)
	env.createTodo(t, owner, "secret", 5, true, false)

	mine, err := svc.ListMyTodos(ctx, idOf(owner))
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "secret", mine[0].Content, "ordered by priority")

	teamTodos, total, err := svc.ListTeamTodos(ctx, idOf(peer), 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, teamTodos, 1)
	assert.Equal(t, "public", teamTodos[0].Content)

	teamTodos, _, err = svc.ListTeamTodos(ctx, idOf(owner), 1, 20)
	require.NoError(t, err)
	assert.Len(t, teamTodos, 1, "the team listing hides secrets from their owner too")
}

func TestTodoService_GetTodoHidesSecrets(t *testing.T) {
	env := setupServiceTestEnv(t)
	team := env.createTeam(t, "alpha")
	other := env.createTeam(t, "beta")
	owner := env.createUser(t, "o@example.com", team, models.RoleMember)
	peer := env.createUser(t, "p@example.com", team, models.RoleMember)
	stranger := env.createUser(t, "s@example.com", other, models.RoleMember)
	svc := NewTodoService(env.todoRepo, nil)
	ctx := context.Background()

	secret := env.createTodo(t, owner, "secret", 3, true, false)
	public := env.createTodo(t, owner, "public", 3, false, false)

	_, err := svc.GetTodo(ctx, idOf(owner), secret.ID)
	assert.NoError(t, err)

	_, err = svc.GetTodo(ctx, idOf(peer), secret.ID)
	assert.ErrorIs(t, err, ErrTodoNotFound)

	got, err := svc.GetTodo(ctx, idOf(peer), public.ID)
	require.NoError(t, err)
	assert.Equal(t, "public", got.Content)

	_, err = svc.GetTodo(ctx, idOf(stranger), public.ID)
	assert.ErrorIs(t, err, ErrTodoNotFound)

	_, err = svc.GetTodo(ctx, idOf(owner), 9999)
	assert.ErrorIs(t, err, ErrTodoNotFound)
}

func TestTodoService_UpdateTodo(t *testing.T) {
	env := setupServiceTestEnv(t)
	team := env.createTeam(t, "alpha")
	owner := env.createUser(t, "o@example.com", team, models.RoleMember)
	peer := env.createUser(t, "p@example.com", team, models.RoleMember)
	pub := &recordingPublisher{}
	svc := NewTodoService(env.todoRepo, pub)
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	svc.now = fixedClock(now)
	ctx := context.Background()

	todo := env.createTodo(t, owner, "draft", 2, false, false)

	done := true
	priority := 5
	updated, err := svc.UpdateTodo(ctx, idOf(owner), todo.ID, UpdateTodoInput{IsCompleted: &done, Priority: &priority})
	require.NoError(t, err)
	assert.True(t, updated.IsCompleted)
	require.NotNil(t, updated.CompletedAt)
	assert.True(t, updated.CompletedAt.Equal(now))
	assert.Equal(t, "draft", updated.Content)

	require.Len(t, pub.mutations, 1)
	assert.False(t, pub.mutations[0].Before.IsCompleted)
	assert.True(t, pub.mutations[0].After.IsCompleted)
	assert.Equal(t, 2, pub.mutations[0].Before.Priority)

	_, err = svc.UpdateTodo(ctx, idOf(peer), todo.ID, UpdateTodoInput{Priority: &priority})
	assert.ErrorIs(t, err, ErrNotTodoOwner)

	empty := " "
	_, err = svc.UpdateTodo(ctx, idOf(owner), todo.ID, UpdateTodoInput{Content: &empty})
	assert.ErrorIs(t, err, ErrContentRequired)

	secret := true
	_, err = svc.UpdateTodo(ctx, idOf(owner), todo.ID, UpdateTodoInput{IsSecret: &secret})
	require.NoError(t, err)
	_, err = svc.UpdateTodo(ctx, idOf(peer), todo.ID, UpdateTodoInput{Priority: &priority})
	assert.ErrorIs(t, err, ErrTodoNotFound, "secret todos do not leak through updates")
}

func TestTodoService_DeleteTodo(t *testing.T) {
	env := setupServiceTestEnv(t)
	team := env.createTeam(t, "alpha")
	owner := env.createUser(t, "o@example.com", team, models.RoleMember)
	pub := &recordingPublisher{}
	svc := NewTodoService(env.todoRepo, pub)
	ctx := context.Background()

	todo := env.createTodo(t, owner, "gone", 3, false, true)
	require.NoError(t, svc.DeleteTodo(ctx, idOf(owner), todo.ID))

	_, err := svc.GetTodo(ctx, idOf(owner), todo.ID)
	assert.ErrorIs(t, err, ErrTodoNotFound)

	var count int64
	env.db.Unscoped().Model(&models.Todo{}).Where("id = ?", todo.ID).Count(&count)
	assert.Equal(t, int64(1), count, "soft deleted")

	require.Len(t, pub.mutations, 1)
	assert.Equal(t, triggers.OpDelete, pub.mutations[0].Op)
	assert.True(t, pub.mutations[0].Before.IsCompleted)
	assert.Nil(t, pub.mutations[0].After)

	err = svc.DeleteTodo(ctx, identity.Identity{UserID: owner.ID, TeamID: team.ID}, todo.ID)
	assert.ErrorIs(t, err, ErrTodoNotFound)
}

func TestTodoService_TeamAdminCanEditTeammateTodos(t *testing.T) {
	env := setupServiceTestEnv(t)
	team := env.createTeam(t, "alpha")
	other := env.createTeam(t, "beta")
	owner := env.createUser(t, "o@example.com", team, models.RoleMember)
	admin := env.createUser(t, "a@example.com", team, models.RoleAdmin)
	outsider := env.createUser(t, "x@example.com", other, models.RoleAdmin)
	pub := &recordingPublisher{}
	svc := NewTodoService(env.todoRepo, pub)
	ctx := context.Background()

	shared := env.createTodo(t, owner, "shared", 2, false, false)
	hidden := env.createTodo(t, owner, "hidden", 2, true, false)

	priority := 4
	updated, err := svc.UpdateTodo(ctx, idOf(admin), shared.ID, UpdateTodoInput{Priority: &priority})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Priority)
	assert.Equal(t, owner.ID, updated.OwnerID, "ownership does not move to the admin")

	_, err = svc.UpdateTodo(ctx, idOf(admin), hidden.ID, UpdateTodoInput{Priority: &priority})
	assert.ErrorIs(t, err, ErrTodoNotFound)
	assert.ErrorIs(t, svc.DeleteTodo(ctx, idOf(admin), hidden.ID), ErrTodoNotFound)

	_, err = svc.UpdateTodo(ctx, idOf(outsider), shared.ID, UpdateTodoInput{Priority: &priority})
	assert.ErrorIs(t, err, ErrTodoNotFound)

	require.NoError(t, svc.DeleteTodo(ctx, idOf(admin), shared.ID))
	_, err = svc.GetTodo(ctx, idOf(owner), shared.ID)
	assert.ErrorIs(t, err, ErrTodoNotFound)
	require.Len(t, pub.mutations, 2)
	assert.Equal(t, owner.ID, pub.mutations[1].Before.OwnerID)
}
