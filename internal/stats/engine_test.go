package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yukikurage/team-todo-api/internal/database"
	"github.com/yukikurage/team-todo-api/internal/models"
	"github.com/yukikurage/team-todo-api/internal/repository"
	"github.com/yukikurage/team-todo-api/internal/triggers"
)

type recordingPublisher struct {
	published []triggers.Mutation
	err       error
}

func (p *recordingPublisher) Publish(_ context.Context, m triggers.Mutation) error {
	p.published = append(p.published, m)
	return p.err
}

type EngineTestSuite struct {
	suite.Suite
	db        *gorm.DB
	statsRepo repository.StatsRepository
	publisher *recordingPublisher
	engine    *Engine
	clock     time.Time
	team      *models.Team
	user      *models.User
}

func (s *EngineTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	s.Require().NoError(err)
	sqlDB, err := db.DB()
	s.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)
	s.Require().NoError(db.AutoMigrate(database.AllModels...))

	s.db = db
	s.statsRepo = repository.NewStatsRepository(db)
	s.publisher = &recordingPublisher{}
	s.engine = NewEngine(repository.NewTodoRepository(db), s.statsRepo, s.publisher, 4)
	s.clock = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s.engine.now = func() time.Time { return s.clock }
	s.engine.shard = func(int) int { return 2 }

	s.team = &models.Team{Name: "Alpha", InviteCode: "ALPHA1"}
	s.Require().NoError(db.Create(s.team).Error)
	s.user = &models.User{Email: "a@example.com", DisplayName: "A", PasswordHash: "x", TeamID: &s.team.ID}
	s.Require().NoError(db.Create(s.user).Error)
}

func (s *EngineTestSuite) TearDownTest() {
	sqlDB, err := s.db.DB()
	s.Require().NoError(err)
	sqlDB.Close()
}

func (s *EngineTestSuite) createTodo(priority int, secret, completed bool) *models.Todo {
	todo := &models.Todo{
		TeamID:      s.team.ID,
		OwnerID:     s.user.ID,
		Content:     "todo",
		Priority:    priority,
		IsSecret:    secret,
		IsCompleted: completed,
	}
	s.Require().NoError(s.db.Create(todo).Error)
	return todo
}

func (s *EngineTestSuite) TestRecomputeMemberCountsActiveTodos() {
	s.createTodo(5, false, false)
	s.createTodo(3, true, false)
	s.createTodo(5, false, false)
	s.createTodo(5, true, true)

	s.Require().NoError(s.engine.RecomputeMember(context.Background(), s.team.ID, s.user.ID))

	stats, err := s.statsRepo.FindMemberStats(context.Background(), s.team.ID, s.user.ID)
	s.Require().NoError(err)
	s.Equal(int64(3), stats.ActiveCount)
	s.Equal(int64(1), stats.SecretCount)
	s.Equal(int64(2), stats.HighPriorityCount)
	s.True(stats.LastActivityAt.Equal(s.clock))
}

func (s *EngineTestSuite) TestRecomputeMemberIsIdempotent() {
	s.createTodo(4, true, false)

	ctx := context.Background()
	s.Require().NoError(s.engine.RecomputeMember(ctx, s.team.ID, s.user.ID))
	first, err := s.statsRepo.FindMemberStats(ctx, s.team.ID, s.user.ID)
	s.Require().NoError(err)

	s.Require().NoError(s.engine.RecomputeMember(ctx, s.team.ID, s.user.ID))
	second, err := s.statsRepo.FindMemberStats(ctx, s.team.ID, s.user.ID)
	s.Require().NoError(err)

	s.Equal(first.ActiveCount, second.ActiveCount)
	s.Equal(first.SecretCount, second.SecretCount)
	s.Equal(first.HighPriorityCount, second.HighPriorityCount)
	s.True(first.LastActivityAt.Equal(second.LastActivityAt))
}

func (s *EngineTestSuite) TestRecomputeMemberDropsDeletedAndCompleted() {
	todo := s.createTodo(5, false, false)
	ctx := context.Background()
	s.Require().NoError(s.engine.RecomputeMember(ctx, s.team.ID, s.user.ID))

	s.Require().NoError(s.db.Delete(todo).Error)
	s.Require().NoError(s.engine.RecomputeMember(ctx, s.team.ID, s.user.ID))

	stats, err := s.statsRepo.FindMemberStats(ctx, s.team.ID, s.user.ID)
	s.Require().NoError(err)
	s.Zero(stats.ActiveCount)
	s.Zero(stats.HighPriorityCount)
}

func (s *EngineTestSuite) TestHandleTodoForMemberSkipsUnresolvableMutations() {
	err := s.engine.HandleTodoForMember(context.Background(), triggers.Mutation{
		Kind: triggers.KindTodo,
		Op:   triggers.OpUpdate,
		Key:  "teams/0/users/0/todos/1",
	})
	s.NoError(err)

	var count int64
	s.db.Model(&models.MemberStats{}).Count(&count)
	s.Zero(count)
}

func (s *EngineTestSuite) TestShardWritesRollUpIntoTeamStats() {
	ctx := context.Background()
	reg := triggers.NewRegistry()
	d := triggers.NewDispatcher(reg)
	s.engine.publisher = d
	s.engine.Register(reg)

	calls := 0
	s.engine.shard = func(n int) int {
		calls++
		return calls % n
	}

	a := s.createTodo(3, false, false)
	b := s.createTodo(3, false, false)
	s.Require().NoError(d.Publish(ctx, triggers.TodoMutation(triggers.OpCreate, nil, a)))
	s.Require().NoError(d.Publish(ctx, triggers.TodoMutation(triggers.OpCreate, nil, b)))

	before := *a
	a.SetCompleted(true, s.clock)
	s.Require().NoError(s.db.Model(a).Updates(map[string]any{
		"is_completed": true,
		"completed_at": s.clock,
	}).Error)
	s.Require().NoError(d.Publish(ctx, triggers.TodoMutation(triggers.OpUpdate, &before, a)))

	shards, err := s.statsRepo.ListShards(ctx, s.team.ID)
	s.Require().NoError(err)
	s.Len(shards, 3)

	stats, err := s.statsRepo.FindTeamStats(ctx, s.team.ID)
	s.Require().NoError(err)
	s.Equal(int64(1), stats.TotalCompleted)
	s.Equal(int64(2), stats.TotalCount)
	s.InDelta(0.5, stats.CompletionRate, 1e-9)

	member, err := s.statsRepo.FindMemberStats(ctx, s.team.ID, s.user.ID)
	s.Require().NoError(err)
	s.Equal(int64(1), member.ActiveCount)

	s.Require().NoError(s.db.Delete(a).Error)
	s.Require().NoError(d.Publish(ctx, triggers.TodoMutation(triggers.OpDelete, a, nil)))

	stats, err = s.statsRepo.FindTeamStats(ctx, s.team.ID)
	s.Require().NoError(err)
	s.Equal(int64(0), stats.TotalCompleted)
	s.Equal(int64(1), stats.TotalCount)
	s.Zero(stats.CompletionRate)
}

func (s *EngineTestSuite) TestHandleTodoForShardSkipsZeroDelta() {
	todo := s.createTodo(3, false, false)
	before := *todo
	todo.Priority = 5

	err := s.engine.HandleTodoForShard(context.Background(), triggers.TodoMutation(triggers.OpUpdate, &before, todo))
	s.Require().NoError(err)

	s.Empty(s.publisher.published)
	var count int64
	s.db.Model(&models.ShardCounter{}).Count(&count)
	s.Zero(count)
}

func (s *EngineTestSuite) TestHandleTodoForShardReportsPublishFailure() {
	s.publisher.err = errors.New("bus down")
	todo := s.createTodo(3, false, false)

	err := s.engine.HandleTodoForShard(context.Background(), triggers.TodoMutation(triggers.OpCreate, nil, todo))
	s.Require().Error(err)

	s.Require().Len(s.publisher.published, 1)
	s.Equal(triggers.ShardKey(s.team.ID, 2), s.publisher.published[0].Key)
}

func (s *EngineTestSuite) TestRollupWithoutShardsHasZeroRate() {
	s.Require().NoError(s.engine.RollupTeam(context.Background(), s.team.ID))

	stats, err := s.statsRepo.FindTeamStats(context.Background(), s.team.ID)
	s.Require().NoError(err)
	s.Zero(stats.TotalCount)
	s.Zero(stats.CompletionRate)
}

func (s *EngineTestSuite) TestRollupPreservesLastBackup() {
	ctx := context.Background()
	backup := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	s.Require().NoError(s.statsRepo.SetLastBackup(ctx, s.team.ID, backup))
	s.Require().NoError(s.statsRepo.IncrementShard(ctx, s.team.ID, 0, 1, 4))

	s.Require().NoError(s.engine.RollupTeam(ctx, s.team.ID))

	stats, err := s.statsRepo.FindTeamStats(ctx, s.team.ID)
	s.Require().NoError(err)
	s.Require().NotNil(stats.LastBackupAt)
	s.True(stats.LastBackupAt.Equal(backup))
	s.InDelta(0.25, stats.CompletionRate, 1e-9)
}

func (s *EngineTestSuite) TestRedeliveredMutationCountsOnce() {
	ctx := context.Background()
	reg := triggers.NewRegistry()
	d := triggers.NewDispatcher(reg)
	s.engine.publisher = d
	s.engine.Register(reg)

	todo := s.createTodo(3, false, true)
	m := triggers.TodoMutation(triggers.OpCreate, nil, todo)
	s.Require().NoError(d.Publish(ctx, m))
	s.Require().NoError(d.Publish(ctx, m))

	stats, err := s.statsRepo.FindTeamStats(ctx, s.team.ID)
	s.Require().NoError(err)
	s.Equal(int64(1), stats.TotalCount)
	s.Equal(int64(1), stats.TotalCompleted)

	var processed int64
	s.db.Model(&models.ProcessedMutation{}).Count(&processed)
	s.Equal(int64(1), processed)
}

func (s *EngineTestSuite) TestHandleTodoForShardSkipsPublishOnDuplicate() {
	todo := s.createTodo(3, false, false)
	m := triggers.TodoMutation(triggers.OpCreate, nil, todo)

	s.Require().NoError(s.engine.HandleTodoForShard(context.Background(), m))
	s.Require().NoError(s.engine.HandleTodoForShard(context.Background(), m))

	s.Len(s.publisher.published, 1)
	shards, err := s.statsRepo.ListShards(context.Background(), s.team.ID)
	s.Require().NoError(err)
	s.Require().Len(shards, 1)
	s.Equal(int64(1), shards[0].Total)
}

func (s *EngineTestSuite) TestRebuildShardsRepairsDrift() {
	ctx := context.Background()
	backup := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	s.Require().NoError(s.statsRepo.SetLastBackup(ctx, s.team.ID, backup))

	s.createTodo(3, false, true)
	s.createTodo(2, true, false)
	gone := s.createTodo(1, false, true)
	s.Require().NoError(s.db.Delete(gone).Error)

	s.Require().NoError(s.statsRepo.IncrementShard(ctx, s.team.ID, 1, 5, 9))
	s.Require().NoError(s.statsRepo.IncrementShard(ctx, s.team.ID, 3, -1, 2))
	s.Require().NoError(s.engine.RollupTeam(ctx, s.team.ID))

	s.Require().NoError(s.engine.RebuildShards(ctx, s.team.ID))

	shards, err := s.statsRepo.ListShards(ctx, s.team.ID)
	s.Require().NoError(err)
	s.Require().Len(shards, 1)
	s.Equal(0, shards[0].Shard)
	s.Equal(int64(1), shards[0].Completed)
	s.Equal(int64(2), shards[0].Total)

	stats, err := s.statsRepo.FindTeamStats(ctx, s.team.ID)
	s.Require().NoError(err)
	s.Equal(int64(1), stats.TotalCompleted)
	s.Equal(int64(2), stats.TotalCount)
	s.InDelta(0.5, stats.CompletionRate, 1e-9)
	s.Require().NotNil(stats.LastBackupAt)
	s.True(stats.LastBackupAt.Equal(backup))
}

func (s *EngineTestSuite) TestHandleShardCounterSkipsMissingTeam() {
	err := s.engine.HandleShardCounter(context.Background(), triggers.Mutation{
		Kind: triggers.KindShardCounter,
		Key:  "teams/x/shards/1",
	})
	s.NoError(err)

	var count int64
	s.db.Model(&models.TeamStats{}).Count(&count)
	s.Zero(count)
}

func TestEngineTestSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

func TestDeltaFor(t *testing.T) {
	open := &triggers.TodoSnapshot{TeamID: 1, OwnerID: 1}
	done := &triggers.TodoSnapshot{TeamID: 1, OwnerID: 1, IsCompleted: true}

	cases := []struct {
		name string
		m    triggers.Mutation
		want Delta
	}{
		{"create open", triggers.Mutation{Op: triggers.OpCreate, After: open}, Delta{Total: 1}},
		{"create completed", triggers.Mutation{Op: triggers.OpCreate, After: done}, Delta{Completed: 1, Total: 1}},
		{"complete", triggers.Mutation{Op: triggers.OpUpdate, Before: open, After: done}, Delta{Completed: 1}},
		{"reopen", triggers.Mutation{Op: triggers.OpUpdate, Before: done, After: open}, Delta{Completed: -1}},
		{"edit", triggers.Mutation{Op: triggers.OpUpdate, Before: open, After: open}, Delta{}},
		{"delete open", triggers.Mutation{Op: triggers.OpDelete, Before: open}, Delta{Total: -1}},
		{"delete completed", triggers.Mutation{Op: triggers.OpDelete, Before: done}, Delta{Completed: -1, Total: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, DeltaFor(tc.m))
		})
	}
}

func TestCompletionRate(t *testing.T) {
	require.Zero(t, CompletionRate(0, 0))
	require.Zero(t, CompletionRate(3, 0))
	require.InDelta(t, 0.75, CompletionRate(3, 4), 1e-9)
}
