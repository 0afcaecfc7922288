package services

import (
	"context"
	"errors"
	"math"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/yukikurage/team-todo-api/internal/models"
	"github.com/yukikurage/team-todo-api/internal/repository"
)

const activeUserWindow = 24 * time.Hour

// Dashboard metric names, as reported in DashboardMetrics.Degraded.
const (
	MetricActiveUsers          = "activeUsers"
	MetricCompletionRate       = "completionRate"
	MetricUrgentCount          = "urgentCount"
	MetricBackupPendingCount   = "backupPendingCount"
	MetricPriorityDistribution = "priorityDistribution"
)

// DashboardMetrics is a point-in-time summary of a team. Metrics listed in
// Degraded could not be computed and hold their zero value.
type DashboardMetrics struct {
	TeamID               uint64        `json:"teamId"`
	ActiveUsers          int64         `json:"activeUsers"`
	CompletionRate       int           `json:"completionRate"`
	UrgentCount          int64         `json:"urgentCount"`
	BackupPendingCount   int64         `json:"backupPendingCount"`
	PriorityDistribution map[int]int64 `json:"priorityDistribution"`
	Degraded             []string      `json:"degraded"`
}

// DashboardService computes team dashboards.
type DashboardService struct {
	todoRepo    repository.TodoRepository
	userRepo    repository.UserRepository
	statsRepo   repository.StatsRepository
	sampleLimit int
	now         func() time.Time
}

// NewDashboardService creates a DashboardService. The priority histogram
// scans at most sampleLimit active todos.
func NewDashboardService(todoRepo repository.TodoRepository, userRepo repository.UserRepository, statsRepo repository.StatsRepository, sampleLimit int) *DashboardService {
	return &DashboardService{
		todoRepo:    todoRepo,
		userRepo:    userRepo,
		statsRepo:   statsRepo,
		sampleLimit: sampleLimit,
		now:         time.Now,
	}
}

// Compute gathers every metric independently. It never fails as a whole.
func (s *DashboardService) Compute(ctx context.Context, teamID uint64) *DashboardMetrics {
	m := &DashboardMetrics{
		TeamID:               teamID,
		PriorityDistribution: map[int]int64{},
		Degraded:             []string{},
	}
	logger := log.WithField("team", teamID)

	degrade := func(metric string, err error) {
		logger.WithError(err).WithField("metric", metric).Warn("dashboard metric unavailable")
		m.Degraded = append(m.Degraded, metric)
	}

	if n, err := s.activeUsers(ctx, teamID); err != nil {
		degrade(MetricActiveUsers, err)
	} else {
		m.ActiveUsers = n
	}

	stats, statsErr := s.teamStats(ctx, teamID)
	if statsErr != nil {
		degrade(MetricCompletionRate, statsErr)
	} else {
		m.CompletionRate = int(math.Round(stats.CompletionRate * 100))
	}

	if n, err := s.todoRepo.CountUrgentOpen(ctx, teamID); err != nil {
		degrade(MetricUrgentCount, err)
	} else {
		m.UrgentCount = n
	}

	if statsErr != nil {
		degrade(MetricBackupPendingCount, statsErr)
	} else if n, err := s.backupPending(ctx, teamID, stats.LastBackupAt); err != nil {
		degrade(MetricBackupPendingCount, err)
	} else {
		m.BackupPendingCount = n
	}

	if priorities, err := s.todoRepo.ActivePriorities(ctx, teamID, s.sampleLimit); err != nil {
		degrade(MetricPriorityDistribution, err)
	} else {
		for _, p := range priorities {
			m.PriorityDistribution[p]++
		}
	}

	return m
}

// activeUsers counts recent logins, falling back to the member count when
// the login query fails.
func (s *DashboardService) activeUsers(ctx context.Context, teamID uint64) (int64, error) {
	n, err := s.userRepo.CountActiveSince(ctx, teamID, s.now().Add(-activeUserWindow))
	if err == nil {
		return n, nil
	}
	log.WithError(err).WithField("team", teamID).Warn("active user query failed, using member count")
	return s.userRepo.CountByTeam(ctx, teamID)
}

// teamStats returns the rollup row, or an empty one for teams that have
// never been rolled up.
func (s *DashboardService) teamStats(ctx context.Context, teamID uint64) (*models.TeamStats, error) {
	stats, err := s.statsRepo.FindTeamStats(ctx, teamID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.TeamStats{TeamID: teamID}, nil
	}
	return stats, err
}

func (s *DashboardService) backupPending(ctx context.Context, teamID uint64, lastBackupAt *time.Time) (int64, error) {
	if lastBackupAt == nil {
		return s.todoRepo.CountByTeam(ctx, teamID)
	}
	return s.todoRepo.CountCreatedAfter(ctx, teamID, *lastBackupAt)
}
