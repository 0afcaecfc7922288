package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yukikurage/team-todo-api/internal/models"
	"github.com/yukikurage/team-todo-api/internal/report"
	"github.com/yukikurage/team-todo-api/internal/repository"
)

// ReportService sends dashboard summaries to team admins.
type ReportService struct {
	dashboard *DashboardService
	teamRepo  repository.TeamRepository
	userRepo  repository.UserRepository
	sink      report.Sink
	now       func() time.Time
}

func NewReportService(dashboard *DashboardService, teamRepo repository.TeamRepository, userRepo repository.UserRepository, sink report.Sink) *ReportService {
	return &ReportService{
		dashboard: dashboard,
		teamRepo:  teamRepo,
		userRepo:  userRepo,
		sink:      sink,
		now:       time.Now,
	}
}

// SendTeamReport sends one summary per admin of the team and returns how
// many were accepted by the sink.
func (s *ReportService) SendTeamReport(ctx context.Context, teamID uint64) (int, error) {
	team, err := s.teamRepo.FindByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrTeamNotFound
		}
		return 0, fmt.Errorf("failed to find team: %w", err)
	}

	admins, err := s.userRepo.ListAdmins(ctx, teamID)
	if err != nil {
		return 0, fmt.Errorf("failed to list admins: %w", err)
	}

	metrics := s.dashboard.Compute(ctx, teamID)
	now := s.now().UTC()
	subject := fmt.Sprintf("[%s] Team summary for %s", team.Name, now.Format(time.DateOnly))
	body := FormatReport(team, metrics)

	sent := 0
	var errs []error
	for _, admin := range admins {
		err := s.sink.Send(ctx, report.Message{
			To:        admin.Email,
			Subject:   subject,
			Body:      body,
			TeamID:    teamID,
			CreatedAt: now,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("send to %s: %w", admin.Email, err))
			continue
		}
		sent++
	}

	return sent, errors.Join(errs...)
}

// FormatReport renders dashboard metrics as a plain-text message body.
func FormatReport(team *models.Team, m *DashboardMetrics) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Summary for %s\n\n", team.Name)
	fmt.Fprintf(&b, "Active users (24h): %d\n", m.ActiveUsers)
	fmt.Fprintf(&b, "Completion rate: %d%%\n", m.CompletionRate)
	fmt.Fprintf(&b, "Urgent open todos: %d\n", m.UrgentCount)
	fmt.Fprintf(&b, "Todos not yet backed up: %d\n", m.BackupPendingCount)

	priorities := make([]int, 0, len(m.PriorityDistribution))
	for p := range m.PriorityDistribution {
		priorities = append(priorities, p)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(priorities)))
	if len(priorities) > 0 {
		b.WriteString("\nOpen todos by priority:\n")
		for _, p := range priorities {
			fmt.Fprintf(&b, "  P%d: %d\n", p, m.PriorityDistribution[p])
		}
	}

	if len(m.Degraded) > 0 {
		fmt.Fprintf(&b, "\nUnavailable: %s\n", strings.Join(m.Degraded, ", "))
	}
	return b.String()
}
