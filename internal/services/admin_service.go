package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/yukikurage/team-todo-api/internal/export"
	"github.com/yukikurage/team-todo-api/internal/repository"
	"github.com/yukikurage/team-todo-api/internal/spreadsheet"
)

var ErrSpreadsheetRequired = errors.New("spreadsheet id is required")

// AdminService implements the team admin exports. Callers must have
// confirmed the admin role before calling.
type AdminService struct {
	todoRepo  repository.TodoRepository
	statsRepo repository.StatsRepository
	sheets    spreadsheet.Writer
	now       func() time.Time
}

// NewAdminService creates an AdminService. sheets may be nil, in which case
// backups fail.
func NewAdminService(todoRepo repository.TodoRepository, statsRepo repository.StatsRepository, sheets spreadsheet.Writer) *AdminService {
	return &AdminService{
		todoRepo:  todoRepo,
		statsRepo: statsRepo,
		sheets:    sheets,
		now:       time.Now,
	}
}

// ExportCSV renders every todo of the team as CSV, secret content redacted.
// The document is built in full before it is returned.
func (s *AdminService) ExportCSV(ctx context.Context, teamID uint64) ([]byte, error) {
	rows, err := s.todoRepo.ListTeamExport(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
	}

	var buf bytes.Buffer
	if err := export.ToCSV(&buf, rows); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
	}
	return buf.Bytes(), nil
}

// Backup overwrites the spreadsheet with the team's todos and records the
// backup time. It returns the number of todos written.
func (s *AdminService) Backup(ctx context.Context, teamID uint64, spreadsheetID string) (int, error) {
	if spreadsheetID == "" {
		return 0, ErrSpreadsheetRequired
	}
	if s.sheets == nil {
		return 0, fmt.Errorf("%w: spreadsheet client not configured", ErrBackupFailed)
	}

	rows, err := s.todoRepo.ListTeamExport(ctx, teamID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBackupFailed, err)
	}

	if err := s.sheets.Write(ctx, spreadsheetID, export.BackupRange, export.SheetValues(rows)); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBackupFailed, err)
	}

	if err := s.statsRepo.SetLastBackup(ctx, teamID, s.now().UTC()); err != nil {
		return 0, fmt.Errorf("%w: record backup time: %v", ErrBackupFailed, err)
	}

	log.WithFields(log.Fields{
		"team":        teamID,
		"spreadsheet": spreadsheetID,
		"count":       len(rows),
	}).Info("team backup written")

	return len(rows), nil
}
