package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yukikurage/team-todo-api/internal/constants"
	"github.com/yukikurage/team-todo-api/internal/repository"
)

func sampleRows() []repository.ExportRow {
	created := time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC)
	completed := created.Add(90 * time.Minute)
	return []repository.ExportRow{
		{
			ID: 2, OwnerName: "Bob", Content: constants.RedactedContent, Priority: 5,
			IsSecret: true, CreatedAt: created.Add(time.Hour),
		},
		{
			ID: 1, OwnerName: "Alice", Content: "ship it, today", Priority: 3,
			IsCompleted: true, CreatedAt: created, CompletedAt: &completed,
		},
	}
}

func TestToCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ToCSV(&buf, sampleRows()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, []string{"2024-05-02", "Bob", "[PRIVATE]", "5", "Pending", "Personal", "", ""}, records[1])
	assert.Equal(t, []string{
		"2024-05-02", "Alice", "ship it, today", "3", "Completed", "Team", "2024-05-02T09:30:00Z", "1.5",
	}, records[2])
}

func TestToCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ToCSV(&buf, nil))
	assert.Equal(t, "Date,User Name,Content,Priority,Status,Privacy,Completed At,Duration (h)\n", buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestToCSVReportsWriteErrors(t *testing.T) {
	assert.Error(t, ToCSV(failingWriter{}, sampleRows()))
}

func TestSheetValues(t *testing.T) {
	values := SheetValues(sampleRows())
	require.Len(t, values, 3)
	assert.Equal(t, []any{"Created At", "Content", "Priority", "Secret", "Completed"}, values[0])
	assert.Equal(t, []any{"2024-05-02T09:00:00Z", "[PRIVATE]", 5, true, false}, values[1])
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "team_todos_12.csv", Filename(12))
}
