package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorlane/scheduling/internal/models"
	appErrors "github.com/tutorlane/scheduling/pkg/errors"
)

func TestExportServiceRenderWeekCSV(t *testing.T) {
	src := &lessonSourceStub{lessons: []models.Lesson{{
		ID:           "l1",
		TutorID:      "tutor-1",
		StartsAt:     time.Date(2024, 6, 10, 14, 0, 0, 0, time.UTC), // Monday
		EndsAt:       time.Date(2024, 6, 10, 15, 0, 0, 0, time.UTC),
		DurationMin:  60,
		Participants: 2,
	}}}
	svc := NewExportService(src, nil, nil, ExportOptions{StorageDir: t.TempDir()})

	out, err := svc.RenderWeek(context.Background(), "tutor-1", time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC), "UTC", FormatCSV)
	require.NoError(t, err)

	body := string(out)
	assert.True(t, strings.HasPrefix(body, "Day,Date,Start,End"))
	assert.Contains(t, body, "Monday,2024-06-10,14:00,15:00,60,2")
}

func TestExportServiceRenderWeekPDF(t *testing.T) {
	src := &lessonSourceStub{}
	svc := NewExportService(src, nil, nil, ExportOptions{StorageDir: t.TempDir()})

	out, err := svc.RenderWeek(context.Background(), "tutor-1", time.Now(), "UTC", FormatPDF)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "%PDF"))
}

func TestExportServiceRejectsUnknownFormat(t *testing.T) {
	svc := NewExportService(&lessonSourceStub{}, nil, nil, ExportOptions{StorageDir: t.TempDir()})

	_, err := svc.RenderWeek(context.Background(), "tutor-1", time.Now(), "UTC", "xlsx")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestExportServiceRejectsUnknownTimezone(t *testing.T) {
	svc := NewExportService(&lessonSourceStub{}, nil, nil, ExportOptions{StorageDir: t.TempDir()})

	_, err := svc.RenderWeek(context.Background(), "tutor-1", time.Now(), "Mars/Olympus", FormatCSV)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrInvalidTimezone.Code, appErr.Code)
}
