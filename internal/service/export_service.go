package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tutorlane/scheduling/internal/calendar"
	"github.com/tutorlane/scheduling/internal/models"
	appErrors "github.com/tutorlane/scheduling/pkg/errors"
	"github.com/tutorlane/scheduling/pkg/export"
	"github.com/tutorlane/scheduling/pkg/jobs"
)

// Export formats.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

// ExportOptions configures the export pipeline.
type ExportOptions struct {
	StorageDir  string
	Concurrency int
	Retries     int
}

// ExportService renders a tutor's week of lessons into downloadable CSV or
// PDF files, either synchronously or through the background queue.
type ExportService struct {
	lessons lessonSource
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	metrics *MetricsService
	logger  *zap.Logger

	storageDir string
	queue      *jobs.Queue
}

type weekExportPayload struct {
	TutorID   string
	WeekStart time.Time
	Timezone  string
	Format    string
}

// NewExportService constructs the service and its queue. Start must be
// called before Enqueue.
func NewExportService(lessons lessonSource, metrics *MetricsService, logger *zap.Logger, opts ExportOptions) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	pdf := export.NewPDFExporter()
	pdf.Landscape = true // the seven-column week table needs the width
	s := &ExportService{
		lessons:    lessons,
		csv:        export.NewCSVExporter(),
		pdf:        pdf,
		metrics:    metrics,
		logger:     logger,
		storageDir: opts.StorageDir,
	}
	s.queue = jobs.NewQueue("schedule-exports", s.handle, jobs.QueueConfig{
		Workers:    opts.Concurrency,
		MaxRetries: opts.Retries,
		Logger:     logger,
	})
	return s
}

// Start launches the export workers.
func (s *ExportService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the export workers.
func (s *ExportService) Stop() {
	s.queue.Stop()
}

// RenderWeek produces the export bytes for one tutor week.
func (s *ExportService) RenderWeek(ctx context.Context, tutorID string, weekStart time.Time, timezone, format string) ([]byte, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidTimezone, "unknown timezone "+timezone)
	}

	from := calendar.StartOfWeek(weekStart, loc)
	to := from.AddDate(0, 0, 7)
	lessons, err := s.lessons.ListByRange(ctx, tutorID, from.UTC(), to.UTC())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch lessons for export")
	}

	data := weekDataset(lessons, loc)
	title := fmt.Sprintf("Week of %s", from.Format("2 Jan 2006"))

	var out []byte
	switch format {
	case FormatPDF:
		out, err = s.pdf.Render(data, title)
	case FormatCSV:
		out, err = s.csv.Render(data)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format "+format)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	s.metrics.Export(format)
	return out, nil
}

// EnqueueWeek schedules an asynchronous export written under the storage
// directory. Returns the job id.
func (s *ExportService) EnqueueWeek(tutorID string, weekStart time.Time, timezone, format string) (string, error) {
	if format != FormatCSV && format != FormatPDF {
		return "", appErrors.Clone(appErrors.ErrValidation, "unsupported export format "+format)
	}
	id := uuid.NewString()
	err := s.queue.Enqueue(jobs.Job{
		ID:   id,
		Type: "week-export",
		Payload: weekExportPayload{
			TutorID:   tutorID,
			WeekStart: weekStart,
			Timezone:  timezone,
			Format:    format,
		},
	})
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export")
	}
	return id, nil
}

func (s *ExportService) handle(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(weekExportPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", job.Payload)
	}
	out, err := s.RenderWeek(ctx, payload.TutorID, payload.WeekStart, payload.Timezone, payload.Format)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.storageDir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	name := fmt.Sprintf("%s-%s.%s", payload.TutorID, job.ID, payload.Format)
	path := filepath.Join(s.storageDir, name)
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	s.logger.Sugar().Infow("export written", "path", path, "bytes", len(out))
	return nil
}

func weekDataset(lessons []models.Lesson, loc *time.Location) export.Dataset {
	headers := []string{"Day", "Date", "Start", "End", "Duration (min)", "Participants"}
	rows := make([]map[string]string, 0, len(lessons))
	for _, l := range lessons {
		start := l.StartsAt.In(loc)
		end := l.EndsAt.In(loc)
		rows = append(rows, map[string]string{
			"Day":            start.Format("Monday"),
			"Date":           start.Format("2006-01-02"),
			"Start":          start.Format("15:04"),
			"End":            end.Format("15:04"),
			"Duration (min)": fmt.Sprintf("%d", l.DurationMin),
			"Participants":   fmt.Sprintf("%d", l.Participants),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}
