package service

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-fleet-api/internal/dto"
	"github.com/noah-isme/campus-fleet-api/internal/models"
	"github.com/noah-isme/campus-fleet-api/internal/repository"
	appErrors "github.com/noah-isme/campus-fleet-api/pkg/errors"
	"github.com/noah-isme/campus-fleet-api/pkg/export"
	"github.com/noah-isme/campus-fleet-api/pkg/jobs"
)

// HistoryAppendJob is the job type used for retried audit appends.
const HistoryAppendJob = "location_history.append"

type locationHistoryRepository interface {
	Append(ctx context.Context, entry *models.LocationHistory) error
	ListByBus(ctx context.Context, busID string, limit int) ([]models.LocationHistory, error)
}

type busFinder interface {
	FindByID(ctx context.Context, id string) (*models.Bus, error)
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// LocationHistoryConfig bounds history reads and titles exports.
type LocationHistoryConfig struct {
	DefaultLimit int
	MaxLimit     int
	ExportTitle  string
}

// LocationHistoryService owns the append-only audit trail of location pushes.
type LocationHistoryService struct {
	repo    locationHistoryRepository
	buses   busFinder
	csv     csvRenderer
	pdf     pdfRenderer
	retry   jobEnqueuer
	metrics *MetricsService
	logger  *zap.Logger
	cfg     LocationHistoryConfig
	now     func() time.Time
}

// NewLocationHistoryService constructs the audit log service.
func NewLocationHistoryService(repo locationHistoryRepository, buses busFinder, metrics *MetricsService, logger *zap.Logger, cfg LocationHistoryConfig) *LocationHistoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = 500
	}
	if cfg.DefaultLimit <= 0 || cfg.DefaultLimit > cfg.MaxLimit {
		cfg.DefaultLimit = cfg.MaxLimit
	}
	if cfg.ExportTitle == "" {
		cfg.ExportTitle = "Bus location history"
	}
	return &LocationHistoryService{
		repo:    repo,
		buses:   buses,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		metrics: metrics,
		logger:  logger,
		cfg:     cfg,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// UseRetryQueue routes failed appends to q. Without a queue a failed append
// is only logged.
func (s *LocationHistoryService) UseRetryQueue(q jobEnqueuer) {
	s.retry = q
}

// Record appends entry. The bus write it describes is already committed, so
// failures are logged and queued for retry instead of returned.
func (s *LocationHistoryService) Record(ctx context.Context, entry *models.LocationHistory) {
	err := s.repo.Append(context.WithoutCancel(ctx), entry)
	if err == nil {
		return
	}

	s.metrics.AuditAppendFailed()
	s.logger.Warn("append location history failed",
		zap.String("bus_id", entry.BusID),
		zap.String("history_id", entry.ID),
		zap.Error(err),
	)

	if s.retry == nil {
		return
	}
	job := jobs.Job{ID: entry.ID, Type: HistoryAppendJob, Payload: entry, Enqueued: s.now()}
	if qErr := s.retry.Enqueue(job); qErr != nil {
		s.metrics.AuditRetry("rejected")
		s.logger.Error("location history retry not queued",
			zap.String("bus_id", entry.BusID),
			zap.String("history_id", entry.ID),
			zap.Error(qErr),
		)
	}
}

// RetryAppend is the queue handler for HistoryAppendJob. The insert is
// idempotent on the entry id. A bus deleted in the meantime ends the job.
func (s *LocationHistoryService) RetryAppend(ctx context.Context, job jobs.Job) error {
	entry, ok := job.Payload.(*models.LocationHistory)
	if !ok || entry == nil {
		return fmt.Errorf("unexpected payload %T for job %s", job.Payload, job.ID)
	}

	if err := s.repo.Append(ctx, entry); err != nil {
		if repository.IsForeignKeyViolation(err) {
			s.metrics.AuditRetry("orphaned")
			s.logger.Info("skipping location history for deleted bus", zap.String("bus_id", entry.BusID))
			return nil
		}
		return err
	}
	s.metrics.AuditRetry("recovered")
	return nil
}

// HandleDropped is told about appends abandoned after the last retry.
func (s *LocationHistoryService) HandleDropped(job jobs.Job, err error) {
	s.metrics.AuditRetry("dropped")
	fields := []zap.Field{zap.String("history_id", job.ID), zap.Int("attempt", job.Attempt), zap.Error(err)}
	if entry, ok := job.Payload.(*models.LocationHistory); ok && entry != nil {
		fields = append(fields, zap.String("bus_id", entry.BusID), zap.Time("recorded_at", entry.RecordedAt))
	}
	s.logger.Error("location history entry lost", fields...)
}

// List returns up to limit audit rows for a bus, newest first. A zero limit
// uses the default and larger values are clamped.
func (s *LocationHistoryService) List(ctx context.Context, busID string, query dto.LocationHistoryQuery) ([]models.LocationHistory, error) {
	if query.Limit < 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "limit must be positive")
	}
	if _, err := s.buses.FindByID(ctx, busID); err != nil {
		return nil, lookupError(err, "bus")
	}

	entries, err := s.repo.ListByBus(ctx, busID, s.clamp(query.Limit))
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load location history")
	}
	return entries, nil
}

// Export renders a bus's audit trail as CSV or PDF.
func (s *LocationHistoryService) Export(ctx context.Context, busID string, query dto.LocationHistoryExportQuery) (*dto.ExportFile, error) {
	format, err := export.ParseFormat(query.Format)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "format must be csv or pdf")
	}
	if query.Limit < 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "limit must be positive")
	}

	bus, err := s.buses.FindByID(ctx, busID)
	if err != nil {
		return nil, lookupError(err, "bus")
	}
	entries, err := s.repo.ListByBus(ctx, busID, s.clamp(query.Limit))
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load location history")
	}

	dataset := historyDataset(entries)
	var payload []byte
	switch format {
	case export.FormatPDF:
		payload, err = s.pdf.Render(dataset, fmt.Sprintf("%s - bus %s", s.cfg.ExportTitle, bus.BusNumber))
	default:
		payload, err = s.csv.Render(dataset)
	}
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render location history")
	}

	return &dto.ExportFile{
		Filename:    exportFilename(bus.BusNumber, format, s.now()),
		ContentType: format.ContentType(),
		Payload:     payload,
	}, nil
}

func (s *LocationHistoryService) clamp(limit int) int {
	if limit <= 0 {
		return s.cfg.DefaultLimit
	}
	if limit > s.cfg.MaxLimit {
		return s.cfg.MaxLimit
	}
	return limit
}

var historyColumns = []export.Column{
	{Key: "recorded_at", Title: "Recorded At", Weight: 1.6},
	{Key: "location", Title: "Location", Weight: 2},
	{Key: "direction", Title: "Direction"},
	{Key: "status", Title: "Status"},
	{Key: "passenger_count", Title: "Count", Weight: 0.7},
	{Key: "students_onboard", Title: "Students", Weight: 0.8},
	{Key: "total_students", Title: "Route Total", Weight: 0.8},
	{Key: "alert_type", Title: "Alert"},
	{Key: "alert_message", Title: "Alert Message", Weight: 2},
}

func historyDataset(entries []models.LocationHistory) export.Dataset {
	rows := make([]map[string]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, map[string]string{
			"recorded_at":      e.RecordedAt.UTC().Format(time.RFC3339),
			"location":         e.Location,
			"direction":        string(e.Direction),
			"status":           string(e.Status),
			"passenger_count":  strconv.Itoa(e.PassengerCount),
			"students_onboard": strconv.Itoa(e.StudentsOnboard),
			"total_students":   intText(e.TotalStudents),
			"alert_type":       text(e.AlertType),
			"alert_message":    text(e.AlertMessage),
		})
	}
	return export.Dataset{Columns: historyColumns, Rows: rows}
}

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

func exportFilename(busNumber string, format export.Format, at time.Time) string {
	slug := unsafeFilename.ReplaceAllString(busNumber, "-")
	return fmt.Sprintf("bus-%s-location-history-%s.%s", slug, at.Format("20060102"), format)
}

func intText(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func text(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
