package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/canvas-gateway-api/internal/models"
	appErrors "github.com/noah-isme/canvas-gateway-api/pkg/errors"
	"github.com/noah-isme/canvas-gateway-api/pkg/export"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders a course's classified assignments as CSV or PDF.
type ExportService struct {
	assignments assignmentClassifier
	csv         csvRenderer
	pdf         pdfRenderer
	logger      *zap.Logger
	now         func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers fall back to pkg/export.
func NewExportService(assignments assignmentClassifier, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{assignments: assignments, csv: csv, pdf: pdf, logger: logger, now: time.Now}
}

// ExportAssignments renders every bucket of the course in the requested format.
func (s *ExportService) ExportAssignments(ctx context.Context, sess *Session, courseID int64, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = export.FormatCSV
	}
	if format != export.FormatCSV && format != export.FormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	buckets, err := s.assignments.Classify(ctx, sess, courseID)
	if err != nil {
		return nil, err
	}
	if buckets.Total() == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "No assignments found")
	}

	dataset := assignmentDataset(courseID, buckets)
	var payload []byte
	switch format {
	case export.FormatPDF:
		payload, err = s.pdf.Render(dataset)
	default:
		payload, err = s.csv.Render(dataset)
	}
	if err != nil {
		s.logger.Error("render assignment export", zap.Int64("course_id", courseID), zap.String("format", format), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	return &ExportFile{
		Filename:    s.buildFilename(courseID, format),
		ContentType: export.ContentType(format),
		Payload:     payload,
	}, nil
}

func assignmentDataset(courseID int64, buckets models.AssignmentBuckets) export.Dataset {
	dataset := export.Dataset{
		Title:   fmt.Sprintf("Course %d assignments", courseID),
		Headers: []string{"Bucket", "Name", "Due Date", "Points", "Status", "Score", "Submitted At", "Late"},
		Rows:    make([][]string, 0, buckets.Total()),
	}
	groups := []struct {
		name  string
		items []models.Assignment
	}{
		{BucketUpcoming, buckets.Upcoming},
		{BucketPast, buckets.Past},
		{BucketMissing, buckets.Missing},
	}
	for _, group := range groups {
		for _, a := range group.items {
			dataset.Rows = append(dataset.Rows, []string{
				group.name,
				a.Name,
				formatTime(a.DueDate),
				formatFloat(a.PointsPossible),
				deref(a.SubmissionStatus),
				formatFloat(a.Score),
				formatTime(a.SubmittedAt),
				strconv.FormatBool(a.Late),
			})
		}
	}
	return dataset
}

func (s *ExportService) buildFilename(courseID int64, format string) string {
	timestamp := s.now().UTC().Format("20060102_150405")
	return sanitizeFilename(fmt.Sprintf("course_%d_assignments_%s.%s", courseID, timestamp, format))
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}
