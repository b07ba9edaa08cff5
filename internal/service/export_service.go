package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/bhrf-oversight-api/internal/models"
	appErrors "github.com/noah-isme/bhrf-oversight-api/pkg/errors"
	"github.com/noah-isme/bhrf-oversight-api/pkg/export"
)

type reportRenderer interface {
	Render(report export.Report) ([]byte, error)
}

type complianceSource interface {
	GetComplianceStatus(ctx context.Context, actor models.Actor, facilityID string, now time.Time) (*models.ComplianceStatus, error)
	Schedule(ctx context.Context, actor models.Actor, facilityID string, now time.Time) ([]models.ObligationWindow, error)
	DocumentStatuses(ctx context.Context, actor models.Actor, facilityID string, ownerType models.DocumentOwnerType, now time.Time) ([]models.DocumentClassification, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	Title string
}

// ExportResult is a rendered report ready to stream.
type ExportResult struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders a facility's compliance status for download.
// Nothing is stored; every export is rendered from a fresh evaluation.
type ExportService struct {
	compliance complianceSource
	renderers  map[models.ReportFormat]reportRenderer
	cfg        ExportConfig
	logger     *zap.Logger
}

// NewExportService constructs an ExportService with the PDF, CSV and XLSX renderers.
func NewExportService(compliance complianceSource, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Title == "" {
		cfg.Title = "Facility Compliance Report"
	}
	return &ExportService{
		compliance: compliance,
		renderers: map[models.ReportFormat]reportRenderer{
			models.ReportFormatPDF:  export.NewPDFExporter(),
			models.ReportFormatCSV:  export.NewCSVExporter(),
			models.ReportFormatXLSX: export.NewXLSXExporter(),
		},
		cfg:    cfg,
		logger: logger,
	}
}

// ExportCompliance evaluates the facility at now and renders the result in format.
func (s *ExportService) ExportCompliance(ctx context.Context, actor models.Actor, facilityID string, format models.ReportFormat, now time.Time) (*ExportResult, error) {
	format = models.ReportFormat(strings.ToLower(string(format)))
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.WithFields(appErrors.ErrValidation, "unsupported export format", map[string]string{
			"format": "must be one of pdf csv xlsx",
		})
	}
	status, err := s.compliance.GetComplianceStatus(ctx, actor, facilityID, now)
	if err != nil {
		return nil, err
	}
	windows, err := s.compliance.Schedule(ctx, actor, facilityID, now)
	if err != nil {
		return nil, err
	}
	documents, err := s.compliance.DocumentStatuses(ctx, actor, facilityID, models.OwnerFacility, now)
	if err != nil {
		return nil, err
	}

	body, err := renderer.Render(s.buildReport(status, windows, documents))
	if err != nil {
		s.logger.Error("compliance export failed", zap.String("facility_id", facilityID), zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render compliance report")
	}
	return &ExportResult{
		Filename:    fmt.Sprintf("compliance_%s_%s.%s", sanitizeFilename(status.FacilityName), status.Period.Date, format),
		ContentType: format.ContentType(),
		Body:        body,
	}, nil
}

func (s *ExportService) buildReport(status *models.ComplianceStatus, windows []models.ObligationWindow, documents []models.DocumentClassification) export.Report {
	verdict := "Yes"
	if !status.InCompliance {
		verdict = "No"
	}
	findings := "None"
	if len(status.Reasons) > 0 {
		findings = strings.Join(status.Reasons, "; ")
	}
	report := export.Report{
		Title:    s.cfg.Title,
		Subtitle: status.FacilityName,
		Summary: []export.Field{
			{Label: "In compliance", Value: verdict},
			{Label: "Evaluated at", Value: status.EvaluatedAt.Format(time.RFC3339)},
			{Label: "Reference date", Value: status.Period.Date},
			{Label: "Obligation issues", Value: strconv.Itoa(len(status.ObligationIssues))},
			{Label: "Document issues", Value: strconv.Itoa(len(status.DocumentIssues))},
			{Label: "Expiring soon", Value: strconv.Itoa(len(status.Warnings))},
			{Label: "Findings", Value: findings},
		},
		Table: export.Dataset{Headers: []string{"Category", "Item", "Window", "Status", "Detail"}},
	}

	for _, w := range windows {
		state := "SATISFIED"
		detail := fmt.Sprintf("%d record(s)", w.RecordCount)
		if !w.Satisfied {
			state = "MISSING"
			if len(w.MissingShifts) > 0 {
				shifts := make([]string, len(w.MissingShifts))
				for i, sh := range w.MissingShifts {
					shifts[i] = string(sh)
				}
				detail = "missing " + strings.Join(shifts, ", ") + " shift"
			}
		}
		report.Table.Rows = append(report.Table.Rows, map[string]string{
			"Category": "Obligation",
			"Item":     w.Label,
			"Window":   w.WindowLabel,
			"Status":   state,
			"Detail":   detail,
		})
	}
	for _, d := range documents {
		expires := "never"
		if d.Document.ExpiresAt != nil {
			expires = d.Document.ExpiresAt.Format(dateLayout)
		}
		report.Table.Rows = append(report.Table.Rows, map[string]string{
			"Category": "Document",
			"Item":     d.Document.Name,
			"Window":   "expires " + expires,
			"Status":   string(d.State),
			"Detail":   string(d.Document.Status),
		})
	}
	return report
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "facility"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "\"", "")
	result := strings.ToLower(replacer.Replace(raw))
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
