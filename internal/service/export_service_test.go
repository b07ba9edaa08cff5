package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/bhrf-oversight-api/internal/models"
	appErrors "github.com/noah-isme/bhrf-oversight-api/pkg/errors"
)

func newExportFixture() *ExportService {
	expired := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	docs := []models.Document{
		{ID: "doc-1", FacilityID: "fac-1", OwnerType: models.OwnerFacility, Name: "Fire inspection", Status: models.DocumentUploaded, FileKey: "k", ExpiresAt: &expired},
	}
	compliance, _, _ := newComplianceFixture([]models.ObligationRecord{fireDrill("fac-1", 3, 2025, models.ShiftAM)}, docs)
	return NewExportService(compliance, ExportConfig{}, nil)
}

func TestExportServiceCSV(t *testing.T) {
	svc := newExportFixture()
	now := time.Date(2025, time.March, 20, 10, 0, 0, 0, time.UTC)

	result, err := svc.ExportCompliance(context.Background(), bhpActor, "fac-1", "CSV", now)
	require.NoError(t, err)
	assert.Equal(t, "compliance_desert_bloom_2025-03-20.csv", result.Filename)
	assert.Equal(t, "text/csv", result.ContentType)

	body := string(result.Body)
	assert.Contains(t, body, "In compliance,No")
	assert.Contains(t, body, "Obligation,Fire drill,March 2025,MISSING,missing PM shift")
	assert.Contains(t, body, "Document,Fire inspection,expires 2025-01-01,EXPIRED,UPLOADED")
}

func TestExportServicePDFAndXLSX(t *testing.T) {
	svc := newExportFixture()
	now := time.Date(2025, time.March, 20, 10, 0, 0, 0, time.UTC)

	pdf, err := svc.ExportCompliance(context.Background(), bhpActor, "fac-1", models.ReportFormatPDF, now)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf.Body, []byte("%PDF")))
	assert.Equal(t, "application/pdf", pdf.ContentType)

	xlsx, err := svc.ExportCompliance(context.Background(), bhpActor, "fac-1", models.ReportFormatXLSX, now)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(xlsx.Filename, ".xlsx"))
	assert.True(t, bytes.HasPrefix(xlsx.Body, []byte("PK")))
}

func TestExportServiceRejectsUnknownFormatAndScope(t *testing.T) {
	svc := newExportFixture()
	now := time.Date(2025, time.March, 20, 10, 0, 0, 0, time.UTC)

	_, err := svc.ExportCompliance(context.Background(), bhpActor, "fac-1", "docx", now)
	appErr := requireCode(t, err, appErrors.ErrValidation)
	assert.Contains(t, appErr.Fields, "format")

	_, err = svc.ExportCompliance(context.Background(), staffTwoActor, "fac-1", models.ReportFormatCSV, now)
	requireCode(t, err, appErrors.ErrForbidden)
}
