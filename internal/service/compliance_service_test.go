package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/bhrf-oversight-api/internal/models"
	appErrors "github.com/noah-isme/bhrf-oversight-api/pkg/errors"
)

type complianceMetricsStub struct {
	observed []models.ComplianceStatus
}

func (m *complianceMetricsStub) ObserveCompliance(status models.ComplianceStatus) {
	m.observed = append(m.observed, status)
}

func newComplianceFixture(records []models.ObligationRecord, docs []models.Document) (*ComplianceService, *obligationRepoStub, *complianceMetricsStub) {
	inactive := models.Facility{ID: "fac-3", Name: "Closed", BHPID: "bhp-1"}
	obligations := newObligationRepoStub(records...)
	metrics := &complianceMetricsStub{}
	svc := NewComplianceService(ComplianceServiceParams{
		Facilities:  newFacilityRepoStub(reviewedFacility, autoApprovedFacility, inactive),
		Obligations: obligations,
		Documents:   &documentRepoStub{docs: docs},
		Aggregator:  NewComplianceAggregator(NewPeriodResolver(time.UTC), NewExpirationClassifier(0)),
		Metrics:     metrics,
	})
	return svc, obligations, metrics
}

func TestComplianceServiceGetComplianceStatus(t *testing.T) {
	now := time.Date(2025, time.March, 20, 10, 0, 0, 0, time.UTC)
	period := NewPeriodResolver(time.UTC).Resolve(now)
	svc, obligations, metrics := newComplianceFixture(satisfiedMarch2025("fac-1", period), nil)

	status, err := svc.GetComplianceStatus(context.Background(), staffActor, "fac-1", now)
	require.NoError(t, err)
	assert.True(t, status.InCompliance)
	assert.Equal(t, "Desert Bloom", status.FacilityName)
	assert.Equal(t, 2025, obligations.filter.Year)
	assert.Len(t, metrics.observed, 1)

	_, err = svc.GetComplianceStatus(context.Background(), staffTwoActor, "fac-1", now)
	requireCode(t, err, appErrors.ErrForbidden)

	_, err = svc.GetComplianceStatus(context.Background(), adminActor, "missing", now)
	requireCode(t, err, appErrors.ErrNotFound)
}

func TestComplianceServiceIsRecomputedOnEveryCall(t *testing.T) {
	now := time.Date(2025, time.March, 20, 10, 0, 0, 0, time.UTC)
	svc, obligations, _ := newComplianceFixture([]models.ObligationRecord{fireDrill("fac-1", 3, 2025, models.ShiftAM)}, nil)

	first, err := svc.GetComplianceStatus(context.Background(), bhpActor, "fac-1", now)
	require.NoError(t, err)
	assert.Contains(t, first.ObligationIssues, models.ObligationFireDrill)

	require.NoError(t, obligations.Create(context.Background(), ptr(fireDrill("fac-1", 3, 2025, models.ShiftPM))))

	second, err := svc.GetComplianceStatus(context.Background(), bhpActor, "fac-1", now)
	require.NoError(t, err)
	assert.NotContains(t, second.ObligationIssues, models.ObligationFireDrill)
}

func TestComplianceServicePortfolio(t *testing.T) {
	now := time.Date(2025, time.March, 20, 10, 0, 0, 0, time.UTC)
	svc, _, _ := newComplianceFixture(nil, nil)

	statuses, err := svc.Portfolio(context.Background(), bhpActor, "", now)
	require.NoError(t, err)
	assert.Len(t, statuses, 2)

	_, err = svc.Portfolio(context.Background(), bhpActor, "bhp-9", now)
	requireCode(t, err, appErrors.ErrForbidden)

	_, err = svc.Portfolio(context.Background(), adminActor, "", now)
	requireCode(t, err, appErrors.ErrValidation)

	statuses, err = svc.Portfolio(context.Background(), adminActor, "bhp-1", now)
	require.NoError(t, err)
	assert.Len(t, statuses, 2)

	_, err = svc.Portfolio(context.Background(), staffActor, "", now)
	requireCode(t, err, appErrors.ErrForbidden)
}

func TestComplianceServiceDocumentStatuses(t *testing.T) {
	now := time.Date(2025, time.March, 20, 10, 0, 0, 0, time.UTC)
	soon := now.AddDate(0, 0, 5)
	docs := []models.Document{
		{ID: "doc-1", FacilityID: "fac-1", OwnerType: models.OwnerFacility, Status: models.DocumentUploaded, FileKey: "k", ExpiresAt: &soon},
		{ID: "doc-2", FacilityID: "fac-1", OwnerType: models.OwnerEmployee, Status: models.DocumentRequested},
	}
	svc, _, _ := newComplianceFixture(nil, docs)

	all, err := svc.DocumentStatuses(context.Background(), staffActor, "fac-1", "", now)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, models.ExpirationExpiringSoon, all[0].State)
	assert.Equal(t, models.ExpirationAwaitingUpload, all[1].State)

	employees, err := svc.DocumentStatuses(context.Background(), staffActor, "fac-1", models.OwnerEmployee, now)
	require.NoError(t, err)
	require.Len(t, employees, 1)
	assert.Equal(t, "doc-2", employees[0].Document.ID)

	_, err = svc.DocumentStatuses(context.Background(), staffActor, "fac-1", "VENDOR", now)
	requireCode(t, err, appErrors.ErrValidation)

	status, err := svc.GetComplianceStatus(context.Background(), staffActor, "fac-1", now)
	require.NoError(t, err)
	assert.Empty(t, status.DocumentIssues)
	assert.Equal(t, []string{"doc-1"}, status.Warnings)
}

func TestComplianceServiceScheduleAndClassify(t *testing.T) {
	now := time.Date(2025, time.March, 20, 10, 0, 0, 0, time.UTC)
	svc, _, _ := newComplianceFixture(nil, nil)

	windows, err := svc.Schedule(context.Background(), bhpActor, "fac-2", now)
	require.NoError(t, err)
	require.Len(t, windows, 4)
	assert.Equal(t, "H1 2025", windows[1].WindowLabel)

	state := svc.ClassifyExpiration(models.Artifact{Status: models.DocumentRequested}, now)
	assert.Equal(t, models.ExpirationAwaitingUpload, state)
}

func ptr[T any](v T) *T { return &v }
