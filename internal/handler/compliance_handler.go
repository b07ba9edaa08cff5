package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/bhrf-oversight-api/internal/dto"
	"github.com/noah-isme/bhrf-oversight-api/internal/models"
	"github.com/noah-isme/bhrf-oversight-api/internal/service"
	appErrors "github.com/noah-isme/bhrf-oversight-api/pkg/errors"
	"github.com/noah-isme/bhrf-oversight-api/pkg/response"
)

type complianceService interface {
	GetComplianceStatus(ctx context.Context, actor models.Actor, facilityID string, now time.Time) (*models.ComplianceStatus, error)
	Portfolio(ctx context.Context, actor models.Actor, bhpID string, now time.Time) ([]models.ComplianceStatus, error)
	Schedule(ctx context.Context, actor models.Actor, facilityID string, now time.Time) ([]models.ObligationWindow, error)
	DocumentStatuses(ctx context.Context, actor models.Actor, facilityID string, ownerType models.DocumentOwnerType, now time.Time) ([]models.DocumentClassification, error)
	ClassifyExpiration(artifact models.Artifact, now time.Time) models.ExpirationState
}

type complianceExporter interface {
	ExportCompliance(ctx context.Context, actor models.Actor, facilityID string, format models.ReportFormat, now time.Time) (*service.ExportResult, error)
}

// ComplianceHandler exposes facility compliance evaluation.
type ComplianceHandler struct {
	service  complianceService
	exporter complianceExporter
	validate *validator.Validate
	now      func() time.Time
}

// NewComplianceHandler constructs the handler. A nil exporter disables the export route.
func NewComplianceHandler(svc complianceService, exporter complianceExporter) *ComplianceHandler {
	return &ComplianceHandler{service: svc, exporter: exporter, validate: service.NewValidator(), now: systemNow}
}

// Status godoc
// @Summary Evaluate facility compliance
// @Tags Compliance
// @Produce json
// @Param id path string true "Facility ID"
// @Param at query string false "Reference instant (RFC3339)"
// @Success 200 {object} response.Envelope
// @Router /facilities/{id}/compliance [get]
func (h *ComplianceHandler) Status(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "compliance service not configured"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	at, err := referenceTime(c, h.now)
	if err != nil {
		response.Error(c, err)
		return
	}
	status, err := h.service.GetComplianceStatus(c.Request.Context(), claims.Actor(), c.Param("id"), at)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// Export godoc
// @Summary Download a facility compliance report
// @Tags Compliance
// @Produce application/pdf
// @Produce text/csv
// @Param id path string true "Facility ID"
// @Param format query string false "pdf, csv or xlsx" default(pdf)
// @Param at query string false "Reference instant (RFC3339)"
// @Success 200 {file} binary
// @Router /facilities/{id}/compliance/export [get]
func (h *ComplianceHandler) Export(c *gin.Context) {
	if h.exporter == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "exports are disabled"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	at, err := referenceTime(c, h.now)
	if err != nil {
		response.Error(c, err)
		return
	}
	format := models.ReportFormat(c.DefaultQuery("format", string(models.ReportFormatPDF)))
	result, err := h.exporter.ExportCompliance(c.Request.Context(), claims.Actor(), c.Param("id"), format, at)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, result.Filename, result.ContentType, result.Body)
}

// Schedule godoc
// @Summary Describe the current window of every obligation
// @Tags Compliance
// @Produce json
// @Param id path string true "Facility ID"
// @Param at query string false "Reference instant (RFC3339)"
// @Success 200 {object} response.Envelope
// @Router /facilities/{id}/obligations/schedule [get]
func (h *ComplianceHandler) Schedule(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "compliance service not configured"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	at, err := referenceTime(c, h.now)
	if err != nil {
		response.Error(c, err)
		return
	}
	windows, err := h.service.Schedule(c.Request.Context(), claims.Actor(), c.Param("id"), at)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, windows, nil)
}

// DocumentStatuses godoc
// @Summary Classify a facility's documents
// @Tags Compliance
// @Produce json
// @Param id path string true "Facility ID"
// @Param ownerType query string false "FACILITY, EMPLOYEE or RESIDENT"
// @Success 200 {object} response.Envelope
// @Router /facilities/{id}/documents/status [get]
func (h *ComplianceHandler) DocumentStatuses(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "compliance service not configured"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	at, err := referenceTime(c, h.now)
	if err != nil {
		response.Error(c, err)
		return
	}
	ownerType := models.DocumentOwnerType(strings.ToUpper(strings.TrimSpace(c.Query("ownerType"))))
	docs, err := h.service.DocumentStatuses(c.Request.Context(), claims.Actor(), c.Param("id"), ownerType, at)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, docs, nil)
}

// Classify godoc
// @Summary Classify an artifact's expiration
// @Tags Compliance
// @Accept json
// @Produce json
// @Param payload body dto.ClassifyArtifactRequest true "Artifact"
// @Success 200 {object} response.Envelope
// @Router /documents/classify [post]
func (h *ComplianceHandler) Classify(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "compliance service not configured"))
		return
	}
	var req dto.ClassifyArtifactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid artifact payload"))
		return
	}
	if err := service.ValidateRequest(h.validate, req, "invalid artifact payload"); err != nil {
		response.Error(c, err)
		return
	}
	at := h.now()
	if req.At != nil {
		at = *req.At
	}
	state := h.service.ClassifyExpiration(models.Artifact{
		Status:      req.Status,
		ExpiresAt:   req.ExpiresAt,
		FilePresent: strings.TrimSpace(req.FileKey) != "",
	}, at)
	response.JSON(c, http.StatusOK, dto.ClassifyArtifactResponse{State: state, At: at}, nil)
}

// Portfolio godoc
// @Summary Evaluate every facility managed by a BHP
// @Tags Compliance
// @Produce json
// @Param bhpId query string false "BHP identifier (admins only)"
// @Success 200 {object} response.Envelope
// @Router /portfolio/compliance [get]
func (h *ComplianceHandler) Portfolio(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "compliance service not configured"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	at, err := referenceTime(c, h.now)
	if err != nil {
		response.Error(c, err)
		return
	}
	statuses, err := h.service.Portfolio(c.Request.Context(), claims.Actor(), strings.TrimSpace(c.Query("bhpId")), at)
	if err != nil {
		response.Error(c, err)
		return
	}
	compliant := 0
	for _, s := range statuses {
		if s.InCompliance {
			compliant++
		}
	}
	response.JSON(c, http.StatusOK, statuses, nil, map[string]interface{}{
		"facilities": len(statuses),
		"compliant":  compliant,
	})
}
