package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/bhrf-oversight-api/internal/dto"
	"github.com/noah-isme/bhrf-oversight-api/internal/models"
	appErrors "github.com/noah-isme/bhrf-oversight-api/pkg/errors"
	"github.com/noah-isme/bhrf-oversight-api/pkg/response"
)

type clinicalRecordService interface {
	Create(ctx context.Context, actor models.Actor, facilityID string, req dto.CreateRecordRequest) (*models.ClinicalRecord, error)
	ApplyTransition(ctx context.Context, actor models.Actor, recordID string, req dto.TransitionRequest) (*models.ClinicalRecord, error)
	Get(ctx context.Context, actor models.Actor, id string) (*models.ClinicalRecord, error)
	List(ctx context.Context, actor models.Actor, facilityID string, query dto.RecordQuery) ([]models.ClinicalRecord, error)
	AuditTrail(ctx context.Context, actor models.Actor, id string) ([]models.RecordAuditLog, error)
}

// ClinicalRecordHandler exposes the assessment lifecycle.
type ClinicalRecordHandler struct {
	service clinicalRecordService
}

// NewClinicalRecordHandler constructs the handler.
func NewClinicalRecordHandler(service clinicalRecordService) *ClinicalRecordHandler {
	return &ClinicalRecordHandler{service: service}
}

// Create godoc
// @Summary Start a clinical record as draft or submission
// @Tags Records
// @Accept json
// @Produce json
// @Param id path string true "Facility ID"
// @Param payload body dto.CreateRecordRequest true "Record payload"
// @Success 201 {object} response.Envelope
// @Router /facilities/{id}/records [post]
func (h *ClinicalRecordHandler) Create(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "record service not configured"))
		return
	}
	var req dto.CreateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid record payload"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	record, err := h.service.Create(c.Request.Context(), claims.Actor(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// List godoc
// @Summary List clinical records of a facility
// @Tags Records
// @Produce json
// @Param id path string true "Facility ID"
// @Param status query string false "Comma separated statuses"
// @Param kind query string false "Record kind"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} response.Envelope
// @Router /facilities/{id}/records [get]
func (h *ClinicalRecordHandler) List(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "record service not configured"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	query := dto.RecordQuery{Kind: models.RecordKind(strings.ToUpper(strings.TrimSpace(c.Query("kind"))))}
	if rawStatus := c.Query("status"); rawStatus != "" {
		parts := strings.Split(rawStatus, ",")
		statuses := make([]models.RecordStatus, 0, len(parts))
		for _, part := range parts {
			part = strings.ToUpper(strings.TrimSpace(part))
			if part == "" {
				continue
			}
			statuses = append(statuses, models.RecordStatus(part))
		}
		query.Status = statuses
	}
	var err error
	if query.Limit, err = queryInt(c, "limit"); err != nil {
		response.Error(c, err)
		return
	}
	if query.Offset, err = queryInt(c, "offset"); err != nil {
		response.Error(c, err)
		return
	}
	records, err := h.service.List(c.Request.Context(), claims.Actor(), c.Param("id"), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// Get godoc
// @Summary Get clinical record detail
// @Tags Records
// @Produce json
// @Param id path string true "Record ID"
// @Success 200 {object} response.Envelope
// @Router /records/{id} [get]
func (h *ClinicalRecordHandler) Get(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "record service not configured"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	record, err := h.service.Get(c.Request.Context(), claims.Actor(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Transition godoc
// @Summary Apply a lifecycle action to a record
// @Tags Records
// @Accept json
// @Produce json
// @Param id path string true "Record ID"
// @Param payload body dto.TransitionRequest true "Transition"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /records/{id}/transitions [post]
func (h *ClinicalRecordHandler) Transition(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "record service not configured"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid transition payload"))
		return
	}
	req.Action = models.RecordAction(strings.ToUpper(strings.TrimSpace(string(req.Action))))
	record, err := h.service.ApplyTransition(c.Request.Context(), claims.Actor(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// AuditTrail godoc
// @Summary List the audit trail of a record
// @Tags Records
// @Produce json
// @Param id path string true "Record ID"
// @Success 200 {object} response.Envelope
// @Router /records/{id}/audit [get]
func (h *ClinicalRecordHandler) AuditTrail(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "record service not configured"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	entries, err := h.service.AuditTrail(c.Request.Context(), claims.Actor(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}
