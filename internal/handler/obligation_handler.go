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

type obligationService interface {
	Record(ctx context.Context, actor models.Actor, facilityID string, req dto.ObligationRecordRequest) (*models.ObligationRecord, error)
	List(ctx context.Context, actor models.Actor, facilityID string, query dto.ObligationQuery) ([]models.ObligationRecord, error)
	Correct(ctx context.Context, actor models.Actor, id string, req dto.ObligationRecordRequest) (*models.ObligationRecord, error)
}

// ObligationHandler exposes proof-of-performance records for drills and trainings.
type ObligationHandler struct {
	service obligationService
}

// NewObligationHandler constructs the handler.
func NewObligationHandler(service obligationService) *ObligationHandler {
	return &ObligationHandler{service: service}
}

// Create godoc
// @Summary Record a drill or training
// @Tags Obligations
// @Accept json
// @Produce json
// @Param id path string true "Facility ID"
// @Param payload body dto.ObligationRecordRequest true "Obligation record"
// @Success 201 {object} response.Envelope
// @Router /facilities/{id}/obligations [post]
func (h *ObligationHandler) Create(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "obligation service not configured"))
		return
	}
	var req dto.ObligationRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid obligation payload"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	record, err := h.service.Record(c.Request.Context(), claims.Actor(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// List godoc
// @Summary List obligation records of a facility
// @Tags Obligations
// @Produce json
// @Param id path string true "Facility ID"
// @Param kind query string false "Obligation kind"
// @Param year query int false "Year"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} response.Envelope
// @Router /facilities/{id}/obligations [get]
func (h *ObligationHandler) List(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "obligation service not configured"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	query := dto.ObligationQuery{Kind: models.ObligationKind(strings.ToUpper(strings.TrimSpace(c.Query("kind"))))}
	var err error
	if query.Year, err = queryInt(c, "year"); err != nil {
		response.Error(c, err)
		return
	}
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

// Correct godoc
// @Summary Correct an obligation record
// @Tags Obligations
// @Accept json
// @Produce json
// @Param id path string true "Obligation record ID"
// @Param payload body dto.ObligationRecordRequest true "Corrected record"
// @Success 200 {object} response.Envelope
// @Router /obligations/{id} [put]
func (h *ObligationHandler) Correct(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "obligation service not configured"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.ObligationRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid obligation payload"))
		return
	}
	record, err := h.service.Correct(c.Request.Context(), claims.Actor(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}
