package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/bhrf-oversight-api/internal/middleware"
	"github.com/noah-isme/bhrf-oversight-api/internal/models"
	"github.com/noah-isme/bhrf-oversight-api/pkg/response"
)

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func withClaims(c *gin.Context, claims *models.ActorClaims) {
	c.Set(middleware.ContextUserKey, claims)
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var env response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

var (
	staffClaims = &models.ActorClaims{UserID: "staff-1", Role: models.RoleFacilityStaff, FacilityID: "fac-1"}
	bhpClaims   = &models.ActorClaims{UserID: "bhp-user", Role: models.RoleBHP, BHPID: "bhp-1"}
)
