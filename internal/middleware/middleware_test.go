package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/bhrf-oversight-api/internal/models"
	"github.com/noah-isme/bhrf-oversight-api/internal/service"
	appErrors "github.com/noah-isme/bhrf-oversight-api/pkg/errors"
	"github.com/noah-isme/bhrf-oversight-api/pkg/logger"
)

type verifierStub struct {
	claims *models.ActorClaims
	err    error
	token  string
}

func (v *verifierStub) Verify(token string) (*models.ActorClaims, error) {
	v.token = token
	return v.claims, v.err
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", handlers...)
	return r
}

func perform(r *gin.Engine, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTSetsClaims(t *testing.T) {
	verifier := &verifierStub{claims: &models.ActorClaims{UserID: "staff-1", Role: models.RoleFacilityStaff, FacilityID: "fac-1"}}
	var actorID string
	var claims *models.ActorClaims
	r := newRouter(JWT(verifier), func(c *gin.Context) {
		actorID = c.GetString(logger.ActorIDKey)
		claims, _ = c.MustGet(ContextUserKey).(*models.ActorClaims)
		c.Status(http.StatusOK)
	})

	w := perform(r, "bearer  abc.def.ghi")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc.def.ghi", verifier.token)
	assert.Equal(t, "staff-1", actorID)
	require.NotNil(t, claims)
	assert.Equal(t, "fac-1", claims.FacilityID)
}

func TestJWTRejectsMissingOrMalformedHeader(t *testing.T) {
	r := newRouter(JWT(&verifierStub{}), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusUnauthorized, perform(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, perform(r, "Basic dXNlcjpwYXNz").Code)
}

func TestJWTPropagatesVerifierError(t *testing.T) {
	verifier := &verifierStub{err: appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")}
	r := newRouter(JWT(verifier), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := perform(r, "Bearer nope")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid token")
}

func TestRequireRoles(t *testing.T) {
	setClaims := func(claims *models.ActorClaims) gin.HandlerFunc {
		return func(c *gin.Context) {
			if claims != nil {
				c.Set(ContextUserKey, claims)
			}
			c.Next()
		}
	}
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }

	cases := []struct {
		name   string
		claims *models.ActorClaims
		want   int
	}{
		{"bhp allowed", &models.ActorClaims{UserID: "u", Role: models.RoleBHP}, http.StatusOK},
		{"admin allowed", &models.ActorClaims{UserID: "u", Role: models.RoleAdmin}, http.StatusOK},
		{"staff forbidden", &models.ActorClaims{UserID: "u", Role: models.RoleFacilityStaff}, http.StatusForbidden},
		{"anonymous", nil, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newRouter(setClaims(tc.claims), RequireRoles(models.RoleBHP, models.RoleAdmin), ok)
			assert.Equal(t, tc.want, perform(r, "").Code)
		})
	}
}

func TestMetricsMiddlewareRecordsRoute(t *testing.T) {
	metrics := service.NewMetricsService()
	r := newRouter(Metrics(metrics), func(c *gin.Context) { c.Status(http.StatusTeapot) })

	perform(r, "")

	families, err := metrics.Registry().Gather()
	require.NoError(t, err)
	found := false
	for _, family := range families {
		if family.GetName() != "http_requests_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			labels := map[string]string{}
			for _, l := range metric.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			if labels["path"] == "/protected" && labels["status"] == "418" {
				found = true
			}
		}
	}
	assert.True(t, found)
}

func TestMetricsMiddlewareLabelsUnmatchedRoutes(t *testing.T) {
	metrics := service.NewMetricsService()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics(metrics))

	req := httptest.NewRequest(http.MethodGet, "/records/rec-42", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	families, err := metrics.Registry().Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != "http_requests_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, l := range metric.GetLabel() {
				if l.GetName() == "path" {
					assert.Equal(t, unmatchedRoute, l.GetValue())
				}
			}
		}
	}
}
