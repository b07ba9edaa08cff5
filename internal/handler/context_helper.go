package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/bhrf-oversight-api/internal/middleware"
	"github.com/noah-isme/bhrf-oversight-api/internal/models"
	appErrors "github.com/noah-isme/bhrf-oversight-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.ActorClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.ActorClaims)
	if !ok {
		return nil
	}
	return claims
}

// referenceTime reads the optional ?at= RFC3339 instant, defaulting to now.
func referenceTime(c *gin.Context, now func() time.Time) (time.Time, error) {
	raw := strings.TrimSpace(c.Query("at"))
	if raw == "" {
		return now(), nil
	}
	at, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, appErrors.WithFields(appErrors.ErrValidation, "invalid reference time", map[string]string{"at": "must be an RFC3339 timestamp"})
	}
	return at, nil
}

func queryInt(c *gin.Context, key string) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, appErrors.WithFields(appErrors.ErrValidation, "invalid query parameter", map[string]string{key: "must be an integer"})
	}
	return v, nil
}

func systemNow() time.Time {
	return time.Now().UTC()
}
