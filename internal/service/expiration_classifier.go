package service

import (
	"time"

	"github.com/noah-isme/bhrf-oversight-api/internal/models"
)

// DefaultExpiringSoonWindow is the horizon inside which a valid artifact is flagged.
const DefaultExpiringSoonWindow = 30 * 24 * time.Hour

// ExpirationClassifier classifies dated artifacts against a reference instant.
type ExpirationClassifier struct {
	window time.Duration
}

// NewExpirationClassifier builds a classifier; window <= 0 selects the 30 day default.
func NewExpirationClassifier(window time.Duration) *ExpirationClassifier {
	if window <= 0 {
		window = DefaultExpiringSoonWindow
	}
	return &ExpirationClassifier{window: window}
}

// Classify applies the rules in priority order. An artifact sitting exactly on the
// horizon is EXPIRING_SOON.
func (c *ExpirationClassifier) Classify(a models.Artifact, now time.Time) models.ExpirationState {
	if a.Status == models.DocumentRequested || a.Status == "" || (a.Status == models.DocumentUploaded && !a.FilePresent) {
		return models.ExpirationAwaitingUpload
	}
	if a.Status == models.DocumentExpired {
		return models.ExpirationExpired
	}
	if a.ExpiresAt == nil {
		return models.ExpirationValid
	}
	expiresAt := *a.ExpiresAt
	if expiresAt.Before(now) {
		return models.ExpirationExpired
	}
	if !expiresAt.After(now.Add(c.horizon())) {
		return models.ExpirationExpiringSoon
	}
	return models.ExpirationValid
}

// ClassifyDocument is a convenience wrapper over Classify.
func (c *ExpirationClassifier) ClassifyDocument(doc models.Document, now time.Time) models.ExpirationState {
	return c.Classify(doc.Artifact(), now)
}

func (c *ExpirationClassifier) horizon() time.Duration {
	if c == nil || c.window <= 0 {
		return DefaultExpiringSoonWindow
	}
	return c.window
}
