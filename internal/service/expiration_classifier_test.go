package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/bhrf-oversight-api/internal/models"
)

func TestExpirationClassifierClassify(t *testing.T) {
	classifier := NewExpirationClassifier(0)
	now := time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)
	at := func(d time.Duration) *time.Time {
		v := now.Add(d)
		return &v
	}
	day := 24 * time.Hour

	cases := []struct {
		name     string
		artifact models.Artifact
		want     models.ExpirationState
	}{
		{"expires in 30 days", models.Artifact{Status: models.DocumentUploaded, FilePresent: true, ExpiresAt: at(30 * day)}, models.ExpirationExpiringSoon},
		{"expires in 31 days", models.Artifact{Status: models.DocumentUploaded, FilePresent: true, ExpiresAt: at(31 * day)}, models.ExpirationValid},
		{"expired yesterday", models.Artifact{Status: models.DocumentUploaded, FilePresent: true, ExpiresAt: at(-day)}, models.ExpirationExpired},
		{"expires right now", models.Artifact{Status: models.DocumentUploaded, FilePresent: true, ExpiresAt: at(0)}, models.ExpirationExpiringSoon},
		{"no expiry", models.Artifact{Status: models.DocumentUploaded, FilePresent: true}, models.ExpirationValid},
		{"requested far future", models.Artifact{Status: models.DocumentRequested, ExpiresAt: at(365 * day)}, models.ExpirationAwaitingUpload},
		{"uploaded without file", models.Artifact{Status: models.DocumentUploaded, ExpiresAt: at(365 * day)}, models.ExpirationAwaitingUpload},
		{"missing status", models.Artifact{}, models.ExpirationAwaitingUpload},
		{"stored expired", models.Artifact{Status: models.DocumentExpired, FilePresent: true, ExpiresAt: at(365 * day)}, models.ExpirationExpired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, classifier.Classify(tc.artifact, now))
		})
	}
}

func TestExpirationClassifierCustomWindow(t *testing.T) {
	classifier := NewExpirationClassifier(7 * 24 * time.Hour)
	now := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)
	expires := now.AddDate(0, 0, 10)

	state := classifier.Classify(models.Artifact{Status: models.DocumentUploaded, FilePresent: true, ExpiresAt: &expires}, now)
	assert.Equal(t, models.ExpirationValid, state)
}
