package dto

import (
	"time"

	"github.com/noah-isme/bhrf-oversight-api/internal/models"
)

// ClassifyArtifactRequest is an ad-hoc expiration check.
type ClassifyArtifactRequest struct {
	Status    models.DocumentStatus `json:"status" validate:"required,oneof=REQUESTED UPLOADED EXPIRED"`
	ExpiresAt *time.Time            `json:"expiresAt"`
	FileKey   string                `json:"fileKey"`
	At        *time.Time            `json:"at"`
}

// ClassifyArtifactResponse echoes the classification and reference instant.
type ClassifyArtifactResponse struct {
	State models.ExpirationState `json:"state"`
	At    time.Time              `json:"at"`
}
