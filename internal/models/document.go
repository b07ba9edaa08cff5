package models

import "time"

// DocumentOwnerType identifies which entity a document belongs to.
type DocumentOwnerType string

const (
	OwnerFacility DocumentOwnerType = "FACILITY"
	OwnerEmployee DocumentOwnerType = "EMPLOYEE"
	OwnerResident DocumentOwnerType = "RESIDENT"
)

// Valid reports whether t is a known owner type.
func (t DocumentOwnerType) Valid() bool {
	switch t {
	case OwnerFacility, OwnerEmployee, OwnerResident:
		return true
	}
	return false
}

// DocumentStatus is the upload lifecycle of a document or credential.
type DocumentStatus string

const (
	DocumentRequested DocumentStatus = "REQUESTED"
	DocumentUploaded  DocumentStatus = "UPLOADED"
	DocumentExpired   DocumentStatus = "EXPIRED"
)

// Document is a dated artifact (license, certificate, credential) owned by a
// facility, one of its employees, or one of its residents. A nil ExpiresAt means
// the artifact never expires.
type Document struct {
	ID         string            `db:"id" json:"id"`
	FacilityID string            `db:"facility_id" json:"facilityId"`
	OwnerType  DocumentOwnerType `db:"owner_type" json:"ownerType"`
	OwnerID    string            `db:"owner_id" json:"ownerId"`
	Name       string            `db:"name" json:"name"`
	Status     DocumentStatus    `db:"status" json:"status"`
	FileKey    string            `db:"file_key" json:"fileKey,omitempty"`
	ExpiresAt  *time.Time        `db:"expires_at" json:"expiresAt,omitempty"`
	CreatedAt  time.Time         `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time         `db:"updated_at" json:"updatedAt"`
}

// Artifact returns the fields the expiration classifier looks at.
func (d Document) Artifact() Artifact {
	return Artifact{Status: d.Status, ExpiresAt: d.ExpiresAt, FilePresent: d.FileKey != ""}
}

// Artifact is anything with an upload status and an optional expiry.
type Artifact struct {
	Status      DocumentStatus `json:"status"`
	ExpiresAt   *time.Time     `json:"expiresAt,omitempty"`
	FilePresent bool           `json:"filePresent"`
}

// ExpirationState is the classification of an artifact at a reference instant.
type ExpirationState string

const (
	ExpirationValid          ExpirationState = "VALID"
	ExpirationExpiringSoon   ExpirationState = "EXPIRING_SOON"
	ExpirationExpired        ExpirationState = "EXPIRED"
	ExpirationAwaitingUpload ExpirationState = "AWAITING_UPLOAD"
)

// IsIssue reports whether the state counts against compliance.
func (s ExpirationState) IsIssue() bool {
	return s == ExpirationExpired || s == ExpirationAwaitingUpload
}
