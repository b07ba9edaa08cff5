package models

import "time"

// RecordAuditLog is an immutable entry describing one committed transition of a
// clinical record. Details carry a redacted summary, never the clinical body.
type RecordAuditLog struct {
	ID         string       `db:"id" json:"id"`
	RecordID   string       `db:"record_id" json:"recordId"`
	FacilityID string       `db:"facility_id" json:"facilityId"`
	ActorID    string       `db:"actor_id" json:"actorId"`
	ActorRole  UserRole     `db:"actor_role" json:"actorRole"`
	Action     RecordAction `db:"action" json:"action"`
	FromStatus RecordStatus `db:"from_status" json:"fromStatus"`
	ToStatus   RecordStatus `db:"to_status" json:"toStatus"`
	Details    JSONB        `db:"details" json:"details"`
	CreatedAt  time.Time    `db:"created_at" json:"createdAt"`
}
