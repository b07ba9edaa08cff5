package models

import "time"

// Facility is a behavioral health residential facility overseen by one BHP.
type Facility struct {
	ID             string    `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	BHPID          string    `db:"bhp_id" json:"bhpId"`
	RequiresReview bool      `db:"requires_review" json:"requiresReview"`
	Active         bool      `db:"active" json:"active"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
