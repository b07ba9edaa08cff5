package models

import "github.com/golang-jwt/jwt/v5"

// UserRole represents the roles recognised by the oversight API.
type UserRole string

const (
	RoleAdmin         UserRole = "ADMIN"
	RoleBHP           UserRole = "BHP"
	RoleFacilityStaff UserRole = "BHRF_STAFF"
)

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleBHP, RoleFacilityStaff:
		return true
	}
	return false
}

// ActorClaims is the JWT payload issued by the identity provider.
// FacilityID is set for facility staff, BHPID for managing authority users.
type ActorClaims struct {
	UserID     string   `json:"user_id"`
	Role       UserRole `json:"role"`
	FacilityID string   `json:"facility_id,omitempty"`
	BHPID      string   `json:"bhp_id,omitempty"`
	FullName   string   `json:"full_name,omitempty"`
	jwt.RegisteredClaims
}

// Actor returns the lifecycle actor derived from the claims.
func (c *ActorClaims) Actor() Actor {
	if c == nil {
		return Actor{}
	}
	return Actor{UserID: c.UserID, Role: c.Role, FacilityID: c.FacilityID, BHPID: c.BHPID}
}

// Actor identifies who is performing an operation.
type Actor struct {
	UserID     string   `json:"userId"`
	Role       UserRole `json:"role"`
	FacilityID string   `json:"facilityId,omitempty"`
	BHPID      string   `json:"bhpId,omitempty"`
}

// CanReadFacility reports whether the actor may read data belonging to facility.
func (a Actor) CanReadFacility(f *Facility) bool {
	if f == nil {
		return false
	}
	switch a.Role {
	case RoleAdmin:
		return true
	case RoleBHP:
		return a.BHPID != "" && a.BHPID == f.BHPID
	case RoleFacilityStaff:
		return a.FacilityID != "" && a.FacilityID == f.ID
	}
	return false
}

// Manages reports whether the actor is the managing authority of facility.
func (a Actor) Manages(f *Facility) bool {
	return f != nil && a.Role == RoleBHP && a.BHPID != "" && a.BHPID == f.BHPID
}

// StaffOf reports whether the actor belongs to facility.
func (a Actor) StaffOf(f *Facility) bool {
	return f != nil && a.Role == RoleFacilityStaff && a.FacilityID != "" && a.FacilityID == f.ID
}
