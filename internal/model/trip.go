package model

import "time"

// Trip is the top-level planning unit. It is owned by exactly one user and
// optionally shared with others through TripMember rows.
//
// IsShared flips to true the first time a member is added and never reverts,
// even when every member is later removed.
type Trip struct {
	ID          string    `json:"id"`
	OwnerUserID string    `json:"userId"`
	Name        string    `json:"name"`
	Destination string    `json:"destination"`
	StartDate   Date      `json:"startDate"`
	EndDate     Date      `json:"endDate"`
	ImageURL    *string   `json:"imageUrl,omitempty"`
	Description *string   `json:"description,omitempty"`
	IsShared    bool      `json:"isShared"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TripPatch enumerates the trip fields that may be changed. A nil pointer
// leaves the field untouched; an empty string clears an optional field.
type TripPatch struct {
	Name        *string `json:"name,omitempty"`
	Destination *string `json:"destination,omitempty"`
	StartDate   *Date   `json:"startDate,omitempty"`
	EndDate     *Date   `json:"endDate,omitempty"`
	ImageURL    *string `json:"imageUrl,omitempty"`
	Description *string `json:"description,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p TripPatch) IsEmpty() bool {
	return p.Name == nil && p.Destination == nil && p.StartDate == nil &&
		p.EndDate == nil && p.ImageURL == nil && p.Description == nil
}

// Apply copies the set fields onto t.
func (p TripPatch) Apply(t *Trip) {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Destination != nil {
		t.Destination = *p.Destination
	}
	if p.StartDate != nil {
		t.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		t.EndDate = *p.EndDate
	}
	if p.ImageURL != nil {
		t.ImageURL = optional(*p.ImageURL)
	}
	if p.Description != nil {
		t.Description = optional(*p.Description)
	}
}

// Role is a member's access level on a shared trip.
type Role string

const (
	RoleViewer Role = "viewer"
	RoleEditor Role = "editor"
	RoleOwner  Role = "owner"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleViewer, RoleEditor, RoleOwner:
		return true
	}
	return false
}

// CanWrite reports whether the role allows mutating a trip's child entities.
func (r Role) CanWrite() bool {
	return r == RoleEditor || r == RoleOwner
}

// TripMember grants a non-owner user access to a trip. There is at most one
// row per (TripID, UserID).
type TripMember struct {
	ID        string    `json:"id"`
	TripID    string    `json:"tripId"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username,omitempty"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// optional turns "" into nil so cleared fields are stored as NULL.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
