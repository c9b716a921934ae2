// Package access decides who may read or write a trip and its child entities.
//
// Every function here is pure: the caller resolves the trip and its members
// from the store first. A trip that does not exist is a NotFound condition
// handled before the policy runs, never a policy answer.
package access

import "github.com/sakif/trip-planner/internal/model"

// IsOwner reports whether userID owns trip.
func IsOwner(userID string, trip *model.Trip) bool {
	return trip != nil && userID != "" && trip.OwnerUserID == userID
}

// CanRead is true for the owner and for any member, whatever the role.
func CanRead(userID string, trip *model.Trip, members []model.TripMember) bool {
	if IsOwner(userID, trip) {
		return true
	}
	_, ok := roleOf(userID, members)
	return ok
}

// CanWrite is true for the owner and for members whose role is editor or owner.
func CanWrite(userID string, trip *model.Trip, members []model.TripMember) bool {
	if IsOwner(userID, trip) {
		return true
	}
	role, ok := roleOf(userID, members)
	return ok && role.CanWrite()
}

func roleOf(userID string, members []model.TripMember) (model.Role, bool) {
	if userID == "" {
		return "", false
	}
	for _, m := range members {
		if m.UserID == userID {
			return m.Role, true
		}
	}
	return "", false
}
