package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/trip-planner/internal/access"
	"github.com/sakif/trip-planner/internal/apperror"
	"github.com/sakif/trip-planner/internal/model"
	"github.com/sakif/trip-planner/internal/repository"
)

// ShareInput is the body of POST /api/trips/{id}/share.
type ShareInput struct {
	Username string     `json:"username"`
	Role     model.Role `json:"role,omitempty"`
}

// SharingService grants and revokes other users' access to a trip.
type SharingService struct {
	users   repository.UserRepository
	members repository.MemberRepository
	guard   tripGuard
	logger  *slog.Logger
}

func NewSharingService(
	users repository.UserRepository,
	trips repository.TripRepository,
	members repository.MemberRepository,
	logger *slog.Logger,
) *SharingService {
	return &SharingService{
		users:   users,
		members: members,
		guard:   tripGuard{trips: trips, members: members},
		logger:  logger,
	}
}

// ShareTrip adds the user named in.Username as a member of the trip.
//
// Checks run in this order, and the first failure is returned:
//  1. the trip exists                    (NotFound)
//  2. the caller owns it                 (Forbidden)
//  3. the role is viewer or editor       (Validation)
//  4. the username resolves              (NotFound)
//  5. the target is not the owner        (InvalidRequest)
//  6. the target is not already a member (Conflict)
//
// The member insert and the isShared flip happen in one store transaction.
// Sharing twice with the same user is rejected, not ignored.
func (s *SharingService) ShareTrip(ctx context.Context, ownerUserID, tripID string, in ShareInput) (*model.TripMember, error) {
	trip, members, err := s.guard.load(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if !access.IsOwner(ownerUserID, trip) {
		return nil, apperror.Forbidden("only the trip owner can share this trip")
	}

	role := in.Role
	if role == "" {
		role = model.RoleViewer
	}
	if role != model.RoleViewer && role != model.RoleEditor {
		return nil, apperror.ValidationFailed("role", "role must be viewer or editor")
	}

	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}
	target, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if target.ID == trip.OwnerUserID {
		return nil, apperror.InvalidRequest("cannot share with yourself")
	}
	for _, m := range members {
		if m.UserID == target.ID {
			return nil, apperror.ConflictMessage("trip already shared with this user")
		}
	}

	member := &model.TripMember{
		TripID:   trip.ID,
		UserID:   target.ID,
		Username: target.Username,
		Role:     role,
	}
	// A concurrent share that slipped past the check above still fails here
	// with Conflict from the unique (trip_id, user_id) constraint.
	if err := s.members.AddMember(ctx, member); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		s.logger.Error("failed to share trip",
			slog.String("tripID", trip.ID),
			slog.String("targetUserID", target.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("sharing trip: %w", err)
	}

	s.logger.Info("trip shared",
		slog.String("tripID", trip.ID),
		slog.String("targetUserID", target.ID),
		slog.String("role", string(role)),
	)
	return member, nil
}

// ListMembers returns the trip's members. Any reader of the trip may call it.
func (s *SharingService) ListMembers(ctx context.Context, userID, tripID string) ([]model.TripMember, error) {
	trip, members, err := s.guard.load(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if !access.CanRead(userID, trip, members) {
		return nil, apperror.Forbidden("you do not have access to this trip")
	}
	return members, nil
}

// RemoveMember revokes a member's access. The trip stays marked shared.
func (s *SharingService) RemoveMember(ctx context.Context, ownerUserID, tripID, memberUserID string) error {
	if _, err := s.guard.requireOwner(ctx, ownerUserID, tripID); err != nil {
		return err
	}
	if err := s.members.RemoveMember(ctx, tripID, memberUserID); err != nil {
		return err
	}

	s.logger.Info("trip member removed", slog.String("tripID", tripID), slog.String("userID", memberUserID))
	return nil
}
