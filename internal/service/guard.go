package service

import (
	"context"
	"fmt"

	"github.com/sakif/trip-planner/internal/access"
	"github.com/sakif/trip-planner/internal/apperror"
	"github.com/sakif/trip-planner/internal/model"
	"github.com/sakif/trip-planner/internal/repository"
)

// tripGuard resolves a trip and applies the access policy to it. The trip
// lookup always runs first, so a missing trip is reported as NotFound even to
// users who could not have read it.
type tripGuard struct {
	trips   repository.TripRepository
	members repository.MemberRepository
}

func (g tripGuard) load(ctx context.Context, tripID string) (*model.Trip, []model.TripMember, error) {
	trip, err := g.trips.GetTripByID(ctx, tripID)
	if err != nil {
		return nil, nil, err
	}
	members, err := g.members.ListMembers(ctx, tripID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading members of trip %s: %w", tripID, err)
	}
	return trip, members, nil
}

func (g tripGuard) requireRead(ctx context.Context, userID, tripID string) (*model.Trip, error) {
	trip, members, err := g.load(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if !access.CanRead(userID, trip, members) {
		return nil, apperror.Forbidden("you do not have access to this trip")
	}
	return trip, nil
}

func (g tripGuard) requireWrite(ctx context.Context, userID, tripID string) (*model.Trip, error) {
	trip, members, err := g.load(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if !access.CanWrite(userID, trip, members) {
		return nil, apperror.Forbidden("you do not have permission to modify this trip")
	}
	return trip, nil
}

func (g tripGuard) requireOwner(ctx context.Context, userID, tripID string) (*model.Trip, error) {
	trip, err := g.trips.GetTripByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if !access.IsOwner(userID, trip) {
		return nil, apperror.Forbidden("only the trip owner can do this")
	}
	return trip, nil
}
