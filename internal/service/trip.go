// Package service holds the business rules of the trip planner.
//
//	Handler (HTTP)  → parses requests, writes responses
//	Service         → validates input, applies the access policy
//	Repository      → reads and writes the database
//
// Services take repository interfaces, never *sqlite.DB, so tests run them
// against in-memory fakes. They return apperror values; only the handler
// package knows about HTTP status codes.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/trip-planner/internal/apperror"
	"github.com/sakif/trip-planner/internal/model"
	"github.com/sakif/trip-planner/internal/repository"
)

// TripInput is the body of a create-trip request.
type TripInput struct {
	Name        string     `json:"name"`
	Destination string     `json:"destination"`
	StartDate   model.Date `json:"startDate"`
	EndDate     model.Date `json:"endDate"`
	ImageURL    *string    `json:"imageUrl,omitempty"`
	Description *string    `json:"description,omitempty"`
}

type TripService struct {
	trips  repository.TripRepository
	guard  tripGuard
	logger *slog.Logger
}

func NewTripService(trips repository.TripRepository, members repository.MemberRepository, logger *slog.Logger) *TripService {
	return &TripService{
		trips:  trips,
		guard:  tripGuard{trips: trips, members: members},
		logger: logger,
	}
}

// List returns every trip the user owns or is a member of.
func (s *TripService) List(ctx context.Context, userID string) ([]model.Trip, error) {
	trips, err := s.trips.ListTripsByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list trips", slog.String("userID", userID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing trips: %w", err)
	}
	return trips, nil
}

// ListShared returns the trips other users have shared with userID.
func (s *TripService) ListShared(ctx context.Context, userID string) ([]model.Trip, error) {
	trips, err := s.trips.ListSharedTrips(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing shared trips: %w", err)
	}
	return trips, nil
}

func (s *TripService) Get(ctx context.Context, userID, tripID string) (*model.Trip, error) {
	return s.guard.requireRead(ctx, userID, tripID)
}

// Create validates in and stores a new trip owned by userID.
func (s *TripService) Create(ctx context.Context, userID string, in TripInput) (*model.Trip, error) {
	trip := &model.Trip{
		OwnerUserID: userID,
		Name:        strings.TrimSpace(in.Name),
		Destination: strings.TrimSpace(in.Destination),
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		ImageURL:    emptyToNil(in.ImageURL),
		Description: emptyToNil(in.Description),
	}
	if err := validateTrip(trip); err != nil {
		return nil, err
	}

	if err := s.trips.CreateTrip(ctx, trip); err != nil {
		s.logger.Error("failed to create trip",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating trip: %w", err)
	}

	s.logger.Info("trip created",
		slog.String("id", trip.ID),
		slog.String("userID", userID),
		slog.String("destination", trip.Destination),
	)
	return trip, nil
}

// Update applies patch to the trip. Only the owner may change a trip's core
// fields. The date order is checked against the merged result, so moving only
// the start date past the existing end date is rejected.
func (s *TripService) Update(ctx context.Context, userID, tripID string, patch model.TripPatch) (*model.Trip, error) {
	if patch.IsEmpty() {
		return nil, apperror.ValidationFailed("", "no fields to update")
	}

	trip, err := s.guard.requireOwner(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}

	patch.Name = trimOptional(patch.Name)
	patch.Destination = trimOptional(patch.Destination)
	patch.Apply(trip)
	if err := validateTrip(trip); err != nil {
		return nil, err
	}

	if err := s.trips.UpdateTrip(ctx, trip); err != nil {
		return nil, fmt.Errorf("updating trip: %w", err)
	}

	s.logger.Info("trip updated", slog.String("id", trip.ID))
	return trip, nil
}

// Delete removes the trip and, through the store's cascade, all of its
// schedules, packing items, tags and memberships.
func (s *TripService) Delete(ctx context.Context, userID, tripID string) error {
	if _, err := s.guard.requireOwner(ctx, userID, tripID); err != nil {
		return err
	}
	if err := s.trips.DeleteTrip(ctx, tripID); err != nil {
		return fmt.Errorf("deleting trip: %w", err)
	}

	s.logger.Info("trip deleted", slog.String("id", tripID), slog.String("userID", userID))
	return nil
}

// emptyToNil trims an optional string and drops it when blank.
func emptyToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
