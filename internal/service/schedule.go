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

// ScheduleInput is the body of a create-schedule request.
type ScheduleInput struct {
	Day         model.Date `json:"day"`
	Time        *string    `json:"time,omitempty"`
	Location    *string    `json:"location,omitempty"`
	Description *string    `json:"description,omitempty"`
	Title       string     `json:"title"`
}

type ScheduleService struct {
	schedules repository.ScheduleRepository
	guard     tripGuard
	logger    *slog.Logger
}

func NewScheduleService(
	schedules repository.ScheduleRepository,
	trips repository.TripRepository,
	members repository.MemberRepository,
	logger *slog.Logger,
) *ScheduleService {
	return &ScheduleService{
		schedules: schedules,
		guard:     tripGuard{trips: trips, members: members},
		logger:    logger,
	}
}

// ListForUser returns the schedules of every trip the user can read.
func (s *ScheduleService) ListForUser(ctx context.Context, userID string) ([]model.Schedule, error) {
	list, err := s.schedules.ListSchedulesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing schedules: %w", err)
	}
	return list, nil
}

func (s *ScheduleService) ListByTrip(ctx context.Context, userID, tripID string) ([]model.Schedule, error) {
	if _, err := s.guard.requireRead(ctx, userID, tripID); err != nil {
		return nil, err
	}
	list, err := s.schedules.ListSchedulesByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("listing schedules of trip %s: %w", tripID, err)
	}
	return list, nil
}

// Create adds a schedule entry. The caller needs write access to the trip.
func (s *ScheduleService) Create(ctx context.Context, userID, tripID string, in ScheduleInput) (*model.Schedule, error) {
	if _, err := s.guard.requireWrite(ctx, userID, tripID); err != nil {
		return nil, err
	}

	sched := &model.Schedule{
		TripID:      tripID,
		Day:         in.Day,
		Time:        emptyToNil(in.Time),
		Location:    emptyToNil(in.Location),
		Description: emptyToNil(in.Description),
		Title:       strings.TrimSpace(in.Title),
	}
	if err := validateSchedule(sched); err != nil {
		return nil, err
	}

	if err := s.schedules.CreateSchedule(ctx, sched); err != nil {
		return nil, fmt.Errorf("creating schedule: %w", err)
	}

	s.logger.Info("schedule created", slog.String("id", sched.ID), slog.String("tripID", tripID))
	return sched, nil
}

func (s *ScheduleService) Update(ctx context.Context, userID, id string, patch model.SchedulePatch) (*model.Schedule, error) {
	if patch.IsEmpty() {
		return nil, apperror.ValidationFailed("", "no fields to update")
	}

	sched, err := s.schedules.GetScheduleByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.guard.requireWrite(ctx, userID, sched.TripID); err != nil {
		return nil, err
	}

	patch.Title = trimOptional(patch.Title)
	patch.Time = trimOptional(patch.Time)
	patch.Location = trimOptional(patch.Location)
	patch.Apply(sched)
	if err := validateSchedule(sched); err != nil {
		return nil, err
	}

	if err := s.schedules.UpdateSchedule(ctx, sched); err != nil {
		return nil, fmt.Errorf("updating schedule: %w", err)
	}
	return sched, nil
}

func (s *ScheduleService) Delete(ctx context.Context, userID, id string) error {
	sched, err := s.schedules.GetScheduleByID(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.guard.requireWrite(ctx, userID, sched.TripID); err != nil {
		return err
	}
	if err := s.schedules.DeleteSchedule(ctx, id); err != nil {
		return fmt.Errorf("deleting schedule: %w", err)
	}

	s.logger.Info("schedule deleted", slog.String("id", id))
	return nil
}
