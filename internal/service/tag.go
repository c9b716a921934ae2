package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/trip-planner/internal/model"
	"github.com/sakif/trip-planner/internal/repository"
)

// TagInput is the body of a create-tag request.
type TagInput struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type TagService struct {
	tags   repository.TagRepository
	guard  tripGuard
	logger *slog.Logger
}

func NewTagService(
	tags repository.TagRepository,
	trips repository.TripRepository,
	members repository.MemberRepository,
	logger *slog.Logger,
) *TagService {
	return &TagService{
		tags:   tags,
		guard:  tripGuard{trips: trips, members: members},
		logger: logger,
	}
}

func (s *TagService) ListForUser(ctx context.Context, userID string) ([]model.TripTag, error) {
	tags, err := s.tags.ListTagsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	return tags, nil
}

func (s *TagService) ListByTrip(ctx context.Context, userID, tripID string) ([]model.TripTag, error) {
	if _, err := s.guard.requireRead(ctx, userID, tripID); err != nil {
		return nil, err
	}
	tags, err := s.tags.ListTagsByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("listing tags of trip %s: %w", tripID, err)
	}
	return tags, nil
}

func (s *TagService) Create(ctx context.Context, userID, tripID string, in TagInput) (*model.TripTag, error) {
	if _, err := s.guard.requireWrite(ctx, userID, tripID); err != nil {
		return nil, err
	}

	tag := &model.TripTag{
		TripID: tripID,
		Name:   strings.TrimSpace(in.Name),
		Color:  strings.TrimSpace(in.Color),
	}
	if err := validateLabel(tag.Name, tag.Color); err != nil {
		return nil, err
	}
	if tag.Color == "" {
		tag.Color = DefaultColor
	}

	if err := s.tags.CreateTag(ctx, tag); err != nil {
		return nil, fmt.Errorf("creating tag: %w", err)
	}
	return tag, nil
}

func (s *TagService) Delete(ctx context.Context, userID, id string) error {
	tag, err := s.tags.GetTagByID(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.guard.requireWrite(ctx, userID, tag.TripID); err != nil {
		return err
	}
	if err := s.tags.DeleteTag(ctx, id); err != nil {
		return fmt.Errorf("deleting tag: %w", err)
	}
	return nil
}
