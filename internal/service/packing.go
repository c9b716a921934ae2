package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/trip-planner/internal/apperror"
	"github.com/sakif/trip-planner/internal/model"
	"github.com/sakif/trip-planner/internal/repository"
)

// PackingItemInput is the body of a create-packing-item request. Quantity
// defaults to 1 when omitted.
type PackingItemInput struct {
	Name       string  `json:"name"`
	Quantity   *int    `json:"quantity,omitempty"`
	IsPacked   bool    `json:"isPacked"`
	CategoryID *string `json:"categoryId,omitempty"`
}

// CategoryInput is the body of a create-category request.
type CategoryInput struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type PackingService struct {
	packing repository.PackingRepository
	guard   tripGuard
	logger  *slog.Logger
}

func NewPackingService(
	packing repository.PackingRepository,
	trips repository.TripRepository,
	members repository.MemberRepository,
	logger *slog.Logger,
) *PackingService {
	return &PackingService{
		packing: packing,
		guard:   tripGuard{trips: trips, members: members},
		logger:  logger,
	}
}

// ListForUser returns the packing items of every trip the user can read.
func (s *PackingService) ListForUser(ctx context.Context, userID string) ([]model.PackingItem, error) {
	items, err := s.packing.ListPackingItemsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing packing items: %w", err)
	}
	return items, nil
}

func (s *PackingService) ListByTrip(ctx context.Context, userID, tripID string) ([]model.PackingItem, error) {
	if _, err := s.guard.requireRead(ctx, userID, tripID); err != nil {
		return nil, err
	}
	items, err := s.packing.ListPackingItemsByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("listing packing items of trip %s: %w", tripID, err)
	}
	return items, nil
}

func (s *PackingService) Create(ctx context.Context, userID, tripID string, in PackingItemInput) (*model.PackingItem, error) {
	if _, err := s.guard.requireWrite(ctx, userID, tripID); err != nil {
		return nil, err
	}

	item := &model.PackingItem{
		TripID:     tripID,
		Name:       strings.TrimSpace(in.Name),
		Quantity:   1,
		IsPacked:   in.IsPacked,
		CategoryID: emptyToNil(in.CategoryID),
	}
	if in.Quantity != nil {
		item.Quantity = *in.Quantity
	}
	if err := validatePackingItem(item); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, item.CategoryID); err != nil {
		return nil, err
	}

	if err := s.packing.CreatePackingItem(ctx, item); err != nil {
		return nil, fmt.Errorf("creating packing item: %w", err)
	}

	s.logger.Info("packing item created", slog.String("id", item.ID), slog.String("tripID", tripID))
	return item, nil
}

func (s *PackingService) Update(ctx context.Context, userID, id string, patch model.PackingItemPatch) (*model.PackingItem, error) {
	if patch.IsEmpty() {
		return nil, apperror.ValidationFailed("", "no fields to update")
	}

	item, err := s.packing.GetPackingItemByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.guard.requireWrite(ctx, userID, item.TripID); err != nil {
		return nil, err
	}

	patch.Name = trimOptional(patch.Name)
	patch.CategoryID = trimOptional(patch.CategoryID)
	patch.Apply(item)
	if err := validatePackingItem(item); err != nil {
		return nil, err
	}
	if patch.CategoryID != nil {
		if err := s.checkCategory(ctx, item.CategoryID); err != nil {
			return nil, err
		}
	}

	if err := s.packing.UpdatePackingItem(ctx, item); err != nil {
		return nil, fmt.Errorf("updating packing item: %w", err)
	}
	return item, nil
}

func (s *PackingService) Delete(ctx context.Context, userID, id string) error {
	item, err := s.packing.GetPackingItemByID(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.guard.requireWrite(ctx, userID, item.TripID); err != nil {
		return err
	}
	if err := s.packing.DeletePackingItem(ctx, id); err != nil {
		return fmt.Errorf("deleting packing item: %w", err)
	}
	return nil
}

// checkCategory turns an unknown category id into a field error instead of
// a foreign key failure from the store.
func (s *PackingService) checkCategory(ctx context.Context, categoryID *string) error {
	if categoryID == nil {
		return nil
	}
	_, err := s.packing.GetPackingCategoryByID(ctx, *categoryID)
	if errors.Is(err, apperror.ErrNotFound) {
		return apperror.ValidationFailed("categoryId", "unknown packing category")
	}
	if err != nil {
		return fmt.Errorf("checking packing category: %w", err)
	}
	return nil
}

// =========================================================================
// CATEGORIES
// =========================================================================

// Categories are global: every signed-in user sees the same list.

func (s *PackingService) ListCategories(ctx context.Context) ([]model.PackingCategory, error) {
	cats, err := s.packing.ListPackingCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing packing categories: %w", err)
	}
	return cats, nil
}

func (s *PackingService) CreateCategory(ctx context.Context, in CategoryInput) (*model.PackingCategory, error) {
	cat := &model.PackingCategory{
		Name:  strings.TrimSpace(in.Name),
		Color: strings.TrimSpace(in.Color),
	}
	if err := validateLabel(cat.Name, cat.Color); err != nil {
		return nil, err
	}
	if cat.Color == "" {
		cat.Color = DefaultColor
	}

	if err := s.packing.CreatePackingCategory(ctx, cat); err != nil {
		return nil, fmt.Errorf("creating packing category: %w", err)
	}

	s.logger.Info("packing category created", slog.String("id", cat.ID), slog.String("name", cat.Name))
	return cat, nil
}

// DeleteCategory removes a category. Items in it stay, uncategorised.
func (s *PackingService) DeleteCategory(ctx context.Context, id string) error {
	if err := s.packing.DeletePackingCategory(ctx, id); err != nil {
		return err
	}
	s.logger.Info("packing category deleted", slog.String("id", id))
	return nil
}
