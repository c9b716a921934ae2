// Package repository declares the storage interfaces the service layer
// depends on. The sqlite subpackage is the only production implementation.
package repository

import (
	"context"

	"github.com/sakif/trip-planner/internal/model"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByGitHubID(ctx context.Context, githubID int64) (*model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
}

type TripRepository interface {
	CreateTrip(ctx context.Context, trip *model.Trip) error
	GetTripByID(ctx context.Context, id string) (*model.Trip, error)
	// ListTripsByUser returns trips the user owns or is a member of, once each.
	ListTripsByUser(ctx context.Context, userID string) ([]model.Trip, error)
	// ListSharedTrips returns trips the user is a member of but does not own.
	ListSharedTrips(ctx context.Context, userID string) ([]model.Trip, error)
	UpdateTrip(ctx context.Context, trip *model.Trip) error
	// DeleteTrip removes the trip and every schedule, packing item, tag and
	// membership that belongs to it.
	DeleteTrip(ctx context.Context, id string) error
}

type MemberRepository interface {
	ListMembers(ctx context.Context, tripID string) ([]model.TripMember, error)
	// AddMember inserts the membership and marks the trip shared in one
	// transaction. A duplicate (trip, user) pair is an apperror.ErrConflict.
	AddMember(ctx context.Context, member *model.TripMember) error
	RemoveMember(ctx context.Context, tripID, userID string) error
}

type ScheduleRepository interface {
	CreateSchedule(ctx context.Context, s *model.Schedule) error
	GetScheduleByID(ctx context.Context, id string) (*model.Schedule, error)
	ListSchedulesByTrip(ctx context.Context, tripID string) ([]model.Schedule, error)
	ListSchedulesByUser(ctx context.Context, userID string) ([]model.Schedule, error)
	UpdateSchedule(ctx context.Context, s *model.Schedule) error
	DeleteSchedule(ctx context.Context, id string) error
}

type PackingRepository interface {
	CreatePackingItem(ctx context.Context, item *model.PackingItem) error
	GetPackingItemByID(ctx context.Context, id string) (*model.PackingItem, error)
	ListPackingItemsByTrip(ctx context.Context, tripID string) ([]model.PackingItem, error)
	ListPackingItemsByUser(ctx context.Context, userID string) ([]model.PackingItem, error)
	UpdatePackingItem(ctx context.Context, item *model.PackingItem) error
	DeletePackingItem(ctx context.Context, id string) error

	CreatePackingCategory(ctx context.Context, c *model.PackingCategory) error
	GetPackingCategoryByID(ctx context.Context, id string) (*model.PackingCategory, error)
	ListPackingCategories(ctx context.Context) ([]model.PackingCategory, error)
	DeletePackingCategory(ctx context.Context, id string) error
}

type TagRepository interface {
	CreateTag(ctx context.Context, tag *model.TripTag) error
	GetTagByID(ctx context.Context, id string) (*model.TripTag, error)
	ListTagsByTrip(ctx context.Context, tripID string) ([]model.TripTag, error)
	ListTagsByUser(ctx context.Context, userID string) ([]model.TripTag, error)
	DeleteTag(ctx context.Context, id string) error
}

type WeatherCacheRepository interface {
	// LatestWeather returns the newest cache row for the exact location
	// string, or apperror.ErrNotFound when there is none.
	LatestWeather(ctx context.Context, location string) (*model.WeatherCacheEntry, error)
	SaveWeather(ctx context.Context, entry *model.WeatherCacheEntry) error
}
