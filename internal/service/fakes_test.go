package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/sakif/trip-planner/internal/apperror"
	"github.com/sakif/trip-planner/internal/model"
)

// fakeStore is an in-memory stand-in for the sqlite store. It implements
// every repository interface so a whole service graph can share one.
type fakeStore struct {
	nextID     int
	users      map[string]*model.User
	trips      map[string]*model.Trip
	members    []model.TripMember
	schedules  map[string]*model.Schedule
	items      map[string]*model.PackingItem
	categories map[string]*model.PackingCategory
	tags       map[string]*model.TripTag
	weather    []model.WeatherCacheEntry

	// set to simulate database failures
	addMemberErr     error
	saveWeatherErr   error
	latestWeatherErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:      map[string]*model.User{},
		trips:      map[string]*model.Trip{},
		schedules:  map[string]*model.Schedule{},
		items:      map[string]*model.PackingItem{},
		categories: map[string]*model.PackingCategory{},
		tags:       map[string]*model.TripTag{},
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (f *fakeStore) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

// ---- users ----

func (f *fakeStore) CreateUser(_ context.Context, u *model.User) error {
	for _, existing := range f.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return apperror.ConflictMessage("username or email already taken")
		}
	}
	u.ID = f.id("user")
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	copied := *u
	f.users[u.ID] = &copied
	return nil
}

func (f *fakeStore) GetUserByID(_ context.Context, id string) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	copied := *u
	return &copied, nil
}

func (f *fakeStore) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("user", username)
}

func (f *fakeStore) GetUserByGitHubID(_ context.Context, githubID int64) (*model.User, error) {
	for _, u := range f.users {
		if u.GitHubID != nil && *u.GitHubID == githubID {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("user", fmt.Sprint(githubID))
}

func (f *fakeStore) UpdateUser(_ context.Context, u *model.User) error {
	if _, ok := f.users[u.ID]; !ok {
		return apperror.NotFound("user", u.ID)
	}
	for id, existing := range f.users {
		if id != u.ID && existing.Email == u.Email {
			return apperror.ConflictMessage("email already taken")
		}
	}
	copied := *u
	f.users[u.ID] = &copied
	return nil
}

// ---- trips ----

func (f *fakeStore) CreateTrip(_ context.Context, t *model.Trip) error {
	t.ID = f.id("trip")
	t.IsShared = false
	copied := *t
	f.trips[t.ID] = &copied
	return nil
}

func (f *fakeStore) GetTripByID(_ context.Context, id string) (*model.Trip, error) {
	t, ok := f.trips[id]
	if !ok {
		return nil, apperror.NotFound("trip", id)
	}
	copied := *t
	return &copied, nil
}

func (f *fakeStore) isMember(tripID, userID string) bool {
	for _, m := range f.members {
		if m.TripID == tripID && m.UserID == userID {
			return true
		}
	}
	return false
}

func (f *fakeStore) canSee(tripID, userID string) bool {
	t, ok := f.trips[tripID]
	return ok && (t.OwnerUserID == userID || f.isMember(tripID, userID))
}

func (f *fakeStore) ListTripsByUser(_ context.Context, userID string) ([]model.Trip, error) {
	out := []model.Trip{}
	for _, t := range f.trips {
		if f.canSee(t.ID, userID) {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate.Time) })
	return out, nil
}

func (f *fakeStore) ListSharedTrips(_ context.Context, userID string) ([]model.Trip, error) {
	out := []model.Trip{}
	for _, t := range f.trips {
		if t.OwnerUserID != userID && f.isMember(t.ID, userID) {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateTrip(_ context.Context, t *model.Trip) error {
	existing, ok := f.trips[t.ID]
	if !ok {
		return apperror.NotFound("trip", t.ID)
	}
	copied := *t
	copied.OwnerUserID = existing.OwnerUserID
	copied.IsShared = existing.IsShared
	f.trips[t.ID] = &copied
	return nil
}

func (f *fakeStore) DeleteTrip(_ context.Context, id string) error {
	if _, ok := f.trips[id]; !ok {
		return apperror.NotFound("trip", id)
	}
	delete(f.trips, id)
	kept := f.members[:0]
	for _, m := range f.members {
		if m.TripID != id {
			kept = append(kept, m)
		}
	}
	f.members = kept
	for sid, s := range f.schedules {
		if s.TripID == id {
			delete(f.schedules, sid)
		}
	}
	for iid, it := range f.items {
		if it.TripID == id {
			delete(f.items, iid)
		}
	}
	for tid, tg := range f.tags {
		if tg.TripID == id {
			delete(f.tags, tid)
		}
	}
	return nil
}

// ---- members ----

func (f *fakeStore) ListMembers(_ context.Context, tripID string) ([]model.TripMember, error) {
	out := []model.TripMember{}
	for _, m := range f.members {
		if m.TripID == tripID {
			if u, ok := f.users[m.UserID]; ok {
				m.Username = u.Username
			}
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) AddMember(_ context.Context, m *model.TripMember) error {
	if f.addMemberErr != nil {
		return f.addMemberErr
	}
	if f.isMember(m.TripID, m.UserID) {
		return apperror.ConflictMessage("trip already shared with this user")
	}
	m.ID = f.id("member")
	m.CreatedAt = time.Now()
	f.members = append(f.members, *m)
	if t, ok := f.trips[m.TripID]; ok {
		t.IsShared = true
	}
	return nil
}

func (f *fakeStore) RemoveMember(_ context.Context, tripID, userID string) error {
	for i, m := range f.members {
		if m.TripID == tripID && m.UserID == userID {
			f.members = append(f.members[:i], f.members[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("trip member", userID)
}

// ---- schedules ----

func (f *fakeStore) CreateSchedule(_ context.Context, s *model.Schedule) error {
	s.ID = f.id("sched")
	copied := *s
	f.schedules[s.ID] = &copied
	return nil
}

func (f *fakeStore) GetScheduleByID(_ context.Context, id string) (*model.Schedule, error) {
	s, ok := f.schedules[id]
	if !ok {
		return nil, apperror.NotFound("schedule", id)
	}
	copied := *s
	return &copied, nil
}

func (f *fakeStore) ListSchedulesByTrip(_ context.Context, tripID string) ([]model.Schedule, error) {
	out := []model.Schedule{}
	for _, s := range f.schedules {
		if s.TripID == tripID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeStore) ListSchedulesByUser(_ context.Context, userID string) ([]model.Schedule, error) {
	out := []model.Schedule{}
	for _, s := range f.schedules {
		if f.canSee(s.TripID, userID) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateSchedule(_ context.Context, s *model.Schedule) error {
	if _, ok := f.schedules[s.ID]; !ok {
		return apperror.NotFound("schedule", s.ID)
	}
	copied := *s
	f.schedules[s.ID] = &copied
	return nil
}

func (f *fakeStore) DeleteSchedule(_ context.Context, id string) error {
	if _, ok := f.schedules[id]; !ok {
		return apperror.NotFound("schedule", id)
	}
	delete(f.schedules, id)
	return nil
}

// ---- packing ----

func (f *fakeStore) CreatePackingItem(_ context.Context, item *model.PackingItem) error {
	item.ID = f.id("item")
	copied := *item
	f.items[item.ID] = &copied
	return nil
}

func (f *fakeStore) GetPackingItemByID(_ context.Context, id string) (*model.PackingItem, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, apperror.NotFound("packing item", id)
	}
	copied := *item
	return &copied, nil
}

func (f *fakeStore) ListPackingItemsByTrip(_ context.Context, tripID string) ([]model.PackingItem, error) {
	out := []model.PackingItem{}
	for _, item := range f.items {
		if item.TripID == tripID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (f *fakeStore) ListPackingItemsByUser(_ context.Context, userID string) ([]model.PackingItem, error) {
	out := []model.PackingItem{}
	for _, item := range f.items {
		if f.canSee(item.TripID, userID) {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdatePackingItem(_ context.Context, item *model.PackingItem) error {
	if _, ok := f.items[item.ID]; !ok {
		return apperror.NotFound("packing item", item.ID)
	}
	copied := *item
	f.items[item.ID] = &copied
	return nil
}

func (f *fakeStore) DeletePackingItem(_ context.Context, id string) error {
	if _, ok := f.items[id]; !ok {
		return apperror.NotFound("packing item", id)
	}
	delete(f.items, id)
	return nil
}

func (f *fakeStore) CreatePackingCategory(_ context.Context, c *model.PackingCategory) error {
	c.ID = f.id("cat")
	copied := *c
	f.categories[c.ID] = &copied
	return nil
}

func (f *fakeStore) GetPackingCategoryByID(_ context.Context, id string) (*model.PackingCategory, error) {
	c, ok := f.categories[id]
	if !ok {
		return nil, apperror.NotFound("packing category", id)
	}
	copied := *c
	return &copied, nil
}

func (f *fakeStore) ListPackingCategories(_ context.Context) ([]model.PackingCategory, error) {
	out := []model.PackingCategory{}
	for _, c := range f.categories {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeStore) DeletePackingCategory(_ context.Context, id string) error {
	if _, ok := f.categories[id]; !ok {
		return apperror.NotFound("packing category", id)
	}
	delete(f.categories, id)
	for _, item := range f.items {
		if item.CategoryID != nil && *item.CategoryID == id {
			item.CategoryID = nil
		}
	}
	return nil
}

// ---- tags ----

func (f *fakeStore) CreateTag(_ context.Context, tag *model.TripTag) error {
	tag.ID = f.id("tag")
	copied := *tag
	f.tags[tag.ID] = &copied
	return nil
}

func (f *fakeStore) GetTagByID(_ context.Context, id string) (*model.TripTag, error) {
	tag, ok := f.tags[id]
	if !ok {
		return nil, apperror.NotFound("tag", id)
	}
	copied := *tag
	return &copied, nil
}

func (f *fakeStore) ListTagsByTrip(_ context.Context, tripID string) ([]model.TripTag, error) {
	out := []model.TripTag{}
	for _, tag := range f.tags {
		if tag.TripID == tripID {
			out = append(out, *tag)
		}
	}
	return out, nil
}

func (f *fakeStore) ListTagsByUser(_ context.Context, userID string) ([]model.TripTag, error) {
	out := []model.TripTag{}
	for _, tag := range f.tags {
		if f.canSee(tag.TripID, userID) {
			out = append(out, *tag)
		}
	}
	return out, nil
}

func (f *fakeStore) DeleteTag(_ context.Context, id string) error {
	if _, ok := f.tags[id]; !ok {
		return apperror.NotFound("tag", id)
	}
	delete(f.tags, id)
	return nil
}

// ---- weather cache ----

func (f *fakeStore) LatestWeather(_ context.Context, location string) (*model.WeatherCacheEntry, error) {
	if f.latestWeatherErr != nil {
		return nil, f.latestWeatherErr
	}
	var latest *model.WeatherCacheEntry
	for i := range f.weather {
		e := &f.weather[i]
		if e.Location == location && (latest == nil || e.FetchedAt.After(latest.FetchedAt)) {
			latest = e
		}
	}
	if latest == nil {
		return nil, apperror.NotFound("weather cache", location)
	}
	copied := *latest
	return &copied, nil
}

func (f *fakeStore) SaveWeather(_ context.Context, entry *model.WeatherCacheEntry) error {
	if f.saveWeatherErr != nil {
		return f.saveWeatherErr
	}
	entry.ID = f.id("wx")
	f.weather = append(f.weather, *entry)
	return nil
}

var errDatabase = errors.New("database is locked")

// ---- fixtures ----

func (f *fakeStore) addUser(username string) *model.User {
	u := &model.User{Username: username, Email: username + "@example.com"}
	if err := f.CreateUser(context.Background(), u); err != nil {
		panic(err)
	}
	return u
}

func (f *fakeStore) addTrip(owner *model.User, name, destination string, start model.Date) *model.Trip {
	t := &model.Trip{
		OwnerUserID: owner.ID,
		Name:        name,
		Destination: destination,
		StartDate:   start,
		EndDate:     model.DateOf(start.AddDate(0, 0, 6)),
	}
	f.CreateTrip(context.Background(), t)
	return t
}

func (f *fakeStore) share(trip *model.Trip, user *model.User, role model.Role) {
	if err := f.AddMember(context.Background(), &model.TripMember{TripID: trip.ID, UserID: user.ID, Role: role}); err != nil {
		panic(err)
	}
}

func june(day int) model.Date {
	return model.NewDate(2025, time.June, day)
}

func ptr[T any](v T) *T { return &v }
