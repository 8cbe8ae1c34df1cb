// Package testutil provides an in-memory stand-in for the Postgres store so
// handler tests run without a database.
package testutil

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Conversly/tripshare/internal/loaders"
	"github.com/Conversly/tripshare/internal/types"
	"github.com/google/uuid"
)

type MemStore struct {
	mu        sync.Mutex
	now       time.Time
	users     map[uuid.UUID]*types.User
	trips     map[uuid.UUID]*types.Trip
	itinerary map[uuid.UUID][]types.ItineraryDay
	photos    map[uuid.UUID]*types.Photo
	reviews   map[uuid.UUID]*types.Review
	likes     map[[2]uuid.UUID]bool
	follows   map[[2]uuid.UUID]bool

	// Fail, when set, is returned by every write.
	Fail error
}

func NewMemStore() *MemStore {
	return &MemStore{
		now:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		users:     map[uuid.UUID]*types.User{},
		trips:     map[uuid.UUID]*types.Trip{},
		itinerary: map[uuid.UUID][]types.ItineraryDay{},
		photos:    map[uuid.UUID]*types.Photo{},
		reviews:   map[uuid.UUID]*types.Review{},
		likes:     map[[2]uuid.UUID]bool{},
		follows:   map[[2]uuid.UUID]bool{},
	}
}

// tick returns a strictly increasing timestamp so ordering by creation time
// is deterministic.
func (m *MemStore) tick() time.Time {
	m.now = m.now.Add(time.Second)
	return m.now
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

// ====== USERS ======

// AddUser stores a user directly and returns it.
func (m *MemStore) AddUser(username string) *types.User {
	u := &types.User{Username: username, Email: username + "@example.com", DisplayName: username}
	if err := m.CreateUser(context.Background(), u); err != nil {
		panic(err)
	}
	return u
}

func (m *MemStore) CreateUser(_ context.Context, u *types.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return m.Fail
	}
	for _, existing := range m.users {
		if strings.EqualFold(existing.Username, u.Username) {
			return fmt.Errorf("%w: users_username_key", loaders.ErrConflict)
		}
		if strings.EqualFold(existing.Email, u.Email) {
			return fmt.Errorf("%w: users_email_key", loaders.ErrConflict)
		}
	}
	u.ID = uuid.New()
	u.CreatedAt = m.tick()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *MemStore) GetUser(_ context.Context, id uuid.UUID) (*types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, loaders.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MemStore) GetUserByLogin(_ context.Context, login string) (*types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Username, login) || strings.EqualFold(u.Email, login) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, loaders.ErrNotFound
}

func (m *MemStore) GetUserProfile(_ context.Context, id uuid.UUID) (*types.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, loaders.ErrNotFound
	}
	p := &types.UserProfile{User: *u}
	for _, t := range m.trips {
		if t.UserID == id {
			p.TripCount++
		}
	}
	for k := range m.follows {
		if k[1] == id {
			p.FollowerCount++
		}
		if k[0] == id {
			p.FollowingCount++
		}
	}
	return p, nil
}

func (m *MemStore) UpdateUser(_ context.Context, id uuid.UUID, patch types.UserPatch) (*types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return nil, m.Fail
	}
	u, ok := m.users[id]
	if !ok {
		return nil, loaders.ErrNotFound
	}
	if patch.DisplayName != nil {
		u.DisplayName = *patch.DisplayName
	}
	if patch.Bio != nil {
		u.Bio = *patch.Bio
	}
	if patch.AvatarURL != nil {
		u.AvatarURL = *patch.AvatarURL
	}
	u.UpdatedAt = m.tick()
	cp := *u
	return &cp, nil
}

func (m *MemStore) SearchUsers(_ context.Context, query string, limit, offset int) ([]types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := strings.ToLower(query)
	var out []types.User
	for _, u := range m.users {
		if strings.Contains(strings.ToLower(u.Username), q) || strings.Contains(strings.ToLower(u.DisplayName), q) {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		pi := strings.HasPrefix(strings.ToLower(out[i].Username), q)
		pj := strings.HasPrefix(strings.ToLower(out[j].Username), q)
		if pi != pj {
			return pi
		}
		return out[i].Username < out[j].Username
	})
	return page(out, limit, offset), nil
}

func (m *MemStore) usersIn(ids []uuid.UUID, limit, offset int) []types.User {
	out := make([]types.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return page(out, limit, offset)
}

// ====== TRIPS ======

// AddTrip stores a trip for owner directly and returns it.
func (m *MemStore) AddTrip(owner uuid.UUID, title string, visibility types.Visibility) *types.Trip {
	t := &types.Trip{UserID: owner, Title: title, Visibility: visibility}
	if err := m.CreateTrip(context.Background(), t); err != nil {
		panic(err)
	}
	return t
}

func (m *MemStore) CreateTrip(_ context.Context, t *types.Trip) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return m.Fail
	}
	if _, ok := m.users[t.UserID]; !ok {
		return fmt.Errorf("%w: trips_user_id_fkey", loaders.ErrNotFound)
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	t.ID = uuid.New()
	t.CreatedAt = m.tick()
	t.UpdatedAt = t.CreatedAt
	cp := *t
	m.trips[t.ID] = &cp
	return nil
}

// withAggregates fills in the review aggregates the SQL computes.
func (m *MemStore) withAggregates(t types.Trip) types.Trip {
	t.ReviewCount, t.AverageRating = 0, 0
	sum := 0
	for _, r := range m.reviews {
		if r.TripID == t.ID {
			t.ReviewCount++
			sum += r.Rating
		}
	}
	if t.ReviewCount > 0 {
		t.AverageRating = float64(sum) / float64(t.ReviewCount)
	}
	t.Tags = slices.Clone(t.Tags)
	return t
}

func (m *MemStore) GetTrip(_ context.Context, id uuid.UUID) (*types.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.trips[id]
	if !ok {
		return nil, loaders.ErrNotFound
	}
	cp := m.withAggregates(*t)
	return &cp, nil
}

func (m *MemStore) UpdateTrip(_ context.Context, t *types.Trip) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return m.Fail
	}
	stored, ok := m.trips[t.ID]
	if !ok {
		return loaders.ErrNotFound
	}
	stored.Title = t.Title
	stored.Description = t.Description
	stored.Destination = t.Destination
	stored.StartDate = t.StartDate
	stored.EndDate = t.EndDate
	stored.Visibility = t.Visibility
	stored.Tags = slices.Clone(t.Tags)
	stored.UpdatedAt = m.tick()
	t.UpdatedAt = stored.UpdatedAt
	return nil
}

func (m *MemStore) DeleteTrip(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.trips[id]; !ok {
		return loaders.ErrNotFound
	}
	delete(m.trips, id)
	delete(m.itinerary, id)
	for pid, p := range m.photos {
		if p.TripID == id {
			delete(m.photos, pid)
		}
	}
	for rid, r := range m.reviews {
		if r.TripID == id {
			delete(m.reviews, rid)
		}
	}
	for k := range m.likes {
		if k[1] == id {
			delete(m.likes, k)
		}
	}
	return nil
}

func (m *MemStore) SetCoverPhoto(_ context.Context, tripID uuid.UUID, photoID *uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.trips[tripID]
	if !ok {
		return loaders.ErrNotFound
	}
	if photoID != nil {
		if _, ok := m.photos[*photoID]; !ok {
			return fmt.Errorf("%w: trips_cover_photo_id_fkey", loaders.ErrNotFound)
		}
		id := *photoID
		photoID = &id
	}
	t.CoverPhotoID = photoID
	return nil
}

func (m *MemStore) sortedTrips(keep func(*types.Trip) bool) []types.Trip {
	var out []types.Trip
	for _, t := range m.trips {
		if keep(t) {
			out = append(out, m.withAggregates(*t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *MemStore) ListTrips(_ context.Context, f types.TripFilter) ([]types.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.sortedTrips(func(t *types.Trip) bool {
		if f.UserID != nil && t.UserID != *f.UserID {
			return false
		}
		if !slices.Contains(f.Visibilities, t.Visibility) {
			return false
		}
		if f.Query != "" && !strings.Contains(strings.ToLower(t.Title), strings.ToLower(f.Query)) {
			return false
		}
		if f.Destination != "" && !strings.Contains(strings.ToLower(t.Destination), strings.ToLower(f.Destination)) {
			return false
		}
		if f.Tag != "" && !slices.Contains(t.Tags, f.Tag) {
			return false
		}
		return true
	})
	return page(out, f.Limit, f.Offset), nil
}

func (m *MemStore) Feed(_ context.Context, userID uuid.UUID, limit, offset int) ([]types.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.sortedTrips(func(t *types.Trip) bool {
		return m.follows[[2]uuid.UUID{userID, t.UserID}] && t.Visibility != types.VisibilityPrivate
	})
	return page(out, limit, offset), nil
}

// ====== ITINERARY ======

func (m *MemStore) ReplaceItinerary(_ context.Context, tripID uuid.UUID, days []types.ItineraryDay) ([]types.ItineraryDay, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return nil, m.Fail
	}
	if _, ok := m.trips[tripID]; !ok {
		return nil, loaders.ErrNotFound
	}
	stored := make([]types.ItineraryDay, len(days))
	for i, d := range days {
		d.ID = uuid.New()
		d.TripID = tripID
		items := make([]types.ItineraryItem, len(d.Items))
		for j, it := range d.Items {
			it.ID = uuid.New()
			it.DayID = d.ID
			items[j] = it
		}
		d.Items = items
		days[i] = d
		stored[i] = d
	}
	m.itinerary[tripID] = stored
	return days, nil
}

func (m *MemStore) GetItinerary(_ context.Context, tripID uuid.UUID) ([]types.ItineraryDay, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.itinerary[tripID]), nil
}

// ====== PHOTOS ======

func (m *MemStore) CreatePhoto(_ context.Context, p *types.Photo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return m.Fail
	}
	if _, ok := m.trips[p.TripID]; !ok {
		return fmt.Errorf("%w: photos_trip_id_fkey", loaders.ErrNotFound)
	}
	p.ID = uuid.New()
	p.Status = types.PhotoPending
	p.CreatedAt = m.tick()
	cp := *p
	m.photos[p.ID] = &cp
	return nil
}

func (m *MemStore) GetPhoto(_ context.Context, id uuid.UUID) (*types.Photo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.photos[id]
	if !ok {
		return nil, loaders.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MemStore) ListPhotos(_ context.Context, tripID, viewer uuid.UUID) ([]types.Photo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []types.Photo
	for _, p := range m.photos {
		if p.TripID == tripID && (p.Status == types.PhotoReady || p.UserID == viewer) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if out == nil {
		out = []types.Photo{}
	}
	return out, nil
}

func (m *MemStore) UpdatePhotoStatus(_ context.Context, id uuid.UUID, status types.PhotoStatus, storagePath, checksum string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return m.Fail
	}
	p, ok := m.photos[id]
	if !ok {
		return loaders.ErrNotFound
	}
	p.Status = status
	p.StoragePath = storagePath
	p.Checksum = checksum
	return nil
}

func (m *MemStore) DeletePhoto(_ context.Context, id uuid.UUID) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.photos[id]
	if !ok {
		return "", loaders.ErrNotFound
	}
	delete(m.photos, id)
	for _, t := range m.trips {
		if t.CoverPhotoID != nil && *t.CoverPhotoID == id {
			t.CoverPhotoID = nil
		}
	}
	return p.StoragePath, nil
}

// ====== REVIEWS ======

func (m *MemStore) CreateReview(_ context.Context, r *types.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return m.Fail
	}
	if _, ok := m.trips[r.TripID]; !ok {
		return fmt.Errorf("%w: reviews_trip_id_fkey", loaders.ErrNotFound)
	}
	for _, existing := range m.reviews {
		if existing.TripID == r.TripID && existing.UserID == r.UserID {
			return fmt.Errorf("%w: reviews_trip_user_key", loaders.ErrConflict)
		}
	}
	r.ID = uuid.New()
	r.CreatedAt = m.tick()
	r.UpdatedAt = r.CreatedAt
	cp := *r
	m.reviews[r.ID] = &cp
	return nil
}

func (m *MemStore) GetReview(_ context.Context, id uuid.UUID) (*types.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reviews[id]
	if !ok {
		return nil, loaders.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *MemStore) UpdateReview(_ context.Context, r *types.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.reviews[r.ID]
	if !ok {
		return loaders.ErrNotFound
	}
	stored.Rating = r.Rating
	stored.Body = r.Body
	stored.UpdatedAt = m.tick()
	r.UpdatedAt = stored.UpdatedAt
	return nil
}

func (m *MemStore) DeleteReview(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reviews[id]; !ok {
		return loaders.ErrNotFound
	}
	delete(m.reviews, id)
	return nil
}

func (m *MemStore) ListReviews(_ context.Context, tripID uuid.UUID, limit, offset int) ([]types.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []types.Review{}
	for _, r := range m.reviews {
		if r.TripID == tripID {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, limit, offset), nil
}

// ====== SOCIAL ======

func (m *MemStore) Like(_ context.Context, userID, tripID uuid.UUID) (int, error) {
	return m.toggleLike(userID, tripID, true)
}

func (m *MemStore) Unlike(_ context.Context, userID, tripID uuid.UUID) (int, error) {
	return m.toggleLike(userID, tripID, false)
}

func (m *MemStore) toggleLike(userID, tripID uuid.UUID, like bool) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return 0, m.Fail
	}
	t, ok := m.trips[tripID]
	if !ok {
		return 0, loaders.ErrNotFound
	}
	key := [2]uuid.UUID{userID, tripID}
	switch {
	case like && !m.likes[key]:
		m.likes[key] = true
		t.LikeCount++
	case !like && m.likes[key]:
		delete(m.likes, key)
		t.LikeCount--
	}
	return t.LikeCount, nil
}

func (m *MemStore) ListLikers(_ context.Context, tripID uuid.UUID, limit, offset int) ([]types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []uuid.UUID
	for k := range m.likes {
		if k[1] == tripID {
			ids = append(ids, k[0])
		}
	}
	return m.usersIn(ids, limit, offset), nil
}

func (m *MemStore) Follow(_ context.Context, followerID, followeeID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return m.Fail
	}
	if followerID == followeeID {
		return fmt.Errorf("%w: follows_not_self", loaders.ErrConflict)
	}
	if _, ok := m.users[followeeID]; !ok {
		return fmt.Errorf("%w: follows_followee_id_fkey", loaders.ErrNotFound)
	}
	m.follows[[2]uuid.UUID{followerID, followeeID}] = true
	return nil
}

func (m *MemStore) Unfollow(_ context.Context, followerID, followeeID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.follows, [2]uuid.UUID{followerID, followeeID})
	return nil
}

func (m *MemStore) IsFollowing(_ context.Context, followerID, followeeID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.follows[[2]uuid.UUID{followerID, followeeID}], nil
}

func (m *MemStore) ListFollowers(_ context.Context, userID uuid.UUID, limit, offset int) ([]types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []uuid.UUID
	for k := range m.follows {
		if k[1] == userID {
			ids = append(ids, k[0])
		}
	}
	return m.usersIn(ids, limit, offset), nil
}

func (m *MemStore) ListFollowing(_ context.Context, userID uuid.UUID, limit, offset int) ([]types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []uuid.UUID
	for k := range m.follows {
		if k[0] == userID {
			ids = append(ids, k[1])
		}
	}
	return m.usersIn(ids, limit, offset), nil
}

func (m *MemStore) Ping(context.Context) error {
	return nil
}
