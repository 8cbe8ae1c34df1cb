package trips

import (
	"context"

	"github.com/Conversly/tripshare/internal/shared"
	"github.com/Conversly/tripshare/internal/types"
	"github.com/Conversly/tripshare/internal/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Store interface {
	shared.TripReader
	CreateTrip(ctx context.Context, t *types.Trip) error
	UpdateTrip(ctx context.Context, t *types.Trip) error
	DeleteTrip(ctx context.Context, id uuid.UUID) error
	ListTrips(ctx context.Context, f types.TripFilter) ([]types.Trip, error)
	SetCoverPhoto(ctx context.Context, tripID uuid.UUID, photoID *uuid.UUID) error
	GetPhoto(ctx context.Context, id uuid.UUID) (*types.Photo, error)
	ListPhotos(ctx context.Context, tripID, viewer uuid.UUID) ([]types.Photo, error)
}

// FileRemover deletes stored photo files.
type FileRemover interface {
	Remove(rel string) error
}

type Service struct {
	store Store
	files FileRemover
}

func NewService(store Store, files FileRemover) *Service {
	return &Service{store: store, files: files}
}

func (s *Service) Create(ctx context.Context, owner uuid.UUID, req CreateTripRequest) (*types.Trip, error) {
	trip, err := req.Trip(owner)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateTrip(ctx, trip); err != nil {
		return nil, shared.StoreError(err, "user")
	}
	utils.Zlog.Info("Trip created",
		zap.String("tripId", trip.ID.String()),
		zap.String("userId", owner.String()),
		zap.String("visibility", string(trip.Visibility)))
	return trip, nil
}

func (s *Service) Get(ctx context.Context, id, viewer uuid.UUID) (*types.Trip, error) {
	return shared.VisibleTrip(ctx, s.store, id, viewer)
}

func (s *Service) Update(ctx context.Context, id, user uuid.UUID, req UpdateTripRequest) (*types.Trip, error) {
	trip, err := shared.OwnedTrip(ctx, s.store, id, user)
	if err != nil {
		return nil, err
	}
	if err := req.Apply(trip); err != nil {
		return nil, err
	}
	if err := s.store.UpdateTrip(ctx, trip); err != nil {
		return nil, shared.StoreError(err, "trip")
	}
	return trip, nil
}

// Delete removes the trip with everything hanging off it, then the trip's
// photo files. Files that cannot be removed are logged and left behind.
func (s *Service) Delete(ctx context.Context, id, user uuid.UUID) error {
	if _, err := shared.OwnedTrip(ctx, s.store, id, user); err != nil {
		return err
	}
	photos, err := s.store.ListPhotos(ctx, id, user)
	if err != nil {
		return err
	}
	if err := s.store.DeleteTrip(ctx, id); err != nil {
		return shared.StoreError(err, "trip")
	}

	for _, p := range photos {
		if p.StoragePath == "" || s.files == nil {
			continue
		}
		if err := s.files.Remove(p.StoragePath); err != nil {
			utils.Zlog.Warn("Failed to remove photo file",
				zap.String("tripId", id.String()),
				zap.String("photoId", p.ID.String()),
				zap.Error(err))
		}
	}
	utils.Zlog.Info("Trip deleted",
		zap.String("tripId", id.String()),
		zap.Int("photos", len(photos)))
	return nil
}

// List returns trips matching q that viewer may see. Without a user filter
// only public trips are listed; a user's own listing includes everything and
// followers also see followers-only trips.
func (s *Service) List(ctx context.Context, viewer uuid.UUID, q ListQuery) ([]types.Trip, error) {
	filter := types.TripFilter{
		UserID:       q.UserID,
		Query:        q.Query,
		Destination:  q.Destination,
		Tag:          q.Tag,
		Visibilities: []types.Visibility{types.VisibilityPublic},
		Limit:        q.Limit,
		Offset:       q.Offset,
	}
	if q.UserID != nil && viewer != uuid.Nil {
		if *q.UserID == viewer {
			filter.Visibilities = append(filter.Visibilities, types.VisibilityFollowers, types.VisibilityPrivate)
		} else if follows, err := s.store.IsFollowing(ctx, viewer, *q.UserID); err != nil {
			return nil, err
		} else if follows {
			filter.Visibilities = append(filter.Visibilities, types.VisibilityFollowers)
		}
	}
	return s.store.ListTrips(ctx, filter)
}

// SetCover makes photoID the trip's cover, or clears it when photoID is nil.
// The photo must be a ready photo of the same trip.
func (s *Service) SetCover(ctx context.Context, tripID, user uuid.UUID, photoID *uuid.UUID) (*types.Trip, error) {
	trip, err := shared.OwnedTrip(ctx, s.store, tripID, user)
	if err != nil {
		return nil, err
	}
	if photoID != nil {
		photo, err := s.store.GetPhoto(ctx, *photoID)
		if err != nil {
			return nil, shared.StoreError(err, "photo")
		}
		if photo.TripID != tripID {
			return nil, utils.BadRequest("photo does not belong to this trip")
		}
		if photo.Status != types.PhotoReady {
			return nil, utils.BadRequest("photo is still %s", photo.Status)
		}
	}
	if err := s.store.SetCoverPhoto(ctx, tripID, photoID); err != nil {
		return nil, shared.StoreError(err, "trip")
	}
	trip.CoverPhotoID = photoID
	return trip, nil
}
