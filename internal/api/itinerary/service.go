package itinerary

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
	ReplaceItinerary(ctx context.Context, tripID uuid.UUID, days []types.ItineraryDay) ([]types.ItineraryDay, error)
	GetItinerary(ctx context.Context, tripID uuid.UUID) ([]types.ItineraryDay, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) Get(ctx context.Context, tripID, viewer uuid.UUID) ([]types.ItineraryDay, error) {
	if _, err := shared.VisibleTrip(ctx, s.store, tripID, viewer); err != nil {
		return nil, err
	}
	days, err := s.store.GetItinerary(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if days == nil {
		days = []types.ItineraryDay{}
	}
	return days, nil
}

// Replace swaps the whole itinerary of the trip for the one in req.
func (s *Service) Replace(ctx context.Context, tripID, user uuid.UUID, req ReplaceRequest) ([]types.ItineraryDay, error) {
	trip, err := shared.OwnedTrip(ctx, s.store, tripID, user)
	if err != nil {
		return nil, err
	}
	days, err := req.Normalize(trip)
	if err != nil {
		return nil, err
	}
	days, err = s.store.ReplaceItinerary(ctx, tripID, days)
	if err != nil {
		return nil, shared.StoreError(err, "trip")
	}

	items := 0
	for _, d := range days {
		items += len(d.Items)
	}
	utils.Zlog.Info("Itinerary replaced",
		zap.String("tripId", tripID.String()),
		zap.Int("days", len(days)),
		zap.Int("items", items))
	return days, nil
}
