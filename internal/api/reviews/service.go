package reviews

import (
	"context"
	"errors"
	"strings"

	"github.com/Conversly/tripshare/internal/loaders"
	"github.com/Conversly/tripshare/internal/shared"
	"github.com/Conversly/tripshare/internal/types"
	"github.com/Conversly/tripshare/internal/utils"
	"github.com/google/uuid"
)

type Store interface {
	shared.TripReader
	CreateReview(ctx context.Context, r *types.Review) error
	GetReview(ctx context.Context, id uuid.UUID) (*types.Review, error)
	UpdateReview(ctx context.Context, r *types.Review) error
	DeleteReview(ctx context.Context, id uuid.UUID) error
	ListReviews(ctx context.Context, tripID uuid.UUID, limit, offset int) ([]types.Review, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create adds user's review of a trip they can see. Owners cannot review
// their own trips and each user reviews a trip at most once.
func (s *Service) Create(ctx context.Context, tripID, user uuid.UUID, req CreateReviewRequest) (*types.Review, error) {
	trip, err := shared.VisibleTrip(ctx, s.store, tripID, user)
	if err != nil {
		return nil, err
	}
	if trip.UserID == user {
		return nil, utils.BadRequest("you cannot review your own trip")
	}

	review := &types.Review{
		TripID: tripID,
		UserID: user,
		Rating: req.Rating,
		Body:   strings.TrimSpace(req.Body),
	}
	if err := s.store.CreateReview(ctx, review); err != nil {
		if errors.Is(err, loaders.ErrConflict) {
			return nil, utils.Conflict("you have already reviewed this trip")
		}
		return nil, shared.StoreError(err, "trip")
	}
	return review, nil
}

func (s *Service) List(ctx context.Context, tripID, viewer uuid.UUID, page utils.Page) ([]types.Review, error) {
	if _, err := shared.VisibleTrip(ctx, s.store, tripID, viewer); err != nil {
		return nil, err
	}
	return s.store.ListReviews(ctx, tripID, page.Limit, page.Offset)
}

// authored loads a review that user wrote.
func (s *Service) authored(ctx context.Context, id, user uuid.UUID) (*types.Review, error) {
	review, err := s.store.GetReview(ctx, id)
	if err != nil {
		return nil, shared.StoreError(err, "review")
	}
	if review.UserID != user {
		return nil, utils.Forbidden("only the author can change this review")
	}
	return review, nil
}

func (s *Service) Update(ctx context.Context, id, user uuid.UUID, req UpdateReviewRequest) (*types.Review, error) {
	review, err := s.authored(ctx, id, user)
	if err != nil {
		return nil, err
	}
	if err := req.Apply(review); err != nil {
		return nil, err
	}
	if err := s.store.UpdateReview(ctx, review); err != nil {
		return nil, shared.StoreError(err, "review")
	}
	return review, nil
}

func (s *Service) Delete(ctx context.Context, id, user uuid.UUID) error {
	if _, err := s.authored(ctx, id, user); err != nil {
		return err
	}
	return shared.StoreError(s.store.DeleteReview(ctx, id), "review")
}
