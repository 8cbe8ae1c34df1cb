package users

import (
	"context"

	"github.com/Conversly/tripshare/internal/shared"
	"github.com/Conversly/tripshare/internal/types"
	"github.com/Conversly/tripshare/internal/utils"
	"github.com/google/uuid"
)

type Store interface {
	GetUserProfile(ctx context.Context, id uuid.UUID) (*types.UserProfile, error)
	UpdateUser(ctx context.Context, id uuid.UUID, patch types.UserPatch) (*types.User, error)
	SearchUsers(ctx context.Context, query string, limit, offset int) ([]types.User, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Profile returns the user's profile. Private fields are only kept when the
// viewer is the user.
func (s *Service) Profile(ctx context.Context, id, viewer uuid.UUID) (*types.UserProfile, error) {
	p, err := s.store.GetUserProfile(ctx, id)
	if err != nil {
		return nil, shared.StoreError(err, "user")
	}
	if viewer != id {
		p.User = p.User.Public()
	}
	return p, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateProfileRequest) (*types.User, error) {
	patch, err := req.Patch()
	if err != nil {
		return nil, err
	}
	u, err := s.store.UpdateUser(ctx, id, patch)
	if err != nil {
		return nil, shared.StoreError(err, "user")
	}
	return u, nil
}

func (s *Service) Search(ctx context.Context, q string, page utils.Page) ([]types.User, error) {
	q, err := ValidateSearch(q)
	if err != nil {
		return nil, err
	}
	found, err := s.store.SearchUsers(ctx, q, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	for i := range found {
		found[i] = found[i].Public()
	}
	return found, nil
}
