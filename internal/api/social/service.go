package social

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
	GetUser(ctx context.Context, id uuid.UUID) (*types.User, error)
	Like(ctx context.Context, userID, tripID uuid.UUID) (int, error)
	Unlike(ctx context.Context, userID, tripID uuid.UUID) (int, error)
	ListLikers(ctx context.Context, tripID uuid.UUID, limit, offset int) ([]types.User, error)
	Follow(ctx context.Context, followerID, followeeID uuid.UUID) error
	Unfollow(ctx context.Context, followerID, followeeID uuid.UUID) error
	ListFollowers(ctx context.Context, userID uuid.UUID, limit, offset int) ([]types.User, error)
	ListFollowing(ctx context.Context, userID uuid.UUID, limit, offset int) ([]types.User, error)
	Feed(ctx context.Context, userID uuid.UUID, limit, offset int) ([]types.Trip, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// SetLike likes or unlikes a trip the user can see. Repeating either is a
// no-op; the current like count is returned.
func (s *Service) SetLike(ctx context.Context, tripID, user uuid.UUID, liked bool) (*LikeResponse, error) {
	if _, err := shared.VisibleTrip(ctx, s.store, tripID, user); err != nil {
		return nil, err
	}
	var (
		count int
		err   error
	)
	if liked {
		count, err = s.store.Like(ctx, user, tripID)
	} else {
		count, err = s.store.Unlike(ctx, user, tripID)
	}
	if err != nil {
		return nil, shared.StoreError(err, "trip")
	}
	return &LikeResponse{Liked: liked, LikeCount: count}, nil
}

func (s *Service) Likers(ctx context.Context, tripID, viewer uuid.UUID, page utils.Page) ([]types.User, error) {
	if _, err := shared.VisibleTrip(ctx, s.store, tripID, viewer); err != nil {
		return nil, err
	}
	users, err := s.store.ListLikers(ctx, tripID, page.Limit, page.Offset)
	return publicUsers(users), err
}

// SetFollow follows or unfollows another user. Both are idempotent.
func (s *Service) SetFollow(ctx context.Context, follower, followee uuid.UUID, follow bool) (*FollowResponse, error) {
	if follower == followee {
		return nil, utils.BadRequest("you cannot follow yourself")
	}
	if _, err := s.store.GetUser(ctx, followee); err != nil {
		return nil, shared.StoreError(err, "user")
	}

	var err error
	if follow {
		err = s.store.Follow(ctx, follower, followee)
	} else {
		err = s.store.Unfollow(ctx, follower, followee)
	}
	if err != nil {
		return nil, shared.StoreError(err, "user")
	}
	utils.Zlog.Debug("Follow changed",
		zap.String("follower", follower.String()),
		zap.String("followee", followee.String()),
		zap.Bool("following", follow))
	return &FollowResponse{Following: follow}, nil
}

func (s *Service) Followers(ctx context.Context, userID uuid.UUID, page utils.Page) ([]types.User, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, shared.StoreError(err, "user")
	}
	users, err := s.store.ListFollowers(ctx, userID, page.Limit, page.Offset)
	return publicUsers(users), err
}

func (s *Service) Following(ctx context.Context, userID uuid.UUID, page utils.Page) ([]types.User, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, shared.StoreError(err, "user")
	}
	users, err := s.store.ListFollowing(ctx, userID, page.Limit, page.Offset)
	return publicUsers(users), err
}

// Feed lists the newest trips of the users that user follows, leaving out
// their private trips.
func (s *Service) Feed(ctx context.Context, user uuid.UUID, page utils.Page) ([]types.Trip, error) {
	return s.store.Feed(ctx, user, page.Limit, page.Offset)
}

func publicUsers(users []types.User) []types.User {
	for i := range users {
		users[i] = users[i].Public()
	}
	return users
}
