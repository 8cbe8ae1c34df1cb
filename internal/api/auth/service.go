package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/Conversly/tripshare/internal/loaders"
	"github.com/Conversly/tripshare/internal/metrics"
	"github.com/Conversly/tripshare/internal/shared"
	"github.com/Conversly/tripshare/internal/types"
	"github.com/Conversly/tripshare/internal/utils"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type Store interface {
	CreateUser(ctx context.Context, u *types.User) error
	GetUserByLogin(ctx context.Context, login string) (*types.User, error)
}

type Service struct {
	store  Store
	tokens *shared.TokenManager
	cost   int
}

func NewService(store Store, tokens *shared.TokenManager) *Service {
	return &Service{store: store, tokens: tokens, cost: bcrypt.DefaultCost}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*types.AuthResponse, error) {
	req.Normalize()

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, err
	}

	user := &types.User{
		Username:     req.Username,
		Email:        req.Email,
		DisplayName:  req.DisplayName,
		PasswordHash: string(hash),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		metrics.RecordAuth("register", false)
		if errors.Is(err, loaders.ErrConflict) {
			if strings.Contains(err.Error(), "email") {
				return nil, utils.Conflict("email is already registered")
			}
			return nil, utils.Conflict("username is already taken")
		}
		return nil, err
	}

	metrics.RecordAuth("register", true)
	utils.Zlog.Info("User registered",
		zap.String("userId", user.ID.String()),
		zap.String("username", user.Username))
	return s.issue(user)
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*types.AuthResponse, error) {
	req.Normalize()

	user, err := s.store.GetUserByLogin(ctx, req.Login)
	if err != nil {
		metrics.RecordAuth("login", false)
		if errors.Is(err, loaders.ErrNotFound) {
			return nil, utils.Unauthorized("invalid login or password")
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		metrics.RecordAuth("login", false)
		return nil, utils.Unauthorized("invalid login or password")
	}

	metrics.RecordAuth("login", true)
	return s.issue(user)
}

func (s *Service) issue(user *types.User) (*types.AuthResponse, error) {
	token, expires, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &types.AuthResponse{Token: token, ExpiresAt: expires, User: *user}, nil
}
