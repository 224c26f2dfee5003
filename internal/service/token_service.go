package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"realtime-chat-be/internal/config"
	"realtime-chat-be/internal/entity"
	"realtime-chat-be/internal/pkg/logger"
	"realtime-chat-be/internal/repository/specification"
	"realtime-chat-be/internal/repository/unitofwork"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// UserLookup resolves a user id, returning nil for unknown or deleted users.
// Get may answer from a cache; Verify reads the store.
type UserLookup interface {
	Get(ctx context.Context, id uuid.UUID) (*entity.User, error)
	Verify(ctx context.Context, id uuid.UUID) (*entity.User, error)
}

type ITokenService interface {
	IssueAccessToken(ctx context.Context, user *entity.User) (string, time.Time, error)
	Authenticate(ctx context.Context, token string) (entity.Identity, error)
	Revoke(ctx context.Context, token string) error
	PurgeExpired(ctx context.Context) (int64, error)
}

type accessClaims struct {
	UserId   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type tokenService struct {
	uowFactory unitofwork.RepositoryFactory
	users      UserLookup
	cfg        config.AuthConfig
	logger     logger.ILogger
	now        func() time.Time
}

func NewTokenService(uowFactory unitofwork.RepositoryFactory, users UserLookup, cfg config.AuthConfig, log logger.ILogger) ITokenService {
	return &tokenService{
		uowFactory: uowFactory,
		users:      users,
		cfg:        cfg,
		logger:     log,
		now:        time.Now,
	}
}

func (s *tokenService) IssueAccessToken(ctx context.Context, user *entity.User) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.cfg.AccessTokenTTL)

	claims := accessClaims{
		UserId:   user.Id.String(),
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.Id.String(),
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JwtSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (s *tokenService) parse(token string) (*accessClaims, error) {
	claims := &accessClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JwtSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fail(ErrAuthentication, "Token expired")
		}
		return nil, fail(ErrAuthentication, "Invalid token")
	}
	if claims.ID == "" {
		return nil, fail(ErrAuthentication, "Invalid token")
	}
	return claims, nil
}

// Authenticate turns a bearer token into the identity of a live account.
// Revoked tokens and tokens of deleted users are rejected.
func (s *tokenService) Authenticate(ctx context.Context, token string) (entity.Identity, error) {
	claims, err := s.parse(token)
	if err != nil {
		return entity.Identity{}, err
	}

	userId, err := uuid.Parse(claims.UserId)
	if err != nil || userId == uuid.Nil {
		return entity.Identity{}, fail(ErrAuthentication, "Invalid token")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	revoked, err := uow.UserRepository().FindRevokedToken(ctx, specification.ByJti{Jti: claims.ID})
	if err != nil {
		return entity.Identity{}, fmt.Errorf("%w: revoked token lookup: %v", ErrPersistence, err)
	}
	if revoked != nil {
		return entity.Identity{}, fail(ErrAuthentication, "Token has been revoked")
	}

	user, err := s.users.Verify(ctx, userId)
	if err != nil {
		return entity.Identity{}, fmt.Errorf("%w: user lookup: %v", ErrPersistence, err)
	}
	if user == nil {
		return entity.Identity{}, fail(ErrAuthentication, "User not found")
	}

	return entity.Identity{UserId: user.Id, Username: user.Username}, nil
}

// Revoke blocks a still valid token until its natural expiry.
func (s *tokenService) Revoke(ctx context.Context, token string) error {
	claims, err := s.parse(token)
	if err != nil {
		return err
	}
	userId, err := uuid.Parse(claims.UserId)
	if err != nil {
		return fail(ErrAuthentication, "Invalid token")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	existing, err := uow.UserRepository().FindRevokedToken(ctx, specification.ByJti{Jti: claims.ID})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if existing != nil {
		return nil
	}

	err = uow.UserRepository().CreateRevokedToken(ctx, &entity.RevokedToken{
		Jti:       claims.ID,
		UserId:    userId,
		ExpiresAt: claims.ExpiresAt.Time,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.logger.Info("TOKEN", "Access token revoked", map[string]interface{}{
		"user_id": userId.String(),
		"jti":     claims.ID,
	})
	return nil
}

// PurgeExpired drops blocklist rows for tokens that expired on their own.
func (s *tokenService) PurgeExpired(ctx context.Context) (int64, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.UserRepository().DeleteRevokedTokens(ctx, specification.ExpiredBefore{At: s.now()})
}
