package contract

import (
	"context"

	"realtime-chat-be/internal/entity"
	"realtime-chat-be/internal/repository/specification"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error)

	// Token blocklist
	CreateRevokedToken(ctx context.Context, token *entity.RevokedToken) error
	FindRevokedToken(ctx context.Context, specs ...specification.Specification) (*entity.RevokedToken, error)
	DeleteRevokedTokens(ctx context.Context, specs ...specification.Specification) (int64, error)
}
