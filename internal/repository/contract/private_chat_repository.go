package contract

import (
	"context"

	"realtime-chat-be/internal/entity"
	"realtime-chat-be/internal/repository/specification"
)

type PrivateChatRepository interface {
	// EnsureChat inserts the chat unless a row for the same pair already
	// exists. Safe to race: the loser's insert is discarded by the store.
	EnsureChat(ctx context.Context, chat *entity.PrivateChat) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.PrivateChat, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.PrivateChat, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
