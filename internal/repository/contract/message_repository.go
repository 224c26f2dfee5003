package contract

import (
	"context"

	"realtime-chat-be/internal/entity"
	"realtime-chat-be/internal/repository/specification"
)

type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Message, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

type PrivateMessageRepository interface {
	Create(ctx context.Context, message *entity.PrivateMessage) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.PrivateMessage, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
