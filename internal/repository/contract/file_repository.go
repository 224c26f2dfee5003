package contract

import (
	"context"

	"realtime-chat-be/internal/entity"
	"realtime-chat-be/internal/repository/specification"
)

type FileRepository interface {
	Create(ctx context.Context, file *entity.File) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.File, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
