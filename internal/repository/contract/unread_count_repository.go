package contract

import (
	"context"

	"github.com/google/uuid"
)

type UnreadCountRepository interface {
	// Increment creates the counter at 1 or adds one in a single statement
	// and returns the resulting value.
	Increment(ctx context.Context, userId, chatId uuid.UUID) (int, error)
	// Reset zeroes a positive counter. It reports whether anything was unread.
	Reset(ctx context.Context, userId, chatId uuid.UUID) (bool, error)
	// Get returns 0 for a counter that was never created.
	Get(ctx context.Context, userId, chatId uuid.UUID) (int, error)
}
