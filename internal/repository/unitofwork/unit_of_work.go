package unitofwork

import (
	"context"

	"realtime-chat-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	PrivateChatRepository() contract.PrivateChatRepository
	MessageRepository() contract.MessageRepository
	PrivateMessageRepository() contract.PrivateMessageRepository
	FileRepository() contract.FileRepository
	UnreadCountRepository() contract.UnreadCountRepository
}
