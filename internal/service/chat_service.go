package service

import (
	"context"
	"fmt"

	"realtime-chat-be/internal/entity"
	"realtime-chat-be/internal/pkg/logger"
	"realtime-chat-be/internal/repository/specification"
	"realtime-chat-be/internal/repository/unitofwork"
	"realtime-chat-be/pkg/events"

	"github.com/google/uuid"
)

// ReadResult tells the caller whether the reader had anything unread, and
// therefore whether the counterpart should get a receipt.
type ReadResult struct {
	Chat        *entity.PrivateChat
	HadUnread   bool
	Counterpart uuid.UUID
}

type IChatService interface {
	// ResolvePeer finds the other user of a private conversation and the
	// chat id the pair would use. The chat row itself may not exist yet.
	ResolvePeer(ctx context.Context, self entity.Identity, otherUserId uuid.UUID) (*entity.User, uuid.UUID, error)
	MarkRead(ctx context.Context, reader entity.Identity, chatId uuid.UUID) (*ReadResult, error)
}

type chatService struct {
	uowFactory unitofwork.RepositoryFactory
	users      UserLookup
	unread     IUnreadService
	publisher  events.Publisher
	logger     logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	users UserLookup,
	unread IUnreadService,
	publisher events.Publisher,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory: uowFactory,
		users:      users,
		unread:     unread,
		publisher:  publisher,
		logger:     log,
	}
}

func (s *chatService) ResolvePeer(ctx context.Context, self entity.Identity, otherUserId uuid.UUID) (*entity.User, uuid.UUID, error) {
	if self.IsAnonymous() {
		return nil, uuid.Nil, fail(ErrAuthorization, "Sign in to use private chats")
	}
	if otherUserId == uuid.Nil {
		return nil, uuid.Nil, fail(ErrValidation, "Other user ID required")
	}
	if otherUserId == self.UserId {
		return nil, uuid.Nil, fail(ErrValidation, "Cannot open a private chat with yourself")
	}

	other, err := s.users.Verify(ctx, otherUserId)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("%w: user lookup: %v", ErrPersistence, err)
	}
	if other == nil {
		return nil, uuid.Nil, fail(ErrNotFound, "User not found")
	}
	return other, entity.PrivateChatID(self.UserId, other.Id), nil
}

func (s *chatService) MarkRead(ctx context.Context, reader entity.Identity, chatId uuid.UUID) (*ReadResult, error) {
	if reader.IsAnonymous() {
		return nil, fail(ErrAuthorization, "Not authenticated")
	}

	chat, err := s.uowFactory.NewUnitOfWork(ctx).PrivateChatRepository().FindOne(ctx, specification.ByID{ID: chatId})
	if err != nil {
		return nil, fmt.Errorf("%w: chat lookup: %v", ErrPersistence, err)
	}
	if chat == nil {
		return nil, fail(ErrNotFound, "Chat not found")
	}
	if !chat.HasParticipant(reader.UserId) {
		return nil, fail(ErrAuthorization, "Not a participant of this chat")
	}

	had, err := s.unread.Reset(ctx, reader.UserId, chat.Id)
	if err != nil {
		return nil, err
	}

	result := &ReadResult{
		Chat:        chat,
		HadUnread:   had,
		Counterpart: chat.Counterpart(reader.UserId),
	}

	if had && s.publisher != nil {
		event := events.New(events.ChatRead, map[string]interface{}{
			"chat_id":   chat.Id.String(),
			"reader_id": reader.UserId.String(),
		})
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn("CHAT", "Failed to publish domain event", map[string]interface{}{
				"type":  event.EventType(),
				"error": err.Error(),
			})
		}
	}
	return result, nil
}
