package service

import (
	"context"
	"fmt"
	"sort"

	"realtime-chat-be/internal/dto"
	"realtime-chat-be/internal/entity"
	"realtime-chat-be/internal/repository/specification"
	"realtime-chat-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// IUnreadService reads and clears the unread ledger. Increments happen in the
// message transaction through UnreadCountRepository.
type IUnreadService interface {
	Reset(ctx context.Context, userId, chatId uuid.UUID) (bool, error)
	Get(ctx context.Context, userId, chatId uuid.UUID) (int, error)
	ListChats(ctx context.Context, userId uuid.UUID) ([]dto.ChatSummaryResponse, error)
}

type unreadService struct {
	uowFactory unitofwork.RepositoryFactory
	users      UserLookup
}

func NewUnreadService(uowFactory unitofwork.RepositoryFactory, users UserLookup) IUnreadService {
	return &unreadService{
		uowFactory: uowFactory,
		users:      users,
	}
}

func (s *unreadService) Reset(ctx context.Context, userId, chatId uuid.UUID) (bool, error) {
	had, err := s.uowFactory.NewUnitOfWork(ctx).UnreadCountRepository().Reset(ctx, userId, chatId)
	if err != nil {
		return false, fmt.Errorf("%w: unread reset: %v", ErrPersistence, err)
	}
	return had, nil
}

func (s *unreadService) Get(ctx context.Context, userId, chatId uuid.UUID) (int, error) {
	count, err := s.uowFactory.NewUnitOfWork(ctx).UnreadCountRepository().Get(ctx, userId, chatId)
	if err != nil {
		return 0, fmt.Errorf("%w: unread get: %v", ErrPersistence, err)
	}
	return count, nil
}

// ListChats returns the user's private chats, most recently active first,
// each with the counterpart and the user's unread count.
func (s *unreadService) ListChats(ctx context.Context, userId uuid.UUID) ([]dto.ChatSummaryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	chats, err := uow.PrivateChatRepository().FindAll(ctx, specification.ByParticipant{UserID: userId})
	if err != nil {
		return nil, fmt.Errorf("%w: chat list: %v", ErrPersistence, err)
	}

	result := make([]dto.ChatSummaryResponse, 0, len(chats))
	for _, chat := range chats {
		other, err := s.users.Get(ctx, chat.Counterpart(userId))
		if err != nil {
			return nil, fmt.Errorf("%w: counterpart lookup: %v", ErrPersistence, err)
		}
		if other == nil {
			// counterpart deleted their account
			continue
		}

		count, err := s.Get(ctx, userId, chat.Id)
		if err != nil {
			return nil, err
		}

		summary := dto.ChatSummaryResponse{
			ChatId:       chat.Id,
			OtherUser:    toUserSummary(other),
			UnreadCount:  count,
			LastActivity: chat.CreatedAt,
		}

		last, err := uow.PrivateMessageRepository().FindOne(ctx,
			specification.ByChatID{ChatID: chat.Id},
			specification.OrderBy{Field: "created_at", Desc: true},
		)
		if err != nil {
			return nil, fmt.Errorf("%w: last message: %v", ErrPersistence, err)
		}
		if last != nil {
			summary.LastMessage = lastMessageText(last)
			summary.LastActivity = last.CreatedAt
		}

		result = append(result, summary)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].LastActivity.After(result[j].LastActivity)
	})
	return result, nil
}

func lastMessageText(m *entity.PrivateMessage) string {
	if m.Content == "" {
		return "Sent a file"
	}
	return truncateRunes(m.Content, 50)
}
