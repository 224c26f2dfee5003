package service

import (
	"context"
	"fmt"
	"path"
	"strings"
	"unicode/utf8"

	"realtime-chat-be/internal/config"
	"realtime-chat-be/internal/dto"
	"realtime-chat-be/internal/entity"
	"realtime-chat-be/internal/pkg/logger"
	"realtime-chat-be/internal/pkg/serverutils"
	"realtime-chat-be/internal/repository/unitofwork"
	"realtime-chat-be/internal/tracer"
	"realtime-chat-be/pkg/events"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// PrivateDelivery is what the realtime layer needs to fan out a committed
// private message.
type PrivateDelivery struct {
	Message         *dto.MessageResponse
	ChatId          uuid.UUID
	Recipient       *entity.User
	RecipientUnread int
}

type IMessageService interface {
	SendPublic(ctx context.Context, sender entity.Identity, content string, file *dto.FilePayload) (*dto.MessageResponse, error)
	SendPrivate(ctx context.Context, sender entity.Identity, recipientId uuid.UUID, content string, file *dto.FilePayload) (*PrivateDelivery, error)
	// Preview is the short text shown to users outside the public room.
	Preview(msg *dto.MessageResponse) string
}

type messageService struct {
	uowFactory unitofwork.RepositoryFactory
	users      UserLookup
	publisher  events.Publisher
	cfg        config.ChatConfig
	logger     logger.ILogger
	tracer     trace.Tracer
}

func NewMessageService(
	uowFactory unitofwork.RepositoryFactory,
	users UserLookup,
	publisher events.Publisher,
	cfg config.ChatConfig,
	log logger.ILogger,
) IMessageService {
	return &messageService{
		uowFactory: uowFactory,
		users:      users,
		publisher:  publisher,
		cfg:        cfg,
		logger:     log,
		tracer:     tracer.Tracer("message"),
	}
}

// validate returns the trimmed content or a validation error. Either text or
// a file must be present.
func (s *messageService) validate(content string, file *dto.FilePayload) (string, error) {
	content = strings.TrimSpace(content)
	if utf8.RuneCountInString(content) > s.cfg.MaxContentLength {
		return "", fail(ErrValidation, "Message content exceeds %d characters", s.cfg.MaxContentLength)
	}

	if file == nil {
		if content == "" {
			return "", fail(ErrValidation, "Message content cannot be empty")
		}
		return content, nil
	}

	if err := serverutils.ValidateStruct(file); err != nil {
		return "", fail(ErrValidation, "%s", err.Error())
	}
	if file.Size > s.cfg.MaxFileSize {
		return "", fail(ErrValidation, "File exceeds maximum size of %d bytes", s.cfg.MaxFileSize)
	}
	ext := strings.ToLower(path.Ext(file.Filename))
	if !s.extensionAllowed(ext) {
		return "", fail(ErrValidation, "File type not allowed: %q", ext)
	}
	return content, nil
}

func (s *messageService) extensionAllowed(ext string) bool {
	if ext == "" {
		return false
	}
	for _, allowed := range s.cfg.AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

func (s *messageService) requireAuthor(sender entity.Identity) error {
	if sender.IsAnonymous() {
		return fail(ErrAuthorization, "Sign in to send messages")
	}
	return nil
}

func (s *messageService) SendPublic(ctx context.Context, sender entity.Identity, content string, file *dto.FilePayload) (*dto.MessageResponse, error) {
	ctx, span := s.tracer.Start(ctx, "MessageService.SendPublic",
		trace.WithAttributes(attribute.String("sender.id", sender.UserId.String()), attribute.Bool("has_file", file != nil)))
	defer span.End()

	if err := s.requireAuthor(sender); err != nil {
		return nil, err
	}
	content, err := s.validate(content, file)
	if err != nil {
		return nil, err
	}

	author, err := s.users.Verify(ctx, sender.UserId)
	if err != nil {
		return nil, s.persistFailure(span, "author lookup", err)
	}
	if author == nil {
		return nil, fail(ErrNotFound, "User not found")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, s.persistFailure(span, "begin", err)
	}
	defer uow.Rollback()

	msg := &entity.Message{UserId: author.Id, Content: content}
	if err := uow.MessageRepository().Create(ctx, msg); err != nil {
		return nil, s.persistFailure(span, "message insert", err)
	}

	var stored *entity.File
	if file != nil {
		stored = newFile(file, author.Id)
		stored.PublicMessageId = &msg.Id
		if err := uow.FileRepository().Create(ctx, stored); err != nil {
			return nil, s.persistFailure(span, "file insert", err)
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, s.persistFailure(span, "commit", err)
	}

	res := toMessageResponse(msg.Id, nil, msg.Content, msg.CreatedAt, author, stored)
	s.publish(ctx, events.New(events.PublicMessageSent, map[string]interface{}{
		"message_id": msg.Id.String(),
		"sender_id":  author.Id.String(),
		"has_file":   stored != nil,
	}))
	return res, nil
}

func (s *messageService) SendPrivate(ctx context.Context, sender entity.Identity, recipientId uuid.UUID, content string, file *dto.FilePayload) (*PrivateDelivery, error) {
	ctx, span := s.tracer.Start(ctx, "MessageService.SendPrivate",
		trace.WithAttributes(attribute.String("sender.id", sender.UserId.String()), attribute.String("recipient.id", recipientId.String())))
	defer span.End()

	if err := s.requireAuthor(sender); err != nil {
		return nil, err
	}
	if recipientId == uuid.Nil {
		return nil, fail(ErrValidation, "Other user ID required")
	}
	if recipientId == sender.UserId {
		return nil, fail(ErrValidation, "Cannot send a private message to yourself")
	}
	content, err := s.validate(content, file)
	if err != nil {
		return nil, err
	}

	author, err := s.users.Verify(ctx, sender.UserId)
	if err != nil {
		return nil, s.persistFailure(span, "author lookup", err)
	}
	if author == nil {
		return nil, fail(ErrNotFound, "User not found")
	}
	recipient, err := s.users.Verify(ctx, recipientId)
	if err != nil {
		return nil, s.persistFailure(span, "recipient lookup", err)
	}
	if recipient == nil {
		return nil, fail(ErrNotFound, "User not found")
	}

	chat := entity.NewPrivateChat(author.Id, recipient.Id)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, s.persistFailure(span, "begin", err)
	}
	defer uow.Rollback()

	if err := uow.PrivateChatRepository().EnsureChat(ctx, chat); err != nil {
		return nil, s.persistFailure(span, "chat ensure", err)
	}

	msg := &entity.PrivateMessage{ChatId: chat.Id, SenderId: author.Id, Content: content}
	if err := uow.PrivateMessageRepository().Create(ctx, msg); err != nil {
		return nil, s.persistFailure(span, "private message insert", err)
	}

	var stored *entity.File
	if file != nil {
		stored = newFile(file, author.Id)
		stored.PrivateMessageId = &msg.Id
		if err := uow.FileRepository().Create(ctx, stored); err != nil {
			return nil, s.persistFailure(span, "file insert", err)
		}
	}

	unread, err := uow.UnreadCountRepository().Increment(ctx, recipient.Id, chat.Id)
	if err != nil {
		return nil, s.persistFailure(span, "unread increment", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, s.persistFailure(span, "commit", err)
	}

	chatId := chat.Id
	delivery := &PrivateDelivery{
		Message:         toMessageResponse(msg.Id, &chatId, msg.Content, msg.CreatedAt, author, stored),
		ChatId:          chat.Id,
		Recipient:       recipient,
		RecipientUnread: unread,
	}
	s.publish(ctx, events.New(events.PrivateMessageSent, map[string]interface{}{
		"message_id":   msg.Id.String(),
		"chat_id":      chat.Id.String(),
		"sender_id":    author.Id.String(),
		"recipient_id": recipient.Id.String(),
		"has_file":     stored != nil,
	}))
	return delivery, nil
}

func (s *messageService) Preview(msg *dto.MessageResponse) string {
	if msg.Content == "" && msg.File != nil {
		return "Sent a file: " + msg.File.Filename
	}
	return truncateRunes(msg.Content, s.cfg.PreviewLength)
}

func truncateRunes(text string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit]) + "..."
}

func (s *messageService) persistFailure(span trace.Span, step string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, step)
	s.logger.Error("MESSAGE", "Failed to send message", map[string]interface{}{
		"step":  step,
		"error": err.Error(),
	})
	return fmt.Errorf("%w: %s: %v", ErrPersistence, step, err)
}

// publish runs after commit. A bus outage must not undo a delivered message,
// so failures are only logged.
func (s *messageService) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("MESSAGE", "Failed to publish domain event", map[string]interface{}{
			"type":  event.EventType(),
			"error": err.Error(),
		})
	}
}
