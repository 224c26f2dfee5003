package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"realtime-chat-be/internal/dto"
	"realtime-chat-be/internal/entity"
	"realtime-chat-be/internal/model"
	"realtime-chat-be/internal/pkg/logger"
	"realtime-chat-be/internal/repository/specification"
	"realtime-chat-be/internal/repository/testdb"
	"realtime-chat-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identityOf(u *entity.User) entity.Identity {
	return entity.Identity{UserId: u.Id, Username: u.Username}
}

func validFile() *dto.FilePayload {
	return &dto.FilePayload{
		Filename: "report.pdf",
		URL:      "https://files.example.com/report.pdf",
		Size:     1024,
		MimeType: "application/pdf",
	}
}

func TestMessageService_SendPublic(t *testing.T) {
	f := newFixture(t)
	svc := NewMessageService(f.factory, f.users, f.publisher, f.chatCfg, logger.NewNopLogger())
	alice := testdb.SeedUser(t, f.db, "alice")
	ctx := context.Background()

	msg, err := svc.SendPublic(ctx, identityOf(alice), "  hello world  ", nil)
	require.NoError(t, err)
	assert.Equal(t, "hello world", msg.Content)
	assert.Equal(t, "alice", msg.Username)
	assert.Equal(t, alice.Id, msg.User.Id)
	assert.Nil(t, msg.ChatId)
	assert.Nil(t, msg.File)

	stored, err := f.factory.NewUnitOfWork(ctx).MessageRepository().FindOne(ctx, specification.ByID{ID: msg.Id})
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "hello world", stored.Content)

	assert.Equal(t, []string{events.PublicMessageSent}, f.publisher.types())
}

func TestMessageService_SendPublicFileWithoutText(t *testing.T) {
	f := newFixture(t)
	svc := NewMessageService(f.factory, f.users, f.publisher, f.chatCfg, logger.NewNopLogger())
	alice := testdb.SeedUser(t, f.db, "alice")
	ctx := context.Background()

	msg, err := svc.SendPublic(ctx, identityOf(alice), "", validFile())
	require.NoError(t, err)
	require.NotNil(t, msg.File)
	assert.Equal(t, "report.pdf", msg.File.Filename)
	assert.Equal(t, "Sent a file: report.pdf", svc.Preview(msg))

	count, err := f.factory.NewUnitOfWork(ctx).FileRepository().Count(ctx, specification.ByPublicMessageID{MessageID: msg.Id})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestMessageService_Validation(t *testing.T) {
	f := newFixture(t)
	svc := NewMessageService(f.factory, f.users, f.publisher, f.chatCfg, logger.NewNopLogger())
	alice := testdb.SeedUser(t, f.db, "alice")
	ctx := context.Background()

	tooBig := validFile()
	tooBig.Size = f.chatCfg.MaxFileSize + 1
	badExt := validFile()
	badExt.Filename = "payload.exe"
	noURL := validFile()
	noURL.URL = "not a url"

	tests := []struct {
		name    string
		content string
		file    *dto.FilePayload
		wantMsg string
	}{
		{name: "empty text", content: "   ", wantMsg: "Message content cannot be empty"},
		{name: "too long", content: strings.Repeat("a", f.chatCfg.MaxContentLength+1), wantMsg: "Message content exceeds 5000 characters"},
		{name: "file too big", file: tooBig, wantMsg: "File exceeds maximum size of 5242880 bytes"},
		{name: "extension not allowed", file: badExt, wantMsg: `File type not allowed: ".exe"`},
		{name: "relative url", file: noURL, wantMsg: "url must be an absolute URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SendPublic(ctx, identityOf(alice), tt.content, tt.file)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, tt.wantMsg, ClientMessage(err))
		})
	}

	count, err := f.factory.NewUnitOfWork(ctx).MessageRepository().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, f.publisher.types())
}

func TestMessageService_AnonymousCannotSend(t *testing.T) {
	f := newFixture(t)
	svc := NewMessageService(f.factory, f.users, f.publisher, f.chatCfg, logger.NewNopLogger())
	bob := testdb.SeedUser(t, f.db, "bob")
	ctx := context.Background()

	_, err := svc.SendPublic(ctx, entity.AnonymousIdentity(), "hi", nil)
	assert.ErrorIs(t, err, ErrAuthorization)

	_, err = svc.SendPrivate(ctx, entity.AnonymousIdentity(), bob.Id, "hi", nil)
	assert.ErrorIs(t, err, ErrAuthorization)
}

func TestMessageService_SendPrivateCreatesChatAndCountsUnread(t *testing.T) {
	f := newFixture(t)
	svc := NewMessageService(f.factory, f.users, f.publisher, f.chatCfg, logger.NewNopLogger())
	alice := testdb.SeedUser(t, f.db, "alice")
	bob := testdb.SeedUser(t, f.db, "bob")
	ctx := context.Background()

	first, err := svc.SendPrivate(ctx, identityOf(alice), bob.Id, "hi bob", nil)
	require.NoError(t, err)
	assert.Equal(t, entity.PrivateChatID(alice.Id, bob.Id), first.ChatId)
	assert.Equal(t, bob.Id, first.Recipient.Id)
	assert.Equal(t, 1, first.RecipientUnread)
	require.NotNil(t, first.Message.ChatId)
	assert.Equal(t, first.ChatId, *first.Message.ChatId)

	second, err := svc.SendPrivate(ctx, identityOf(alice), bob.Id, "", validFile())
	require.NoError(t, err)
	assert.Equal(t, first.ChatId, second.ChatId)
	assert.Equal(t, 2, second.RecipientUnread)
	require.NotNil(t, second.Message.File)

	uow := f.factory.NewUnitOfWork(ctx)
	chats, err := uow.PrivateChatRepository().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), chats)

	files, err := uow.FileRepository().Count(ctx, specification.ByPrivateMessageID{MessageID: second.Message.Id})
	require.NoError(t, err)
	assert.Equal(t, int64(1), files)

	senderUnread, err := uow.UnreadCountRepository().Get(ctx, alice.Id, first.ChatId)
	require.NoError(t, err)
	assert.Zero(t, senderUnread, "the sender's own counter is untouched")

	assert.Equal(t, []string{events.PrivateMessageSent, events.PrivateMessageSent}, f.publisher.types())
}

func TestMessageService_SendPrivateRejections(t *testing.T) {
	f := newFixture(t)
	svc := NewMessageService(f.factory, f.users, f.publisher, f.chatCfg, logger.NewNopLogger())
	alice := testdb.SeedUser(t, f.db, "alice")
	ctx := context.Background()

	tests := []struct {
		name      string
		recipient uuid.UUID
		wantKind  error
		wantMsg   string
	}{
		{name: "missing recipient", recipient: uuid.Nil, wantKind: ErrValidation, wantMsg: "Other user ID required"},
		{name: "self", recipient: alice.Id, wantKind: ErrValidation, wantMsg: "Cannot send a private message to yourself"},
		{name: "unknown recipient", recipient: uuid.New(), wantKind: ErrNotFound, wantMsg: "User not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SendPrivate(ctx, identityOf(alice), tt.recipient, "hello", nil)
			assert.ErrorIs(t, err, tt.wantKind)
			assert.Equal(t, tt.wantMsg, ClientMessage(err))
		})
	}
}

func TestMessageService_SendPrivateToDeletedRecipient(t *testing.T) {
	f := newFixture(t)
	svc := NewMessageService(f.factory, f.users, f.publisher, f.chatCfg, logger.NewNopLogger())
	alice := testdb.SeedUser(t, f.db, "alice")
	bob := testdb.SeedUser(t, f.db, "bob")
	ctx := context.Background()

	first, err := svc.SendPrivate(ctx, identityOf(alice), bob.Id, "still there?", nil)
	require.NoError(t, err)

	require.NoError(t, f.factory.NewUnitOfWork(ctx).UserRepository().Delete(ctx, bob.Id))

	_, err = svc.SendPrivate(ctx, identityOf(alice), bob.Id, "hello?", nil)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "User not found", ClientMessage(err))

	unread, err := f.factory.NewUnitOfWork(ctx).UnreadCountRepository().Get(ctx, bob.Id, first.ChatId)
	require.NoError(t, err)
	assert.Equal(t, 1, unread)
}

func TestMessageService_FailedSendLeavesNoTrace(t *testing.T) {
	f := newFixture(t)
	svc := NewMessageService(f.factory, f.users, f.publisher, f.chatCfg, logger.NewNopLogger())
	alice := testdb.SeedUser(t, f.db, "alice")
	bob := testdb.SeedUser(t, f.db, "bob")
	ctx := context.Background()

	// break the last write of the transaction
	require.NoError(t, f.db.Migrator().DropTable(&model.File{}))

	_, err := svc.SendPrivate(ctx, identityOf(alice), bob.Id, "with attachment", validFile())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPersistence)

	uow := f.factory.NewUnitOfWork(ctx)
	messages, err := uow.PrivateMessageRepository().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, messages)

	chats, err := uow.PrivateChatRepository().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, chats)

	unread, err := uow.UnreadCountRepository().Get(ctx, bob.Id, entity.PrivateChatID(alice.Id, bob.Id))
	require.NoError(t, err)
	assert.Zero(t, unread)
	assert.Empty(t, f.publisher.types())
}

func TestMessageService_ConcurrentPrivateSendsCountEveryMessage(t *testing.T) {
	f := newFixture(t)
	svc := NewMessageService(f.factory, f.users, nil, f.chatCfg, logger.NewNopLogger())
	alice := testdb.SeedUser(t, f.db, "alice")
	carol := testdb.SeedUser(t, f.db, "carol")
	bob := testdb.SeedUser(t, f.db, "bob")
	ctx := context.Background()

	const perSender = 5
	var wg sync.WaitGroup
	for _, sender := range []*entity.User{alice, carol} {
		for i := 0; i < perSender; i++ {
			wg.Add(1)
			go func(sender *entity.User) {
				defer wg.Done()
				_, err := svc.SendPrivate(ctx, identityOf(sender), bob.Id, "ping", nil)
				assert.NoError(t, err)
			}(sender)
		}
	}
	wg.Wait()

	uow := f.factory.NewUnitOfWork(ctx)
	for _, sender := range []*entity.User{alice, carol} {
		sent, err := uow.PrivateMessageRepository().Count(ctx, specification.BySenderID{SenderID: sender.Id})
		require.NoError(t, err)
		assert.Equal(t, int64(perSender), sent)

		unread, err := uow.UnreadCountRepository().Get(ctx, bob.Id, entity.PrivateChatID(sender.Id, bob.Id))
		require.NoError(t, err)
		assert.Equal(t, perSender, unread)
	}
}

func TestPreviewTruncatesOnRunes(t *testing.T) {
	svc := &messageService{cfg: newFixture(t).chatCfg}

	long := strings.Repeat("é", 60)
	preview := svc.Preview(&dto.MessageResponse{Content: long})
	assert.Equal(t, strings.Repeat("é", 50)+"...", preview)

	assert.Equal(t, "short", svc.Preview(&dto.MessageResponse{Content: "short"}))
}
