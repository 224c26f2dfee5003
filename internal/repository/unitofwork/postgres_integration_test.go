package unitofwork

import (
	"context"
	"log"
	"os"
	"sync"
	"testing"

	"realtime-chat-be/internal/entity"
	"realtime-chat-be/internal/model"
	"realtime-chat-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs the ledger statements against a real Postgres. Skipped unless
// DB_CONNECTION_STRING is set.
func TestPostgres_UnreadLedgerUnderContention(t *testing.T) {
	if err := godotenv.Load("../../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	db, err := database.NewGormDBFromDSN(dsn, false)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.All()...))

	ctx := context.Background()
	factory := NewRepositoryFactory(db)
	reader, writer := uuid.New(), uuid.New()
	chat := entity.NewPrivateChat(reader, writer)

	t.Cleanup(func() {
		db.Where("chat_id = ?", chat.Id).Delete(&model.UnreadCount{})
		db.Unscoped().Where("id = ?", chat.Id).Delete(&model.PrivateChat{})
	})

	const senders = 20
	var wg sync.WaitGroup
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			uow := factory.NewUnitOfWork(ctx)
			if !assert.NoError(t, uow.Begin(ctx)) {
				return
			}
			defer uow.Rollback()

			c := entity.NewPrivateChat(writer, reader)
			if !assert.NoError(t, uow.PrivateChatRepository().EnsureChat(ctx, c)) {
				return
			}
			_, err := uow.UnreadCountRepository().Increment(ctx, reader, c.Id)
			if !assert.NoError(t, err) {
				return
			}
			assert.NoError(t, uow.Commit())
		}()
	}
	wg.Wait()

	uow := factory.NewUnitOfWork(ctx)
	count, err := uow.UnreadCountRepository().Get(ctx, reader, chat.Id)
	require.NoError(t, err)
	assert.Equal(t, senders, count)

	had, err := uow.UnreadCountRepository().Reset(ctx, reader, chat.Id)
	require.NoError(t, err)
	assert.True(t, had)
}
