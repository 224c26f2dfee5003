package implementation

import (
	"context"
	"sync"
	"testing"

	"realtime-chat-be/internal/model"
	"realtime-chat-be/internal/repository/testdb"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnreadCountRepository_IncrementCreatesThenAdds(t *testing.T) {
	db := testdb.New(t)
	repo := NewUnreadCountRepository(db)
	ctx := context.Background()
	userID, chatID := uuid.New(), uuid.New()

	count, err := repo.Increment(ctx, userID, chatID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = repo.Increment(ctx, userID, chatID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	var rows int64
	require.NoError(t, db.Model(&model.UnreadCount{}).Where("user_id = ?", userID).Count(&rows).Error)
	assert.Equal(t, int64(1), rows, "one row per (user, chat)")
}

func TestUnreadCountRepository_ConcurrentIncrements(t *testing.T) {
	repo := NewUnreadCountRepository(testdb.New(t))
	ctx := context.Background()
	userID, chatID := uuid.New(), uuid.New()

	const n = 25
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.Increment(ctx, userID, chatID); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	count, err := repo.Get(ctx, userID, chatID)
	require.NoError(t, err)
	assert.Equal(t, n, count)
}

func TestUnreadCountRepository_Reset(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		increments int
		wantHad    bool
	}{
		{name: "absent counter", increments: 0, wantHad: false},
		{name: "positive counter", increments: 3, wantHad: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewUnreadCountRepository(testdb.New(t))
			userID, chatID := uuid.New(), uuid.New()
			for i := 0; i < tt.increments; i++ {
				_, err := repo.Increment(ctx, userID, chatID)
				require.NoError(t, err)
			}

			had, err := repo.Reset(ctx, userID, chatID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantHad, had)

			count, err := repo.Get(ctx, userID, chatID)
			require.NoError(t, err)
			assert.Equal(t, 0, count)

			had, err = repo.Reset(ctx, userID, chatID)
			require.NoError(t, err)
			assert.False(t, had, "second reset finds nothing unread")
		})
	}
}
