package implementation

import (
	"context"
	"errors"
	"time"

	"realtime-chat-be/internal/model"
	"realtime-chat-be/internal/repository/contract"
	"realtime-chat-be/internal/repository/scope"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UnreadCountRepositoryImpl struct {
	db *gorm.DB
}

func NewUnreadCountRepository(db *gorm.DB) contract.UnreadCountRepository {
	return &UnreadCountRepositoryImpl{db: db}
}

func (r *UnreadCountRepositoryImpl) Increment(ctx context.Context, userId, chatId uuid.UUID) (int, error) {
	row := &model.UnreadCount{
		UserId: userId,
		ChatId: chatId,
		Unread: 1,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "chat_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"unread":     gorm.Expr("unread_counts.unread + 1"),
			"updated_at": time.Now(),
		}),
	}).Create(row).Error
	if err != nil {
		return 0, err
	}
	return r.Get(ctx, userId, chatId)
}

func (r *UnreadCountRepositoryImpl) Reset(ctx context.Context, userId, chatId uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.UnreadCount{}).
		Scopes(scope.WithUnread).
		Where("user_id = ? AND chat_id = ?", userId, chatId).
		Updates(map[string]interface{}{
			"unread":     0,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *UnreadCountRepositoryImpl) Get(ctx context.Context, userId, chatId uuid.UUID) (int, error) {
	var m model.UnreadCount
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND chat_id = ?", userId, chatId).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return m.Unread, nil
}
