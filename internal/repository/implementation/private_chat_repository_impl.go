package implementation

import (
	"context"
	"errors"

	"realtime-chat-be/internal/entity"
	"realtime-chat-be/internal/mapper"
	"realtime-chat-be/internal/model"
	"realtime-chat-be/internal/repository/contract"
	"realtime-chat-be/internal/repository/scope"
	"realtime-chat-be/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PrivateChatRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewPrivateChatRepository(db *gorm.DB) contract.PrivateChatRepository {
	return &PrivateChatRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *PrivateChatRepositoryImpl) EnsureChat(ctx context.Context, chat *entity.PrivateChat) error {
	m := r.mapper.PrivateChatToModel(chat)
	// Conflicts on the id or on the pair index both mean the chat exists.
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(m).Error
	if err != nil {
		return err
	}

	var stored model.PrivateChat
	if err := r.db.WithContext(ctx).
		Where("user_a_id = ? AND user_b_id = ?", m.UserAId, m.UserBId).
		First(&stored).Error; err != nil {
		return err
	}
	*chat = *r.mapper.PrivateChatToEntity(&stored)
	return nil
}

func (r *PrivateChatRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.PrivateChat, error) {
	var m model.PrivateChat
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.PrivateChatToEntity(&m), nil
}

func (r *PrivateChatRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.PrivateChat, error) {
	var models []*model.PrivateChat
	query := applySpecifications(r.db.WithContext(ctx), specs...).Scopes(scope.OrderByCreatedDesc)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.PrivateChatsToEntities(models), nil
}

func (r *PrivateChatRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.PrivateChat{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
