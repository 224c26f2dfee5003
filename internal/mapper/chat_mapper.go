package mapper

import (
	"time"

	"realtime-chat-be/internal/entity"
	"realtime-chat-be/internal/model"

	"gorm.io/gorm"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

func softDeleteToEntity(d gorm.DeletedAt) (*time.Time, bool) {
	if !d.Valid {
		return nil, false
	}
	t := d.Time
	return &t, true
}

func softDeleteToModel(deletedAt *time.Time, isDeleted bool) gorm.DeletedAt {
	if deletedAt != nil {
		return gorm.DeletedAt{Time: *deletedAt, Valid: true}
	} else if isDeleted {
		return gorm.DeletedAt{Time: time.Now(), Valid: true}
	}
	return gorm.DeletedAt{}
}

// Private Chat Mappers

func (m *ChatMapper) PrivateChatToEntity(c *model.PrivateChat) *entity.PrivateChat {
	if c == nil {
		return nil
	}
	return &entity.PrivateChat{
		Id:        c.Id,
		UserAId:   c.UserAId,
		UserBId:   c.UserBId,
		CreatedAt: c.CreatedAt,
	}
}

func (m *ChatMapper) PrivateChatToModel(c *entity.PrivateChat) *model.PrivateChat {
	if c == nil {
		return nil
	}
	return &model.PrivateChat{
		Id:        c.Id,
		UserAId:   c.UserAId,
		UserBId:   c.UserBId,
		CreatedAt: c.CreatedAt,
	}
}

func (m *ChatMapper) PrivateChatsToEntities(chats []*model.PrivateChat) []*entity.PrivateChat {
	entities := make([]*entity.PrivateChat, len(chats))
	for i, c := range chats {
		entities[i] = m.PrivateChatToEntity(c)
	}
	return entities
}

// Message Mappers

func (m *ChatMapper) MessageToEntity(msg *model.Message) *entity.Message {
	if msg == nil {
		return nil
	}
	deletedAt, isDeleted := softDeleteToEntity(msg.DeletedAt)
	return &entity.Message{
		Id:        msg.Id,
		UserId:    msg.UserId,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
		DeletedAt: deletedAt,
		IsDeleted: isDeleted,
	}
}

func (m *ChatMapper) MessageToModel(msg *entity.Message) *model.Message {
	if msg == nil {
		return nil
	}
	return &model.Message{
		Id:        msg.Id,
		UserId:    msg.UserId,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
		DeletedAt: softDeleteToModel(msg.DeletedAt, msg.IsDeleted),
	}
}

func (m *ChatMapper) PrivateMessageToEntity(msg *model.PrivateMessage) *entity.PrivateMessage {
	if msg == nil {
		return nil
	}
	deletedAt, isDeleted := softDeleteToEntity(msg.DeletedAt)
	return &entity.PrivateMessage{
		Id:        msg.Id,
		ChatId:    msg.ChatId,
		SenderId:  msg.SenderId,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
		DeletedAt: deletedAt,
		IsDeleted: isDeleted,
	}
}

func (m *ChatMapper) PrivateMessageToModel(msg *entity.PrivateMessage) *model.PrivateMessage {
	if msg == nil {
		return nil
	}
	return &model.PrivateMessage{
		Id:        msg.Id,
		ChatId:    msg.ChatId,
		SenderId:  msg.SenderId,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
		DeletedAt: softDeleteToModel(msg.DeletedAt, msg.IsDeleted),
	}
}

// File Mappers

func (m *ChatMapper) FileToEntity(f *model.File) *entity.File {
	if f == nil {
		return nil
	}
	return &entity.File{
		Id:               f.Id,
		Filename:         f.Filename,
		FileURL:          f.FileURL,
		FileSize:         f.FileSize,
		MimeType:         f.MimeType,
		UploaderId:       f.UploaderId,
		PublicMessageId:  f.PublicMessageId,
		PrivateMessageId: f.PrivateMessageId,
		UploadedAt:       f.UploadedAt,
	}
}

func (m *ChatMapper) FileToModel(f *entity.File) *model.File {
	if f == nil {
		return nil
	}
	return &model.File{
		Id:               f.Id,
		Filename:         f.Filename,
		FileURL:          f.FileURL,
		FileSize:         f.FileSize,
		MimeType:         f.MimeType,
		UploaderId:       f.UploaderId,
		PublicMessageId:  f.PublicMessageId,
		PrivateMessageId: f.PrivateMessageId,
		UploadedAt:       f.UploadedAt,
	}
}
