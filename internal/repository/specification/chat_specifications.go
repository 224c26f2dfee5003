package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByChatID struct {
	ChatID uuid.UUID
}

func (s ByChatID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chat_id = ?", s.ChatID)
}

// ByParticipant matches private chats where the user is either side.
type ByParticipant struct {
	UserID uuid.UUID
}

func (s ByParticipant) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_a_id = ? OR user_b_id = ?", s.UserID, s.UserID)
}

type BySenderID struct {
	SenderID uuid.UUID
}

func (s BySenderID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("sender_id = ?", s.SenderID)
}

type ByPrivateMessageID struct {
	MessageID uuid.UUID
}

func (s ByPrivateMessageID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("private_message_id = ?", s.MessageID)
}

type ByPublicMessageID struct {
	MessageID uuid.UUID
}

func (s ByPublicMessageID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("public_message_id = ?", s.MessageID)
}
