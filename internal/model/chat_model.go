package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PrivateChat is unique per unordered user pair: UserAId always sorts before UserBId.
type PrivateChat struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserAId   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_private_chat_pair,priority:1"`
	UserBId   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_private_chat_pair,priority:2;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (PrivateChat) TableName() string {
	return "private_chats"
}

type Message struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey"`
	UserId    uuid.UUID      `gorm:"type:uuid;not null;index"`
	Content   string         `gorm:"type:text;not null"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Message) TableName() string {
	return "messages"
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.Id == uuid.Nil {
		m.Id = uuid.New()
	}
	return nil
}

type PrivateMessage struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey"`
	ChatId    uuid.UUID      `gorm:"type:uuid;not null;index:idx_private_messages_chat_created,priority:1"`
	SenderId  uuid.UUID      `gorm:"type:uuid;not null;index"`
	Content   string         `gorm:"type:text;not null"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index:idx_private_messages_chat_created,priority:2"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (PrivateMessage) TableName() string {
	return "private_messages"
}

func (m *PrivateMessage) BeforeCreate(tx *gorm.DB) error {
	if m.Id == uuid.Nil {
		m.Id = uuid.New()
	}
	return nil
}
