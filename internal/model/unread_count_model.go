package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UnreadCount struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserId    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_unread_user_chat,priority:1"`
	ChatId    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_unread_user_chat,priority:2"`
	Unread    int       `gorm:"not null;default:0;check:unread >= 0"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (UnreadCount) TableName() string {
	return "unread_counts"
}

func (u *UnreadCount) BeforeCreate(tx *gorm.DB) error {
	if u.Id == uuid.Nil {
		u.Id = uuid.New()
	}
	return nil
}
