package entity

import (
	"time"

	"github.com/google/uuid"
)

type Message struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Content   string
	CreatedAt time.Time
	DeletedAt *time.Time
	IsDeleted bool
}

type PrivateMessage struct {
	Id        uuid.UUID
	ChatId    uuid.UUID
	SenderId  uuid.UUID
	Content   string
	CreatedAt time.Time
	DeletedAt *time.Time
	IsDeleted bool
}

type File struct {
	Id               uuid.UUID
	Filename         string
	FileURL          string
	FileSize         int64
	MimeType         string
	UploaderId       uuid.UUID
	PublicMessageId  *uuid.UUID
	PrivateMessageId *uuid.UUID
	UploadedAt       time.Time
}
