package entity

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	Id           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	AvatarURL    string
	CreatedAt    time.Time
	UpdatedAt    *time.Time
	DeletedAt    *time.Time
	IsDeleted    bool
}

type RevokedToken struct {
	Jti       string
	UserId    uuid.UUID
	ExpiresAt time.Time
	CreatedAt time.Time
}
