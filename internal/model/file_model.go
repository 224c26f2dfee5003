package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// File is metadata only; the bytes live behind FileURL.
type File struct {
	Id               uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Filename         string     `gorm:"type:varchar(255);not null"`
	FileURL          string     `gorm:"type:text;not null"`
	FileSize         int64      `gorm:"not null"`
	MimeType         string     `gorm:"type:varchar(255);not null"`
	UploaderId       uuid.UUID  `gorm:"type:uuid;not null;index"`
	PublicMessageId  *uuid.UUID `gorm:"type:uuid;index"`
	PrivateMessageId *uuid.UUID `gorm:"type:uuid;index"`
	UploadedAt       time.Time  `gorm:"autoCreateTime"`
}

func (File) TableName() string {
	return "files"
}

func (f *File) BeforeCreate(tx *gorm.DB) error {
	if f.Id == uuid.Nil {
		f.Id = uuid.New()
	}
	return nil
}
