package specification

import (
	"time"

	"gorm.io/gorm"
)

type ByUsername struct {
	Username string
}

func (s ByUsername) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("username = ?", s.Username)
}

// Token Specs

type ByJti struct {
	Jti string
}

func (s ByJti) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("jti = ?", s.Jti)
}

// ExpiredBefore matches revoked tokens that can no longer be presented.
type ExpiredBefore struct {
	At time.Time
}

func (s ExpiredBefore) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("expires_at < ?", s.At)
}
