// Package testdb opens throwaway SQLite stores with the production schema.
package testdb

import (
	"testing"

	"realtime-chat-be/internal/entity"
	"realtime-chat-be/internal/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New returns an in-memory database migrated with every model. An in-memory
// SQLite database lives on a single connection, so the pool is pinned to one;
// concurrent transactions queue on it the way row locks would in Postgres.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// SeedUser inserts a live account and returns it as an entity.
func SeedUser(t testing.TB, db *gorm.DB, username string) *entity.User {
	t.Helper()

	m := &model.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
	}
	if err := db.Create(m).Error; err != nil {
		t.Fatalf("failed to seed user %s: %v", username, err)
	}
	return &entity.User{
		Id:        m.Id,
		Username:  m.Username,
		Email:     m.Email,
		CreatedAt: m.CreatedAt,
	}
}
