package main

import (
	"context"
	"flag"
	"log"
	"strings"

	"realtime-chat-be/internal/config"
	"realtime-chat-be/internal/entity"
	"realtime-chat-be/internal/pkg/logger"
	"realtime-chat-be/internal/repository/contract"
	"realtime-chat-be/internal/repository/memory"
	"realtime-chat-be/internal/repository/specification"
	"realtime-chat-be/internal/repository/unitofwork"
	"realtime-chat-be/internal/service"
	"realtime-chat-be/pkg/database"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	names := flag.String("users", "alice,bob,carol", "comma separated usernames to create")
	password := flag.String("password", "password123", "password for every seeded user")
	flag.Parse()

	cfg := config.Load()
	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, false)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	ctx := context.Background()
	uowFactory := unitofwork.NewRepositoryFactory(db)
	userRepo := uowFactory.NewUnitOfWork(ctx).UserRepository()
	tokens := service.NewTokenService(uowFactory, memory.NewUserDirectory(userRepo, cfg.Chat.UserCacheTTL), cfg.Auth, logger.NewNopLogger())

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Error: Failed to hash password: %v", err)
	}

	log.Println("Seeding demo users...")
	for _, name := range strings.Split(*names, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		user, err := ensureUser(ctx, userRepo, name, string(hash))
		if err != nil {
			log.Printf("Error creating user '%s': %v", name, err)
			continue
		}

		token, expiresAt, err := tokens.IssueAccessToken(ctx, user)
		if err != nil {
			log.Printf("Error issuing token for '%s': %v", name, err)
			continue
		}
		log.Printf("%s (%s) token, valid until %s:\n%s", user.Username, user.Id, expiresAt.Format("15:04"), token)
	}

	log.Println("User seeding completed!")
}

func ensureUser(ctx context.Context, repo contract.UserRepository, username, passwordHash string) (*entity.User, error) {
	existing, err := repo.FindOne(ctx, specification.ByUsername{Username: username})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		log.Printf("User '%s' already exists, skipping...", username)
		return existing, nil
	}

	user := &entity.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: passwordHash,
	}
	if err := repo.Create(ctx, user); err != nil {
		return nil, err
	}
	log.Printf("Created user: %s", username)
	return user, nil
}
