package main

import (
	"log"

	"realtime-chat-be/internal/config"
	"realtime-chat-be/internal/model"
	"realtime-chat-be/pkg/database"
)

func main() {
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, true)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Step 1: Running AutoMigrate...")
	if err := db.AutoMigrate(model.All()...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// Constraints AutoMigrate cannot express
	log.Println("Step 2: Adding check constraints...")
	postMigrationSQL := []string{
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_private_chat_pair_order') THEN
			ALTER TABLE private_chats ADD CONSTRAINT chk_private_chat_pair_order CHECK (user_a_id::text < user_b_id::text);
		END IF; END $$;`,
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_unread_non_negative') THEN
			ALTER TABLE unread_counts ADD CONSTRAINT chk_unread_non_negative CHECK (unread >= 0);
		END IF; END $$;`,
	}
	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	log.Println("✅ Success: Database migration completed successfully via GORM.")
}
