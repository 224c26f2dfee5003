package main

import (
	"context"
	"log"
	"os"
	"time"

	"realtime-chat-be/internal/bootstrap"
	"realtime-chat-be/internal/config"
	"realtime-chat-be/internal/server"
	"realtime-chat-be/internal/tracer"
	"realtime-chat-be/pkg/database"

	gfshutdown "github.com/gelmium/graceful-shutdown"
)

const revokedTokenPurgeInterval = time.Hour

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection, cfg.App.Environment != "production")
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	ctx, cancel := context.WithCancel(context.Background())
	container := bootstrap.NewContainer(ctx, gormDB, cfg)

	// 4. Start Background Services
	go purgeRevokedTokens(ctx, container)

	// 5. Initialize Server
	srv := server.New(cfg, container)
	go func() {
		if err := srv.Run(); err != nil {
			log.Printf("Server stopped: %v", err)
		}
	}()

	// 6. Graceful shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.App.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"http-server": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				err := srv.Shutdown(ctx)
				cancel()
				container.Close()
				if sqlDB, dbErr := gormDB.DB(); dbErr == nil {
					_ = sqlDB.Close()
				}
				return err
			},
			"tracer": func(ctx context.Context) error {
				return shutdownTracer(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

// purgeRevokedTokens drops blocklist rows once their token could no longer
// be used anyway.
func purgeRevokedTokens(ctx context.Context, c *bootstrap.Container) {
	ticker := time.NewTicker(revokedTokenPurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purged, err := c.TokenService.PurgeExpired(ctx)
			if err != nil {
				c.Logger.Warn("MAIN", "Failed to purge revoked tokens", map[string]interface{}{"error": err.Error()})
				continue
			}
			if purged > 0 {
				c.Logger.Info("MAIN", "Purged revoked tokens", map[string]interface{}{"count": purged})
			}
		}
	}
}
