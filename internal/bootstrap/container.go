package bootstrap

import (
	"context"
	"log"

	"realtime-chat-be/internal/config"
	"realtime-chat-be/internal/handler"
	"realtime-chat-be/internal/pkg/logger"
	"realtime-chat-be/internal/repository/memory"
	"realtime-chat-be/internal/repository/unitofwork"
	"realtime-chat-be/internal/service"
	"realtime-chat-be/internal/websocket"
	"realtime-chat-be/pkg/events"

	pktNats "realtime-chat-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const activityDurable = "chat-activity"

type Container struct {
	ChatSocketHandler *handler.ChatSocketHandler
	ChatHandler       *handler.ChatHandler

	// Exposed for main.go to run background work and shut down
	WebSocketHub *websocket.Hub
	TokenService service.ITokenService
	Logger       logger.ILogger

	closers []func()
}

func NewContainer(ctx context.Context, db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	wsLogger := logger.NewIsolatedLogger(cfg.App.RealtimeLogPath)

	c := &Container{Logger: sysLogger}

	users := memory.NewUserDirectory(uowFactory.NewUnitOfWork(ctx).UserRepository(), cfg.Chat.UserCacheTTL)

	// 2. Event Bus
	bus := c.newEventBus(ctx, cfg, sysLogger)

	// 3. WebSocket Hub
	var relay websocket.Relay
	if cfg.App.ClusterRelay {
		relay = newRedisRelay(cfg.App.RedisURL)
	}
	wsHub := websocket.NewHub(relay, wsLogger)
	go wsHub.Run(ctx)

	// 4. Services
	tokenService := service.NewTokenService(uowFactory, users, cfg.Auth, sysLogger)
	unreadService := service.NewUnreadService(uowFactory, users)
	messageService := service.NewMessageService(uowFactory, users, bus, cfg.Chat, sysLogger)
	chatService := service.NewChatService(uowFactory, users, unreadService, bus, sysLogger)

	// 5. Handlers
	c.ChatSocketHandler = handler.NewChatSocketHandler(wsHub, tokenService, messageService, chatService, bus, cfg.Chat, wsLogger)
	c.ChatHandler = handler.NewChatHandler(unreadService, tokenService, wsHub, sysLogger)
	c.WebSocketHub = wsHub
	c.TokenService = tokenService

	c.closers = append(c.closers, func() {
		_ = wsLogger.Sync()
		_ = sysLogger.Sync()
	})
	return c
}

// newEventBus prefers NATS JetStream so activity survives restarts and is
// shared between instances; without it events stay in process.
func (c *Container) newEventBus(ctx context.Context, cfg *config.Config, sysLogger logger.ILogger) events.Publisher {
	consumer := service.NewActivityConsumer(sysLogger)

	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			c.closers = append(c.closers, natsPub.Close)

			natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
			if err != nil {
				log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
			} else {
				if err := natsSub.Subscribe(ctx, pktNats.SubjectPrefix+">", activityDurable, consumer.Handle); err != nil {
					log.Printf("[WARN] Failed to subscribe to chat events: %v", err)
				}
				c.closers = append(c.closers, natsSub.Close)
			}

			log.Printf("[INFO] Using Event Bus: NATS (%s)", cfg.App.NatsURL)
			return natsPub
		}
	}

	watermillLogger := watermill.NewStdLogger(false, false)
	bus := service.NewChannelBus(gochannel.NewGoChannel(gochannel.Config{}, watermillLogger), service.ChatEventsTopic)
	if err := bus.Subscribe(ctx, consumer.Handle); err != nil {
		log.Printf("[WARN] Failed to subscribe to chat events: %v", err)
	}
	c.closers = append(c.closers, bus.Close)

	log.Printf("[INFO] Using Event Bus: in-process")
	return bus
}

func newRedisRelay(redisURL string) websocket.Relay {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: redisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}
	return websocket.NewRedisRelay(rdb)
}

// Close releases bus connections and flushes logs, newest first.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}
