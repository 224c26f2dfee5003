package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"realtime-chat-be/internal/config"
	"realtime-chat-be/internal/repository/memory"
	"realtime-chat-be/internal/repository/testdb"
	"realtime-chat-be/internal/repository/unitofwork"
	"realtime-chat-be/pkg/events"

	"gorm.io/gorm"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() {}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

type fixture struct {
	db        *gorm.DB
	factory   unitofwork.RepositoryFactory
	users     *memory.UserDirectory
	publisher *recordingPublisher
	chatCfg   config.ChatConfig
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testdb.New(t)
	factory := unitofwork.NewRepositoryFactory(db)
	return &fixture{
		db:        db,
		factory:   factory,
		users:     memory.NewUserDirectory(factory.NewUnitOfWork(context.Background()).UserRepository(), time.Minute),
		publisher: &recordingPublisher{},
		chatCfg: config.ChatConfig{
			AllowAnonymous:    true,
			MaxContentLength:  5000,
			MaxFileSize:       5 * 1024 * 1024,
			AllowedExtensions: []string{".pdf", ".png", ".jpg"},
			PreviewLength:     50,
			SendBufferSize:    16,
			MaxFrameSize:      64 * 1024,
			UserCacheTTL:      time.Minute,
		},
	}
}
