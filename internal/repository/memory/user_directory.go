package memory

import (
	"context"
	"time"

	"realtime-chat-be/internal/entity"
	"realtime-chat-be/internal/repository/contract"
	"realtime-chat-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// UserDirectory answers "who is this id" for the realtime layer. Get serves
// display data from the cache; Verify always asks the store, for decisions
// that must not outlive an account deletion. Only hits are cached, so a user
// created after a miss is found on the next call.
type UserDirectory struct {
	cache *cache.Cache
	users contract.UserRepository
}

func NewUserDirectory(users contract.UserRepository, ttl time.Duration) *UserDirectory {
	// purge expired entries twice per ttl
	c := cache.New(ttl, ttl/2)
	return &UserDirectory{
		cache: c,
		users: users,
	}
}

func (d *UserDirectory) Get(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	if x, found := d.cache.Get(id.String()); found {
		return x.(*entity.User), nil
	}

	user, err := d.users.FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}

	d.cache.Set(id.String(), user, cache.DefaultExpiration)
	return user, nil
}

// Verify reads the user from the store, refreshing the cached entry, or
// evicting it when the account no longer exists.
func (d *UserDirectory) Verify(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := d.users.FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if user == nil {
		d.cache.Delete(id.String())
		return nil, nil
	}

	d.cache.Set(id.String(), user, cache.DefaultExpiration)
	return user, nil
}
