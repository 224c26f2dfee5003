package service

import (
	"context"
	"testing"
	"time"

	"realtime-chat-be/internal/config"
	"realtime-chat-be/internal/pkg/logger"
	"realtime-chat-be/internal/repository/testdb"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokenService(f *fixture) *tokenService {
	return NewTokenService(f.factory, f.users, config.AuthConfig{
		JwtSecret:      "test-secret",
		AccessTokenTTL: time.Hour,
		Issuer:         "realtime-chat-be",
	}, logger.NewNopLogger()).(*tokenService)
}

func TestTokenService_AuthenticateIssuedToken(t *testing.T) {
	f := newFixture(t)
	svc := newTokenService(f)
	alice := testdb.SeedUser(t, f.db, "alice")
	ctx := context.Background()

	token, expiresAt, err := svc.IssueAccessToken(ctx, alice)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	identity, err := svc.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, alice.Id, identity.UserId)
	assert.Equal(t, "alice", identity.Username)
	assert.False(t, identity.IsAnonymous())
}

func TestTokenService_Rejections(t *testing.T) {
	f := newFixture(t)
	svc := newTokenService(f)
	alice := testdb.SeedUser(t, f.db, "alice")
	ctx := context.Background()

	valid, _, err := svc.IssueAccessToken(ctx, alice)
	require.NoError(t, err)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": alice.Id.String(),
		"jti":     "x",
		"iss":     "realtime-chat-be",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	wrongSecret, err := foreign.SignedString([]byte("another-secret"))
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		prepare func()
		wantMsg string
	}{
		{name: "garbage", token: "not-a-jwt", wantMsg: "Invalid token"},
		{name: "wrong secret", token: wrongSecret, wantMsg: "Invalid token"},
		{
			name:  "expired",
			token: valid,
			prepare: func() {
				svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
			},
			wantMsg: "Token expired",
		},
		{
			name:  "revoked",
			token: valid,
			prepare: func() {
				svc.now = time.Now
				require.NoError(t, svc.Revoke(ctx, valid))
			},
			wantMsg: "Token has been revoked",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.prepare != nil {
				tt.prepare()
			}
			_, err := svc.Authenticate(ctx, tt.token)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrAuthentication)
			assert.Equal(t, tt.wantMsg, ClientMessage(err))
		})
	}
}

func TestTokenService_DeletedUserIsRejected(t *testing.T) {
	f := newFixture(t)
	svc := newTokenService(f)
	bob := testdb.SeedUser(t, f.db, "bob")
	ctx := context.Background()

	token, _, err := svc.IssueAccessToken(ctx, bob)
	require.NoError(t, err)

	// warm the directory cache
	_, err = svc.Authenticate(ctx, token)
	require.NoError(t, err)
	cached, err := f.users.Get(ctx, bob.Id)
	require.NoError(t, err)
	require.NotNil(t, cached)

	require.NoError(t, f.factory.NewUnitOfWork(ctx).UserRepository().Delete(ctx, bob.Id))

	_, err = svc.Authenticate(ctx, token)
	assert.ErrorIs(t, err, ErrAuthentication)
	assert.Equal(t, "User not found", ClientMessage(err))

	gone, err := f.users.Get(ctx, bob.Id)
	require.NoError(t, err)
	assert.Nil(t, gone, "a failed verification evicts the cached user")
}

func TestTokenService_PurgeExpired(t *testing.T) {
	f := newFixture(t)
	svc := newTokenService(f)
	alice := testdb.SeedUser(t, f.db, "alice")
	ctx := context.Background()

	token, _, err := svc.IssueAccessToken(ctx, alice)
	require.NoError(t, err)
	require.NoError(t, svc.Revoke(ctx, token))
	require.NoError(t, svc.Revoke(ctx, token), "revoking twice is a no-op")

	purged, err := svc.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, purged)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	purged, err = svc.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
}
