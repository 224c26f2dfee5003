package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"realtime-chat-be/internal/entity"
	"realtime-chat-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePeer struct {
	mu     sync.Mutex
	frames []Frame
	limit  int
	closed bool
}

func (p *fakePeer) Send(raw []byte) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || (p.limit > 0 && len(p.frames) >= p.limit) {
		return false
	}
	f, err := Decode(raw)
	if err != nil {
		return false
	}
	p.frames = append(p.frames, f)
	return true
}

func (p *fakePeer) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
}

func (p *fakePeer) events(name string) []Frame {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []Frame
	for _, f := range p.frames {
		if f.Event == name {
			out = append(out, f)
		}
	}
	return out
}

func newTestHub() *Hub {
	return NewHub(nil, logger.NewNopLogger())
}

// holds checks both sides of the membership: the room's member set and the
// session's room set.
func holds(t *testing.T, hub *Hub, connID, roomName string) bool {
	t.Helper()
	hub.mu.RLock()
	_, inRoom := hub.rooms[roomName][connID]
	hub.mu.RUnlock()

	s, ok := hub.Lookup(connID)
	inSession := ok && s.Holds(roomName)
	assert.Equal(t, inRoom, inSession, "room and session membership diverged for %s", connID)
	return inRoom
}

func user(name string) entity.Identity {
	return entity.Identity{UserId: uuid.New(), Username: name}
}

func TestHub_RegisterIsUniquePerConnection(t *testing.T) {
	hub := newTestHub()

	require.NoError(t, hub.Register("c1", user("alice"), &fakePeer{}))
	err := hub.Register("c1", user("bob"), &fakePeer{})
	assert.ErrorIs(t, err, ErrSessionExists)

	s, ok := hub.Lookup("c1")
	require.True(t, ok)
	assert.Equal(t, "alice", s.Identity.Username)

	_, ok = hub.Lookup("missing")
	assert.False(t, ok)
}

func TestHub_JoinPublicNotifiesOthersOnly(t *testing.T) {
	hub := newTestHub()
	alice, bob := &fakePeer{}, &fakePeer{}
	require.NoError(t, hub.Register("a", user("alice"), alice))
	require.NoError(t, hub.Register("b", user("bob"), bob))

	joined, err := hub.Join("a", PublicRoom())
	require.NoError(t, err)
	assert.True(t, joined)

	_, err = hub.Join("b", PublicRoom())
	require.NoError(t, err)

	require.Len(t, alice.events(EventUserJoined), 1)
	assert.Empty(t, bob.events(EventUserJoined))

	var notice struct {
		Username string `json:"username"`
	}
	require.NoError(t, json.Unmarshal(alice.events(EventUserJoined)[0].Data, &notice))
	assert.Equal(t, "bob", notice.Username)

	joined, err = hub.Join("b", PublicRoom())
	require.NoError(t, err)
	assert.False(t, joined, "re-joining is a no-op")
	assert.Len(t, alice.events(EventUserJoined), 1)
}

func TestHub_JoinEnforcesEntitlement(t *testing.T) {
	hub := newTestHub()
	alice, bob, carol := user("alice"), user("bob"), user("carol")
	require.NoError(t, hub.Register("a", alice, &fakePeer{}))
	require.NoError(t, hub.Register("c", carol, &fakePeer{}))
	require.NoError(t, hub.Register("anon", entity.AnonymousIdentity(), &fakePeer{}))

	tests := []struct {
		name    string
		connID  string
		room    Room
		wantErr error
	}{
		{name: "participant joins private", connID: "a", room: PrivateRoom(alice.UserId, bob.UserId)},
		{name: "outsider rejected from private", connID: "c", room: PrivateRoom(alice.UserId, bob.UserId), wantErr: ErrNotEntitled},
		{name: "anonymous rejected from private", connID: "anon", room: PrivateRoom(alice.UserId, bob.UserId), wantErr: ErrNotEntitled},
		{name: "owner joins user room", connID: "a", room: UserRoom(alice.UserId)},
		{name: "other user rejected from user room", connID: "c", room: UserRoom(alice.UserId), wantErr: ErrNotEntitled},
		{name: "anonymous joins public", connID: "anon", room: PublicRoom()},
		{name: "unknown session", connID: "ghost", room: PublicRoom(), wantErr: ErrNoSession},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := hub.Join(tt.connID, tt.room)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.False(t, holds(t, hub, tt.connID, tt.room.Name))
				return
			}
			assert.NoError(t, err)
			assert.True(t, holds(t, hub, tt.connID, tt.room.Name))
		})
	}
}

func TestHub_BroadcastReachesEveryMemberIncludingSender(t *testing.T) {
	hub := newTestHub()
	peers := map[string]*fakePeer{"a": {}, "b": {}, "c": {}, "outside": {}}
	for id, p := range peers {
		require.NoError(t, hub.Register(id, user(id), p))
	}
	for _, id := range []string{"a", "b", "c"} {
		_, err := hub.Join(id, PublicRoom())
		require.NoError(t, err)
	}

	hub.Broadcast(PublicRoomName, EventNewPublicMessage, map[string]string{"content": "hi"}, "")

	delivered := 0
	for _, p := range peers {
		delivered += len(p.events(EventNewPublicMessage))
	}
	assert.Equal(t, 3, delivered)
	assert.Empty(t, peers["outside"].events(EventNewPublicMessage))

	hub.Broadcast(PublicRoomName, EventNewPublicMessage, nil, "a")
	assert.Len(t, peers["a"].events(EventNewPublicMessage), 1, "excluded connection skipped")
	assert.Len(t, peers["b"].events(EventNewPublicMessage), 2)
}

func TestHub_LeaveAnnouncesOnlyForPublic(t *testing.T) {
	hub := newTestHub()
	alice, bob := user("alice"), user("bob")
	pa, pb := &fakePeer{}, &fakePeer{}
	require.NoError(t, hub.Register("a", alice, pa))
	require.NoError(t, hub.Register("b", bob, pb))

	_, _ = hub.Join("a", PublicRoom())
	_, _ = hub.Join("b", PublicRoom())
	_, _ = hub.Join("a", PrivateRoom(alice.UserId, bob.UserId))
	_, _ = hub.Join("b", PrivateRoom(alice.UserId, bob.UserId))

	assert.True(t, hub.Leave("a", PrivateRoom(alice.UserId, bob.UserId).Name))
	assert.Empty(t, pb.events(EventUserLeft))

	assert.True(t, hub.Leave("a", PublicRoomName))
	assert.Len(t, pb.events(EventUserLeft), 1)
	assert.Empty(t, pa.events(EventUserLeft))

	assert.False(t, hub.Leave("a", PublicRoomName), "not a member any more")
	assert.Len(t, pb.events(EventUserLeft), 1)
}

func TestHub_UnregisterLeavesEveryRoom(t *testing.T) {
	hub := newTestHub()
	alice, bob := user("alice"), user("bob")
	pb := &fakePeer{}
	require.NoError(t, hub.Register("a", alice, &fakePeer{}))
	require.NoError(t, hub.Register("b", bob, pb))

	private := PrivateRoom(alice.UserId, bob.UserId)
	for _, room := range []Room{PublicRoom(), private, UserRoom(alice.UserId)} {
		_, err := hub.Join("a", room)
		require.NoError(t, err)
	}
	_, _ = hub.Join("b", PublicRoom())

	hub.Unregister("a")

	_, ok := hub.Lookup("a")
	assert.False(t, ok)
	for _, name := range []string{PublicRoomName, private.Name, UserRoomName(alice.UserId)} {
		assert.False(t, holds(t, hub, "a", name))
	}
	presence := hub.Presence(PublicRoomName)
	require.Len(t, presence, 1)
	assert.Equal(t, "bob", presence[0].Username)
	assert.Len(t, pb.events(EventUserLeft), 1)

	// the connection id can be reused once cleanup is done
	assert.NoError(t, hub.Register("a", alice, &fakePeer{}))
}

func TestHub_UsersOutsideIsUserLevel(t *testing.T) {
	hub := newTestHub()
	alice, bob, carol := user("alice"), user("bob"), user("carol")

	// alice: one session in public, one elsewhere
	require.NoError(t, hub.Register("a1", alice, &fakePeer{}))
	require.NoError(t, hub.Register("a2", alice, &fakePeer{}))
	_, _ = hub.Join("a1", PublicRoom())
	// bob: two sessions, none in public
	require.NoError(t, hub.Register("b1", bob, &fakePeer{}))
	require.NoError(t, hub.Register("b2", bob, &fakePeer{}))
	// carol: in public
	require.NoError(t, hub.Register("c1", carol, &fakePeer{}))
	_, _ = hub.Join("c1", PublicRoom())
	// anonymous sessions never count
	require.NoError(t, hub.Register("x", entity.AnonymousIdentity(), &fakePeer{}))

	assert.ElementsMatch(t, []uuid.UUID{bob.UserId}, hub.UsersOutside(PublicRoomName))
}

func TestHub_FullBufferClosesPeer(t *testing.T) {
	hub := newTestHub()
	slow := &fakePeer{limit: 1}
	require.NoError(t, hub.Register("slow", user("slow"), slow))
	_, _ = hub.Join("slow", PublicRoom())

	hub.Broadcast(PublicRoomName, EventNewPublicMessage, nil, "")
	hub.Broadcast(PublicRoomName, EventNewPublicMessage, nil, "")

	assert.Len(t, slow.events(EventNewPublicMessage), 1)
	slow.mu.Lock()
	assert.True(t, slow.closed)
	slow.mu.Unlock()
}

type loopRelay struct {
	published chan Envelope
	incoming  chan Envelope
}

func (r *loopRelay) Publish(ctx context.Context, env Envelope) error {
	r.published <- env
	return nil
}

func (r *loopRelay) Subscribe(ctx context.Context, deliver func(Envelope)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case env := <-r.incoming:
			deliver(env)
		}
	}
}

func (r *loopRelay) Close() error { return nil }

func TestHub_RelayDeliversRemoteBroadcasts(t *testing.T) {
	relay := &loopRelay{published: make(chan Envelope, 4), incoming: make(chan Envelope)}
	hub := NewHub(relay, logger.NewNopLogger())
	peer := &fakePeer{}
	require.NoError(t, hub.Register("a", user("alice"), peer))
	_, _ = hub.Join("a", PublicRoom())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	hub.Broadcast(PublicRoomName, EventNewPublicMessage, nil, "")
	env := <-relay.published
	assert.Equal(t, PublicRoomName, env.Room)

	// own envelopes coming back are ignored
	relay.incoming <- env
	frame, err := Encode(EventNewPublicMessage, map[string]string{"content": "remote"})
	require.NoError(t, err)
	relay.incoming <- Envelope{Origin: "other-instance", Room: PublicRoomName, Frame: frame}

	require.Eventually(t, func() bool {
		return len(peer.events(EventNewPublicMessage)) == 2
	}, time.Second, 10*time.Millisecond)
}
