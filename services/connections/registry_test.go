package connections

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/unretain/polyxmobile-sub002/models/realtime"
)

func user(id string) realtime.UserSnapshot {
	return realtime.UserSnapshot{UserID: id, Username: "u-" + id}
}

func TestHandshakeSingleFlight(t *testing.T) {
	r := NewRegistry()

	assert.NoError(t, r.BeginHandshake("c1"))
	assert.ErrorIs(t, r.BeginHandshake("c1"), ErrAlreadyAuthenticating)

	// a different connection is unaffected
	assert.NoError(t, r.BeginHandshake("c2"))

	r.EndHandshake("c1")
	assert.NoError(t, r.BeginHandshake("c1"))
}

func TestAuthenticateBindsBothDirections(t *testing.T) {
	r := NewRegistry()

	assert.NoError(t, r.BeginHandshake("c1"))
	replaced := r.Authenticate("c1", user("alice"), nil)
	assert.Nil(t, replaced)

	got, ok := r.Lookup("c1")
	assert.True(t, ok)
	assert.Equal(t, "alice", got.UserID)

	cid, ok := r.ConnectionOf("alice")
	assert.True(t, ok)
	assert.Equal(t, "c1", cid)

	// the handshake flag is cleared on success
	assert.NoError(t, r.BeginHandshake("c1"))
}

func TestReconnectReplacesMapping(t *testing.T) {
	r := NewRegistry()

	r.Authenticate("c1", user("alice"), nil)
	r.Authenticate("c2", user("alice"), nil)

	cid, ok := r.ConnectionOf("alice")
	assert.True(t, ok)
	assert.Equal(t, "c2", cid)

	// the displaced connection is gone
	_, ok = r.Lookup("c1")
	assert.False(t, ok)
}

func TestUnbindKeepsNewerBinding(t *testing.T) {
	r := NewRegistry()

	r.Authenticate("c1", user("alice"), nil)
	r.Authenticate("c2", user("alice"), nil)

	// the stale socket's late disconnect must not evict the fresh one
	_, ok := r.Unbind("c1")
	assert.False(t, ok)

	cid, ok := r.ConnectionOf("alice")
	assert.True(t, ok)
	assert.Equal(t, "c2", cid)

	gone, ok := r.Unbind("c2")
	assert.True(t, ok)
	assert.Equal(t, "alice", gone.UserID)

	_, ok = r.ConnectionOf("alice")
	assert.False(t, ok)

	// repeat unbind is a quiet miss
	_, ok = r.Unbind("c2")
	assert.False(t, ok)
}

func TestNotifyMissingConnectionIsQuiet(t *testing.T) {
	r := NewRegistry()
	// neither call should panic on unknown targets or nil sockets
	r.Notify("nope", "event", map[string]interface{}{})
	r.NotifyUser("nobody", "event", nil)

	r.Authenticate("c1", user("alice"), nil)
	r.Notify("c1", "event", nil)
	r.NotifyUser("alice", "event", nil)
}
