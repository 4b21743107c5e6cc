package lobbies

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/unretain/polyxmobile-sub002/models/realtime"
)

type recordedEvent struct {
	Target string // connection id, or "user:"+userID for user-addressed sends
	Name   string
	Data   map[string]interface{}
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (f *fakeNotifier) Notify(connectionID, event string, data map[string]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, recordedEvent{Target: connectionID, Name: event, Data: data})
}

func (f *fakeNotifier) NotifyUser(userID, event string, data map[string]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, recordedEvent{Target: "user:" + userID, Name: event, Data: data})
}

func (f *fakeNotifier) named(event string) []recordedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []recordedEvent
	for _, e := range f.events {
		if e.Name == event {
			out = append(out, e)
		}
	}
	return out
}

func (f *fakeNotifier) reset() {
	f.mu.Lock()
	f.events = nil
	f.mu.Unlock()
}

func snapshot(n int) realtime.UserSnapshot {
	return realtime.UserSnapshot{
		UserID:   fmt.Sprintf("user-%d", n),
		Username: fmt.Sprintf("u%d", n),
		Name:     fmt.Sprintf("User %d", n),
	}
}

func conn(n int) string { return fmt.Sprintf("conn-%d", n) }

// admitDirect approves and joins a member, the shortest path into a
// lobby for test setup.
func admitDirect(t *testing.T, r *Registry, ownerConn string, n int, lobbyID string) *realtime.LobbyInfo {
	t.Helper()
	assert.NoError(t, r.RequestJoin(conn(n), snapshot(n), lobbyID))
	assert.NoError(t, r.AcceptJoin(ownerConn, conn(n)))
	info, err := r.Join(conn(n), snapshot(n), lobbyID)
	assert.NoError(t, err)
	return info
}

func TestCreateLobby(t *testing.T) {
	notifier := &fakeNotifier{}
	r := NewRegistry(notifier)

	info, err := r.Create(conn(1), snapshot(1), "Test")
	assert.NoError(t, err)
	assert.Equal(t, "Test", info.Name)
	assert.Equal(t, "user-1", info.OwnerID)
	assert.Len(t, info.Members, 1)
	assert.Equal(t, conn(1), info.Members[0].ConnectionID)

	// a connection bound to a lobby cannot open a second one
	_, err = r.Create(conn(1), snapshot(1), "Another")
	assert.ErrorIs(t, err, ErrAlreadyInLobby)
}

func TestJoinRequiresCapability(t *testing.T) {
	notifier := &fakeNotifier{}
	r := NewRegistry(notifier)

	info, _ := r.Create(conn(1), snapshot(1), "Test")

	_, err := r.Join(conn(2), snapshot(2), info.ID)
	assert.ErrorIs(t, err, ErrNotInvited)

	_, err = r.Join(conn(2), snapshot(2), "nope")
	assert.ErrorIs(t, err, ErrLobbyNotFound)
}

func TestInviteAcceptFlow(t *testing.T) {
	notifier := &fakeNotifier{}
	r := NewRegistry(notifier)

	info, _ := r.Create(conn(1), snapshot(1), "Test")

	assert.NoError(t, r.Invite(conn(1), snapshot(1), snapshot(2)))
	invites := notifier.named("lobby:invite")
	assert.Len(t, invites, 1)
	assert.Equal(t, "user:user-2", invites[0].Target)
	assert.Equal(t, info.ID, invites[0].Data["lobby_id"])

	joined, err := r.AcceptInvite(conn(2), snapshot(2), info.ID)
	assert.NoError(t, err)
	assert.Len(t, joined.Members, 2)

	// only the pre-existing member hears about the join
	joins := notifier.named("lobby:memberJoined")
	assert.Len(t, joins, 1)
	assert.Equal(t, conn(1), joins[0].Target)
}

func TestInviteOverwrites(t *testing.T) {
	notifier := &fakeNotifier{}
	r := NewRegistry(notifier)

	r.Create(conn(1), snapshot(1), "Test")
	assert.NoError(t, r.Invite(conn(1), snapshot(1), snapshot(2)))
	assert.NoError(t, r.Invite(conn(1), snapshot(1), snapshot(2)))

	assert.Len(t, r.PendingInvites("user-2"), 1)
}

func TestInviteTargetAlreadyMember(t *testing.T) {
	notifier := &fakeNotifier{}
	r := NewRegistry(notifier)

	info, _ := r.Create(conn(1), snapshot(1), "Test")
	r.Invite(conn(1), snapshot(1), snapshot(2))
	_, err := r.AcceptInvite(conn(2), snapshot(2), info.ID)
	assert.NoError(t, err)

	assert.ErrorIs(t, r.Invite(conn(1), snapshot(1), snapshot(2)), ErrTargetAlreadyMember)
	assert.ErrorIs(t, r.Invite(conn(9), snapshot(9), snapshot(3)), ErrNotInLobby)
}

func TestCapacity(t *testing.T) {
	notifier := &fakeNotifier{}
	r := NewRegistry(notifier)

	info, _ := r.Create(conn(1), snapshot(1), "Full")
	for n := 2; n <= 5; n++ {
		admitDirect(t, r, conn(1), n, info.ID)
	}

	// the 6th join fails and membership stays unchanged
	assert.NoError(t, r.RequestJoin(conn(6), snapshot(6), info.ID))
	assert.NoError(t, r.AcceptJoin(conn(1), conn(6)))
	_, err := r.Join(conn(6), snapshot(6), info.ID)
	assert.ErrorIs(t, err, ErrLobbyFull)

	current, ok := r.Snapshot(info.ID)
	assert.True(t, ok)
	assert.Len(t, current.Members, 5)
}

func TestInviteConsumedByFailedAccept(t *testing.T) {
	notifier := &fakeNotifier{}
	r := NewRegistry(notifier)

	info, _ := r.Create(conn(1), snapshot(1), "Full")
	assert.NoError(t, r.Invite(conn(1), snapshot(1), snapshot(7)))
	for n := 2; n <= 5; n++ {
		admitDirect(t, r, conn(1), n, info.ID)
	}

	// the lobby filled up before the accept: the accept fails and the
	// invite stays consumed
	_, err := r.AcceptInvite(conn(7), snapshot(7), info.ID)
	assert.ErrorIs(t, err, ErrLobbyFull)

	_, err = r.AcceptInvite(conn(7), snapshot(7), info.ID)
	assert.ErrorIs(t, err, ErrNotInvited)
}

func TestOwnershipTransferDeterminism(t *testing.T) {
	notifier := &fakeNotifier{}
	r := NewRegistry(notifier)

	info, _ := r.Create(conn(1), snapshot(1), "Test")
	admitDirect(t, r, conn(1), 2, info.ID)
	admitDirect(t, r, conn(1), 3, info.ID)
	notifier.reset()

	// A leaves: B, the earliest-joined remaining member, inherits
	departed, err := r.Leave(conn(1))
	assert.NoError(t, err)
	assert.Equal(t, "user-1", departed)

	current, _ := r.Snapshot(info.ID)
	assert.Equal(t, "user-2", current.OwnerID)

	changes := notifier.named("lobby:ownerChanged")
	assert.Len(t, changes, 2)
	for _, e := range changes {
		assert.Equal(t, "user-2", e.Data["new_owner_id"])
	}
	assert.Len(t, notifier.named("lobby:memberLeft"), 2)
}

func TestOwnerDisconnectTransfersOwnership(t *testing.T) {
	notifier := &fakeNotifier{}
	r := NewRegistry(notifier)

	info, _ := r.Create(conn(1), snapshot(1), "Test")
	admitDirect(t, r, conn(1), 2, info.ID)
	admitDirect(t, r, conn(1), 3, info.ID)
	notifier.reset()

	// abrupt disconnect routes through the same transfer logic as an
	// explicit leave
	departed := r.Disconnect(conn(1), "user-1")
	assert.Equal(t, "user-1", departed)

	current, _ := r.Snapshot(info.ID)
	assert.Equal(t, "user-2", current.OwnerID)
	assert.Len(t, notifier.named("lobby:ownerChanged"), 2)
}

func TestKick(t *testing.T) {
	notifier := &fakeNotifier{}
	r := NewRegistry(notifier)

	info, _ := r.Create(conn(1), snapshot(1), "Test")
	admitDirect(t, r, conn(1), 2, info.ID)
	admitDirect(t, r, conn(1), 3, info.ID)
	notifier.reset()

	_, err := r.Kick(conn(2), conn(3))
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = r.Kick(conn(1), conn(1))
	assert.ErrorIs(t, err, ErrCannotKickSelf)

	kicked, err := r.Kick(conn(1), conn(2))
	assert.NoError(t, err)
	assert.Equal(t, "user-2", kicked)

	// the target hears "kicked", not silence
	kicks := notifier.named("lobby:kicked")
	assert.Len(t, kicks, 1)
	assert.Equal(t, conn(2), kicks[0].Target)
	assert.Equal(t, info.ID, kicks[0].Data["lobby_id"])

	current, _ := r.Snapshot(info.ID)
	assert.Len(t, current.Members, 2)
}

func TestKickRacingDisconnect(t *testing.T) {
	notifier := &fakeNotifier{}
	r := NewRegistry(notifier)

	info, _ := r.Create(conn(1), snapshot(1), "Test")
	admitDirect(t, r, conn(1), 2, info.ID)

	// target dropped microseconds before the kick lands
	r.Disconnect(conn(2), "user-2")
	notifier.reset()

	_, err := r.Kick(conn(1), conn(2))
	assert.ErrorIs(t, err, ErrMemberNotFound)
	// no duplicate memberLeft for the already-departed member
	assert.Empty(t, notifier.named("lobby:memberLeft"))
}

func TestRequestJoinDedup(t *testing.T) {
	notifier := &fakeNotifier{}
	r := NewRegistry(notifier)

	info, _ := r.Create(conn(1), snapshot(1), "Test")

	assert.NoError(t, r.RequestJoin(conn(2), snapshot(2), info.ID))
	assert.NoError(t, r.RequestJoin(conn(2), snapshot(2), info.ID))

	// exactly one pending record: the first accept consumes it, the
	// second finds nothing
	assert.NoError(t, r.AcceptJoin(conn(1), conn(2)))
	assert.ErrorIs(t, r.AcceptJoin(conn(1), conn(2)), ErrRequestNotFound)
}

func TestRequestJoinOwnLobbyIsNoop(t *testing.T) {
	notifier := &fakeNotifier{}
	r := NewRegistry(notifier)

	info, _ := r.Create(conn(1), snapshot(1), "Test")

	assert.NoError(t, r.RequestJoin(conn(1), snapshot(1), info.ID))
	assert.Empty(t, notifier.named("lobby:joinRequest"))

	other, _ := r.Create(conn(2), snapshot(2), "Other")
	assert.ErrorIs(t, r.RequestJoin(conn(1), snapshot(1), other.ID), ErrAlreadyInLobby)
}

func TestJoinRequestAcceptedFlow(t *testing.T) {
	notifier := &fakeNotifier{}
	r := NewRegistry(notifier)

	info, _ := r.Create(conn(2), snapshot(2), "Test")
	admitDirect(t, r, conn(2), 3, info.ID)
	notifier.reset()

	assert.NoError(t, r.RequestJoin(conn(4), snapshot(4), info.ID))
	requests := notifier.named("lobby:joinRequest")
	assert.Len(t, requests, 1)
	assert.Equal(t, conn(2), requests[0].Target)

	assert.NoError(t, r.AcceptJoin(conn(2), conn(4)))
	accepted := notifier.named("lobby:joinAccepted")
	assert.Len(t, accepted, 1)
	assert.Equal(t, conn(4), accepted[0].Target)

	// two-phase: the requester issues the actual join itself
	joined, err := r.Join(conn(4), snapshot(4), info.ID)
	assert.NoError(t, err)
	assert.Equal(t, []string{"user-2", "user-3", "user-4"}, memberUserIDs(joined))
}

func memberUserIDs(info *realtime.LobbyInfo) []string {
	ids := make([]string, len(info.Members))
	for i, m := range info.Members {
		ids[i] = m.UserID
	}
	return ids
}

func TestDenyJoin(t *testing.T) {
	notifier := &fakeNotifier{}
	r := NewRegistry(notifier)

	info, _ := r.Create(conn(1), snapshot(1), "Test")
	assert.NoError(t, r.RequestJoin(conn(2), snapshot(2), info.ID))

	assert.NoError(t, r.DenyJoin(conn(1), conn(2)))
	denials := notifier.named("lobby:joinDenied")
	assert.Len(t, denials, 1)
	assert.Equal(t, conn(2), denials[0].Target)

	// no retry state: a denied requester gets no approval
	_, err := r.Join(conn(2), snapshot(2), info.ID)
	assert.ErrorIs(t, err, ErrNotInvited)
}

func TestAcceptJoinRequiresOwner(t *testing.T) {
	notifier := &fakeNotifier{}
	r := NewRegistry(notifier)

	info, _ := r.Create(conn(1), snapshot(1), "Test")
	admitDirect(t, r, conn(1), 2, info.ID)
	assert.NoError(t, r.RequestJoin(conn(3), snapshot(3), info.ID))

	assert.ErrorIs(t, r.AcceptJoin(conn(2), conn(3)), ErrNotOwner)
	assert.ErrorIs(t, r.AcceptJoin(conn(9), conn(3)), ErrNotInLobby)
}

func TestLobbyCloseNotifiesPending(t *testing.T) {
	notifier := &fakeNotifier{}
	r := NewRegistry(notifier)

	info, _ := r.Create(conn(1), snapshot(1), "Test")
	assert.NoError(t, r.RequestJoin(conn(5), snapshot(5), info.ID))
	assert.NoError(t, r.Invite(conn(1), snapshot(1), snapshot(6)))
	notifier.reset()

	// last member leaves: the lobby closes and nobody is left hanging
	_, err := r.Leave(conn(1))
	assert.NoError(t, err)

	_, ok := r.Snapshot(info.ID)
	assert.False(t, ok)

	shutdowns := notifier.named("lobby:shutdown")
	assert.Len(t, shutdowns, 2)
	targets := []string{shutdowns[0].Target, shutdowns[1].Target}
	assert.Contains(t, targets, conn(5))
	assert.Contains(t, targets, "user:user-6")
}

func TestDisconnectPurgesPendingState(t *testing.T) {
	notifier := &fakeNotifier{}
	r := NewRegistry(notifier)

	info, _ := r.Create(conn(1), snapshot(1), "Test")
	assert.NoError(t, r.RequestJoin(conn(5), snapshot(5), info.ID))
	assert.NoError(t, r.Invite(conn(1), snapshot(1), snapshot(5)))

	// requester drops before the owner decides
	r.Disconnect(conn(5), "user-5")

	assert.ErrorIs(t, r.AcceptJoin(conn(1), conn(5)), ErrRequestNotFound)
	assert.Empty(t, r.PendingInvites("user-5"))
}

func TestMembershipInvariants(t *testing.T) {
	notifier := &fakeNotifier{}
	r := NewRegistry(notifier)

	info, _ := r.Create(conn(1), snapshot(1), "Test")
	admitDirect(t, r, conn(1), 2, info.ID)
	admitDirect(t, r, conn(1), 3, info.ID)

	current, ok := r.Snapshot(info.ID)
	assert.True(t, ok)
	assert.GreaterOrEqual(t, len(current.Members), 1)
	assert.LessOrEqual(t, len(current.Members), MaxMembers)
	assert.Contains(t, memberUserIDs(current), current.OwnerID)
}
