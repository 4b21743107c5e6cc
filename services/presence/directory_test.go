package presence

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/unretain/polyxmobile-sub002/models/realtime"
)

type fakeFriends map[string][]string

func (f fakeFriends) FriendIDs(userID string) ([]string, error) {
	return f[userID], nil
}

type fakeConns struct {
	byUser map[string]string                // userID -> connectionID
	byConn map[string]realtime.UserSnapshot // connectionID -> user
}

func (f *fakeConns) ConnectionOf(userID string) (string, bool) {
	id, ok := f.byUser[userID]
	return id, ok
}

func (f *fakeConns) Lookup(connectionID string) (realtime.UserSnapshot, bool) {
	u, ok := f.byConn[connectionID]
	return u, ok
}

func (f *fakeConns) online(userID, connectionID string) {
	f.byUser[userID] = connectionID
	f.byConn[connectionID] = realtime.UserSnapshot{UserID: userID, Username: "u-" + userID}
}

type fakeLobbies map[string][2]string // connectionID -> {lobbyID, lobbyName}

func (f fakeLobbies) LobbyOf(connectionID string) (string, string, bool) {
	l, ok := f[connectionID]
	return l[0], l[1], ok
}

type sentEvent struct {
	UserID string
	Name   string
	Data   map[string]interface{}
}

type fakeUserNotifier struct {
	sent []sentEvent
}

func (f *fakeUserNotifier) NotifyUser(userID, event string, data map[string]interface{}) {
	f.sent = append(f.sent, sentEvent{UserID: userID, Name: event, Data: data})
}

func (f *fakeUserNotifier) recipients(event string) []string {
	var out []string
	for _, e := range f.sent {
		if e.Name == event {
			out = append(out, e.UserID)
		}
	}
	return out
}

func newTestDirectory(friends fakeFriends) (*Directory, *fakeConns, fakeLobbies, *fakeUserNotifier) {
	conns := &fakeConns{byUser: map[string]string{}, byConn: map[string]realtime.UserSnapshot{}}
	lobbies := fakeLobbies{}
	notifier := &fakeUserNotifier{}
	return NewDirectory(friends, conns, lobbies, notifier, nil), conns, lobbies, notifier
}

func TestSnapshotOnlyOnlineFriends(t *testing.T) {
	d, conns, lobbies, _ := newTestDirectory(fakeFriends{})

	conns.online("bob", "c-bob")
	lobbies["c-bob"] = [2]string{"ABCD", "Bob's lobby"}
	// carol exists in the graph but is offline

	records := d.Snapshot([]string{"bob", "carol"})
	assert.Len(t, records, 1)
	assert.Equal(t, "bob", records[0].UserID)
	assert.Equal(t, "c-bob", records[0].ConnectionID)
	assert.Equal(t, "ABCD", records[0].LobbyID)
	assert.Equal(t, "Bob's lobby", records[0].LobbyName)
}

func TestSnapshotForUsesOwnGraph(t *testing.T) {
	d, conns, _, _ := newTestDirectory(fakeFriends{
		"alice": {"bob"},
	})
	conns.online("bob", "c-bob")
	conns.online("mallory", "c-mallory") // online but not alice's friend

	records := d.SnapshotFor("alice")
	assert.Len(t, records, 1)
	assert.Equal(t, "bob", records[0].UserID)
}

func TestUserOnlinePushesToFriendsOnly(t *testing.T) {
	d, conns, _, notifier := newTestDirectory(fakeFriends{
		"alice": {"bob", "carol"},
	})
	conns.online("alice", "c-alice")
	conns.online("bob", "c-bob")

	d.UserOnline("alice")

	// both friends are addressed; delivery to offline carol is the
	// notifier's no-op, not the directory's concern
	assert.ElementsMatch(t, []string{"bob", "carol"}, notifier.recipients("friends:userOnline"))
}

func TestUserOfflineAnnounced(t *testing.T) {
	d, _, _, notifier := newTestDirectory(fakeFriends{
		"alice": {"bob"},
	})

	d.UserOffline("alice")

	assert.Equal(t, []string{"bob"}, notifier.recipients("friends:userOffline"))
	assert.Equal(t, "alice", notifier.sent[0].Data["user_id"])
}

func TestLobbyChangedCarriesNewLobby(t *testing.T) {
	d, conns, lobbies, notifier := newTestDirectory(fakeFriends{
		"alice": {"bob"},
	})
	conns.online("alice", "c-alice")
	lobbies["c-alice"] = [2]string{"WXYZ", "Game night"}

	d.LobbyChanged("alice")

	updates := notifier.recipients("friends:lobbyUpdate")
	assert.Equal(t, []string{"bob"}, updates)
	rec := notifier.sent[0].Data["friend"].(realtime.OnlineFriendRecord)
	assert.Equal(t, "WXYZ", rec.LobbyID)

	// offline in the meantime: nothing is pushed
	d.LobbyChanged("ghost")
	assert.Len(t, notifier.sent, 1)
}

func TestFriendAddedNotifiesBothEnds(t *testing.T) {
	d, conns, _, notifier := newTestDirectory(fakeFriends{})
	conns.online("bob", "c-bob")

	alice := realtime.UserSnapshot{UserID: "alice", Username: "u-alice"}
	bob := realtime.UserSnapshot{UserID: "bob", Username: "u-bob"}
	d.FriendAdded(alice, bob)

	assert.ElementsMatch(t, []string{"alice", "bob"}, notifier.recipients("friends:newFriend"))
	// alice's copy carries bob's live presence, bob's copy has none
	for _, e := range notifier.sent {
		friend := e.Data["friend"].(realtime.UserSnapshot)
		_, hasPresence := e.Data["presence"]
		assert.Equal(t, friend.UserID == "bob", hasPresence)
	}
}

func TestFriendRemovedNotifiesBothEnds(t *testing.T) {
	d, _, _, notifier := newTestDirectory(fakeFriends{})

	d.FriendRemoved("alice", "bob")

	assert.ElementsMatch(t, []string{"alice", "bob"}, notifier.recipients("friends:wasRemoved"))
}

func TestFriendRequestReceived(t *testing.T) {
	d, _, _, notifier := newTestDirectory(fakeFriends{})

	sender := realtime.UserSnapshot{UserID: "alice"}
	d.FriendRequestReceived("bob", sender)

	assert.Equal(t, []string{"bob"}, notifier.recipients("friends:requestReceived"))
	assert.Equal(t, sender, notifier.sent[0].Data["from"])
}
