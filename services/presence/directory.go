package presence

import (
	"log"

	"github.com/unretain/polyxmobile-sub002/models/realtime"
	redisclient "github.com/unretain/polyxmobile-sub002/services/redis"
)

// FriendSource reads the persisted friend graph. It is an external
// store: lookups happen before any lobby lock is taken.
type FriendSource interface {
	FriendIDs(userID string) ([]string, error)
}

// ConnSource resolves users to live connections.
type ConnSource interface {
	ConnectionOf(userID string) (connectionID string, ok bool)
	Lookup(connectionID string) (realtime.UserSnapshot, bool)
}

// LobbyLocator reports which lobby a connection is in, if any.
type LobbyLocator interface {
	LobbyOf(connectionID string) (lobbyID, lobbyName string, ok bool)
}

// UserNotifier pushes an event to a user's live connection.
type UserNotifier interface {
	NotifyUser(userID string, event string, data map[string]interface{})
}

// Directory derives each user's live "online friends" view from the
// connection registry, the lobby registry and the friend graph, and
// pushes deltas to the friends of whoever changed. Updates are scoped
// per viewer: a user only ever hears about users in their own graph.
// Records are also mirrored to Redis for the REST surface.
type Directory struct {
	friends  FriendSource
	conns    ConnSource
	lobbies  LobbyLocator
	notifier UserNotifier
	cache    *redisclient.RedisClient
}

func NewDirectory(friends FriendSource, conns ConnSource, lobbies LobbyLocator,
	notifier UserNotifier, cache *redisclient.RedisClient) *Directory {
	return &Directory{
		friends:  friends,
		conns:    conns,
		lobbies:  lobbies,
		notifier: notifier,
		cache:    cache,
	}
}

// Record projects a user's live state, or false when offline.
func (d *Directory) Record(userID string) (realtime.OnlineFriendRecord, bool) {
	connID, ok := d.conns.ConnectionOf(userID)
	if !ok {
		return realtime.OnlineFriendRecord{}, false
	}
	user, ok := d.conns.Lookup(connID)
	if !ok {
		return realtime.OnlineFriendRecord{}, false
	}
	rec := realtime.OnlineFriendRecord{
		UserID:       user.UserID,
		Username:     user.Username,
		Name:         user.Name,
		Image:        user.Image,
		ConnectionID: connID,
	}
	if lobbyID, lobbyName, ok := d.lobbies.LobbyOf(connID); ok {
		rec.LobbyID = lobbyID
		rec.LobbyName = lobbyName
	}
	return rec, true
}

// Snapshot resolves a friend id list to the subset currently online.
func (d *Directory) Snapshot(friendIDs []string) []realtime.OnlineFriendRecord {
	online := make([]realtime.OnlineFriendRecord, 0, len(friendIDs))
	for _, id := range friendIDs {
		if rec, ok := d.Record(id); ok {
			online = append(online, rec)
		}
	}
	return online
}

// SnapshotFor returns the initial online-friends view for a user,
// pushed right after a successful handshake.
func (d *Directory) SnapshotFor(userID string) []realtime.OnlineFriendRecord {
	ids, err := d.friends.FriendIDs(userID)
	if err != nil {
		log.Printf("[PRESENCE-ERROR] friend lookup for %s: %v", userID, err)
		return nil
	}
	return d.Snapshot(ids)
}

// UserOnline announces a fresh connection to the user's online friends
// and mirrors the record.
func (d *Directory) UserOnline(userID string) {
	rec, ok := d.Record(userID)
	if !ok {
		return
	}
	d.mirror(&rec)
	d.pushToFriends(userID, "friends:userOnline", map[string]interface{}{"friend": rec})
}

// UserOffline announces a departure and drops the mirror entry.
func (d *Directory) UserOffline(userID string) {
	if d.cache != nil {
		if err := d.cache.DeletePresence(userID); err != nil {
			log.Printf("[PRESENCE-ERROR] %v", err)
		}
	}
	d.pushToFriends(userID, "friends:userOffline", map[string]interface{}{"user_id": userID})
}

// LobbyChanged re-projects the user after a join/leave/kick/close and
// pushes the new record to their online friends.
func (d *Directory) LobbyChanged(userID string) {
	rec, ok := d.Record(userID)
	if !ok {
		// went offline in the meantime; the disconnect path handles it
		return
	}
	d.mirror(&rec)
	d.pushToFriends(userID, "friends:lobbyUpdate", map[string]interface{}{"friend": rec})
}

// FriendAdded tells both ends of a freshly accepted friendship about
// each other, with live presence when available.
func (d *Directory) FriendAdded(a, b realtime.UserSnapshot) {
	d.notifier.NotifyUser(a.UserID, "friends:newFriend", d.friendPayload(b))
	d.notifier.NotifyUser(b.UserID, "friends:newFriend", d.friendPayload(a))
}

// FriendRemoved tells both ends that the friendship is gone.
func (d *Directory) FriendRemoved(userID1, userID2 string) {
	d.notifier.NotifyUser(userID1, "friends:wasRemoved", map[string]interface{}{"user_id": userID2})
	d.notifier.NotifyUser(userID2, "friends:wasRemoved", map[string]interface{}{"user_id": userID1})
}

// FriendRequestReceived pushes a pending friend request to its
// recipient, if online.
func (d *Directory) FriendRequestReceived(recipientID string, sender realtime.UserSnapshot) {
	d.notifier.NotifyUser(recipientID, "friends:requestReceived", map[string]interface{}{"from": sender})
}

func (d *Directory) friendPayload(u realtime.UserSnapshot) map[string]interface{} {
	payload := map[string]interface{}{"friend": u}
	if rec, ok := d.Record(u.UserID); ok {
		payload["presence"] = rec
	}
	return payload
}

func (d *Directory) pushToFriends(userID, event string, data map[string]interface{}) {
	ids, err := d.friends.FriendIDs(userID)
	if err != nil {
		log.Printf("[PRESENCE-ERROR] friend lookup for %s: %v", userID, err)
		return
	}
	for _, id := range ids {
		d.notifier.NotifyUser(id, event, data)
	}
}

func (d *Directory) mirror(rec *realtime.OnlineFriendRecord) {
	if d.cache == nil {
		return
	}
	if err := d.cache.SavePresence(rec); err != nil {
		log.Printf("[PRESENCE-ERROR] %v", err)
	}
}
