package lobbies

import (
	"math/rand"
	"sync"

	"github.com/unretain/polyxmobile-sub002/models/realtime"
)

// Notifier delivers realtime events to live connections. The socket
// layer implements it; tests plug in a recorder.
type Notifier interface {
	Notify(connectionID string, event string, data map[string]interface{})
	NotifyUser(userID string, event string, data map[string]interface{})
}

// Registry owns the lifecycle of every lobby: creation, membership,
// capacity, ownership and shutdown. The registry mutex guards only the
// two maps; each lobby carries its own lock, so operations on different
// lobbies run in parallel. Lock order is always registry before lobby.
type Registry struct {
	mu       sync.RWMutex
	lobbies  map[string]*Lobby
	byConn   map[string]string // connectionID -> lobbyID
	notifier Notifier
}

func NewRegistry(notifier Notifier) *Registry {
	return &Registry{
		lobbies:  make(map[string]*Lobby),
		byConn:   make(map[string]string),
		notifier: notifier,
	}
}

// Random lobby id generation
const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func generateLobbyID(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}

// Create opens a new lobby with the creator as sole member and owner.
func (r *Registry) Create(connectionID string, user realtime.UserSnapshot, name string) (*realtime.LobbyInfo, error) {
	owner := &realtime.Member{
		ConnectionID: connectionID,
		UserID:       user.UserID,
		Username:     user.Username,
		Name:         user.Name,
		Image:        user.Image,
	}

	r.mu.Lock()
	if _, ok := r.byConn[connectionID]; ok {
		r.mu.Unlock()
		return nil, ErrAlreadyInLobby
	}
	id := generateLobbyID(4)
	for _, taken := r.lobbies[id]; taken; _, taken = r.lobbies[id] {
		id = generateLobbyID(4)
	}
	lb := newLobby(id, name, owner)
	r.lobbies[id] = lb
	r.byConn[connectionID] = id
	r.mu.Unlock()

	lb.mu.Lock()
	info := lb.snapshotLocked()
	lb.mu.Unlock()
	return info, nil
}

// Join admits a connection that holds a capability for the lobby: an
// owner-approved join request, or a still-pending invite. A bare join
// with neither fails; the join-request and invite flows are the only
// doors in.
func (r *Registry) Join(connectionID string, user realtime.UserSnapshot, lobbyID string) (*realtime.LobbyInfo, error) {
	return r.admit(connectionID, user, lobbyID, func(lb *Lobby) error {
		if lb.approved[connectionID] {
			delete(lb.approved, connectionID)
			return nil
		}
		if _, ok := lb.invites[user.UserID]; ok {
			delete(lb.invites, user.UserID)
			return nil
		}
		return ErrNotInvited
	})
}

// admit runs the shared join path. consume performs the capability
// check under the lobby lock and runs before the capacity check, so a
// consumed ticket stays consumed even when the join then fails.
func (r *Registry) admit(connectionID string, user realtime.UserSnapshot, lobbyID string, consume func(lb *Lobby) error) (*realtime.LobbyInfo, error) {
	r.mu.Lock()
	if _, ok := r.byConn[connectionID]; ok {
		r.mu.Unlock()
		return nil, ErrAlreadyInLobby
	}
	lb, ok := r.lobbies[lobbyID]
	if !ok {
		r.mu.Unlock()
		return nil, ErrLobbyNotFound
	}

	lb.mu.Lock()
	if lb.closed {
		lb.mu.Unlock()
		r.mu.Unlock()
		return nil, ErrLobbyNotFound
	}
	if err := consume(lb); err != nil {
		lb.mu.Unlock()
		r.mu.Unlock()
		return nil, err
	}
	if len(lb.members) >= MaxMembers {
		lb.mu.Unlock()
		r.mu.Unlock()
		return nil, ErrLobbyFull
	}
	m := &realtime.Member{
		ConnectionID: connectionID,
		UserID:       user.UserID,
		Username:     user.Username,
		Name:         user.Name,
		Image:        user.Image,
	}
	lb.members = append(lb.members, m)
	r.byConn[connectionID] = lobbyID
	r.mu.Unlock()

	info := lb.snapshotLocked()
	others := lb.connsLocked(connectionID)
	lb.mu.Unlock()

	for _, c := range others {
		r.notifier.Notify(c, "lobby:memberJoined", map[string]interface{}{
			"lobby_id": lobbyID,
			"member":   *m,
		})
	}
	return info, nil
}

// Leave removes the connection from its lobby, transferring ownership
// or closing the lobby as needed.
func (r *Registry) Leave(connectionID string) (departedUserID string, err error) {
	rem := r.remove(connectionID, "left")
	if rem == nil {
		return "", ErrNotInLobby
	}
	return rem.member.UserID, nil
}

// Kick behaves like leave for the target, except the target is told it
// was kicked rather than left in silence. The target is re-checked
// under the lobby lock: a kick racing a disconnect fails with
// ErrMemberNotFound instead of emitting a duplicate memberLeft.
func (r *Registry) Kick(requesterConnectionID, targetConnectionID string) (kickedUserID string, err error) {
	if requesterConnectionID == targetConnectionID {
		return "", ErrCannotKickSelf
	}

	r.mu.Lock()
	lobbyID, ok := r.byConn[requesterConnectionID]
	if !ok {
		r.mu.Unlock()
		return "", ErrNotInLobby
	}
	lb := r.lobbies[lobbyID]

	lb.mu.Lock()
	requester := lb.memberByConnLocked(requesterConnectionID)
	if requester == nil || lb.ownerID != requester.UserID {
		lb.mu.Unlock()
		r.mu.Unlock()
		return "", ErrNotOwner
	}
	if lb.memberIndexLocked(targetConnectionID) < 0 {
		lb.mu.Unlock()
		r.mu.Unlock()
		return "", ErrMemberNotFound
	}
	rem := r.removeMemberLocked(lb, targetConnectionID)
	r.mu.Unlock()
	lb.mu.Unlock()

	r.dispatchRemoval(rem, "kicked")
	return rem.member.UserID, nil
}

// Disconnect routes a dropped connection through the exact same
// removal logic as an explicit leave (ownership transfer included),
// then purges every join request the connection had pending and every
// invite addressed to the user. Runs to completion before the caller
// forgets the connection.
func (r *Registry) Disconnect(connectionID, userID string) (departedUserID string) {
	rem := r.remove(connectionID, "disconnected")

	r.mu.RLock()
	all := make([]*Lobby, 0, len(r.lobbies))
	for _, lb := range r.lobbies {
		all = append(all, lb)
	}
	r.mu.RUnlock()

	for _, lb := range all {
		lb.mu.Lock()
		delete(lb.requests, connectionID)
		delete(lb.approved, connectionID)
		if userID != "" {
			delete(lb.invites, userID)
		}
		lb.mu.Unlock()
	}

	if rem == nil {
		return ""
	}
	return rem.member.UserID
}

// removal captures everything a member removal decided under the locks,
// so the fan-out can happen after they are released.
type removal struct {
	member             realtime.Member
	lobbyID            string
	lobbyName          string
	newOwnerID         string
	closed             bool
	remaining          []string
	orphanInviteUsers  []string
	orphanRequestConns []string
}

func (r *Registry) remove(connectionID, reason string) *removal {
	r.mu.Lock()
	lobbyID, ok := r.byConn[connectionID]
	if !ok {
		r.mu.Unlock()
		return nil
	}
	lb := r.lobbies[lobbyID]
	lb.mu.Lock()
	rem := r.removeMemberLocked(lb, connectionID)
	r.mu.Unlock()
	lb.mu.Unlock()

	r.dispatchRemoval(rem, reason)
	return rem
}

// removeMemberLocked is the single removal path shared by leave, kick
// and disconnect. Caller holds r.mu (write) and lb.mu.
func (r *Registry) removeMemberLocked(lb *Lobby, connectionID string) *removal {
	idx := lb.memberIndexLocked(connectionID)
	m := lb.members[idx]
	lb.members = append(lb.members[:idx], lb.members[idx+1:]...)
	delete(r.byConn, connectionID)
	delete(lb.approved, connectionID)

	rem := &removal{
		member:    *m,
		lobbyID:   lb.id,
		lobbyName: lb.name,
	}

	if len(lb.members) == 0 {
		lb.closed = true
		rem.closed = true
		delete(r.lobbies, lb.id)
		for uid := range lb.invites {
			rem.orphanInviteUsers = append(rem.orphanInviteUsers, uid)
		}
		for cid := range lb.requests {
			rem.orphanRequestConns = append(rem.orphanRequestConns, cid)
		}
		lb.invites = make(map[string]*Invite)
		lb.requests = make(map[string]*JoinRequest)
		lb.approved = make(map[string]bool)
		return rem
	}

	if lb.ownerID == m.UserID {
		// earliest-joined remaining member inherits the lobby
		lb.ownerID = lb.members[0].UserID
		rem.newOwnerID = lb.ownerID
	}
	rem.remaining = lb.connsLocked()
	return rem
}

func (r *Registry) dispatchRemoval(rem *removal, reason string) {
	if reason == "kicked" {
		r.notifier.Notify(rem.member.ConnectionID, "lobby:kicked", map[string]interface{}{
			"lobby_id":   rem.lobbyID,
			"lobby_name": rem.lobbyName,
		})
	}
	for _, c := range rem.remaining {
		r.notifier.Notify(c, "lobby:memberLeft", map[string]interface{}{
			"lobby_id": rem.lobbyID,
			"user_id":  rem.member.UserID,
			"reason":   reason,
		})
	}
	if rem.newOwnerID != "" {
		for _, c := range rem.remaining {
			r.notifier.Notify(c, "lobby:ownerChanged", map[string]interface{}{
				"lobby_id":     rem.lobbyID,
				"new_owner_id": rem.newOwnerID,
			})
		}
	}
	// a closed lobby tells its orphaned invitees and requesters, never
	// leaves them hanging
	for _, uid := range rem.orphanInviteUsers {
		r.notifier.NotifyUser(uid, "lobby:shutdown", map[string]interface{}{
			"lobby_id": rem.lobbyID,
			"reason":   "closed",
		})
	}
	for _, cid := range rem.orphanRequestConns {
		r.notifier.Notify(cid, "lobby:shutdown", map[string]interface{}{
			"lobby_id": rem.lobbyID,
			"reason":   "closed",
		})
	}
}

// LobbyOf reports which lobby a connection currently belongs to.
func (r *Registry) LobbyOf(connectionID string) (lobbyID, lobbyName string, ok bool) {
	r.mu.RLock()
	lobbyID, ok = r.byConn[connectionID]
	if !ok {
		r.mu.RUnlock()
		return "", "", false
	}
	lb := r.lobbies[lobbyID]
	r.mu.RUnlock()

	lb.mu.Lock()
	lobbyName = lb.name
	lb.mu.Unlock()
	return lobbyID, lobbyName, true
}

// Members returns the current member list of the connection's lobby,
// the fan-out set for the chat relay.
func (r *Registry) Members(connectionID string) (lobbyID string, members []realtime.Member, err error) {
	r.mu.RLock()
	lobbyID, ok := r.byConn[connectionID]
	if !ok {
		r.mu.RUnlock()
		return "", nil, ErrNotInLobby
	}
	lb := r.lobbies[lobbyID]
	r.mu.RUnlock()

	lb.mu.Lock()
	info := lb.snapshotLocked()
	lb.mu.Unlock()
	return lobbyID, info.Members, nil
}

// Snapshot returns the lobby's current state, if it still exists.
func (r *Registry) Snapshot(lobbyID string) (*realtime.LobbyInfo, bool) {
	r.mu.RLock()
	lb, ok := r.lobbies[lobbyID]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	lb.mu.Lock()
	info := lb.snapshotLocked()
	lb.mu.Unlock()
	return info, true
}
