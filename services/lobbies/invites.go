package lobbies

import (
	"github.com/unretain/polyxmobile-sub002/models/realtime"
)

// Invite is an offer, pushed to one online friend, to join a specific
// lobby. At most one live invite exists per (lobby, invitee); a repeat
// invite overwrites the previous one. Invites are consumed by accept or
// decline and vanish when the lobby closes or the invitee disconnects.
type Invite struct {
	LobbyID       string                `json:"lobby_id"`
	LobbyName     string                `json:"lobby_name"`
	InvitedUserID string                `json:"invited_user_id"`
	InvitedBy     realtime.UserSnapshot `json:"invited_by"`
}

// Invite stores an invite for target on the inviter's lobby and pushes
// it to the target's connection only. Friendship and online checks
// belong to the caller: they hit external stores and must not run under
// the lobby lock.
func (r *Registry) Invite(inviterConnectionID string, inviter, target realtime.UserSnapshot) error {
	r.mu.RLock()
	lobbyID, ok := r.byConn[inviterConnectionID]
	if !ok {
		r.mu.RUnlock()
		return ErrNotInLobby
	}
	lb := r.lobbies[lobbyID]
	r.mu.RUnlock()

	lb.mu.Lock()
	if lb.closed {
		lb.mu.Unlock()
		return ErrLobbyNotFound
	}
	if lb.memberByUserLocked(target.UserID) != nil {
		lb.mu.Unlock()
		return ErrTargetAlreadyMember
	}
	inv := &Invite{
		LobbyID:       lb.id,
		LobbyName:     lb.name,
		InvitedUserID: target.UserID,
		InvitedBy:     inviter,
	}
	lb.invites[target.UserID] = inv
	lobbyName := lb.name
	lb.mu.Unlock()

	r.notifier.NotifyUser(target.UserID, "lobby:invite", map[string]interface{}{
		"lobby_id":   lobbyID,
		"lobby_name": lobbyName,
		"invited_by": inviter,
	})
	return nil
}

// AcceptInvite consumes the invite and joins the lobby. The invite is
// consumed even when the join then fails (lobby filled up or closed in
// the interim); the user must be re-invited.
func (r *Registry) AcceptInvite(connectionID string, user realtime.UserSnapshot, lobbyID string) (*realtime.LobbyInfo, error) {
	return r.admit(connectionID, user, lobbyID, func(lb *Lobby) error {
		if _, ok := lb.invites[user.UserID]; !ok {
			return ErrNotInvited
		}
		delete(lb.invites, user.UserID)
		return nil
	})
}

// DeclineInvite consumes the invite with no further effect. A missing
// lobby or invite is a no-op: the invite is gone either way.
func (r *Registry) DeclineInvite(userID, lobbyID string) {
	r.mu.RLock()
	lb, ok := r.lobbies[lobbyID]
	r.mu.RUnlock()
	if !ok {
		return
	}
	lb.mu.Lock()
	delete(lb.invites, userID)
	lb.mu.Unlock()
}

// PendingInvites returns the live invites addressed to a user, so a
// client can re-render its invite inbox after a reconnect.
func (r *Registry) PendingInvites(userID string) []Invite {
	r.mu.RLock()
	all := make([]*Lobby, 0, len(r.lobbies))
	for _, lb := range r.lobbies {
		all = append(all, lb)
	}
	r.mu.RUnlock()

	var invites []Invite
	for _, lb := range all {
		lb.mu.Lock()
		if inv, ok := lb.invites[userID]; ok {
			invites = append(invites, *inv)
		}
		lb.mu.Unlock()
	}
	return invites
}
