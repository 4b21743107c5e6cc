package lobbies

import (
	"github.com/unretain/polyxmobile-sub002/models/realtime"
)

// Voice membership is layered on lobby membership: the roster is always
// a subset of the member list, and leaving the lobby (leave, kick,
// disconnect) clears the flag in the same removal, so callers never
// need a separate voice cleanup.

// JoinVoice marks the member as in voice, tells the rest of the lobby,
// and returns the current roster so the joiner needs no separate query.
func (r *Registry) JoinVoice(connectionID string) ([]realtime.Member, error) {
	r.mu.RLock()
	lobbyID, ok := r.byConn[connectionID]
	if !ok {
		r.mu.RUnlock()
		return nil, ErrNotInLobby
	}
	lb := r.lobbies[lobbyID]
	r.mu.RUnlock()

	lb.mu.Lock()
	m := lb.memberByConnLocked(connectionID)
	if m == nil {
		lb.mu.Unlock()
		return nil, ErrNotInLobby
	}
	joined := !m.InVoice
	m.InVoice = true
	roster := lb.voiceRosterLocked()
	others := lb.connsLocked(connectionID)
	lb.mu.Unlock()

	if joined {
		for _, c := range others {
			r.notifier.Notify(c, "voice:userJoined", map[string]interface{}{
				"lobby_id": lobbyID,
				"user_id":  m.UserID,
			})
		}
	}
	return roster, nil
}

// LeaveVoice clears the flag. Idempotent: a connection not in voice, or
// not in any lobby, is a no-op success.
func (r *Registry) LeaveVoice(connectionID string) {
	r.mu.RLock()
	lobbyID, ok := r.byConn[connectionID]
	if !ok {
		r.mu.RUnlock()
		return
	}
	lb := r.lobbies[lobbyID]
	r.mu.RUnlock()

	lb.mu.Lock()
	m := lb.memberByConnLocked(connectionID)
	if m == nil || !m.InVoice {
		lb.mu.Unlock()
		return
	}
	m.InVoice = false
	userID := m.UserID
	others := lb.connsLocked(connectionID)
	lb.mu.Unlock()

	for _, c := range others {
		r.notifier.Notify(c, "voice:userLeft", map[string]interface{}{
			"lobby_id": lobbyID,
			"user_id":  userID,
		})
	}
}

// VoiceRoster returns the in-voice members of the connection's lobby.
func (r *Registry) VoiceRoster(connectionID string) ([]realtime.Member, error) {
	r.mu.RLock()
	lobbyID, ok := r.byConn[connectionID]
	if !ok {
		r.mu.RUnlock()
		return nil, ErrNotInLobby
	}
	lb := r.lobbies[lobbyID]
	r.mu.RUnlock()

	lb.mu.Lock()
	roster := lb.voiceRosterLocked()
	lb.mu.Unlock()
	return roster, nil
}
