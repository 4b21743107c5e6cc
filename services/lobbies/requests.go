package lobbies

import (
	"github.com/unretain/polyxmobile-sub002/models/realtime"
)

// JoinRequest is a requester-initiated ask-to-join, waiting for the
// lobby owner's approval. At most one live request exists per
// (lobby, requester); a repeat request refreshes the single record.
type JoinRequest struct {
	LobbyID               string                `json:"lobby_id"`
	RequesterConnectionID string                `json:"requester_connection_id"`
	Requester             realtime.UserSnapshot `json:"requester"`
}

// RequestJoin files a join request with the lobby owner. Requesting the
// lobby the connection is already in is an idempotent no-op success.
func (r *Registry) RequestJoin(connectionID string, requester realtime.UserSnapshot, lobbyID string) error {
	r.mu.RLock()
	current, inLobby := r.byConn[connectionID]
	lb, ok := r.lobbies[lobbyID]
	r.mu.RUnlock()

	if inLobby {
		if current == lobbyID {
			return nil
		}
		return ErrAlreadyInLobby
	}
	if !ok {
		return ErrLobbyNotFound
	}

	lb.mu.Lock()
	if lb.closed {
		lb.mu.Unlock()
		return ErrLobbyNotFound
	}
	lb.requests[connectionID] = &JoinRequest{
		LobbyID:               lb.id,
		RequesterConnectionID: connectionID,
		Requester:             requester,
	}
	owner := lb.memberByUserLocked(lb.ownerID)
	lb.mu.Unlock()

	if owner != nil {
		r.notifier.Notify(owner.ConnectionID, "lobby:joinRequest", map[string]interface{}{
			"lobby_id":  lobbyID,
			"requester": requester,
		})
	}
	return nil
}

// AcceptJoin consumes the request and clears the requester to join.
// The requester's client then issues the actual lobby:join itself
// (two-phase: approval, then join).
func (r *Registry) AcceptJoin(ownerConnectionID, requesterConnectionID string) error {
	return r.resolveRequest(ownerConnectionID, requesterConnectionID, true)
}

// DenyJoin consumes the request and tells the requester no. No retry
// state is kept; the requester may ask again.
func (r *Registry) DenyJoin(ownerConnectionID, requesterConnectionID string) error {
	return r.resolveRequest(ownerConnectionID, requesterConnectionID, false)
}

func (r *Registry) resolveRequest(ownerConnectionID, requesterConnectionID string, accept bool) error {
	r.mu.RLock()
	lobbyID, ok := r.byConn[ownerConnectionID]
	if !ok {
		r.mu.RUnlock()
		return ErrNotInLobby
	}
	lb := r.lobbies[lobbyID]
	r.mu.RUnlock()

	lb.mu.Lock()
	owner := lb.memberByConnLocked(ownerConnectionID)
	if owner == nil || lb.ownerID != owner.UserID {
		lb.mu.Unlock()
		return ErrNotOwner
	}
	// The requester may have disconnected between request and accept;
	// that race surfaces here as a recoverable error.
	if _, ok := lb.requests[requesterConnectionID]; !ok {
		lb.mu.Unlock()
		return ErrRequestNotFound
	}
	delete(lb.requests, requesterConnectionID)
	if accept {
		lb.approved[requesterConnectionID] = true
	}
	lobbyName := lb.name
	lb.mu.Unlock()

	event := "lobby:joinDenied"
	if accept {
		event = "lobby:joinAccepted"
	}
	r.notifier.Notify(requesterConnectionID, event, map[string]interface{}{
		"lobby_id":   lobbyID,
		"lobby_name": lobbyName,
	})
	return nil
}
