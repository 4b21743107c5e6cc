package handlers

import (
	"log"

	"github.com/unretain/polyxmobile-sub002/models/realtime"
	socketio_types "github.com/unretain/polyxmobile-sub002/services/socket_io/types"
)

// HandleDisconnecting runs the whole cleanup sequence for a dropped
// connection: lobby leave (with ownership transfer), implicit voice
// leave, pending join-request and invite cancellation, then the
// presence broadcast. It is idempotent and leaves no orphaned members,
// invites or requests behind.
func HandleDisconnecting(user realtime.UserSnapshot, connectionID string,
	sio *socketio_types.SocketServer) func(args ...interface{}) {
	return func(args ...interface{}) {
		log.Printf("[DISCONNECT] user %s, connection %s", user.Username, connectionID)

		departed := sio.Lobbies.Disconnect(connectionID, user.UserID)
		if departed != "" {
			log.Printf("[DISCONNECT] user %s removed from their lobby", user.Username)
		}

		// Unbind is a no-op when a reconnect already replaced this
		// connection; the newer binding must survive.
		if _, ok := sio.Conns.Unbind(connectionID); ok {
			sio.Presence.UserOffline(user.UserID)
		} else if departed != "" {
			// a reconnect already rebound the user; they are still
			// online, just no longer in their old lobby
			sio.Presence.LobbyChanged(user.UserID)
		}

		log.Printf("[DISCONNECT-DONE] user %s", user.Username)
	}
}
