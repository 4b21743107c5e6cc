package handlers

import (
	"log"

	"github.com/zishang520/socket.io/v2/socket"
	"gorm.io/gorm"

	"github.com/unretain/polyxmobile-sub002/models/realtime"
	"github.com/unretain/polyxmobile-sub002/services/lobbies"
	socketio_types "github.com/unretain/polyxmobile-sub002/services/socket_io/types"
	"github.com/unretain/polyxmobile-sub002/utils"
)

// HandleInvite offers the caller's lobby to one online friend. The
// friend-graph read hits the database and runs before the lobby lock.
func HandleInvite(sio *socketio_types.SocketServer, client *socket.Socket,
	db *gorm.DB, user realtime.UserSnapshot) func(args ...interface{}) {
	return func(args ...interface{}) {
		ack, rest := ackOf(args)
		friendConn := strField(payloadOf(rest), "friend_connection_id")
		if friendConn == "" {
			ackErr(ack, errMissingField)
			return
		}

		target, ok := sio.Conns.Lookup(friendConn)
		if !ok {
			ackErr(ack, lobbies.ErrTargetOffline)
			return
		}

		isFriend, err := utils.AreFriends(db, user.UserID, target.UserID)
		if err != nil {
			log.Printf("[INVITE-ERROR] friendship lookup: %v", err)
			ackErr(ack, err)
			return
		}
		if !isFriend {
			ackErr(ack, lobbies.ErrNotFriend)
			return
		}

		if err := sio.Lobbies.Invite(string(client.Id()), user, target); err != nil {
			ackErr(ack, err)
			return
		}
		log.Printf("[INVITE] %s invited %s", user.Username, target.Username)
		ackOK(ack, nil)
	}
}

// HandleAcceptInvite consumes the invite and joins. When the lobby
// filled up or closed in the interim the accept fails with that error
// and the invite stays consumed; the user must be re-invited.
func HandleAcceptInvite(sio *socketio_types.SocketServer, client *socket.Socket,
	user realtime.UserSnapshot) func(args ...interface{}) {
	return func(args ...interface{}) {
		ack, rest := ackOf(args)
		lobbyID := strField(payloadOf(rest), "lobby_id")
		if lobbyID == "" {
			ackErr(ack, errMissingField)
			return
		}

		info, err := sio.Lobbies.AcceptInvite(string(client.Id()), user, lobbyID)
		if err != nil {
			ackErr(ack, err)
			return
		}
		log.Printf("[INVITE-ACCEPT] %s joined lobby %s", user.Username, lobbyID)
		ackOK(ack, info)
		sio.Presence.LobbyChanged(user.UserID)
	}
}

// HandleDeclineInvite consumes the invite with no further effect.
func HandleDeclineInvite(sio *socketio_types.SocketServer, client *socket.Socket,
	user realtime.UserSnapshot) func(args ...interface{}) {
	return func(args ...interface{}) {
		ack, rest := ackOf(args)
		lobbyID := strField(payloadOf(rest), "lobby_id")
		if lobbyID == "" {
			ackErr(ack, errMissingField)
			return
		}

		sio.Lobbies.DeclineInvite(user.UserID, lobbyID)
		ackOK(ack, nil)
	}
}
