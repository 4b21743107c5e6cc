package handlers

import (
	"errors"
	"log"

	"github.com/zishang520/socket.io/v2/socket"

	"github.com/unretain/polyxmobile-sub002/models/realtime"
	socketio_types "github.com/unretain/polyxmobile-sub002/services/socket_io/types"
)

var errMissingField = errors.New("missing or invalid payload field")

// HandleCreateLobby opens a lobby with the caller as sole member and
// owner.
func HandleCreateLobby(sio *socketio_types.SocketServer, client *socket.Socket,
	user realtime.UserSnapshot) func(args ...interface{}) {
	return func(args ...interface{}) {
		ack, rest := ackOf(args)
		name := strField(payloadOf(rest), "name")
		if name == "" {
			ackErr(ack, errMissingField)
			return
		}

		info, err := sio.Lobbies.Create(string(client.Id()), user, name)
		if err != nil {
			ackErr(ack, err)
			return
		}
		log.Printf("[LOBBY-CREATE] %s created lobby %s (%q)", user.Username, info.ID, name)
		ackOK(ack, info)
		sio.Presence.LobbyChanged(user.UserID)
	}
}

// HandleJoinLobby is the terminal step of the invite and join-request
// flows: it only admits connections holding an owner approval or a
// pending invite for the lobby.
func HandleJoinLobby(sio *socketio_types.SocketServer, client *socket.Socket,
	user realtime.UserSnapshot) func(args ...interface{}) {
	return func(args ...interface{}) {
		ack, rest := ackOf(args)
		lobbyID := strField(payloadOf(rest), "lobby_id")
		if lobbyID == "" {
			ackErr(ack, errMissingField)
			return
		}

		info, err := sio.Lobbies.Join(string(client.Id()), user, lobbyID)
		if err != nil {
			ackErr(ack, err)
			return
		}
		log.Printf("[LOBBY-JOIN] %s joined lobby %s", user.Username, lobbyID)
		ackOK(ack, info)
		sio.Presence.LobbyChanged(user.UserID)
	}
}

// HandleLeaveLobby removes the caller from its lobby, transferring
// ownership or closing the lobby as needed.
func HandleLeaveLobby(sio *socketio_types.SocketServer, client *socket.Socket,
	user realtime.UserSnapshot) func(args ...interface{}) {
	return func(args ...interface{}) {
		ack, _ := ackOf(args)

		if _, err := sio.Lobbies.Leave(string(client.Id())); err != nil {
			ackErr(ack, err)
			return
		}
		log.Printf("[LOBBY-LEAVE] %s left their lobby", user.Username)
		ackOK(ack, nil)
		sio.Presence.LobbyChanged(user.UserID)
	}
}

// HandleKickFromLobby ejects a member; only the owner may do it, and
// the target hears "kicked" rather than silence.
func HandleKickFromLobby(sio *socketio_types.SocketServer, client *socket.Socket,
	user realtime.UserSnapshot) func(args ...interface{}) {
	return func(args ...interface{}) {
		ack, rest := ackOf(args)
		targetConn := strField(payloadOf(rest), "target_connection_id")
		if targetConn == "" {
			ackErr(ack, errMissingField)
			return
		}

		kickedUserID, err := sio.Lobbies.Kick(string(client.Id()), targetConn)
		if err != nil {
			ackErr(ack, err)
			return
		}
		log.Printf("[LOBBY-KICK] %s kicked user %s", user.Username, kickedUserID)
		ackOK(ack, nil)
		sio.Presence.LobbyChanged(kickedUserID)
	}
}
