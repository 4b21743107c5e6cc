package handlers

import (
	"log"

	"github.com/zishang520/socket.io/v2/socket"

	"github.com/unretain/polyxmobile-sub002/models/realtime"
	socketio_types "github.com/unretain/polyxmobile-sub002/services/socket_io/types"
)

// HandleRequestJoin files an ask-to-join with the lobby owner. A repeat
// request for the same lobby refreshes the single pending record.
func HandleRequestJoin(sio *socketio_types.SocketServer, client *socket.Socket,
	user realtime.UserSnapshot) func(args ...interface{}) {
	return func(args ...interface{}) {
		ack, rest := ackOf(args)
		lobbyID := strField(payloadOf(rest), "lobby_id")
		if lobbyID == "" {
			ackErr(ack, errMissingField)
			return
		}

		if err := sio.Lobbies.RequestJoin(string(client.Id()), user, lobbyID); err != nil {
			ackErr(ack, err)
			return
		}
		log.Printf("[JOIN-REQUEST] %s asked to join lobby %s", user.Username, lobbyID)
		ackOK(ack, nil)
	}
}

// HandleAcceptJoin approves a pending request. The requester is told to
// issue the actual lobby:join itself (two-phase), so a requester that
// vanished between request and accept surfaces as RequestNotFound.
func HandleAcceptJoin(sio *socketio_types.SocketServer, client *socket.Socket,
	user realtime.UserSnapshot) func(args ...interface{}) {
	return func(args ...interface{}) {
		ack, rest := ackOf(args)
		requesterConn := strField(payloadOf(rest), "requester_connection_id")
		if requesterConn == "" {
			ackErr(ack, errMissingField)
			return
		}

		if err := sio.Lobbies.AcceptJoin(string(client.Id()), requesterConn); err != nil {
			ackErr(ack, err)
			return
		}
		log.Printf("[JOIN-ACCEPT] %s approved requester %s", user.Username, requesterConn)
		ackOK(ack, nil)
	}
}

// HandleDenyJoin consumes the request and notifies the requester. No
// retry state is kept; the requester may ask again.
func HandleDenyJoin(sio *socketio_types.SocketServer, client *socket.Socket,
	user realtime.UserSnapshot) func(args ...interface{}) {
	return func(args ...interface{}) {
		ack, rest := ackOf(args)
		requesterConn := strField(payloadOf(rest), "requester_connection_id")
		if requesterConn == "" {
			ackErr(ack, errMissingField)
			return
		}

		if err := sio.Lobbies.DenyJoin(string(client.Id()), requesterConn); err != nil {
			ackErr(ack, err)
			return
		}
		ackOK(ack, nil)
	}
}
