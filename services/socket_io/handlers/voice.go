package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"

	"github.com/unretain/polyxmobile-sub002/models/realtime"
	socketio_types "github.com/unretain/polyxmobile-sub002/services/socket_io/types"
)

// HandleJoinVoice flags the member as in voice and acks with the
// current roster, so the joiner needs no follow-up query. Mute/deafen
// are client-local and never tracked here.
func HandleJoinVoice(sio *socketio_types.SocketServer, client *socket.Socket,
	user realtime.UserSnapshot) func(args ...interface{}) {
	return func(args ...interface{}) {
		ack, _ := ackOf(args)

		roster, err := sio.Lobbies.JoinVoice(string(client.Id()))
		if err != nil {
			ackErr(ack, err)
			return
		}
		ackOK(ack, gin.H{"members": roster})
	}
}

// HandleLeaveVoice clears the flag. Idempotent no-op when the caller is
// not in voice.
func HandleLeaveVoice(sio *socketio_types.SocketServer, client *socket.Socket,
	user realtime.UserSnapshot) func(args ...interface{}) {
	return func(args ...interface{}) {
		ack, _ := ackOf(args)
		sio.Lobbies.LeaveVoice(string(client.Id()))
		ackOK(ack, nil)
	}
}

// HandleVoiceMembers acks the current voice roster on demand.
func HandleVoiceMembers(sio *socketio_types.SocketServer, client *socket.Socket,
	user realtime.UserSnapshot) func(args ...interface{}) {
	return func(args ...interface{}) {
		ack, _ := ackOf(args)

		roster, err := sio.Lobbies.VoiceRoster(string(client.Id()))
		if err != nil {
			ackErr(ack, err)
			return
		}
		ackOK(ack, gin.H{"members": roster})
	}
}
