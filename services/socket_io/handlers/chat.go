package handlers

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zishang520/socket.io/v2/socket"

	"github.com/unretain/polyxmobile-sub002/models/realtime"
	socketio_types "github.com/unretain/polyxmobile-sub002/services/socket_io/types"
)

// HandleChatMessage relays a text message to every current member of
// the caller's lobby, sender included, with a server-assigned id and
// timestamp. Messages are never persisted beyond delivery.
func HandleChatMessage(sio *socketio_types.SocketServer, client *socket.Socket,
	user realtime.UserSnapshot) func(args ...interface{}) {
	return func(args ...interface{}) {
		ack, rest := ackOf(args)
		content := strField(payloadOf(rest), "content")
		if strings.TrimSpace(content) == "" {
			ackErr(ack, errMissingField)
			return
		}

		_, members, err := sio.Lobbies.Members(string(client.Id()))
		if err != nil {
			ackErr(ack, err)
			return
		}

		msg := realtime.ChatMessage{
			ID:        uuid.NewString(),
			UserID:    user.UserID,
			Username:  user.Username,
			Content:   content,
			Timestamp: time.Now(),
		}
		payload := map[string]interface{}{
			"id":        msg.ID,
			"user_id":   msg.UserID,
			"username":  msg.Username,
			"content":   msg.Content,
			"timestamp": msg.Timestamp,
		}
		for _, m := range members {
			sio.Conns.Notify(m.ConnectionID, "chat:message", payload)
		}
		ackOK(ack, msg)
	}
}

// HandleTyping relays the typing flag to the rest of the lobby. The
// server only forwards the boolean; clients auto-clear it after their
// own inactivity window.
func HandleTyping(sio *socketio_types.SocketServer, client *socket.Socket,
	user realtime.UserSnapshot) func(args ...interface{}) {
	return func(args ...interface{}) {
		ack, rest := ackOf(args)
		isTyping := boolField(payloadOf(rest), "is_typing")

		_, members, err := sio.Lobbies.Members(string(client.Id()))
		if err != nil {
			ackErr(ack, err)
			return
		}

		payload := map[string]interface{}{
			"user_id":   user.UserID,
			"is_typing": isTyping,
		}
		self := string(client.Id())
		for _, m := range members {
			if m.ConnectionID == self {
				continue
			}
			sio.Conns.Notify(m.ConnectionID, "chat:typing", payload)
		}
		ackOK(ack, nil)
	}
}
