package handlers

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
	"gorm.io/gorm"

	"github.com/unretain/polyxmobile-sub002/models/realtime"
	socketio_types "github.com/unretain/polyxmobile-sub002/services/socket_io/types"
	"github.com/unretain/polyxmobile-sub002/utils"
)

// HandleGetOnlineFriends acks the live records of the requested ids,
// intersected with the caller's actual friend graph: a viewer only ever
// reads presence of their own friends.
func HandleGetOnlineFriends(sio *socketio_types.SocketServer, client *socket.Socket,
	db *gorm.DB, user realtime.UserSnapshot) func(args ...interface{}) {
	return func(args ...interface{}) {
		ack, rest := ackOf(args)
		requested := strSliceField(payloadOf(rest), "friend_ids")

		actual, err := utils.FriendIDs(db, user.UserID)
		if err != nil {
			log.Printf("[FRIENDS-ERROR] friend lookup for %s: %v", user.UserID, err)
			ackErr(ack, err)
			return
		}

		ids := actual
		if len(requested) > 0 {
			allowed := make(map[string]bool, len(actual))
			for _, id := range actual {
				allowed[id] = true
			}
			ids = ids[:0]
			for _, id := range requested {
				if allowed[id] {
					ids = append(ids, id)
				}
			}
		}

		ackOK(ack, gin.H{"friends": sio.Presence.Snapshot(ids)})
	}
}
