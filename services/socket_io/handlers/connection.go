package handlers

import (
	"errors"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
	"gorm.io/gorm"

	"github.com/unretain/polyxmobile-sub002/middleware"
	"github.com/unretain/polyxmobile-sub002/models/postgres"
	"github.com/unretain/polyxmobile-sub002/models/realtime"
	"github.com/unretain/polyxmobile-sub002/services/connections"
)

// VerifyUserConnection authenticates a fresh socket.io connection from
// the JWT in its handshake. A failed handshake is fatal to the
// connection: an error is emitted and the socket closed. On success the
// user is bound in the connection registry; a displaced connection of
// the same user (a reconnect) is force-closed, which routes its lobby
// membership through the normal disconnect cleanup.
func VerifyUserConnection(client *socket.Socket, db *gorm.DB,
	conns *connections.Registry) (realtime.UserSnapshot, bool) {
	connID := string(client.Id())

	if err := conns.BeginHandshake(connID); err != nil {
		if errors.Is(err, connections.ErrAlreadyAuthenticating) {
			client.Emit("error", gin.H{"error": "Authentication already in progress"})
			return realtime.UserSnapshot{}, false
		}
	}

	fail := func(msg string) (realtime.UserSnapshot, bool) {
		conns.EndHandshake(connID)
		client.Emit("error", gin.H{"error": msg})
		client.Disconnect(true)
		return realtime.UserSnapshot{}, false
	}

	authData, ok := client.Handshake().Auth.(map[string]interface{})
	if !ok {
		return fail("Authentication failed: missing auth data")
	}

	userID, err := middleware.Socketio_JWT_decoder(authData)
	if err != nil {
		log.Printf("[AUTH-ERROR] invalid JWT on %s: %v", connID, err)
		return fail("Authentication failed: invalid JWT. Remember to set it on the 'authorization' field with the 'Bearer ' prefix.")
	}

	var user postgres.User
	if err := db.Where("id = ?", userID).First(&user).Error; err != nil {
		log.Printf("[AUTH-ERROR] user %s not found: %v", userID, err)
		return fail("Authentication failed: could not find user")
	}

	snapshot := realtime.UserSnapshot{
		UserID:   user.ID,
		Username: user.Username,
		Name:     user.Name,
		Image:    user.Image,
	}

	if replaced := conns.Authenticate(connID, snapshot, client); replaced != nil {
		log.Printf("[AUTH] user %s reconnected, dropping stale connection", user.Username)
		replaced.Emit("error", gin.H{"error": "Replaced by a newer connection"})
		replaced.Disconnect(true)
	}

	log.Printf("[AUTH-SUCCESS] user %s authenticated on connection %s", user.Username, connID)
	return snapshot, true
}
