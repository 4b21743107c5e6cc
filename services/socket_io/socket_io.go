package socket_io

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io/v2/socket"
	"gorm.io/gorm"

	"github.com/unretain/polyxmobile-sub002/services/socket_io/handlers"
	socketio_types "github.com/unretain/polyxmobile-sub002/services/socket_io/types"
)

type MySocketServer socketio_types.SocketServer

// Start mounts the socket.io server on the gin router and registers
// the realtime event catalog for every authenticated connection.
func (sio *MySocketServer) Start(router *gin.Engine, db *gorm.DB) {
	c := socket.DefaultServerOptions()
	c.SetServeClient(true)
	// NOTE: higher ping interval and timeout to 1) reduce network load
	// and 2) support slower networks
	c.SetPingInterval(5 * time.Second)
	c.SetPingTimeout(3 * time.Second)
	c.SetMaxHttpBufferSize(1000000)
	// unauthenticated connections idle past this are dropped
	c.SetConnectTimeout(10 * time.Second)
	c.SetTransports(types.NewSet("polling", "websocket"))
	c.SetCors(&types.Cors{
		Origin:      "*",
		Credentials: true,
	})

	sio.Sio_server = socket.NewServer(nil, nil)
	sio.Sio_server.On("connection", func(clients ...interface{}) {
		client := clients[0].(*socket.Socket)
		s := (*socketio_types.SocketServer)(sio)

		user, ok := handlers.VerifyUserConnection(client, db, s.Conns)
		if !ok {
			return
		}
		connID := string(client.Id())

		// Lobby lifecycle
		client.On("lobby:create", handlers.HandleCreateLobby(s, client, user))
		client.On("lobby:join", handlers.HandleJoinLobby(s, client, user))
		client.On("lobby:leave", handlers.HandleLeaveLobby(s, client, user))
		client.On("lobby:kick", handlers.HandleKickFromLobby(s, client, user))

		// Invitations
		client.On("lobby:invite", handlers.HandleInvite(s, client, db, user))
		client.On("lobby:acceptInvite", handlers.HandleAcceptInvite(s, client, user))
		client.On("lobby:declineInvite", handlers.HandleDeclineInvite(s, client, user))

		// Join requests (owner-approved)
		client.On("lobby:requestJoin", handlers.HandleRequestJoin(s, client, user))
		client.On("lobby:acceptJoin", handlers.HandleAcceptJoin(s, client, user))
		client.On("lobby:denyJoin", handlers.HandleDenyJoin(s, client, user))

		// Voice roster
		client.On("voice:join", handlers.HandleJoinVoice(s, client, user))
		client.On("voice:leave", handlers.HandleLeaveVoice(s, client, user))
		client.On("voice:members", handlers.HandleVoiceMembers(s, client, user))

		// Chat relay
		client.On("chat:message", handlers.HandleChatMessage(s, client, user))
		client.On("chat:typing", handlers.HandleTyping(s, client, user))

		// Presence reads
		client.On("friends:getOnline", handlers.HandleGetOnlineFriends(s, client, db, user))

		// Full cleanup path for dropped connections
		client.On("disconnecting", handlers.HandleDisconnecting(user, connID, s))

		// Initial snapshot so the client can render its social panel
		// without a round of queries
		client.Emit("lobby:authSuccess", gin.H{
			"user":            user,
			"online_friends":  s.Presence.SnapshotFor(user.UserID),
			"pending_invites": s.Lobbies.PendingInvites(user.UserID),
		})
		s.Presence.UserOnline(user.UserID)
	})

	router.POST("/socket.io/*f", gin.WrapH(sio.Sio_server.ServeHandler(c)))
	router.GET("/socket.io/*f", gin.WrapH(sio.Sio_server.ServeHandler(c)))

	SignalC := make(chan os.Signal, 1)
	signal.Notify(SignalC, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		for s := range SignalC {
			switch s {
			case syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT:
				sio.Sio_server.Close(nil)
				os.Exit(0)
			}
		}
	}()

	log.Println("Socket server started")
}
