package socketio_types

import (
	"github.com/zishang520/socket.io/v2/socket"

	"github.com/unretain/polyxmobile-sub002/services/connections"
	"github.com/unretain/polyxmobile-sub002/services/lobbies"
	"github.com/unretain/polyxmobile-sub002/services/presence"
)

// SocketServer bundles the socket.io server with the realtime core it
// drives. The connection registry is the only holder of live sockets;
// lobbies and presence work with ids and resolve through it.
type SocketServer struct {
	Sio_server *socket.Server
	Conns      *connections.Registry
	Lobbies    *lobbies.Registry
	Presence   *presence.Directory
}

func NewSocketServer(conns *connections.Registry, lobbyReg *lobbies.Registry,
	directory *presence.Directory) *SocketServer {
	return &SocketServer{
		Conns:    conns,
		Lobbies:  lobbyReg,
		Presence: directory,
	}
}
