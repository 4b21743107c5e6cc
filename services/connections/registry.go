package connections

import (
	"errors"
	"log"
	"sync"

	"github.com/zishang520/socket.io/v2/socket"

	"github.com/unretain/polyxmobile-sub002/models/realtime"
)

// ErrAlreadyAuthenticating is returned when a second handshake arrives
// for a connection whose first handshake is still in flight.
var ErrAlreadyAuthenticating = errors.New("authentication already in progress")

// Conn binds an authenticated user to one live socket.
type Conn struct {
	ID     string
	User   realtime.UserSnapshot
	socket *socket.Socket
}

// Registry maps persistent user identities to their single live
// connection. It is the only place a transport handle is held; every
// other component stores ids and resolves here at send time.
type Registry struct {
	mu         sync.RWMutex
	byUser     map[string]*Conn // userID -> live connection
	byConn     map[string]*Conn // connectionID -> live connection
	handshakes map[string]bool  // connection ids with a handshake in flight
}

func NewRegistry() *Registry {
	return &Registry{
		byUser:     make(map[string]*Conn),
		byConn:     make(map[string]*Conn),
		handshakes: make(map[string]bool),
	}
}

// BeginHandshake marks the connection as authenticating. A second call
// before EndHandshake fails with ErrAlreadyAuthenticating.
func (r *Registry) BeginHandshake(connectionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.handshakes[connectionID] {
		return ErrAlreadyAuthenticating
	}
	r.handshakes[connectionID] = true
	return nil
}

func (r *Registry) EndHandshake(connectionID string) {
	r.mu.Lock()
	delete(r.handshakes, connectionID)
	r.mu.Unlock()
}

// Authenticate binds the user to this connection. A stale mapping for
// the same user is replaced (a reconnect); the displaced socket, if
// still open, is returned so the caller can force-disconnect it, which
// routes its lobby membership through the normal disconnect cleanup.
func (r *Registry) Authenticate(connectionID string, user realtime.UserSnapshot, s *socket.Socket) (replaced *socket.Socket) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.byUser[user.UserID]; ok && old.ID != connectionID {
		delete(r.byConn, old.ID)
		replaced = old.socket
	}
	c := &Conn{ID: connectionID, User: user, socket: s}
	r.byUser[user.UserID] = c
	r.byConn[connectionID] = c
	delete(r.handshakes, connectionID)
	return replaced
}

// Unbind forgets the connection. Idempotent; a reconnect may already
// have replaced the mapping, in which case the newer binding stays.
func (r *Registry) Unbind(connectionID string) (realtime.UserSnapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handshakes, connectionID)
	c, ok := r.byConn[connectionID]
	if !ok {
		return realtime.UserSnapshot{}, false
	}
	delete(r.byConn, connectionID)
	if cur, ok := r.byUser[c.User.UserID]; ok && cur.ID == connectionID {
		delete(r.byUser, c.User.UserID)
	}
	return c.User, true
}

// Lookup resolves a connection id to its authenticated user.
func (r *Registry) Lookup(connectionID string) (realtime.UserSnapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byConn[connectionID]
	if !ok {
		return realtime.UserSnapshot{}, false
	}
	return c.User, true
}

// ConnectionOf reports the live connection id of a user, if any.
func (r *Registry) ConnectionOf(userID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byUser[userID]
	if !ok {
		return "", false
	}
	return c.ID, true
}

// Notify emits an event to a single connection. A miss is not an
// error: the connection may have dropped between decision and send.
func (r *Registry) Notify(connectionID string, event string, data map[string]interface{}) {
	r.mu.RLock()
	c, ok := r.byConn[connectionID]
	r.mu.RUnlock()
	if !ok || c.socket == nil {
		return
	}
	if err := c.socket.Emit(event, data); err != nil {
		log.Printf("[EMIT-ERROR] %s to %s: %v", event, connectionID, err)
	}
}

// NotifyUser emits an event to the user's live connection, if online.
func (r *Registry) NotifyUser(userID string, event string, data map[string]interface{}) {
	r.mu.RLock()
	c, ok := r.byUser[userID]
	r.mu.RUnlock()
	if !ok || c.socket == nil {
		return
	}
	if err := c.socket.Emit(event, data); err != nil {
		log.Printf("[EMIT-ERROR] %s to user %s: %v", event, userID, err)
	}
}
