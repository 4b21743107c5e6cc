package lobbies

import (
	"sync"
	"time"

	"github.com/unretain/polyxmobile-sub002/models/realtime"
)

// MaxMembers is the hard capacity of every lobby.
const MaxMembers = 5

// Lobby is an ephemeral multi-user session. All fields are guarded by
// mu; operations on different lobbies never contend. Member and invite
// records hold only ids and display snapshots, never transport handles;
// sockets are resolved at send time through the connection registry.
type Lobby struct {
	mu        sync.Mutex
	id        string
	name      string
	ownerID   string
	createdAt time.Time
	closed    bool

	// members in join order; members[0] is the successor when the
	// owner departs
	members []*realtime.Member

	invites  map[string]*Invite      // invited userID -> live invite
	requests map[string]*JoinRequest // requester connectionID -> pending request
	approved map[string]bool         // connection ids cleared to join by the owner
}

func newLobby(id, name string, owner *realtime.Member) *Lobby {
	return &Lobby{
		id:        id,
		name:      name,
		ownerID:   owner.UserID,
		createdAt: time.Now(),
		members:   []*realtime.Member{owner},
		invites:   make(map[string]*Invite),
		requests:  make(map[string]*JoinRequest),
		approved:  make(map[string]bool),
	}
}

func (l *Lobby) memberIndexLocked(connectionID string) int {
	for i, m := range l.members {
		if m.ConnectionID == connectionID {
			return i
		}
	}
	return -1
}

func (l *Lobby) memberByConnLocked(connectionID string) *realtime.Member {
	if i := l.memberIndexLocked(connectionID); i >= 0 {
		return l.members[i]
	}
	return nil
}

func (l *Lobby) memberByUserLocked(userID string) *realtime.Member {
	for _, m := range l.members {
		if m.UserID == userID {
			return m
		}
	}
	return nil
}

// connsLocked returns the connection ids of all members except the
// excluded ones. This list is the single source of truth for fan-out.
func (l *Lobby) connsLocked(exclude ...string) []string {
	conns := make([]string, 0, len(l.members))
	for _, m := range l.members {
		skip := false
		for _, e := range exclude {
			if m.ConnectionID == e {
				skip = true
				break
			}
		}
		if !skip {
			conns = append(conns, m.ConnectionID)
		}
	}
	return conns
}

func (l *Lobby) snapshotLocked() *realtime.LobbyInfo {
	members := make([]realtime.Member, len(l.members))
	for i, m := range l.members {
		members[i] = *m
	}
	return &realtime.LobbyInfo{
		ID:        l.id,
		Name:      l.name,
		OwnerID:   l.ownerID,
		Members:   members,
		CreatedAt: l.createdAt,
	}
}

// voiceRosterLocked returns the members currently in the voice channel.
func (l *Lobby) voiceRosterLocked() []realtime.Member {
	roster := make([]realtime.Member, 0, len(l.members))
	for _, m := range l.members {
		if m.InVoice {
			roster = append(roster, *m)
		}
	}
	return roster
}
