package realtime

import "time"

// UserSnapshot is the denormalized display view of a user, carried
// inside lobby members, invites and join requests so the realtime core
// never needs a database round trip to render who did what.
type UserSnapshot struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Image    string `json:"image"`
}

// Member is a user inside a lobby, keyed by its live connection.
type Member struct {
	ConnectionID string `json:"connection_id"`
	UserID       string `json:"user_id"`
	Username     string `json:"username"`
	Name         string `json:"name"`
	Image        string `json:"image"`
	InVoice      bool   `json:"in_voice"`
}

// LobbyInfo is the wire snapshot of a lobby sent in acks and broadcasts.
type LobbyInfo struct {
	ID        string    `json:"lobby_id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"owner_id"`
	Members   []Member  `json:"members"`
	CreatedAt time.Time `json:"created_at"`
}

// OnlineFriendRecord is the presence directory's per-viewer projection
// of a friend's live state. LobbyID/LobbyName are empty when the friend
// is online but not in a lobby.
type OnlineFriendRecord struct {
	UserID       string `json:"user_id"`
	Username     string `json:"username"`
	Name         string `json:"name"`
	Image        string `json:"image"`
	ConnectionID string `json:"connection_id"`
	LobbyID      string `json:"lobby_id,omitempty"`
	LobbyName    string `json:"lobby_name,omitempty"`
}

// ChatMessage is a relayed lobby chat message. Not persisted anywhere,
// it only exists on the wire.
type ChatMessage struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
