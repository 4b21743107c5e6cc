package lobbies

import "errors"

// Error taxonomy of the lobby core. All of these are recoverable:
// they go back to the initiating connection in the ack and never
// corrupt shared state.
var (
	ErrAlreadyInLobby      = errors.New("you already belong to a lobby")
	ErrLobbyNotFound       = errors.New("lobby not found")
	ErrLobbyFull           = errors.New("lobby is full")
	ErrNotInLobby          = errors.New("you are not in a lobby")
	ErrNotOwner            = errors.New("only the lobby owner can do that")
	ErrCannotKickSelf      = errors.New("you cannot kick yourself")
	ErrTargetOffline       = errors.New("that user is not online")
	ErrNotFriend           = errors.New("that user is not in your friends")
	ErrTargetAlreadyMember = errors.New("that user is already in the lobby")
	ErrRequestNotFound     = errors.New("join request not found")
	ErrMemberNotFound      = errors.New("member not found")
	ErrNotInvited          = errors.New("no invite or approval for that lobby")
)
