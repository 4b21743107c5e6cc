package lobbies

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVoiceJoinAndRoster(t *testing.T) {
	notifier := &fakeNotifier{}
	r := NewRegistry(notifier)

	info, _ := r.Create(conn(1), snapshot(1), "Test")
	admitDirect(t, r, conn(1), 2, info.ID)
	notifier.reset()

	roster, err := r.JoinVoice(conn(1))
	assert.NoError(t, err)
	assert.Len(t, roster, 1)
	assert.Equal(t, "user-1", roster[0].UserID)

	joins := notifier.named("voice:userJoined")
	assert.Len(t, joins, 1)
	assert.Equal(t, conn(2), joins[0].Target)
	assert.Equal(t, "user-1", joins[0].Data["user_id"])

	// re-joining is idempotent and silent
	roster, err = r.JoinVoice(conn(1))
	assert.NoError(t, err)
	assert.Len(t, roster, 1)
	assert.Len(t, notifier.named("voice:userJoined"), 1)

	_, err = r.JoinVoice(conn(9))
	assert.ErrorIs(t, err, ErrNotInLobby)
}

func TestVoiceLeaveIdempotent(t *testing.T) {
	notifier := &fakeNotifier{}
	r := NewRegistry(notifier)

	info, _ := r.Create(conn(1), snapshot(1), "Test")
	admitDirect(t, r, conn(1), 2, info.ID)
	r.JoinVoice(conn(1))
	notifier.reset()

	r.LeaveVoice(conn(1))
	assert.Len(t, notifier.named("voice:userLeft"), 1)

	// leaving again, or leaving while never in voice or in no lobby,
	// changes nothing
	r.LeaveVoice(conn(1))
	r.LeaveVoice(conn(2))
	r.LeaveVoice(conn(9))
	assert.Len(t, notifier.named("voice:userLeft"), 1)
}

func TestVoiceClearedByLobbyRemoval(t *testing.T) {
	notifier := &fakeNotifier{}
	r := NewRegistry(notifier)

	info, _ := r.Create(conn(1), snapshot(1), "Test")
	admitDirect(t, r, conn(1), 2, info.ID)
	admitDirect(t, r, conn(1), 3, info.ID)
	r.JoinVoice(conn(2))
	r.JoinVoice(conn(3))

	// kick and disconnect both shrink the voice roster implicitly
	_, err := r.Kick(conn(1), conn(2))
	assert.NoError(t, err)
	roster, err := r.VoiceRoster(conn(1))
	assert.NoError(t, err)
	assert.Len(t, roster, 1)
	assert.Equal(t, "user-3", roster[0].UserID)

	r.Disconnect(conn(3), "user-3")
	roster, err = r.VoiceRoster(conn(1))
	assert.NoError(t, err)
	assert.Empty(t, roster)
}

func TestVoiceSubsetOfMembers(t *testing.T) {
	notifier := &fakeNotifier{}
	r := NewRegistry(notifier)

	info, _ := r.Create(conn(1), snapshot(1), "Test")
	admitDirect(t, r, conn(1), 2, info.ID)
	r.JoinVoice(conn(1))
	r.JoinVoice(conn(2))

	current, _ := r.Snapshot(info.ID)
	members := map[string]bool{}
	for _, m := range current.Members {
		members[m.UserID] = true
	}
	roster, _ := r.VoiceRoster(conn(1))
	for _, v := range roster {
		assert.True(t, members[v.UserID])
	}
}
