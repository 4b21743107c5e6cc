package redis

import (
	"context"
	"encoding/json"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unretain/polyxmobile-sub002/models/realtime"
)

// RedisClient wraps the go-redis client with the typed operations the
// presence mirror needs. Presence records are the only thing stored
// here: everything else about a lobby lives in process memory.
type RedisClient struct {
	Client *goredis.Client
	Ctx    context.Context
}

func NewRedisClient(addr string, db int) *RedisClient {
	return &RedisClient{
		Client: goredis.NewClient(&goredis.Options{
			Addr: addr,
			DB:   db,
		}),
		Ctx: context.Background(),
	}
}

func presenceKey(userID string) string {
	return "presence:" + userID
}

// SavePresence mirrors an online friend record so the REST surface can
// report online status without touching the realtime core.
func (rc *RedisClient) SavePresence(rec *realtime.OnlineFriendRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("error marshaling presence record: %v", err)
	}
	if err := rc.Client.Set(rc.Ctx, presenceKey(rec.UserID), data, 0).Err(); err != nil {
		return fmt.Errorf("error saving presence for %s: %v", rec.UserID, err)
	}
	return nil
}

// GetPresence returns the mirrored record, or nil when offline.
func (rc *RedisClient) GetPresence(userID string) (*realtime.OnlineFriendRecord, error) {
	data, err := rc.Client.Get(rc.Ctx, presenceKey(userID)).Bytes()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading presence for %s: %v", userID, err)
	}
	var rec realtime.OnlineFriendRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("error unmarshaling presence for %s: %v", userID, err)
	}
	return &rec, nil
}

// GetManyPresence resolves a batch of user ids in one MGET. Offline
// users are simply absent from the result.
func (rc *RedisClient) GetManyPresence(userIDs []string) (map[string]*realtime.OnlineFriendRecord, error) {
	if len(userIDs) == 0 {
		return map[string]*realtime.OnlineFriendRecord{}, nil
	}
	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = presenceKey(id)
	}
	values, err := rc.Client.MGet(rc.Ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("error reading presence batch: %v", err)
	}
	out := make(map[string]*realtime.OnlineFriendRecord, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var rec realtime.OnlineFriendRecord
		if err := json.Unmarshal([]byte(s), &rec); err != nil {
			continue
		}
		out[rec.UserID] = &rec
	}
	return out, nil
}

// DeletePresence removes the mirror entry when a user goes offline.
func (rc *RedisClient) DeletePresence(userID string) error {
	if err := rc.Client.Del(rc.Ctx, presenceKey(userID)).Err(); err != nil {
		return fmt.Errorf("error deleting presence for %s: %v", userID, err)
	}
	return nil
}
