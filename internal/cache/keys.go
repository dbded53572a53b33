package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	userKeyPrefix    = "user:%d"
	channelKeyPrefix = "channel:%s:viewer:%d"
)

const (
	// UserTTL bounds staleness of cached user records.
	UserTTL = 5 * time.Minute
	// ChannelProfileTTL bounds staleness of cached channel aggregations.
	ChannelProfileTTL = time.Minute
)

// UserKey returns the cache key for a user record.
func UserKey(userID uint) string {
	return fmt.Sprintf(userKeyPrefix, userID)
}

// ChannelProfileKey returns the cache key for a channel profile as seen by a
// specific viewer (the isSubscribed flag is viewer-dependent).
func ChannelProfileKey(username string, viewerID uint) string {
	return fmt.Sprintf(channelKeyPrefix, username, viewerID)
}

// Invalidate deletes a key. A nil client is a no-op.
func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidateUser drops the cached record for a user.
func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}
