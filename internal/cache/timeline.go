package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"warbler/internal/logging"
)

const (
	// TimelineCachePrefix is the key prefix for home timeline caches
	TimelineCachePrefix = "timeline:user:"

	// TimelineCacheCap is the maximum number of messages cached per user
	TimelineCacheCap = 100

	// TimelineCacheTTL is the TTL for a timeline cache (7 days)
	TimelineCacheTTL = 7 * 24 * time.Hour
)

// MessageScore is a message id with its timestamp score
type MessageScore struct {
	MessageID int64
	Timestamp int64 // Unix microseconds
}

// TimelineCache stores the message ids of each user's home timeline.
type TimelineCache interface {
	// Exists reports whether the user has a cached timeline.
	// A missing key means the service must warm it from the database.
	Exists(ctx context.Context, userID int64) (bool, error)

	// Get returns up to limit message ids, newest first. Ids sharing a
	// score come back in member order, so callers re-sort by (timestamp, id).
	Get(ctx context.Context, userID int64, limit int) ([]int64, error)

	// Warm replaces the user's timeline with entries.
	// Uses a pipeline: DEL + ZADD + ZREMRANGEBYRANK (cap) + EXPIRE.
	Warm(ctx context.Context, userID int64, entries []MessageScore) error

	// Invalidate drops the timelines of every listed user.
	Invalidate(ctx context.Context, userIDs ...int64) error
}

// RedisTimelineCache implements TimelineCache using Redis sorted sets.
type RedisTimelineCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewTimelineCache creates a new TimelineCache backed by Redis.
func NewTimelineCache(client *redis.Client) TimelineCache {
	return &RedisTimelineCache{
		client: client,
		logger: logging.WithComponent("timeline_cache"),
	}
}

func timelineKey(userID int64) string {
	return fmt.Sprintf("%s%d", TimelineCachePrefix, userID)
}

func (c *RedisTimelineCache) Exists(ctx context.Context, userID int64) (bool, error) {
	n, err := c.client.Exists(ctx, timelineKey(userID)).Result()
	if err != nil {
		c.logger.Warn("exists failed", zap.Int64("user_id", userID), zap.Error(err))
		return false, fmt.Errorf("check timeline exists: %w", err)
	}
	return n > 0, nil
}

func (c *RedisTimelineCache) Get(ctx context.Context, userID int64, limit int) ([]int64, error) {
	key := timelineKey(userID)
	startTime := time.Now()

	members, err := c.client.ZRevRange(ctx, key, 0, int64(limit-1)).Result()
	if err != nil {
		c.logger.Warn("get failed", zap.Int64("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("get timeline: %w", err)
	}

	// Refresh TTL on access
	c.client.Expire(ctx, key, TimelineCacheTTL)

	ids := make([]int64, len(members))
	for i, member := range members {
		id, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse message id %q: %w", member, err)
		}
		ids[i] = id
	}

	c.logger.Debug("get ok",
		zap.Int64("user_id", userID),
		zap.Int("returned", len(ids)),
		zap.Duration("duration", time.Since(startTime)))
	return ids, nil
}

func (c *RedisTimelineCache) Warm(ctx context.Context, userID int64, entries []MessageScore) error {
	key := timelineKey(userID)
	startTime := time.Now()

	pipe := c.client.TxPipeline()
	pipe.Del(ctx, key)
	if len(entries) > 0 {
		members := make([]redis.Z, len(entries))
		for i, e := range entries {
			members[i] = redis.Z{
				Score:  float64(e.Timestamp),
				Member: strconv.FormatInt(e.MessageID, 10),
			}
		}
		pipe.ZAdd(ctx, key, members...)
		// Keep the newest TimelineCacheCap entries
		pipe.ZRemRangeByRank(ctx, key, 0, int64(-TimelineCacheCap-1))
		pipe.Expire(ctx, key, TimelineCacheTTL)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.Warn("warm failed", zap.Int64("user_id", userID), zap.Int("entries", len(entries)), zap.Error(err))
		return fmt.Errorf("warm timeline: %w", err)
	}

	c.logger.Debug("warm ok",
		zap.Int64("user_id", userID),
		zap.Int("entries", len(entries)),
		zap.Duration("duration", time.Since(startTime)))
	return nil
}

func (c *RedisTimelineCache) Invalidate(ctx context.Context, userIDs ...int64) error {
	if len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = timelineKey(id)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("invalidate failed", zap.Int("users", len(userIDs)), zap.Error(err))
		return fmt.Errorf("invalidate timelines: %w", err)
	}
	return nil
}
