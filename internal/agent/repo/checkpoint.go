package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/redis/go-redis/v9"

	errx "github.com/tripdesk/server/internal/core/error"
	logx "github.com/tripdesk/server/pkg/logger"
)

// RedisCheckPointStore stores serialized graph checkpoints, one per thread.
// A checkpoint exists only while a turn is suspended before a sensitive tool
// node; it is deleted once the turn completes.
type RedisCheckPointStore struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisCheckPointStore(rdb redis.Cmdable, ttl time.Duration) *RedisCheckPointStore {
	return &RedisCheckPointStore{rdb: rdb, ttl: ttl}
}

func (s *RedisCheckPointStore) key(checkPointID string) string {
	return fmt.Sprintf("thread:%s:checkpoint", checkPointID)
}

func (s *RedisCheckPointStore) Get(ctx context.Context, checkPointID string) ([]byte, bool, error) {
	raw, err := s.rdb.Get(ctx, s.key(checkPointID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		logx.Error().Err(err).Str("checkpoint_id", checkPointID).Msg("failed to load checkpoint from redis")
		return nil, false, errx.WrapRedis(err)
	}
	return raw, true, nil
}

func (s *RedisCheckPointStore) Set(ctx context.Context, checkPointID string, checkPoint []byte) error {
	if err := s.rdb.Set(ctx, s.key(checkPointID), checkPoint, s.ttl).Err(); err != nil {
		logx.Error().Err(err).Str("checkpoint_id", checkPointID).Msg("failed to save checkpoint to redis")
		return errx.WrapRedis(err)
	}
	return nil
}

// Exists reports whether a suspended turn is waiting on this checkpoint.
func (s *RedisCheckPointStore) Exists(ctx context.Context, checkPointID string) (bool, error) {
	n, err := s.rdb.Exists(ctx, s.key(checkPointID)).Result()
	if err != nil {
		return false, errx.WrapRedis(err)
	}
	return n > 0, nil
}

// Delete removes a consumed checkpoint after the suspended turn finishes.
func (s *RedisCheckPointStore) Delete(ctx context.Context, checkPointID string) error {
	if err := s.rdb.Del(ctx, s.key(checkPointID)).Err(); err != nil {
		logx.Error().Err(err).Str("checkpoint_id", checkPointID).Msg("failed to delete checkpoint from redis")
		return errx.WrapRedis(err)
	}
	return nil
}

var _ compose.CheckPointStore = (*RedisCheckPointStore)(nil)
