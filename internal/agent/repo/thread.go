// Package repo provides the Redis-backed persistence for conversation threads
// and graph checkpoints.
package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/redis/go-redis/v9"

	"github.com/tripdesk/server/internal/agent/model"
	errx "github.com/tripdesk/server/internal/core/error"
	logx "github.com/tripdesk/server/pkg/logger"
)

// RedisThreadRepository persists thread transcripts and dialog stacks. The
// transcript is a Redis list of JSON messages, the dialog stack a JSON blob;
// both share the thread's TTL, refreshed on every write.
type RedisThreadRepository struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisThreadRepository(rdb redis.Cmdable, ttl time.Duration) *RedisThreadRepository {
	return &RedisThreadRepository{rdb: rdb, ttl: ttl}
}

func (r *RedisThreadRepository) messagesKey(threadID string) string {
	return fmt.Sprintf("thread:%s:messages", threadID)
}

func (r *RedisThreadRepository) dialogKey(threadID string) string {
	return fmt.Sprintf("thread:%s:dialog", threadID)
}

func (r *RedisThreadRepository) Load(ctx context.Context, threadID string) (*model.ThreadRecord, error) {
	record := &model.ThreadRecord{ThreadID: threadID}

	rows, err := r.rdb.LRange(ctx, r.messagesKey(threadID), 0, -1).Result()
	if err != nil && err != redis.Nil {
		logx.Error().Err(err).Str("thread_id", threadID).Msg("failed to load thread messages from redis")
		return nil, errx.WrapRedis(err)
	}
	for i, s := range rows {
		var m schema.Message
		if err := json.Unmarshal([]byte(s), &m); err != nil {
			logx.Error().Err(err).Str("thread_id", threadID).Int("index", i).Msg("failed to unmarshal message")
			return nil, fmt.Errorf("unmarshal message at index %d: %w", i, err)
		}
		record.Messages = append(record.Messages, &m)
	}

	raw, err := r.rdb.Get(ctx, r.dialogKey(threadID)).Result()
	switch {
	case err == redis.Nil:
		// new thread, primary assistant owns the dialog
	case err != nil:
		logx.Error().Err(err).Str("thread_id", threadID).Msg("failed to load dialog stack from redis")
		return nil, errx.WrapRedis(err)
	default:
		if err := json.Unmarshal([]byte(raw), &record.DialogStack); err != nil {
			return nil, fmt.Errorf("unmarshal dialog stack: %w", err)
		}
	}
	return record, nil
}

func (r *RedisThreadRepository) AppendMessages(ctx context.Context, threadID string, msgs ...*schema.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	key := r.messagesKey(threadID)
	values := make([]interface{}, 0, len(msgs))
	for _, m := range msgs {
		b, err := json.Marshal(m)
		if err != nil {
			logx.Error().Err(err).Str("thread_id", threadID).Msg("failed to marshal message")
			return fmt.Errorf("marshal message: %w", err)
		}
		values = append(values, b)
	}
	if err := r.rdb.RPush(ctx, key, values...).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to push messages to redis")
		return errx.WrapRedis(err)
	}
	return r.touch(ctx, key)
}

func (r *RedisThreadRepository) SaveDialog(ctx context.Context, threadID string, stack []model.DialogState) error {
	b, err := json.Marshal(stack)
	if err != nil {
		return fmt.Errorf("marshal dialog stack: %w", err)
	}
	key := r.dialogKey(threadID)
	if err := r.rdb.Set(ctx, key, b, r.ttl).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to save dialog stack to redis")
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *RedisThreadRepository) Clear(ctx context.Context, threadID string) error {
	if err := r.rdb.Del(ctx, r.messagesKey(threadID), r.dialogKey(threadID)).Err(); err != nil {
		logx.Error().Err(err).Str("thread_id", threadID).Msg("failed to delete thread from redis")
		return errx.WrapRedis(err)
	}
	return nil
}

// touch extends the TTL on write so active threads never expire mid-dialog.
func (r *RedisThreadRepository) touch(ctx context.Context, key string) error {
	if r.ttl <= 0 {
		return nil
	}
	ok, err := r.rdb.Expire(ctx, key, r.ttl).Result()
	if err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to set expire")
		return errx.WrapRedis(err)
	}
	if !ok {
		logx.Warn().Str("key", key).Dur("ttl", r.ttl).Msg("failed to set TTL on thread key")
	}
	return nil
}

var _ model.ThreadRepository = (*RedisThreadRepository)(nil)
