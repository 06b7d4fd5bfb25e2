package repo

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/cloudwego/eino/schema"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripdesk/server/internal/agent/model"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, redis.Cmdable) {
	t.Helper()
	mr := miniredis.RunT(t)
	return mr, redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestRedisThreadRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("load of unknown thread returns empty record", func(t *testing.T) {
		_, rdb := newTestRedis(t)
		r := NewRedisThreadRepository(rdb, time.Hour)

		record, err := r.Load(ctx, "t-new")
		require.NoError(t, err)
		assert.Equal(t, "t-new", record.ThreadID)
		assert.Empty(t, record.Messages)
		assert.Empty(t, record.DialogStack)
	})

	t.Run("messages round-trip in order", func(t *testing.T) {
		_, rdb := newTestRedis(t)
		r := NewRedisThreadRepository(rdb, time.Hour)

		require.NoError(t, r.AppendMessages(ctx, "t1", schema.UserMessage("hi")))
		require.NoError(t, r.AppendMessages(ctx, "t1",
			schema.AssistantMessage("hello, how can I help?", nil),
			schema.ToolMessage("result", "call_1", schema.WithToolName("search_flights")),
		))

		record, err := r.Load(ctx, "t1")
		require.NoError(t, err)
		require.Len(t, record.Messages, 3)
		assert.Equal(t, schema.User, record.Messages[0].Role)
		assert.Equal(t, "hi", record.Messages[0].Content)
		assert.Equal(t, schema.Assistant, record.Messages[1].Role)
		assert.Equal(t, schema.Tool, record.Messages[2].Role)
		assert.Equal(t, "call_1", record.Messages[2].ToolCallID)
	})

	t.Run("dialog stack round-trips", func(t *testing.T) {
		_, rdb := newTestRedis(t)
		r := NewRedisThreadRepository(rdb, time.Hour)

		stack := []model.DialogState{model.DialogUpdateFlight}
		require.NoError(t, r.SaveDialog(ctx, "t2", stack))

		record, err := r.Load(ctx, "t2")
		require.NoError(t, err)
		assert.Equal(t, stack, record.DialogStack)

		require.NoError(t, r.SaveDialog(ctx, "t2", nil))
		record, err = r.Load(ctx, "t2")
		require.NoError(t, err)
		assert.Empty(t, record.DialogStack)
	})

	t.Run("threads are independent", func(t *testing.T) {
		_, rdb := newTestRedis(t)
		r := NewRedisThreadRepository(rdb, time.Hour)

		require.NoError(t, r.AppendMessages(ctx, "a", schema.UserMessage("for a")))
		require.NoError(t, r.AppendMessages(ctx, "b", schema.UserMessage("for b")))

		record, err := r.Load(ctx, "a")
		require.NoError(t, err)
		require.Len(t, record.Messages, 1)
		assert.Equal(t, "for a", record.Messages[0].Content)
	})

	t.Run("clear removes transcript and dialog", func(t *testing.T) {
		_, rdb := newTestRedis(t)
		r := NewRedisThreadRepository(rdb, time.Hour)

		require.NoError(t, r.AppendMessages(ctx, "t3", schema.UserMessage("hi")))
		require.NoError(t, r.SaveDialog(ctx, "t3", []model.DialogState{model.DialogBookHotel}))
		require.NoError(t, r.Clear(ctx, "t3"))

		record, err := r.Load(ctx, "t3")
		require.NoError(t, err)
		assert.Empty(t, record.Messages)
		assert.Empty(t, record.DialogStack)
	})

	t.Run("writes refresh the TTL", func(t *testing.T) {
		mr, rdb := newTestRedis(t)
		r := NewRedisThreadRepository(rdb, time.Minute)

		require.NoError(t, r.AppendMessages(ctx, "t4", schema.UserMessage("hi")))
		mr.FastForward(30 * time.Second)
		require.NoError(t, r.AppendMessages(ctx, "t4", schema.UserMessage("still here")))
		mr.FastForward(45 * time.Second)

		record, err := r.Load(ctx, "t4")
		require.NoError(t, err)
		assert.Len(t, record.Messages, 2)
	})
}

func TestRedisCheckPointStore(t *testing.T) {
	ctx := context.Background()

	t.Run("get miss reports absent without error", func(t *testing.T) {
		_, rdb := newTestRedis(t)
		s := NewRedisCheckPointStore(rdb, time.Hour)

		_, found, err := s.Get(ctx, "t1")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("set then get round-trips", func(t *testing.T) {
		_, rdb := newTestRedis(t)
		s := NewRedisCheckPointStore(rdb, time.Hour)

		require.NoError(t, s.Set(ctx, "t1", []byte("snapshot")))

		raw, found, err := s.Get(ctx, "t1")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, []byte("snapshot"), raw)

		exists, err := s.Exists(ctx, "t1")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("delete consumes the checkpoint", func(t *testing.T) {
		_, rdb := newTestRedis(t)
		s := NewRedisCheckPointStore(rdb, time.Hour)

		require.NoError(t, s.Set(ctx, "t1", []byte("snapshot")))
		require.NoError(t, s.Delete(ctx, "t1"))

		_, found, err := s.Get(ctx, "t1")
		require.NoError(t, err)
		assert.False(t, found)

		exists, err := s.Exists(ctx, "t1")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}
