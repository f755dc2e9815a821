package webhook

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"dabachat_backend/platform/logger"
)

func TestRedisDedupRemembersMessageIDs(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	d := &redisDedup{client: client, logger: logger.New("development")}

	if !d.FirstSeen(context.Background(), "wamid.1") {
		t.Fatal("first delivery should be new")
	}
	if d.FirstSeen(context.Background(), "wamid.1") {
		t.Fatal("second delivery should be a duplicate")
	}
	if !d.FirstSeen(context.Background(), "wamid.2") {
		t.Fatal("different message ID should be new")
	}
}

func TestRedisDedupExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	d := &redisDedup{client: client, logger: logger.New("development")}

	d.FirstSeen(context.Background(), "wamid.1")
	mr.FastForward(dedupTTL + time.Minute)

	if !d.FirstSeen(context.Background(), "wamid.1") {
		t.Fatal("expired entry should be treated as new")
	}
}

func TestRedisDedupFailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	d := &redisDedup{client: client, logger: logger.New("development")}
	mr.Close()

	if !d.FirstSeen(context.Background(), "wamid.1") {
		t.Fatal("unreachable store must not drop messages")
	}
}

func TestMemoryDedup(t *testing.T) {
	d := newMemoryDedup()

	if !d.FirstSeen(context.Background(), "wamid.1") {
		t.Fatal("first delivery should be new")
	}
	if d.FirstSeen(context.Background(), "wamid.1") {
		t.Fatal("second delivery should be a duplicate")
	}

	// Aged entries are pruned and seen again.
	d.now = func() time.Time { return time.Now().Add(dedupTTL + time.Minute) }
	if !d.FirstSeen(context.Background(), "wamid.1") {
		t.Fatal("expired entry should be treated as new")
	}
}

func TestNewDedupFallsBackWithoutRedis(t *testing.T) {
	d := NewDedup(staticRedisConfig(""), logger.New("development"))
	if _, ok := d.(*memoryDedup); !ok {
		t.Fatalf("expected in-memory dedup, got %T", d)
	}
}

type staticRedisConfig string

func (c staticRedisConfig) GetRedisURL() string { return string(c) }
