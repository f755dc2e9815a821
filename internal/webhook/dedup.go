package webhook

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"dabachat_backend/platform/config"
	"dabachat_backend/platform/logger"
)

// dedupTTL is how long a delivered message ID is remembered. Meta retries
// webhook deliveries for up to a day.
const dedupTTL = 24 * time.Hour

// Dedup remembers delivered WhatsApp message IDs so retried webhook
// deliveries are not relayed twice.
type Dedup interface {
	// FirstSeen reports whether the message ID is new, recording it.
	FirstSeen(ctx context.Context, messageID string) bool
}

// NewDedup picks the Redis store when a URL is configured and falls back to
// an in-process store otherwise. The in-process store loses its state on
// restart, which only risks a duplicate reply, never a lost message.
func NewDedup(cfg config.RedisConfig, log *logger.Logger) Dedup {
	if cfg.GetRedisURL() == "" {
		return newMemoryDedup()
	}

	opts, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		log.Warn("invalid REDIS_URL, using in-memory webhook dedup", "error", err.Error())
		return newMemoryDedup()
	}
	return &redisDedup{client: redis.NewClient(opts), logger: log}
}

type redisDedup struct {
	client *redis.Client
	logger *logger.Logger
}

func (d *redisDedup) FirstSeen(ctx context.Context, messageID string) bool {
	ok, err := d.client.SetNX(ctx, "webhook:msg:"+messageID, 1, dedupTTL).Result()
	if err != nil {
		// Fail open: a duplicate reply beats a dropped message.
		d.logger.Warn("webhook dedup store unavailable", "error", err.Error())
		return true
	}
	return ok
}

type memoryDedup struct {
	mu   sync.Mutex
	seen map[string]time.Time
	now  func() time.Time
}

func newMemoryDedup() *memoryDedup {
	return &memoryDedup{seen: make(map[string]time.Time), now: time.Now}
}

func (d *memoryDedup) FirstSeen(_ context.Context, messageID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	for id, expires := range d.seen {
		if now.After(expires) {
			delete(d.seen, id)
		}
	}

	if _, ok := d.seen[messageID]; ok {
		return false
	}
	d.seen[messageID] = now.Add(dedupTTL)
	return true
}
