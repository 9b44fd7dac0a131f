package counter

import (
	"context"
	"strconv"
	"sync"

	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"
)

const activityKey = "energyledger:counters:activity"

// Activity fields
const (
	Submissions   = "submissions"
	EntryUpdates  = "entry_updates"
	Uploads       = "uploads"
	FileDeletes   = "file_deletes"
	Reviews       = "reviews"
	Compensations = "compensations"
)

// Fields lists every activity field in display order.
var Fields = []string{Submissions, EntryUpdates, Uploads, FileDeletes, Reviews, Compensations}

// Counter stores activity totals shown on the admin dashboard.
type Counter interface {
	Incr(ctx context.Context, field string) error
	Snapshot(ctx context.Context) (map[string]int64, error)
}

// Add increments a field and only logs failures. A nil counter is ignored.
func Add(ctx context.Context, c Counter, field string) {
	if c == nil {
		return
	}
	if err := c.Incr(ctx, field); err != nil {
		log.Warnf("[Counter] Failed to increment %s: %v", field, err)
	}
}

// RedisCounter keeps the totals in a single redis hash.
type RedisCounter struct {
	client *redis.Client
	key    string
}

func NewRedisCounter(client *redis.Client) *RedisCounter {
	return &RedisCounter{client: client, key: activityKey}
}

// Incr increments the counter for field in Redis
func (r *RedisCounter) Incr(ctx context.Context, field string) error {
	return r.client.HIncrBy(ctx, r.key, field, 1).Err()
}

// Snapshot reads all fields. Fields never incremented are reported as zero.
func (r *RedisCounter) Snapshot(ctx context.Context) (map[string]int64, error) {
	data, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, err
	}
	return parseSnapshot(data), nil
}

func parseSnapshot(data map[string]string) map[string]int64 {
	out := make(map[string]int64, len(Fields))
	for _, f := range Fields {
		out[f] = 0
	}
	for k, v := range data {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		out[k] = n
	}
	return out
}

// MemoryCounter is used when no redis server is configured.
type MemoryCounter struct {
	mu     sync.Mutex
	values map[string]int64
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{values: make(map[string]int64)}
}

func (m *MemoryCounter) Incr(_ context.Context, field string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[field]++
	return nil
}

func (m *MemoryCounter) Snapshot(_ context.Context) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw := make(map[string]string, len(m.values))
	for k, v := range m.values {
		raw[k] = strconv.FormatInt(v, 10)
	}
	return parseSnapshot(raw), nil
}
