package middleware

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// WindowCounter counts events per key in fixed windows.
type WindowCounter interface {
	Incr(ctx context.Context, key string, win time.Duration) (int, error)
}

// MemoryWindowCounter is an in-process WindowCounter. Closed windows are
// swept at most once per window length.
type MemoryWindowCounter struct {
	mu        sync.Mutex
	windows   map[string]*window
	now       func() time.Time
	lastSweep time.Time
}

func NewMemoryWindowCounter() *MemoryWindowCounter {
	return &MemoryWindowCounter{windows: map[string]*window{}, now: time.Now}
}

func (m *MemoryWindowCounter) Incr(_ context.Context, key string, win time.Duration) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if now.Sub(m.lastSweep) >= win {
		for k, w := range m.windows {
			if now.Sub(w.start) >= win {
				delete(m.windows, k)
			}
		}
		m.lastSweep = now
	}
	w, ok := m.windows[key]
	if !ok || now.Sub(w.start) >= win {
		w = &window{start: now}
		m.windows[key] = w
	}
	w.count++
	return w.count, nil
}

// RedisWindowCounter shares counts across replicas.
type RedisWindowCounter struct {
	client *redis.Client
}

func NewRedisWindowCounter(client *redis.Client) *RedisWindowCounter {
	return &RedisWindowCounter{client: client}
}

func (r *RedisWindowCounter) Incr(ctx context.Context, key string, win time.Duration) (int, error) {
	secs := int64(win.Seconds())
	if secs <= 0 {
		secs = 1
	}
	bucket := time.Now().Unix() / secs
	redisKey := fmt.Sprintf("rl:%s:%d", key, bucket)
	cnt, err := r.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return 0, err
	}
	if cnt == 1 {
		_ = r.client.Expire(ctx, redisKey, time.Duration(secs+1)*time.Second).Err()
	}
	return int(cnt), nil
}

func formatSeconds(d time.Duration) string {
	s := int(d.Seconds())
	if s <= 0 {
		s = 1
	}
	return strconv.Itoa(s)
}
