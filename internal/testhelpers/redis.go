package testhelpers

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// FakeRedis implements the handful of redis commands the services use, in memory.
// Calling any other command panics on the nil embedded interface.
type FakeRedis struct {
	redis.Cmdable

	mu   sync.Mutex
	data map[string]string
	ttl  map[string]time.Duration
	// Err, when set, is returned by every command
	Err error
}

func NewFakeRedis() *FakeRedis {
	return &FakeRedis{data: map[string]string{}, ttl: map[string]time.Duration{}}
}

func (f *FakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return redis.NewStringResult("", f.Err)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *FakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return redis.NewStatusResult("", f.Err)
	}
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	default:
		f.data[key] = toString(v)
	}
	f.ttl[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *FakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return redis.NewIntResult(0, f.Err)
	}
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			n++
		}
		delete(f.data, k)
		delete(f.ttl, k)
	}
	return redis.NewIntResult(n, nil)
}

func (f *FakeRedis) Incr(ctx context.Context, key string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return redis.NewIntResult(0, f.Err)
	}
	n, _ := strconv.ParseInt(f.data[key], 10, 64)
	n++
	f.data[key] = strconv.FormatInt(n, 10)
	return redis.NewIntResult(n, nil)
}

func (f *FakeRedis) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return redis.NewBoolResult(false, f.Err)
	}
	if _, ok := f.data[key]; !ok {
		return redis.NewBoolResult(false, nil)
	}
	f.ttl[key] = expiration
	return redis.NewBoolResult(true, nil)
}

func (f *FakeRedis) Ping(ctx context.Context) *redis.StatusCmd {
	if f.Err != nil {
		return redis.NewStatusResult("", f.Err)
	}
	return redis.NewStatusResult("PONG", nil)
}

// TTLOf returns the expiration the key was last written with
func (f *FakeRedis) TTLOf(key string) time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ttl[key]
}

// Has reports whether key is present
func (f *FakeRedis) Has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.data[key]
	return ok
}

// Raw returns the stored string at key
func (f *FakeRedis) Raw(key string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.data[key]
}

// SetRaw stores a value without going through a command
func (f *FakeRedis) SetRaw(key, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
}

func toString(v interface{}) string {
	switch x := v.(type) {
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		return ""
	}
}
