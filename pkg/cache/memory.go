package cache

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// MemoryOption configures a Memory cache.
type MemoryOption func(*memoryConfig)

type memoryConfig struct {
	ttl        time.Duration
	sweepEvery time.Duration
	capacity   int
}

// WithDefaultTTL sets the TTL used when Set receives zero. Default: 1 hour.
func WithDefaultTTL(d time.Duration) MemoryOption {
	return func(c *memoryConfig) { c.ttl = d }
}

// WithCleanupInterval sets how often expired entries are swept.
// Zero disables the background sweep; expired entries are then dropped on
// access only. Default: 1 minute.
func WithCleanupInterval(d time.Duration) MemoryOption {
	return func(c *memoryConfig) { c.sweepEvery = d }
}

// WithMaxEntries bounds the cache; the least recently used entry is evicted
// when full. Zero means unbounded.
func WithMaxEntries(n int) MemoryOption {
	return func(c *memoryConfig) { c.capacity = n }
}

type memoryItem[V any] struct {
	key      string
	value    V
	deadline time.Time // zero: no expiry
}

func (it *memoryItem[V]) expired(now time.Time) bool {
	return !it.deadline.IsZero() && now.After(it.deadline)
}

// Memory is a process-local LRU cache with TTL expiry.
// It is safe for concurrent use.
type Memory[V any] struct {
	cfg memoryConfig

	mu     sync.Mutex
	index  map[string]*list.Element
	lru    *list.List // front: most recently used
	closed bool
	stop   chan struct{}

	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewMemory creates an in-memory cache.
//
//	c := cache.NewMemory[router.Resolution](cache.WithMaxEntries(10_000))
//	defer c.Close()
func NewMemory[V any](opts ...MemoryOption) *Memory[V] {
	cfg := memoryConfig{ttl: time.Hour, sweepEvery: time.Minute}
	for _, opt := range opts {
		opt(&cfg)
	}

	m := &Memory[V]{
		cfg:   cfg,
		index: make(map[string]*list.Element),
		lru:   list.New(),
		stop:  make(chan struct{}),
	}
	if cfg.sweepEvery > 0 {
		go m.sweeper()
	}
	return m
}

func (m *Memory[V]) Get(_ context.Context, key string) (V, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero V
	el, ok := m.index[key]
	if !ok {
		m.misses.Add(1)
		return zero, ErrNotFound
	}
	it := el.Value.(*memoryItem[V])
	if it.expired(time.Now()) {
		m.drop(el)
		m.misses.Add(1)
		return zero, ErrNotFound
	}

	m.lru.MoveToFront(el)
	m.hits.Add(1)
	return it.value, nil
}

func (m *Memory[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	if ttl == 0 {
		ttl = m.cfg.ttl
	}
	var deadline time.Time
	if ttl > 0 {
		deadline = time.Now().Add(ttl)
	}

	if el, ok := m.index[key]; ok {
		it := el.Value.(*memoryItem[V])
		it.value, it.deadline = value, deadline
		m.lru.MoveToFront(el)
		return nil
	}

	if m.cfg.capacity > 0 && len(m.index) >= m.cfg.capacity {
		if oldest := m.lru.Back(); oldest != nil {
			m.drop(oldest)
		}
	}
	m.index[key] = m.lru.PushFront(&memoryItem[V]{key: key, value: value, deadline: deadline})
	return nil
}

func (m *Memory[V]) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if el, ok := m.index[key]; ok {
		m.drop(el)
	}
	return nil
}

func (m *Memory[V]) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	clear(m.index)
	m.lru.Init()
	return nil
}

// Close stops the background sweep. It is idempotent.
func (m *Memory[V]) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		m.closed = true
		close(m.stop)
	}
	return nil
}

// Len returns the number of stored entries, including expired ones not yet
// swept.
func (m *Memory[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.index)
}

// Stats returns lookup counters.
func (m *Memory[V]) Stats() Stats {
	return Stats{Hits: m.hits.Load(), Misses: m.misses.Load()}
}

func (m *Memory[V]) sweeper() {
	ticker := time.NewTicker(m.cfg.sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case now := <-ticker.C:
			m.sweep(now)
		}
	}
}

func (m *Memory[V]) sweep(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for el := m.lru.Back(); el != nil; {
		prev := el.Prev()
		if el.Value.(*memoryItem[V]).expired(now) {
			m.drop(el)
		}
		el = prev
	}
}

// drop must be called with mu held.
func (m *Memory[V]) drop(el *list.Element) {
	m.lru.Remove(el)
	delete(m.index, el.Value.(*memoryItem[V]).key)
}

var (
	_ Cache[any]    = (*Memory[any])(nil)
	_ StatsReporter = (*Memory[any])(nil)
)
