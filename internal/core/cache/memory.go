package cache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MemoryStore 程序內 LRU 快取，條目在 ttl 後過期
type MemoryStore struct {
	lru    *expirable.LRU[string, []byte]
	hits   atomic.Int64
	misses atomic.Int64
}

// NewMemoryStore 創建記憶體快取
func NewMemoryStore(size int, ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		lru: expirable.NewLRU[string, []byte](size, nil, ttl),
	}
}

// Get 獲取緩存值
func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.lru.Get(key)
	if !ok {
		m.misses.Add(1)
		return nil, false, nil
	}
	m.hits.Add(1)
	return v, true, nil
}

// Set 設置緩存值
func (m *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	m.lru.Add(key, value)
	return nil
}

// Stats 獲取緩存統計信息
func (m *MemoryStore) Stats() Stats {
	return Stats{
		Backend: "memory",
		Size:    m.lru.Len(),
		Hits:    m.hits.Load(),
		Misses:  m.misses.Load(),
	}
}

// Close 清空緩存
func (m *MemoryStore) Close() error {
	m.lru.Purge()
	return nil
}
