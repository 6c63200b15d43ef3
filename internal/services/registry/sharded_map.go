package registry

import (
	"sync"

	"github.com/gagliardetto/solana-go"

	"github.com/1sol-io/1sol-interface-sub000/internal/domain"
)

const numShards = 16

// ShardedVenueMap is a sharded map of venue records to reduce lock
// contention between discovery and lookups.
type ShardedVenueMap struct {
	shards [numShards]venueShard
}

type venueShard struct {
	mu     sync.RWMutex
	venues map[solana.PublicKey]*domain.VenueRecord
}

func NewShardedVenueMap() *ShardedVenueMap {
	m := &ShardedVenueMap{}
	for i := 0; i < numShards; i++ {
		m.shards[i].venues = make(map[solana.PublicKey]*domain.VenueRecord)
	}
	return m
}

func (m *ShardedVenueMap) getShard(key solana.PublicKey) *venueShard {
	idx := key[0] % numShards
	return &m.shards[idx]
}

func (m *ShardedVenueMap) Get(key solana.PublicKey) (*domain.VenueRecord, bool) {
	shard := m.getShard(key)
	shard.mu.RLock()
	venue, ok := shard.venues[key]
	shard.mu.RUnlock()
	return venue, ok
}

func (m *ShardedVenueMap) Set(key solana.PublicKey, venue *domain.VenueRecord) {
	shard := m.getShard(key)
	shard.mu.Lock()
	shard.venues[key] = venue
	shard.mu.Unlock()
}

func (m *ShardedVenueMap) Delete(key solana.PublicKey) {
	shard := m.getShard(key)
	shard.mu.Lock()
	delete(shard.venues, key)
	shard.mu.Unlock()
}

func (m *ShardedVenueMap) Len() int {
	total := 0
	for i := 0; i < numShards; i++ {
		m.shards[i].mu.RLock()
		total += len(m.shards[i].venues)
		m.shards[i].mu.RUnlock()
	}
	return total
}

// Range iterates over all venues (acquires locks per shard).
func (m *ShardedVenueMap) Range(f func(key solana.PublicKey, venue *domain.VenueRecord) bool) {
	for i := 0; i < numShards; i++ {
		m.shards[i].mu.RLock()
		for k, v := range m.shards[i].venues {
			if !f(k, v) {
				m.shards[i].mu.RUnlock()
				return
			}
		}
		m.shards[i].mu.RUnlock()
	}
}
