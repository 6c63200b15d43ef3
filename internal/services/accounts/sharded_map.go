package accounts

import (
	"sync"

	"github.com/gagliardetto/solana-go"
)

const numShards = 16

// ShardedAccountMap is a sharded map of resolved token accounts to reduce
// lock contention when many attempts resolve concurrently.
type ShardedAccountMap struct {
	shards [numShards]accountShard
}

type accountShard struct {
	mu       sync.RWMutex
	accounts map[solana.PublicKey]solana.PublicKey
}

func NewShardedAccountMap() *ShardedAccountMap {
	m := &ShardedAccountMap{}
	for i := 0; i < numShards; i++ {
		m.shards[i].accounts = make(map[solana.PublicKey]solana.PublicKey)
	}
	return m
}

// getShard returns the shard for a given key.
func (m *ShardedAccountMap) getShard(key solana.PublicKey) *accountShard {
	// Use first byte of public key for sharding (simple and fast)
	idx := key[0] % numShards
	return &m.shards[idx]
}

func (m *ShardedAccountMap) Get(key solana.PublicKey) (solana.PublicKey, bool) {
	shard := m.getShard(key)
	shard.mu.RLock()
	addr, ok := shard.accounts[key]
	shard.mu.RUnlock()
	return addr, ok
}

func (m *ShardedAccountMap) Set(key, addr solana.PublicKey) {
	shard := m.getShard(key)
	shard.mu.Lock()
	shard.accounts[key] = addr
	shard.mu.Unlock()
}

func (m *ShardedAccountMap) Delete(key solana.PublicKey) {
	shard := m.getShard(key)
	shard.mu.Lock()
	delete(shard.accounts, key)
	shard.mu.Unlock()
}

func (m *ShardedAccountMap) Len() int {
	total := 0
	for i := 0; i < numShards; i++ {
		m.shards[i].mu.RLock()
		total += len(m.shards[i].accounts)
		m.shards[i].mu.RUnlock()
	}
	return total
}
