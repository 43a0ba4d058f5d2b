// Package util contains internal helpers (hashing, sharding, padding).
//revive:disable:var-naming  // allow 'util' as an internal helpers package name
package util

import (
	"runtime"

	"github.com/cespare/xxhash/v2"
)

// maxShards caps ReasonableShardCount.
const maxShards = 256

// Hash returns the 64-bit xxHash of s. It is used to spread site names
// across registry shards.
func Hash(s string) uint64 { return xxhash.Sum64String(s) }

// NextPow2 returns the smallest power of two >= x.
// x <= 1 yields 1; results that would overflow are clamped to 1<<63.
func NextPow2(x uint64) uint64 {
	if x <= 1 {
		return 1
	}
	x--
	x |= x >> 1
	x |= x >> 2
	x |= x >> 4
	x |= x >> 8
	x |= x >> 16
	x |= x >> 32
	x++
	if x == 0 {
		return 1 << 63
	}
	return x
}

// ReasonableShardCount picks a default shard count from CPU parallelism:
// nextPow2(2*GOMAXPROCS), clamped to [1..256].
func ReasonableShardCount() int {
	p := runtime.GOMAXPROCS(0)
	if p < 1 {
		p = 1
	}
	return ShardCount(p * 2)
}

// ShardCount rounds n up to a power of two within [1..256].
func ShardCount(n int) int {
	if n < 1 {
		return 1
	}
	c := int(NextPow2(uint64(n)))
	if c > maxShards {
		c = maxShards
	}
	return c
}

// ShardIndex maps a hash to a shard index. shards must be a power of two.
func ShardIndex(hash uint64, shards int) int {
	if shards <= 1 {
		return 0
	}
	return int(hash & uint64(shards-1))
}
