package codec

import (
	"crypto/sha1"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DigestSize is the width of the key DecodeCache indexes by.
const DigestSize = sha1.Size

// DecodeCache memoises the result of decoding raw packets, keyed by the
// SHA-1 digest of the raw frame. Strategies that see the same payload
// repeatedly (subset rebroadcasts, retried proposals) avoid re-parsing it.
// Safe for concurrent use: packets for distinct (src,dst) pairs are decoded
// from independent RPC worker goroutines.
type DecodeCache struct {
	cache *lru.Cache[[DigestSize]byte, Decoded]
	hits  atomic.Int64
	miss  atomic.Int64
}

// NewDecodeCache builds a DecodeCache holding up to size entries.
func NewDecodeCache(size int) (*DecodeCache, error) {
	c, err := lru.New[[DigestSize]byte, Decoded](size)
	if err != nil {
		return nil, err
	}
	return &DecodeCache{cache: c}, nil
}

// Digest computes the cache key for a raw frame.
func Digest(raw []byte) [DigestSize]byte {
	return sha1.Sum(raw)
}

// Get returns a previously decoded frame for the given digest, if present.
func (c *DecodeCache) Get(digest [DigestSize]byte) (Decoded, bool) {
	d, ok := c.cache.Get(digest)
	if ok {
		c.hits.Add(1)
	} else {
		c.miss.Add(1)
	}
	return d, ok
}

// Put stores the decode result for a digest.
func (c *DecodeCache) Put(digest [DigestSize]byte, d Decoded) {
	c.cache.Add(digest, d)
}

// Stats returns cumulative hit/miss counts.
func (c *DecodeCache) Stats() (hits, miss int64) {
	return c.hits.Load(), c.miss.Load()
}
