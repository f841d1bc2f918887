// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package streamcache memoizes the fully decompressed form of a DEFLATE
// stream keyed by its compressed bytes. cmd/deflatebench uses it so that
// a stream it has already decoded is served from memory instead of being
// decompressed again; the gzip, zlib and flate readers do not use it.
package streamcache

import (
	"context"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/cespare/xxhash/v2"
)

// Cache holds recently decompressed payloads, evicting entries after a
// TTL.
type Cache struct {
	bc *bigcache.BigCache
}

// New returns a Cache whose entries expire after ttl.
func New(ctx context.Context, ttl time.Duration) (*Cache, error) {
	cfg := bigcache.DefaultConfig(ttl)
	bc, err := bigcache.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Cache{bc: bc}, nil
}

// Key fingerprints a compressed stream's bytes with xxhash, cheap enough
// to compute on every open.
func Key(compressed []byte) string {
	var buf [8]byte
	h := xxhash.Sum64(compressed)
	for i := range buf {
		buf[i] = byte(h >> (8 * i))
	}
	return string(buf[:])
}

// Get returns the cached decompressed payload for key, if present.
func (c *Cache) Get(key string) ([]byte, bool) {
	v, err := c.bc.Get(key)
	if err != nil {
		return nil, false
	}
	return v, true
}

// Put records the decompressed payload for key.
func (c *Cache) Put(key string, decompressed []byte) {
	_ = c.bc.Set(key, decompressed)
}
