// Cinegraph - TMDB Catalog Reconciliation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinegraph

package tmdb

import "sync"

// KeyPool rotates a fixed ordered set of API keys across concurrent
// requests. The only mutable state is the rotating index.
type KeyPool struct {
	mu   sync.Mutex
	keys []string
	next int
}

// NewKeyPool returns a pool over the given keys. The slice is copied;
// callers may not mutate it afterwards through the original.
func NewKeyPool(keys []string) *KeyPool {
	cp := make([]string, len(keys))
	copy(cp, keys)
	return &KeyPool{keys: cp}
}

// Next returns the next key in cyclic order. Safe for concurrent use.
func (p *KeyPool) Next() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.keys) == 0 {
		return ""
	}
	key := p.keys[p.next]
	p.next = (p.next + 1) % len(p.keys)
	return key
}

// Size returns the number of keys in the pool.
func (p *KeyPool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.keys)
}
