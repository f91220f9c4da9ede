// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

package embedding

import (
	"context"
	"crypto/sha256"

	"github.com/tomtom215/societyrec/internal/cache"
	"github.com/tomtom215/societyrec/internal/metrics"
)

// Cached memoizes another Embedder in a bounded LRU. Errors are not cached.
type Cached struct {
	next    Embedder
	vectors *cache.LRU[[sha256.Size]byte, []float64]
}

// NewCached wraps next with an LRU of at most size vectors.
func NewCached(next Embedder, size int) *Cached {
	return &Cached{
		next:    next,
		vectors: cache.NewLRU[[sha256.Size]byte, []float64](size),
	}
}

// Embed returns the cached vector for text or computes and stores it.
// Returned vectors are shared and must not be modified.
func (c *Cached) Embed(ctx context.Context, text string) ([]float64, error) {
	key := sha256.Sum256([]byte(text))
	if v, ok := c.vectors.Get(key); ok {
		metrics.RecordCacheLookup("embeddings", true)
		return v, nil
	}
	metrics.RecordCacheLookup("embeddings", false)

	v, err := c.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.vectors.Add(key, v)
	return v, nil
}

// Len returns the number of cached vectors.
func (c *Cached) Len() int {
	return c.vectors.Len()
}
