// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

/*
Package cache provides the in-memory data structures shared by the
recommendation components.

# Overview

The package contains three structures:
  - TTL: a keyed cache with per-entry expiry and a pluggable Clock, used for
    preference adjustments (1 hour) and recommendation responses
  - LRU: a bounded least-recently-used map, used for sentence embeddings
  - AhoCorasick: a multi-pattern matcher used to scan descriptions for
    lexicon phrases on word boundaries

All structures are safe for concurrent use.

# Clocks

TTL never calls time.Now directly. Production code passes SystemClock{};
tests pass a manual clock and advance it to expire entries deterministically:

	c := cache.NewTTL[int, Adjustments](time.Hour, clock)
	c.Set(42, adj)
	clock.Advance(61 * time.Minute)
	_, ok := c.Get(42) // false
*/
package cache
