// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

// Package app wires the recommendation pipeline from configuration: the
// text analyzer with its semantic booster, optional embedding client and
// model store, the feedback processor over Badger or memory, the
// cold-start handler, the MMR selector and the recommender itself.
package app
