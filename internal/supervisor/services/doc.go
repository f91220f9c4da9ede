// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

// Package services adapts components to suture.Service.
//
// HTTPServerService turns ListenAndServe/Shutdown into a context-driven
// Serve. CorpusRefitService refits the text-similarity models on startup
// and on a fixed interval. Both implement fmt.Stringer so supervisor events
// name them.
package services
