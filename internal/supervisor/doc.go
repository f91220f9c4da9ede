// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

/*
Package supervisor runs the long-lived services of the server under a
suture v4 tree.

	societyrec
	├── model-layer
	│   └── CorpusRefitService
	├── messaging-layer
	│   └── events.Bus (feedback cache invalidation)
	└── api-layer
	    └── HTTPServerService

Crashed services restart with suture's backoff. Supervisor events are logged
through sutureslog, fed by the zerolog-backed slog handler from
internal/logging.

Usage:

	tree := supervisor.NewTree(logging.NewSlogLogger(logger), supervisor.DefaultTreeConfig())
	tree.AddModelService(services.NewCorpusRefitService(rec, refitCfg, logger))
	tree.AddMessagingService(bus)
	tree.AddAPIService(services.NewHTTPServerService(srv, cfg.Server.ShutdownTimeout))

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("Supervisor stopped")
	}
*/
package supervisor
