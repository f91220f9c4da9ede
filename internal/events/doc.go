// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

/*
Package events provides the in-process event bus.

The bus is a watermill GoChannel pub/sub with a router that adds panic
recovery and retries. Feedback recording publishes every event on
TopicFeedbackRecorded; the cache invalidation handler consumes it and drops
the student's cached recommendation responses.

	bus := events.NewBus(events.DefaultConfig(), logger)
	processor.SetPublisher(events.NewFeedbackPublisher(bus.Publisher()))
	events.RegisterInvalidation(bus, recommender, logger)

	// Serve blocks; run it under the supervisor.
	go bus.Serve(ctx)
*/
package events
