// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

package events

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/societyrec/internal/logging"
	"github.com/tomtom215/societyrec/internal/metrics"
	"github.com/tomtom215/societyrec/internal/recommend/feedback"
)

// metadataCorrelationID is the message metadata key of the correlation ID.
const metadataCorrelationID = "correlation_id"

// FeedbackPublisher publishes recorded feedback events on
// TopicFeedbackRecorded. It implements feedback.Publisher.
type FeedbackPublisher struct {
	pub message.Publisher
}

// NewFeedbackPublisher creates a publisher over pub.
func NewFeedbackPublisher(pub message.Publisher) *FeedbackPublisher {
	return &FeedbackPublisher{pub: pub}
}

// Publish sends ev. The message UUID is the event ID and the correlation
// ID of ctx, or the event ID, is carried in metadata.
func (p *FeedbackPublisher) Publish(ctx context.Context, ev feedback.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		metrics.EventsPublished.WithLabelValues(TopicFeedbackRecorded, "error").Inc()
		return fmt.Errorf("marshal feedback event: %w", err)
	}

	id := ev.ID
	if id == "" {
		id = watermill.NewUUID()
	}
	msg := message.NewMessage(id, payload)
	correlationID := logging.CorrelationIDFromContext(ctx)
	if correlationID == "" {
		correlationID = id
	}
	msg.Metadata.Set(metadataCorrelationID, correlationID)
	msg.SetContext(ctx)

	if err := p.pub.Publish(TopicFeedbackRecorded, msg); err != nil {
		metrics.EventsPublished.WithLabelValues(TopicFeedbackRecorded, "error").Inc()
		return fmt.Errorf("publish feedback event: %w", err)
	}
	metrics.EventsPublished.WithLabelValues(TopicFeedbackRecorded, "success").Inc()
	return nil
}

var _ feedback.Publisher = (*FeedbackPublisher)(nil)

// Invalidator drops cached state derived from a student's feedback.
type Invalidator interface {
	InvalidateStudent(studentID int) int
}

// InvalidationHandler returns a handler that invalidates the cached
// recommendations of the student in each feedback message. Malformed
// payloads are logged and acked.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func InvalidationHandler(inv Invalidator, logger zerolog.Logger) message.NoPublishHandlerFunc {
	logger = logger.With().Str("component", "cache_invalidation").Logger()

	return func(msg *message.Message) error {
		var ev feedback.Event
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			logger.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("Discarding malformed feedback message")
			return nil
		}

		dropped := inv.InvalidateStudent(ev.StudentID)
		logger.Debug().
			Str("correlation_id", msg.Metadata.Get(metadataCorrelationID)).
			Int("student_id", ev.StudentID).
			Int("dropped", dropped).
			Msg("Invalidated cached recommendations")
		return nil
	}
}

// RegisterInvalidation subscribes inv to recorded feedback on b.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func RegisterInvalidation(b *Bus, inv Invalidator, logger zerolog.Logger) {
	b.AddConsumerHandler("recommendation_cache_invalidation", TopicFeedbackRecorded, InvalidationHandler(inv, logger))
}
