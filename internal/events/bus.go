// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/rs/zerolog"

	"github.com/tomtom215/societyrec/internal/metrics"
)

// TopicFeedbackRecorded carries every recorded feedback event.
const TopicFeedbackRecorded = "feedback.recorded"

// Config holds event bus settings.
type Config struct {
	// OutputBuffer is the per-subscriber channel buffer.
	OutputBuffer int64

	// CloseTimeout bounds how long in-flight handlers may run on shutdown.
	CloseTimeout time.Duration

	RetryMaxRetries      int
	RetryInitialInterval time.Duration
}

// DefaultConfig returns the production bus settings.
func DefaultConfig() Config {
	return Config{
		OutputBuffer:         256,
		CloseTimeout:         10 * time.Second,
		RetryMaxRetries:      3,
		RetryInitialInterval: 100 * time.Millisecond,
	}
}

type handlerSpec struct {
	name  string
	topic string
	fn    message.NoPublishHandlerFunc
}

// Bus is an in-process publish/subscribe bus over a watermill GoChannel.
//
// Handlers are registered up front and run by Serve, which builds a fresh
// router on every call so a supervisor can restart it. Messages published
// while no router is running are dropped.
type Bus struct {
	cfg    Config
	pubsub *gochannel.GoChannel
	logger watermill.LoggerAdapter

	mu       sync.Mutex
	handlers []handlerSpec

	running     chan struct{}
	runningOnce sync.Once
}

// NewBus creates a bus.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBus(cfg Config, logger zerolog.Logger) *Bus {
	if cfg.OutputBuffer <= 0 {
		cfg.OutputBuffer = DefaultConfig().OutputBuffer
	}
	if cfg.CloseTimeout <= 0 {
		cfg.CloseTimeout = DefaultConfig().CloseTimeout
	}
	adapter := NewZerologAdapter(logger.With().Str("component", "event_bus").Logger())

	return &Bus{
		cfg: cfg,
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: cfg.OutputBuffer,
			PreserveContext:     true,
		}, adapter),
		logger:  adapter,
		running: make(chan struct{}),
	}
}

// Publisher returns the bus publisher.
func (b *Bus) Publisher() message.Publisher {
	return b.pubsub
}

// AddConsumerHandler registers a handler for topic. Handlers added after
// Serve has started take effect on the next Serve.
func (b *Bus) AddConsumerHandler(name, topic string, fn message.NoPublishHandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, handlerSpec{name: name, topic: topic, fn: fn})
}

// Running is closed once a router has started for the first time.
func (b *Bus) Running() <-chan struct{} {
	return b.running
}

// Serve runs the handlers until ctx is canceled.
func (b *Bus) Serve(ctx context.Context) error {
	router, err := b.newRouter()
	if err != nil {
		return err
	}

	go func() {
		select {
		case <-router.Running():
			b.runningOnce.Do(func() { close(b.running) })
		case <-ctx.Done():
		}
	}()

	if err := router.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("event router: %w", err)
	}
	return ctx.Err()
}

func (b *Bus) newRouter() (*message.Router, error) {
	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: b.cfg.CloseTimeout}, b.logger)
	if err != nil {
		return nil, fmt.Errorf("create event router: %w", err)
	}

	router.AddMiddleware(b.dropFailed, middleware.Recoverer)
	if b.cfg.RetryMaxRetries > 0 {
		retry := middleware.Retry{
			MaxRetries:      b.cfg.RetryMaxRetries,
			InitialInterval: b.cfg.RetryInitialInterval,
			MaxInterval:     10 * b.cfg.RetryInitialInterval,
			Multiplier:      2,
			Logger:          b.logger,
		}
		router.AddMiddleware(retry.Middleware)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, h := range b.handlers {
		router.AddConsumerHandler(h.name, h.topic, b.pubsub, instrument(h.name, h.fn))
	}
	return router, nil
}

// Close shuts down the underlying pub/sub.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}

func (b *Bus) String() string {
	return "event-bus"
}

// dropFailed acks a message whose handler still fails after retries.
// GoChannel redelivers nacked messages immediately, so a permanently
// failing handler would otherwise spin.
func (b *Bus) dropFailed(h message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		out, err := h(msg)
		if err != nil {
			b.logger.Error("Dropping message after failed handling", err, watermill.LogFields{
				"message_uuid": msg.UUID,
				"handler":      message.HandlerNameFromCtx(msg.Context()),
			})
			return nil, nil
		}
		return out, nil
	}
}

// instrument counts handler outcomes.
func instrument(name string, fn message.NoPublishHandlerFunc) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		if err := fn(msg); err != nil {
			metrics.EventsHandled.WithLabelValues(name, "error").Inc()
			return err
		}
		metrics.EventsHandled.WithLabelValues(name, "success").Inc()
		return nil
	}
}
