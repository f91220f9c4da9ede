// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type fakeRefitter struct {
	mu        sync.Mutex
	calls     int
	err       error
	deadlines []bool
}

func (f *fakeRefitter) UpdateSimilarityModel(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	_, ok := ctx.Deadline()
	f.deadlines = append(f.deadlines, ok)
	return f.err
}

func (f *fakeRefitter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestNewCorpusRefitService_Defaults(t *testing.T) {
	t.Parallel()

	svc := NewCorpusRefitService(&fakeRefitter{}, CorpusRefitConfig{}, zerolog.Nop())
	if svc.config.Interval != time.Hour {
		t.Errorf("Interval = %v, want 1h", svc.config.Interval)
	}
	if svc.config.Timeout != 2*time.Minute {
		t.Errorf("Timeout = %v, want 2m", svc.config.Timeout)
	}
	if svc.String() != "corpus-refit" {
		t.Errorf("String() = %q", svc.String())
	}
}

func TestCorpusRefitService_RefitOnStartup(t *testing.T) {
	t.Parallel()

	refitter := &fakeRefitter{}
	svc := NewCorpusRefitService(refitter, CorpusRefitConfig{
		RefitOnStartup: true,
		Interval:       time.Hour,
	}, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if err := svc.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Serve = %v, want context.DeadlineExceeded", err)
	}
	if got := refitter.callCount(); got != 1 {
		t.Errorf("refits = %d, want 1", got)
	}
	if !refitter.deadlines[0] {
		t.Error("refit context has no deadline")
	}
}

func TestCorpusRefitService_NoStartupRefit(t *testing.T) {
	t.Parallel()

	refitter := &fakeRefitter{}
	svc := NewCorpusRefitService(refitter, CorpusRefitConfig{Interval: time.Hour}, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_ = svc.Serve(ctx)

	if got := refitter.callCount(); got != 0 {
		t.Errorf("refits = %d, want 0", got)
	}
}

func TestCorpusRefitService_FailuresDoNotStopService(t *testing.T) {
	t.Parallel()

	refitter := &fakeRefitter{err: errors.New("empty vocabulary")}
	svc := NewCorpusRefitService(refitter, CorpusRefitConfig{
		RefitOnStartup: true,
		Interval:       10 * time.Millisecond,
	}, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	if err := svc.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Serve = %v, want context.DeadlineExceeded", err)
	}
	if got := refitter.callCount(); got < 3 {
		t.Errorf("refits = %d, want several scheduled retries", got)
	}
}
