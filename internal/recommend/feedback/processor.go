// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

package feedback

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/societyrec/internal/cache"
	"github.com/tomtom215/societyrec/internal/metrics"
	"github.com/tomtom215/societyrec/internal/recommend"
)

const (
	categoryShare = 0.8
	tagShare      = 0.6

	societyFactor  = 2.0
	categoryFactor = 1.5
	scoreFactor    = 0.5
)

// SocietyLookup resolves societies by ID.
type SocietyLookup interface {
	Societies(ctx context.Context, ids []int) ([]recommend.Society, error)
}

// Config configures a Processor.
type Config struct {
	// HalfLife is the age at which a contribution is halved.
	// Default: 60 days.
	HalfLife time.Duration `json:"half_life"`

	// CacheTTL is how long computed adjustments are reused.
	// Default: 1h.
	CacheTTL time.Duration `json:"cache_ttl"`
}

// DefaultConfig returns the standard decay and cache settings.
func DefaultConfig() Config {
	return Config{
		HalfLife: 60 * 24 * time.Hour,
		CacheTTL: time.Hour,
	}
}

// Processor records feedback and serves preference adjustments. It is safe
// for concurrent use.
type Processor struct {
	cfg       Config
	store     Store
	societies SocietyLookup
	clock     cache.Clock
	logger    zerolog.Logger

	publisher Publisher

	adjustments *cache.TTL[int, Adjustments]

	// generations counts recorded events per student. A computed
	// adjustment is cached only if no event landed while it was computed.
	genMu       sync.Mutex
	generations map[int]uint64
}

// NewProcessor creates a Processor. A nil clock uses the system clock.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewProcessor(cfg Config, store Store, societies SocietyLookup, clock cache.Clock, logger zerolog.Logger) *Processor {
	if cfg.HalfLife <= 0 {
		cfg.HalfLife = DefaultConfig().HalfLife
	}
	if clock == nil {
		clock = cache.SystemClock{}
	}
	return &Processor{
		cfg:         cfg,
		store:       store,
		societies:   societies,
		clock:       clock,
		logger:      logger.With().Str("component", "feedback").Logger(),
		adjustments: cache.NewTTL[int, Adjustments](cfg.CacheTTL, clock),
		generations: make(map[int]uint64),
	}
}

// SetPublisher announces every recorded event through p.
func (p *Processor) SetPublisher(pub Publisher) {
	p.publisher = pub
}

// Record validates and appends a feedback event, then invalidates the
// student's cached adjustments. A publish failure is logged only.
//
//nolint:gocritic // Input passed by value, it is small and read-only
func (p *Processor) Record(ctx context.Context, in Input) (Event, error) {
	t, err := ParseType(in.Type)
	if err != nil {
		metrics.RecordFeedback("unknown", "rejected")
		return Event{}, err
	}

	ev := Event{
		ID:        uuid.NewString(),
		StudentID: in.StudentID,
		SocietyID: in.SocietyID,
		Type:      t,
		Timestamp: p.clock.Now().UTC(),
		Value:     in.Value,
		Metadata:  in.Metadata,
	}

	if err := p.store.Append(ctx, ev); err != nil {
		metrics.RecordFeedback(string(t), "failed")
		metrics.FeedbackStoreErrors.WithLabelValues("append").Inc()
		return Event{}, fmt.Errorf("append feedback: %w", err)
	}
	p.invalidate(in.StudentID)
	metrics.RecordFeedback(string(t), "recorded")

	if p.publisher != nil {
		if err := p.publisher.Publish(ctx, ev); err != nil {
			p.logger.Warn().Err(err).Str("event_id", ev.ID).Msg("failed to publish feedback event")
		}
	}

	p.logger.Debug().
		Str("event_id", ev.ID).
		Int("student_id", ev.StudentID).
		Int("society_id", ev.SocietyID).
		Str("type", string(t)).
		Msg("feedback recorded")
	return ev, nil
}

// PreferenceAdjustments returns the student's adjustments, memoized for
// the cache TTL. Store failures yield empty adjustments.
func (p *Processor) PreferenceAdjustments(ctx context.Context, studentID int) Adjustments {
	if adj, ok := p.adjustments.Get(studentID); ok {
		metrics.RecordCacheLookup("adjustments", true)
		return adj
	}
	metrics.RecordCacheLookup("adjustments", false)

	gen := p.generation(studentID)
	adj, err := p.ComputeAdjustments(ctx, studentID)
	if err != nil {
		metrics.FeedbackStoreErrors.WithLabelValues("list").Inc()
		p.logger.Warn().Err(err).Int("student_id", studentID).Msg("feedback unavailable, using no adjustments")
		return NewAdjustments()
	}

	p.cacheIfCurrent(studentID, gen, adj)
	return adj
}

// invalidate bumps the student's generation and drops cached adjustments.
func (p *Processor) invalidate(studentID int) {
	p.genMu.Lock()
	defer p.genMu.Unlock()
	p.generations[studentID]++
	p.adjustments.Delete(studentID)
}

func (p *Processor) generation(studentID int) uint64 {
	p.genMu.Lock()
	defer p.genMu.Unlock()
	return p.generations[studentID]
}

// cacheIfCurrent stores adj unless feedback was recorded for the student
// after gen was read.
//
//nolint:gocritic // Adjustments passed by value, it only holds maps
func (p *Processor) cacheIfCurrent(studentID int, gen uint64, adj Adjustments) {
	p.genMu.Lock()
	defer p.genMu.Unlock()
	if p.generations[studentID] != gen {
		return
	}
	p.adjustments.Set(studentID, adj)
}

// ComputeAdjustments computes adjustments from the feedback log, bypassing
// the cache.
func (p *Processor) ComputeAdjustments(ctx context.Context, studentID int) (Adjustments, error) {
	events, err := p.store.ListByStudent(ctx, studentID)
	if err != nil {
		return Adjustments{}, fmt.Errorf("list feedback for student %d: %w", studentID, err)
	}

	adj := NewAdjustments()
	if len(events) == 0 {
		return adj, nil
	}

	societies, err := p.lookupSocieties(ctx, events)
	if err != nil {
		return Adjustments{}, err
	}

	now := p.clock.Now()
	for i := range events {
		ev := &events[i]
		c := contribution(ev, now, p.cfg.HalfLife)

		adj.Societies[ev.SocietyID] += c

		soc, ok := societies[ev.SocietyID]
		if !ok {
			continue
		}
		if category := normalizeLabel(soc.Category); category != "" {
			adj.Categories[category] += categoryShare * c
		}
		for _, tag := range soc.Tags {
			if t := normalizeLabel(tag); t != "" {
				adj.Tags[t] += tagShare * c
			}
		}
	}

	normalize(adj.Categories)
	normalize(adj.Tags)
	normalize(adj.Societies)
	return adj, nil
}

func (p *Processor) lookupSocieties(ctx context.Context, events []Event) (map[int]recommend.Society, error) {
	if p.societies == nil {
		return nil, nil
	}

	seen := make(map[int]struct{}, len(events))
	ids := make([]int, 0, len(events))
	for i := range events {
		if _, ok := seen[events[i].SocietyID]; !ok {
			seen[events[i].SocietyID] = struct{}{}
			ids = append(ids, events[i].SocietyID)
		}
	}

	found, err := p.societies.Societies(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load feedback societies: %w", err)
	}
	out := make(map[int]recommend.Society, len(found))
	for i := range found {
		out[found[i].ID] = found[i]
	}
	return out, nil
}

// Apply rescales each candidate's score by the student's adjustments.
func (p *Processor) Apply(ctx context.Context, studentID int, candidates []recommend.Candidate) []recommend.Candidate {
	out := make([]recommend.Candidate, len(candidates))
	copy(out, candidates)

	adj := p.PreferenceAdjustments(ctx, studentID)
	if adj.Empty() {
		return out
	}

	for i := range out {
		out[i].Score *= 1 + scoreFactor*adjustmentFor(&adj, &out[i].Society)
	}
	return out
}

// adjustmentFor combines the society, category and tag adjustments that
// apply to soc.
func adjustmentFor(adj *Adjustments, soc *recommend.Society) float64 {
	s := adj.Societies[soc.ID]
	a := s*math.Abs(s)*societyFactor + adj.Categories[normalizeLabel(soc.Category)]*categoryFactor

	sum, n := 0.0, 0
	for _, tag := range soc.Tags {
		if v, ok := adj.Tags[normalizeLabel(tag)]; ok {
			sum += v
			n++
		}
	}
	if n > 0 {
		a += sum / float64(n)
	}
	return a
}

// contribution is the decayed, value-scaled weight of one event.
func contribution(ev *Event, now time.Time, halfLife time.Duration) float64 {
	weight := ev.Type.BaseWeight()
	if ev.Value != nil && ev.Type.explicit() {
		weight *= (*ev.Value - 3) / 2
	}

	age := now.Sub(ev.Timestamp)
	if age < 0 {
		age = 0
	}
	return weight * math.Exp2(-float64(age)/float64(halfLife))
}

// normalize divides every value by the largest absolute value and clamps
// to [-1, 1].
func normalize[K comparable](values map[K]float64) {
	maxAbs := 0.0
	for _, v := range values {
		maxAbs = math.Max(maxAbs, math.Abs(v))
	}
	if maxAbs == 0 {
		return
	}
	for k, v := range values {
		values[k] = math.Min(math.Max(v/maxAbs, -1), 1)
	}
}

func normalizeLabel(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Ensure Processor implements the interface.
var _ recommend.FeedbackAdjuster = (*Processor)(nil)
