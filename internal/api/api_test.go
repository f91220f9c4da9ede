// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/societyrec/internal/recommend"
	"github.com/tomtom215/societyrec/internal/recommend/feedback"
)

type fakeRecommender struct {
	mu        sync.Mutex
	lastLevel recommend.DiversityLevel
	lastLimit int
	recs      []recommend.Recommendation
	err       error
	refits    int
	block     bool
}

func (f *fakeRecommender) Recommend(ctx context.Context, studentID, limit int, level recommend.DiversityLevel) ([]recommend.Recommendation, error) {
	f.mu.Lock()
	f.lastLevel = level
	f.lastLimit = limit
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if studentID == 404 {
		return nil, recommend.ErrStudentNotFound
	}
	return f.recs, f.err
}

func (f *fakeRecommender) Explain(_ context.Context, studentID, societyID int) (recommend.Explanation, error) {
	if societyID == 404 {
		return recommend.Explanation{}, recommend.ErrSocietyNotFound
	}
	return recommend.Explanation{Type: recommend.ExplanationCategoryMatch, Message: "Matches your interest in Technology"}, nil
}

func (f *fakeRecommender) PopularSocieties(_ context.Context, limit int, withRecentBoost bool) ([]recommend.Society, error) {
	f.mu.Lock()
	f.lastLimit = limit
	f.mu.Unlock()
	name := "Chess Club"
	if withRecentBoost {
		name = "Robotics Society"
	}
	return []recommend.Society{{ID: 1, Name: name, Tags: []string{}}}, nil
}

func (f *fakeRecommender) UpdateSimilarityModel(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refits++
	return f.err
}

type fakeColdStarter struct{}

func (fakeColdStarter) InitialRecommendations(_ context.Context, studentID, limit int) ([]recommend.Society, error) {
	if studentID == 404 {
		return []recommend.Society{}, nil
	}
	return []recommend.Society{{ID: 3, Name: "Robotics Society", Tags: []string{"robots"}}}, nil
}

type fakeFeedback struct {
	mu     sync.Mutex
	inputs []feedback.Input
	err    error
}

func (f *fakeFeedback) Record(_ context.Context, in feedback.Input) (feedback.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return feedback.Event{}, f.err
	}
	f.inputs = append(f.inputs, in)
	return feedback.Event{ID: "evt-1", StudentID: in.StudentID, SocietyID: in.SocietyID}, nil
}

func (f *fakeFeedback) PreferenceAdjustments(_ context.Context, studentID int) feedback.Adjustments {
	return feedback.Adjustments{
		Categories: map[string]float64{"Technology": 0.4},
		Tags:       map[string]float64{},
		Societies:  map[int]float64{3: 0.6},
	}
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

type testEnv struct {
	rec    *fakeRecommender
	fb     *fakeFeedback
	router http.Handler
}

func newTestEnv(t *testing.T, mutate func(*MiddlewareConfig), db Pinger) *testEnv {
	t.Helper()
	env := &testEnv{
		rec: &fakeRecommender{recs: []recommend.Recommendation{
			{Society: recommend.Society{ID: 2, Name: "Go Programmers", Tags: []string{"go"}}, Score: 0.9},
			{Society: recommend.Society{ID: 5, Name: "Jazz Band", Tags: []string{"jazz"}}, Score: 0.4},
		}},
		fb: &fakeFeedback{},
	}
	cfg := DefaultMiddlewareConfig()
	cfg.RateLimitDisabled = true
	if mutate != nil {
		mutate(&cfg)
	}
	h := NewHandler(env.rec, fakeColdStarter{}, env.fb, db, zerolog.Nop())
	env.router = NewRouter(h, cfg)
	return env
}

func (e *testEnv) do(t *testing.T, method, target, body string) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var resp APIResponse
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, resp
}

func TestRecommendations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		target    string
		wantCode  int
		wantError string
		wantLevel recommend.DiversityLevel
		wantLimit int
	}{
		{name: "defaults", target: "/api/v1/students/1/recommendations", wantCode: http.StatusOK, wantLevel: ""},
		{name: "explicit", target: "/api/v1/students/1/recommendations?limit=3&diversity=HIGH", wantCode: http.StatusOK, wantLevel: recommend.DiversityHigh, wantLimit: 3},
		{name: "bad diversity", target: "/api/v1/students/1/recommendations?diversity=extreme", wantCode: http.StatusBadRequest, wantError: ErrCodeValidationFailed},
		{name: "limit too large", target: "/api/v1/students/1/recommendations?limit=500", wantCode: http.StatusBadRequest, wantError: ErrCodeValidationFailed},
		{name: "limit not a number", target: "/api/v1/students/1/recommendations?limit=ten", wantCode: http.StatusBadRequest, wantError: ErrCodeValidationFailed},
		{name: "bad student id", target: "/api/v1/students/abc/recommendations", wantCode: http.StatusBadRequest, wantError: ErrCodeBadRequest},
		{name: "unknown student", target: "/api/v1/students/404/recommendations", wantCode: http.StatusNotFound, wantError: ErrCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			env := newTestEnv(t, nil, nil)
			rec, resp := env.do(t, http.MethodGet, tt.target, "")

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantError != "" {
				if resp.Success || resp.Error == nil || resp.Error.Code != tt.wantError {
					t.Fatalf("error = %+v, want code %s", resp.Error, tt.wantError)
				}
				return
			}
			if !resp.Success || resp.Meta == nil || resp.Meta.Count == nil || *resp.Meta.Count != 2 {
				t.Fatalf("unexpected envelope: %+v", resp)
			}
			if env.rec.lastLevel != tt.wantLevel || env.rec.lastLimit != tt.wantLimit {
				t.Errorf("called with level %q limit %d, want %q %d",
					env.rec.lastLevel, env.rec.lastLimit, tt.wantLevel, tt.wantLimit)
			}
		})
	}
}

func TestRecommendationsTimeout(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, func(c *MiddlewareConfig) { c.RequestTimeout = 20 * time.Millisecond }, nil)
	env.rec.block = true

	rec, resp := env.do(t, http.MethodGet, "/api/v1/students/1/recommendations", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if resp.Error == nil || resp.Error.Code != ErrCodeTimeout {
		t.Errorf("error = %+v, want TIMEOUT", resp.Error)
	}
}

func TestInternalErrorDoesNotLeak(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil, nil)
	env.rec.err = errors.New("duckdb: connection reset by peer")

	rec, resp := env.do(t, http.MethodGet, "/api/v1/students/1/recommendations", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "duckdb") {
		t.Errorf("internal error leaked: %s", rec.Body.String())
	}
	if resp.Error == nil || resp.Error.Code != ErrCodeInternalError {
		t.Errorf("error = %+v", resp.Error)
	}
}

func TestInitialRecommendations(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil, nil)

	rec, resp := env.do(t, http.MethodGet, "/api/v1/students/7/recommendations/initial?limit=2", "")
	if rec.Code != http.StatusOK || *resp.Meta.Count != 1 {
		t.Fatalf("status = %d count = %v", rec.Code, resp.Meta.Count)
	}

	rec, resp = env.do(t, http.MethodGet, "/api/v1/students/404/recommendations/initial", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unknown student status = %d, want 200", rec.Code)
	}
	if *resp.Meta.Count != 0 {
		t.Errorf("unknown student count = %d, want 0", *resp.Meta.Count)
	}
}

func TestExplanation(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil, nil)

	rec, resp := env.do(t, http.MethodGet, "/api/v1/students/1/societies/2/explanation", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	data, _ := resp.Data.(map[string]any)
	if data["type"] != string(recommend.ExplanationCategoryMatch) {
		t.Errorf("data = %v", resp.Data)
	}

	rec, _ = env.do(t, http.MethodGet, "/api/v1/students/1/societies/404/explanation", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown society status = %d, want 404", rec.Code)
	}
}

func TestPopularSocieties(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil, nil)

	_, resp := env.do(t, http.MethodGet, "/api/v1/societies/popular?limit=5&recent_boost=true", "")
	list, _ := resp.Data.([]any)
	if len(list) != 1 {
		t.Fatalf("data = %v", resp.Data)
	}
	if name := list[0].(map[string]any)["name"]; name != "Robotics Society" {
		t.Errorf("recent boost not forwarded, got %v", name)
	}
	if env.rec.lastLimit != 5 {
		t.Errorf("limit = %d, want 5", env.rec.lastLimit)
	}

	rec, _ := env.do(t, http.MethodGet, "/api/v1/societies/popular?recent_boost=maybe", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad recent_boost status = %d, want 400", rec.Code)
	}
}

func TestRecordFeedback(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{name: "rating", body: `{"student_id":1,"society_id":2,"feedback_type":"rating","value":4}`, wantCode: http.StatusCreated},
		{name: "join without value", body: `{"student_id":1,"society_id":2,"feedback_type":"join"}`, wantCode: http.StatusCreated},
		{name: "unknown type", body: `{"student_id":1,"society_id":2,"feedback_type":"like"}`, wantCode: http.StatusBadRequest},
		{name: "value out of range", body: `{"student_id":1,"society_id":2,"feedback_type":"rating","value":9}`, wantCode: http.StatusBadRequest},
		{name: "missing student", body: `{"society_id":2,"feedback_type":"click"}`, wantCode: http.StatusBadRequest},
		{name: "unknown field", body: `{"student_id":1,"society_id":2,"feedback_type":"click","extra":1}`, wantCode: http.StatusBadRequest},
		{name: "malformed", body: `{"student_id":`, wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			env := newTestEnv(t, nil, nil)
			rec, resp := env.do(t, http.MethodPost, "/api/v1/feedback", tt.body)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantCode != http.StatusCreated {
				if len(env.fb.inputs) != 0 {
					t.Errorf("rejected request reached the processor")
				}
				return
			}
			data, _ := resp.Data.(map[string]any)
			if data["event_id"] != "evt-1" || data["recorded"] != true {
				t.Errorf("data = %v", resp.Data)
			}
			if len(env.fb.inputs) != 1 || env.fb.inputs[0].StudentID != 1 {
				t.Errorf("inputs = %+v", env.fb.inputs)
			}
		})
	}
}

func TestRecordFeedbackProcessorRejectsType(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil, nil)
	env.fb.err = feedback.ErrUnknownType

	rec, resp := env.do(t, http.MethodPost, "/api/v1/feedback", `{"student_id":1,"society_id":2,"feedback_type":"click"}`)
	if rec.Code != http.StatusBadRequest || resp.Error.Code != ErrCodeValidationFailed {
		t.Fatalf("status = %d error = %+v", rec.Code, resp.Error)
	}
}

func TestPreferences(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil, nil)
	rec, resp := env.do(t, http.MethodGet, "/api/v1/students/1/preferences", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	data, _ := resp.Data.(map[string]any)
	societies, _ := data["societies"].(map[string]any)
	if societies["3"] != 0.6 {
		t.Errorf("societies = %v", data["societies"])
	}
}

func TestRefitCorpus(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil, nil)
	rec, _ := env.do(t, http.MethodPost, "/api/v1/admin/corpus/refit", "")
	if rec.Code != http.StatusOK || env.rec.refits != 1 {
		t.Fatalf("status = %d refits = %d", rec.Code, env.rec.refits)
	}

	rec, _ = env.do(t, http.MethodGet, "/api/v1/admin/corpus/refit", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET status = %d, want 405", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		db       Pinger
		target   string
		wantCode int
	}{
		{name: "live", target: "/api/v1/health/live", wantCode: http.StatusOK},
		{name: "ready", db: fakePinger{}, target: "/api/v1/health/ready", wantCode: http.StatusOK},
		{name: "ready without db", target: "/api/v1/health/ready", wantCode: http.StatusOK},
		{name: "not ready", db: fakePinger{err: errors.New("closed")}, target: "/api/v1/health/ready", wantCode: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			env := newTestEnv(t, nil, tt.db)
			rec, _ := env.do(t, http.MethodGet, tt.target, "")
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
		})
	}
}

func TestRequestIDPropagation(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil)
	req.Header.Set("X-Request-ID", "req-abc")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "req-abc" {
		t.Errorf("response header = %q, want req-abc", got)
	}
	var resp APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Meta.RequestID != "req-abc" {
		t.Errorf("meta.request_id = %q", resp.Meta.RequestID)
	}

	rec, _ = env.do(t, http.MethodGet, "/api/v1/health/live", "")
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("request ID not generated")
	}
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, func(c *MiddlewareConfig) {
		c.RateLimitDisabled = false
		c.RateLimitRequests = 2
		c.RateLimitWindow = time.Minute
	}, nil)

	for i := 0; i < 2; i++ {
		if rec, _ := env.do(t, http.MethodGet, "/api/v1/societies/popular", ""); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, rec.Code)
		}
	}
	rec, resp := env.do(t, http.MethodGet, "/api/v1/societies/popular", "")
	if rec.Code != http.StatusTooManyRequests || resp.Error.Code != ErrCodeTooManyRequests {
		t.Fatalf("status = %d error = %+v", rec.Code, resp.Error)
	}

	// Health stays outside the limiter.
	if rec, _ := env.do(t, http.MethodGet, "/api/v1/health/live", ""); rec.Code != http.StatusOK {
		t.Errorf("health status = %d", rec.Code)
	}
}

func TestNotFoundEnvelope(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil, nil)
	rec, resp := env.do(t, http.MethodGet, "/api/v2/nothing", "")
	if rec.Code != http.StatusNotFound || resp.Error == nil || resp.Error.Code != ErrCodeNotFound {
		t.Errorf("status = %d resp = %+v", rec.Code, resp)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil, nil)
	env.do(t, http.MethodGet, "/api/v1/societies/popular", "")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "societyrec_") {
		t.Error("metrics output has no societyrec series")
	}
}

func TestCompressedResponse(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/societies/popular", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get("Content-Encoding") != "gzip" {
		t.Error("API response not compressed")
	}
}
