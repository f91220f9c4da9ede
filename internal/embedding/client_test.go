// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

package embedding

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

func newEmbeddingServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(endpoint string) *Config {
	cfg := DefaultConfig()
	cfg.Endpoint = endpoint
	cfg.RequestsPerSecond = 0
	return &cfg
}

func TestNewClient_ValidatesEndpoint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		endpoint string
		wantErr  bool
	}{
		{"http://localhost:8081", false},
		{"https://embed.internal/", false},
		{"", true},
		{"localhost:8081", true},
		{"ftp://example.com", true},
	}

	for _, tt := range tests {
		_, err := NewClient(testConfig(tt.endpoint))
		if (err != nil) != tt.wantErr {
			t.Errorf("NewClient(%q) error = %v, wantErr %v", tt.endpoint, err, tt.wantErr)
		}
	}
}

func TestClient_Embed(t *testing.T) {
	t.Parallel()

	srv := newEmbeddingServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/embeddings" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		var req embeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Model != "mini" || req.Input != "chess club" {
			http.Error(w, "unexpected body", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[{"object":"embedding","index":0,"embedding":[0.1,0.2,0.3]}]}`))
	})

	cfg := testConfig(srv.URL + "/")
	cfg.Model = "mini"
	cfg.APIKey = "secret"
	client, err := NewClient(cfg)
	if err != nil {
		t.Fatal(err)
	}

	got, err := client.Embed(context.Background(), "chess club")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(got) != 3 || got[2] != 0.3 {
		t.Errorf("Embed() = %v, want [0.1 0.2 0.3]", got)
	}
}

func TestClient_EmbedErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
		target  error
	}{
		{"server error", http.StatusInternalServerError, "model not loaded", "status 500: model not loaded", nil},
		{"empty data", http.StatusOK, `{"data":[]}`, "", ErrEmptyEmbedding},
		{"empty vector", http.StatusOK, `{"data":[{"embedding":[]}]}`, "", ErrEmptyEmbedding},
		{"malformed", http.StatusOK, `{"data":`, "decode embedding response", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := newEmbeddingServer(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			client, err := NewClient(testConfig(srv.URL))
			if err != nil {
				t.Fatal(err)
			}

			_, err = client.Embed(context.Background(), "text")
			switch {
			case err == nil:
				t.Fatal("Embed() error = nil")
			case tt.target != nil && !errors.Is(err, tt.target):
				t.Errorf("Embed() error = %v, want %v", err, tt.target)
			case tt.wantErr != "" && !strings.Contains(err.Error(), tt.wantErr):
				t.Errorf("Embed() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestClient_RateLimitHonorsContext(t *testing.T) {
	t.Parallel()

	srv := newEmbeddingServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"embedding":[1]}]}`))
	})
	cfg := testConfig(srv.URL)
	cfg.RequestsPerSecond = 0.001
	cfg.Burst = 1
	client, err := NewClient(cfg)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := client.Embed(context.Background(), "first"); err != nil {
		t.Fatalf("first Embed() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := client.Embed(ctx, "second"); err == nil {
		t.Error("second Embed() error = nil, want rate limit wait to fail")
	}
}

func TestNew_ComposesStack(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := newEmbeddingServer(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"data":[{"embedding":[0.5,0.5]}]}`))
	})

	e, err := New(testConfig(srv.URL), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if _, err := e.Embed(context.Background(), "same text"); err != nil {
			t.Fatal(err)
		}
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("server calls = %d, want 1 with caching", n)
	}

	if _, err := New(testConfig("not a url"), zerolog.Nop()); err == nil {
		t.Error("New() with invalid endpoint: error = nil")
	}
}
