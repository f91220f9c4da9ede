// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

package main

import (
	"testing"

	"github.com/tomtom215/societyrec/internal/config"
)

func TestParseFlags(t *testing.T) {
	t.Parallel()

	evalCfg := config.EvaluationConfig{ReportDir: "out", K: 5, MinMemberships: 2, Seed: 42}

	tests := []struct {
		name    string
		args    []string
		wantErr bool
		check   func(t *testing.T, o options)
	}{
		{
			name: "defaults from config",
			args: nil,
			check: func(t *testing.T, o options) {
				if o.mode != modeAll || o.k != 5 || o.minMemberships != 2 || o.seed != 42 || o.reportDir != "out" {
					t.Errorf("options = %+v", o)
				}
			},
		},
		{
			name: "overrides",
			args: []string{"-mode", "cold_start", "-k", "10", "-students", "50", "-level", "high", "-report-dir", ""},
			check: func(t *testing.T, o options) {
				if o.mode != modeColdStart || o.k != 10 || o.students != 50 || o.level != "high" || o.reportDir != "" {
					t.Errorf("options = %+v", o)
				}
			},
		},
		{name: "unknown mode", args: []string{"-mode", "offline"}, wantErr: true},
		{name: "zero k", args: []string{"-k", "0"}, wantErr: true},
		{name: "bad level", args: []string{"-level", "max"}, wantErr: true},
		{name: "unknown flag", args: []string{"-verbose"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			o, err := parseFlags(tt.args, &evalCfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, o)
			}
		})
	}
}

func TestSplitMetrics(t *testing.T) {
	t.Parallel()

	if got := splitMetrics("  "); got != nil {
		t.Errorf("blank = %v, want nil", got)
	}
	if got := splitMetrics("precision,recall"); len(got) != 2 {
		t.Errorf("got %v", got)
	}
}
