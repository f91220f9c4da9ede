// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

package evaluation

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
)

// reportTimeLayout is the timestamp suffix of report file names.
const reportTimeLayout = "20060102_150405"

// writeReport writes v as indented JSON to <ReportDir>/<kind>_<time>.json
// and returns the path. Failures are logged and yield an empty path.
func (e *Evaluator) writeReport(kind string, at time.Time, v any) string {
	if e.cfg.ReportDir == "" {
		return ""
	}

	path := filepath.Join(e.cfg.ReportDir, fmt.Sprintf("%s_%s.json", kind, at.Format(reportTimeLayout)))
	if err := writeJSON(path, v); err != nil {
		e.logger.Warn().Err(err).Str("path", path).Msg("failed to write evaluation report")
		return ""
	}

	e.logger.Info().Str("path", path).Msg("evaluation report written")
	return path
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
