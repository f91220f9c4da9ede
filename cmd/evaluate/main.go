// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

// Command evaluate runs offline quality evaluations of the recommender
// against the configured catalog and prints the reports as JSON.
//
//	evaluate -mode all -k 5 -students 100 -metrics precision,diversity
//
// Modes: recommender (holdout precision, recall, diversity, coverage,
// serendipity, category balance), cold_start (cold start against
// popularity), tradeoff (precision and diversity per diversity level) and
// all. Reports are also written to EVALUATION_REPORT_DIR unless
// -report-dir is set to "".
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/societyrec/internal/app"
	"github.com/tomtom215/societyrec/internal/config"
	"github.com/tomtom215/societyrec/internal/database"
	"github.com/tomtom215/societyrec/internal/logging"
	"github.com/tomtom215/societyrec/internal/recommend"
	"github.com/tomtom215/societyrec/internal/recommend/evaluation"
)

const (
	modeRecommender = "recommender"
	modeColdStart   = "cold_start"
	modeTradeoff    = "tradeoff"
	modeAll         = "all"
)

type options struct {
	mode           string
	k              int
	students       int
	minMemberships int
	metrics        string
	level          string
	reportDir      string
	seed           int64
	feedbackStore  string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		logging.Error().Err(err).Msg("Evaluation failed")
		os.Exit(1)
	}
}

func parseFlags(args []string, evalCfg *config.EvaluationConfig) (options, error) {
	var opts options
	fs := flag.NewFlagSet("evaluate", flag.ContinueOnError)
	fs.StringVar(&opts.mode, "mode", modeAll, "recommender, cold_start, tradeoff or all")
	fs.IntVar(&opts.k, "k", evalCfg.K, "recommendation list size")
	fs.IntVar(&opts.students, "students", 0, "sample at most this many students (0 = all)")
	fs.IntVar(&opts.minMemberships, "min-memberships", evalCfg.MinMemberships, "memberships a holdout student needs")
	fs.StringVar(&opts.metrics, "metrics", "", "comma-separated metrics (default all)")
	fs.StringVar(&opts.level, "level", string(recommend.DiversityBalanced), "diversity level for the recommender mode")
	fs.StringVar(&opts.reportDir, "report-dir", evalCfg.ReportDir, "directory for JSON reports (empty disables)")
	fs.Int64Var(&opts.seed, "seed", evalCfg.Seed, "sampling seed")
	fs.StringVar(&opts.feedbackStore, "feedback-store", "memory", "feedback store to read: memory or badger")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	switch opts.mode {
	case modeRecommender, modeColdStart, modeTradeoff, modeAll:
	default:
		return opts, fmt.Errorf("unknown mode %q", opts.mode)
	}
	if opts.k <= 0 {
		return opts, errors.New("-k must be positive")
	}
	if _, err := recommend.ParseDiversityLevel(opts.level); err != nil {
		return opts, err
	}
	return opts, nil
}

func splitMetrics(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func run(ctx context.Context, args []string, out io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Timestamp: true,
		Output:    os.Stderr,
	})
	logger := logging.Logger()

	opts, err := parseFlags(args, &cfg.Evaluation)
	if err != nil {
		return err
	}
	metrics, err := evaluation.ParseMetrics(splitMetrics(opts.metrics))
	if err != nil {
		return err
	}

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error().Err(err).Msg("Error closing database")
		}
	}()

	// Evaluation refits in memory and never writes models.
	cfg.Feedback.Store = opts.feedbackStore
	cfg.Recommend.ModelPath = ""
	cfg.Recommend.CacheTTL = 0

	engine, err := app.NewEngine(cfg, db, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := engine.Close(); err != nil {
			logger.Error().Err(err).Msg("Error closing engine")
		}
	}()
	if err := engine.Recommender.UpdateSimilarityModel(ctx); err != nil {
		logger.Warn().Err(err).Msg("Corpus fit failed, similarity falls back to token overlap")
	}

	evaluator := evaluation.NewEvaluator(evaluation.Config{
		ReportDir:      opts.reportDir,
		K:              opts.k,
		MinMemberships: opts.minMemberships,
		Seed:           opts.seed,
	}, db, engine.Recommender, engine.ColdStart, engine.Recommender, logger)

	return evaluate(ctx, evaluator, &opts, metrics, out, logger)
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func evaluate(ctx context.Context, ev *evaluation.Evaluator, opts *options, metrics []evaluation.Metric, out io.Writer, logger zerolog.Logger) error {
	base := evaluation.Options{
		K:              opts.k,
		MaxStudents:    opts.students,
		MinMemberships: opts.minMemberships,
		Metrics:        metrics,
		Level:          recommend.DiversityLevel(opts.level),
	}

	reports := make(map[string]any, 3)
	if opts.mode == modeRecommender || opts.mode == modeAll {
		r, err := ev.EvaluateRecommender(ctx, base)
		if err != nil {
			return fmt.Errorf("recommender evaluation: %w", err)
		}
		logReportPath(logger, evaluation.KindRecommender, r.Path)
		reports[evaluation.KindRecommender] = r
	}
	if opts.mode == modeColdStart || opts.mode == modeAll {
		r, err := ev.EvaluateColdStart(ctx, base)
		if err != nil {
			return fmt.Errorf("cold start evaluation: %w", err)
		}
		logReportPath(logger, evaluation.KindColdStart, r.Path)
		reports[evaluation.KindColdStart] = r
	}
	if opts.mode == modeTradeoff || opts.mode == modeAll {
		r, err := ev.EvaluateDiversityVsRelevance(ctx, base)
		if err != nil {
			return fmt.Errorf("trade-off evaluation: %w", err)
		}
		logReportPath(logger, evaluation.KindTradeoff, r.Path)
		reports[evaluation.KindTradeoff] = r
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(reports)
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func logReportPath(logger zerolog.Logger, kind, path string) {
	if path == "" {
		return
	}
	logger.Info().Str("kind", kind).Str("path", path).Msg("Report written")
}
