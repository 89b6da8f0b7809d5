// cmd/analyze-cv/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"skillforge/internal/common/config"
	"skillforge/internal/common/database"
	"skillforge/internal/common/logger"
	"skillforge/internal/common/observability"
	buildcourse "skillforge/internal/pipeline/build-course"
	calculategaps "skillforge/internal/pipeline/calculate-gaps"
	"skillforge/internal/pipeline/driver"
	extractskills "skillforge/internal/pipeline/extract-skills"
	extracttext "skillforge/internal/pipeline/extract-text"
	maptaxonomy "skillforge/internal/pipeline/map-taxonomy"
	"skillforge/internal/store"
)

func main() {
	employeeID := flag.String("employee", "", "employee id to analyze")
	cvPath := flag.String("cv", "", "path to the CV document (.txt or .docx)")
	flag.Parse()

	if *employeeID == "" || *cvPath == "" {
		fmt.Fprintln(os.Stderr, "usage: analyze-cv -employee <id> -cv <path>")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	obs := observability.New("analyze-cv")
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		zapLog.Fatal("postgres connection failed", zap.Error(err))
	}
	defer pg.Close()
	if err := pg.Ping(ctx); err != nil {
		zapLog.Fatal("postgres ping failed", zap.Error(err))
	}

	esClient, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	if err != nil {
		zapLog.Fatal("elasticsearch connection failed", zap.Error(err))
	}

	rdb, err := database.NewRedis(cfg.Database.Redis)
	if err != nil {
		zapLog.Fatal("redis connection failed", zap.Error(err))
	}
	defer rdb.Close()

	st := store.New(pg.DB, log)

	textHandler := extracttext.NewHandler(extracttext.DefaultConfig(), log)

	skillsHandler, err := extractskills.NewHandler(&extractskills.Config{
		BaseURL:     cfg.LLM.BaseURL,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     config.GetDuration(cfg.LLM.Timeout),
		MaxRetries:  2,
	}, log)
	if err != nil {
		zapLog.Fatal("skill extraction init failed", zap.Error(err))
	}

	taxonomyHandler := maptaxonomy.NewHandler(&maptaxonomy.Config{
		Index:         cfg.Taxonomy.Index,
		ScoreNorm:     cfg.Taxonomy.ScoreNorm,
		FallbackScore: cfg.Taxonomy.FallbackScore,
		CacheTTL:      config.GetDuration(cfg.Taxonomy.CacheTTLMinutes * 60 * 1000),
		SearchTimeout: config.GetDuration(cfg.Taxonomy.SearchTimeout),
	}, esClient.Client, rdb.Client, log)

	gapsHandler := calculategaps.NewHandler(&calculategaps.Config{
		Strategy:            calculategaps.MatchStrategy(cfg.Analysis.MatchStrategy),
		MinorMaxGap:         cfg.Analysis.MinorMaxGap,
		ModerateMaxGap:      cfg.Analysis.ModerateMaxGap,
		MandatoryGapPenalty: cfg.Analysis.MandatoryGapPenalty,
		OptionalGapPenalty:  cfg.Analysis.OptionalGapPenalty,
	}, st, log)

	courseHandler := buildcourse.NewHandler(&buildcourse.Config{
		MaxGaps:          cfg.Course.MaxGaps,
		MaxFocusAreas:    cfg.Course.MaxFocusAreas,
		MaxKeyTools:      cfg.Course.MaxKeyTools,
		HoursPerGapLevel: cfg.Course.HoursPerGapLevel,
		HoursPerWeek:     cfg.Course.HoursPerWeek,
		MaxWeeks:         cfg.Course.MaxWeeks,
		CriticalForHigh:  cfg.Course.CriticalForHigh,
	}, log)

	d := driver.New(&driver.Config{
		Concurrency: 1,
		RunTimeout:  config.GetDuration(cfg.Batch.StageTimeout),
	}, textHandler, skillsHandler, taxonomyHandler, gapsHandler, courseHandler, st, nil, log)

	result := d.AnalyzeCV(ctx, driver.AnalyzeRequest{
		EmployeeID:   *employeeID,
		DocumentPath: *cvPath,
	})
	if result.Err != nil {
		zapLog.Fatal("CV analysis failed", zap.String("employeeId", *employeeID), zap.Error(result.Err))
	}

	zapLog.Info("CV analysis complete", zap.String("employeeId", *employeeID))
}
