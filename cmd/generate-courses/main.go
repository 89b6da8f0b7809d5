// cmd/generate-courses/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"skillforge/internal/common/aws"
	"skillforge/internal/common/config"
	"skillforge/internal/common/database"
	"skillforge/internal/common/logger"
	"skillforge/internal/common/observability"
	"skillforge/internal/models"
	"skillforge/internal/notify"
	buildcourse "skillforge/internal/pipeline/build-course"
	calculategaps "skillforge/internal/pipeline/calculate-gaps"
	"skillforge/internal/pipeline/driver"
	"skillforge/internal/store"
)

func main() {
	employees := flag.String("employees", "", "comma-separated employee ids; empty means every employee with a target position")
	metricsAddr := flag.String("metrics-addr", "", "optional address to serve /metrics on during the run")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	obs := observability.New("generate-courses")
	defer obs.Shutdown()

	if *metricsAddr != "" {
		go func() {
			http.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(*metricsAddr, nil); err != nil {
				zapLog.Warn("metrics server stopped", zap.Error(err))
			}
		}()
	}

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

	st := store.New(pg.DB, log)

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

	var notifier driver.Notifier
	if cfg.Notifications.Email.Enabled || cfg.Notifications.SMS.Enabled {
		sesClient, err := aws.NewSESClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("SES client init failed", zap.Error(err))
		}
		snsClient, err := aws.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("SNS client init failed", zap.Error(err))
		}
		notifier = notify.New(&notify.Config{
			EmailEnabled: cfg.Notifications.Email.Enabled,
			SMSEnabled:   cfg.Notifications.SMS.Enabled,
			FromEmail:    cfg.Notifications.Email.FromEmail,
			SMSPriority:  models.CoursePriority(cfg.Notifications.SMS.PriorityThreshold),
		}, sesClient, snsClient, log)
	}

	d := driver.New(&driver.Config{
		Concurrency:  cfg.Batch.Concurrency,
		DelayBetween: config.GetDuration(cfg.Batch.DelayMillis),
		RunTimeout:   config.GetDuration(cfg.Batch.StageTimeout),
	}, nil, nil, nil, gapsHandler, courseHandler, st, notifier, log)

	employeeIDs, err := resolveEmployees(ctx, st, *employees)
	if err != nil {
		zapLog.Fatal("employee listing failed", zap.Error(err))
	}
	if len(employeeIDs) == 0 {
		zapLog.Info("no employees to process")
		return
	}

	summary := d.RunBatch(ctx, employeeIDs)

	zapLog.Info("course generation finished",
		zap.Int("processed", summary.Processed),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
		zap.Int("courses", summary.Courses),
	)
	for _, result := range summary.Results {
		if result.Err != nil {
			zapLog.Warn("employee run failed",
				zap.String("employeeId", result.EmployeeID),
				zap.Error(result.Err),
			)
		}
	}
	if summary.Failed > 0 && summary.Succeeded == 0 {
		os.Exit(1)
	}
}

func resolveEmployees(ctx context.Context, st *store.Store, flagValue string) ([]string, error) {
	if flagValue != "" {
		var ids []string
		for _, id := range strings.Split(flagValue, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
		return ids, nil
	}
	employees, err := st.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(employees))
	for _, emp := range employees {
		ids = append(ids, emp.ID)
	}
	return ids, nil
}
