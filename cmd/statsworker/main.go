// Command statsworker runs C10's periodic refresh loop: recomputing
// ctr_estimate/ctr_variance from the Beta-Bernoulli posterior and
// recalibrating position propensities from recent click events.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fntelecomllc/rankingengine/internal/config"
	"github.com/fntelecomllc/rankingengine/internal/domain/services"
	"github.com/fntelecomllc/rankingengine/internal/logging"
	"github.com/fntelecomllc/rankingengine/internal/store/postgres"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	var (
		once          = flag.Bool("once", false, "run a single refresh cycle and exit instead of looping")
		report        = flag.Bool("report", false, "print global stats and the top items by click count, then exit without running a refresh cycle")
		reportLimit   = flag.Int("report-limit", 20, "number of items to print with -report")
		intervalFlag  = flag.Int("interval-seconds", 0, "override STATS_WORKER_INTERVAL_SECONDS")
		sinceDaysFlag = flag.Int("since-days", 0, "override PROPENSITY_CALIBRATION_DAYS")
	)
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, continuing with process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *intervalFlag > 0 {
		cfg.StatsWorker.IntervalSeconds = *intervalFlag
	}
	if *sinceDaysFlag > 0 {
		cfg.StatsWorker.PropensityCalibrationDays = *sinceDaysFlag
	}

	logger := logging.NewStdLogger()

	db, err := sqlx.Connect("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatalf("connect to database: %v", err)
	}
	defer db.Close()

	statsStore := postgres.NewStatisticsStorePostgres(db)
	interactionStore := postgres.NewInteractionStorePostgres(db)
	stats := services.NewStatisticsService(db, statsStore, interactionStore, cfg.Ranking.ThompsonPriorAlpha, cfg.Ranking.ThompsonPriorBeta, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *report {
		runReport(ctx, stats, *reportLimit)
		return
	}

	if *once {
		if err := runCycle(ctx, stats, cfg.StatsWorker.PropensityCalibrationDays, logger); err != nil {
			log.Fatalf("refresh cycle: %v", err)
		}
		return
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	interval := time.Duration(cfg.StatsWorker.IntervalSeconds) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("statsworker running every %s", interval)
	if err := runCycle(ctx, stats, cfg.StatsWorker.PropensityCalibrationDays, logger); err != nil {
		logger.Error(ctx, "statsworker.cycle", err, nil)
	}

	for {
		select {
		case <-ticker.C:
			if err := runCycle(ctx, stats, cfg.StatsWorker.PropensityCalibrationDays, logger); err != nil {
				logger.Error(ctx, "statsworker.cycle", err, nil)
			}
		case <-quit:
			log.Println("statsworker shutting down")
			return
		}
	}
}

func runCycle(ctx context.Context, stats *services.StatisticsService, sinceDays int, logger logging.Logger) error {
	start := time.Now()
	updated, err := stats.UpdateCTREstimates(ctx)
	if err != nil {
		return fmt.Errorf("update ctr estimates: %w", err)
	}

	propensities, err := stats.CalibratePositionPropensities(ctx, sinceDays, 1.0)
	if err != nil {
		return fmt.Errorf("calibrate position propensities: %w", err)
	}

	logger.Info(ctx, "statsworker.cycle.complete", logging.Fields{
		"rows_updated":         updated,
		"propensity_positions": len(propensities),
		"duration_ms":          time.Since(start).Milliseconds(),
	})
	return nil
}

func runReport(ctx context.Context, stats *services.StatisticsService, limit int) {
	global, err := stats.GetGlobalStats(ctx)
	if err != nil {
		log.Fatalf("global stats: %v", err)
	}
	fmt.Printf("global: items=%d impressions=%d clicks=%d ctr=%.4f\n",
		global.TotalItems, global.TotalImpressions, global.TotalClicks, global.GlobalCTR)

	top, err := stats.GetTopItems(ctx, limit, "clicks")
	if err != nil {
		log.Fatalf("top items: %v", err)
	}
	for i, item := range top {
		fmt.Printf("%3d. %s clicks=%d impressions=%d ctr=%.4f\n", i+1, item.OutputID, item.ClickCount, item.ImpressionCount, item.CTREstimate)
	}
}
