package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/wattwise/wattwise/internal/metrics"
	"github.com/wattwise/wattwise/internal/publisher"
	"github.com/wattwise/wattwise/internal/report"
	"github.com/wattwise/wattwise/pkg/models"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the scheduled publish-and-digest daemon",
	Long: `Runs in the foreground on the configured cron schedule (default daily at
8am). Each run publishes pending usage records to the configured targets
and logs a usage digest. Prometheus metrics are served on the configured
listen address.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

// watchStore is the slice of the database the publish loop touches.
type watchStore interface {
	ListUnpublishedDailyUsage(userID string) ([]models.DailyUsage, error)
	MarkUsagePublished(id int) error
}

type usagePublisher interface {
	Publish(usage models.DailyUsage) error
}

type publishMetrics interface {
	RecordPublished(consumptionKWh float64, isAnomaly bool)
	RecordPublishFailure()
}

// publishPendingUsage pushes unpublished records in date order, marking
// each one published as it goes. Every failure — publish or storage —
// counts against the publish-failure metric so a stuck loop is visible.
func publishPendingUsage(store watchStore, pub usagePublisher, m publishMetrics, logger *slog.Logger, userID string) {
	pending, err := store.ListUnpublishedDailyUsage(userID)
	if err != nil {
		logger.Error("listing unpublished usage", "error", err)
		m.RecordPublishFailure()
		return
	}

	for _, u := range pending {
		if err := pub.Publish(u); err != nil {
			logger.Error("publishing usage", "date", u.Date.Format("2006-01-02"), "error", err)
			m.RecordPublishFailure()
			break
		}
		if err := store.MarkUsagePublished(u.ID); err != nil {
			logger.Error("marking usage published", "date", u.Date.Format("2006-01-02"), "error", err)
			m.RecordPublishFailure()
			break
		}
		m.RecordPublished(u.ConsumptionKWh, u.IsAnomaly)
		logger.Info("published usage", "date", u.Date.Format("2006-01-02"), "kwh", u.ConsumptionKWh, "anomaly", u.IsAnomaly)
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, userID, err := currentUser()
	if err != nil {
		return err
	}

	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	collector := metrics.NewCollector()

	var pub *publisher.Publisher
	if cfg.MQTT.Enabled || cfg.HomeAssistant.Enabled {
		pub, err = publisher.New(cfg.MQTT, cfg.GetTopicPrefix(), cfg.HomeAssistant)
		if err != nil {
			return fmt.Errorf("creating publisher: %w", err)
		}
		defer pub.Close()
	} else {
		logger.Warn("no publish target configured, watch will only log digests")
	}

	runOnce := func() {
		if pub != nil {
			publishPendingUsage(db, pub, collector, logger, userID)
		}

		history, err := db.ListDailyUsage(userID, 0)
		if err != nil {
			logger.Error("listing daily usage", "error", err)
			return
		}
		s := report.Summarize(history, time.Now())
		logger.Info("usage digest",
			"today_kwh", s.TodayKWh,
			"week_kwh", s.WeekTotalKWh,
			"week_avg_kwh", s.WeekAvgKWh,
			"trend_percent", s.TrendPercent,
			"predicted_cost", s.Prediction.PredictedCost,
		)
		collector.RecordDigestRun()
	}

	schedule := cfg.GetWatchSchedule()
	c := cron.New()
	if _, err := c.AddFunc(schedule, runOnce); err != nil {
		return fmt.Errorf("invalid watch schedule %q: %w", schedule, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	server := &http.Server{Addr: cfg.GetMetricsListen(), Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server", "error", err)
		}
	}()

	logger.Info("watch started", "schedule", schedule, "metrics", cfg.GetMetricsListen())
	runOnce()
	c.Start()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info("shutting down")
	ctx := c.Stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
	return nil
}
