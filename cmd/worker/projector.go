package worker

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmehdipour/wifi-billing/internal/db"
	"github.com/jmehdipour/wifi-billing/internal/kafka"
	"github.com/jmehdipour/wifi-billing/internal/logger"
	"github.com/jmehdipour/wifi-billing/internal/model"
	"github.com/jmehdipour/wifi-billing/internal/repository"
	"github.com/jmehdipour/wifi-billing/internal/worker"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var projectorCmd = &cobra.Command{
	Use:   "projector",
	Short: "Project billing events from Kafka into ClickHouse",
	RunE:  runProjector,
}

func runProjector(cmd *cobra.Command, args []string) error {
	// 1) load config
	cfg, err := setup(cmd)
	if err != nil {
		return err
	}

	// 2) ClickHouse connection
	chDB, err := db.NewClickHouseConnection(cfg.ClickHouse.DSN, db.PoolOptsFrom(cfg.ClickHouse))
	if err != nil {
		return fmt.Errorf("clickhouse connect: %w", err)
	}
	defer chDB.Close()

	// 3) kafka consumer
	topic := cfg.Kafka.Topic
	if topic == "" {
		topic = model.EventsTopic
	}
	groupID := cfg.Kafka.GroupID
	if groupID == "" {
		groupID = "billing-projector"
	}

	consumer := kafka.NewConsumerFromConfig(kafka.Config{
		Brokers:        cfg.Kafka.Brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       cfg.Kafka.MinBytes,
		MaxBytes:       cfg.Kafka.MaxBytes,
		CommitInterval: time.Duration(cfg.Kafka.CommitInterval) * time.Millisecond,
	})
	defer consumer.Close()

	w := worker.NewProjector(consumer, repository.NewCHPaymentsRepository(chDB))

	// tune knobs
	if cfg.Projector.BatchSize > 0 {
		w.BatchSize = cfg.Projector.BatchSize
	}
	if cfg.Projector.BatchWait > 0 {
		w.BatchWait = cfg.Projector.BatchWait
	}

	// 4) graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Log.Info("projector started",
		zap.String("topic", topic),
		zap.String("group", groupID),
		zap.Int("batch_size", w.BatchSize),
		zap.Duration("batch_wait", w.BatchWait),
	)

	return w.Run(ctx)
}
