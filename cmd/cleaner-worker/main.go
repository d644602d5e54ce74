package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"custclean/internal/cleaning/publisher"
	"custclean/internal/cleaning/repository"
	"custclean/internal/cleaning/service"
	"custclean/internal/cleaning/validator"
	"custclean/internal/cleaning/worker"
	"custclean/pkg/config"
	"custclean/pkg/kafka"
	kafka_config "custclean/pkg/kafka/config"
	kafka_middleware "custclean/pkg/kafka/middleware"
)

const ServiceName = "cleaner-worker"

func main() {
	cfg := config.Load(ServiceName)
	if cfg.PersistRuns {
		cfg.SetMongo()
	}
	defer cfg.GracefulShutdown()

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	var metrics *kafka_middleware.Metrics
	if kafkaCfg.EnableMiddleware {
		metrics = kafka_middleware.NewMetrics()
	}

	var recordPublisher publisher.RecordPublisher
	if cfg.PublishRecords {
		producer, err := kafka.NewProducer(kafkaCfg, cfg.KafkaCleanedTopic, "", cfg.Log)
		if err != nil {
			cfg.Log.Fatal("Failed to create kafka producer", "error", err)
		}
		defer producer.Close()
		if metrics != nil {
			producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
			producer.Use(metrics.ProducerMiddleware())
		}
		recordPublisher = publisher.NewKafkaRecordPublisher(producer, ServiceName)
	}

	var runRepo repository.RunRepository
	if cfg.PersistRuns {
		runRepo = repository.NewMongoRunRepository(cfg)
	}
	runService := service.NewRunService(
		service.NewCleaningService(cfg, nil),
		validator.NewCleanRequestValidator(cfg.MaxTableRows),
		runRepo,
		recordPublisher,
		cfg,
	)

	tableWorker := worker.NewTableWorker(runService, cfg.Log)
	consumer, err := kafka.NewConsumer(kafkaCfg, cfg.KafkaRawTopic, cfg.KafkaGroupID, cfg.KafkaDLQTopic, tableWorker.Handle, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create kafka consumer", "error", err)
	}
	if metrics != nil {
		consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
		consumer.Use(metrics.ConsumerMiddleware())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg.Log.Info("Starting Cleaner worker",
		"topic", cfg.KafkaRawTopic,
		"group_id", cfg.KafkaGroupID,
		"dlq_topic", cfg.KafkaDLQTopic,
	)
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Kafka consumer stopped", "error", err)
	}

	cfg.Log.Info("Shutdown signal received, closing consumer")
	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close kafka consumer", "error", err)
	}
	if metrics != nil {
		cfg.Log.Info("Kafka worker metrics", metrics.Snapshot().LogValues()...)
	}
}
