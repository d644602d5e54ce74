package main

import (
	"custclean/internal/cleaning/handler"
	"custclean/internal/cleaning/metrics"
	"custclean/internal/cleaning/publisher"
	"custclean/internal/cleaning/repository"
	"custclean/internal/cleaning/service"
	"custclean/internal/cleaning/validator"
	"custclean/pkg/app"
	"custclean/pkg/config"
	"custclean/pkg/kafka"
	kafka_config "custclean/pkg/kafka/config"
	kafka_middleware "custclean/pkg/kafka/middleware"
)

const ServiceName = "cleaner"

func main() {
	cfg := config.Load(ServiceName)
	if cfg.PersistRuns {
		cfg.SetMongo()
	}

	cfg.Log.Info("Starting Cleaner service")
	serverApp := app.NewApplication(cfg)
	serverApp.OnShutdown(cfg.GracefulShutdown)

	var recordPublisher publisher.RecordPublisher
	if cfg.PublishRecords {
		producer, producerMetrics := initProducer(cfg)
		serverApp.OnShutdown(func() {
			if producerMetrics != nil {
				cfg.Log.Info("Kafka producer metrics", producerMetrics.Snapshot().LogValues()...)
			}
			if err := producer.Close(); err != nil {
				cfg.Log.Error("Failed to close kafka producer", "error", err)
			}
		})
		recordPublisher = publisher.NewKafkaRecordPublisher(producer, ServiceName)
	}

	runService := initServices(cfg, recordPublisher)
	if cfg.MetricsEnabled {
		collector := metrics.NewCollector()
		runService = service.NewInstrumentedRunService(runService, collector)
		serverApp.SetMetricsHandler(collector.Handler())
	}
	serverApp.SetApp(handler.NewCleanHandler(runService, cfg.Log))
	serverApp.Run()
}

func initProducer(cfg *config.Config) (*kafka.Producer, *kafka_middleware.Metrics) {
	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.KafkaCleanedTopic, "", cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create kafka producer", "error", err)
	}

	if !kafkaCfg.EnableMiddleware {
		return producer, nil
	}
	metrics := kafka_middleware.NewMetrics()
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	producer.Use(metrics.ProducerMiddleware())
	return producer, metrics
}

func initServices(cfg *config.Config, recordPublisher publisher.RecordPublisher) service.RunService {
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

	cfg.Log.Info("Cleaning service initialized",
		"persist_runs", cfg.PersistRuns,
		"publish_records", cfg.PublishRecords,
		"database", cfg.MongoDatabaseName,
	)
	return runService
}
