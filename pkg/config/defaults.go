package config

import "time"

const (
	DefaultEnvFile = ".env"

	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "custclean"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort      = "8080"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxRequestSize = 10 * 1024 * 1024 // 10MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultMaxTableRows     = 100000
	DefaultVehicleClassMode = "literal"
	DefaultPersistRuns      = true
	DefaultPublishRecords   = false
	DefaultMetricsEnabled   = true

	DefaultKafkaCleanedTopic = "customers.cleaned"
	DefaultKafkaRawTopic     = "customers.raw"
	DefaultKafkaDLQTopic     = "customers.raw.dlq"
	DefaultKafkaGroupID      = "custclean-worker"
)
