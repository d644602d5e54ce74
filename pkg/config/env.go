package config

const (
	EnvFile = "ENV_FILE"

	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort      = "PORT"
	EnvLogLevel  = "LOG_LEVEL"
	EnvLogFormat = "LOG_FORMAT"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvMaxTableRows     = "MAX_TABLE_ROWS"
	EnvVehicleClassMode = "VEHICLE_CLASS_MODE"
	EnvPersistRuns      = "PERSIST_RUNS"
	EnvPublishRecords   = "PUBLISH_RECORDS"
	EnvMetricsEnabled   = "METRICS_ENABLED"

	EnvKafkaCleanedTopic = "KAFKA_CLEANED_TOPIC"
	EnvKafkaRawTopic     = "KAFKA_RAW_TOPIC"
	EnvKafkaDLQTopic     = "KAFKA_DLQ_TOPIC"
	EnvKafkaGroupID      = "KAFKA_GROUP_ID"
)
