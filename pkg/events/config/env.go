package eventsconfig

const (
	EnvBrokers  = "KAFKA_BROKERS"
	EnvTopic    = "KAFKA_EVENTS_TOPIC"
	EnvDLQTopic = "KAFKA_EVENTS_DLQ_TOPIC"

	EnvProducerMaxAttempts  = "KAFKA_PRODUCER_MAX_ATTEMPTS"
	EnvProducerBatchTimeout = "KAFKA_PRODUCER_BATCH_TIMEOUT"
	EnvProducerRequireAcks  = "KAFKA_PRODUCER_REQUIRE_ACKS"
	EnvProducerCompression  = "KAFKA_PRODUCER_COMPRESSION"
	EnvProducerAsync        = "KAFKA_PRODUCER_ASYNC"
)
