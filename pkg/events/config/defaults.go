package eventsconfig

import "time"

const (
	DefaultBrokers = "localhost:9092"

	DefaultTopic    = "rental-lifecycle"
	DefaultDLQTopic = "rental-lifecycle-dlq"

	DefaultProducerMaxAttempts  = 3
	DefaultProducerBatchTimeout = 100 * time.Millisecond
	DefaultProducerRequireAcks  = -1
	DefaultProducerCompression  = "snappy"
	DefaultProducerAsync        = false
)
