package config

import (
	"strings"

	"github.com/quizdash/quiz-service/internal/events"
)

// EventConfig controls the kafka event publisher.
type EventConfig struct {
	Enabled bool
	Brokers []string
}

func LoadEventConfig() EventConfig {
	brokers := getEnv("KAFKA_BROKERS", "localhost:9092")
	return EventConfig{
		Enabled: getEnvBool("EVENTS_ENABLED", false),
		Brokers: strings.Split(brokers, ","),
	}
}

// CreateEventPublisher builds the configured publisher. With eventing
// disabled the service runs against a no-op publisher, so callers never
// branch on the flag themselves.
func (c EventConfig) CreateEventPublisher() (events.EventPublisher, error) {
	if !c.Enabled {
		return events.NoopEventPublisher{}, nil
	}
	return events.NewKafkaEventPublisher(c.Brokers)
}
