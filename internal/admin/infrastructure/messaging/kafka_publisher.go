// Package messaging adapts the Kafka producer to the staff event port.
package messaging

import (
	"context"

	"github.com/wyfcoding/shopbackoffice/internal/admin/domain"
	"github.com/wyfcoding/shopbackoffice/pkg/logger"
	"github.com/wyfcoding/shopbackoffice/pkg/mq"
)

type kafkaPublisher struct{ producer *mq.KafkaProducer }

func NewKafkaPublisher(producer *mq.KafkaProducer) domain.EventPublisher {
	return &kafkaPublisher{producer: producer}
}

func (p *kafkaPublisher) Publish(ctx context.Context, topic string, key string, event any) error {
	return p.producer.SendMessage(ctx, topic, key, event)
}

// logPublisher stands in for Kafka in local development.
type logPublisher struct{}

func NewLogPublisher() domain.EventPublisher {
	return logPublisher{}
}

func (logPublisher) Publish(ctx context.Context, topic string, key string, event any) error {
	logger.Debug(ctx, "domain event", "topic", topic, "key", key, "event", event)
	return nil
}
