package repository

import (
	"context"

	"CountrySwipe/internal/domain/models"
	"CountrySwipe/internal/domain/repository"
	pkgkafka "CountrySwipe/pkg/kafka"
)

// EventProducer is the part of pkg/kafka.Producer the publisher uses.
type EventProducer interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

var _ EventProducer = (*pkgkafka.Producer)(nil)

// KafkaEventPublisher writes session events keyed by session id, so one
// session's events stay ordered on a partition.
type KafkaEventPublisher struct {
	producer EventProducer
	topic    string
}

func NewKafkaEventPublisher(producer EventProducer, topic string) repository.EventPublisher {
	return &KafkaEventPublisher{producer: producer, topic: topic}
}

func (p *KafkaEventPublisher) PublishEvent(ctx context.Context, e *models.Event) error {
	if e == nil {
		return nil
	}
	return p.producer.Publish(ctx, p.topic, []byte(e.SessionID), e)
}

func (p *KafkaEventPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// NoopEventPublisher drops every event. Used when no brokers are configured.
type NoopEventPublisher struct{}

func (NoopEventPublisher) PublishEvent(context.Context, *models.Event) error { return nil }
func (NoopEventPublisher) Close() error                                      { return nil }

// FanoutPublisher delivers each event to every publisher and returns the first error.
type FanoutPublisher []repository.EventPublisher

func (f FanoutPublisher) PublishEvent(ctx context.Context, e *models.Event) error {
	var first error
	for _, p := range f {
		if err := p.PublishEvent(ctx, e); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (f FanoutPublisher) Close() error {
	var first error
	for _, p := range f {
		if err := p.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
