package kafka

import (
	"context"
	"fmt"

	"transaction-orchestrator/internal/core/domain"

	"github.com/rs/zerolog"
	"github.com/twmb/franz-go/pkg/kgo"
	"go.opentelemetry.io/otel"
)

// SyncProducer is the part of *kgo.Client the Publisher needs.
type SyncProducer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// TopicResolver maps a channel name onto its Kafka topic.
type TopicResolver func(channel string) string

// Publisher implements ports.EventPublisher over Kafka.
type Publisher struct {
	producer SyncProducer
	topicFor TopicResolver
	source   string
	log      zerolog.Logger
}

// NewPublisher creates a Publisher. source is the ce_source of every record.
func NewPublisher(producer SyncProducer, topicFor TopicResolver, source string, log zerolog.Logger) *Publisher {
	return &Publisher{
		producer: producer,
		topicFor: topicFor,
		source:   source,
		log:      log.With().Str("component", "kafka_publisher").Logger(),
	}
}

// Publish produces one record per notification and waits for all acks.
// Records keep the given order within each partition; the key is the source order id.
func (p *Publisher) Publish(ctx context.Context, notifications ...domain.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	propagator := otel.GetTextMapPropagator()
	records := make([]*kgo.Record, 0, len(notifications))
	for _, n := range notifications {
		rec := &kgo.Record{
			Topic:   p.topicFor(string(n.Channel)),
			Key:     []byte(n.Key),
			Value:   n.Payload,
			Headers: cloudEventHeaders(n, p.source),
		}
		propagator.Inject(ctx, headerCarrier{record: rec})
		records = append(records, rec)
	}

	if err := p.producer.ProduceSync(ctx, records...).FirstErr(); err != nil {
		return fmt.Errorf("produce %d notifications: %w", len(records), err)
	}

	p.log.Debug().Int("count", len(records)).Msg("notifications produced")
	return nil
}
