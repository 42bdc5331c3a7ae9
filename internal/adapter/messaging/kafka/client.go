package kafka

import (
	"context"
	"fmt"

	"transaction-orchestrator/config"

	"github.com/rs/zerolog"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/plugin/kprom"
)

// NewConsumerClient creates a group consumer over the given topics.
// Offsets are committed by the Consumer only after a record is handled, and
// rebalances wait until the current poll batch is finished.
func NewConsumerClient(cfg config.KafkaConfig, topics []string, metrics *kprom.Metrics, log zerolog.Logger) (*kgo.Client, error) {
	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID(cfg.ClientID),
		kgo.ConsumerGroup(cfg.ConsumerGroup),
		kgo.ConsumeTopics(topics...),
		kgo.DisableAutoCommit(),
		kgo.BlockRebalanceOnPoll(),
	}
	if metrics != nil {
		opts = append(opts, kgo.WithHooks(metrics))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating kafka consumer: %w", err)
	}

	log.Info().
		Strs("brokers", cfg.Brokers).
		Str("group", cfg.ConsumerGroup).
		Strs("topics", topics).
		Msg("Kafka consumer created")
	return client, nil
}

// NewProducerClient creates the client used by Publisher.
// All in-sync replicas must acknowledge; the idempotent producer keeps
// per-key ordering across retries.
func NewProducerClient(cfg config.KafkaConfig, metrics *kprom.Metrics, log zerolog.Logger) (*kgo.Client, error) {
	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID(cfg.ClientID + "-producer"),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	}
	if metrics != nil {
		opts = append(opts, kgo.WithHooks(metrics))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating kafka producer: %w", err)
	}

	log.Info().Strs("brokers", cfg.Brokers).Msg("Kafka producer created")
	return client, nil
}

// HealthCheck implements ports.HealthChecker for the Kafka cluster.
type HealthCheck struct {
	client *kgo.Client
}

// NewHealthCheck creates a Kafka health checker.
func NewHealthCheck(client *kgo.Client) *HealthCheck {
	return &HealthCheck{client: client}
}

// Ping checks that at least one broker answers.
func (h *HealthCheck) Ping(ctx context.Context) error {
	return h.client.Ping(ctx)
}

// Name returns the dependency name.
func (h *HealthCheck) Name() string {
	return "kafka"
}
